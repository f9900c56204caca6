package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tap-match/internal/storage"
)

var flagBalanceLimit int

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show a player's balance and credited rewards",
	Long: `Display the reward balance of a player and the most recent session
rewards credited to it.

Examples:
  tapmatch balance
  tapmatch balance --user alice --limit 25`,
	Args: cobra.NoArgs,
	Run:  runBalance,
}

func init() {
	balanceCmd.Flags().IntVar(&flagBalanceLimit, "limit", 10, "Number of rewards to show")
}

func runBalance(cmd *cobra.Command, _ []string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := cmd.Context()

	balance, err := store.Balance(ctx, flagUser)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading balance: %v\n", err)
		return
	}
	entries, err := store.RewardHistory(ctx, flagUser, flagBalanceLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading rewards: %v\n", err)
		return
	}

	fmt.Printf("Balance - %s: %d\n", flagUser, balance)
	fmt.Println()

	if len(entries) == 0 {
		fmt.Println("No rewards credited yet.")
		return
	}

	fmt.Printf("  %-16s  %-8s  %-8s  %s\n", "Date", "Game", "Reward", "Entry")
	fmt.Printf("  %-16s  %-8s  %-8s  %s\n", "----", "----", "------", "-----")
	for _, e := range entries {
		fmt.Printf("  %-16s  %-8s  %-8s  %s\n",
			e.CreatedAt.Format("2006-01-02 15:04"), e.GameID, fmt.Sprintf("+%d", e.Amount), e.ID)
	}
}
