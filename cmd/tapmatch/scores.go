package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tap-match/internal/registry"
	"github.com/vovakirdan/tap-match/internal/storage"
)

var flagScoresLimit int

var scoresCmd = &cobra.Command{
	Use:   "scores <game>",
	Short: "Show high scores for a game",
	Long: `Display the top high scores for the specified game.

Examples:
  tapmatch scores gems
  tapmatch scores crypto --limit 20`,
	Args: cobra.ExactArgs(1),
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of scores to show")
}

func runScores(_ *cobra.Command, args []string) {
	gameID := args[0]

	if !registry.Exists(gameID) {
		fmt.Fprintf(os.Stderr, "Error: unknown game %q\n", gameID)
		fmt.Fprintln(os.Stderr, "Run 'tapmatch list' to see available games.")
		os.Exit(1)
	}

	game, err := registry.Create(gameID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	scores, err := store.TopScores(gameID, flagScoresLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving scores: %v\n", err)
		return
	}

	fmt.Printf("High Scores - %s\n", game.Title())
	fmt.Println()

	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'tapmatch play %s' to set the first high score!\n", gameID)
		return
	}

	fmt.Printf("  %-4s  %-12s  %-8s  %s\n", "Rank", "Player", "Score", "Date")
	fmt.Printf("  %-4s  %-12s  %-8s  %s\n", "----", "------", "-----", "----")
	for i, entry := range scores {
		fmt.Printf("  %-4d  %-12s  %-8d  %s\n", i+1, entry.Player, entry.Score, entry.CreatedAt.Format("2006-01-02 15:04"))
	}

	if stats, err := store.GetGameStats(gameID); err == nil {
		fmt.Println()
		fmt.Printf("Best: %d  Sessions: %d  Total: %d\n", stats.HighScore, stats.GamesCount, stats.TotalScore)
	}
}
