// tapmatch is a terminal match-3 game whose sessions earn a balance reward.
//
// Usage:
//
//	tapmatch list                 - List available games
//	tapmatch play <game>          - Play a game
//	tapmatch menu                 - Start menu to pick games interactively
//	tapmatch serve                - Start SSH server for remote play
//	tapmatch scores <game>        - Show high scores for a game
//	tapmatch balance              - Show a player's balance and rewards
//	tapmatch simulate <game>      - Play bot sessions and report rewards
//
// Global flags:
//
//	--fps <rate>    - Set tick rate (default: 30)
//	--seed <value>  - Set RNG seed for reproducible boards
//	--db <path>     - Set database path (default: ~/.tapmatch/tapmatch.db)
//	--user <name>   - Player whose ledger is credited
//	--log <path>    - Write debug logs to a file
//
// TAPMATCH_DB, TAPMATCH_USER and TAPMATCH_LOG, also read from a .env file,
// supply defaults for the flags of the same name.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Import games to register them
	_ "github.com/vovakirdan/tap-match/internal/games/gems"
)

const defaultDBPath = "~/.tapmatch/tapmatch.db"

var (
	// Global flags
	flagFPS     int
	flagSeed    int64
	flagDBPath  string
	flagUser    string
	flagLogPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tapmatch",
	Short: "Tap Match - match-3 in your terminal",
	Long: `Tap Match is a terminal match-3 game. Swap neighbouring tiles to
line up three or more, chain cascades, and bank the session's reward in
your balance when the game ends.

Available commands:
  list      - Show all available games
  play      - Play a specific game directly
  menu      - Interactive game picker menu
  serve     - Start SSH server for remote play
  scores    - View high scores
  balance   - View your balance and credited rewards
  simulate  - Run bot sessions to tune scoring

Examples:
  tapmatch list
  tapmatch play gems
  tapmatch play crypto --difficulty hard
  tapmatch menu --user alice
  tapmatch serve --ssh :2222
  tapmatch simulate crypto --sessions 1000`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) { closeLog() },
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 30, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", defaultDBPath, "Path to scores and ledger database")
	rootCmd.PersistentFlags().StringVar(&flagUser, "user", "", "Player name (default: $TAPMATCH_USER or $USER)")
	rootCmd.PersistentFlags().StringVar(&flagLogPath, "log", "", "Write logs to this file")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(simulateCmd)
}
