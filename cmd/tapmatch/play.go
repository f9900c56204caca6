package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tap-match/internal/config"
	"github.com/vovakirdan/tap-match/internal/core"
	"github.com/vovakirdan/tap-match/internal/games/gems"
	"github.com/vovakirdan/tap-match/internal/platform/tui"
	"github.com/vovakirdan/tap-match/internal/registry"
)

var (
	flagConfig     string
	flagDifficulty string
)

var playCmd = &cobra.Command{
	Use:   "play <game>",
	Short: "Play a game",
	Long: `Start playing the specified game.

Controls:
  Arrows/WASD  - Move the cursor
  Space/Enter  - Select a tile, then a neighbour to swap
  Mouse click  - Select the tile under the pointer
  H            - Show a legal move
  Esc/B        - Drop the selection (leave after game over)
  P            - Pause
  R            - Play again (after game over)
  Q/Ctrl+C     - Quit; the session reward is credited first

Difficulty options:
  easy   - One tile kind fewer, 50% more moves
  normal - Board and moves as configured
  hard   - One tile kind more, a third fewer moves
  fixed  - No move limit

Without --difficulty a picker is shown.

Examples:
  tapmatch play gems
  tapmatch play crypto --difficulty easy
  tapmatch play gems --seed 42 --difficulty fixed
  tapmatch play gems --config ./my-gems.yaml`,
	Args: cobra.ExactArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom game config YAML")
	playCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
}

func runPlay(_ *cobra.Command, args []string) {
	gameID := args[0]

	if !registry.Exists(gameID) {
		fmt.Fprintf(os.Stderr, "Error: unknown game %q\n", gameID)
		fmt.Fprintln(os.Stderr, "Run 'tapmatch list' to see available games.")
		os.Exit(1)
	}

	cfg := runtimeConfig()
	gems.SetConfigPath(flagConfig)

	preset, ok, err := choosePreset(gameID, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if !ok {
		return // Backed out of the picker
	}
	gems.SetDifficulty(preset)

	game, err := registry.Create(gameID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
		os.Exit(1)
	}

	store := openStore()
	_, runErr := tui.Run(game, store, cfg, tui.ModelOptions{Player: flagUser})
	if store != nil {
		store.Close()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", runErr)
		os.Exit(1)
	}
}

// choosePreset uses --difficulty when set and shows the picker otherwise.
// ok is false when the player backed out.
func choosePreset(gameID string, cfg core.RuntimeConfig) (preset config.DifficultyPreset, ok bool, err error) {
	if flagDifficulty != "" {
		p, err := config.ParsePreset(flagDifficulty)
		return p, err == nil, err
	}

	title := gameID
	if def, found := config.DefaultFor(gameID); found {
		title = def.Title
	}
	chosen, err := tui.RunDifficultySelector(title, gems.GetDifficulty(), cfg)
	if err != nil || chosen == nil {
		return "", false, err
	}
	return *chosen, true, nil
}
