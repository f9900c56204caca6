package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tap-match/internal/games/gems"
	"github.com/vovakirdan/tap-match/internal/platform/tui"
	"github.com/vovakirdan/tap-match/internal/registry"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start with a game picker menu",
	Long: `Start in interactive menu mode.

Use arrow keys or j/k to navigate, Enter to select a game.
After a game ends, you return to the menu to play again.
Tab opens the scoreboard; press R there to see your credited rewards.

Examples:
  tapmatch menu
  tapmatch menu --user alice
  tapmatch menu --db ./tapmatch.db`,
	Run: runMenu,
}

func init() {
	menuCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom game config YAML")
	menuCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset; skips the picker")
}

func runMenu(_ *cobra.Command, _ []string) {
	store := openStore()
	defer func() {
		if store != nil {
			store.Close()
		}
	}()

	cfg := runtimeConfig()
	gems.SetConfigPath(flagConfig)

	for {
		menuResult, err := tui.RunMenu(store, cfg, flagUser)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}
		cfg = menuResult.Config

		if menuResult.Quit {
			return
		}

		if menuResult.WantsScoreboard {
			goBack, sbErr := tui.RunScoreboard(store, flagUser, cfg.ScreenW, cfg.ScreenH)
			if sbErr != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", sbErr)
			}
			if goBack {
				continue
			}
			return
		}

		preset, ok, err := choosePreset(menuResult.GameID, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}
		if !ok {
			continue
		}
		gems.SetDifficulty(preset)

		game, err := registry.Create(menuResult.GameID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
			continue
		}

		if flagSeed == 0 {
			cfg.Seed = time.Now().UnixNano()
		}

		backToMenu, err := tui.Run(game, store, cfg, tui.ModelOptions{Player: flagUser})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error running game: %v\n", err)
		}
		if !backToMenu {
			return
		}
	}
}
