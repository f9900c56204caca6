package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tap-match/internal/config"
	"github.com/vovakirdan/tap-match/internal/registry"
	"github.com/vovakirdan/tap-match/internal/sim"
)

var (
	flagSimSessions int
	flagSimMoves    int
	flagSimWorkers  int
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <game>",
	Short: "Play bot sessions and report the reward distribution",
	Long: `Play headless sessions with a bot that takes the wildcard when it is
live and the first legal swap otherwise, then print reward statistics.
Use it to compare scoring tables and difficulty presets.

Examples:
  tapmatch simulate gems
  tapmatch simulate crypto --sessions 2000 --moves 50
  tapmatch simulate gems --difficulty hard --config ./my-gems.yaml`,
	Args: cobra.ExactArgs(1),
	Run:  runSimulate,
}

func init() {
	simulateCmd.Flags().IntVar(&flagSimSessions, "sessions", 200, "Number of sessions")
	simulateCmd.Flags().IntVar(&flagSimMoves, "moves", 0, "Moves per session (0 = the config's budget)")
	simulateCmd.Flags().IntVar(&flagSimWorkers, "workers", 4, "Sessions played in parallel")
	simulateCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom game config YAML")
	simulateCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
}

func runSimulate(cmd *cobra.Command, args []string) {
	gameID := args[0]
	if !registry.Exists(gameID) {
		fmt.Fprintf(os.Stderr, "Error: unknown game %q\n", gameID)
		os.Exit(1)
	}

	preset, err := config.ParsePreset(flagDifficulty)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	gameCfg, err := config.LoadWithPreset(gameID, flagConfig, preset)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	engine, err := gameCfg.Engine()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	opts := sim.DefaultOptions()
	opts.Sessions = flagSimSessions
	opts.Workers = flagSimWorkers
	opts.Logger = log.Default()
	if flagSeed != 0 {
		opts.Seed = flagSeed
	}
	opts.Moves = flagSimMoves
	if opts.Moves == 0 {
		opts.Moves = gameCfg.Session.Moves
	}
	if opts.Moves == 0 {
		opts.Moves = sim.DefaultOptions().Moves
	}

	report, err := sim.Run(cmd.Context(), engine, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Simulation - %s (%s), %d sessions x %d moves, seed %d\n",
		gameCfg.Title, preset, report.Sessions, opts.Moves, opts.Seed)
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Mean\t%.2f\n", report.Mean)
	fmt.Fprintf(w, "  Std dev\t%.2f\n", report.StdDev)
	fmt.Fprintf(w, "  Min\t%.0f\n", report.Min)
	fmt.Fprintf(w, "  Median\t%.0f\n", report.Median)
	fmt.Fprintf(w, "  P90\t%.0f\n", report.P90)
	fmt.Fprintf(w, "  Max\t%.0f\n", report.Max)
	fmt.Fprintf(w, "  Moves played\t%d\n", report.Moves)
	fmt.Fprintf(w, "  Extra cascades\t%d\n", report.Cascades)
	fmt.Fprintf(w, "  Reshuffles\t%d\n", report.Reshuffles)
	fmt.Fprintf(w, "  Wildcards used\t%d\n", report.Wildcards)
	w.Flush()
}
