package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tap-match/internal/core"
	"github.com/vovakirdan/tap-match/internal/games/gems"
	"github.com/vovakirdan/tap-match/internal/storage"
)

var logFile *os.File

// setup reads .env, fills unset flags from the environment and installs
// the logger. Without --log, logs are discarded so they never draw over the game.
func setup(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()

	flags := cmd.Flags()
	if !flags.Changed("db") {
		if v := os.Getenv("TAPMATCH_DB"); v != "" {
			flagDBPath = v
		}
	}
	if !flags.Changed("log") {
		flagLogPath = os.Getenv("TAPMATCH_LOG")
	}
	if flagUser == "" {
		flagUser = firstNonEmpty(os.Getenv("TAPMATCH_USER"), os.Getenv("USER"), storage.DefaultPlayer)
	}

	var out io.Writer = io.Discard
	if flagLogPath != "" {
		if err := os.MkdirAll(filepath.Dir(flagLogPath), 0o755); err != nil {
			return fmt.Errorf("cannot create log directory: %w", err)
		}
		f, err := os.OpenFile(flagLogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("cannot open log file: %w", err)
		}
		logFile = f
		out = f
	}

	logger := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		Level:           log.DebugLevel,
		Prefix:          "tapmatch",
	})
	log.SetDefault(logger)
	gems.SetLogger(logger)
	return nil
}

func closeLog() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// runtimeConfig sizes the screen to the terminal.
func runtimeConfig() core.RuntimeConfig {
	cfg := core.DefaultConfig()
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		cfg.ScreenW = w
		cfg.ScreenH = h
	}
	cfg.TickRate = flagFPS
	cfg.Seed = flagSeed
	return cfg
}

// openStore opens the database; play goes on without it.
func openStore() *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open database, rewards will not be kept: %v\n", err)
		log.Warn("cannot open database", "path", flagDBPath, "error", err)
		return nil
	}
	return store
}
