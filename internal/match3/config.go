package match3

import (
	"fmt"
	"strings"
)

// SpecialScope defines how long the wildcard's single use lasts.
type SpecialScope int

const (
	// ScopeBoard allows one wildcard per board; a reshuffle starts a new life.
	ScopeBoard SpecialScope = iota
	// ScopeSession allows one wildcard for the whole session.
	ScopeSession
)

// String returns the config name of the scope.
func (s SpecialScope) String() string {
	switch s {
	case ScopeBoard:
		return "board"
	case ScopeSession:
		return "session"
	default:
		return "unknown"
	}
}

// ParseScope converts "board" or "session" to a SpecialScope.
// An empty string selects ScopeBoard.
func ParseScope(s string) (SpecialScope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "board":
		return ScopeBoard, nil
	case "session":
		return ScopeSession, nil
	default:
		return ScopeBoard, fmt.Errorf("match3: unknown special scope %q", s)
	}
}

// SpecialRules configures the wildcard extension.
type SpecialRules struct {
	Enabled       bool
	Scope         SpecialScope
	RewardPerTile int  // Reward for each tile cleared by the wildcard
	SpawnMinGroup int  // Group size that earns a fresh wildcard (0 disables spawning)
	PlaceAtStart  bool // Put one wildcard on every fresh board
}

// Config parametrizes a session.
type Config struct {
	Size    int // Board dimension N
	Tiles   int // Number of ordinary tile values, numbered 1..Tiles
	Scoring Scoring
	Special SpecialRules
}

// DefaultConfig returns an 8x8 board with six tile kinds and no wildcard.
func DefaultConfig() Config {
	return Config{
		Size:  8,
		Tiles: 6,
		Scoring: Scoring{
			Match3: 1,
			Match4: 2,
			Match5: 3,
		},
		Special: SpecialRules{
			Scope:         ScopeBoard,
			RewardPerTile: 1,
			SpawnMinGroup: 4,
		},
	}
}

// Validate checks that a playable board can be generated from c.
func (c Config) Validate() error {
	if c.Size < MinRun {
		return fmt.Errorf("match3: board size %d is below %d", c.Size, MinRun)
	}
	if c.Tiles < 3 {
		return fmt.Errorf("match3: need at least 3 tile kinds, got %d", c.Tiles)
	}
	if c.Tiles >= int(Special) {
		return fmt.Errorf("match3: too many tile kinds (%d)", c.Tiles)
	}
	if c.Scoring.Match3 < 0 || c.Scoring.Match4 < 0 || c.Scoring.Match5 < 0 {
		return fmt.Errorf("match3: scoring values must be non-negative")
	}
	if c.Special.RewardPerTile < 0 {
		return fmt.Errorf("match3: special reward must be non-negative")
	}
	if c.Special.SpawnMinGroup != 0 && c.Special.SpawnMinGroup < MinRun {
		return fmt.Errorf("match3: special spawn group %d is below %d", c.Special.SpawnMinGroup, MinRun)
	}
	return nil
}
