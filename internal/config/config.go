// Package config loads the YAML configuration of the match-3 variants and
// applies difficulty presets.
package config

import (
	"fmt"

	"github.com/vovakirdan/tap-match/internal/core"
	"github.com/vovakirdan/tap-match/internal/match3"
)

// GameConfig is the full configuration of one game variant.
type GameConfig struct {
	Title   string        `yaml:"title"`
	Board   BoardConfig   `yaml:"board"`
	Scoring ScoringConfig `yaml:"scoring"`
	Special SpecialConfig `yaml:"special"`
	Session SessionConfig `yaml:"session"`
}

// BoardConfig defines the board and the tile palette.
type BoardConfig struct {
	Size        int         `yaml:"size"`
	ActiveTiles int         `yaml:"active_tiles"` // Tile kinds in play; 0 means all of Tiles
	Tiles       []TileStyle `yaml:"tiles"`
}

// TileStyle is how one tile kind is drawn.
type TileStyle struct {
	Name  string `yaml:"name"`
	Glyph string `yaml:"glyph"`
	Color string `yaml:"color"`
}

// ScoringConfig is the group size to reward table.
type ScoringConfig struct {
	Match3 int `yaml:"match3"`
	Match4 int `yaml:"match4"`
	Match5 int `yaml:"match5"` // Five or more
}

// SpecialConfig configures the wildcard tile.
type SpecialConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Glyph         string `yaml:"glyph"`
	Color         string `yaml:"color"`
	Scope         string `yaml:"scope"` // "board" or "session"
	RewardPerTile int    `yaml:"reward_per_tile"`
	SpawnMinGroup int    `yaml:"spawn_min_group"`
	PlaceAtStart  bool   `yaml:"place_at_start"`
}

// SessionConfig limits a play session.
type SessionConfig struct {
	Moves      int `yaml:"moves"`       // Move budget; 0 is unlimited
	FlashTicks int `yaml:"flash_ticks"` // Ticks cleared cells stay highlighted
}

// TileCount returns the number of tile kinds in play.
func (c GameConfig) TileCount() int {
	if c.Board.ActiveTiles > 0 && c.Board.ActiveTiles < len(c.Board.Tiles) {
		return c.Board.ActiveTiles
	}
	return len(c.Board.Tiles)
}

// Validate checks the parts of the config the engine does not know about
// and then the engine config itself.
func (c GameConfig) Validate() error {
	if len(c.Board.Tiles) == 0 {
		return fmt.Errorf("config: board has no tiles")
	}
	for i, t := range c.Board.Tiles {
		if t.Glyph == "" {
			return fmt.Errorf("config: tile %d (%s) has no glyph", i+1, t.Name)
		}
		if _, ok := core.ParseColor(t.Color); !ok {
			return fmt.Errorf("config: tile %d (%s) has unknown color %q", i+1, t.Name, t.Color)
		}
	}
	if c.Board.ActiveTiles < 0 {
		return fmt.Errorf("config: active_tiles must be non-negative")
	}
	if c.Session.Moves < 0 || c.Session.FlashTicks < 0 {
		return fmt.Errorf("config: session values must be non-negative")
	}
	if c.Special.Enabled && c.Special.Glyph == "" {
		return fmt.Errorf("config: special tile has no glyph")
	}

	engine, err := c.Engine()
	if err != nil {
		return err
	}
	if err := engine.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Engine converts the config to the engine's parameters.
func (c GameConfig) Engine() (match3.Config, error) {
	scope, err := match3.ParseScope(c.Special.Scope)
	if err != nil {
		return match3.Config{}, fmt.Errorf("config: %w", err)
	}
	return match3.Config{
		Size:  c.Board.Size,
		Tiles: c.TileCount(),
		Scoring: match3.Scoring{
			Match3: c.Scoring.Match3,
			Match4: c.Scoring.Match4,
			Match5: c.Scoring.Match5,
		},
		Special: match3.SpecialRules{
			Enabled:       c.Special.Enabled,
			Scope:         scope,
			RewardPerTile: c.Special.RewardPerTile,
			SpawnMinGroup: c.Special.SpawnMinGroup,
			PlaceAtStart:  c.Special.PlaceAtStart,
		},
	}, nil
}
