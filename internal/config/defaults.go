package config

import (
	"embed"
	"path"
)

//go:embed defaults/*.yaml
var defaultFiles embed.FS

// DefaultGemsConfig returns the plain variant used when no YAML is readable.
func DefaultGemsConfig() GameConfig {
	return GameConfig{
		Title: "Gem Rush",
		Board: BoardConfig{
			Size:        8,
			ActiveTiles: 6,
			Tiles: []TileStyle{
				{Name: "ruby", Glyph: "◆", Color: "bright_red"},
				{Name: "emerald", Glyph: "◆", Color: "bright_green"},
				{Name: "sapphire", Glyph: "◆", Color: "bright_blue"},
				{Name: "topaz", Glyph: "●", Color: "bright_yellow"},
				{Name: "amethyst", Glyph: "●", Color: "bright_magenta"},
				{Name: "pearl", Glyph: "■", Color: "bright_white"},
				{Name: "amber", Glyph: "▲", Color: "orange"},
			},
		},
		Scoring: ScoringConfig{Match3: 1, Match4: 2, Match5: 3},
		Special: SpecialConfig{
			Enabled:       false,
			Glyph:         "★",
			Color:         "bright_cyan",
			Scope:         "board",
			RewardPerTile: 1,
			SpawnMinGroup: 4,
		},
		Session: SessionConfig{Moves: 30, FlashTicks: 6},
	}
}

// DefaultCryptoConfig returns the wildcard variant used when no YAML is readable.
func DefaultCryptoConfig() GameConfig {
	return GameConfig{
		Title: "Crypto Crush",
		Board: BoardConfig{
			Size:        8,
			ActiveTiles: 6,
			Tiles: []TileStyle{
				{Name: "bitcoin", Glyph: "₿", Color: "orange"},
				{Name: "ethereum", Glyph: "Ξ", Color: "bright_blue"},
				{Name: "toncoin", Glyph: "◊", Color: "bright_cyan"},
				{Name: "solana", Glyph: "≡", Color: "bright_magenta"},
				{Name: "tether", Glyph: "₮", Color: "bright_green"},
				{Name: "dogecoin", Glyph: "Ð", Color: "bright_yellow"},
				{Name: "litecoin", Glyph: "Ł", Color: "gray"},
			},
		},
		Scoring: ScoringConfig{Match3: 1, Match4: 2, Match5: 3},
		Special: SpecialConfig{
			Enabled:       true,
			Glyph:         "✦",
			Color:         "bright_white",
			Scope:         "board",
			RewardPerTile: 1,
			SpawnMinGroup: 4,
			PlaceAtStart:  true,
		},
		Session: SessionConfig{Moves: 30, FlashTicks: 6},
	}
}

// DefaultFor returns the hardcoded defaults of a game ID, if it has any.
func DefaultFor(gameID string) (GameConfig, bool) {
	switch gameID {
	case "gems":
		return DefaultGemsConfig(), true
	case "crypto":
		return DefaultCryptoConfig(), true
	default:
		return GameConfig{}, false
	}
}

// GetDefaultYAML returns the embedded default YAML for a game, or nil.
func GetDefaultYAML(gameID string) []byte {
	data, err := defaultFiles.ReadFile(path.Join("defaults", gameID+".yaml"))
	if err != nil {
		return nil
	}
	return data
}
