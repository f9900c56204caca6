package config

import "fmt"

// DifficultyPreset is a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// ParsePreset validates a preset name. An empty name is normal.
func ParsePreset(s string) (DifficultyPreset, error) {
	switch p := DifficultyPreset(s); p {
	case "":
		return DifficultyNormal, nil
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return p, nil
	default:
		return "", fmt.Errorf("config: unknown difficulty %q (easy, normal, hard, fixed)", s)
	}
}

// ApplyPreset adjusts tile variety and the move budget.
//
// Fewer tile kinds make runs more likely, so easy drops one kind and hard
// adds one. Fixed keeps the board as configured and removes the move limit.
func ApplyPreset(cfg *GameConfig, preset DifficultyPreset) {
	active := cfg.TileCount()

	switch preset {
	case DifficultyEasy:
		cfg.Board.ActiveTiles = max(active-1, 3)
		cfg.Session.Moves = cfg.Session.Moves * 3 / 2
	case DifficultyHard:
		cfg.Board.ActiveTiles = min(active+1, len(cfg.Board.Tiles))
		cfg.Session.Moves = cfg.Session.Moves * 2 / 3
	case DifficultyFixed:
		cfg.Session.Moves = 0
	}
}
