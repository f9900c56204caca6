package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load reads the configuration for a game ID.
// Search order: customPath -> ~/.tapmatch/configs/<id>.yaml ->
// ./configs/<id>.yaml -> embedded default -> hardcoded default.
//
// Only an explicit customPath makes read and parse errors fatal; the other
// locations are skipped when unreadable or invalid.
func Load(gameID, customPath string) (GameConfig, error) {
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return GameConfig{}, fmt.Errorf("config: read %s: %w", customPath, err)
		}
		cfg, err := parse(gameID, data)
		if err != nil {
			return GameConfig{}, fmt.Errorf("config: parse %s: %w", customPath, err)
		}
		return cfg, nil
	}

	filename := gameID + ".yaml"
	candidates := []string{
		userConfigPath(filename),
		filepath.Join("configs", filename),
	}
	for _, p := range candidates {
		if p == "" {
			continue
		}
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		if cfg, err := parse(gameID, data); err == nil {
			return cfg, nil
		}
	}

	if data := GetDefaultYAML(gameID); data != nil {
		if cfg, err := parse(gameID, data); err == nil {
			return cfg, nil
		}
	}

	if cfg, ok := DefaultFor(gameID); ok {
		return cfg, nil
	}
	return GameConfig{}, fmt.Errorf("config: no configuration for game %q", gameID)
}

// LoadWithPreset loads a config and applies a difficulty preset.
func LoadWithPreset(gameID, customPath string, preset DifficultyPreset) (GameConfig, error) {
	cfg, err := Load(gameID, customPath)
	if err != nil {
		return cfg, err
	}
	ApplyPreset(&cfg, preset)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// parse decodes YAML over the game's hardcoded defaults, so a file only
// needs the keys it changes.
func parse(gameID string, data []byte) (GameConfig, error) {
	cfg, _ := DefaultFor(gameID)
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return GameConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return GameConfig{}, err
	}
	return cfg, nil
}

// userConfigPath returns ~/.tapmatch/configs/<filename>, or "" without a home directory.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".tapmatch", "configs", filename)
}
