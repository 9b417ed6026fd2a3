// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Tables   TablesConfig   `toml:"tables"`
	Vigenere VigenereConfig `toml:"vigenere"`
	Engine   EngineConfig   `toml:"engine"`
	Log      LogConfig      `toml:"log"`
	History  HistoryConfig  `toml:"history"`
}

// TablesConfig points at reference table files.
type TablesConfig struct {
	Unigrams *string `toml:"unigrams"`
	Bigrams  *string `toml:"bigrams"`
}

// VigenereConfig bounds the key-length search.
type VigenereConfig struct {
	MinKeyLength *int `toml:"min-key-length"`
	MaxKeyLength *int `toml:"max-key-length"`
}

// EngineConfig maps worker settings.
type EngineConfig struct {
	Workers *int `toml:"workers"`
}

// LogConfig maps logger settings.
type LogConfig struct {
	Level  *string `toml:"level"`
	Format *string `toml:"format"`
}

// HistoryConfig toggles run history.
type HistoryConfig struct {
	Enabled *bool   `toml:"enabled"`
	Path    *string `toml:"path"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q in %s", undecoded[0].String(), path)
	}
	return cfg, nil
}
