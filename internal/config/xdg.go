// Package config provides XDG path helpers.
package config

import (
	"os"
	"path/filepath"
)

const appName = "cryptology"

// XDGConfigHome returns $XDG_CONFIG_HOME, or ~/.config when unset.
func XDGConfigHome() string {
	return xdgBase("XDG_CONFIG_HOME", ".config")
}

// XDGDataHome returns $XDG_DATA_HOME, or ~/.local/share when unset.
func XDGDataHome() string {
	return xdgBase("XDG_DATA_HOME", ".local", "share")
}

// xdgBase falls back to the current directory when no home is known.
func xdgBase(env string, underHome ...string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(append([]string{home}, underHome...)...)
}

func dataPath(elem ...string) string {
	return filepath.Join(append([]string{XDGDataHome(), appName}, elem...)...)
}

// DefaultWordListPath returns the default English word list path.
func DefaultWordListPath() string {
	return dataPath("wordlists", "en.txt")
}

// DefaultTablesDir returns the default directory for generated reference tables.
func DefaultTablesDir() string {
	return dataPath("tables")
}

// DefaultDBPath returns the default path for the history database.
func DefaultDBPath() string {
	return dataPath("history.db")
}

// DefaultWordfreqCacheDir returns the cache directory for wordfreq wheels.
func DefaultWordfreqCacheDir() string {
	return dataPath("wordfreq")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), appName, "config.toml")
}
