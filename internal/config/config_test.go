package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	assert.Nil(t, cfg.Vigenere.MinKeyLength)
	assert.Nil(t, cfg.Tables.Unigrams)
}

func TestLoadConfigEmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfigSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[tables]
unigrams = "/tmp/uni.txt"

[vigenere]
min-key-length = 3
max-key-length = 12

[engine]
workers = 4

[log]
level = "debug"
format = "json"

[history]
enabled = false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Tables.Unigrams)
	assert.Equal(t, "/tmp/uni.txt", *cfg.Tables.Unigrams)
	assert.Nil(t, cfg.Tables.Bigrams)
	assert.Equal(t, 3, *cfg.Vigenere.MinKeyLength)
	assert.Equal(t, 12, *cfg.Vigenere.MaxKeyLength)
	assert.Equal(t, 4, *cfg.Engine.Workers)
	assert.Equal(t, "debug", *cfg.Log.Level)
	assert.Equal(t, "json", *cfg.Log.Format)
	assert.False(t, *cfg.History.Enabled)
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[vigenere]\nkey-len = 3\n"), 0o644))
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vigenere.key-len")
}

func TestLoadConfigRejectsBadSyntax(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[vigenere\n"), 0o644))
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	assert.Equal(t, filepath.Join("/cfg", "cryptology", "config.toml"), DefaultConfigPath())
	assert.Equal(t, filepath.Join("/data", "cryptology", "history.db"), DefaultDBPath())
	assert.Equal(t, filepath.Join("/data", "cryptology", "wordfreq"), DefaultWordfreqCacheDir())
	assert.Equal(t, filepath.Join("/data", "cryptology", "wordlists", "en.txt"), DefaultWordListPath())
	assert.Equal(t, filepath.Join("/data", "cryptology", "tables"), DefaultTablesDir())
}
