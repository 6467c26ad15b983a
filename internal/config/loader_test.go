package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_MissingFileReturnsDefaults(t *testing.T) {
	loader := NewLoader(filepath.Join(t.TempDir(), "orient.json"))

	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Gateway.Port, cfg.Gateway.Port)
	assert.NotEmpty(t, cfg.DataDir)
	assert.NotEmpty(t, cfg.Storage.Path)
	assert.NotEmpty(t, cfg.Logging.File)
}

func TestLoader_LoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orient.json")
	data := `{
		"admin": {"chat_id": "U0ADMIN"},
		"gateway": {"port": 9100, "token": "local-secret"},
		"pending": {"ttl_seconds": 120},
		"data_dir": "` + filepath.ToSlash(filepath.Dir(path)) + `"
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "U0ADMIN", cfg.Admin.ChatID)
	assert.Equal(t, 9100, cfg.Gateway.Port)
	assert.Equal(t, "local-secret", cfg.Gateway.Token)
	assert.Equal(t, 120, cfg.Pending.TTLSeconds)

	// Untouched fields keep their defaults.
	assert.Equal(t, "127.0.0.1", cfg.Gateway.Host)
	assert.Equal(t, 60, cfg.Permissions.CacheTTLSeconds)

	// Derived paths land in the data dir.
	assert.Equal(t, filepath.Join(cfg.DataDir, "orient.db"), cfg.Storage.Path)
}

func TestLoader_LoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orient.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoader_SaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "orient.json")
	loader := NewLoader(path)

	cfg := validConfig()
	cfg.Gateway.Port = 9200
	cfg.DataDir = filepath.Dir(path)
	require.NoError(t, loader.Save(cfg))

	loaded, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, "U0ADMIN", loaded.Admin.ChatID)
	assert.Equal(t, 9200, loaded.Gateway.Port)
}

func TestLoader_ConfigPath(t *testing.T) {
	assert.Equal(t, "/tmp/x.json", NewLoader("/tmp/x.json").ConfigPath())
	assert.NotEmpty(t, NewLoader("").ConfigPath())
}
