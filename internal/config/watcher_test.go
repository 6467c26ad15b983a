package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, path, chatID string) {
	t.Helper()
	data := `{"admin": {"chat_id": "` + chatID + `"}, "data_dir": "` + filepath.ToSlash(filepath.Dir(path)) + `"}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
}

func TestWatcher_ReloadOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orient.json")
	writeConfigFile(t, path, "U0BEFORE")

	var reloads atomic.Int64
	var lastChatID atomic.Value
	w, err := NewWatcher(NewLoader(path), func(cfg *Config) {
		lastChatID.Store(cfg.Admin.ChatID)
		reloads.Add(1)
	}, zerolog.Nop())
	require.NoError(t, err)

	w.Start()
	defer w.Stop()

	writeConfigFile(t, path, "U0AFTER")

	require.Eventually(t, func() bool {
		return reloads.Load() >= 1
	}, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, "U0AFTER", lastChatID.Load())
}

func TestWatcher_InvalidConfigKeepsPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orient.json")
	writeConfigFile(t, path, "U0BEFORE")

	var reloads atomic.Int64
	w, err := NewWatcher(NewLoader(path), func(*Config) {
		reloads.Add(1)
	}, zerolog.Nop())
	require.NoError(t, err)

	w.Start()
	defer w.Stop()

	// Empty admin chat fails validation, so the callback never fires.
	require.NoError(t, os.WriteFile(path, []byte(`{"admin": {"chat_id": ""}}`), 0644))

	time.Sleep(2 * watchDebounce)
	assert.Equal(t, int64(0), reloads.Load())
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orient.json")
	writeConfigFile(t, path, "U0BEFORE")

	var reloads atomic.Int64
	w, err := NewWatcher(NewLoader(path), func(*Config) {
		reloads.Add(1)
	}, zerolog.Nop())
	require.NoError(t, err)

	w.Start()
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0644))

	time.Sleep(2 * watchDebounce)
	assert.Equal(t, int64(0), reloads.Load())
}
