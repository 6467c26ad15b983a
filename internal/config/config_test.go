package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Admin.ChatID = "U0ADMIN"
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 8920, cfg.Gateway.Port)
	assert.Equal(t, "127.0.0.1", cfg.Gateway.Host)
	assert.Equal(t, 60, cfg.Permissions.CacheTTLSeconds)
	assert.Equal(t, 300, cfg.Pending.TTLSeconds)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Redaction)
	assert.False(t, cfg.Channels.Slack.Enabled)
}

func TestConfig_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		require.NoError(t, validConfig().Validate())
	})

	t.Run("missing admin chat", func(t *testing.T) {
		cfg := DefaultConfig()
		assert.ErrorContains(t, cfg.Validate(), "admin chat_id")
	})

	t.Run("slack enabled without token", func(t *testing.T) {
		cfg := validConfig()
		cfg.Channels.Slack.Enabled = true
		assert.ErrorContains(t, cfg.Validate(), "bot_token")
	})

	t.Run("bad gateway port", func(t *testing.T) {
		cfg := validConfig()
		cfg.Gateway.Port = 70000
		assert.ErrorContains(t, cfg.Validate(), "port")
	})

	t.Run("non-positive pending ttl", func(t *testing.T) {
		cfg := validConfig()
		cfg.Pending.TTLSeconds = 0
		assert.ErrorContains(t, cfg.Validate(), "ttl_seconds")
	})
}
