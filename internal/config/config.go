// Package config loads and validates Orient's configuration from
// ~/.orient/orient.json with ORIENT_* environment overrides.
package config

import (
	"encoding/json"
	"fmt"
)

// Config represents the main Orient configuration.
type Config struct {
	// Admin identifies the operator.
	Admin AdminConfig `json:"admin" mapstructure:"admin"`

	// Channels toggles the messaging platforms.
	Channels ChannelsConfig `json:"channels" mapstructure:"channels"`

	// Slack holds Slack credentials.
	Slack SlackConfig `json:"slack" mapstructure:"slack"`

	// WhatsApp holds WhatsApp session settings.
	WhatsApp WhatsAppConfig `json:"whatsapp" mapstructure:"whatsapp"`

	// Gateway configures the local websocket control surface.
	Gateway GatewayConfig `json:"gateway" mapstructure:"gateway"`

	// Storage configures the sqlite database.
	Storage StorageConfig `json:"storage" mapstructure:"storage"`

	// Permissions configures the chat permission service.
	Permissions PermissionsConfig `json:"permissions" mapstructure:"permissions"`

	// Pending configures the pending-action store.
	Pending PendingConfig `json:"pending" mapstructure:"pending"`

	// Tools holds the tool execution policy.
	Tools ToolsConfig `json:"tools" mapstructure:"tools"`

	// Logging configures log output.
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// DataDir is the state directory, ~/.orient by default.
	DataDir string `json:"data_dir" mapstructure:"data_dir"`
}

// AdminConfig identifies the operator's own chat.
type AdminConfig struct {
	ChatID string `json:"chat_id" mapstructure:"chat_id"`
}

// ChannelsConfig toggles messaging platforms.
type ChannelsConfig struct {
	Slack    ChannelConfig `json:"slack" mapstructure:"slack"`
	WhatsApp ChannelConfig `json:"whatsapp" mapstructure:"whatsapp"`
}

// ChannelConfig represents a single channel toggle.
type ChannelConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`
}

// SlackConfig holds Slack credentials.
type SlackConfig struct {
	BotToken string `json:"bot_token" mapstructure:"bot_token"`
	AppToken string `json:"app_token" mapstructure:"app_token"`
}

// WhatsAppConfig holds WhatsApp session settings.
type WhatsAppConfig struct {
	SessionPath string `json:"session_path" mapstructure:"session_path"`
}

// GatewayConfig holds the local control server configuration.
type GatewayConfig struct {
	Port  int    `json:"port" mapstructure:"port"`
	Host  string `json:"host" mapstructure:"host"`
	Token string `json:"token" mapstructure:"token"`
}

// StorageConfig holds database configuration.
type StorageConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// PermissionsConfig holds permission service tuning.
type PermissionsConfig struct {
	CacheTTLSeconds int `json:"cache_ttl_seconds" mapstructure:"cache_ttl_seconds"`
}

// PendingConfig holds pending-action store tuning.
type PendingConfig struct {
	TTLSeconds   int `json:"ttl_seconds" mapstructure:"ttl_seconds"`
	SweepSeconds int `json:"sweep_seconds" mapstructure:"sweep_seconds"`
}

// ToolsConfig defines wildcard allow/deny patterns for tool
// execution. Deny wins; an empty allow list allows everything not
// denied.
type ToolsConfig struct {
	Allow []string `json:"allow" mapstructure:"allow"`
	Deny  []string `json:"deny" mapstructure:"deny"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level     string `json:"level" mapstructure:"level"`
	File      string `json:"file" mapstructure:"file"`
	Pretty    bool   `json:"pretty" mapstructure:"pretty"`
	Redaction bool   `json:"redaction" mapstructure:"redaction"`
}

// DefaultConfig returns a config with default values.
func DefaultConfig() *Config {
	return &Config{
		Channels: ChannelsConfig{
			Slack:    ChannelConfig{Enabled: false},
			WhatsApp: ChannelConfig{Enabled: false},
		},
		Gateway: GatewayConfig{
			Port: 8920,
			Host: "127.0.0.1",
		},
		Permissions: PermissionsConfig{
			CacheTTLSeconds: 60,
		},
		Pending: PendingConfig{
			TTLSeconds:   300,
			SweepSeconds: 60,
		},
		Logging: LoggingConfig{
			Level:     "info",
			Pretty:    true,
			Redaction: true,
		},
	}
}

// String returns an indented JSON representation of the config.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// Validate checks the hard requirements for starting the daemon.
func (c *Config) Validate() error {
	if c.Admin.ChatID == "" {
		return fmt.Errorf("admin chat_id is required")
	}
	if c.Channels.Slack.Enabled && c.Slack.BotToken == "" {
		return fmt.Errorf("slack bot_token is required when the Slack channel is enabled")
	}
	if c.Gateway.Port <= 0 || c.Gateway.Port > 65535 {
		return fmt.Errorf("invalid gateway port %d", c.Gateway.Port)
	}
	if c.Pending.TTLSeconds <= 0 {
		return fmt.Errorf("pending ttl_seconds must be positive")
	}
	return nil
}
