package config

import (
	"fmt"
	"strings"
)

// Validator validates individual configuration values.
type Validator struct{}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateSlackBotToken validates a Slack bot token.
func (v *Validator) ValidateSlackBotToken(token string) error {
	if token == "" {
		return fmt.Errorf("slack bot token cannot be empty")
	}
	if !strings.HasPrefix(token, "xoxb-") {
		return fmt.Errorf("invalid Slack bot token format (should start with xoxb-)")
	}
	return nil
}

// ValidateSlackAppToken validates a Slack app-level token.
func (v *Validator) ValidateSlackAppToken(token string) error {
	if token == "" {
		return fmt.Errorf("slack app token cannot be empty")
	}
	if !strings.HasPrefix(token, "xapp-") {
		return fmt.Errorf("invalid Slack app token format (should start with xapp-)")
	}
	return nil
}

// ValidateLogLevel validates a log level.
func (v *Validator) ValidateLogLevel(level string) error {
	validLevels := []string{"debug", "info", "warn", "error"}
	for _, valid := range validLevels {
		if level == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid log level: %s (must be one of: %s)", level, strings.Join(validLevels, ", "))
}

// ValidatePort validates a TCP port number.
func (v *Validator) ValidatePort(port int) error {
	if port <= 0 || port > 65535 {
		return fmt.Errorf("invalid port: %d", port)
	}
	return nil
}

// ValidateConfig performs comprehensive validation and returns every
// problem found, not just the first.
func (v *Validator) ValidateConfig(cfg *Config) []error {
	var errors []error

	if cfg.Admin.ChatID == "" {
		errors = append(errors, fmt.Errorf("admin chat_id is required"))
	}

	if cfg.Channels.Slack.Enabled {
		if err := v.ValidateSlackBotToken(cfg.Slack.BotToken); err != nil {
			errors = append(errors, err)
		}
		if cfg.Slack.AppToken != "" {
			if err := v.ValidateSlackAppToken(cfg.Slack.AppToken); err != nil {
				errors = append(errors, err)
			}
		}
	}

	if err := v.ValidatePort(cfg.Gateway.Port); err != nil {
		errors = append(errors, fmt.Errorf("gateway: %w", err))
	}

	if cfg.Permissions.CacheTTLSeconds < 0 {
		errors = append(errors, fmt.Errorf("permissions cache_ttl_seconds must be >= 0"))
	}
	if cfg.Pending.TTLSeconds <= 0 {
		errors = append(errors, fmt.Errorf("pending ttl_seconds must be positive"))
	}
	if cfg.Pending.SweepSeconds < 0 {
		errors = append(errors, fmt.Errorf("pending sweep_seconds must be >= 0"))
	}

	if err := v.ValidateLogLevel(cfg.Logging.Level); err != nil {
		errors = append(errors, err)
	}

	return errors
}
