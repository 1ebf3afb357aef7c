package config

import (
	"fmt"

	"github.com/Bizzy211/aes-bizzy/internal/core/team"
)

// ValidateConfig checks the semantic rules the schema cannot express.
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("config is nil")
	}
	if config.Version != "1.0" {
		return fmt.Errorf("unsupported config version %q", config.Version)
	}

	if config.Mailbox.MaxMessages < 0 {
		return fmt.Errorf("mailbox.max_messages must not be negative")
	}
	if _, err := config.Mailbox.TTLDuration(); err != nil {
		return err
	}
	if _, err := config.Mailbox.LockTimeoutDuration(); err != nil {
		return err
	}

	if config.Memory.Enabled && config.Memory.CLI == "" {
		return fmt.Errorf("memory.cli is required when memory is enabled")
	}
	if _, err := config.Memory.TimeoutDuration(); err != nil {
		return err
	}
	if _, err := config.Memory.HealthTimeoutDuration(); err != nil {
		return err
	}

	for i, r := range config.Routing.Rules {
		if _, err := r.toRule(); err != nil {
			return fmt.Errorf("invalid routing rule %d: %w", i, err)
		}
	}

	for _, name := range config.Agents.Disabled {
		if _, err := team.Parse(name); err != nil {
			return fmt.Errorf("invalid agents.disabled entry: %w", err)
		}
	}

	return nil
}
