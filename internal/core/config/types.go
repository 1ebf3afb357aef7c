package config

import (
	"fmt"
	"time"
)

// Config is the contents of .bizzy/config.yaml.
type Config struct {
	Version string        `yaml:"version"`
	Project ProjectConfig `yaml:"project,omitempty"`
	Mailbox MailboxConfig `yaml:"mailbox"`
	Memory  MemoryConfig  `yaml:"memory"`
	Routing RoutingConfig `yaml:"routing,omitempty"`
	Agents  AgentsConfig  `yaml:"agents,omitempty"`
}

// ProjectConfig overrides project detection.
type ProjectConfig struct {
	Name string `yaml:"name,omitempty"`
}

// MailboxConfig bounds the per-agent mailboxes.
type MailboxConfig struct {
	// MaxMessages caps each mailbox; 0 disables the cap
	MaxMessages int `yaml:"max_messages"`
	// TTL expires unread envelopes; "0" disables expiry
	TTL         string `yaml:"ttl"`
	LockTimeout string `yaml:"lock_timeout"`
}

// MemoryConfig configures the external memory CLI.
type MemoryConfig struct {
	Enabled       bool   `yaml:"enabled"`
	CLI           string `yaml:"cli"`
	Timeout       string `yaml:"timeout"`
	HealthTimeout string `yaml:"health_timeout"`
}

// RoutingConfig replaces the built-in routing table when Rules is set.
type RoutingConfig struct {
	Rules              []RoutingRule `yaml:"rules,omitempty"`
	SignificantMarkers []string      `yaml:"significant_markers,omitempty"`
	SourceDirs         []string      `yaml:"source_dirs,omitempty"`
}

// RoutingRule is the YAML form of routing.Rule.
type RoutingRule struct {
	Agents       []string `yaml:"agents"`
	Extensions   []string `yaml:"extensions,omitempty"`
	PathContains []string `yaml:"path_contains,omitempty"`
	Filenames    []string `yaml:"filenames,omitempty"`
}

// AgentsConfig turns individual agents off.
type AgentsConfig struct {
	Disabled []string `yaml:"disabled,omitempty"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Mailbox: MailboxConfig{
			MaxMessages: 500,
			TTL:         "168h",
			LockTimeout: "5s",
		},
		Memory: MemoryConfig{
			Enabled:       true,
			CLI:           "aes-bizzy",
			Timeout:       "30s",
			HealthTimeout: "10s",
		},
	}
}

// TTLDuration parses the mailbox TTL.
func (c MailboxConfig) TTLDuration() (time.Duration, error) {
	return parseDuration("mailbox.ttl", c.TTL, 0)
}

// LockTimeoutDuration parses the mailbox lock timeout.
func (c MailboxConfig) LockTimeoutDuration() (time.Duration, error) {
	return parseDuration("mailbox.lock_timeout", c.LockTimeout, 5*time.Second)
}

// TimeoutDuration parses the memory CLI timeout.
func (c MemoryConfig) TimeoutDuration() (time.Duration, error) {
	return parseDuration("memory.timeout", c.Timeout, 30*time.Second)
}

// HealthTimeoutDuration parses the memory health-check timeout.
func (c MemoryConfig) HealthTimeoutDuration() (time.Duration, error) {
	return parseDuration("memory.health_timeout", c.HealthTimeout, 10*time.Second)
}

// IsDisabled reports whether the named agent is switched off.
func (c AgentsConfig) IsDisabled(name string) bool {
	for _, d := range c.Disabled {
		if d == name {
			return true
		}
	}
	return false
}

func parseDuration(field, value string, fallback time.Duration) (time.Duration, error) {
	switch value {
	case "":
		return fallback, nil
	case "0":
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, value, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s %q: must not be negative", field, value)
	}
	return d, nil
}
