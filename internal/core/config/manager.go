// Package config provides configuration and project layout for bizzy-hooks.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// BizzyDir is the directory name for bizzy-hooks metadata
	BizzyDir = ".bizzy"
	// ConfigFile is the configuration filename inside BizzyDir
	ConfigFile = "config.yaml"
	// ProjectDirEnv is set by the host to the project being worked on
	ProjectDirEnv = "CLAUDE_PROJECT_DIR"
)

// projectMarkers identify a project root when no .bizzy directory exists.
var projectMarkers = []string{".git", "package.json", ".beads", ".taskmaster"}

// Manager handles the configuration and directory layout of one project.
type Manager struct {
	projectRoot string
	configPath  string
}

// NewManager creates a configuration manager rooted at projectRoot.
func NewManager(projectRoot string) *Manager {
	return &Manager{
		projectRoot: projectRoot,
		configPath:  filepath.Join(projectRoot, BizzyDir, ConfigFile),
	}
}

// Load reads the configuration. A missing file yields DefaultConfig so
// hooks keep working in projects that were never initialised.
func (m *Manager) Load() (*Config, error) {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m.configPath, err)
	}
	return cfg, nil
}

// Save writes cfg to disk, creating the .bizzy directory if needed.
func (m *Manager) Save(cfg *Config) error {
	if err := ValidateConfig(cfg); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(m.configPath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(m.configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// IsInitialized reports whether a config file exists.
func (m *Manager) IsInitialized() bool {
	_, err := os.Stat(m.configPath)
	return err == nil
}

// GetProjectRoot returns the project root directory
func (m *Manager) GetProjectRoot() string {
	return m.projectRoot
}

// GetConfigPath returns the configuration file path
func (m *Manager) GetConfigPath() string {
	return m.configPath
}

// GetBizzyDir returns the .bizzy directory path
func (m *Manager) GetBizzyDir() string {
	return filepath.Join(m.projectRoot, BizzyDir)
}

// GetMailboxDir returns the directory holding agent mailboxes
func (m *Manager) GetMailboxDir() string {
	return filepath.Join(m.GetBizzyDir(), "mailbox")
}

// GetStateDir returns the directory holding per-agent state files
func (m *Manager) GetStateDir() string {
	return filepath.Join(m.GetBizzyDir(), "agents")
}

// GetErrorLogPath returns the JSONL file hook errors are appended to
func (m *Manager) GetErrorLogPath() string {
	return filepath.Join(m.GetBizzyDir(), "logs", "hook-errors.jsonl")
}

// FindProjectRoot locates the project the hook runs for. It prefers the
// host-provided directory, then the nearest ancestor with a .bizzy
// directory, then the nearest ancestor with a project marker, and finally
// the working directory itself.
func FindProjectRoot() (string, error) {
	if dir := os.Getenv(ProjectDirEnv); dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir, nil
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return FindProjectRootFrom(cwd), nil
}

// FindProjectRootFrom runs the ancestor search of FindProjectRoot from start.
func FindProjectRootFrom(start string) string {
	if dir, ok := walkUp(start, BizzyDir); ok {
		return dir
	}
	if dir, ok := walkUp(start, projectMarkers...); ok {
		return dir
	}
	return start
}

func walkUp(start string, names ...string) (string, bool) {
	dir := start
	for {
		for _, name := range names {
			if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
				return dir, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
