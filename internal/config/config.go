// Package config holds the launcher configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config is the launcher configuration, stored as JSON.
type Config struct {
	// ConfigDir is the directory whose ownership the instance claims.
	// The token marker lives here.
	ConfigDir string `json:"config_dir"`

	// SystemDir is the directory receiving the port marker for external
	// discovery.
	SystemDir string `json:"system_dir"`

	// LogLevel is one of debug, info, warn, error, none.
	LogLevel string `json:"log_level"`

	// LogPath is the log file location. Empty means console logging when
	// attached to a terminal, otherwise no logging.
	LogPath string `json:"log_path,omitempty"`
}

// Default returns a configuration rooted in the user's config and cache
// directories.
func Default() *Config {
	cfg := &Config{
		LogLevel: "info",
	}

	if dir, err := os.UserConfigDir(); err == nil {
		cfg.ConfigDir = filepath.Join(dir, "einzel")
	}
	if dir, err := os.UserCacheDir(); err == nil {
		cfg.SystemDir = filepath.Join(dir, "einzel")
	}

	return cfg
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(dir, "einzel", "config.json"), nil
}

// Load reads the config file at path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Save writes the config as indented JSON, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
