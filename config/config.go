// Package config provides configuration loading and management for Verdant.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete Verdant client configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Session SessionConfig `yaml:"session"`
	Log     LogConfig     `yaml:"log"`
}

// APIConfig configures the backend endpoint. There is exactly one base URL;
// every service consumes it from here.
type APIConfig struct {
	// BaseURL is the backend base URL, e.g. "https://api.verdant.example".
	BaseURL string `yaml:"base_url"`
	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `yaml:"timeout"`
	// Retry configures the bounded retry policy for plant and
	// notification calls.
	Retry RetryConfig `yaml:"retry"`
}

// RetryConfig mirrors the transport retry knobs.
type RetryConfig struct {
	MaxAttempts       int           `yaml:"max_attempts"`
	BackoffBase       time.Duration `yaml:"backoff_base"`
	BackoffMultiplier float64       `yaml:"backoff_multiplier"`
	MaxBackoff        time.Duration `yaml:"max_backoff"`
}

// SessionConfig configures local session persistence.
type SessionConfig struct {
	// Path is the session database path (default:
	// ~/.config/verdant/session.db).
	Path string `yaml:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:8080",
			Timeout: 30 * time.Second,
			Retry: RetryConfig{
				MaxAttempts:       3,
				BackoffBase:       time.Second,
				BackoffMultiplier: 2.0,
				MaxBackoff:        10 * time.Second,
			},
		},
		Session: SessionConfig{
			Path: defaultSessionPath(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url %q is not a valid URL", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	if c.API.Retry.MaxAttempts < 1 {
		return fmt.Errorf("api.retry.max_attempts must be at least 1")
	}
	if c.API.Retry.BackoffMultiplier < 1 {
		return fmt.Errorf("api.retry.backoff_multiplier must be at least 1")
	}
	if c.Session.Path == "" {
		return fmt.Errorf("session.path is required")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file, layered over defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "session.db"
	}
	return filepath.Join(home, ".config", "verdant", "session.db")
}
