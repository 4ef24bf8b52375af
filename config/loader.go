package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables recognized by the loader. Each overrides its
// file-level counterpart.
const (
	EnvConfigPath  = "VERDANT_CONFIG"
	EnvAPIURL      = "VERDANT_API_URL"
	EnvAPITimeout  = "VERDANT_API_TIMEOUT"
	EnvSessionPath = "VERDANT_SESSION_PATH"
	EnvLogLevel    = "VERDANT_LOG_LEVEL"
	EnvMaxRetries  = "VERDANT_MAX_RETRIES"
)

// UserConfigDir is the directory for user-level config.
const UserConfigDir = ".config/verdant"

// UserConfigFile is the name of the user-level config file.
const UserConfigFile = "config.yaml"

// Loader handles configuration loading with layered precedence.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a new configuration loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load loads configuration with layered precedence:
//  1. Defaults
//  2. Config file (explicit path, else $VERDANT_CONFIG, else
//     ~/.config/verdant/config.yaml)
//  3. Environment variables (a .env file in the working directory is
//     loaded first, if present)
func (l *Loader) Load(explicitPath string) (*Config, error) {
	// .env values become plain environment variables; existing ones win.
	if err := godotenv.Load(); err == nil {
		l.logger.Debug("loaded .env file")
	}

	config := DefaultConfig()

	path := explicitPath
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		path = l.userConfigPath()
	}

	if path != "" {
		loaded, err := LoadFromFile(path)
		switch {
		case err == nil:
			l.logger.Debug("loaded config file", slog.String("path", path))
			config = loaded
		case errors.Is(err, fs.ErrNotExist) && explicitPath == "":
			l.logger.Debug("no config file found", slog.String("path", path))
		default:
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	if err := l.applyEnv(config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnv overlays recognized environment variables onto the config.
func (l *Loader) applyEnv(config *Config) error {
	if v := os.Getenv(EnvAPIURL); v != "" {
		config.API.BaseURL = v
	}
	if v := os.Getenv(EnvAPITimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvAPITimeout, err)
		}
		config.API.Timeout = d
	}
	if v := os.Getenv(EnvSessionPath); v != "" {
		config.Session.Path = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		config.Log.Level = v
	}
	if v := os.Getenv(EnvMaxRetries); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvMaxRetries, err)
		}
		config.API.Retry.MaxAttempts = n
	}
	return nil
}

// userConfigPath returns the path to the user config file.
func (l *Loader) userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, UserConfigDir, UserConfigFile)
}
