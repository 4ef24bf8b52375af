package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdantlabs/verdant/config"
)

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()

	assert.Equal(t, "http://localhost:8080", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, 3, cfg.API.Retry.MaxAttempts)
	assert.Equal(t, time.Second, cfg.API.Retry.BackoffBase)
	assert.Equal(t, 10*time.Second, cfg.API.Retry.MaxBackoff)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"missing base url", func(c *config.Config) { c.API.BaseURL = "" }},
		{"base url without scheme", func(c *config.Config) { c.API.BaseURL = "localhost:8080" }},
		{"non-positive timeout", func(c *config.Config) { c.API.Timeout = 0 }},
		{"zero attempts", func(c *config.Config) { c.API.Retry.MaxAttempts = 0 }},
		{"multiplier below one", func(c *config.Config) { c.API.Retry.BackoffMultiplier = 0.5 }},
		{"missing session path", func(c *config.Config) { c.Session.Path = "" }},
		{"unknown log level", func(c *config.Config) { c.Log.Level = "verbose" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_SaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := config.DefaultConfig()
	cfg.API.BaseURL = "https://api.verdant.example"
	cfg.API.Retry.MaxAttempts = 5
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := config.LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.verdant.example", loaded.API.BaseURL)
	assert.Equal(t, 5, loaded.API.Retry.MaxAttempts)
}

func TestLoadFromFile_LayersOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	partial := "api:\n  base_url: https://api.verdant.example\n"
	require.NoError(t, os.WriteFile(path, []byte(partial), 0o644))

	cfg, err := config.LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.verdant.example", cfg.API.BaseURL)
	assert.Equal(t, 3, cfg.API.Retry.MaxAttempts, "unset fields keep defaults")
}

func TestLoader_EnvOverrides(t *testing.T) {
	t.Setenv(config.EnvAPIURL, "https://env.verdant.example")
	t.Setenv(config.EnvAPITimeout, "5s")
	t.Setenv(config.EnvMaxRetries, "7")
	t.Setenv(config.EnvLogLevel, "debug")

	loader := config.NewLoader(nil)
	cfg, err := loader.Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://env.verdant.example", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, 7, cfg.API.Retry.MaxAttempts)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoader_ExplicitPathMustExist(t *testing.T) {
	loader := config.NewLoader(nil)

	_, err := loader.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "an explicitly named config file must exist")
}

func TestLoader_ExplicitPathWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "api:\n  base_url: https://file.verdant.example\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	loader := config.NewLoader(nil)
	cfg, err := loader.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://file.verdant.example", cfg.API.BaseURL)
}
