// Package commands implements the verdant CLI commands. Commands are thin
// presentation: flag parsing, prompting, and printing; all behavior lives in
// the service packages.
package commands

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/verdantlabs/verdant/api"
	"github.com/verdantlabs/verdant/auth"
	"github.com/verdantlabs/verdant/config"
	"github.com/verdantlabs/verdant/notification"
	"github.com/verdantlabs/verdant/plant"
	"github.com/verdantlabs/verdant/session"
	"github.com/verdantlabs/verdant/user"
)

// App wires configuration, transport, session state, and services for the
// command tree. It is initialized once per invocation in the root command's
// PersistentPreRunE.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	Store  *session.Store
	Signal *session.Signal
	Client *api.Client

	Auth          *auth.Service
	User          *user.Service
	Plants        *plant.Service
	Notifications *notification.Service

	// JSON switches command output from human-readable text to JSON.
	JSON bool
}

// Init loads configuration and constructs the service graph.
func (a *App) Init(configPath, logLevel string, jsonOut bool) error {
	logger := newLogger(logLevel)
	slog.SetDefault(logger)

	loader := config.NewLoader(logger)
	cfg, err := loader.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if logLevel == "" && cfg.Log.Level != "" {
		logger = newLogger(cfg.Log.Level)
		slog.SetDefault(logger)
	}

	store, err := session.Open(cfg.Session.Path)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}

	signal := session.NewSignal()

	client := api.New(cfg.API.BaseURL,
		api.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		api.WithLogger(logger),
		api.WithTokenSource(store),
		api.WithRetryConfig(api.RetryConfig{
			MaxAttempts:       cfg.API.Retry.MaxAttempts,
			BackoffBase:       cfg.API.Retry.BackoffBase,
			BackoffMultiplier: cfg.API.Retry.BackoffMultiplier,
			MaxBackoff:        cfg.API.Retry.MaxBackoff,
		}),
	)

	a.Config = cfg
	a.Logger = logger
	a.Store = store
	a.Signal = signal
	a.Client = client
	a.Auth = auth.NewService(client, store, auth.WithLogger(logger), auth.WithSignal(signal))
	a.User = user.NewService(client)
	a.Plants = plant.NewService(client, plant.WithLogger(logger), plant.WithSignal(signal))
	a.Notifications = notification.NewService(client, notification.WithLogger(logger), notification.WithSignal(signal))
	a.JSON = jsonOut
	return nil
}

// Close releases resources held by the app.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

func newLogger(level string) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
