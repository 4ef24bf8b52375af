// Package main provides the verdant binary entry point. Verdant is a
// command-line client for the plant-tracking backend: authentication,
// profile management, plant photo upload and analysis browsing, and
// notifications.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/verdantlabs/verdant/commands"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "verdant"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
		jsonOut    bool
	)

	app := &commands.App{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Plant-tracking client",
		Long: `Verdant is a command-line client for the plant-tracking backend.

Track your plants from the terminal: register or sign in, add plants
with photos, browse AI-derived stage and species classifications, review
upload history, and keep an eye on notifications.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.Init(configPath, logLevel, jsonOut)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.Close()
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Print machine-readable JSON output")

	cmd.AddCommand(
		commands.Login(app),
		commands.Logout(app),
		commands.Register(app),
		commands.ResetPassword(app),
		commands.Whoami(app),
		commands.Profile(app),
		commands.Plants(app),
		commands.Plant(app),
		commands.Notifications(app),
	)

	// Version command skips app initialization; it needs no config.
	cmd.AddCommand(&cobra.Command{
		Use:               "version",
		Short:             "Print version information",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}
