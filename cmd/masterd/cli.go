package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/streamforge/jetmaster/internal/config"
)

// app bundles the cobra root command and the flags shared by every
// subcommand, mirroring the teacher's cli.App.
type app struct {
	rootCmd *cobra.Command
	verbose bool
	cfgPath string
}

func newApp() *app {
	a := &app{}

	a.rootCmd = &cobra.Command{
		Use:           "masterd",
		Short:         "masterd coordinates distributed dataflow job execution",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	a.rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	a.rootCmd.PersistentFlags().StringVar(&a.cfgPath, "config", "", "path to masterd.yaml (defaults to the built-in config)")

	a.rootCmd.AddCommand(a.newRunCmd())

	return a
}

func (a *app) Execute() error {
	return a.rootCmd.Execute()
}

func (a *app) loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if a.cfgPath != "" {
		cfg, err = config.Load(a.cfgPath)
	} else {
		cfg, err = config.DefaultConfig()
	}
	if err != nil {
		return nil, fmt.Errorf("masterd: load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (a *app) logger() *slog.Logger {
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
