// Package cmd defines the petroagent CLI.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/expsdz/petroagent/internal/config"
	"github.com/expsdz/petroagent/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "petroagent",
	Short: "Petroleum engineering chat assistant",
	Long: `petroagent answers petroleum engineering questions from a local
document collection, with per-user daily keyword quotas.

Running petroagent without a subcommand starts the interactive chat.`,
	SilenceUsage: true,
	RunE:         runChat,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadAppConfig loads configuration and a logger configured from it.
func loadAppConfig() (*config.Config, log.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}
	logger := log.New(log.Config{Level: log.ParseLevel(cfg.LogLevel), JSON: cfg.LogJSON})
	return cfg, logger, nil
}
