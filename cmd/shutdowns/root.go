package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"shutdowns-bot/internal/config"
	"shutdowns-bot/internal/logger"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:           "shutdowns",
	Short:         "Power shutdown schedule bot for Chernivtsi oblenergo groups",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "optional YAML configuration file")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// loadConfig reads .env, the config file and the environment.
func loadConfig(requireToken bool) (*config.Config, error) {
	// Load .env if present.
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(requireToken); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	return cfg, nil
}
