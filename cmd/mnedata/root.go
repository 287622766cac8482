package main

import (
	"fmt"
	"os"

	"github.com/mnetools/mnedata/internal/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	version     = "dev"
	configPath  string
	dataDirFlag string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mnedata",
	Short: "mnedata - Manage the MNE data directory",
	Long: `mnedata maintains the MNE data directory (mne_data under your home
directory by default), fetches datasets into it, and runs basic ECG artifact
detection on recorded signals.`,
	Version: version,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default to the ensure command when no subcommand is provided
		return runEnsure(cmd, args)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "Data directory (overrides config and MNE_DATA)")
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig loads configuration, applying the --data-dir flag on top.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if dataDirFlag != "" {
		cfg.DataDir = dataDirFlag
	}
	return cfg, nil
}

// setupLogger configures the logger based on configuration. Command results
// go to stdout; the log stream stays on stderr.
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	switch cfg.Level {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}
