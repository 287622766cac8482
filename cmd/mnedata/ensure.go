package main

import (
	"fmt"

	"github.com/mnetools/mnedata/internal/datadir"
	"github.com/spf13/cobra"
)

var ensureCmd = &cobra.Command{
	Use:   "ensure",
	Short: "Ensure the MNE data directory exists",
	Long: `Ensure resolves the data directory (mne_data under your home directory
unless overridden), creates it if absent, and reports the outcome. Running it
again is harmless: an existing entry at the target path is left untouched.`,
	RunE: runEnsure,
}

func init() {
	rootCmd.AddCommand(ensureCmd)
}

func runEnsure(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.Logging)

	path, err := datadir.Resolve(cfg.DataDir)
	if err != nil {
		return err
	}

	logger.Debug().Str("path", path).Msg("Ensuring data directory")

	state, err := datadir.Ensure(path)
	if err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}

	switch state {
	case datadir.StateCreated:
		fmt.Printf("Directory created: %s\n", path)
	default:
		fmt.Printf("Directory already exists: %s\n", path)
	}
	return nil
}
