package main

import (
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/dustin/go-humanize"
	"github.com/mnetools/mnedata/internal/datadir"
	"github.com/mnetools/mnedata/internal/dataset"
	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch NAME",
	Short: "Download a dataset into the data directory",
	Long: `Fetch downloads a known dataset archive into the data directory,
verifies its checksum, unpacks it, and records it in the local registry.
The data directory is created first when missing.`,
	Example: `  mnedata fetch sample
  mnedata --data-dir /srv/mne fetch somato`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	name := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.Logging)

	path, err := datadir.Resolve(cfg.DataDir)
	if err != nil {
		return err
	}
	if _, err := datadir.Ensure(path); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}

	reg, err := dataset.OpenRegistry(registryPath(path))
	if err != nil {
		return err
	}
	defer reg.Close()

	fetcher := dataset.NewFetcher(path, reg, dataset.FetcherConfig{
		Timeout: cfg.FetchTimeout(),
		Mirror:  cfg.Fetch.Mirror,
	}, logger)

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = fmt.Sprintf(" fetching dataset %s...", name)
	s.Start()
	res, err := fetcher.Fetch(cmd.Context(), name)
	s.Stop()
	if err != nil {
		return err
	}

	if res.Downloaded {
		fmt.Printf("Dataset %s %s ready at %s (%s downloaded)\n",
			res.Record.Name, res.Record.Version, res.Record.Path,
			humanize.Bytes(uint64(res.Record.ArchiveSize)))
	} else {
		fmt.Printf("Dataset %s %s already present at %s\n",
			res.Record.Name, res.Record.Version, res.Record.Path)
	}
	return nil
}
