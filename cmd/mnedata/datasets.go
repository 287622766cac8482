package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mnetools/mnedata/internal/datadir"
	"github.com/mnetools/mnedata/internal/dataset"
	"github.com/spf13/cobra"
)

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List known datasets and their fetch status",
	RunE:  runDatasets,
}

func init() {
	rootCmd.AddCommand(datasetsCmd)
}

func runDatasets(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path, err := datadir.Resolve(cfg.DataDir)
	if err != nil {
		return err
	}

	var reg *dataset.Registry
	if _, err := os.Stat(registryPath(path)); err == nil {
		reg, err = dataset.OpenRegistry(registryPath(path))
		if err != nil {
			return err
		}
		defer reg.Close()
	}

	green := color.New(color.FgGreen, color.Bold)
	yellow := color.New(color.FgYellow)

	for _, name := range dataset.Names() {
		ds, err := dataset.Lookup(name)
		if err != nil {
			return err
		}

		fmt.Printf("%-10s %-8s ", ds.Name, ds.Version)
		if reg == nil {
			yellow.Println("not fetched")
			continue
		}

		rec, err := reg.Get(cmd.Context(), name)
		switch {
		case errors.Is(err, dataset.ErrNotFound):
			yellow.Println("not fetched")
		case err != nil:
			return err
		case rec.Version != ds.Version:
			yellow.Printf("outdated (have %s)\n", rec.Version)
		default:
			green.Printf("fetched → %s\n", rec.Path)
		}
	}
	return nil
}
