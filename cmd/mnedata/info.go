package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mnetools/mnedata/internal/datadir"
	"github.com/mnetools/mnedata/internal/dataset"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the resolved data directory and registered datasets",
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path, err := datadir.Resolve(cfg.DataDir)
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)
	red := color.New(color.FgRed, color.Bold)

	fmt.Println()
	cyan.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	cyan.Println("MNE DATA DIRECTORY")
	cyan.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()

	home, err := os.UserHomeDir()
	if err == nil {
		fmt.Printf("Home:       %s\n", home)
	}
	fmt.Printf("Data dir:   %s\n", path)
	if cfg.DataDir != "" {
		fmt.Printf("Source:     configured (config file, MNE_DATA, or --data-dir)\n")
	} else {
		fmt.Printf("Source:     default (%s under home)\n", datadir.DirName)
	}

	cyan.Print("Status:     ")
	isDir, exists := datadir.IsDir(path)
	switch {
	case !exists:
		yellow.Println("MISSING")
		fmt.Println("            → run 'mnedata ensure' to create it")
	case !isDir:
		red.Println("NOT A DIRECTORY")
		fmt.Println("            → a regular file occupies the target path")
	default:
		green.Println("OK")
	}

	if exists && isDir {
		fmt.Println()
		if err := printRegistry(cmd.Context(), path); err != nil {
			return err
		}
	}

	fmt.Println()
	cyan.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()
	return nil
}

func printRegistry(ctx context.Context, dataDir string) error {
	regPath := registryPath(dataDir)
	if _, err := os.Stat(regPath); os.IsNotExist(err) {
		fmt.Println("Datasets:   none registered")
		return nil
	}

	reg, err := dataset.OpenRegistry(regPath)
	if err != nil {
		return err
	}
	defer reg.Close()

	records, err := reg.List(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("Datasets:   none registered")
		return nil
	}

	fmt.Printf("Datasets:   %d registered\n", len(records))
	for _, rec := range records {
		fmt.Printf("            %s %s (%s, fetched %s)\n",
			rec.Name, rec.Version,
			humanize.Bytes(uint64(rec.ArchiveSize)),
			humanize.Time(rec.FetchedAt))
	}
	return nil
}

func registryPath(dataDir string) string {
	return filepath.Join(dataDir, ".mnedata", "registry.bolt")
}
