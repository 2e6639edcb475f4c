package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past recovery runs from the catalog",
	Long: `Reads the run-history catalog and lists recent recoveries, newest
first. Requires a catalog path in the configuration.

Example:
  ion history --config ion.yaml --limit 20`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum runs to list")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Catalog.Path == "" {
		return fmt.Errorf("no catalog configured: set catalog.path in the config file")
	}

	store, err := openCatalog(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(historyLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("no recorded runs")
		return nil
	}

	fmt.Printf("%-36s  %-20s  %-11s  %-24s  %s\n", "RUN", "FILE", "KIND", "STRATEGY", "WHEN")
	for _, e := range entries {
		fmt.Printf("%-36s  %-20s  %-11s  %-24s  %s\n",
			e.RunID, e.Basename, e.Kind, e.Strategy,
			e.RecordedAt.Local().Format("2006-01-02 15:04:05"))
	}
	return nil
}
