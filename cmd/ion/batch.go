package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iSundram/ion/internal/report"
)

var batchCmd = &cobra.Command{
	Use:   "batch [dir]",
	Short: "Recover every container in a directory",
	Long: `Scans the directory for .php files and runs the recovery flow on each,
bounded by the configured worker count. Files that fail to recover,
including ones that are not containers at all, are skipped with a
warning and counted in the final summary; the batch always runs to
completion.

Example:
  ion batch ./encoded --config ion.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	runner, err := buildRunner(cfg)
	if err != nil {
		return err
	}

	store, err := openCatalog(cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	entries, err := os.ReadDir(args[0])
	if err != nil {
		return fmt.Errorf("read directory %s: %w", args[0], err)
	}

	var targets []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".php") || strings.HasSuffix(name, "_recovered.php") {
			continue
		}
		targets = append(targets, filepath.Join(args[0], name))
	}
	if len(targets) == 0 {
		fmt.Println("no container files found")
		return nil
	}

	var (
		mu      sync.Mutex
		decoded int
		synthed int
		skipped int
	)

	g := new(errgroup.Group)
	g.SetLimit(cfg.Batch.Workers)
	for _, path := range targets {
		path := path
		g.Go(func() error {
			d, err := recoverFile(runner, cfg, store, path)
			if err != nil {
				// Not every .php file in a dump is a container.
				logger.Warn("skipping file", zap.String("file", path), zap.Error(err))
				mu.Lock()
				skipped++
				mu.Unlock()
				return nil
			}
			mu.Lock()
			if d.RecoveryKind == report.KindDecoded {
				decoded++
			} else {
				synthed++
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Printf("batch complete: %d decoded, %d synthesized, %d skipped of %d files\n",
		decoded, synthed, skipped, len(targets))
	return nil
}
