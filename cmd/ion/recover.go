package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iSundram/ion/internal/catalog"
	"github.com/iSundram/ion/internal/config"
	"github.com/iSundram/ion/internal/container"
	"github.com/iSundram/ion/internal/pipeline"
	"github.com/iSundram/ion/internal/report"
)

var recoverCmd = &cobra.Command{
	Use:   "recover [file]",
	Short: "Recover source from a single ionCube container",
	Long: `Parses the container header and payload from the given .php file, runs
the decode strategy list, and writes the recovered (or synthesized)
source plus a diagnostics report to the output directory.

Example:
  ion recover config.php
  ion recover --config ion.yaml admin_panel.php`,
	Args: cobra.ExactArgs(1),
	RunE: runRecover,
}

func runRecover(cmd *cobra.Command, args []string) error {
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

	d, err := recoverFile(runner, cfg, store, args[0])
	if err != nil {
		return err
	}

	fmt.Println(d.Render())
	return nil
}

// recoverFile runs the full recovery flow for one container file: parse,
// decode, write output and report, record in the catalog. Returns the
// diagnostics for the run.
func recoverFile(runner *pipeline.Runner, cfg *config.Config, store *catalog.Store, path string) (*report.Diagnostics, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	c, err := container.Parse(raw)
	if err != nil {
		if errors.Is(err, container.ErrMalformedContainer) {
			return nil, fmt.Errorf("%s is not an ionCube container: %w", path, err)
		}
		return nil, err
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	outcome := runner.Run(c, base)
	d := report.Build(c, base, outcome)

	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	outPath := filepath.Join(cfg.Output.Dir, base+"_recovered.php")
	if err := os.WriteFile(outPath, outcome.Output, 0o644); err != nil {
		return nil, fmt.Errorf("write recovered source: %w", err)
	}
	logger.Info("wrote recovered source",
		zap.String("file", outPath),
		zap.String("kind", string(d.RecoveryKind)))

	if cfg.Output.WriteReport {
		reportJSON, err := d.JSON()
		if err != nil {
			return nil, err
		}
		reportPath := filepath.Join(cfg.Output.Dir, base+"_report.json")
		if err := os.WriteFile(reportPath, reportJSON, 0o644); err != nil {
			return nil, fmt.Errorf("write report: %w", err)
		}
	}

	if store != nil {
		if err := store.Record(d); err != nil {
			logger.Warn("catalog record failed", zap.Error(err))
		}
	}

	return d, nil
}

// openCatalog opens the run-history catalog when one is configured. A nil
// store means history is disabled.
func openCatalog(cfg *config.Config) (*catalog.Store, error) {
	if cfg.Catalog.Path == "" {
		return nil, nil
	}
	return catalog.Open(cfg.Catalog.Path)
}
