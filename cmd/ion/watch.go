package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iSundram/ion/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a directory and recover containers as they appear",
	Long: `Monitors the directory for new or modified .php files and runs the
recovery flow on each once its writes have settled. Runs until
interrupted.

Example:
  ion watch ./incoming --config ion.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := func(ctx context.Context, path string) {
		d, err := recoverFile(runner, cfg, store, path)
		if err != nil {
			logger.Warn("recovery failed", zap.String("file", filepath.Base(path)), zap.Error(err))
			return
		}
		fmt.Println(d.Render())
	}

	w, err := watch.New(args[0], handler, logger)
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	fmt.Printf("watching %s, press Ctrl-C to stop\n", args[0])

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		logger.Info("shutdown signal received")
	case <-ctx.Done():
	}
	return nil
}
