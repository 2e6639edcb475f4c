package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/iSundram/ion/internal/config"
	"github.com/iSundram/ion/internal/pipeline"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ion",
	Short: "ion - ionCube container recovery tool",
	Long: `ion reads PHP files wrapped in ionCube loader containers, extracts the
embedded payload block, and runs an ordered list of decode strategies
(base64 variants, inflate, ROT13, keyed XOR) until one yields source the
validation oracle accepts. When no strategy succeeds, ion emits a
deterministic synthetic replacement matched to the file's role so that
dependent code keeps loading.

Recovered output is written next to a JSON diagnostics report describing
exactly how the bytes were produced.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (YAML)")

	rootCmd.AddCommand(recoverCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig resolves the effective configuration for a command invocation.
// The --config flag wins over the ION_CONFIG environment variable.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = os.Getenv("ION_CONFIG")
	}
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// buildRunner constructs a pipeline runner from the loaded configuration.
func buildRunner(cfg *config.Config) (*pipeline.Runner, error) {
	extraKeys, err := cfg.DecodedXORKeys()
	if err != nil {
		return nil, err
	}
	return pipeline.New(pipeline.Config{
		DisableEntropyGate: cfg.Pipeline.DisableEntropyGate,
		StrictValidate:     cfg.Pipeline.StrictValidate,
		ExtraXORKeys:       extraKeys,
		Logger:             logger,
	}), nil
}
