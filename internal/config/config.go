// Package config holds the tool configuration, loaded from a YAML file with
// sane defaults for every field.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config is the full ion configuration.
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline"`
	Output   OutputConfig   `yaml:"output"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Batch    BatchConfig    `yaml:"batch"`
}

// PipelineConfig tunes the recovery pipeline.
type PipelineConfig struct {
	// DisableEntropyGate attempts every strategy regardless of measured
	// payload entropy.
	DisableEntropyGate bool `yaml:"disable_entropy_gate"`

	// StrictValidate layers a real PHP parse on the token oracle.
	StrictValidate bool `yaml:"strict_validate"`

	// ExtraXORKeys extends the built-in key dictionary; hex-encoded,
	// e.g. "5aa5" or "deadbeef".
	ExtraXORKeys []string `yaml:"extra_xor_keys"`
}

// OutputConfig controls where recovered artifacts land.
type OutputConfig struct {
	// Dir receives recovered files and reports. Defaults to "decoded".
	Dir string `yaml:"dir"`

	// WriteReport also writes the JSON diagnostics next to the output.
	WriteReport bool `yaml:"write_report"`
}

// CatalogConfig configures the run-history database.
type CatalogConfig struct {
	// Path of the SQLite catalog. Empty disables history recording.
	Path string `yaml:"path"`
}

// BatchConfig tunes directory-wide runs.
type BatchConfig struct {
	// Workers bounds parallel recovery runs. Defaults to GOMAXPROCS.
	Workers int `yaml:"workers"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.defaults()
	return cfg
}

func (c *Config) defaults() {
	if c.Output.Dir == "" {
		c.Output.Dir = "decoded"
	}
	if c.Batch.Workers <= 0 {
		c.Batch.Workers = runtime.GOMAXPROCS(0)
	}
}

// Load reads a YAML config file and applies defaults. A missing file is not
// an error; defaults are returned.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.defaults()
	return cfg, nil
}

// DecodedXORKeys decodes the configured extra XOR keys.
func (c *Config) DecodedXORKeys() ([][]byte, error) {
	keys := make([][]byte, 0, len(c.Pipeline.ExtraXORKeys))
	for _, s := range c.Pipeline.ExtraXORKeys {
		key, err := hex.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("xor key %q: %w", s, err)
		}
		if len(key) == 0 {
			return nil, fmt.Errorf("xor key %q: empty", s)
		}
		keys = append(keys, key)
	}
	return keys, nil
}
