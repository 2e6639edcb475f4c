package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "decoded", cfg.Output.Dir)
	assert.Equal(t, runtime.GOMAXPROCS(0), cfg.Batch.Workers)
	assert.False(t, cfg.Pipeline.DisableEntropyGate)
	assert.False(t, cfg.Pipeline.StrictValidate)
	assert.Empty(t, cfg.Catalog.Path)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "decoded", cfg.Output.Dir)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ion.yaml")
	data := `
pipeline:
  disable_entropy_gate: true
  strict_validate: true
  extra_xor_keys:
    - "5aa5"
    - "deadbeef"
output:
  dir: out
  write_report: true
catalog:
  path: runs.db
batch:
  workers: 4
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Pipeline.DisableEntropyGate)
	assert.True(t, cfg.Pipeline.StrictValidate)
	assert.Equal(t, "out", cfg.Output.Dir)
	assert.True(t, cfg.Output.WriteReport)
	assert.Equal(t, "runs.db", cfg.Catalog.Path)
	assert.Equal(t, 4, cfg.Batch.Workers)

	keys, err := cfg.DecodedXORKeys()
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.Equal(t, []byte{0x5a, 0xa5}, keys[0])
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, keys[1])
}

func TestLoadAppliesDefaultsToPartialConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ion.yaml")
	require.NoError(t, os.WriteFile(path, []byte("catalog:\n  path: runs.db\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "decoded", cfg.Output.Dir)
	assert.Equal(t, runtime.GOMAXPROCS(0), cfg.Batch.Workers)
	assert.Equal(t, "runs.db", cfg.Catalog.Path)
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ion.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\n\t- bad"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestDecodedXORKeysRejectsBadHex(t *testing.T) {
	cfg := Default()
	cfg.Pipeline.ExtraXORKeys = []string{"zz"}
	_, err := cfg.DecodedXORKeys()
	assert.Error(t, err)

	cfg.Pipeline.ExtraXORKeys = []string{""}
	_, err = cfg.DecodedXORKeys()
	assert.Error(t, err)
}
