package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "sparse", cfg.DefaultRetriever)
	assert.Equal(t, 5, cfg.DefaultTopK)
	assert.Equal(t, 1.5, cfg.Sparse.K1)
	assert.Equal(t, 0.75, cfg.Sparse.B)
	assert.Equal(t, 0.25, cfg.Sparse.Epsilon)
	assert.Equal(t, 2, cfg.Sparse.MinTokenLength)
	assert.Equal(t, "hash", cfg.Dense.Model)
	assert.True(t, cfg.Dense.Normalize)
	assert.True(t, cfg.Dense.UseANN)
	assert.Equal(t, 0.7, cfg.Hybrid.FusionWeight)
}

func TestLoad_EmptyPathYieldsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "retrivd.yaml")
	content := `
log_level: debug
default_retriever: hybrid
default_top_k: 10
sparse:
  k1: 1.2
hybrid:
  fusion_weight: 0.5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "hybrid", cfg.DefaultRetriever)
	assert.Equal(t, 10, cfg.DefaultTopK)
	assert.Equal(t, 1.2, cfg.Sparse.K1)
	assert.Equal(t, 0.5, cfg.Hybrid.FusionWeight)
	// Untouched fields keep defaults.
	assert.Equal(t, 0.75, cfg.Sparse.B)
}

func TestLoad_OutOfRangeValuesCorrected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "retrivd.yaml")
	content := `
default_top_k: -1
sparse:
  k1: -2.0
  b: 1.5
hybrid:
  fusion_weight: 2.0
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.DefaultTopK)
	assert.Equal(t, 1.5, cfg.Sparse.K1)
	assert.Equal(t, 0.75, cfg.Sparse.B)
	assert.Equal(t, 0.7, cfg.Hybrid.FusionWeight)
}

func TestLoad_MalformedYAMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "retrivd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: [unterminated"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
