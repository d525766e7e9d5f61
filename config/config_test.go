package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborist/neurotrace/config"
)

func TestDefault_MatchesSpecLiterals(t *testing.T) {
	cfg := config.Default()

	assert.Equal(t, 3, cfg.Connectivity)
	assert.Equal(t, 5, cfg.SmoothingWindow)
	assert.Equal(t, 1.0, cfg.ResampleStep)
	assert.Equal(t, "dense", cfg.StorageBackend)
	assert.InDelta(t, 1.0/9.0, cfg.Pruning.SrRatio, 1e-9)
	assert.Equal(t, 5.0, cfg.Pruning.LThresh)
	assert.True(t, cfg.Pruning.EnableLeafJointPruning)
}

func TestLoad_OverridesDefaultsFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "threshold: 42\nconnectivity: 1\npruning:\n  lThresh: 10\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 42.0, cfg.Threshold)
	assert.Equal(t, 1, cfg.Connectivity)
	assert.Equal(t, 10.0, cfg.Pruning.LThresh)
	// Fields absent from the YAML keep Default's values.
	assert.Equal(t, 5, cfg.SmoothingWindow)
	assert.Equal(t, "dense", cfg.StorageBackend)
}

func TestLoad_MissingFileReturnsError(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
