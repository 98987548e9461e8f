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

	assert.Equal(t, 768, cfg.Index.Dimension)
	assert.Equal(t, 0.1, cfg.Expand.DecayAlpha)
	assert.Equal(t, 4, cfg.Expand.MaxHops)
	assert.Equal(t, 150, cfg.Retrieve.SeedK)
	assert.Equal(t, 80, cfg.Retrieve.MaxCandidates)
	assert.Equal(t, 120000, cfg.Assemble.MaxTokens)
	require.NoError(t, cfg.Validate())
}

func TestLoadBackfillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("index:\n  dimension: 384\nexpand:\n  max_hops: 2\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 384, cfg.Index.Dimension)
	assert.Equal(t, 2, cfg.Expand.MaxHops)
	// Untouched fields fall back to defaults
	assert.Equal(t, 150, cfg.Expand.MaxNodes)
	assert.Equal(t, 0.1, cfg.Expand.DecayAlpha)
	assert.Equal(t, 120000, cfg.Assemble.MaxTokens)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("index:\n  dimension: -1\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index.dimension")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
