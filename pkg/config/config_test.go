package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/filesync/pkg/config"
	"github.com/arthur-debert/filesync/pkg/testutil"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()

	assert.Equal(t, 0, cfg.Sync.Workers)
	assert.Equal(t, 100, cfg.Sync.ProgressInterval)
	assert.Equal(t, 999, cfg.Placer.MaxCollisionAttempts)
	assert.False(t, cfg.Database.Keep)
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	testutil.CreateFile(t, dir, ".filesync.toml", `
[sync]
workers = 2

[placer]
max_collision_attempts = 5
`)

	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Sync.Workers)
	assert.Equal(t, 5, cfg.Placer.MaxCollisionAttempts)
	// Untouched keys keep their defaults
	assert.Equal(t, 100, cfg.Sync.ProgressInterval)
}

func TestLoad_DottedNamePreferred(t *testing.T) {
	dir := t.TempDir()
	testutil.CreateFile(t, dir, ".filesync.toml", "[sync]\nworkers = 1\n")
	testutil.CreateFile(t, dir, "filesync.toml", "[sync]\nworkers = 9\n")

	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Sync.Workers)
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	testutil.CreateFile(t, dir, ".filesync.toml", "not [valid toml")

	_, err := config.Load(dir)
	assert.Error(t, err)
}
