package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsUsedWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default().Server.Port, cfg.Server.Port)
}

func TestLoadOverlaysFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cradle.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"server":{"port":"9090"},"pools":{"compute_workers":8}}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "9090", cfg.Server.Port)
	require.Equal(t, 8, cfg.Pools.ComputeWorkers)
	// untouched fields keep their Default() values.
	require.Equal(t, Default().Cache.UnusedSizeLimitBytes, cfg.Cache.UnusedSizeLimitBytes)
}

func TestEnvOverridesWinOverFileAndDefaults(t *testing.T) {
	t.Setenv("CRADLE_SERVER_PORT", "7777")
	t.Setenv("CRADLE_COMPUTE_WORKERS", "16")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "7777", cfg.Server.Port)
	require.Equal(t, 16, cfg.Pools.ComputeWorkers)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
