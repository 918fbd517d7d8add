package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	names := []string{
		"server-2026-01-01T00-00-00.log",
		"server-2026-01-02T00-00-00.log",
		"server-2026-01-03T00-00-00.log",
		"seed-2026-01-01T00-00-00.log",
	}
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), nil, 0o644))
	}

	require.NoError(t, cleanupOldLogs(dir, "server", 2))

	remaining, err := filepath.Glob(filepath.Join(dir, "*.log"))
	require.NoError(t, err)
	assert.Len(t, remaining, 3)
	assert.NoFileExists(t, filepath.Join(dir, "server-2026-01-01T00-00-00.log"))
	assert.FileExists(t, filepath.Join(dir, "seed-2026-01-01T00-00-00.log"))
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("TABLE_PREFIX", "")

	cfg := Load()

	assert.Equal(t, "test_", cfg.TablePrefix)
	assert.Equal(t, "8080", cfg.Port)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Empty(t, cfg.RedisURL)
}

func TestLoad_ProdHasNoDefaultSecret(t *testing.T) {
	t.Setenv("ENVIRONMENT", "prod")
	t.Setenv("AUTH_JWT_SECRET", "")

	cfg := Load()

	assert.Equal(t, "prod_", cfg.TablePrefix)
	assert.Empty(t, cfg.JWTSecret)
}
