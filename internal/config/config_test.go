package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"DATABASE_URL", "MIGRATIONS_DIR", "LOG_LEVEL", "LOG_FORMAT", "DB_MAX_CONNS"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, DefaultMigrationsDir, cfg.MigrationsDir)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultLogFormat, cfg.LogFormat)
	assert.EqualValues(t, DefaultMaxConns, cfg.MaxConns)
	assert.Error(t, cfg.RequireDatabase())
}

func TestLoadFromFileAndEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), ".env")
	content := "DATABASE_URL=postgres://rebels@localhost/starfaves\nLOG_LEVEL=debug\nDB_MAX_CONNS=4\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	// Variables already set win over the file.
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://rebels@localhost/starfaves", cfg.DatabaseURL)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.EqualValues(t, 4, cfg.MaxConns)
	assert.NoError(t, cfg.RequireDatabase())
}

func TestLoadInvalidMaxConns(t *testing.T) {
	for _, v := range []string{"many", "0", "-2"} {
		t.Run(v, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("DB_MAX_CONNS", v)

			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			assert.Error(t, err)
		})
	}
}
