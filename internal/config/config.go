// Package config reads starfaves settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	DefaultMigrationsDir = "migrations"
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
	DefaultMaxConns      = 10
)

type Config struct {
	DatabaseURL   string
	MigrationsDir string
	LogLevel      string
	LogFormat     string
	MaxConns      int32
}

// Load reads the configuration. Files (".env" when none are given) are
// loaded first without overriding variables already set; a missing file is
// not an error.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	cfg := &Config{
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		MigrationsDir: getenvOrDefault("MIGRATIONS_DIR", DefaultMigrationsDir),
		LogLevel:      getenvOrDefault("LOG_LEVEL", DefaultLogLevel),
		LogFormat:     getenvOrDefault("LOG_FORMAT", DefaultLogFormat),
		MaxConns:      DefaultMaxConns,
	}

	if v := os.Getenv("DB_MAX_CONNS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("DB_MAX_CONNS must be a positive integer, got %q", v)
		}
		cfg.MaxConns = int32(n)
	}

	return cfg, nil
}

// RequireDatabase returns an error when no database URL is configured.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return errors.New("no database configured: set DATABASE_URL or pass --db")
	}
	return nil
}

// getenvOrDefault returns the environment variable value if set, otherwise def.
func getenvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
