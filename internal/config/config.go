// Package config loads client configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// DefaultPageLimit is the fixed page size for the applications list. It is
// not user-configurable within a session, only via the environment.
const DefaultPageLimit = 10

// Config holds everything the client needs to run.
type Config struct {
	// APIURL is the base URL of the remote tracker API, without a trailing
	// slash. Example: https://tracker.example.com/api
	APIURL string

	// StateDB is the path of the local sqlite file holding the stored
	// credential. This is the entire persisted footprint of the client.
	StateDB string

	// PageLimit is the page size used for every list fetch in a session.
	PageLimit int

	// LogLevel is one of debug, info, warn, error.
	LogLevel slog.Level
}

// Load reads configuration from the environment. A missing .env file is not
// an error; in production the variables are set directly.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		APIURL:    getEnv("JOBTRACK_API_URL", "http://localhost:3000"),
		StateDB:   getEnv("JOBTRACK_STATE_DB", defaultStatePath()),
		PageLimit: getEnvAsInt("JOBTRACK_PAGE_LIMIT", DefaultPageLimit),
		LogLevel:  parseLevel(getEnv("JOBTRACK_LOG_LEVEL", "info")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("JOBTRACK_API_URL is required")
	}
	if c.PageLimit < 1 || c.PageLimit > 100 {
		return fmt.Errorf("JOBTRACK_PAGE_LIMIT must be between 1 and 100, got %d", c.PageLimit)
	}
	return nil
}

// defaultStatePath puts the state file under the user config dir, falling
// back to the working directory when the home lookup fails.
func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "jobtrack.db"
	}
	return filepath.Join(dir, "jobtrack", "state.db")
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
