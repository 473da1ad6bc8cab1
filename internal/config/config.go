// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Ledger modes.
const (
	LedgerStrict     = "strict"
	LedgerPermissive = "permissive"
)

// DefaultPortfolioLimit caps the highlighted portfolio when no limit is asked for.
const DefaultPortfolioLimit = 12

// Config holds the server configuration.
type Config struct {
	DBPath         string
	Addr           string
	AdminUser      string
	LogPath        string
	LedgerMode     string
	PortfolioLimit int
}

// Load reads envFile (or ./.env when envFile is empty and the file exists)
// into the process environment, then builds a Config from STAGEHOUSE_*
// variables. Variables already set in the environment win over the file.
//
// Load does not call Validate; callers apply their overrides first.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	portfolioLimit, err := getEnvAsInt("STAGEHOUSE_PORTFOLIO_LIMIT", DefaultPortfolioLimit)
	if err != nil {
		return nil, err
	}

	return &Config{
		DBPath:         getEnv("STAGEHOUSE_DB", "stagehouse.sqlite3"),
		Addr:           getEnv("STAGEHOUSE_ADDR", ":8080"),
		AdminUser:      getEnv("STAGEHOUSE_ADMIN_USER", "Admin"),
		LogPath:        getEnv("STAGEHOUSE_LOG", ""),
		LedgerMode:     getEnv("STAGEHOUSE_LEDGER_MODE", LedgerStrict),
		PortfolioLimit: portfolioLimit,
	}, nil
}

// Validate checks the configuration after flags have been applied.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("database path is required")
	}
	if c.Addr == "" {
		return errors.New("listen address is required")
	}
	if c.AdminUser == "" {
		return errors.New("admin username is required")
	}
	if c.LedgerMode != LedgerStrict && c.LedgerMode != LedgerPermissive {
		return fmt.Errorf("ledger mode must be %q or %q, got %q", LedgerStrict, LedgerPermissive, c.LedgerMode)
	}
	if c.PortfolioLimit <= 0 {
		return fmt.Errorf("portfolio limit must be positive, got %d", c.PortfolioLimit)
	}
	return nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default
// value when it is unset.
func getEnvAsInt(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, valueStr)
	}
	return value, nil
}
