package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"STAGEHOUSE_DB", "STAGEHOUSE_ADDR", "STAGEHOUSE_ADMIN_USER",
		"STAGEHOUSE_LOG", "STAGEHOUSE_LEDGER_MODE", "STAGEHOUSE_PORTFOLIO_LIMIT",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	t.Chdir(t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "stagehouse.sqlite3", cfg.DBPath)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "Admin", cfg.AdminUser)
	assert.Equal(t, LedgerStrict, cfg.LedgerMode)
	assert.Equal(t, DefaultPortfolioLimit, cfg.PortfolioLimit)
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("STAGEHOUSE_ADDR", "127.0.0.1:9000")
	t.Setenv("STAGEHOUSE_LEDGER_MODE", LedgerPermissive)
	t.Setenv("STAGEHOUSE_PORTFOLIO_LIMIT", "3")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, LedgerPermissive, cfg.LedgerMode)
	assert.Equal(t, 3, cfg.PortfolioLimit)
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("STAGEHOUSE_DB=/tmp/file.sqlite3\nSTAGEHOUSE_ADMIN_USER=root\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/file.sqlite3", cfg.DBPath)
	assert.Equal(t, "root", cfg.AdminUser)
}

func TestLoadMissingEnvFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestInvalidIntIsReported(t *testing.T) {
	clearEnv(t)
	t.Setenv("STAGEHOUSE_PORTFOLIO_LIMIT", "lots")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STAGEHOUSE_PORTFOLIO_LIMIT")
}

func TestInvalidEnvCanBeOverriddenBeforeValidate(t *testing.T) {
	clearEnv(t)
	t.Setenv("STAGEHOUSE_LEDGER_MODE", "lenient")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Error(t, cfg.Validate())

	cfg.LedgerMode = LedgerPermissive
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	valid := Config{DBPath: "x", Addr: ":1", AdminUser: "a", LedgerMode: LedgerStrict, PortfolioLimit: 1}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no db", func(c *Config) { c.DBPath = "" }},
		{"no addr", func(c *Config) { c.Addr = "" }},
		{"no admin", func(c *Config) { c.AdminUser = "" }},
		{"bad ledger mode", func(c *Config) { c.LedgerMode = "lenient" }},
		{"zero limit", func(c *Config) { c.PortfolioLimit = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
