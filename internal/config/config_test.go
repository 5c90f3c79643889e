package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
env: dev
storage:
  path: storage/test.db
http_server:
  address: localhost:8082
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "storage/test.db", cfg.Storage.Path)
	assert.EqualValues(t, 10, cfg.Storage.MaxConns)
	assert.Equal(t, "localhost:8082", cfg.HTTPServer.Addr)
	assert.Equal(t, 10*time.Second, cfg.HTTPServer.Timeout)
	assert.Equal(t, 60*time.Second, cfg.HTTPServer.IdleTimeout)
	assert.Equal(t, 5*time.Second, cfg.HTTPServer.ShutdownTimeout)
	assert.False(t, cfg.HTTPServer.EnablePurge)
	assert.Equal(t, 7, cfg.Birthdays.WindowDays)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
env: dev
storage:
  path: storage/test.db
http_server:
  address: localhost:8082
`)
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/students")
	t.Setenv("BIRTHDAYS_WINDOW_DAYS", "14")
	t.Setenv("HTTP_SERVER_ENABLE_PURGE", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, "postgres://u:p@localhost:5432/students", cfg.Storage.DSN)
	assert.Equal(t, 14, cfg.Birthdays.WindowDays)
	assert.True(t, cfg.HTTPServer.EnablePurge)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "does not exist")
}

func TestLoadMissingRequired(t *testing.T) {
	path := writeConfig(t, `
storage:
  path: storage/test.db
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Env:       "dev",
			Storage:   Storage{Driver: DriverSQLite, Path: "x.db"},
			Birthdays: Birthdays{WindowDays: 7},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid sqlite", func(c *Config) {}, ""},
		{"valid postgres", func(c *Config) {
			c.Storage = Storage{Driver: DriverPostgres, DSN: "postgres://localhost/db"}
		}, ""},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "mysql" }, "unknown storage driver"},
		{"sqlite without path", func(c *Config) { c.Storage.Path = "" }, "storage.path"},
		{"postgres without dsn", func(c *Config) { c.Storage.Driver = DriverPostgres }, "storage.dsn"},
		{"zero window", func(c *Config) { c.Birthdays.WindowDays = 0 }, "window_days"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}
