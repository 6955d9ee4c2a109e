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
	path := filepath.Join(t.TempDir(), "punch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "data", "punch.db")
	path := writeConfig(t, `
database:
  type: sqlite
  sqlite:
    path: `+dbPath+`
security:
  bcrypt_cost: 4
monitor:
  refresh_interval: 5s
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, dbPath, cfg.Database.SQLite.Path)
	assert.Equal(t, 4, cfg.Security.BcryptCost)
	assert.Equal(t, 5*time.Second, cfg.Monitor.RefreshInterval)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	// defaults fill what the file leaves out
	assert.Equal(t, "admin", cfg.DefaultUser.Username)
	assert.Equal(t, "Administrator", cfg.DefaultUser.FullName)

	// sqlite parent directory is created
	_, err = os.Stat(filepath.Dir(dbPath))
	assert.NoError(t, err)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "punch.db")
	path := writeConfig(t, `
database:
  sqlite:
    path: `+dbPath+`
monitor:
  refresh_interval: 5s
`)
	t.Setenv("PUNCH_MONITOR_REFRESH_INTERVAL", "1m")
	t.Setenv("PUNCH_DEFAULT_USER_PASSWORD", "rotate-me")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, cfg.Monitor.RefreshInterval)
	assert.Equal(t, "rotate-me", cfg.DefaultUser.Password)
}

func TestLoadRefreshIntervalUnits(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  string
		want time.Duration
	}{
		{"bare number is seconds", "refresh_interval: 30", "", 30 * time.Second},
		{"fractional seconds", "refresh_interval: 1.5", "", 1500 * time.Millisecond},
		{"duration string", "refresh_interval: 2m", "", 2 * time.Minute},
		{"env bare number", "refresh_interval: 5s", "45", 45 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dbPath := filepath.Join(t.TempDir(), "punch.db")
			path := writeConfig(t, "database:\n  sqlite:\n    path: "+dbPath+"\nmonitor:\n  "+tt.body+"\n")
			if tt.env != "" {
				t.Setenv("PUNCH_MONITOR_REFRESH_INTERVAL", tt.env)
			}

			cfg, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Monitor.RefreshInterval)
		})
	}
}

func TestLoadRejectsTinyRefreshInterval(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "punch.db")
	path := writeConfig(t, "database:\n  sqlite:\n    path: "+dbPath+"\nmonitor:\n  refresh_interval: 30ns\n")

	_, err := Load(path)
	assert.ErrorContains(t, err, "refresh_interval must be at least 1s")
}

func TestLoadRejectsBadConfig(t *testing.T) {
	path := writeConfig(t, `
database:
  type: oracle
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "unsupported database type")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"mysql needs username", func(c *Config) { c.Database.Type = "mysql" }, "MySQL username is required"},
		{"mysql needs database", func(c *Config) {
			c.Database.Type = "mysql"
			c.Database.MySQL.Username = "punch"
		}, "MySQL database name is required"},
		{"postgres needs dsn", func(c *Config) { c.Database.Type = "postgres" }, "dsn is required"},
		{"bcrypt cost too low", func(c *Config) { c.Security.BcryptCost = 1 }, "bcrypt_cost"},
		{"empty seed password", func(c *Config) { c.DefaultUser.Password = "" }, "default_user"},
		{"zero refresh", func(c *Config) { c.Monitor.RefreshInterval = 0 }, "refresh_interval"},
		{"sub-second refresh", func(c *Config) { c.Monitor.RefreshInterval = 30 * time.Nanosecond }, "at least 1s"},
		{"one second refresh", func(c *Config) { c.Monitor.RefreshInterval = time.Second }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestMySQLDSN(t *testing.T) {
	c := MySQLConfig{Host: "db", Port: 3306, Username: "u", Password: "p", Database: "punch", Charset: "utf8mb4"}
	assert.Equal(t, "u:p@tcp(db:3306)/punch?charset=utf8mb4&parseTime=True&loc=Local", c.DSN())
}

func TestWriteDefault(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "punch.yaml")
	require.NoError(t, WriteDefault(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "refresh_interval: 30s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Monitor.RefreshInterval, cfg.Monitor.RefreshInterval)
	assert.Equal(t, Default().DefaultUser, cfg.DefaultUser)

	assert.ErrorContains(t, WriteDefault(path), "already exists")
}
