package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// Config holds every runtime setting for punch
type Config struct {
	Database    DatabaseConfig    `mapstructure:"database" yaml:"database"`
	Security    SecurityConfig    `mapstructure:"security" yaml:"security"`
	DefaultUser DefaultUserConfig `mapstructure:"default_user" yaml:"default_user"`
	Monitor     MonitorConfig     `mapstructure:"monitor" yaml:"monitor"`
	Log         LogConfig         `mapstructure:"log" yaml:"log"`
}

// DatabaseConfig selects and configures the relational store
type DatabaseConfig struct {
	Type     string         `mapstructure:"type" yaml:"type"` // sqlite, mysql, postgres
	SQLite   SQLiteConfig   `mapstructure:"sqlite" yaml:"sqlite"`
	MySQL    MySQLConfig    `mapstructure:"mysql" yaml:"mysql"`
	Postgres PostgresConfig `mapstructure:"postgres" yaml:"postgres"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

type MySQLConfig struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
	Database string `mapstructure:"database" yaml:"database"`
	Charset  string `mapstructure:"charset" yaml:"charset"`
}

// DSN builds the go-sql-driver connection string
func (c MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
		c.Username, c.Password, c.Host, c.Port, c.Database, c.Charset)
}

type PostgresConfig struct {
	DSN string `mapstructure:"dsn" yaml:"dsn"`
}

type SecurityConfig struct {
	BcryptCost int `mapstructure:"bcrypt_cost" yaml:"bcrypt_cost"`
}

// DefaultUserConfig is the administrator seeded into an empty users table
type DefaultUserConfig struct {
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
	FullName string `mapstructure:"full_name" yaml:"full_name"`
}

type MonitorConfig struct {
	RefreshInterval time.Duration `mapstructure:"refresh_interval" yaml:"refresh_interval"`
}

// MarshalYAML writes the interval as a duration string like "30s"
func (m MonitorConfig) MarshalYAML() (interface{}, error) {
	return struct {
		RefreshInterval string `yaml:"refresh_interval"`
	}{m.RefreshInterval.String()}, nil
}

// minRefreshInterval bounds how often the monitor may poll the store
const minRefreshInterval = time.Second

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"` // console, json
	File   string `mapstructure:"file" yaml:"file"`     // empty means stderr
}

const envPrefix = "PUNCH"

// Dir returns ~/.punch, where the database and config live by default
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".punch"), nil
}

// Default returns the built-in configuration
func Default() *Config {
	dbPath := "punch.db"
	if dir, err := Dir(); err == nil {
		dbPath = filepath.Join(dir, "punch.db")
	}
	return &Config{
		Database: DatabaseConfig{
			Type:   "sqlite",
			SQLite: SQLiteConfig{Path: dbPath},
			MySQL: MySQLConfig{
				Host:    "localhost",
				Port:    3306,
				Charset: "utf8mb4",
			},
		},
		Security: SecurityConfig{BcryptCost: bcrypt.DefaultCost},
		DefaultUser: DefaultUserConfig{
			Username: "admin",
			Password: "admin123",
			FullName: "Administrator",
		},
		Monitor: MonitorConfig{RefreshInterval: 30 * time.Second},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// Load reads configuration with priority env > file > defaults.
// An empty path searches ./punch.yaml and ~/.punch/punch.yaml; a missing
// file is not an error.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	def := Default()
	v := viper.New()

	v.SetDefault("database.type", def.Database.Type)
	v.SetDefault("database.sqlite.path", def.Database.SQLite.Path)
	v.SetDefault("database.mysql.host", def.Database.MySQL.Host)
	v.SetDefault("database.mysql.port", def.Database.MySQL.Port)
	v.SetDefault("database.mysql.username", "")
	v.SetDefault("database.mysql.password", "")
	v.SetDefault("database.mysql.database", "")
	v.SetDefault("database.mysql.charset", def.Database.MySQL.Charset)
	v.SetDefault("database.postgres.dsn", "")
	v.SetDefault("security.bcrypt_cost", def.Security.BcryptCost)
	v.SetDefault("default_user.username", def.DefaultUser.Username)
	v.SetDefault("default_user.password", def.DefaultUser.Password)
	v.SetDefault("default_user.full_name", def.DefaultUser.FullName)
	v.SetDefault("monitor.refresh_interval", def.Monitor.RefreshInterval)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("log.file", "")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("punch")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := Dir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	hooks := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		secondsToDurationHook(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hooks); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Ensure data directory exists for SQLite
	if cfg.Database.Type == "sqlite" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.SQLite.Path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	return &cfg, nil
}

// secondsToDurationHook decodes durations. Numbers without a unit are
// seconds ("30" or 30 is 30s); strings with a unit go through
// time.ParseDuration.
func secondsToDurationHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case int:
			return time.Duration(v) * time.Second, nil
		case int64:
			return time.Duration(v) * time.Second, nil
		case uint64:
			return time.Duration(v) * time.Second, nil
		case float64:
			return time.Duration(v * float64(time.Second)), nil
		case string:
			s := strings.TrimSpace(v)
			if n, err := strconv.ParseFloat(s, 64); err == nil {
				return time.Duration(n * float64(time.Second)), nil
			}
			d, err := time.ParseDuration(s)
			if err != nil {
				return nil, fmt.Errorf("invalid duration %q", v)
			}
			return d, nil
		}
		return data, nil
	}
}

// Validate checks the settings that would otherwise fail late
func (c *Config) Validate() error {
	switch c.Database.Type {
	case "sqlite":
		if c.Database.SQLite.Path == "" {
			return fmt.Errorf("database.sqlite.path is required")
		}
	case "mysql":
		if c.Database.MySQL.Username == "" {
			return fmt.Errorf("MySQL username is required")
		}
		if c.Database.MySQL.Database == "" {
			return fmt.Errorf("MySQL database name is required")
		}
	case "postgres":
		if c.Database.Postgres.DSN == "" {
			return fmt.Errorf("database.postgres.dsn is required")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}

	if c.Security.BcryptCost < bcrypt.MinCost || c.Security.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("security.bcrypt_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.DefaultUser.Username == "" || c.DefaultUser.Password == "" || c.DefaultUser.FullName == "" {
		return fmt.Errorf("default_user username, password and full_name are required")
	}
	if c.Monitor.RefreshInterval < minRefreshInterval {
		return fmt.Errorf("monitor.refresh_interval must be at least %s, got %s", minRefreshInterval, c.Monitor.RefreshInterval)
	}
	return nil
}

// WriteDefault writes the built-in configuration to path as YAML.
// It refuses to overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}
