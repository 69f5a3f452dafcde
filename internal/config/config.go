// Package config loads the bodylog configuration: an optional YAML file with
// ${VAR} expansion, defaults, and BODYLOG_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables that override the file.
const (
	EnvDB           = "BODYLOG_DB"
	EnvDatabaseURL  = "BODYLOG_DATABASE_URL"
	EnvAddr         = "BODYLOG_ADDR"
	EnvLogLevel     = "BODYLOG_LOG_LEVEL"
	EnvPasswordHash = "BODYLOG_PASSWORD_HASH"
)

// Config is the complete bodylog configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	WebDir          string        `yaml:"web_dir"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig selects the storage backend. URL wins over Path when set.
type DatabaseConfig struct {
	Path string `yaml:"path"`
	URL  string `yaml:"url"`
}

// AuthConfig holds the optional password lock. An empty hash disables it.
type AuthConfig struct {
	PasswordHash string `yaml:"password_hash"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// MetricsConfig holds metrics endpoint configuration.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			WebDir:          "web",
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{Path: "data/bodylog.db"},
		Logging:  LoggingConfig{Level: "info", Format: "text"},
		Metrics:  MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

// Load reads the file at path over the defaults, applies environment
// overrides and validates the result. A missing file is not an error; an
// empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config file: %w", err)
		default:
			if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

var envVar = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} with the variable's value, or with the
// empty string when it is unset.
func expandEnvVars(s string) string {
	return envVar.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envVar.FindStringSubmatch(match)[1])
	})
}

func (c *Config) applyEnv() {
	c.Database.Path = env(EnvDB, c.Database.Path)
	c.Database.URL = env(EnvDatabaseURL, c.Database.URL)
	c.Server.Addr = env(EnvAddr, c.Server.Addr)
	c.Logging.Level = env(EnvLogLevel, c.Logging.Level)
	c.Auth.PasswordHash = env(EnvPasswordHash, c.Auth.PasswordHash)
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Database.Path == "" && c.Database.URL == "" {
		return fmt.Errorf("database.path or database.url is required")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format must be \"text\" or \"json\", got %q", c.Logging.Format)
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with '/'")
	}
	if h := c.Auth.PasswordHash; h != "" && !strings.HasPrefix(h, "$2") {
		return fmt.Errorf("auth.password_hash must be a bcrypt hash")
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("server.shutdown_timeout must not be negative")
	}
	return nil
}

// UsePostgres reports whether the server-hosted backend is selected.
func (c *Config) UsePostgres() bool {
	return c.Database.URL != ""
}

// JSONLogs reports whether logs are written as JSON.
func (c *Config) JSONLogs() bool {
	return strings.EqualFold(c.Logging.Format, "json")
}
