// Package config loads the server, JWT and password settings.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults for ServerConfig.
const (
	DefaultPort             = 5000
	DefaultInsightsCacheTTL = 60 * time.Second
	DefaultCORSOrigin       = "*"
)

// ServerConfig holds the settings of the API server. Values come from an
// optional YAML file and are overridden by environment variables.
type ServerConfig struct {
	Port              int           `yaml:"port"`
	DatabaseURL       string        `yaml:"database_url"`
	RedisURL          string        `yaml:"redis_url"` // empty disables the insights cache
	InsightsCacheTTL  time.Duration `yaml:"insights_cache_ttl"`
	CORSAllowedOrigin string        `yaml:"cors_allowed_origin"`
	MigrateOnStart    bool          `yaml:"migrate_on_start"`
	ReadTimeout       time.Duration `yaml:"read_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
}

// LoadServerConfig reads path (skipped when empty) and then applies the
// PORT, DATABASE_URL, REDIS_URL, INSIGHTS_CACHE_TTL and CORS_ALLOWED_ORIGIN
// environment variables.
func LoadServerConfig(path string) (*ServerConfig, error) {
	cfg := &ServerConfig{
		Port:              DefaultPort,
		InsightsCacheTTL:  DefaultInsightsCacheTTL,
		CORSAllowedOrigin: DefaultCORSOrigin,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *ServerConfig) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT: %w", err)
		}
		c.Port = port
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.RedisURL = v
	}
	if v := os.Getenv("INSIGHTS_CACHE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid INSIGHTS_CACHE_TTL: %w", err)
		}
		c.InsightsCacheTTL = ttl
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGIN"); v != "" {
		c.CORSAllowedOrigin = v
	}
	return nil
}

// Validate checks the values needed to start serving.
func (c *ServerConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: port must be between 1 and 65535, got %d", c.Port)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("config error: database URL is required (DATABASE_URL or database_url)")
	}
	if c.InsightsCacheTTL < 0 {
		return fmt.Errorf("config error: insights cache TTL must be non-negative")
	}
	if c.ReadTimeout <= 0 || c.WriteTimeout <= 0 {
		return fmt.Errorf("config error: read and write timeouts must be positive")
	}
	return nil
}

// Addr is the listen address for Port.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// envInt reads an integer environment variable within [lo, hi].
func envInt(key string, def, lo, hi int) (int, error) {
	n := def
	if v := os.Getenv(key); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", key, err)
		}
		n = parsed
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("%s out of range: %d (must be %d-%d)", key, n, lo, hi)
	}
	return n, nil
}
