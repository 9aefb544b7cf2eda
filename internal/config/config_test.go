package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ghosthawk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// clearServerEnv makes the test independent of the caller's environment.
func clearServerEnv(t *testing.T) {
	for _, key := range []string{"PORT", "DATABASE_URL", "REDIS_URL", "INSIGHTS_CACHE_TTL", "CORS_ALLOWED_ORIGIN"} {
		t.Setenv(key, "")
	}
}

func TestLoadServerConfig_Defaults(t *testing.T) {
	clearServerEnv(t)

	cfg, err := LoadServerConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultInsightsCacheTTL, cfg.InsightsCacheTTL)
	assert.Equal(t, "*", cfg.CORSAllowedOrigin)
	assert.Empty(t, cfg.RedisURL)
	assert.False(t, cfg.MigrateOnStart)
	assert.Equal(t, ":5000", cfg.Addr())
}

func TestLoadServerConfig_YAML(t *testing.T) {
	clearServerEnv(t)
	path := writeConfig(t, `
port: 8081
database_url: postgres://localhost/ghosthawk
redis_url: redis://localhost:6379/0
insights_cache_ttl: 2m
cors_allowed_origin: https://ghosthawk.example
migrate_on_start: true
`)

	cfg, err := LoadServerConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, "postgres://localhost/ghosthawk", cfg.DatabaseURL)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, 2*time.Minute, cfg.InsightsCacheTTL)
	assert.Equal(t, "https://ghosthawk.example", cfg.CORSAllowedOrigin)
	assert.True(t, cfg.MigrateOnStart)
	assert.Equal(t, 15*time.Second, cfg.ReadTimeout, "unset keys keep their defaults")
}

func TestLoadServerConfig_EnvOverridesFile(t *testing.T) {
	clearServerEnv(t)
	path := writeConfig(t, "port: 8081\ndatabase_url: postgres://file/db\n")
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://env/db")
	t.Setenv("INSIGHTS_CACHE_TTL", "5s")

	cfg, err := LoadServerConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "postgres://env/db", cfg.DatabaseURL)
	assert.Equal(t, 5*time.Second, cfg.InsightsCacheTTL)
}

func TestLoadServerConfig_EmptyFile(t *testing.T) {
	clearServerEnv(t)
	cfg, err := LoadServerConfig(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.Port)
}

func TestLoadServerConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
		wantErr string
	}{
		{name: "unknown key", content: "prot: 80\n", wantErr: "failed to parse config YAML"},
		{name: "malformed yaml", content: "port: [\n", wantErr: "failed to parse config YAML"},
		{name: "bad duration", content: "insights_cache_ttl: soon\n", wantErr: "failed to parse config YAML"},
		{name: "bad PORT", env: map[string]string{"PORT": "http"}, wantErr: "invalid PORT"},
		{name: "bad TTL env", env: map[string]string{"INSIGHTS_CACHE_TTL": "10"}, wantErr: "invalid INSIGHTS_CACHE_TTL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearServerEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.content != "" {
				path = writeConfig(t, tt.content)
			}
			cfg, err := LoadServerConfig(path)
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadServerConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadServerConfig("/nonexistent/ghosthawk.yaml")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestServerConfig_Validate(t *testing.T) {
	valid := func() *ServerConfig {
		return &ServerConfig{
			Port:         5000,
			DatabaseURL:  "postgres://localhost/ghosthawk",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		}
	}
	assert.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*ServerConfig)
		want   string
	}{
		{"port zero", func(c *ServerConfig) { c.Port = 0 }, "port"},
		{"port too large", func(c *ServerConfig) { c.Port = 70000 }, "port"},
		{"no database", func(c *ServerConfig) { c.DatabaseURL = "" }, "database URL"},
		{"negative ttl", func(c *ServerConfig) { c.InsightsCacheTTL = -time.Second }, "TTL"},
		{"no timeout", func(c *ServerConfig) { c.WriteTimeout = 0 }, "timeouts"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
