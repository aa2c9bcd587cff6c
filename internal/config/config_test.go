package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Empty values fall through to defaults.
	for _, key := range []string{"PORT", "DEV_MODE", "DATABASE_PATH", "LOG_LEVEL",
		"RUN_RETENTION_DAYS", "DEFAULT_PATHS", "MAX_PATHS", "WORKERS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "./data/fincast.db", cfg.DatabasePath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 90, cfg.RunRetentionDays)
	assert.Equal(t, 1000, cfg.DefaultPaths)
	assert.Equal(t, 20000, cfg.MaxPaths)
	assert.False(t, cfg.DevMode)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DEV_MODE", "true")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DEFAULT_PATHS", "500")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 500, cfg.DefaultPaths)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	t.Setenv("DEV_MODE", "maybe")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.False(t, cfg.DevMode)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults valid", mutate: func(c *Config) {}},
		{name: "missing database path", mutate: func(c *Config) { c.DatabasePath = "" }, wantErr: true},
		{name: "port too large", mutate: func(c *Config) { c.Port = 70000 }, wantErr: true},
		{name: "zero default paths", mutate: func(c *Config) { c.DefaultPaths = 0 }, wantErr: true},
		{name: "max below default", mutate: func(c *Config) { c.MaxPaths = 10 }, wantErr: true},
		{name: "zero retention", mutate: func(c *Config) { c.RunRetentionDays = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Port:             8080,
				DatabasePath:     "./data/fincast.db",
				LogLevel:         "info",
				RunRetentionDays: 90,
				DefaultPaths:     1000,
				MaxPaths:         20000,
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
