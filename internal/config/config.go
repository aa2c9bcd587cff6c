package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port             int
	DevMode          bool
	DatabasePath     string
	LogLevel         string
	RunRetentionDays int
	DefaultPaths     int
	MaxPaths         int
	Workers          int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnvAsInt("PORT", 8080),
		DevMode:          getEnvAsBool("DEV_MODE", false),
		DatabasePath:     getEnv("DATABASE_PATH", "./data/fincast.db"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		RunRetentionDays: getEnvAsInt("RUN_RETENTION_DAYS", 90),
		DefaultPaths:     getEnvAsInt("DEFAULT_PATHS", 1000),
		MaxPaths:         getEnvAsInt("MAX_PATHS", 20000),
		Workers:          getEnvAsInt("WORKERS", 0), // 0 = GOMAXPROCS
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.DefaultPaths <= 0 {
		return fmt.Errorf("DEFAULT_PATHS must be positive, got %d", c.DefaultPaths)
	}
	if c.MaxPaths < c.DefaultPaths {
		return fmt.Errorf("MAX_PATHS (%d) must be at least DEFAULT_PATHS (%d)", c.MaxPaths, c.DefaultPaths)
	}
	if c.RunRetentionDays <= 0 {
		return fmt.Errorf("RUN_RETENTION_DAYS must be positive, got %d", c.RunRetentionDays)
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
