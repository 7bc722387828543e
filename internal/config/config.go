// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration. Values are read once at boot;
// in particular the risk thresholds are fixed for the lifetime of the process.
type Config struct {
	// Server settings
	Port     string
	Env      string // "development", "staging", "production"
	LogLevel string

	// Postgres (history, clients, audit trail)
	DatabaseURL string

	// ClickHouse analytics mirror (optional; log fallback when unset)
	ClickHouseAddr     string
	ClickHouseDatabase string
	ClickHouseUser     string
	ClickHousePassword string

	// Risk thresholds. Overridable at boot, immutable afterwards.
	ThresholdLow    float64
	ThresholdMedium float64
	ThresholdHigh   float64

	// AuthDisabled skips API key checks. Local development only.
	AuthDisabled bool
}

const (
	DefaultPort     = "8080"
	DefaultEnv      = "development"
	DefaultLogLevel = "info"

	DefaultThresholdLow    = 0.3
	DefaultThresholdMedium = 0.6
	DefaultThresholdHigh   = 0.8
)

// Load reads configuration from environment variables.
// It loads .env file if present (for local development).
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", DefaultPort),
		Env:                getEnv("ENV", DefaultEnv),
		LogLevel:           getEnv("LOG_LEVEL", DefaultLogLevel),
		DatabaseURL:        os.Getenv("DATABASE_URL"), // Required
		ClickHouseAddr:     os.Getenv("CLICKHOUSE_ADDR"),
		ClickHouseDatabase: getEnv("CLICKHOUSE_DATABASE", "sentinel"),
		ClickHouseUser:     getEnv("CLICKHOUSE_USER", "default"),
		ClickHousePassword: os.Getenv("CLICKHOUSE_PASSWORD"),
		ThresholdLow:       getEnvFloat("RISK_THRESHOLD_LOW", DefaultThresholdLow),
		ThresholdMedium:    getEnvFloat("RISK_THRESHOLD_MEDIUM", DefaultThresholdMedium),
		ThresholdHigh:      getEnvFloat("RISK_THRESHOLD_HIGH", DefaultThresholdHigh),
		AuthDisabled:       getEnvBool("AUTH_DISABLED", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration is present and coherent.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	for name, v := range map[string]float64{
		"RISK_THRESHOLD_LOW":    c.ThresholdLow,
		"RISK_THRESHOLD_MEDIUM": c.ThresholdMedium,
		"RISK_THRESHOLD_HIGH":   c.ThresholdHigh,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be in [0, 1], got %v", name, v)
		}
	}
	if !(c.ThresholdLow < c.ThresholdMedium && c.ThresholdMedium < c.ThresholdHigh) {
		return fmt.Errorf("risk thresholds must be strictly increasing: low=%v medium=%v high=%v",
			c.ThresholdLow, c.ThresholdMedium, c.ThresholdHigh)
	}

	if c.AuthDisabled && c.Env == "production" {
		return fmt.Errorf("AUTH_DISABLED is not allowed in production")
	}

	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
