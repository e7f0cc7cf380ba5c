// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port     string
	Env      string // "development", "staging", "production"
	LogLevel string

	// Database
	DatabaseURL string // PostgreSQL connection string (optional, uses in-memory if not set)

	// Sentiment analysis service
	SentimentURL     string // Base URL of the remote sentiment API (optional, fallback-only if unset)
	SentimentTimeout time.Duration

	// Scoring pipeline
	CollectInterval time.Duration // How often the daily pipeline recomputes today's record
	NightStartHour  int           // Local hour the night window opens (inclusive)
	NightEndHour    int           // Local hour the night window closes (exclusive)
	HomeRadiusM     float64       // Cluster radius for the home-location heuristic
	HistoryDays     int           // Rolling cap on persisted daily records

	// Observability
	OTLPEndpoint string // OTLP gRPC endpoint for traces (optional)
}

const (
	DefaultPort            = "8080"
	DefaultEnv             = "development"
	DefaultLogLevel        = "info"
	DefaultCollectInterval = 15 * time.Minute
	DefaultNightStartHour  = 0
	DefaultNightEndHour    = 5
	DefaultHomeRadiusM     = 150.0
	DefaultHistoryDays     = 365
	DefaultSentimentTO     = 10 * time.Second
)

// Load reads configuration from environment variables.
// It loads .env file if present (for local development).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", DefaultPort),
		Env:              getEnv("ENV", DefaultEnv),
		LogLevel:         getEnv("LOG_LEVEL", DefaultLogLevel),
		DatabaseURL:      os.Getenv("DATABASE_URL"), // Optional, uses in-memory if not set
		SentimentURL:     os.Getenv("SENTIMENT_URL"),
		SentimentTimeout: getEnvDuration("SENTIMENT_TIMEOUT", DefaultSentimentTO),
		CollectInterval:  getEnvDuration("COLLECT_INTERVAL", DefaultCollectInterval),
		NightStartHour:   getEnvInt("NIGHT_START_HOUR", DefaultNightStartHour),
		NightEndHour:     getEnvInt("NIGHT_END_HOUR", DefaultNightEndHour),
		HomeRadiusM:      getEnvFloat("HOME_RADIUS_M", DefaultHomeRadiusM),
		HistoryDays:      getEnvInt("HISTORY_DAYS", DefaultHistoryDays),
		OTLPEndpoint:     os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that configuration values are internally consistent.
func (c *Config) Validate() error {
	if c.NightStartHour < 0 || c.NightStartHour > 23 {
		return fmt.Errorf("NIGHT_START_HOUR must be in [0,23], got %d", c.NightStartHour)
	}
	if c.NightEndHour < 1 || c.NightEndHour > 24 {
		return fmt.Errorf("NIGHT_END_HOUR must be in [1,24], got %d", c.NightEndHour)
	}
	if c.NightEndHour <= c.NightStartHour {
		return fmt.Errorf("night window is empty: start %d, end %d", c.NightStartHour, c.NightEndHour)
	}
	if c.HomeRadiusM <= 0 {
		return fmt.Errorf("HOME_RADIUS_M must be positive, got %v", c.HomeRadiusM)
	}
	if c.HistoryDays <= 0 {
		return fmt.Errorf("HISTORY_DAYS must be positive, got %d", c.HistoryDays)
	}
	if c.CollectInterval < time.Minute {
		return fmt.Errorf("COLLECT_INTERVAL must be at least 1m, got %v", c.CollectInterval)
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
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

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
