package config

import (
	"os"
	"strconv"

	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Learning LearningConfig
	Analysis AnalysisConfig
}

// DatabaseConfig holds database connection settings. URL may be empty,
// in which case the in-memory stores are used.
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// LearningConfig holds feedback-learning job settings
type LearningConfig struct {
	// MineSchedule is a standard cron expression for the mining job
	MineSchedule string
	// MinSupport is the minimum correction count behind a mined pattern
	MinSupport int
}

// AnalysisConfig holds profiling and classification thresholds
type AnalysisConfig struct {
	SampleSize         int
	NumericThreshold   float64
	DateThreshold      float64
	MaxTreeDepth       int
	MaxTreeBreadth     int
	ProfileConcurrency int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			URL:     getEnvOrDefault("DATABASE_URL", ""),
			SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Learning: LearningConfig{
			MineSchedule: getEnvOrDefault("LEARNING_SCHEDULE", "@every 5m"),
			MinSupport:   getEnvIntOrDefault("LEARNING_MIN_SUPPORT", 2),
		},
		Analysis: AnalysisConfig{
			SampleSize:         getEnvIntOrDefault("ANALYSIS_SAMPLE_SIZE", 1000),
			NumericThreshold:   getEnvFloatOrDefault("NUMERIC_THRESHOLD", 0.8),
			DateThreshold:      getEnvFloatOrDefault("DATE_THRESHOLD", 0.6),
			MaxTreeDepth:       getEnvIntOrDefault("MAX_TREE_DEPTH", 3),
			MaxTreeBreadth:     getEnvIntOrDefault("MAX_TREE_BREADTH", 10),
			ProfileConcurrency: getEnvIntOrDefault("PROFILE_CONCURRENCY", 4),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Learning.MinSupport < 2 {
		return errors.ConfigInvalid("LEARNING_MIN_SUPPORT must be at least 2; a single correction is not a pattern")
	}
	if config.Analysis.NumericThreshold <= 0 || config.Analysis.NumericThreshold > 1 {
		return errors.ConfigInvalid("NUMERIC_THRESHOLD must be in (0,1]")
	}
	if config.Analysis.DateThreshold <= 0 || config.Analysis.DateThreshold > 1 {
		return errors.ConfigInvalid("DATE_THRESHOLD must be in (0,1]")
	}
	return nil
}

// Helper functions for environment variable parsing

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
