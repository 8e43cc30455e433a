package config

import (
	"os"
	"strconv"

	"tseval/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database   DatabaseConfig
	Server     ServerConfig
	Evaluation EvaluationConfig
	Data       DataConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// EvaluationConfig holds the statistical knobs of the engines. Invalid
// values fail at load time; degenerate data at runtime never does.
type EvaluationConfig struct {
	ConfidenceLevel  float64
	BootstrapSamples int
	Alpha            float64
	Correction       string
	TrendWindow      int
	HistoryRetention int
	FNLeakageRate    float64
}

// DataConfig holds dataset ingestion settings
type DataConfig struct {
	ExcelFile string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			URL:     os.Getenv("DATABASE_URL"),
			SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("SERVER_PORT", "8080"),
		},
		Evaluation: EvaluationConfig{
			ConfidenceLevel:  getEnvFloatOrDefault("EVAL_CONFIDENCE", 0.95),
			BootstrapSamples: getEnvIntOrDefault("EVAL_BOOTSTRAP_SAMPLES", 1000),
			Alpha:            getEnvFloatOrDefault("EVAL_ALPHA", 0.05),
			Correction:       getEnvOrDefault("EVAL_CORRECTION", "bonferroni"),
			TrendWindow:      getEnvIntOrDefault("EVAL_TREND_WINDOW", 10),
			HistoryRetention: getEnvIntOrDefault("EVAL_HISTORY_RETENTION", 50),
			FNLeakageRate:    getEnvFloatOrDefault("EVAL_FN_LEAKAGE", 0.1),
		},
		Data: DataConfig{
			ExcelFile: getEnvOrDefault("EXCEL_FILE", ""),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validateConfig(config *Config) error {
	ev := config.Evaluation
	if ev.ConfidenceLevel <= 0 || ev.ConfidenceLevel >= 1 {
		return errors.ConfigInvalid("EVAL_CONFIDENCE must be in (0, 1)")
	}
	if ev.BootstrapSamples < 1 {
		return errors.ConfigInvalid("EVAL_BOOTSTRAP_SAMPLES must be positive")
	}
	if ev.Alpha <= 0 || ev.Alpha >= 1 {
		return errors.ConfigInvalid("EVAL_ALPHA must be in (0, 1)")
	}
	if ev.Correction != "bonferroni" && ev.Correction != "none" {
		return errors.ConfigInvalid("EVAL_CORRECTION must be bonferroni or none")
	}
	if ev.TrendWindow < 2 {
		return errors.ConfigInvalid("EVAL_TREND_WINDOW must be at least 2")
	}
	if ev.HistoryRetention < 1 {
		return errors.ConfigInvalid("EVAL_HISTORY_RETENTION must be positive")
	}
	if ev.FNLeakageRate < 0 || ev.FNLeakageRate > 1 {
		return errors.ConfigInvalid("EVAL_FN_LEAKAGE must be in [0, 1]")
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
