package config

import (
	"fmt"
	"os"
	"strconv"

	"qrfatura/internal/logger"
)

type Config struct {
	// Supplier registry / invoice sink database (sqlite)
	DatabasePath string

	// Default tenant for CLI invocations (overridable per command)
	TenantID string

	// Bulk processing
	BulkBatchSize int

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		DatabasePath:  getEnv("SUPPLIER_DB_PATH", "./qrfatura.db"),
		TenantID:      getEnv("TENANT_ID", ""),
		BulkBatchSize: getEnvInt("BULK_BATCH_SIZE", 3),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "console"),
		LogTimeFormat: getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:     getEnv("LOG_OUTPUT", "stdout"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("SUPPLIER_DB_PATH must not be empty")
	}
	if c.BulkBatchSize < 1 {
		return fmt.Errorf("BULK_BATCH_SIZE must be at least 1, got %d", c.BulkBatchSize)
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
