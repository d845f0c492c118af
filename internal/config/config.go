package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Logging
	LogLevel string

	// HTTP API
	APIPort string

	// Job queue
	JobQueueSize  int
	JobMaxRetries int

	// Quote-fetch utility
	QuoteAPIURL         string
	QuoteTimeout        time.Duration
	QuoteMaxAttempts    int
	QuoteRetryDelay     time.Duration
	QuoteRequestsPerSec int
}

// Load initializes configuration from environment variables, reading an
// optional .env file first.
func Load() (*Config, error) {
	// A missing .env file is fine; the environment is the source of truth.
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:            getEnvWithDefault("LOG_LEVEL", "info"),
		APIPort:             getEnvWithDefault("API_PORT", "8080"),
		JobQueueSize:        getEnvIntWithDefault("JOB_QUEUE_SIZE", 100),
		JobMaxRetries:       getEnvIntWithDefault("JOB_MAX_RETRIES", 3),
		QuoteAPIURL:         getEnvWithDefault("QUOTE_API_URL", "https://dummyjson.com/quotes/random"),
		QuoteTimeout:        time.Duration(getEnvIntWithDefault("QUOTE_TIMEOUT_SEC", 10)) * time.Second,
		QuoteMaxAttempts:    getEnvIntWithDefault("QUOTE_MAX_ATTEMPTS", 3),
		QuoteRetryDelay:     time.Duration(getEnvIntWithDefault("QUOTE_RETRY_DELAY_MS", 1000)) * time.Millisecond,
		QuoteRequestsPerSec: getEnvIntWithDefault("QUOTE_REQUESTS_PER_SEC", 5),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.JobQueueSize <= 0 {
		return errors.New("job queue size must be positive")
	}
	if c.JobMaxRetries < 0 {
		return errors.New("job max retries cannot be negative")
	}
	if c.QuoteAPIURL == "" {
		return errors.New("quote API URL is required")
	}
	if c.QuoteMaxAttempts <= 0 {
		return errors.New("quote max attempts must be positive")
	}
	return nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
