package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.JobQueueSize != 100 {
		t.Errorf("JobQueueSize = %d, want 100", cfg.JobQueueSize)
	}
	if cfg.QuoteMaxAttempts != 3 {
		t.Errorf("QuoteMaxAttempts = %d, want 3", cfg.QuoteMaxAttempts)
	}
	if cfg.QuoteRetryDelay != time.Second {
		t.Errorf("QuoteRetryDelay = %v, want 1s", cfg.QuoteRetryDelay)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("JOB_QUEUE_SIZE", "10")
	t.Setenv("QUOTE_TIMEOUT_SEC", "30")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.JobQueueSize != 10 {
		t.Errorf("JobQueueSize = %d, want 10", cfg.JobQueueSize)
	}
	if cfg.QuoteTimeout != 30*time.Second {
		t.Errorf("QuoteTimeout = %v, want 30s", cfg.QuoteTimeout)
	}
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("JOB_MAX_RETRIES", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.JobMaxRetries != 3 {
		t.Errorf("JobMaxRetries = %d, want default 3", cfg.JobMaxRetries)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"zero queue size", func(c *Config) { c.JobQueueSize = 0 }, true},
		{"negative retries", func(c *Config) { c.JobMaxRetries = -1 }, true},
		{"empty quote URL", func(c *Config) { c.QuoteAPIURL = "" }, true},
		{"zero attempts", func(c *Config) { c.QuoteMaxAttempts = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				LogLevel:         "info",
				APIPort:          "8080",
				JobQueueSize:     100,
				JobMaxRetries:    3,
				QuoteAPIURL:      "https://example.com/q",
				QuoteMaxAttempts: 3,
			}
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
