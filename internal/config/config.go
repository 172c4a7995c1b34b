package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dctremblay/pagemill/internal/transcribe"
)

type Config struct {
	Port string

	// Auth. Empty disables API authentication.
	PagemillAPIKey string

	// Claude recognition
	AnthropicAPIKey string
	AnthropicModel  string

	// Storage
	DBPath string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Per-book transcription
	MaxConcurrentPages   int
	MaxDispatchAttempts  int
	MaxRefusalRetries    int
	BackoffBase          time.Duration
	EscalatedTemperature float64

	// Job state
	JobTTL time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		PagemillAPIKey: os.Getenv("PAGEMILL_API_KEY"),

		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  envOr("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),

		DBPath: envOr("DB_PATH", "pagemill.db"),

		WorkerCount:  envInt("WORKER_COUNT", 2),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 20),

		MaxConcurrentPages:   envInt("MAX_CONCURRENT_PAGES", 16),
		MaxDispatchAttempts:  envInt("MAX_DISPATCH_ATTEMPTS", 3),
		MaxRefusalRetries:    envInt("MAX_REFUSAL_RETRIES", 4),
		BackoffBase:          envDuration("BACKOFF_BASE", time.Second),
		EscalatedTemperature: envFloat("ESCALATED_TEMPERATURE", 0.8),

		JobTTL: envDuration("JOB_TTL", 24*time.Hour),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 20
	}
	if cfg.MaxConcurrentPages <= 0 {
		cfg.MaxConcurrentPages = 16
	}
	if cfg.MaxDispatchAttempts <= 0 {
		cfg.MaxDispatchAttempts = 3
	}
	if cfg.MaxRefusalRetries <= 0 {
		cfg.MaxRefusalRetries = 4
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = time.Second
	}
	if cfg.EscalatedTemperature <= 0 || cfg.EscalatedTemperature > 1 {
		cfg.EscalatedTemperature = 0.8
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 24 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.AnthropicAPIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH is required")
	}
	return nil
}

// Transcribe maps the service config onto per-book pipeline settings.
func (c Config) Transcribe() transcribe.Config {
	return transcribe.Config{
		MaxConcurrent:        c.MaxConcurrentPages,
		MaxDispatchAttempts:  c.MaxDispatchAttempts,
		MaxRefusalRetries:    c.MaxRefusalRetries,
		BackoffBase:          c.BackoffBase,
		EscalatedTemperature: c.EscalatedTemperature,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
