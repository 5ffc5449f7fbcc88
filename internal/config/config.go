// Package config provides application configuration.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port          string
	FrontendURL   string
	DBPath        string
	Backend       BackendConfig
	RateLimit     RateLimitConfig
	TranscriptLog TranscriptLogConfig
}

// BackendConfig describes the external analytics agent service.
type BackendConfig struct {
	URL     string
	AppName string
	UserID  string
	// SessionTimeout bounds session create/validate calls; QueryTimeout
	// bounds the /run call. Both are local additions, the backend itself
	// specifies no deadline.
	SessionTimeout time.Duration
	QueryTimeout   time.Duration
}

// RateLimitConfig controls per-client query throttling.
type RateLimitConfig struct {
	RequestsPerWindow int
	WindowDuration    time.Duration
}

// TranscriptLogConfig controls NDJSON chat transcript logging.
type TranscriptLogConfig struct {
	Enabled   bool
	Path      string
	QueueSize int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	queueSize := getEnvInt("TRANSCRIPT_LOG_QUEUE_SIZE", 256)
	if queueSize <= 0 {
		queueSize = 256
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", ""),
		DBPath:      getEnv("DB_PATH", "./data/adkchat.db"),
		Backend: BackendConfig{
			URL:            getEnv("BACKEND_URL", ""),
			AppName:        getEnv("APP_NAME", ""),
			UserID:         getEnv("USER_ID", "default"),
			SessionTimeout: getEnvDuration("BACKEND_SESSION_TIMEOUT", 10*time.Second),
			QueryTimeout:   getEnvDuration("BACKEND_TIMEOUT", 60*time.Second),
		},
		RateLimit: RateLimitConfig{
			RequestsPerWindow: getEnvInt("RATE_LIMIT_REQUESTS", 20),
			WindowDuration:    getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		TranscriptLog: TranscriptLogConfig{
			Enabled:   getEnvBool("TRANSCRIPT_LOG_ENABLED", false),
			Path:      getEnv("TRANSCRIPT_LOG_PATH", "./data/logs/transcript.ndjson"),
			QueueSize: queueSize,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.Backend.URL == "" {
		return fmt.Errorf("BACKEND_URL cannot be empty")
	}
	if _, err := url.ParseRequestURI(c.Backend.URL); err != nil {
		return fmt.Errorf("BACKEND_URL is not a valid URL: %w", err)
	}
	if c.Backend.AppName == "" {
		return fmt.Errorf("APP_NAME cannot be empty")
	}
	if c.Backend.UserID == "" {
		return fmt.Errorf("USER_ID cannot be empty")
	}
	if c.Backend.QueryTimeout <= 0 || c.Backend.SessionTimeout <= 0 {
		return fmt.Errorf("backend timeouts must be > 0")
	}
	if c.RateLimit.RequestsPerWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be > 0")
	}
	if c.TranscriptLog.Enabled && c.TranscriptLog.Path == "" {
		return fmt.Errorf("TRANSCRIPT_LOG_PATH cannot be empty when transcript logging is enabled")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
