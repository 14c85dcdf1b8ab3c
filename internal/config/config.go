// Package config handles application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Server settings
	Port    int
	BaseURL string

	// Database
	DatabaseURL string

	// Webhook authentication: the shared secret the vendor sends as a
	// bearer token. Injected, never hard-coded; compared in constant time.
	WebhookSecret string

	// Ops read API authentication (dashboard/debugging access)
	OpsAPIKey string

	// CORS
	CORSOrigins []string

	// Object storage for alert-threshold overrides (S3-compatible)
	StorageEnabled   bool
	StorageEndpoint  string // AWS_ENDPOINT_URL_S3 for S3-compatible providers
	StorageAccessKey string // AWS_ACCESS_KEY_ID
	StorageSecretKey string // AWS_SECRET_ACCESS_KEY
	StorageBucket    string
	StorageRegion    string
	ThresholdsKey    string // Object key of the thresholds JSON

	// Limits
	MaxBodyBytes    int64 // Request size cap for the webhook endpoint
	RateLimitPerMin int   // Per-IP request limit

	// Shutdown
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnvInt("PORT", 8080),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
		DatabaseURL: getEnv("DATABASE_URL", "file:tankwatch.db?_journal=WAL&_timeout=5000"),

		WebhookSecret: getEnv("GASBOT_WEBHOOK_SECRET", ""),
		OpsAPIKey:     getEnv("OPS_API_KEY", ""),

		CORSOrigins: getEnvSlice("CORS_ORIGINS", []string{"http://localhost:3000"}),

		StorageEndpoint:  getEnv("AWS_ENDPOINT_URL_S3", ""),
		StorageAccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
		StorageSecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		StorageBucket:    getEnv("BUCKET_NAME", ""),
		StorageRegion:    getEnv("AWS_REGION", "auto"),
		ThresholdsKey:    getEnv("THRESHOLDS_KEY", "config/alert_thresholds.json"),

		MaxBodyBytes:    int64(getEnvInt("MAX_BODY_BYTES", 5*1024*1024)),
		RateLimitPerMin: getEnvInt("RATE_LIMIT_PER_MIN", 120),

		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
	}

	cfg.StorageEnabled = cfg.StorageBucket != "" && cfg.StorageEndpoint != ""

	if cfg.WebhookSecret == "" {
		return nil, fmt.Errorf("GASBOT_WEBHOOK_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
