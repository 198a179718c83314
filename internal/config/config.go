// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	JWTSecret   string
	ServerPort  string
	ServerHost  string
	Environment string

	// Change feed transport. When RedisEnabled is false the service runs on
	// the in-process bus, which only sees its own writes.
	RedisEnabled bool
	RedisURL     string
	RedisChannel string

	SweepInterval    time.Duration
	BackstopInterval time.Duration
	PromoteInterval  time.Duration

	LogLevel  string
	LogFormat string
}

var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")
	ErrMissingJWTSecret   = errors.New("JWT_SECRET is required")
)

func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		ServerPort:  getEnvOrDefault("SERVER_PORT", "8080"),
		ServerHost:  getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
		Environment: getEnvOrDefault("ENV", "development"),

		RedisEnabled: getEnvOrDefaultBool("REDIS_ENABLED", true),
		RedisURL:     getEnvOrDefault("REDIS_URL", "redis://localhost:6379/0"),
		RedisChannel: getEnvOrDefault("REDIS_CHANGE_CHANNEL", "rallydesk:changes"),

		SweepInterval:    getEnvOrDefaultDuration("SWEEP_INTERVAL", 15*time.Minute),
		BackstopInterval: getEnvOrDefaultDuration("BACKSTOP_INTERVAL", 24*time.Hour),
		PromoteInterval:  getEnvOrDefaultDuration("PROMOTE_INTERVAL", 5*time.Minute),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),
	}

	if cfg.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}
	if cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvOrDefaultBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

func getEnvOrDefaultDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		// interpret as seconds if numeric, else parse like Go duration
		if n, err := strconv.Atoi(value); err == nil {
			return time.Duration(n) * time.Second
		}
		d, err := time.ParseDuration(value)
		if err != nil {
			return defaultValue
		}
		return d
	}
	return defaultValue
}
