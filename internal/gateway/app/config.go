package app

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// ErrMissingSecret is returned when GATEWAY_SECRET is unset. The gateway
// cannot mint or verify tokens without it, so there is no default.
var ErrMissingSecret = errors.New("GATEWAY_SECRET is required")

type Config struct {
	Secret string // Required: HMAC signing secret for tokens

	UserTokenTTL   string // Optional: user token lifetime, e.g. "24h" (default: 24h)
	AccessTokenTTL string // Optional: access token lifetime, e.g. "1h" (default: 1h)

	RateLimitMax    int           // Optional: requests per window per key (default: 100)
	RateLimitWindow time.Duration // Optional: sliding window length (default: 60s)

	BootstrapUsername string // Optional: seed admin username for an empty store
	BootstrapPassword string // Optional: seed admin password

	DatabaseFile        string        // Optional: path to SQLite database file (default: ./gateway.db)
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
	SweepInterval       time.Duration // Rate-limit store sweep interval (default: 1m)
}

func LoadConfig() Config {
	return Config{
		Secret:              os.Getenv("GATEWAY_SECRET"),
		UserTokenTTL:        getEnvOrDefault("USER_TOKEN_TTL", "24h"),
		AccessTokenTTL:      getEnvOrDefault("ACCESS_TOKEN_TTL", "1h"),
		RateLimitMax:        getEnvIntOrDefault("RATE_LIMIT_MAX", 100),
		RateLimitWindow:     getEnvDurationOrDefault("RATE_LIMIT_WINDOW", time.Minute),
		BootstrapUsername:   os.Getenv("BOOTSTRAP_USERNAME"),
		BootstrapPassword:   os.Getenv("BOOTSTRAP_PASSWORD"),
		DatabaseFile:        getEnvOrDefault("DATABASE_FILE", "gateway.db"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		SweepInterval:       getEnvDurationOrDefault("SWEEP_INTERVAL", time.Minute),
	}
}

// Validate reports configuration the gateway cannot start without.
func (c Config) Validate() error {
	if c.Secret == "" {
		return ErrMissingSecret
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Duration strings first ("1h", "30m", "90s").
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are taken as milliseconds, matching the rate-limit
	// window's wire unit.
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}

	return defaultValue
}
