package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// Server
	Port           string
	Env            string
	AllowedOrigins []string

	// Database
	DatabaseURL string

	// Redis backs the shared symbol resolution store. Empty disables it.
	RedisURL      string
	RedisPassword string

	// JWT
	JWTSecret     string
	JWTExpiration time.Duration

	// CoinCap price provider
	CoinCapAPIKey       string
	CoinCapBaseURL      string
	PriceRequestTimeout time.Duration
	PriceRateLimit      float64

	// Asset refresh scheduler
	PriceRefreshInterval    time.Duration
	PriceRefreshConcurrency int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		AllowedOrigins:          getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		DatabaseURL:             getEnv("DATABASE_URL", ""),
		RedisURL:                getEnv("REDIS_URL", ""),
		RedisPassword:           getEnv("REDIS_PASSWORD", ""),
		JWTSecret:               getEnv("JWT_SECRET", ""),
		JWTExpiration:           getEnvAsDuration("JWT_EXPIRATION", 24*time.Hour),
		CoinCapAPIKey:           getEnv("COINCAP_API_KEY", ""),
		CoinCapBaseURL:          getEnv("COINCAP_BASE_URL", ""),
		PriceRequestTimeout:     getEnvAsDuration("PRICE_REQUEST_TIMEOUT", 10*time.Second),
		PriceRateLimit:          getEnvAsFloat("PRICE_RATE_LIMIT", 5),
		PriceRefreshInterval:    time.Duration(getEnvAsInt("PRICE_REFRESH_INTERVAL_MS", 60000)) * time.Millisecond,
		PriceRefreshConcurrency: getEnvAsInt("PRICE_REFRESH_CONCURRENCY", 3),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures all required configuration is present
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}

	if c.CoinCapAPIKey == "" && c.IsProduction() {
		return fmt.Errorf("COINCAP_API_KEY is required in production")
	}

	if c.PriceRefreshInterval <= 0 {
		return fmt.Errorf("PRICE_REFRESH_INTERVAL_MS must be positive")
	}

	if c.PriceRefreshConcurrency < 1 {
		return fmt.Errorf("PRICE_REFRESH_CONCURRENCY must be at least 1")
	}

	if c.PriceRateLimit <= 0 {
		return fmt.Errorf("PRICE_RATE_LIMIT must be positive")
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// RedisEnabled reports whether a shared slug store should be used.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go duration syntax ("30s", "24h").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
