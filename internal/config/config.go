package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds process-wide settings loaded once at startup. It is never
// mutated afterwards; every component receives the values it needs at
// construction time.
type Config struct {
	Port string

	// Postgres. DATABASE_URL wins; otherwise the DSN is assembled from the
	// discrete DB_* variables.
	DatabaseDSN string

	// Products service (upstream catalog).
	ProductsBaseURL string
	InternalAPIKey  string

	// Product client retry budget. Mirrors a 3-attempt policy with waits
	// growing from ProductRetryWait up to ProductRetryMaxWait.
	ProductRequestTimeout time.Duration
	ProductRetryAttempts  int
	ProductRetryWait      time.Duration
	ProductRetryMaxWait   time.Duration

	SeedDemoData bool
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:                  getEnvOrDefault("PORT", "3000"),
		DatabaseDSN:           buildDSN(),
		ProductsBaseURL:       os.Getenv("PRODUCTS_SERVICE_BASE_URL"),
		InternalAPIKey:        os.Getenv("INTERNAL_API_KEY"),
		ProductRequestTimeout: getDurationOrDefault("PRODUCT_CLIENT_TIMEOUT", 2*time.Second),
		ProductRetryAttempts:  getIntOrDefault("PRODUCT_CLIENT_RETRY_ATTEMPTS", 3),
		ProductRetryWait:      getDurationOrDefault("PRODUCT_CLIENT_RETRY_WAIT", 100*time.Millisecond),
		ProductRetryMaxWait:   getDurationOrDefault("PRODUCT_CLIENT_RETRY_MAX_WAIT", time.Second),
		SeedDemoData:          os.Getenv("SEED_DEMO_DATA") == "true",
	}

	if cfg.DatabaseDSN == "" {
		return nil, fmt.Errorf("DATABASE_URL or DB_* variables are required")
	}
	if cfg.ProductsBaseURL == "" {
		return nil, fmt.Errorf("PRODUCTS_SERVICE_BASE_URL is required")
	}
	if cfg.InternalAPIKey == "" {
		return nil, fmt.Errorf("INTERNAL_API_KEY is required")
	}
	if cfg.ProductRetryAttempts < 1 {
		return nil, fmt.Errorf("PRODUCT_CLIENT_RETRY_ATTEMPTS must be at least 1")
	}

	return cfg, nil
}

func buildDSN() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}
	if os.Getenv("DB_HOST") == "" {
		return ""
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		getEnvOrDefault("DB_PORT", "5432"),
	)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
