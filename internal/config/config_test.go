package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "host=localhost user=postgres dbname=ledger sslmode=disable")
	t.Setenv("PRODUCTS_SERVICE_BASE_URL", "http://localhost:8081")
	t.Setenv("INTERNAL_API_KEY", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if cfg.Port != "3000" {
		t.Errorf("expected default port 3000, got %s", cfg.Port)
	}
	if cfg.ProductRetryAttempts != 3 {
		t.Errorf("expected 3 retry attempts, got %d", cfg.ProductRetryAttempts)
	}
	if cfg.ProductRetryWait != 100*time.Millisecond {
		t.Errorf("expected 100ms retry wait, got %s", cfg.ProductRetryWait)
	}
	if cfg.ProductRetryMaxWait != time.Second {
		t.Errorf("expected 1s max retry wait, got %s", cfg.ProductRetryMaxWait)
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("PRODUCT_CLIENT_RETRY_ATTEMPTS", "5")
	t.Setenv("PRODUCT_CLIENT_TIMEOUT", "500ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Port)
	}
	if cfg.ProductRetryAttempts != 5 {
		t.Errorf("expected 5 retry attempts, got %d", cfg.ProductRetryAttempts)
	}
	if cfg.ProductRequestTimeout != 500*time.Millisecond {
		t.Errorf("expected 500ms timeout, got %s", cfg.ProductRequestTimeout)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	tests := []struct {
		name  string
		unset string
	}{
		{"missing products base url", "PRODUCTS_SERVICE_BASE_URL"},
		{"missing api key", "INTERNAL_API_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.unset, "")

			if _, err := Load(); err == nil {
				t.Error("expected error, got success")
			}
		})
	}
}

func TestBuildDSN_FromParts(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_USER", "ledger")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "inventory")
	t.Setenv("DB_PORT", "")

	want := "host=db.internal user=ledger password=pw dbname=inventory port=5432 sslmode=disable"
	if got := buildDSN(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
