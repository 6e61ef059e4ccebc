package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIBaseURL != "http://localhost:8080" {
		t.Fatalf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.APITimeout != 10*time.Second {
		t.Fatalf("APITimeout = %v", cfg.APITimeout)
	}
	if cfg.OTELMetricsEnabled || cfg.OTELTracingEnabled || cfg.OTELLogsEnabled {
		t.Fatal("otel exporters must default off for the console")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("KIOSKCTL_API_URL", "https://fleet.example.com")
	t.Setenv("KIOSKCTL_API_TIMEOUT", "3s")
	t.Setenv("OTEL_TRACING_ENABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIBaseURL != "https://fleet.example.com" {
		t.Fatalf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.APITimeout != 3*time.Second {
		t.Fatalf("APITimeout = %v", cfg.APITimeout)
	}
	if !cfg.OTELTracingEnabled {
		t.Fatal("expected tracing enabled")
	}
}

func TestValidateRejectsRelativeURL(t *testing.T) {
	t.Setenv("KIOSKCTL_API_URL", "fleet.example.com/api")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "KIOSKCTL_API_URL") {
		t.Fatalf("expected URL validation error, got %v", err)
	}
}

func TestValidateStubRequiresSecret(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.ValidateStub(); err == nil || !strings.Contains(err.Error(), "KIOSKCTL_STUB_JWT_SECRET") {
		t.Fatalf("expected stub secret error, got %v", err)
	}
	cfg.StubJWTSecret = strings.Repeat("s", 32)
	if err := cfg.ValidateStub(); err != nil {
		t.Fatalf("ValidateStub: %v", err)
	}
}
