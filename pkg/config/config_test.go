package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	// Clear any env vars that might be set
	os.Unsetenv("API_BASE_URL")
	os.Unsetenv("IDENTITY_BASE_URL")
	os.Unsetenv("HTTP_TIMEOUT")
	os.Unsetenv("STUB_PORT")

	cfg := Load()

	if cfg.APIBaseURL != "http://localhost:8081" {
		t.Errorf("unexpected APIBaseURL: %s", cfg.APIBaseURL)
	}
	if cfg.IdentityBaseURL != "http://localhost:8081" {
		t.Errorf("unexpected IdentityBaseURL: %s", cfg.IdentityBaseURL)
	}
	if cfg.HTTPTimeout != 15*time.Second {
		t.Errorf("unexpected HTTPTimeout: %s", cfg.HTTPTimeout)
	}
	if cfg.StubPort != "8081" {
		t.Errorf("unexpected StubPort: %s", cfg.StubPort)
	}
}

func TestLoadFromEnv(t *testing.T) {
	os.Setenv("API_BASE_URL", "https://api.example.com")
	os.Setenv("IDENTITY_API_KEY", "key-123")
	os.Setenv("HTTP_TIMEOUT", "30s")
	defer func() {
		os.Unsetenv("API_BASE_URL")
		os.Unsetenv("IDENTITY_API_KEY")
		os.Unsetenv("HTTP_TIMEOUT")
	}()

	cfg := Load()

	if cfg.APIBaseURL != "https://api.example.com" {
		t.Errorf("unexpected APIBaseURL: %s", cfg.APIBaseURL)
	}
	if cfg.IdentityAPIKey != "key-123" {
		t.Errorf("unexpected IdentityAPIKey: %s", cfg.IdentityAPIKey)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("unexpected HTTPTimeout: %s", cfg.HTTPTimeout)
	}
}

func TestGetEnvDurationInvalid(t *testing.T) {
	os.Setenv("HTTP_TIMEOUT", "not-a-duration")
	defer os.Unsetenv("HTTP_TIMEOUT")

	d := getEnvDuration("HTTP_TIMEOUT", 15*time.Second)
	if d != 15*time.Second {
		t.Errorf("expected fallback 15s, got %s", d)
	}
}

func TestGetEnvFallback(t *testing.T) {
	os.Unsetenv("NONEXISTENT_KEY")
	val := getEnv("NONEXISTENT_KEY", "fallback-value")
	if val != "fallback-value" {
		t.Errorf("expected fallback-value, got %s", val)
	}
}
