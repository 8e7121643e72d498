package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the client and the stub server.
type Config struct {
	// Events platform API
	APIBaseURL string

	// Identity provider
	IdentityBaseURL string
	IdentityAPIKey  string

	// Shared HTTP client timeout
	HTTPTimeout time.Duration

	// Stub server
	StubPort  string
	JWTSecret string
}

// LoadEnv loads a .env file if one is present. Missing files are fine; the
// process environment is used as-is.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system environment variables")
	}
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		APIBaseURL:      getEnv("API_BASE_URL", "http://localhost:8081"),
		IdentityBaseURL: getEnv("IDENTITY_BASE_URL", "http://localhost:8081"),
		IdentityAPIKey:  getEnv("IDENTITY_API_KEY", ""),
		HTTPTimeout:     getEnvDuration("HTTP_TIMEOUT", 15*time.Second),
		StubPort:        getEnv("STUB_PORT", "8081"),
		JWTSecret:       getEnv("JWT_SECRET", "dev-only-secret"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("invalid duration for %s: %q, using default %s", key, v, fallback)
		return fallback
	}
	return d
}
