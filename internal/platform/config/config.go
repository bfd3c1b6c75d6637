package config

import (
	"log/slog"
	"os"
	"time"
)

// Config holds all configuration for the portal.
type Config struct {
	Addr           string
	JWKSEndpoint   string // where the internal token issuer publishes its signing keys
	JWKSMinRefresh time.Duration
	OIDCIssuer     string // external identity provider issuer URL; empty disables the external path
	OIDCClientID   string
	RedisAddr      string // empty selects the in-memory revocation registry and session store
	RedisPassword  string
	DatabaseURL    string // empty selects the in-memory user directory
	LogLevel       string
}

// Load reads configuration from environment variables, falling back to defaults.
func Load() Config {
	return Config{
		Addr:           envOr("PORTAL_ADDR", ":8080"),
		JWKSEndpoint:   envOr("JWKS_ENDPOINT", "http://localhost:8081/.well-known/jwks.json"),
		JWKSMinRefresh: envDuration("JWKS_MIN_REFRESH", 5*time.Minute),
		OIDCIssuer:     envOr("OIDC_ISSUER", ""),
		OIDCClientID:   envOr("OIDC_CLIENT_ID", ""),
		RedisAddr:      envOr("REDIS_ADDR", ""),
		RedisPassword:  envOr("REDIS_PASSWORD", ""),
		DatabaseURL:    envOr("DATABASE_URL", ""),
		LogLevel:       envOr("LOG_LEVEL", "info"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", fallback)
			return fallback
		}
		return d
	}
	return fallback
}
