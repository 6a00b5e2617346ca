package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Config holds runtime configuration sourced from env vars. Token lifetime
// (JWT_TTL_HOURS) is read by the auth package directly, alongside JWT_SECRET.
type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string
	RedisURL    string
	NATSURL     string
	CORSOrigins []string
}

// Load reads configuration from the environment and performs minimal
// validation. REDIS_URL and NATS_URL are optional; the features backed by them
// are disabled when unset.
func Load() (Config, error) {
	cfg := Config{
		Port:        fallback(os.Getenv("PORT"), "8080"),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:   strings.TrimSpace(os.Getenv("JWT_SECRET")),
		RedisURL:    strings.TrimSpace(os.Getenv("REDIS_URL")),
		NATSURL:     strings.TrimSpace(os.Getenv("NATS_URL")),
		CORSOrigins: parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = buildDSN()
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func buildDSN() string {
	return "host=" + fallback(os.Getenv("DB_HOST"), "localhost") +
		" user=" + fallback(os.Getenv("DB_USER"), "membership_user") +
		" password=" + fallback(os.Getenv("DB_PASSWORD"), "membership_pass") +
		" dbname=" + fallback(os.Getenv("DB_NAME"), "membership") +
		" sslmode=disable"
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
