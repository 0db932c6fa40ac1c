// Package config handles loading application configuration from environment
// variables. All config is centralized here so no other package reads env
// vars directly. Sensible defaults are provided for development.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration. Populated from environment
// variables at startup. Passed to other packages via dependency injection.
type Config struct {
	// Env is the runtime environment: "development" or "production".
	Env string

	// Port is the HTTP listen port (default: 8080).
	Port int

	// BaseURL is the public-facing URL used for links and redirects.
	BaseURL string

	// LogLevel controls log verbosity: "debug", "info", "warn", "error".
	LogLevel string

	// Upstream holds settings for the club platform JSON API.
	Upstream UpstreamConfig

	// Calendar holds calendar display settings.
	Calendar CalendarConfig

	// Redis holds Redis connection settings.
	Redis RedisConfig

	// Cache holds month snapshot cache settings.
	Cache CacheConfig

	// Auth holds settings for the external identity provider.
	Auth AuthConfig

	// RateLimit holds limits for mutation endpoints.
	RateLimit RateLimitConfig
}

// UpstreamConfig points at the club platform API that owns all calendar data.
type UpstreamConfig struct {
	// BaseURL is the API root, e.g. "https://api.gaa.eu/api/calendar/".
	BaseURL string

	// Timeout bounds every upstream request (default: 10s).
	Timeout time.Duration
}

// CalendarConfig holds calendar display settings.
type CalendarConfig struct {
	// HolidayCountry is the country code passed to the holidays endpoint
	// in the single-club view (default: "IE").
	HolidayCountry string

	// Timezone decides which civil date counts as "today" (default: Europe/Dublin).
	Timezone string

	// Location is the parsed Timezone.
	Location *time.Location

	// EventPageURL is the prefix event list links point at. The event ID
	// is appended (default: "/events/").
	EventPageURL string
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	// URL is the Redis connection URL (e.g., "redis://localhost:6379").
	// Empty disables the shared cache tier.
	URL string
}

// CacheConfig controls month snapshot caching. When disabled every month
// navigation fetches fresh data from upstream.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Size    int
}

// AuthConfig holds settings for the external identity provider.
type AuthConfig struct {
	// SessionCookie is the cookie carrying the viewer's platform session.
	SessionCookie string

	// LoginURL is where unauthenticated browsers are sent.
	LoginURL string
}

// RateLimitConfig bounds how often a single IP may submit interest.
type RateLimitConfig struct {
	InterestMax    int
	InterestWindow time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first when present; real
// environment variables always win over it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnvInt("PORT", 8080),
		BaseURL:  getEnv("BASE_URL", "http://localhost:8080"),
		LogLevel: getEnv("LOG_LEVEL", "debug"),

		Upstream: UpstreamConfig{
			BaseURL: getEnv("UPSTREAM_BASE_URL", "http://localhost:3000/api/calendar/"),
			Timeout: getEnvDuration("UPSTREAM_TIMEOUT", 10*time.Second),
		},

		Calendar: CalendarConfig{
			HolidayCountry: getEnv("HOLIDAY_COUNTRY", "IE"),
			Timezone:       getEnv("TIMEZONE", "Europe/Dublin"),
			EventPageURL:   getEnv("EVENT_PAGE_URL", "/events/"),
		},

		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},

		Cache: CacheConfig{
			Enabled: getEnvBool("CACHE_ENABLED", false),
			TTL:     getEnvDuration("CACHE_TTL", 2*time.Minute),
			Size:    getEnvInt("CACHE_SIZE", 256),
		},

		Auth: AuthConfig{
			SessionCookie: getEnv("SESSION_COOKIE", "clubcal_session"),
			LoginURL:      getEnv("LOGIN_URL", "/login"),
		},

		RateLimit: RateLimitConfig{
			InterestMax:    getEnvInt("INTEREST_RATE_LIMIT", 20),
			InterestWindow: getEnvDuration("INTEREST_RATE_WINDOW", time.Minute),
		},
	}

	loc, err := time.LoadLocation(cfg.Calendar.Timezone)
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE %q: %w", cfg.Calendar.Timezone, err)
	}
	cfg.Calendar.Location = loc

	u, err := url.Parse(cfg.Upstream.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("UPSTREAM_BASE_URL must be an absolute URL, got %q", cfg.Upstream.BaseURL)
	}

	if !cfg.IsDevelopment() && u.Scheme != "https" {
		return nil, fmt.Errorf("UPSTREAM_BASE_URL must use https in production")
	}

	if cfg.Cache.Size < 1 {
		cfg.Cache.Size = 1
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Env)
	return env == "development" || env == "dev"
}

// --- Helper functions for reading environment variables ---

// getEnv reads a string env var or returns the default.
func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// getEnvInt reads an integer env var or returns the default.
func getEnvInt(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// getEnvBool reads a boolean env var ("true", "1", ...) or returns the default.
func getEnvBool(key string, defaultVal bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

// getEnvDuration reads a duration env var (e.g., "30s") or returns the default.
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
