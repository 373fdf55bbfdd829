// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/lmsctl.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Config struct — populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Database
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// Tick engine
	CronSecret       string
	TickBucket       time.Duration // run-gate interval width
	AdvanceFallback  time.Duration // next-round deadline when no FPL mapping
	SelfTickInterval time.Duration // 0 disables the internal tick sweep
	ImportInterval   time.Duration // 0 disables the fixture import sweep

	// FPL upstream
	FPLBaseURL           string
	FPLRequestsPerMinute int

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Cache
	CacheEnabled bool
}

// Load reads configuration from environment variables with sensible defaults.
// DATABASE_URL and CRON_SECRET are required; the tick endpoint must fail fast
// rather than run unauthenticated.
func Load() (*Config, error) {
	dbURL := envOr("DATABASE_URL", envOr("SUPABASE_DB_URL", ""))
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL or SUPABASE_DB_URL must be set")
	}

	secret := envOr("CRON_SECRET", "")
	if secret == "" {
		return nil, fmt.Errorf("CRON_SECRET must be set")
	}

	return &Config{
		DatabaseURL:    dbURL,
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 2),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 10),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CronSecret:       secret,
		TickBucket:       envDuration("TICK_BUCKET", 5*time.Minute),
		AdvanceFallback:  envDuration("ADVANCE_FALLBACK", 7*24*time.Hour),
		SelfTickInterval: envDuration("SELF_TICK_INTERVAL", 5*time.Minute),
		ImportInterval:   envDuration("FIXTURE_IMPORT_INTERVAL", 15*time.Minute),

		FPLBaseURL:           envOr("FPL_BASE_URL", "https://fantasy.premierleague.com/api"),
		FPLRequestsPerMinute: envInt("FPL_REQUESTS_PER_MINUTE", 30),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		CacheEnabled: envBool("CACHE_ENABLED", true),
	}, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
