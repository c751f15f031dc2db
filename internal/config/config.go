// Package config loads runtime configuration from environment
// variables, covering every option the HTTP surface, identity
// adapter, and registration engine need.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full set of recognized options.
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Auth        AuthConfig
	RateLimit   RateLimitConfig
	Scheduling  SchedulingConfig
	Capacity    CapacityConfig
	LogLevel    string
	Environment string
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host           string
	Port           string
	MaxBodyBytes   int64
	AllowedOrigins []string
}

// DatabaseConfig controls the Postgres connection pool.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// DSN builds a libpq-compatible connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// AuthConfig controls bearer-credential verification.
type AuthConfig struct {
	JWTSecret string
	JWTExpiry time.Duration
}

// RateLimitConfig controls the per-tier token buckets.
type RateLimitConfig struct {
	GeneralPerMinute int
	AuthPerMinute    int
}

// SchedulingConfig controls the event-creation time-window policy.
type SchedulingConfig struct {
	ConflictWindow  time.Duration // default 1h
	MinFutureOffset time.Duration // default 1h
	MaxFutureOffset time.Duration // default 365d
}

// CapacityConfig controls the accepted event capacity range.
type CapacityConfig struct {
	Min int
	Max int
}

// Load reads Config from the environment, falling back to
// development-friendly defaults.
func Load() Config {
	return Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnv("PORT", "8080"),
			MaxBodyBytes:   getEnvInt64("MAX_BODY_BYTES", 10<<20),
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "eventbooking"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 20)),
			MinConns: int32(getEnvInt("DB_MIN_CONNS", 2)),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-me"),
			JWTExpiry: getEnvDuration("JWT_EXPIRY", 24*time.Hour),
		},
		RateLimit: RateLimitConfig{
			GeneralPerMinute: getEnvInt("RATE_LIMIT_GENERAL", 120),
			AuthPerMinute:    getEnvInt("RATE_LIMIT_AUTH", 20),
		},
		Scheduling: SchedulingConfig{
			ConflictWindow:  getEnvDuration("SCHEDULING_CONFLICT_WINDOW", time.Hour),
			MinFutureOffset: getEnvDuration("EVENT_MIN_FUTURE_OFFSET", time.Hour),
			MaxFutureOffset: getEnvDuration("EVENT_MAX_FUTURE_OFFSET", 365*24*time.Hour),
		},
		Capacity: CapacityConfig{
			Min: getEnvInt("CAPACITY_MIN", 1),
			Max: getEnvInt("CAPACITY_MAX", 10_000),
		},
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Environment: getEnv("ENVIRONMENT", "development"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
