// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads application configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains placeholder secrets that must never be accepted.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
	"your-super-secret-jwt-key-change-me",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"BARRYLAND_DB_PATH" envDefault:"./data/barryland.db"`
	ServerHost string `env:"BARRYLAND_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"BARRYLAND_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"BARRYLAND_ENV" envDefault:"development"`
	LogLevel   string `env:"BARRYLAND_LOG_LEVEL" envDefault:"info"`
	BaseURL    string `env:"BARRYLAND_BASE_URL" envDefault:"http://localhost:8080"`
	UploadsDir string `env:"BARRYLAND_UPLOADS_DIR" envDefault:"./uploads"`

	// Bearer tokens
	JWTSecret   string        `env:"BARRYLAND_JWT_SECRET,required"`
	JWTIssuer   string        `env:"BARRYLAND_JWT_ISSUER" envDefault:"barryland"`
	JWTAudience string        `env:"BARRYLAND_JWT_AUDIENCE" envDefault:"barryland-api"`
	TokenTTL    time.Duration `env:"BARRYLAND_TOKEN_TTL" envDefault:"24h"`

	// Listings
	ListingTTL       time.Duration `env:"BARRYLAND_LISTING_TTL" envDefault:"2160h"` // 90 days
	DashboardRecent  int           `env:"BARRYLAND_DASHBOARD_RECENT" envDefault:"10"`
	EventRetention   time.Duration `env:"BARRYLAND_EVENT_RETENTION" envDefault:"720h"`
	MaxLoginAttempts int           `env:"BARRYLAND_MAX_LOGIN_ATTEMPTS" envDefault:"5"`
	LockoutDuration  time.Duration `env:"BARRYLAND_LOCKOUT_DURATION" envDefault:"15m"`
	ResetCodeTTL     time.Duration `env:"BARRYLAND_RESET_CODE_TTL" envDefault:"15m"`

	// Best-effort side-effect queue
	TaskQueueSize int           `env:"BARRYLAND_TASK_QUEUE_SIZE" envDefault:"256"`
	TaskWorkers   int           `env:"BARRYLAND_TASK_WORKERS" envDefault:"4"`
	TaskTimeout   time.Duration `env:"BARRYLAND_TASK_TIMEOUT" envDefault:"30s"`

	// Cache configuration
	RedisURL    string        `env:"BARRYLAND_REDIS_URL"`
	CachePrefix string        `env:"BARRYLAND_CACHE_PREFIX" envDefault:"barryland:"`
	CacheTTL    time.Duration `env:"BARRYLAND_CACHE_TTL" envDefault:"60s"`

	// Rate limiting
	APIRateLimit   float64 `env:"BARRYLAND_API_RATE_LIMIT" envDefault:"10"`
	APIRateBurst   int     `env:"BARRYLAND_API_RATE_BURST" envDefault:"30"`
	LoginRateLimit float64 `env:"BARRYLAND_LOGIN_RATE_LIMIT" envDefault:"0.5"`
	LoginRateBurst int     `env:"BARRYLAND_LOGIN_RATE_BURST" envDefault:"5"`

	// Search
	MeilisearchHost  string `env:"BARRYLAND_MEILISEARCH_HOST"`
	MeilisearchKey   string `env:"BARRYLAND_MEILISEARCH_KEY"`
	MeilisearchIndex string `env:"BARRYLAND_MEILISEARCH_INDEX" envDefault:"properties"`

	// Mail
	SMTPHost     string `env:"BARRYLAND_SMTP_HOST"`
	SMTPPort     int    `env:"BARRYLAND_SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"BARRYLAND_SMTP_USERNAME"`
	SMTPPassword string `env:"BARRYLAND_SMTP_PASSWORD"`
	MailFrom     string `env:"BARRYLAND_MAIL_FROM" envDefault:"Barryland <no-reply@barryland.local>"`

	// hCaptcha configuration
	HCaptchaSecretKey string `env:"BARRYLAND_HCAPTCHA_SECRET_KEY"`

	// GeoIP configuration
	GeoIPDBPath string `env:"BARRYLAND_GEOIP_DB_PATH"` // Path to GeoLite2-Country.mmdb file

	// Bootstrap admin, created by the seeder when both are set
	AdminEmail    string `env:"BARRYLAND_ADMIN_EMAIL"`
	AdminPassword string `env:"BARRYLAND_ADMIN_PASSWORD"`
	DoSeed        bool   `env:"BARRYLAND_DO_SEED" envDefault:"false"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedis returns true if Redis is configured.
func (c Config) UseRedis() bool {
	return c.RedisURL != ""
}

// SearchEnabled returns true if a Meilisearch host is configured.
func (c Config) SearchEnabled() bool {
	return c.MeilisearchHost != ""
}

// SMTPEnabled returns true if outgoing mail is configured.
func (c Config) SMTPEnabled() bool {
	return c.SMTPHost != ""
}

// HCaptchaEnabled returns true if hCaptcha is configured.
func (c Config) HCaptchaEnabled() bool {
	return c.HCaptchaSecretKey != ""
}

// GeoIPEnabled returns true if GeoIP database is configured.
func (c Config) GeoIPEnabled() bool {
	return c.GeoIPDBPath != ""
}

// MinJWTSecretLength is the minimum required length for the token signing secret.
const MinJWTSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if !hasMinimumEntropy(cfg.JWTSecret) {
		slog.Warn("BARRYLAND_JWT_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

// Validate checks values that env tags cannot express.
func (c *Config) Validate() error {
	if len(c.JWTSecret) < MinJWTSecretLength {
		return fmt.Errorf("BARRYLAND_JWT_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinJWTSecretLength, len(c.JWTSecret))
	}

	for _, weak := range knownWeakSecrets {
		if c.JWTSecret == weak {
			return errors.New("BARRYLAND_JWT_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	switch c.Env {
	case "development", "production", "test":
	default:
		return fmt.Errorf("BARRYLAND_ENV must be development, production or test, got %q", c.Env)
	}

	if c.ListingTTL <= 0 {
		return errors.New("BARRYLAND_LISTING_TTL must be positive")
	}
	if c.TaskWorkers < 1 || c.TaskQueueSize < 1 {
		return errors.New("BARRYLAND_TASK_WORKERS and BARRYLAND_TASK_QUEUE_SIZE must be at least 1")
	}
	if c.MaxLoginAttempts < 1 {
		return errors.New("BARRYLAND_MAX_LOGIN_ATTEMPTS must be at least 1")
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		return errors.New("BARRYLAND_ADMIN_EMAIL and BARRYLAND_ADMIN_PASSWORD must be set together")
	}
	return nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
