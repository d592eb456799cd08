// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

const testSecret = "Test-Secret-Key-32-bytes-long-0123!"

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set %s: %v", key, err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	setEnv(t, "BARRYLAND_JWT_SECRET", testSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DBPath != "./data/barryland.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "./data/barryland.db")
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 8080)
	}
	if cfg.Env != "development" {
		t.Errorf("Env = %q, want %q", cfg.Env, "development")
	}
	if cfg.ListingTTL != 90*24*time.Hour {
		t.Errorf("ListingTTL = %v, want %v", cfg.ListingTTL, 90*24*time.Hour)
	}
	if cfg.TaskWorkers != 4 {
		t.Errorf("TaskWorkers = %d, want 4", cfg.TaskWorkers)
	}
	if cfg.UseRedis() || cfg.SearchEnabled() || cfg.SMTPEnabled() || cfg.GeoIPEnabled() {
		t.Error("optional integrations should be disabled by default")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Clearenv()
	setEnv(t, "BARRYLAND_JWT_SECRET", testSecret)
	setEnv(t, "BARRYLAND_DB_PATH", "/custom/path.db")
	setEnv(t, "BARRYLAND_SERVER_HOST", "0.0.0.0")
	setEnv(t, "BARRYLAND_SERVER_PORT", "3000")
	setEnv(t, "BARRYLAND_ENV", "production")
	setEnv(t, "BARRYLAND_LISTING_TTL", "720h")
	setEnv(t, "BARRYLAND_REDIS_URL", "redis://localhost:6379/0")
	setEnv(t, "BARRYLAND_MEILISEARCH_HOST", "http://localhost:7700")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.ServerAddr() != "0.0.0.0:3000" {
		t.Errorf("ServerAddr() = %q, want %q", cfg.ServerAddr(), "0.0.0.0:3000")
	}
	if cfg.IsDevelopment() {
		t.Error("IsDevelopment() = true, want false")
	}
	if cfg.ListingTTL != 30*24*time.Hour {
		t.Errorf("ListingTTL = %v, want %v", cfg.ListingTTL, 30*24*time.Hour)
	}
	if !cfg.UseRedis() {
		t.Error("UseRedis() = false, want true")
	}
	if !cfg.SearchEnabled() {
		t.Error("SearchEnabled() = false, want true")
	}
}

func TestLoad_RequiredJWTSecret(t *testing.T) {
	os.Clearenv()

	_, err := Load()
	if err == nil {
		t.Fatal("Load() should fail without BARRYLAND_JWT_SECRET")
	}
}

func TestLoad_JWTSecretTooShort(t *testing.T) {
	os.Clearenv()
	setEnv(t, "BARRYLAND_JWT_SECRET", "short")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() should fail with a short secret")
	}
	if !strings.Contains(err.Error(), "at least 32 bytes") {
		t.Errorf("error = %q, want mention of minimum length", err.Error())
	}
}

func TestLoad_KnownWeakSecret(t *testing.T) {
	os.Clearenv()
	setEnv(t, "BARRYLAND_JWT_SECRET", "REPLACE_WITH_YOUR_OWN_SECRET_KEY!")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() should reject a known placeholder secret")
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			JWTSecret:        testSecret,
			Env:              "development",
			ListingTTL:       time.Hour,
			TaskWorkers:      1,
			TaskQueueSize:    1,
			MaxLoginAttempts: 5,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"unknown env", func(c *Config) { c.Env = "staging" }, true},
		{"zero listing ttl", func(c *Config) { c.ListingTTL = 0 }, true},
		{"no workers", func(c *Config) { c.TaskWorkers = 0 }, true},
		{"admin email without password", func(c *Config) { c.AdminEmail = "a@example.com" }, true},
		{"admin email and password", func(c *Config) {
			c.AdminEmail = "a@example.com"
			c.AdminPassword = "secret-password"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestHasMinimumEntropy(t *testing.T) {
	if hasMinimumEntropy("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa") {
		t.Error("single character class should be low entropy")
	}
	if !hasMinimumEntropy(testSecret) {
		t.Error("mixed secret should pass")
	}
}
