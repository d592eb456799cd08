// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

// skipIfNoRedis skips the test if Redis is not configured.
func skipIfNoRedis(t *testing.T) string {
	t.Helper()
	url := os.Getenv("BARRYLAND_TEST_REDIS_URL")
	if url == "" {
		t.Skip("Skipping Redis tests: BARRYLAND_TEST_REDIS_URL not set")
	}
	return url
}

func newTestRedis(t *testing.T) *RedisCache {
	t.Helper()
	opts := DefaultRedisCacheOptions()
	opts.URL = skipIfNoRedis(t)
	opts.Prefix = "barryland-test:"

	c, err := NewRedisCache(opts)
	if err != nil {
		t.Fatalf("failed to create Redis cache: %v", err)
	}
	t.Cleanup(func() {
		_ = c.Clear(context.Background())
		_ = c.Close()
	})
	_ = c.Clear(context.Background())
	return c
}

func TestRedisCache_Basic(t *testing.T) {
	c := newTestRedis(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "v" {
		t.Errorf("Get returned %q, want %q", got, "v")
	}

	if ok, _ := c.Has(ctx, "k"); !ok {
		t.Error("Has returned false for existing key")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get after Delete error = %v, want ErrCacheMiss", err)
	}
}

func TestRedisCache_DeleteByPrefix(t *testing.T) {
	c := newTestRedis(t)
	ctx := context.Background()

	_ = c.Set(ctx, "dashboard:a", []byte("1"), time.Minute)
	_ = c.Set(ctx, "dashboard:b", []byte("2"), time.Minute)
	_ = c.Set(ctx, "other", []byte("3"), time.Minute)

	if err := c.DeleteByPrefix(ctx, "dashboard:"); err != nil {
		t.Fatalf("DeleteByPrefix failed: %v", err)
	}
	if ok, _ := c.Has(ctx, "dashboard:a"); ok {
		t.Error("dashboard:a should be deleted")
	}
	if ok, _ := c.Has(ctx, "other"); !ok {
		t.Error("other should remain")
	}
}

func TestRedisCache_Close(t *testing.T) {
	c := newTestRedis(t)
	_ = c.Close()

	if _, err := c.Get(context.Background(), "k"); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Get after Close error = %v, want ErrCacheClosed", err)
	}
}

func TestRedisCache_InvalidURL(t *testing.T) {
	if _, err := NewRedisCache(RedisCacheOptions{URL: "not-a-url"}); err == nil {
		t.Error("expected error for invalid URL")
	}
}

func TestRedisCache_EmptyURL(t *testing.T) {
	if _, err := NewRedisCache(RedisCacheOptions{}); err == nil {
		t.Error("expected error for empty URL")
	}
}
