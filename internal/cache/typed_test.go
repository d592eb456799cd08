// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type snapshot struct {
	Users int64  `json:"users"`
	Label string `json:"label"`
}

func TestTypedCache_GetOrSet(t *testing.T) {
	mem := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	defer func() { _ = mem.Close() }()
	tc := NewTypedCache[snapshot](mem, time.Minute)
	ctx := context.Background()

	calls := 0
	compute := func() (*snapshot, error) {
		calls++
		return &snapshot{Users: 3, Label: "now"}, nil
	}

	first, err := tc.GetOrSet(ctx, "dash", compute)
	if err != nil {
		t.Fatalf("GetOrSet: %v", err)
	}
	second, err := tc.GetOrSet(ctx, "dash", compute)
	if err != nil {
		t.Fatalf("GetOrSet: %v", err)
	}

	if calls != 1 {
		t.Errorf("compute called %d times, want 1", calls)
	}
	if *first != *second {
		t.Errorf("cached value = %+v, want %+v", *second, *first)
	}

	_ = tc.Delete(ctx, "dash")
	_, _ = tc.GetOrSet(ctx, "dash", compute)
	if calls != 2 {
		t.Errorf("compute called %d times after Delete, want 2", calls)
	}
}

func TestTypedCache_ComputeError(t *testing.T) {
	mem := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	defer func() { _ = mem.Close() }()
	tc := NewTypedCache[snapshot](mem, time.Minute)

	wantErr := errors.New("db down")
	_, err := tc.GetOrSet(context.Background(), "dash", func() (*snapshot, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("GetOrSet error = %v, want %v", err, wantErr)
	}
	if _, ok := tc.Get(context.Background(), "dash"); ok {
		t.Error("failed computation should not be cached")
	}
}

func TestTypedCache_CorruptValueIsMiss(t *testing.T) {
	mem := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	defer func() { _ = mem.Close() }()
	tc := NewTypedCache[snapshot](mem, time.Minute)

	_ = mem.Set(context.Background(), "dash", []byte("{not json"), 0)
	if _, ok := tc.Get(context.Background(), "dash"); ok {
		t.Error("corrupt entry should be treated as a miss")
	}
}
