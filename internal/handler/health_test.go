// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/saramoussaya/barryland/internal/middleware"
	"github.com/saramoussaya/barryland/internal/model"
	"github.com/saramoussaya/barryland/internal/testutil"
)

func newTestHealthHandler(t *testing.T, probes map[string]Probe) *HealthHandler {
	t.Helper()
	return NewHealthHandler(testutil.TestMemoryDB(t), t.TempDir(), probes)
}

func requestAs(target string, actor model.Actor) *http.Request {
	r := httptest.NewRequest(http.MethodGet, target, nil)
	return r.WithContext(middleware.WithActor(r.Context(), actor))
}

func TestHealthHandler_Health_Public(t *testing.T) {
	handler := newTestHealthHandler(t, nil)

	w := httptest.NewRecorder()
	handler.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] == statusUnhealthy {
		t.Errorf("status = %v, want healthy or degraded", resp["status"])
	}
	if len(resp) != 1 {
		t.Errorf("public response leaked fields: %v", resp)
	}
}

func TestHealthHandler_Health_User(t *testing.T) {
	handler := newTestHealthHandler(t, nil)

	w := httptest.NewRecorder()
	handler.Health(w, requestAs("/health", model.Actor{UserID: 7, Role: model.RoleParticular}))

	var resp HealthStatus
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Uptime == "" {
		t.Error("expected uptime for signed-in user")
	}
	if resp.Version.Version == "" {
		t.Error("expected version for signed-in user")
	}
	if resp.Checks != nil {
		t.Errorf("non-admin should not see checks, got %v", resp.Checks)
	}
}

func TestHealthHandler_Health_Admin(t *testing.T) {
	handler := newTestHealthHandler(t, map[string]Probe{
		"redis": func(context.Context) error { return nil },
	})

	w := httptest.NewRecorder()
	handler.Health(w, requestAs("/health?verbose=true", model.Actor{UserID: 1, Role: model.RoleAdmin}))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var resp HealthStatus
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, name := range []string{"database", "redis"} {
		if resp.Checks[name].Status != statusHealthy {
			t.Errorf("check %s = %+v, want healthy", name, resp.Checks[name])
		}
	}
	if _, ok := resp.Checks["disk"]; !ok {
		t.Error("expected disk check")
	}
	if resp.System == nil || resp.System.GoVersion == "" {
		t.Error("expected system info with verbose=true")
	}
}

func TestHealthHandler_Health_ProbeFailureDegrades(t *testing.T) {
	handler := newTestHealthHandler(t, map[string]Probe{
		"search": func(context.Context) error { return errors.New("connection refused") },
	})

	w := httptest.NewRecorder()
	handler.Health(w, requestAs("/health", model.Actor{UserID: 1, Role: model.RoleAdmin}))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var resp HealthStatus
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != statusDegraded {
		t.Errorf("status = %q, want %q", resp.Status, statusDegraded)
	}
	if resp.Checks["search"].Message != "connection refused" {
		t.Errorf("search check = %+v", resp.Checks["search"])
	}
}

func TestHealthHandler_DatabaseDown(t *testing.T) {
	handler := newTestHealthHandler(t, nil)
	_ = handler.db.Close()

	w := httptest.NewRecorder()
	handler.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("health status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}

	w = httptest.NewRecorder()
	handler.Readiness(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("ready status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := resp["message"]; ok {
		t.Error("anonymous caller should not see the database error")
	}
}

func TestHealthHandler_Readiness(t *testing.T) {
	handler := newTestHealthHandler(t, nil)

	w := httptest.NewRecorder()
	handler.Readiness(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestHealthHandler_Liveness(t *testing.T) {
	handler := newTestHealthHandler(t, nil)

	w := httptest.NewRecorder()
	handler.Liveness(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestCheckDiskSpace_MissingDir(t *testing.T) {
	h := &HealthHandler{uploadsDir: filepath.Join(t.TempDir(), "nope")}
	if c := h.checkDiskSpace(); c.Status != statusHealthy {
		t.Errorf("missing dir check = %+v, want healthy", c)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{512, "512 B"},
		{2048, "2.00 KB"},
		{5 * 1024 * 1024, "5.00 MB"},
		{3 * 1024 * 1024 * 1024, "3.00 GB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
