// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/saramoussaya/barryland/internal/auth"
	"github.com/saramoussaya/barryland/internal/model"
	"github.com/saramoussaya/barryland/internal/store"
	"github.com/saramoussaya/barryland/internal/testutil"
)

type verifierStub map[string]auth.Claims

func (v verifierStub) Verify(raw string) (auth.Claims, error) {
	if raw == "expired" {
		return auth.Claims{}, auth.ErrTokenExpired
	}
	c, ok := v[raw]
	if !ok {
		return auth.Claims{}, auth.ErrTokenInvalid
	}
	return c, nil
}

func createUser(t *testing.T, db *sql.DB, email, role string, active bool) store.User {
	t.Helper()
	now := time.Now().UTC()
	u, err := store.New(db).CreateUser(context.Background(), store.CreateUserParams{
		Email:        email,
		PasswordHash: "unused",
		FirstName:    "Test",
		Role:         role,
		IsActive:     active,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

// captureActor returns a handler that records the actor it was called with.
func captureActor(got *model.Actor, called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		*got = GetActor(r)
		w.WriteHeader(http.StatusNoContent)
	})
}

func decodeAPIError(t *testing.T, rr *httptest.ResponseRecorder) APIError {
	t.Helper()
	var apiErr APIError
	if err := json.Unmarshal(rr.Body.Bytes(), &apiErr); err != nil {
		t.Fatalf("decode error body %q: %v", rr.Body.String(), err)
	}
	return apiErr
}

func TestAuthenticate(t *testing.T) {
	db := testutil.TestMemoryDB(t)
	active := createUser(t, db, "agent@barryland.test", model.RoleProfessional, true)
	disabled := createUser(t, db, "gone@barryland.test", model.RoleParticular, false)

	// The token says particular; the database role wins.
	tokens := verifierStub{
		"good":     {UserID: active.ID, Role: model.RoleParticular},
		"disabled": {UserID: disabled.ID, Role: model.RoleParticular},
		"unknown":  {UserID: 9999, Role: model.RoleParticular},
	}
	mw := Authenticate(tokens, db, testutil.TestLoggerSilent())

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   string
		wantUserID int64
		wantRole   string
	}{
		{"anonymous", "", http.StatusNoContent, "", 0, ""},
		{"valid token", "Bearer good", http.StatusNoContent, "", active.ID, model.RoleProfessional},
		{"lowercase scheme", "bearer good", http.StatusNoContent, "", active.ID, model.RoleProfessional},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, "unauthorized", 0, ""},
		{"empty token", "Bearer ", http.StatusUnauthorized, "unauthorized", 0, ""},
		{"invalid token", "Bearer forged", http.StatusUnauthorized, "unauthorized", 0, ""},
		{"expired token", "Bearer expired", http.StatusUnauthorized, "token_expired", 0, ""},
		{"unknown user", "Bearer unknown", http.StatusUnauthorized, "unauthorized", 0, ""},
		{"disabled user", "Bearer disabled", http.StatusUnauthorized, "unauthorized", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got model.Actor
			var called bool
			req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
			req.RemoteAddr = "203.0.113.7:52100"
			req.Header.Set("User-Agent", "test-agent")
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()

			mw(captureActor(&got, &called)).ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("Status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if tt.wantCode != "" {
				if called {
					t.Error("next handler was called for a rejected request")
				}
				if code := decodeAPIError(t, rr).Error.Code; code != tt.wantCode {
					t.Errorf("error code = %q, want %q", code, tt.wantCode)
				}
				return
			}
			if got.UserID != tt.wantUserID || got.Role != tt.wantRole {
				t.Errorf("actor = %+v, want user %d role %q", got, tt.wantUserID, tt.wantRole)
			}
			if got.IP != "203.0.113.7" {
				t.Errorf("actor.IP = %q, want %q", got.IP, "203.0.113.7")
			}
			if got.UserAgent != "test-agent" {
				t.Errorf("actor.UserAgent = %q, want %q", got.UserAgent, "test-agent")
			}
		})
	}
}

func TestAuthenticate_RealTokens(t *testing.T) {
	db := testutil.TestMemoryDB(t)
	admin := createUser(t, db, "admin@barryland.test", model.RoleAdmin, true)
	issuer, err := auth.NewTokenIssuer(auth.TokenConfig{
		Secret:   "0123456789abcdefABCDEF!@#$%^&*()_+",
		Issuer:   "barryland",
		Audience: "barryland-api",
		TTL:      time.Hour,
	})
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	token, err := issuer.Issue(auth.Claims{UserID: admin.ID, Role: admin.Role})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	var got model.Actor
	var called bool
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	Authenticate(issuer, db, testutil.TestLoggerSilent())(captureActor(&got, &called)).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("Status = %d, want %d", rr.Code, http.StatusNoContent)
	}
	if !got.IsAdmin() || got.UserID != admin.ID {
		t.Errorf("actor = %+v, want admin %d", got, admin.ID)
	}
}

func TestRequireAuth(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	RequireAuth(next).ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("anonymous Status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}

	req = req.WithContext(WithActor(req.Context(), model.Actor{UserID: 3, Role: model.RoleParticular}))
	rr = httptest.NewRecorder()
	RequireAuth(next).ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("signed-in Status = %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestRequireAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mw := RequireAdmin(testutil.TestLoggerSilent())

	tests := []struct {
		name  string
		actor model.Actor
		want  int
	}{
		{"anonymous", model.Actor{}, http.StatusUnauthorized},
		{"particular", model.Actor{UserID: 2, Role: model.RoleParticular}, http.StatusForbidden},
		{"professional", model.Actor{UserID: 3, Role: model.RoleProfessional}, http.StatusForbidden},
		{"admin", model.Actor{UserID: 1, Role: model.RoleAdmin}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/dashboard", nil)
			req = req.WithContext(WithActor(req.Context(), tt.actor))
			rr := httptest.NewRecorder()
			mw(next).ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Errorf("Status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestActorFromContext_Empty(t *testing.T) {
	if got := ActorFromContext(context.Background()); got != (model.Actor{}) {
		t.Errorf("ActorFromContext() = %+v, want zero actor", got)
	}
}
