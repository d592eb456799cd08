// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/saramoussaya/barryland/internal/auth"
	"github.com/saramoussaya/barryland/internal/cache"
	"github.com/saramoussaya/barryland/internal/captcha"
	"github.com/saramoussaya/barryland/internal/middleware"
	"github.com/saramoussaya/barryland/internal/model"
	"github.com/saramoussaya/barryland/internal/service"
	"github.com/saramoussaya/barryland/internal/storage"
	"github.com/saramoussaya/barryland/internal/store"
	"github.com/saramoussaya/barryland/internal/tasks"
	"github.com/saramoussaya/barryland/internal/testutil"
)

const testSecret = "Vb8nQ2xR5tY7uI9oP1aS3dF6gH4jK0lZ"

// testServer is the API mounted on an in-memory database with
// synchronous tasks.
type testServer struct {
	t      *testing.T
	db     *sql.DB
	q      *store.Queries
	tokens *auth.TokenIssuer
	mail   *testutil.MailRecorder
	router http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := testutil.TestMemoryDB(t)
	logger := testutil.TestLoggerSilent()
	runner := tasks.Inline{Logger: logger}
	mail := &testutil.MailRecorder{}
	index := &testutil.IndexRecorder{}

	mem := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = mem.Close() })

	tokens, err := auth.NewTokenIssuer(auth.TokenConfig{Secret: testSecret, TTL: time.Hour})
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}

	audit := service.NewAuditService(db, runner, nil, logger)
	notifications := service.NewNotificationService(db, mail, runner, "https://barryland.test", logger)
	stats := service.NewStatsService(db, mem, time.Minute, 5, logger)
	properties := service.NewPropertyService(db, service.PropertyDeps{
		Notifications: notifications,
		Audit:         audit,
		Stats:         stats,
		Blobs:         storage.NewLocal(t.TempDir(), "/uploads"),
		Indexer:       index,
		Runner:        runner,
		Logger:        logger,
	})
	svcs := Services{
		Users: service.NewUserService(db, service.UserDeps{
			Tokens:     tokens,
			Sender:     mail,
			Runner:     runner,
			Audit:      audit,
			Stats:      stats,
			Properties: properties,
			Logger:     logger,
		}),
		Properties: properties,
		Moderation: service.NewModerationService(db, service.ModerationDeps{
			Notifications: notifications,
			Audit:         audit,
			Stats:         stats,
			Sender:        mail,
			Indexer:       index,
			Runner:        runner,
			BaseURL:       "https://barryland.test",
			Logger:        logger,
		}),
		Favorites:     service.NewFavoriteService(db, audit, logger),
		Notifications: notifications,
		Contact: service.NewContactService(db, service.ContactDeps{
			Notifications: notifications,
			Audit:         audit,
			Captcha:       captcha.Disabled{},
			Sender:        mail,
			Runner:        runner,
			Logger:        logger,
		}),
		Settings: service.NewSettingsService(db, audit, logger),
		Audit:    audit,
		Stats:    stats,
	}

	h := NewHandler(svcs, logger)
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(tokens, db, logger))
	r.Mount("/api/v1", h.Routes(nil))

	return &testServer{
		t:      t,
		db:     db,
		q:      store.New(db),
		tokens: tokens,
		mail:   mail,
		router: r,
	}
}

// user inserts an account and returns it with a bearer token.
func (s *testServer) user(email, role string) (store.User, string) {
	s.t.Helper()
	now := time.Now().UTC()
	u, err := s.q.CreateUser(context.Background(), store.CreateUserParams{
		Email:        email,
		PasswordHash: "unused",
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		s.t.Fatalf("CreateUser(%s): %v", email, err)
	}
	token, err := s.tokens.Issue(auth.Claims{UserID: u.ID, Role: u.Role})
	if err != nil {
		s.t.Fatalf("Issue: %v", err)
	}
	return u, token
}

func (s *testServer) admin() (store.User, string) {
	s.t.Helper()
	return s.user("admin@barryland.test", model.RoleAdmin)
}

// do performs a request with an optional JSON body and bearer token.
func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			s.t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.RemoteAddr = "192.0.2.10:41234"
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// assertStatusCode checks that the response has the expected status code.
func assertStatusCode(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Fatalf("expected status %d, got %d: %s", expected, w.Code, w.Body.String())
	}
}

// assertErrorResponse unmarshals and validates an error response.
func assertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedCode string) middleware.APIError {
	t.Helper()
	var resp middleware.APIError
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Error.Code != expectedCode {
		t.Errorf("expected code %q, got %q", expectedCode, resp.Error.Code)
	}
	return resp
}

// decodeData unmarshals the data member of a success response.
func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) (T, *Meta) {
	t.Helper()
	var resp struct {
		Data T     `json:"data"`
		Meta *Meta `json:"meta"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return resp.Data, resp.Meta
}

func listingBody(title string) PropertyRequest {
	return PropertyRequest{
		Title:           title,
		Description:     "Sea view, renovated kitchen",
		TransactionType: model.TransactionSale,
		PropertyType:    "apartment",
		Category:        "residential",
		Price:           240000,
		Area:            88,
		Bedrooms:        3,
		Bathrooms:       2,
		Address:         "4 Avenue Habib Bourguiba",
		City:            "Sousse",
		Region:          "Sahel",
	}
}
