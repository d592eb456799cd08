// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, and request context handling.
package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/saramoussaya/barryland/internal/auth"
	"github.com/saramoussaya/barryland/internal/logging"
	"github.com/saramoussaya/barryland/internal/model"
	"github.com/saramoussaya/barryland/internal/store"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys for request data.
const (
	ContextKeyActor     ContextKey = "actor"
	ContextKeyRequestID ContextKey = "request_id"
)

// APIError represents a JSON error response for the API.
type APIError struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// WriteAPIError writes a JSON error response.
func WriteAPIError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	apiErr := APIError{}
	apiErr.Error.Code = code
	apiErr.Error.Message = message
	apiErr.Error.Details = details

	_ = json.NewEncoder(w).Encode(apiErr)
}

// TokenVerifier checks a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(raw string) (auth.Claims, error)
}

// Authenticate resolves the caller of every request into a model.Actor.
// Requests without an Authorization header continue as anonymous actors.
// A header that is present but malformed, expired, or names an unknown or
// disabled account is rejected with 401.
//
// The role is read from the database rather than the token so a role change
// or a disabled account takes effect before the token expires.
func Authenticate(tokens TokenVerifier, db *sql.DB, logger *slog.Logger) func(http.Handler) http.Handler {
	queries := store.New(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := model.Actor{
				IP:        ClientIP(r),
				UserAgent: r.UserAgent(),
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
				return
			}

			raw, ok := bearerToken(header)
			if !ok {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Invalid Authorization header format. Use: Bearer <token>", nil)
				return
			}

			claims, err := tokens.Verify(raw)
			if err != nil {
				if errors.Is(err, auth.ErrTokenExpired) {
					WriteAPIError(w, http.StatusUnauthorized, "token_expired", "Token has expired", nil)
					return
				}
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Invalid token", nil)
				return
			}

			user, err := queries.GetUserByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Account no longer exists", nil)
					return
				}
				logger.Error("failed to load token user", "error", err,
					logging.AttrCategory, model.EventCategoryAuth,
					logging.AttrUserID, claims.UserID)
				WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to authenticate request", nil)
				return
			}
			if !user.IsActive {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Account is disabled", nil)
				return
			}

			actor.UserID = user.ID
			actor.Role = user.Role
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	raw := strings.TrimSpace(parts[1])
	return raw, raw != ""
}

// WithActor returns a copy of ctx carrying the actor.
func WithActor(ctx context.Context, actor model.Actor) context.Context {
	return context.WithValue(ctx, ContextKeyActor, actor)
}

// ActorFromContext returns the actor stored in ctx, or an anonymous actor.
func ActorFromContext(ctx context.Context) model.Actor {
	actor, _ := ctx.Value(ContextKeyActor).(model.Actor)
	return actor
}

// GetActor retrieves the caller from the request context.
func GetActor(r *http.Request) model.Actor {
	return ActorFromContext(r.Context())
}

// RequireAuth rejects anonymous callers with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetActor(r).UserID == 0 {
			WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin creates middleware that requires the admin role. Denials are
// logged at WARN so they land in the system event log.
func RequireAdmin(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := GetActor(r)
			if actor.UserID == 0 {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
				return
			}
			if !actor.IsAdmin() {
				logger.Warn("access denied",
					logging.AttrCategory, model.EventCategoryAuth,
					logging.AttrUserID, actor.UserID,
					logging.AttrIP, actor.IP,
					logging.AttrRequestURL, r.URL.Path,
					"method", r.Method,
					"user_role", actor.Role,
				)
				WriteAPIError(w, http.StatusForbidden, "forbidden", "Admin access required", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
