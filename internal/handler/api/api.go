// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the JSON REST API handlers.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/saramoussaya/barryland/internal/logging"
	"github.com/saramoussaya/barryland/internal/middleware"
	"github.com/saramoussaya/barryland/internal/service"
)

// maxBodySize bounds JSON request bodies.
const maxBodySize = 1 << 20

// Services groups the application services the API exposes.
type Services struct {
	Users         *service.UserService
	Properties    *service.PropertyService
	Moderation    *service.ModerationService
	Favorites     *service.FavoriteService
	Notifications *service.NotificationService
	Contact       *service.ContactService
	Settings      *service.SettingsService
	Audit         *service.AuditService
	Stats         *service.StatsService
}

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	users         *service.UserService
	properties    *service.PropertyService
	moderation    *service.ModerationService
	favorites     *service.FavoriteService
	notifications *service.NotificationService
	contact       *service.ContactService
	settings      *service.SettingsService
	audit         *service.AuditService
	stats         *service.StatsService
	validate      *validator.Validate
	logger        *slog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(s Services, logger *slog.Logger) *Handler {
	return &Handler{
		users:         s.Users,
		properties:    s.Properties,
		moderation:    s.Moderation,
		favorites:     s.Favorites,
		notifications: s.Notifications,
		contact:       s.Contact,
		settings:      s.Settings,
		audit:         s.Audit,
		stats:         s.Stats,
		validate:      newValidator(),
		logger:        logger,
	}
}

// newValidator reports fields under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Response is the standard API response wrapper.
type Response struct {
	Data any   `json:"data,omitempty"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta contains pagination metadata.
type Meta struct {
	Total  int64 `json:"total"`
	Limit  int64 `json:"limit"`
	Offset int64 `json:"offset"`
}

func pageMeta[T any](p service.Paged[T]) *Meta {
	return &Meta{Total: p.Total, Limit: p.Limit, Offset: p.Offset}
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any, meta *Meta) {
	WriteJSON(w, http.StatusOK, Response{Data: data, Meta: meta})
}

// WriteCreated writes a 201 Created JSON response.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	middleware.WriteAPIError(w, statusCode, code, message, details)
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message, nil)
}

// WriteValidationError writes a 422 Unprocessable Entity response with field errors.
func WriteValidationError(w http.ResponseWriter, fieldErrors map[string]string) {
	WriteError(w, http.StatusUnprocessableEntity, "validation_error", "Validation failed", fieldErrors)
}

// writeServiceError maps the service error classes onto HTTP responses.
// Persistence failures are logged and reported without detail.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		WriteValidationError(w, verr.Fields)
	case errors.Is(err, service.ErrValidation):
		WriteError(w, http.StatusUnprocessableEntity, "validation_error", err.Error(), nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		WriteError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password", nil)
	case errors.Is(err, service.ErrAccountLocked):
		WriteError(w, http.StatusForbidden, "account_locked", "Too many failed attempts. Try again later.", nil)
	case errors.Is(err, service.ErrUnauthorized):
		WriteError(w, http.StatusUnauthorized, "unauthorized", err.Error(), nil)
	case errors.Is(err, service.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not_found", capitalizeFirst(err.Error()), nil)
	case errors.Is(err, service.ErrForbidden):
		WriteError(w, http.StatusForbidden, "forbidden", capitalizeFirst(err.Error()), nil)
	case errors.Is(err, service.ErrConflict):
		WriteError(w, http.StatusConflict, "conflict", capitalizeFirst(err.Error()), nil)
	default:
		attrs := []any{
			"error", err,
			"method", r.Method,
			logging.AttrRequestURL, r.URL.Path,
			logging.AttrIP, middleware.ClientIP(r),
			"request_id", middleware.GetRequestID(r.Context()),
		}
		if actor := middleware.GetActor(r); actor.UserID != 0 {
			attrs = append(attrs, logging.AttrUserID, actor.UserID)
		}
		h.logger.Error("request failed", attrs...)
		WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error", nil)
	}
}

// decodeJSON reads a JSON body into dst and validates it. It writes the
// error response itself and returns false when the request is unusable.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			WriteBadRequest(w, "Request body is empty")
			return false
		}
		WriteBadRequest(w, "Invalid JSON body")
		return false
	}
	return h.validateStruct(w, dst)
}

func (h *Handler) validateStruct(w http.ResponseWriter, dst any) bool {
	err := h.validate.Struct(dst)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		WriteBadRequest(w, "Invalid request")
		return false
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = validationMessage(fe)
	}
	WriteValidationError(w, fields)
	return false
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "len":
		return "must be exactly " + fe.Param() + " characters"
	case "numeric":
		return "must be numeric"
	default:
		return "is invalid"
	}
}

// parseIDParam parses a positive int64 route parameter.
func parseIDParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// requireID parses the {id} route parameter or writes a 400 response.
func requireID(w http.ResponseWriter, r *http.Request, entityName string) (int64, bool) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		WriteBadRequest(w, "Invalid "+entityName+" ID")
	}
	return id, ok
}

// pageFromQuery reads limit/offset, falling back to page/per_page.
func pageFromQuery(r *http.Request) service.Page {
	q := r.URL.Query()
	var p service.Page
	p.Limit, _ = strconv.ParseInt(q.Get("limit"), 10, 64)
	if p.Limit == 0 {
		p.Limit, _ = strconv.ParseInt(q.Get("per_page"), 10, 64)
	}
	if p.Limit <= 0 {
		p.Limit = service.DefaultPageSize
	}
	if p.Limit > service.MaxPageSize {
		p.Limit = service.MaxPageSize
	}
	p.Offset, _ = strconv.ParseInt(q.Get("offset"), 10, 64)
	if page, err := strconv.ParseInt(q.Get("page"), 10, 64); err == nil && page > 1 && p.Offset == 0 {
		p.Offset = (page - 1) * p.Limit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

func queryInt64(r *http.Request, key string) int64 {
	v, _ := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	return v
}

func queryFloat(r *http.Request, key string) float64 {
	v, _ := strconv.ParseFloat(r.URL.Query().Get(key), 64)
	return v
}

func queryBool(r *http.Request, key string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return v
}

// capitalizeFirst returns s with the first letter capitalized.
func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Status returns the API status.
func (h *Handler) Status(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, map[string]string{"status": "ok", "version": "v1"}, nil)
}
