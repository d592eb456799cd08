// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/saramoussaya/barryland/internal/middleware"
	"github.com/saramoussaya/barryland/internal/service"
)

// UpdateProfileRequest represents the request body for editing the caller's profile.
type UpdateProfileRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
	Phone     string `json:"phone" validate:"max=32"`
}

// UpdatePreferencesRequest toggles email notifications.
type UpdatePreferencesRequest struct {
	EmailNotifications *bool `json:"email_notifications" validate:"required"`
}

// SetRoleRequest changes a user's role.
type SetRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=particular professional admin"`
}

// SetActiveRequest enables or disables an account.
type SetActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// Me handles GET /api/v1/users/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), middleware.GetActor(r).UserID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, user, nil)
}

// UpdateMe handles PATCH /api/v1/users/me.
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), middleware.GetActor(r), service.ProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, user, nil)
}

// UpdatePreferences handles PUT /api/v1/users/me/preferences.
func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var req UpdatePreferencesRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	user, err := h.users.UpdatePreferences(r.Context(), middleware.GetActor(r), *req.EmailNotifications)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, user, nil)
}

// ListUsers handles GET /api/v1/admin/users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, err := h.users.List(r.Context(), middleware.GetActor(r), pageFromQuery(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, page.Items, pageMeta(page))
}

// SetUserRole handles PUT /api/v1/admin/users/{id}/role.
func (h *Handler) SetUserRole(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "user")
	if !ok {
		return
	}
	var req SetRoleRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	user, err := h.users.SetRole(r.Context(), middleware.GetActor(r), id, req.Role)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, user, nil)
}

// SetUserActive handles PUT /api/v1/admin/users/{id}/active.
func (h *Handler) SetUserActive(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "user")
	if !ok {
		return
	}
	var req SetActiveRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	if err := h.users.SetActive(r.Context(), middleware.GetActor(r), id, *req.Active); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteUser handles DELETE /api/v1/admin/users/{id}.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "user")
	if !ok {
		return
	}

	if err := h.users.Delete(r.Context(), middleware.GetActor(r), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
