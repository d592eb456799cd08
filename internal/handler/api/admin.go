// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/saramoussaya/barryland/internal/middleware"
	"github.com/saramoussaya/barryland/internal/model"
	"github.com/saramoussaya/barryland/internal/service"
)

// ModerationRequest represents an admin decision about a listing.
type ModerationRequest struct {
	Status          string `json:"status" validate:"required,oneof=active rejected inactive"`
	RejectionReason string `json:"rejection_reason" validate:"max=1000"`
	ModerationNotes string `json:"moderation_notes" validate:"max=2000"`
	Featured        bool   `json:"featured"`
}

// SettingRequest represents the request body for updating a setting.
type SettingRequest struct {
	Value       string `json:"value" validate:"max=2000"`
	Description string `json:"description" validate:"max=500"`
}

// ModerateProperty handles PUT /api/v1/admin/properties/{id}/moderation.
func (h *Handler) ModerateProperty(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "property")
	if !ok {
		return
	}
	var req ModerationRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	prop, err := h.moderation.SetPropertyStatus(r.Context(), middleware.GetActor(r), id, service.ModerationInput{
		Status:          req.Status,
		RejectionReason: req.RejectionReason,
		ModerationNotes: req.ModerationNotes,
		Featured:        req.Featured,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, service.NewPropertyView(prop), nil)
}

// ModerationQueue handles GET /api/v1/admin/properties. Without a status
// query parameter it lists listings awaiting review.
func (h *Handler) ModerationQueue(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = model.PropertyStatusPending
	}

	page, err := h.properties.List(r.Context(), middleware.GetActor(r), service.ListFilter{
		Status: status,
		City:   r.URL.Query().Get("city"),
	}, pageFromQuery(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, service.NewPropertyViews(page.Items), pageMeta(page))
}

// Dashboard handles GET /api/v1/admin/dashboard.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.stats.Dashboard(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, dash, nil)
}

// ListAdminLogs handles GET /api/v1/admin/logs?admin_id=&action=.
func (h *Handler) ListAdminLogs(w http.ResponseWriter, r *http.Request) {
	page, err := h.audit.ListAdminLogs(r.Context(), service.AdminLogFilter{
		AdminID: queryInt64(r, "admin_id"),
		Action:  r.URL.Query().Get("action"),
	}, pageFromQuery(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, mapSlice(page.Items, adminLogResponse), pageMeta(page))
}

// ListActivity handles GET /api/v1/admin/activity?user_id=&action=.
func (h *Handler) ListActivity(w http.ResponseWriter, r *http.Request) {
	page, err := h.audit.ListActivity(r.Context(), service.ActivityFilter{
		UserID: queryInt64(r, "user_id"),
		Action: r.URL.Query().Get("action"),
	}, pageFromQuery(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, mapSlice(page.Items, activityResponse), pageMeta(page))
}

// ListEvents handles GET /api/v1/admin/events?level=&category=.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	page, err := h.audit.ListEvents(r.Context(), service.EventFilter{
		Level:    r.URL.Query().Get("level"),
		Category: r.URL.Query().Get("category"),
	}, pageFromQuery(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, mapSlice(page.Items, eventResponse), pageMeta(page))
}

// ListSettings handles GET /api/v1/admin/settings.
func (h *Handler) ListSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.List(r.Context(), middleware.GetActor(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, mapSlice(settings, settingResponse), nil)
}

// GetSetting handles GET /api/v1/admin/settings/{key}.
func (h *Handler) GetSetting(w http.ResponseWriter, r *http.Request) {
	setting, err := h.settings.Get(r.Context(), middleware.GetActor(r), chi.URLParam(r, "key"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, settingResponse(setting), nil)
}

// UpdateSetting handles PUT /api/v1/admin/settings/{key}.
func (h *Handler) UpdateSetting(w http.ResponseWriter, r *http.Request) {
	var req SettingRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	setting, err := h.settings.Update(r.Context(), middleware.GetActor(r), service.SettingInput{
		Key:         chi.URLParam(r, "key"),
		Value:       req.Value,
		Description: req.Description,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, settingResponse(setting), nil)
}

// ReconcileFavorites handles POST /api/v1/admin/reconcile.
func (h *Handler) ReconcileFavorites(w http.ResponseWriter, r *http.Request) {
	n, err := h.favorites.Reconcile(r.Context(), middleware.GetActor(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, map[string]int64{"corrected": n}, nil)
}
