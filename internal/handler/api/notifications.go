// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/saramoussaya/barryland/internal/middleware"
)

// ListNotifications handles GET /api/v1/notifications?unread=true.
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	page, err := h.notifications.List(r.Context(), middleware.GetActor(r).UserID, queryBool(r, "unread"), pageFromQuery(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, mapSlice(page.Items, notificationResponse), pageMeta(page))
}

// UnreadCount handles GET /api/v1/notifications/unread-count.
func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.notifications.UnreadCount(r.Context(), middleware.GetActor(r).UserID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, map[string]int64{"unread": n}, nil)
}

// MarkNotificationRead handles PUT /api/v1/notifications/{id}/read.
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "notification")
	if !ok {
		return
	}

	if err := h.notifications.MarkRead(r.Context(), middleware.GetActor(r).UserID, id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkAllNotificationsRead handles PUT /api/v1/notifications/read-all.
func (h *Handler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.notifications.MarkAllRead(r.Context(), middleware.GetActor(r).UserID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, map[string]int64{"updated": n}, nil)
}

// DeleteNotification handles DELETE /api/v1/notifications/{id}.
func (h *Handler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "notification")
	if !ok {
		return
	}

	if err := h.notifications.Delete(r.Context(), middleware.GetActor(r).UserID, id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
