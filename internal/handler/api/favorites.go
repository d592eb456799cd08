// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/saramoussaya/barryland/internal/middleware"
	"github.com/saramoussaya/barryland/internal/service"
)

// ToggleFavorite handles POST /api/v1/properties/{id}/favorite. Each call
// flips membership and returns the resulting state.
func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "property")
	if !ok {
		return
	}

	state, err := h.favorites.ToggleFavorite(r.Context(), middleware.GetActor(r).UserID, id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, state, nil)
}

// FavoriteState handles GET /api/v1/properties/{id}/favorite.
func (h *Handler) FavoriteState(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "property")
	if !ok {
		return
	}

	state, err := h.favorites.State(r.Context(), middleware.GetActor(r).UserID, id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, state, nil)
}

// ListFavorites handles GET /api/v1/users/me/favorites.
func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	props, err := h.favorites.ListFavorites(r.Context(), middleware.GetActor(r).UserID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, service.NewPropertyViews(props), nil)
}

// FavoriteIDs handles GET /api/v1/users/me/favorites/ids.
func (h *Handler) FavoriteIDs(w http.ResponseWriter, r *http.Request) {
	ids, err := h.favorites.FavoriteIDs(r.Context(), middleware.GetActor(r).UserID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, ids, nil)
}
