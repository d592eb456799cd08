// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/saramoussaya/barryland/internal/middleware"
)

// Routes returns the /api/v1 router. The caller installs Authenticate
// before mounting it. authLimit guards the credential endpoints and may
// be nil.
func (h *Handler) Routes(authLimit func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/status", h.Status)

	r.Route("/auth", func(r chi.Router) {
		if authLimit != nil {
			r.Use(authLimit)
		}
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/password/forgot", h.ForgotPassword)
		r.Post("/password/reset", h.ResetPassword)
	})

	// Public reads; an authenticated caller may see more.
	r.Get("/properties", h.ListProperties)
	r.Get("/properties/slug/{slug}", h.GetPropertyBySlug)
	r.Get("/properties/{id}", h.GetProperty)
	r.Post("/contact", h.SubmitContact)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/users/me", h.Me)
		r.Patch("/users/me", h.UpdateMe)
		r.Put("/users/me/preferences", h.UpdatePreferences)
		r.Get("/users/me/properties", h.MyProperties)
		r.Get("/users/me/favorites", h.ListFavorites)
		r.Get("/users/me/favorites/ids", h.FavoriteIDs)

		r.Post("/properties", h.CreateProperty)
		r.Put("/properties/{id}", h.UpdateProperty)
		r.Delete("/properties/{id}", h.DeleteProperty)
		r.Put("/properties/{id}/status", h.SetOwnerStatus)
		r.Post("/properties/{id}/renew", h.RenewProperty)
		r.Post("/properties/{id}/media", h.UploadMedia)
		r.Get("/properties/{id}/favorite", h.FavoriteState)
		r.Post("/properties/{id}/favorite", h.ToggleFavorite)

		r.Get("/notifications", h.ListNotifications)
		r.Get("/notifications/unread-count", h.UnreadCount)
		r.Put("/notifications/read-all", h.MarkAllNotificationsRead)
		r.Put("/notifications/{id}/read", h.MarkNotificationRead)
		r.Delete("/notifications/{id}", h.DeleteNotification)

		r.Get("/messages", h.ListContactMessages)
		r.Get("/messages/{id}", h.GetContactMessage)
		r.Put("/messages/{id}/status", h.UpdateContactStatus)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdmin(h.logger))

		r.Get("/dashboard", h.Dashboard)

		r.Get("/properties", h.ModerationQueue)
		r.Put("/properties/{id}/moderation", h.ModerateProperty)
		r.Post("/reconcile", h.ReconcileFavorites)

		r.Get("/users", h.ListUsers)
		r.Put("/users/{id}/role", h.SetUserRole)
		r.Put("/users/{id}/active", h.SetUserActive)
		r.Delete("/users/{id}", h.DeleteUser)

		r.Get("/settings", h.ListSettings)
		r.Get("/settings/{key}", h.GetSetting)
		r.Put("/settings/{key}", h.UpdateSetting)

		r.Get("/logs", h.ListAdminLogs)
		r.Get("/activity", h.ListActivity)
		r.Get("/events", h.ListEvents)
	})

	return r
}
