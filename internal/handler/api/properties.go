// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/saramoussaya/barryland/internal/middleware"
	"github.com/saramoussaya/barryland/internal/service"
	"github.com/saramoussaya/barryland/internal/storage"
)

// PropertyRequest represents the request body for creating or replacing a listing.
// The service sanitizes and re-validates every field; these tags reject
// obviously malformed payloads early.
type PropertyRequest struct {
	Title           string   `json:"title" validate:"required,max=200"`
	Description     string   `json:"description" validate:"max=20000"`
	TransactionType string   `json:"transaction_type" validate:"required"`
	PropertyType    string   `json:"property_type" validate:"required,max=50"`
	Category        string   `json:"category" validate:"max=50"`
	Price           float64  `json:"price" validate:"gte=0"`
	Area            float64  `json:"area" validate:"gte=0"`
	Bedrooms        int64    `json:"bedrooms" validate:"gte=0,lte=100"`
	Bathrooms       int64    `json:"bathrooms" validate:"gte=0,lte=100"`
	Address         string   `json:"address" validate:"max=300"`
	City            string   `json:"city" validate:"required,max=100"`
	Region          string   `json:"region" validate:"max=100"`
	Latitude        *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude       *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
}

func (req PropertyRequest) input() service.PropertyInput {
	return service.PropertyInput{
		Title:           req.Title,
		Description:     req.Description,
		TransactionType: req.TransactionType,
		PropertyType:    req.PropertyType,
		Category:        req.Category,
		Price:           req.Price,
		Area:            req.Area,
		Bedrooms:        req.Bedrooms,
		Bathrooms:       req.Bathrooms,
		Address:         req.Address,
		City:            req.City,
		Region:          req.Region,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
	}
}

// OwnerStatusRequest marks a listing sold or rented.
type OwnerStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=sold rented"`
}

// ListProperties handles GET /api/v1/properties.
// Query parameters: q, status, transaction_type, property_type, city,
// owner_id, min_price, max_price, featured, limit, offset.
func (h *Handler) ListProperties(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := service.ListFilter{
		Text:            q.Get("q"),
		Status:          q.Get("status"),
		TransactionType: q.Get("transaction_type"),
		PropertyType:    q.Get("property_type"),
		City:            q.Get("city"),
		OwnerID:         queryInt64(r, "owner_id"),
		MinPrice:        queryFloat(r, "min_price"),
		MaxPrice:        queryFloat(r, "max_price"),
		FeaturedOnly:    queryBool(r, "featured"),
	}

	page, err := h.properties.List(r.Context(), middleware.GetActor(r), filter, pageFromQuery(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, service.NewPropertyViews(page.Items), pageMeta(page))
}

// MyProperties handles GET /api/v1/users/me/properties.
func (h *Handler) MyProperties(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r)
	filter := service.ListFilter{
		OwnerID: actor.UserID,
		Status:  r.URL.Query().Get("status"),
	}

	page, err := h.properties.List(r.Context(), actor, filter, pageFromQuery(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, service.NewPropertyViews(page.Items), pageMeta(page))
}

// GetProperty handles GET /api/v1/properties/{id}.
func (h *Handler) GetProperty(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "property")
	if !ok {
		return
	}

	detail, err := h.properties.Get(r.Context(), middleware.GetActor(r), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, detail, nil)
}

// GetPropertyBySlug handles GET /api/v1/properties/slug/{slug}.
func (h *Handler) GetPropertyBySlug(w http.ResponseWriter, r *http.Request) {
	detail, err := h.properties.GetBySlug(r.Context(), middleware.GetActor(r), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, detail, nil)
}

// CreateProperty handles POST /api/v1/properties.
func (h *Handler) CreateProperty(w http.ResponseWriter, r *http.Request) {
	var req PropertyRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	prop, err := h.properties.Create(r.Context(), middleware.GetActor(r), req.input())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteCreated(w, service.NewPropertyView(prop))
}

// UpdateProperty handles PUT /api/v1/properties/{id}.
func (h *Handler) UpdateProperty(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "property")
	if !ok {
		return
	}
	var req PropertyRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	prop, err := h.properties.Update(r.Context(), middleware.GetActor(r), id, req.input())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, service.NewPropertyView(prop), nil)
}

// SetOwnerStatus handles PUT /api/v1/properties/{id}/status.
func (h *Handler) SetOwnerStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "property")
	if !ok {
		return
	}
	var req OwnerStatusRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	prop, err := h.properties.SetOwnerStatus(r.Context(), middleware.GetActor(r), id, req.Status)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, service.NewPropertyView(prop), nil)
}

// RenewProperty handles POST /api/v1/properties/{id}/renew.
func (h *Handler) RenewProperty(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "property")
	if !ok {
		return
	}

	prop, err := h.properties.Renew(r.Context(), middleware.GetActor(r), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, service.NewPropertyView(prop), nil)
}

// DeleteProperty handles DELETE /api/v1/properties/{id}.
func (h *Handler) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "property")
	if !ok {
		return
	}

	if err := h.properties.Delete(r.Context(), middleware.GetActor(r), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadMedia handles POST /api/v1/properties/{id}/media as a multipart
// form with a single "file" part.
func (h *Handler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "property")
	if !ok {
		return
	}

	// One extra megabyte leaves room for the multipart framing.
	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxUploadSize+1<<20)
	if err := r.ParseMultipartForm(storage.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteValidationError(w, map[string]string{"file": "file is too large"})
			return
		}
		WriteBadRequest(w, "Invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteValidationError(w, map[string]string{"file": "is required"})
		return
	}
	defer func() { _ = file.Close() }()

	media, err := h.properties.AddMedia(r.Context(), middleware.GetActor(r), id, header.Filename, file)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteCreated(w, media)
}
