// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/saramoussaya/barryland/internal/middleware"
	"github.com/saramoussaya/barryland/internal/service"
)

// ContactRequest represents a contact form submission. Older clients send
// the text as "body" or "msg"; "message" wins when several are present.
type ContactRequest struct {
	Name             string `json:"name" validate:"max=100"`
	Email            string `json:"email" validate:"max=254"`
	Phone            string `json:"phone" validate:"max=32"`
	Subject          string `json:"subject" validate:"max=200"`
	Message          string `json:"message"`
	Body             string `json:"body"`
	Msg              string `json:"msg"`
	PropertyID       int64  `json:"property_id" validate:"gte=0"`
	CaptchaToken     string `json:"captcha_token"`
	HCaptchaResponse string `json:"h-captcha-response"`
}

// ContactStatusRequest moves a message through new, read and processed.
type ContactStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new read processed"`
}

// SubmitContact handles POST /api/v1/contact.
func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	token := req.CaptchaToken
	if token == "" {
		token = req.HCaptchaResponse
	}

	msg, err := h.contact.Submit(r.Context(), middleware.GetActor(r), service.ContactInput{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Subject:      req.Subject,
		Message:      req.Message,
		Body:         req.Body,
		Msg:          req.Msg,
		PropertyID:   req.PropertyID,
		CaptchaToken: token,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteCreated(w, contactResponse(msg))
}

// ListContactMessages handles GET /api/v1/messages?status=new. Admins see
// every message, everyone else their own inbox.
func (h *Handler) ListContactMessages(w http.ResponseWriter, r *http.Request) {
	page, err := h.contact.List(r.Context(), middleware.GetActor(r), r.URL.Query().Get("status"), pageFromQuery(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, mapSlice(page.Items, contactResponse), pageMeta(page))
}

// GetContactMessage handles GET /api/v1/messages/{id}.
func (h *Handler) GetContactMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "message")
	if !ok {
		return
	}

	msg, err := h.contact.Get(r.Context(), middleware.GetActor(r), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, contactResponse(msg), nil)
}

// UpdateContactStatus handles PUT /api/v1/messages/{id}/status.
func (h *Handler) UpdateContactStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "message")
	if !ok {
		return
	}
	var req ContactStatusRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	msg, err := h.contact.UpdateStatus(r.Context(), middleware.GetActor(r), id, req.Status)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, contactResponse(msg), nil)
}
