// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"time"

	"github.com/saramoussaya/barryland/internal/store"
	"github.com/saramoussaya/barryland/internal/util"
)

// UserView is the public shape of a user. Secrets never leave the store.
type UserView struct {
	ID                 int64      `json:"id"`
	Email              string     `json:"email"`
	Phone              string     `json:"phone,omitempty"`
	FirstName          string     `json:"first_name"`
	LastName           string     `json:"last_name"`
	Role               string     `json:"role"`
	IsActive           bool       `json:"is_active"`
	IsVerified         bool       `json:"is_verified"`
	EmailNotifications bool       `json:"email_notifications"`
	LastLoginAt        *time.Time `json:"last_login_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// NewUserView converts a stored user.
func NewUserView(u store.User) UserView {
	return UserView{
		ID:                 u.ID,
		Email:              u.Email,
		Phone:              u.Phone.String,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		Role:               u.Role,
		IsActive:           u.IsActive,
		IsVerified:         u.IsVerified,
		EmailNotifications: wantsEmail(u),
		LastLoginAt:        util.TimePtr(u.LastLoginAt),
		CreatedAt:          u.CreatedAt,
	}
}

// NewUserViews converts a slice of stored users.
func NewUserViews(users []store.User) []UserView {
	views := make([]UserView, 0, len(users))
	for _, u := range users {
		views = append(views, NewUserView(u))
	}
	return views
}

// PropertyView is the API shape of a listing.
type PropertyView struct {
	ID              int64      `json:"id"`
	OwnerID         int64      `json:"owner_id"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Description     string     `json:"description"`
	TransactionType string     `json:"transaction_type"`
	PropertyType    string     `json:"property_type"`
	Category        string     `json:"category,omitempty"`
	Price           float64    `json:"price"`
	Area            float64    `json:"area"`
	Bedrooms        int64      `json:"bedrooms"`
	Bathrooms       int64      `json:"bathrooms"`
	Address         string     `json:"address,omitempty"`
	City            string     `json:"city"`
	Region          string     `json:"region,omitempty"`
	Latitude        *float64   `json:"latitude,omitempty"`
	Longitude       *float64   `json:"longitude,omitempty"`
	Status          string     `json:"status"`
	ModeratedBy     *int64     `json:"moderated_by,omitempty"`
	ModeratedAt     *time.Time `json:"moderated_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	ModerationNotes string     `json:"moderation_notes,omitempty"`
	Priority        string     `json:"priority"`
	IsPromoted      bool       `json:"is_promoted"`
	IsFeatured      bool       `json:"is_featured"`
	IsApproved      bool       `json:"is_approved"`
	Views           int64      `json:"views"`
	FavoritesCount  int64      `json:"favorites_count"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// NewPropertyView converts a stored listing.
func NewPropertyView(p store.Property) PropertyView {
	v := PropertyView{
		ID:              p.ID,
		OwnerID:         p.OwnerID,
		Title:           p.Title,
		Slug:            p.Slug,
		Description:     p.Description,
		TransactionType: p.TransactionType,
		PropertyType:    p.PropertyType,
		Category:        p.Category,
		Price:           p.Price,
		Area:            p.Area,
		Bedrooms:        p.Bedrooms,
		Bathrooms:       p.Bathrooms,
		Address:         p.Address,
		City:            p.City,
		Region:          p.Region,
		Latitude:        util.Float64Ptr(p.Latitude),
		Longitude:       util.Float64Ptr(p.Longitude),
		Status:          p.Status,
		ModeratedAt:     util.TimePtr(p.ModeratedAt),
		RejectionReason: p.RejectionReason,
		ModerationNotes: p.ModerationNotes,
		Priority:        p.Priority,
		IsPromoted:      p.IsPromoted,
		IsFeatured:      p.IsFeatured,
		IsApproved:      p.IsApproved,
		Views:           p.Views,
		FavoritesCount:  p.FavoritesCount,
		PublishedAt:     util.TimePtr(p.PublishedAt),
		ExpiresAt:       util.TimePtr(p.ExpiresAt),
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	if p.ModeratedBy.Valid {
		id := p.ModeratedBy.Int64
		v.ModeratedBy = &id
	}
	return v
}

// NewPropertyViews converts a slice of stored listings.
func NewPropertyViews(props []store.Property) []PropertyView {
	views := make([]PropertyView, 0, len(props))
	for _, p := range props {
		views = append(views, NewPropertyView(p))
	}
	return views
}
