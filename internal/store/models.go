// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"time"
)

type ActivityLog struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	TargetID    string    `json:"target_id"`
	TargetType  string    `json:"target_type"`
	Details     string    `json:"details"`
	CreatedAt   time.Time `json:"created_at"`
}

type AdminLog struct {
	ID          int64     `json:"id"`
	AdminID     int64     `json:"admin_id"`
	Action      string    `json:"action"`
	TargetID    string    `json:"target_id"`
	TargetType  string    `json:"target_type"`
	Details     string    `json:"details"`
	IpAddress   string    `json:"ip_address"`
	UserAgent   string    `json:"user_agent"`
	Browser     string    `json:"browser"`
	Os          string    `json:"os"`
	Device      string    `json:"device"`
	CountryCode string    `json:"country_code"`
	CreatedAt   time.Time `json:"created_at"`
}

type ContactMessage struct {
	ID          int64         `json:"id"`
	SenderID    sql.NullInt64 `json:"sender_id"`
	RecipientID sql.NullInt64 `json:"recipient_id"`
	PropertyID  sql.NullInt64 `json:"property_id"`
	Name        string        `json:"name"`
	Email       string        `json:"email"`
	Phone       string        `json:"phone"`
	Subject     string        `json:"subject"`
	Body        string        `json:"body"`
	Status      string        `json:"status"`
	ReadAt      sql.NullTime  `json:"read_at"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type Event struct {
	ID         int64         `json:"id"`
	Level      string        `json:"level"`
	Category   string        `json:"category"`
	Message    string        `json:"message"`
	UserID     sql.NullInt64 `json:"user_id"`
	IpAddress  string        `json:"ip_address"`
	RequestUrl string        `json:"request_url"`
	Metadata   string        `json:"metadata"`
	CreatedAt  time.Time     `json:"created_at"`
}

type Notification struct {
	ID        int64        `json:"id"`
	UserID    int64        `json:"user_id"`
	Type      string       `json:"type"`
	Title     string       `json:"title"`
	Message   string       `json:"message"`
	Data      string       `json:"data"`
	Link      string       `json:"link"`
	IsRead    bool         `json:"is_read"`
	ReadAt    sql.NullTime `json:"read_at"`
	CreatedAt time.Time    `json:"created_at"`
}

type Property struct {
	ID              int64           `json:"id"`
	OwnerID         int64           `json:"owner_id"`
	Title           string          `json:"title"`
	Slug            string          `json:"slug"`
	Description     string          `json:"description"`
	TransactionType string          `json:"transaction_type"`
	PropertyType    string          `json:"property_type"`
	Category        string          `json:"category"`
	Price           float64         `json:"price"`
	Area            float64         `json:"area"`
	Bedrooms        int64           `json:"bedrooms"`
	Bathrooms       int64           `json:"bathrooms"`
	Address         string          `json:"address"`
	City            string          `json:"city"`
	Region          string          `json:"region"`
	Latitude        sql.NullFloat64 `json:"latitude"`
	Longitude       sql.NullFloat64 `json:"longitude"`
	Status          string          `json:"status"`
	ModeratedBy     sql.NullInt64   `json:"moderated_by"`
	ModeratedAt     sql.NullTime    `json:"moderated_at"`
	RejectionReason string          `json:"rejection_reason"`
	ModerationNotes string          `json:"moderation_notes"`
	Priority        string          `json:"priority"`
	IsPromoted      bool            `json:"is_promoted"`
	IsFeatured      bool            `json:"is_featured"`
	IsApproved      bool            `json:"is_approved"`
	Views           int64           `json:"views"`
	FavoritesCount  int64           `json:"favorites_count"`
	PublishedAt     sql.NullTime    `json:"published_at"`
	ExpiresAt       sql.NullTime    `json:"expires_at"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type PropertyMedium struct {
	ID         int64     `json:"id"`
	PropertyID int64     `json:"property_id"`
	StorageKey string    `json:"storage_key"`
	Filename   string    `json:"filename"`
	MimeType   string    `json:"mime_type"`
	Size       int64     `json:"size"`
	Position   int64     `json:"position"`
	CreatedAt  time.Time `json:"created_at"`
}

type SystemSetting struct {
	Key         string        `json:"key"`
	Value       string        `json:"value"`
	Description string        `json:"description"`
	UpdatedBy   sql.NullInt64 `json:"updated_by"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type User struct {
	ID                 int64          `json:"id"`
	Email              string         `json:"email"`
	Phone              sql.NullString `json:"phone"`
	PasswordHash       string         `json:"password_hash"`
	FirstName          string         `json:"first_name"`
	LastName           string         `json:"last_name"`
	Role               string         `json:"role"`
	IsActive           bool           `json:"is_active"`
	IsVerified         bool           `json:"is_verified"`
	LoginAttempts      int64          `json:"login_attempts"`
	LockedUntil        sql.NullTime   `json:"locked_until"`
	LastLoginAt        sql.NullTime   `json:"last_login_at"`
	EmailNotifications sql.NullBool   `json:"email_notifications"`
	ResetCodeHash      string         `json:"reset_code_hash"`
	ResetCodeExpiresAt sql.NullTime   `json:"reset_code_expires_at"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

type UserFavorite struct {
	UserID     int64     `json:"user_id"`
	PropertyID int64     `json:"property_id"`
	CreatedAt  time.Time `json:"created_at"`
}
