// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/saramoussaya/barryland/internal/store"
	"github.com/saramoussaya/barryland/internal/util"
)

// ContactMessageResponse represents a contact message in API responses.
type ContactMessageResponse struct {
	ID          int64      `json:"id"`
	SenderID    *int64     `json:"sender_id,omitempty"`
	RecipientID *int64     `json:"recipient_id,omitempty"`
	PropertyID  *int64     `json:"property_id,omitempty"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone,omitempty"`
	Subject     string     `json:"subject,omitempty"`
	Message     string     `json:"message"`
	Status      string     `json:"status"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NotificationResponse represents a notification in API responses.
type NotificationResponse struct {
	ID        int64           `json:"id"`
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data,omitempty"`
	Link      string          `json:"link,omitempty"`
	IsRead    bool            `json:"is_read"`
	ReadAt    *time.Time      `json:"read_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// AdminLogResponse represents an admin log entry in API responses.
type AdminLogResponse struct {
	ID          int64           `json:"id"`
	AdminID     int64           `json:"admin_id"`
	Action      string          `json:"action"`
	TargetID    string          `json:"target_id,omitempty"`
	TargetType  string          `json:"target_type,omitempty"`
	Details     json.RawMessage `json:"details,omitempty"`
	IPAddress   string          `json:"ip_address,omitempty"`
	Browser     string          `json:"browser,omitempty"`
	OS          string          `json:"os,omitempty"`
	Device      string          `json:"device,omitempty"`
	CountryCode string          `json:"country_code,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ActivityResponse represents an activity log entry in API responses.
type ActivityResponse struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	Action      string          `json:"action"`
	Description string          `json:"description,omitempty"`
	TargetID    string          `json:"target_id,omitempty"`
	TargetType  string          `json:"target_type,omitempty"`
	Details     json.RawMessage `json:"details,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// EventResponse represents a system event in API responses.
type EventResponse struct {
	ID         int64           `json:"id"`
	Level      string          `json:"level"`
	Category   string          `json:"category"`
	Message    string          `json:"message"`
	UserID     *int64          `json:"user_id,omitempty"`
	IPAddress  string          `json:"ip_address,omitempty"`
	RequestURL string          `json:"request_url,omitempty"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// SettingResponse represents a system setting in API responses.
type SettingResponse struct {
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Description string    `json:"description,omitempty"`
	UpdatedBy   *int64    `json:"updated_by,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func int64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

// rawJSON passes stored JSON through, dropping empty or corrupt values.
func rawJSON(s string) json.RawMessage {
	if s == "" || s == "{}" || !json.Valid([]byte(s)) {
		return nil
	}
	return json.RawMessage(s)
}

func contactResponse(m store.ContactMessage) ContactMessageResponse {
	return ContactMessageResponse{
		ID:          m.ID,
		SenderID:    int64Ptr(m.SenderID),
		RecipientID: int64Ptr(m.RecipientID),
		PropertyID:  int64Ptr(m.PropertyID),
		Name:        m.Name,
		Email:       m.Email,
		Phone:       m.Phone,
		Subject:     m.Subject,
		Message:     m.Body,
		Status:      m.Status,
		ReadAt:      util.TimePtr(m.ReadAt),
		CreatedAt:   m.CreatedAt,
	}
}

func notificationResponse(n store.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Data:      rawJSON(n.Data),
		Link:      n.Link,
		IsRead:    n.IsRead,
		ReadAt:    util.TimePtr(n.ReadAt),
		CreatedAt: n.CreatedAt,
	}
}

func adminLogResponse(l store.AdminLog) AdminLogResponse {
	return AdminLogResponse{
		ID:          l.ID,
		AdminID:     l.AdminID,
		Action:      l.Action,
		TargetID:    l.TargetID,
		TargetType:  l.TargetType,
		Details:     rawJSON(l.Details),
		IPAddress:   l.IpAddress,
		Browser:     l.Browser,
		OS:          l.Os,
		Device:      l.Device,
		CountryCode: l.CountryCode,
		CreatedAt:   l.CreatedAt,
	}
}

func activityResponse(a store.ActivityLog) ActivityResponse {
	return ActivityResponse{
		ID:          a.ID,
		UserID:      a.UserID,
		Action:      a.Action,
		Description: a.Description,
		TargetID:    a.TargetID,
		TargetType:  a.TargetType,
		Details:     rawJSON(a.Details),
		CreatedAt:   a.CreatedAt,
	}
}

func eventResponse(e store.Event) EventResponse {
	return EventResponse{
		ID:         e.ID,
		Level:      e.Level,
		Category:   e.Category,
		Message:    e.Message,
		UserID:     int64Ptr(e.UserID),
		IPAddress:  e.IpAddress,
		RequestURL: e.RequestUrl,
		Metadata:   rawJSON(e.Metadata),
		CreatedAt:  e.CreatedAt,
	}
}

func settingResponse(s store.SystemSetting) SettingResponse {
	return SettingResponse{
		Key:         s.Key,
		Value:       s.Value,
		Description: s.Description,
		UpdatedBy:   int64Ptr(s.UpdatedBy),
		UpdatedAt:   s.UpdatedAt,
	}
}

// mapSlice converts every element of in with fn.
func mapSlice[T, R any](in []T, fn func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}
