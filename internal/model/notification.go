// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Notification types.
const (
	NotificationPropertyApproved = "property_approved"
	NotificationPropertyRejected = "property_rejected"
	NotificationPropertyInactive = "property_inactive"
	NotificationPropertyExpired  = "property_expired"
	NotificationContactMessage   = "contact_message"
	NotificationAccount          = "account"
	NotificationSystem           = "system"
)

// Contact message statuses.
const (
	ContactStatusNew       = "new"
	ContactStatusRead      = "read"
	ContactStatusProcessed = "processed"
)

// IsValidContactStatus reports whether s is a known contact message status.
func IsValidContactStatus(s string) bool {
	switch s {
	case ContactStatusNew, ContactStatusRead, ContactStatusProcessed:
		return true
	}
	return false
}
