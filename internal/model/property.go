// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Listing statuses.
const (
	PropertyStatusPending  = "pending"
	PropertyStatusActive   = "active"
	PropertyStatusInactive = "inactive"
	PropertyStatusSold     = "sold"
	PropertyStatusRented   = "rented"
	PropertyStatusRejected = "rejected"
)

// Transaction types.
const (
	TransactionSale   = "sale"
	TransactionRental = "rental"
)

// Promotion priorities.
const (
	PriorityNormal   = "normal"
	PriorityFeatured = "featured"
	PriorityPremium  = "premium"
)

// DefaultListingTTL is how long a listing stays active after approval or renewal.
const DefaultListingTTL = 90 * 24 * time.Hour

// IsModerationStatus reports whether status is a valid moderation target.
func IsModerationStatus(status string) bool {
	switch status {
	case PropertyStatusActive, PropertyStatusRejected, PropertyStatusInactive:
		return true
	}
	return false
}

// IsOwnerStatus reports whether an owner may set status on an active listing.
func IsOwnerStatus(status string) bool {
	return status == PropertyStatusSold || status == PropertyStatusRented
}

// IsValidTransactionType reports whether t is sale or rental.
func IsValidTransactionType(t string) bool {
	return t == TransactionSale || t == TransactionRental
}

// IsValidPriority reports whether p is a known priority.
func IsValidPriority(p string) bool {
	switch p {
	case PriorityNormal, PriorityFeatured, PriorityPremium:
		return true
	}
	return false
}

// ListingExpired reports whether an expiry is missing or in the past at now.
func ListingExpired(expiresAt sql.NullTime, now time.Time) bool {
	return !expiresAt.Valid || !expiresAt.Time.After(now)
}
