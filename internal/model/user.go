// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain constants and small value types shared by
// the services, handlers and background jobs.
package model

// User roles.
const (
	RoleParticular   = "particular"
	RoleProfessional = "professional"
	RoleAdmin        = "admin"
)

// Roles lists every valid role.
var Roles = []string{RoleParticular, RoleProfessional, RoleAdmin}

// IsValidRole reports whether role is a known role.
func IsValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsSelfServiceRole reports whether a user may pick role at registration.
func IsSelfServiceRole(role string) bool {
	return role == RoleParticular || role == RoleProfessional
}

// Actor is an authenticated caller whose role has already been resolved.
type Actor struct {
	UserID    int64
	Role      string
	IP        string
	UserAgent string
}

// IsAdmin returns true if the actor has the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanManage reports whether the actor owns the resource or is an admin.
func (a Actor) CanManage(ownerID int64) bool {
	return a.IsAdmin() || (a.UserID != 0 && a.UserID == ownerID)
}
