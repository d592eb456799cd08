// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"testing"
	"time"
)

func TestActorIsAdmin(t *testing.T) {
	tests := []struct {
		name string
		role string
		want bool
	}{
		{name: "admin role", role: RoleAdmin, want: true},
		{name: "professional role", role: RoleProfessional, want: false},
		{name: "particular role", role: RoleParticular, want: false},
		{name: "empty role", role: "", want: false},
		{name: "Admin uppercase", role: "Admin", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Actor{UserID: 1, Role: tt.role}
			if got := a.IsAdmin(); got != tt.want {
				t.Errorf("IsAdmin() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestActorCanManage(t *testing.T) {
	owner := Actor{UserID: 7, Role: RoleParticular}
	if !owner.CanManage(7) {
		t.Error("owner should manage own resource")
	}
	if owner.CanManage(8) {
		t.Error("owner should not manage someone else's resource")
	}
	if (Actor{}).CanManage(0) {
		t.Error("anonymous actor should not manage an unowned resource")
	}
	if !(Actor{UserID: 1, Role: RoleAdmin}).CanManage(99) {
		t.Error("admin should manage any resource")
	}
}

func TestIsSelfServiceRole(t *testing.T) {
	if !IsSelfServiceRole(RoleParticular) || !IsSelfServiceRole(RoleProfessional) {
		t.Error("particular and professional should be self-service roles")
	}
	if IsSelfServiceRole(RoleAdmin) {
		t.Error("admin must not be a self-service role")
	}
}

func TestIsModerationStatus(t *testing.T) {
	valid := []string{PropertyStatusActive, PropertyStatusRejected, PropertyStatusInactive}
	for _, s := range valid {
		if !IsModerationStatus(s) {
			t.Errorf("IsModerationStatus(%q) = false, want true", s)
		}
	}
	invalid := []string{PropertyStatusPending, PropertyStatusSold, PropertyStatusRented, "", "ACTIVE"}
	for _, s := range invalid {
		if IsModerationStatus(s) {
			t.Errorf("IsModerationStatus(%q) = true, want false", s)
		}
	}
}

func TestListingExpired(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name      string
		expiresAt sql.NullTime
		want      bool
	}{
		{"missing", sql.NullTime{}, true},
		{"past", sql.NullTime{Time: now.Add(-time.Hour), Valid: true}, true},
		{"now", sql.NullTime{Time: now, Valid: true}, true},
		{"future", sql.NullTime{Time: now.Add(time.Hour), Valid: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ListingExpired(tt.expiresAt, now); got != tt.want {
				t.Errorf("ListingExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestModerationAction(t *testing.T) {
	tests := map[string]string{
		PropertyStatusActive:   AdminActionApproveProperty,
		PropertyStatusRejected: AdminActionRejectProperty,
		PropertyStatusInactive: AdminActionDeactivateProperty,
	}
	for status, want := range tests {
		if got := ModerationAction(status); got != want {
			t.Errorf("ModerationAction(%q) = %q, want %q", status, got, want)
		}
	}
}
