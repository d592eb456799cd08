// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/saramoussaya/barryland/internal/model"
)

func TestSettings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	user := actorOf(f.user(t, "user@barryland.test", model.RoleProfessional))

	if _, err := f.settings.List(ctx, user); !errors.Is(err, ErrForbidden) {
		t.Errorf("List as user error = %v, want ErrForbidden", err)
	}
	if _, err := f.settings.Update(ctx, user, SettingInput{Key: "site_name", Value: "x"}); !errors.Is(err, ErrForbidden) {
		t.Errorf("Update as user error = %v, want ErrForbidden", err)
	}
	if _, err := f.settings.Update(ctx, admin, SettingInput{Key: "Bad Key", Value: "x"}); !errors.Is(err, ErrValidation) {
		t.Errorf("Update bad key error = %v, want ErrValidation", err)
	}
	if _, err := f.settings.Get(ctx, admin, "missing_key"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get missing error = %v, want ErrNotFound", err)
	}

	s, err := f.settings.Update(ctx, admin, SettingInput{Key: "site_name", Value: " Barryland ", Description: "Public name"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if s.Value != "Barryland" || s.Description != "Public name" {
		t.Errorf("Update = %+v", s)
	}
	if !s.UpdatedBy.Valid || s.UpdatedBy.Int64 != admin.UserID {
		t.Errorf("UpdatedBy = %v, want %d", s.UpdatedBy, admin.UserID)
	}

	// An empty description keeps the stored one.
	s, err = f.settings.Update(ctx, admin, SettingInput{Key: "site_name", Value: "Barryland TN"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if s.Description != "Public name" {
		t.Errorf("Description = %q, want %q", s.Description, "Public name")
	}

	all, err := f.settings.List(ctx, admin)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("List len = %d, want 1", len(all))
	}

	logs, err := f.audit.ListAdminLogs(ctx, AdminLogFilter{Action: model.AdminActionUpdateSetting}, Page{})
	if err != nil {
		t.Fatalf("ListAdminLogs: %v", err)
	}
	if logs.Total != 2 {
		t.Errorf("setting logs = %d, want 2", logs.Total)
	}
	if logs.Items[0].TargetID != "site_name" {
		t.Errorf("TargetID = %q, want site_name", logs.Items[0].TargetID)
	}
}
