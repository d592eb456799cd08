// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/saramoussaya/barryland/internal/model"
	"github.com/saramoussaya/barryland/internal/store"
	"github.com/saramoussaya/barryland/internal/util"
)

const maxSettingValue = 2000

var settingKeyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{1,63}$`)

// SettingInput is an admin update of one setting. An empty Description
// keeps the stored one.
type SettingInput struct {
	Key         string
	Value       string
	Description string
}

// SettingsService manages system key/value settings. Every operation is
// admin-only.
type SettingsService struct {
	queries *store.Queries
	audit   *AuditService
	logger  *slog.Logger
	now     func() time.Time
}

// NewSettingsService creates a SettingsService.
func NewSettingsService(db *sql.DB, audit *AuditService, logger *slog.Logger) *SettingsService {
	return &SettingsService{
		queries: store.New(db),
		audit:   audit,
		logger:  logger,
		now:     time.Now,
	}
}

// List returns all settings ordered by key.
func (s *SettingsService) List(ctx context.Context, actor model.Actor) ([]store.SystemSetting, error) {
	if !actor.IsAdmin() {
		return nil, forbidden("settings are restricted to admins")
	}
	items, err := s.queries.ListSettings(ctx)
	if err != nil {
		return nil, storeErr("list settings", "setting", err)
	}
	return items, nil
}

// Get returns one setting.
func (s *SettingsService) Get(ctx context.Context, actor model.Actor, key string) (store.SystemSetting, error) {
	if !actor.IsAdmin() {
		return store.SystemSetting{}, forbidden("settings are restricted to admins")
	}
	setting, err := s.queries.GetSetting(ctx, key)
	if err != nil {
		return store.SystemSetting{}, storeErr("load setting", "setting", err)
	}
	return setting, nil
}

// Update creates or replaces a setting and records the change.
func (s *SettingsService) Update(ctx context.Context, actor model.Actor, in SettingInput) (store.SystemSetting, error) {
	if !actor.IsAdmin() {
		return store.SystemSetting{}, forbidden("settings are restricted to admins")
	}

	in.Key = strings.TrimSpace(in.Key)
	in.Value = strings.TrimSpace(in.Value)
	in.Description = sanitizePlain(in.Description)

	verr := &ValidationError{}
	if !settingKeyPattern.MatchString(in.Key) {
		verr.Add("key", "must be lowercase letters, digits and underscores")
	}
	if len(in.Value) > maxSettingValue {
		verr.Add("value", "is too long")
	}
	if err := verr.OrNil(); err != nil {
		return store.SystemSetting{}, err
	}

	previous := ""
	if old, err := s.queries.GetSetting(ctx, in.Key); err == nil {
		previous = old.Value
	}

	setting, err := s.queries.UpsertSetting(ctx, store.UpsertSettingParams{
		Key:         in.Key,
		Value:       in.Value,
		Description: in.Description,
		UpdatedBy:   util.NullInt64Positive(actor.UserID),
		UpdatedAt:   s.now().UTC(),
	})
	if err != nil {
		return store.SystemSetting{}, storeErr("update setting", "setting", err)
	}

	s.logger.Info("setting updated", "category", model.EventCategorySystem,
		"key", in.Key, "admin_id", actor.UserID)
	s.audit.RecordAdminAction(AdminAction{
		AdminID:    actor.UserID,
		Action:     model.AdminActionUpdateSetting,
		TargetID:   in.Key,
		TargetType: model.TargetSetting,
		Details:    map[string]any{"previous_value": previous, "value": in.Value},
		IP:         actor.IP,
		UserAgent:  actor.UserAgent,
	})
	return setting, nil
}
