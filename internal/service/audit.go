// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/mileusna/useragent"

	"github.com/saramoussaya/barryland/internal/geoip"
	"github.com/saramoussaya/barryland/internal/model"
	"github.com/saramoussaya/barryland/internal/store"
	"github.com/saramoussaya/barryland/internal/tasks"
)

// AdminAction describes one admin-initiated mutation.
type AdminAction struct {
	AdminID    int64
	Action     string
	TargetID   string
	TargetType string
	Details    map[string]any
	IP         string
	UserAgent  string
}

// Activity describes one non-admin user action.
type Activity struct {
	UserID      int64
	Action      string
	Description string
	TargetID    string
	TargetType  string
	Details     map[string]any
}

// AuditService appends admin and activity records. Writes run on the task
// runner and never report errors to the caller.
type AuditService struct {
	queries *store.Queries
	runner  tasks.Runner
	geo     *geoip.Lookup
	logger  *slog.Logger
	now     func() time.Time
}

// NewAuditService creates an AuditService. geo may be nil.
func NewAuditService(db *sql.DB, runner tasks.Runner, geo *geoip.Lookup, logger *slog.Logger) *AuditService {
	return &AuditService{
		queries: store.New(db),
		runner:  runner,
		geo:     geo,
		logger:  logger.With("category", model.EventCategoryTasks),
		now:     time.Now,
	}
}

// RecordAdminAction queues an admin log entry. The timestamp is taken now,
// not when the task runs.
func (s *AuditService) RecordAdminAction(a AdminAction) {
	params := store.CreateAdminLogParams{
		AdminID:    a.AdminID,
		Action:     a.Action,
		TargetID:   a.TargetID,
		TargetType: a.TargetType,
		Details:    detailsJSON(a.Details),
		IpAddress:  a.IP,
		UserAgent:  a.UserAgent,
		CreatedAt:  s.now().UTC(),
	}
	params.Browser, params.Os, params.Device = parseUserAgent(a.UserAgent)
	if a.IP != "" && s.geo != nil {
		params.CountryCode = s.geo.Country(a.IP)
	}

	s.runner.Submit("admin-log", func(ctx context.Context) error {
		_, err := s.queries.CreateAdminLog(ctx, params)
		return err
	})
}

// RecordActivity queues an activity log entry.
func (s *AuditService) RecordActivity(a Activity) {
	params := store.CreateActivityLogParams{
		UserID:      a.UserID,
		Action:      a.Action,
		Description: a.Description,
		TargetID:    a.TargetID,
		TargetType:  a.TargetType,
		Details:     detailsJSON(a.Details),
		CreatedAt:   s.now().UTC(),
	}

	s.runner.Submit("activity-log", func(ctx context.Context) error {
		_, err := s.queries.CreateActivityLog(ctx, params)
		return err
	})
}

// AdminLogFilter narrows ListAdminLogs. Zero values match everything.
type AdminLogFilter struct {
	AdminID int64
	Action  string
}

// ListAdminLogs returns admin log entries, newest first.
func (s *AuditService) ListAdminLogs(ctx context.Context, f AdminLogFilter, p Page) (Paged[store.AdminLog], error) {
	p = p.normalize()
	logs, err := s.queries.ListAdminLogs(ctx, store.ListAdminLogsParams{
		AdminID: f.AdminID,
		Action:  f.Action,
		Limit:   p.Limit,
		Offset:  p.Offset,
	})
	if err != nil {
		return Paged[store.AdminLog]{}, storeErr("list admin logs", "admin log", err)
	}
	total, err := s.queries.CountAdminLogs(ctx, store.CountAdminLogsParams{AdminID: f.AdminID, Action: f.Action})
	if err != nil {
		return Paged[store.AdminLog]{}, storeErr("count admin logs", "admin log", err)
	}
	return newPaged(logs, total, p), nil
}

// ActivityFilter narrows ListActivity. Zero values match everything.
type ActivityFilter struct {
	UserID int64
	Action string
}

// ListActivity returns activity log entries, newest first.
func (s *AuditService) ListActivity(ctx context.Context, f ActivityFilter, p Page) (Paged[store.ActivityLog], error) {
	p = p.normalize()
	logs, err := s.queries.ListActivityLogs(ctx, store.ListActivityLogsParams{
		UserID: f.UserID,
		Action: f.Action,
		Limit:  p.Limit,
		Offset: p.Offset,
	})
	if err != nil {
		return Paged[store.ActivityLog]{}, storeErr("list activity", "activity log", err)
	}
	total, err := s.queries.CountActivityLogs(ctx, store.CountActivityLogsParams{UserID: f.UserID, Action: f.Action})
	if err != nil {
		return Paged[store.ActivityLog]{}, storeErr("count activity", "activity log", err)
	}
	return newPaged(logs, total, p), nil
}

// EventFilter narrows ListEvents. Zero values match everything.
type EventFilter struct {
	Level    string
	Category string
}

// ListEvents returns persisted system events, newest first.
func (s *AuditService) ListEvents(ctx context.Context, f EventFilter, p Page) (Paged[store.Event], error) {
	p = p.normalize()
	events, err := s.queries.ListEvents(ctx, store.ListEventsParams{
		Level:    f.Level,
		Category: f.Category,
		Limit:    p.Limit,
		Offset:   p.Offset,
	})
	if err != nil {
		return Paged[store.Event]{}, storeErr("list events", "event", err)
	}
	total, err := s.queries.CountEvents(ctx, store.CountEventsParams{Level: f.Level, Category: f.Category})
	if err != nil {
		return Paged[store.Event]{}, storeErr("count events", "event", err)
	}
	return newPaged(events, total, p), nil
}

// PurgeEvents deletes system events created before cutoff.
func (s *AuditService) PurgeEvents(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := s.queries.DeleteEventsBefore(ctx, cutoff.UTC())
	if err != nil {
		return 0, storeErr("purge events", "event", err)
	}
	return n, nil
}

// parseUserAgent extracts browser, OS and device type from a user agent string.
func parseUserAgent(raw string) (browser, os, device string) {
	if raw == "" {
		return "", "", ""
	}
	ua := useragent.Parse(raw)

	browser, os = ua.Name, ua.OS
	if browser == "" {
		browser = "Unknown"
	}
	if os == "" {
		os = "Unknown"
	}

	switch {
	case ua.Mobile:
		device = "mobile"
	case ua.Tablet:
		device = "tablet"
	case ua.Bot:
		device = "bot"
	default:
		device = "desktop"
	}
	return browser, os, device
}

func detailsJSON(details map[string]any) string {
	if len(details) == 0 {
		return "{}"
	}
	b, err := json.Marshal(details)
	if err != nil {
		return "{}"
	}
	return string(b)
}
