// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/saramoussaya/barryland/internal/cache"
	"github.com/saramoussaya/barryland/internal/model"
	"github.com/saramoussaya/barryland/internal/store"
)

const (
	dashboardCacheKey = "dashboard:snapshot"
	breakdownLimit    = 10
	featuredLimit     = 50
)

// Windows are counts over the trailing 7 and 30 days.
type Windows struct {
	Last7Days  int64 `json:"last_7_days"`
	Last30Days int64 `json:"last_30_days"`
}

// UserStats summarises the user base.
type UserStats struct {
	Total  int64              `json:"total"`
	Active int64              `json:"active"`
	New    Windows            `json:"new"`
	Seen   Windows            `json:"seen"`
	ByRole []store.GroupCount `json:"by_role"`
}

// PropertyStats summarises listings.
type PropertyStats struct {
	Total      int64              `json:"total"`
	Active     int64              `json:"active"`
	Pending    int64              `json:"pending"`
	New        Windows            `json:"new"`
	Published  Windows            `json:"published"`
	ByStatus   []store.GroupCount `json:"by_status"`
	ByType     []store.GroupCount `json:"by_type"`
	ByCategory []store.GroupCount `json:"by_category"`
	ByCity     []store.GroupCount `json:"by_city"`
	TotalViews int64              `json:"total_views"`
}

// FeaturedStats lists active featured listings.
type FeaturedStats struct {
	Total      int64              `json:"total"`
	ByPriority []store.GroupCount `json:"by_priority"`
	Listings   []PropertyView     `json:"listings"`
}

// Dashboard is a point-in-time admin snapshot.
type Dashboard struct {
	AsOf             time.Time        `json:"as_of"`
	Users            UserStats        `json:"users"`
	Properties       PropertyStats    `json:"properties"`
	Featured         FeaturedStats    `json:"featured"`
	RecentAdminLogs  []store.AdminLog `json:"recent_admin_logs"`
	RecentProperties []PropertyView   `json:"recent_properties"`
	RecentUsers      []UserView       `json:"recent_users"`
}

// StatsService computes the admin dashboard. It only reads.
type StatsService struct {
	queries *store.Queries
	cache   *cache.TypedCache[Dashboard]
	recent  int64
	logger  *slog.Logger
	now     func() time.Time
}

// NewStatsService creates a StatsService. Snapshots are cached in c for
// ttl; recent is the length of the recent-items lists.
func NewStatsService(db *sql.DB, c cache.Cacher, ttl time.Duration, recent int, logger *slog.Logger) *StatsService {
	if recent <= 0 {
		recent = 10
	}
	return &StatsService{
		queries: store.New(db),
		cache:   cache.NewTypedCache[Dashboard](c, ttl),
		recent:  int64(recent),
		logger:  logger,
		now:     time.Now,
	}
}

// Dashboard returns the current snapshot, from cache when fresh.
func (s *StatsService) Dashboard(ctx context.Context) (*Dashboard, error) {
	return s.cache.GetOrSet(ctx, dashboardCacheKey, func() (*Dashboard, error) {
		return s.ComputeDashboard(ctx, s.now())
	})
}

// Invalidate drops the cached snapshot. Failures only cost freshness.
func (s *StatsService) Invalidate(ctx context.Context) {
	if s == nil {
		return
	}
	if err := s.cache.Delete(ctx, dashboardCacheKey); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", "category", model.EventCategoryCache, "error", err)
	}
}

// ComputeDashboard aggregates users and listings as of asOf. Empty tables
// give zero counts and empty lists.
func (s *StatsService) ComputeDashboard(ctx context.Context, asOf time.Time) (*Dashboard, error) {
	asOf = asOf.UTC()
	since7 := asOf.Add(-7 * 24 * time.Hour)
	since30 := asOf.Add(-30 * 24 * time.Hour)

	d := &Dashboard{AsOf: asOf}
	q := s.queries
	var err error

	// counts runs each query in order and stops at the first failure.
	counts := []struct {
		dst *int64
		fn  func() (int64, error)
	}{
		{&d.Users.Total, func() (int64, error) { return q.CountUsers(ctx) }},
		{&d.Users.Active, func() (int64, error) { return q.CountActiveUsers(ctx) }},
		{&d.Users.New.Last7Days, func() (int64, error) {
			return q.CountUsersCreatedSince(ctx, store.CountUsersCreatedSinceParams{Since: since7, Until: asOf})
		}},
		{&d.Users.New.Last30Days, func() (int64, error) {
			return q.CountUsersCreatedSince(ctx, store.CountUsersCreatedSinceParams{Since: since30, Until: asOf})
		}},
		{&d.Users.Seen.Last7Days, func() (int64, error) {
			return q.CountUsersActiveSince(ctx, store.CountUsersActiveSinceParams{Since: since7, Until: asOf})
		}},
		{&d.Users.Seen.Last30Days, func() (int64, error) {
			return q.CountUsersActiveSince(ctx, store.CountUsersActiveSinceParams{Since: since30, Until: asOf})
		}},
		{&d.Properties.Total, func() (int64, error) { return q.CountProperties(ctx) }},
		{&d.Properties.Active, func() (int64, error) {
			return q.CountPropertiesByStatusValue(ctx, model.PropertyStatusActive)
		}},
		{&d.Properties.Pending, func() (int64, error) {
			return q.CountPropertiesByStatusValue(ctx, model.PropertyStatusPending)
		}},
		{&d.Properties.New.Last7Days, func() (int64, error) {
			return q.CountPropertiesCreatedBetween(ctx, store.CountPropertiesCreatedBetweenParams{Since: since7, Until: asOf})
		}},
		{&d.Properties.New.Last30Days, func() (int64, error) {
			return q.CountPropertiesCreatedBetween(ctx, store.CountPropertiesCreatedBetweenParams{Since: since30, Until: asOf})
		}},
		{&d.Properties.Published.Last7Days, func() (int64, error) {
			return q.CountPropertiesPublishedBetween(ctx, store.CountPropertiesPublishedBetweenParams{Since: since7, Until: asOf})
		}},
		{&d.Properties.Published.Last30Days, func() (int64, error) {
			return q.CountPropertiesPublishedBetween(ctx, store.CountPropertiesPublishedBetweenParams{Since: since30, Until: asOf})
		}},
		{&d.Properties.TotalViews, func() (int64, error) { return q.SumPropertyViews(ctx) }},
	}
	for _, c := range counts {
		if *c.dst, err = c.fn(); err != nil {
			return nil, storeErr("compute dashboard", "dashboard", err)
		}
	}

	roles, err := q.CountUsersByRole(ctx)
	if err != nil {
		return nil, storeErr("count users by role", "dashboard", err)
	}
	d.Users.ByRole = make([]store.GroupCount, 0, len(roles))
	for _, r := range roles {
		d.Users.ByRole = append(d.Users.ByRole, store.GroupCount{Key: r.Role, Count: r.Count})
	}

	breakdowns := []struct {
		dst *[]store.GroupCount
		fn  func() ([]store.GroupCount, error)
	}{
		{&d.Properties.ByStatus, func() ([]store.GroupCount, error) { return q.CountPropertiesGroupedByStatus(ctx) }},
		{&d.Properties.ByType, func() ([]store.GroupCount, error) { return q.TopPropertyTypes(ctx, breakdownLimit) }},
		{&d.Properties.ByCategory, func() ([]store.GroupCount, error) { return q.TopPropertyCategories(ctx, breakdownLimit) }},
		{&d.Properties.ByCity, func() ([]store.GroupCount, error) { return q.TopPropertyCities(ctx, breakdownLimit) }},
		{&d.Featured.ByPriority, func() ([]store.GroupCount, error) { return q.FeaturedByPriority(ctx) }},
	}
	for _, b := range breakdowns {
		if *b.dst, err = b.fn(); err != nil {
			return nil, storeErr("compute breakdown", "dashboard", err)
		}
	}
	for _, g := range d.Featured.ByPriority {
		d.Featured.Total += g.Count
	}

	featured, err := q.ListFeaturedProperties(ctx, featuredLimit)
	if err != nil {
		return nil, storeErr("list featured", "dashboard", err)
	}
	d.Featured.Listings = NewPropertyViews(featured)

	logs, err := q.ListAdminLogs(ctx, store.ListAdminLogsParams{Limit: s.recent})
	if err != nil {
		return nil, storeErr("list recent admin logs", "dashboard", err)
	}
	if logs == nil {
		logs = []store.AdminLog{}
	}
	d.RecentAdminLogs = logs

	props, err := q.ListRecentProperties(ctx, s.recent)
	if err != nil {
		return nil, storeErr("list recent properties", "dashboard", err)
	}
	d.RecentProperties = NewPropertyViews(props)

	users, err := q.ListRecentUsers(ctx, s.recent)
	if err != nil {
		return nil, storeErr("list recent users", "dashboard", err)
	}
	d.RecentUsers = NewUserViews(users)

	return d, nil
}
