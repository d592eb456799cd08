// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Default schedules for the maintenance jobs.
const (
	ExpireListingsSchedule     = "*/15 * * * *"
	ReconcileFavoritesSchedule = "0 * * * *"
	PurgeEventsSchedule        = "30 3 * * *"
	ReindexSearchSchedule      = "0 2 * * *"
	ReloadGeoIPSchedule        = "0 4 * * 0"
)

// ListingExpirer deactivates listings past their expiry date.
type ListingExpirer interface {
	ExpireListings(ctx context.Context) (int, error)
}

// CounterReconciler rebuilds denormalized favorites counters.
type CounterReconciler interface {
	ReconcileCounters(ctx context.Context) (int64, error)
}

// EventPurger deletes system events older than a cutoff.
type EventPurger interface {
	PurgeEvents(ctx context.Context, cutoff time.Time) (int64, error)
}

// SearchReindexer pushes active listings to the search index.
type SearchReindexer interface {
	Reindex(ctx context.Context) (int, error)
}

// GeoReloader reopens the GeoIP database after it is replaced on disk.
type GeoReloader interface {
	Reload() error
}

// Maintenance groups the collaborators of the maintenance jobs. Reindexer
// and Geo are optional.
type Maintenance struct {
	Listings       ListingExpirer
	Favorites      CounterReconciler
	Events         EventPurger
	Reindexer      SearchReindexer
	Geo            GeoReloader
	EventRetention time.Duration
	Logger         *slog.Logger
	Now            func() time.Time
}

// Jobs returns the maintenance jobs for the configured collaborators.
func (m Maintenance) Jobs() []Job {
	now := m.Now
	if now == nil {
		now = time.Now
	}
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}

	jobs := []Job{
		{
			Name:        "expire-listings",
			Description: "Deactivate active listings past their expiry date and notify owners",
			Schedule:    ExpireListingsSchedule,
			Run: func(ctx context.Context) error {
				n, err := m.Listings.ExpireListings(ctx)
				if err != nil {
					return err
				}
				if n > 0 {
					logger.Info("listings expired", "count", n)
				}
				return nil
			},
		},
		{
			Name:        "reconcile-favorites",
			Description: "Rebuild favorites counters from the membership table",
			Schedule:    ReconcileFavoritesSchedule,
			Run: func(ctx context.Context) error {
				n, err := m.Favorites.ReconcileCounters(ctx)
				if err != nil {
					return err
				}
				if n > 0 {
					logger.Warn("favorites counters corrected", "count", n)
				}
				return nil
			},
		},
		{
			Name:        "purge-events",
			Description: "Delete system events older than the retention window",
			Schedule:    PurgeEventsSchedule,
			Run: func(ctx context.Context) error {
				if m.EventRetention <= 0 {
					return nil
				}
				n, err := m.Events.PurgeEvents(ctx, now().UTC().Add(-m.EventRetention))
				if err != nil {
					return err
				}
				logger.Info("old events purged", "count", n, "retention", m.EventRetention)
				return nil
			},
		},
	}

	if m.Reindexer != nil {
		jobs = append(jobs, Job{
			Name:        "reindex-search",
			Description: "Push every active listing to the search index",
			Schedule:    ReindexSearchSchedule,
			Timeout:     30 * time.Minute,
			Run: func(ctx context.Context) error {
				n, err := m.Reindexer.Reindex(ctx)
				if err != nil {
					return err
				}
				logger.Info("search index rebuilt", "count", n)
				return nil
			},
		})
	}
	if m.Geo != nil {
		jobs = append(jobs, Job{
			Name:        "reload-geoip",
			Description: "Reopen the GeoIP database",
			Schedule:    ReloadGeoIPSchedule,
			Run: func(context.Context) error {
				return m.Geo.Reload()
			},
		})
	}
	return jobs
}

// Register adds every maintenance job to s.
func (m Maintenance) Register(s *Scheduler) error {
	for _, job := range m.Jobs() {
		if err := s.Add(job); err != nil {
			return err
		}
	}
	return nil
}
