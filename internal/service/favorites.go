// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/saramoussaya/barryland/internal/model"
	"github.com/saramoussaya/barryland/internal/store"
)

// FavoriteState is the membership and counter after a toggle.
type FavoriteState struct {
	PropertyID     int64 `json:"property_id"`
	IsFavorite     bool  `json:"is_favorite"`
	FavoritesCount int64 `json:"favorites_count"`
}

// FavoriteService maintains the user/property favorite relation and the
// per-listing counter.
//
// Membership and counter are two separate statements. A reader between
// them can see a counter off by one; ReconcileCounters repairs any drift
// from the membership table.
type FavoriteService struct {
	queries *store.Queries
	audit   *AuditService
	logger  *slog.Logger
	now     func() time.Time
}

// NewFavoriteService creates a FavoriteService.
func NewFavoriteService(db *sql.DB, audit *AuditService, logger *slog.Logger) *FavoriteService {
	return &FavoriteService{
		queries: store.New(db),
		audit:   audit,
		logger:  logger,
		now:     time.Now,
	}
}

// ToggleFavorite adds the listing to the user's favorites or removes it,
// and returns the state read back after the change. The counter only moves
// when membership actually changed.
func (s *FavoriteService) ToggleFavorite(ctx context.Context, userID, propertyID int64) (FavoriteState, error) {
	verr := &ValidationError{}
	if userID <= 0 {
		verr.Add("user_id", "is required")
	}
	if propertyID <= 0 {
		verr.Add("property_id", "is required")
	}
	if err := verr.OrNil(); err != nil {
		return FavoriteState{}, err
	}

	prop, err := s.queries.GetPropertyByID(ctx, propertyID)
	if err != nil {
		return FavoriteState{}, storeErr("load property", "property", err)
	}

	member, err := s.queries.IsFavorite(ctx, store.IsFavoriteParams{UserID: userID, PropertyID: propertyID})
	if err != nil {
		return FavoriteState{}, storeErr("check favorite", "favorite", err)
	}
	// Hidden listings can be removed from favorites but not added.
	if !member && prop.Status != model.PropertyStatusActive && prop.OwnerID != userID {
		return FavoriteState{}, fmt.Errorf("property %w", ErrNotFound)
	}

	action := model.ActivityFavoriteAdd
	if member {
		action = model.ActivityFavoriteRemove
		removed, err := s.queries.RemoveFavorite(ctx, store.RemoveFavoriteParams{UserID: userID, PropertyID: propertyID})
		if err != nil {
			return FavoriteState{}, storeErr("remove favorite", "favorite", err)
		}
		if removed > 0 {
			if err := s.queries.DecrementFavoritesCount(ctx, propertyID); err != nil {
				return FavoriteState{}, storeErr("decrement favorites", "property", err)
			}
		}
	} else {
		added, err := s.queries.AddFavorite(ctx, store.AddFavoriteParams{
			UserID:     userID,
			PropertyID: propertyID,
			CreatedAt:  s.now().UTC(),
		})
		if err != nil {
			return FavoriteState{}, storeErr("add favorite", "favorite", err)
		}
		if added > 0 {
			if err := s.queries.IncrementFavoritesCount(ctx, propertyID); err != nil {
				return FavoriteState{}, storeErr("increment favorites", "property", err)
			}
		}
	}

	state, err := s.State(ctx, userID, propertyID)
	if err != nil {
		return FavoriteState{}, err
	}

	s.audit.RecordActivity(Activity{
		UserID:     userID,
		Action:     action,
		TargetID:   strconv.FormatInt(propertyID, 10),
		TargetType: model.TargetProperty,
		Details:    map[string]any{"favorites_count": state.FavoritesCount},
	})

	return state, nil
}

// State reads the current membership and counter.
func (s *FavoriteService) State(ctx context.Context, userID, propertyID int64) (FavoriteState, error) {
	member, err := s.queries.IsFavorite(ctx, store.IsFavoriteParams{UserID: userID, PropertyID: propertyID})
	if err != nil {
		return FavoriteState{}, storeErr("check favorite", "favorite", err)
	}
	count, err := s.queries.GetFavoritesCount(ctx, propertyID)
	if err != nil {
		return FavoriteState{}, storeErr("read favorites count", "property", err)
	}
	return FavoriteState{PropertyID: propertyID, IsFavorite: member, FavoritesCount: count}, nil
}

// ListFavorites returns the user's favorite listings in the order they were
// added. Listings of other owners that are no longer active are left out.
func (s *FavoriteService) ListFavorites(ctx context.Context, userID int64) ([]store.Property, error) {
	props, err := s.queries.ListFavoriteProperties(ctx, userID)
	if err != nil {
		return nil, storeErr("list favorites", "favorite", err)
	}
	return props, nil
}

// FavoriteIDs returns the ids of the user's favorite listings.
func (s *FavoriteService) FavoriteIDs(ctx context.Context, userID int64) ([]int64, error) {
	ids, err := s.queries.ListFavoritePropertyIDs(ctx, userID)
	if err != nil {
		return nil, storeErr("list favorite ids", "favorite", err)
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

// ReconcileCounters recomputes every drifted counter from the membership
// table and returns how many listings were corrected.
func (s *FavoriteService) ReconcileCounters(ctx context.Context) (int64, error) {
	n, err := s.queries.ReconcileFavoritesCounts(ctx)
	if err != nil {
		return 0, storeErr("reconcile favorites", "property", err)
	}
	if n > 0 {
		s.logger.Warn("favorites counters drifted", "category", model.EventCategoryProperty, "corrected", n)
	}
	return n, nil
}

// Reconcile is ReconcileCounters on admin request, with an admin log entry.
func (s *FavoriteService) Reconcile(ctx context.Context, actor model.Actor) (int64, error) {
	if !actor.IsAdmin() {
		return 0, forbidden("reconcile requires admin role")
	}
	n, err := s.ReconcileCounters(ctx)
	if err != nil {
		return 0, err
	}
	s.audit.RecordAdminAction(AdminAction{
		AdminID:    actor.UserID,
		Action:     model.AdminActionReconcileFavorites,
		TargetType: model.TargetProperty,
		Details:    map[string]any{"corrected": n},
		IP:         actor.IP,
		UserAgent:  actor.UserAgent,
	})
	return n, nil
}
