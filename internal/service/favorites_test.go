// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/saramoussaya/barryland/internal/model"
)

func TestToggleFavorite_RoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	owner := f.user(t, "owner@barryland.test", model.RoleParticular)
	buyer := f.user(t, "buyer@barryland.test", model.RoleParticular)
	p := f.published(t, admin, owner, "Terrace flat", false)

	added, err := f.favorites.ToggleFavorite(ctx, buyer.ID, p.ID)
	if err != nil {
		t.Fatalf("ToggleFavorite add: %v", err)
	}
	if !added.IsFavorite || added.FavoritesCount != 1 {
		t.Errorf("after add = %+v, want favorite with count 1", added)
	}

	ids, err := f.favorites.FavoriteIDs(ctx, buyer.ID)
	if err != nil {
		t.Fatalf("FavoriteIDs: %v", err)
	}
	if len(ids) != 1 || ids[0] != p.ID {
		t.Errorf("FavoriteIDs = %v, want [%d]", ids, p.ID)
	}

	removed, err := f.favorites.ToggleFavorite(ctx, buyer.ID, p.ID)
	if err != nil {
		t.Fatalf("ToggleFavorite remove: %v", err)
	}
	if removed.IsFavorite || removed.FavoritesCount != 0 {
		t.Errorf("after remove = %+v, want not favorite with count 0", removed)
	}

	list, err := f.favorites.ListFavorites(ctx, buyer.ID)
	if err != nil {
		t.Fatalf("ListFavorites: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("ListFavorites len = %d, want 0", len(list))
	}

	activity, err := f.audit.ListActivity(ctx, ActivityFilter{UserID: buyer.ID}, Page{})
	if err != nil {
		t.Fatalf("ListActivity: %v", err)
	}
	if activity.Total != 2 {
		t.Errorf("activity total = %d, want 2", activity.Total)
	}
}

func TestToggleFavorite_CounterTracksUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	owner := f.user(t, "owner@barryland.test", model.RoleParticular)
	p := f.published(t, admin, owner, "Popular flat", false)

	emails := []string{"a@barryland.test", "b@barryland.test", "c@barryland.test"}
	for i, email := range emails {
		u := f.user(t, email, model.RoleParticular)
		state, err := f.favorites.ToggleFavorite(ctx, u.ID, p.ID)
		if err != nil {
			t.Fatalf("ToggleFavorite(%s): %v", email, err)
		}
		if want := int64(i + 1); state.FavoritesCount != want {
			t.Errorf("count after %s = %d, want %d", email, state.FavoritesCount, want)
		}
	}
}

func TestToggleFavorite_CounterNeverNegative(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	owner := f.user(t, "owner@barryland.test", model.RoleParticular)
	buyer := f.user(t, "buyer@barryland.test", model.RoleParticular)
	p := f.published(t, admin, owner, "Drifted flat", false)

	if _, err := f.favorites.ToggleFavorite(ctx, buyer.ID, p.ID); err != nil {
		t.Fatalf("ToggleFavorite: %v", err)
	}
	// Simulate drift: the counter lost the increment.
	if _, err := f.db.Exec("UPDATE properties SET favorites_count = 0 WHERE id = ?", p.ID); err != nil {
		t.Fatalf("reset counter: %v", err)
	}

	state, err := f.favorites.ToggleFavorite(ctx, buyer.ID, p.ID)
	if err != nil {
		t.Fatalf("ToggleFavorite: %v", err)
	}
	if state.FavoritesCount != 0 {
		t.Errorf("FavoritesCount = %d, want 0", state.FavoritesCount)
	}
}

func TestToggleFavorite_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	buyer := f.user(t, "buyer@barryland.test", model.RoleParticular)

	tests := []struct {
		name       string
		userID     int64
		propertyID int64
		want       error
	}{
		{"missing user", 0, 1, ErrValidation},
		{"missing property id", buyer.ID, 0, ErrValidation},
		{"unknown property", buyer.ID, 999, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.favorites.ToggleFavorite(ctx, tt.userID, tt.propertyID)
			if !errors.Is(err, tt.want) {
				t.Errorf("ToggleFavorite() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestToggleFavorite_HiddenListings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	owner := f.user(t, "owner@barryland.test", model.RoleParticular)
	buyer := f.user(t, "buyer@barryland.test", model.RoleParticular)
	pending := f.listing(t, owner, "Unpublished flat")

	if _, err := f.favorites.ToggleFavorite(ctx, buyer.ID, pending.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("ToggleFavorite(pending) error = %v, want %v", err, ErrNotFound)
	}
	if ids, _ := f.favorites.FavoriteIDs(ctx, buyer.ID); len(ids) != 0 {
		t.Errorf("FavoriteIDs = %v, want none", ids)
	}

	// Owners may keep their own pending listing in favorites.
	if _, err := f.favorites.ToggleFavorite(ctx, owner.ID, pending.ID); err != nil {
		t.Errorf("ToggleFavorite(own pending): %v", err)
	}

	p := f.published(t, admin, owner, "Later withdrawn", false)
	if _, err := f.favorites.ToggleFavorite(ctx, buyer.ID, p.ID); err != nil {
		t.Fatalf("ToggleFavorite(active): %v", err)
	}
	if _, err := f.moderation.SetPropertyStatus(ctx, admin, p.ID, ModerationInput{Status: model.PropertyStatusRejected}); err != nil {
		t.Fatalf("reject: %v", err)
	}

	list, err := f.favorites.ListFavorites(ctx, buyer.ID)
	if err != nil {
		t.Fatalf("ListFavorites: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("ListFavorites len = %d, want 0 after the listing was rejected", len(list))
	}

	// Removing a favorite that became hidden is still allowed.
	state, err := f.favorites.ToggleFavorite(ctx, buyer.ID, p.ID)
	if err != nil {
		t.Fatalf("ToggleFavorite(remove hidden): %v", err)
	}
	if state.IsFavorite || state.FavoritesCount != 0 {
		t.Errorf("after remove = %+v, want not favorite with count 0", state)
	}
}

func TestReconcileCounters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	owner := f.user(t, "owner@barryland.test", model.RoleParticular)
	buyer := f.user(t, "buyer@barryland.test", model.RoleParticular)
	p := f.published(t, admin, owner, "Flat", false)
	other := f.published(t, admin, owner, "Other flat", false)

	if _, err := f.favorites.ToggleFavorite(ctx, buyer.ID, p.ID); err != nil {
		t.Fatalf("ToggleFavorite: %v", err)
	}
	if _, err := f.db.Exec("UPDATE properties SET favorites_count = 5 WHERE id = ?", p.ID); err != nil {
		t.Fatalf("corrupt counter: %v", err)
	}
	if _, err := f.db.Exec("UPDATE properties SET favorites_count = 2 WHERE id = ?", other.ID); err != nil {
		t.Fatalf("corrupt counter: %v", err)
	}

	if _, err := f.favorites.Reconcile(ctx, actorOf(buyer)); !errors.Is(err, ErrForbidden) {
		t.Errorf("Reconcile as user error = %v, want ErrForbidden", err)
	}

	n, err := f.favorites.Reconcile(ctx, admin)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if n != 2 {
		t.Errorf("corrected = %d, want 2", n)
	}

	state, err := f.favorites.State(ctx, buyer.ID, p.ID)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if state.FavoritesCount != 1 || !state.IsFavorite {
		t.Errorf("State = %+v, want favorite with count 1", state)
	}

	n, err = f.favorites.ReconcileCounters(ctx)
	if err != nil {
		t.Fatalf("ReconcileCounters: %v", err)
	}
	if n != 0 {
		t.Errorf("second pass corrected = %d, want 0", n)
	}

	logs, err := f.audit.ListAdminLogs(ctx, AdminLogFilter{Action: model.AdminActionReconcileFavorites}, Page{})
	if err != nil {
		t.Fatalf("ListAdminLogs: %v", err)
	}
	if logs.Total != 1 {
		t.Errorf("reconcile logs = %d, want 1", logs.Total)
	}
}

func TestDeletePropertyRemovesFavorites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	owner := f.user(t, "owner@barryland.test", model.RoleParticular)
	buyer := f.user(t, "buyer@barryland.test", model.RoleParticular)
	p := f.published(t, admin, owner, "Soon gone", false)

	if _, err := f.favorites.ToggleFavorite(ctx, buyer.ID, p.ID); err != nil {
		t.Fatalf("ToggleFavorite: %v", err)
	}
	if err := f.properties.Delete(ctx, actorOf(owner), p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	ids, err := f.favorites.FavoriteIDs(ctx, buyer.ID)
	if err != nil {
		t.Fatalf("FavoriteIDs: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("FavoriteIDs = %v, want empty", ids)
	}
}
