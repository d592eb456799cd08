// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/saramoussaya/barryland/internal/auth"
)

// DefaultSettings are created on first start. Existing values are never overwritten.
var DefaultSettings = []struct {
	Key         string
	Value       string
	Description string
}{
	{"site_name", "Barryland", "Public name used in emails and notifications"},
	{"contact_email", "", "Address shown on contact pages"},
	{"listing_moderation", "enabled", "New listings wait in pending until an admin approves them"},
	{"max_featured_listings", "12", "Upper bound for featured listings on the home page"},
}

// SeedOptions controls bootstrap data.
type SeedOptions struct {
	AdminEmail    string
	AdminPassword string
}

// Seed creates initial data in the database.
func Seed(ctx context.Context, db *sql.DB, opts SeedOptions) error {
	queries := New(db)
	now := time.Now().UTC()

	for _, s := range DefaultSettings {
		_, err := queries.GetSetting(ctx, s.Key)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("checking setting %s: %w", s.Key, err)
		}
		if _, err := queries.UpsertSetting(ctx, UpsertSettingParams{
			Key:         s.Key,
			Value:       s.Value,
			Description: s.Description,
			UpdatedAt:   now,
		}); err != nil {
			return fmt.Errorf("creating setting %s: %w", s.Key, err)
		}
	}

	if opts.AdminEmail == "" || opts.AdminPassword == "" {
		return nil
	}

	_, err := queries.GetUserByEmail(ctx, opts.AdminEmail)
	if err == nil {
		slog.Info("admin user already exists, skipping seed")
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	passwordHash, err := auth.HashPassword(opts.AdminPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	user, err := queries.CreateUser(ctx, CreateUserParams{
		Email:        opts.AdminEmail,
		PasswordHash: passwordHash,
		FirstName:    "Site",
		LastName:     "Administrator",
		Role:         "admin",
		IsActive:     true,
		IsVerified:   true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created bootstrap admin user", "id", user.ID, "email", user.Email)
	return nil
}
