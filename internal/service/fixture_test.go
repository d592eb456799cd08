// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"log/slog"
	"testing"
	"time"

	"github.com/saramoussaya/barryland/internal/auth"
	"github.com/saramoussaya/barryland/internal/cache"
	"github.com/saramoussaya/barryland/internal/captcha"
	"github.com/saramoussaya/barryland/internal/model"
	"github.com/saramoussaya/barryland/internal/storage"
	"github.com/saramoussaya/barryland/internal/store"
	"github.com/saramoussaya/barryland/internal/tasks"
	"github.com/saramoussaya/barryland/internal/testutil"
)

const testSecret = "k3Jd9QmZ7vR2xT5wL8nB4cY6hF1gP0sA"

var testEpoch = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

// fixture wires every service against one in-memory database with
// synchronous tasks and recording collaborators.
type fixture struct {
	db    *sql.DB
	q     *store.Queries
	clock *testutil.Clock
	mail  *testutil.MailRecorder
	index *testutil.IndexRecorder
	cache *cache.MemoryCache
	logs  *testutil.LogRecorder // background task output

	audit         *AuditService
	notifications *NotificationService
	stats         *StatsService
	moderation    *ModerationService
	favorites     *FavoriteService
	properties    *PropertyService
	users         *UserService
	contact       *ContactService
	settings      *SettingsService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.TestMemoryDB(t)
	logger := testutil.TestLoggerSilent()
	logs := testutil.NewLogRecorder()
	runner := tasks.Inline{Logger: slog.New(logs)}

	f := &fixture{
		db:    db,
		q:     store.New(db),
		clock: testutil.NewClock(testEpoch),
		mail:  &testutil.MailRecorder{},
		index: &testutil.IndexRecorder{},
		cache: cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute}),
		logs:  logs,
	}
	t.Cleanup(func() { _ = f.cache.Close() })

	tokens, err := auth.NewTokenIssuer(auth.TokenConfig{Secret: testSecret, TTL: time.Hour})
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}

	f.audit = NewAuditService(db, runner, nil, logger)
	f.notifications = NewNotificationService(db, f.mail, runner, "https://barryland.test", logger)
	f.stats = NewStatsService(db, f.cache, time.Minute, 5, logger)
	f.moderation = NewModerationService(db, ModerationDeps{
		Notifications: f.notifications,
		Audit:         f.audit,
		Stats:         f.stats,
		Sender:        f.mail,
		Indexer:       f.index,
		Runner:        runner,
		BaseURL:       "https://barryland.test",
		Logger:        logger,
	})
	f.favorites = NewFavoriteService(db, f.audit, logger)
	f.properties = NewPropertyService(db, PropertyDeps{
		Notifications: f.notifications,
		Audit:         f.audit,
		Stats:         f.stats,
		Blobs:         storage.NewLocal(t.TempDir(), "/uploads"),
		Indexer:       f.index,
		Runner:        runner,
		Logger:        logger,
	})
	f.users = NewUserService(db, UserDeps{
		Tokens:     tokens,
		Sender:     f.mail,
		Runner:     runner,
		Audit:      f.audit,
		Stats:      f.stats,
		Properties: f.properties,
		Policy:     AccountPolicy{MaxLoginAttempts: 3, LockoutDuration: 15 * time.Minute},
		Logger:     logger,
	})
	f.contact = NewContactService(db, ContactDeps{
		Notifications: f.notifications,
		Audit:         f.audit,
		Captcha:       captcha.Disabled{},
		Sender:        f.mail,
		Runner:        runner,
		Logger:        logger,
	})
	f.settings = NewSettingsService(db, f.audit, logger)

	now := f.clock.Now
	f.audit.now = now
	f.notifications.now = now
	f.stats.now = now
	f.moderation.now = now
	f.favorites.now = now
	f.properties.now = now
	f.users.now = now
	f.contact.now = now
	f.settings.now = now

	return f
}

// user inserts an account directly. Password checks are not possible on it.
func (f *fixture) user(t *testing.T, email, role string) store.User {
	t.Helper()
	now := f.clock.Now()
	u, err := f.q.CreateUser(context.Background(), store.CreateUserParams{
		Email:        email,
		PasswordHash: "unused",
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", email, err)
	}
	return u
}

func (f *fixture) admin(t *testing.T) model.Actor {
	t.Helper()
	u := f.user(t, "admin@barryland.test", model.RoleAdmin)
	return model.Actor{UserID: u.ID, Role: u.Role, IP: "10.0.0.1", UserAgent: "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"}
}

func actorOf(u store.User) model.Actor {
	return model.Actor{UserID: u.ID, Role: u.Role}
}

func sampleListing(title string) PropertyInput {
	return PropertyInput{
		Title:           title,
		Description:     "<p>Bright flat near the <b>harbour</b></p>",
		TransactionType: model.TransactionSale,
		PropertyType:    "apartment",
		Category:        "residential",
		Price:           185000,
		Area:            74,
		Bedrooms:        2,
		Bathrooms:       1,
		Address:         "12 Rue des Oliviers",
		City:            "Sousse",
		Region:          "Sahel",
	}
}

// listing creates a pending listing owned by owner.
func (f *fixture) listing(t *testing.T, owner store.User, title string) store.Property {
	t.Helper()
	p, err := f.properties.Create(context.Background(), actorOf(owner), sampleListing(title))
	if err != nil {
		t.Fatalf("Create(%q): %v", title, err)
	}
	return p
}

// published creates a listing and approves it.
func (f *fixture) published(t *testing.T, admin model.Actor, owner store.User, title string, featured bool) store.Property {
	t.Helper()
	p := f.listing(t, owner, title)
	p, err := f.moderation.SetPropertyStatus(context.Background(), admin, p.ID, ModerationInput{
		Status:   model.PropertyStatusActive,
		Featured: featured,
	})
	if err != nil {
		t.Fatalf("approve %q: %v", title, err)
	}
	return p
}
