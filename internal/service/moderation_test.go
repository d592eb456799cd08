// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saramoussaya/barryland/internal/mail"
	"github.com/saramoussaya/barryland/internal/model"
	"github.com/saramoussaya/barryland/internal/store"
)

func TestSetPropertyStatus_Approve(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	owner := f.user(t, "owner@barryland.test", model.RoleParticular)
	p := f.listing(t, owner, "Sea view flat")

	got, err := f.moderation.SetPropertyStatus(ctx, admin, p.ID, ModerationInput{Status: model.PropertyStatusActive})
	require.NoError(t, err)

	assert.Equal(t, model.PropertyStatusActive, got.Status)
	assert.True(t, got.IsApproved)
	assert.False(t, got.IsFeatured)
	require.True(t, got.PublishedAt.Valid)
	assert.True(t, got.PublishedAt.Time.Equal(testEpoch))
	require.True(t, got.ModeratedAt.Valid)
	assert.True(t, got.ModeratedAt.Time.Equal(testEpoch))
	assert.Equal(t, admin.UserID, got.ModeratedBy.Int64)

	// Owner notification, approval email, admin log and search document.
	notes, err := f.notifications.List(ctx, owner.ID, false, Page{})
	require.NoError(t, err)
	require.Len(t, notes.Items, 1)
	assert.Equal(t, model.NotificationPropertyApproved, notes.Items[0].Type)

	msgs := f.mail.Messages()
	require.Len(t, msgs, 1, "moderation must send exactly one email")
	assert.Equal(t, mail.TemplatePropertyApproved, msgs[0].Template)
	assert.Equal(t, owner.Email, msgs[0].To)
	assert.Equal(t, "https://barryland.test/properties/"+got.Slug, msgs[0].Data.Link)

	logs, err := f.audit.ListAdminLogs(ctx, AdminLogFilter{}, Page{})
	require.NoError(t, err)
	require.Len(t, logs.Items, 1)
	assert.Equal(t, model.ModerationAction(model.PropertyStatusActive), logs.Items[0].Action)
	assert.Equal(t, strconv.FormatInt(p.ID, 10), logs.Items[0].TargetID)
	assert.Contains(t, logs.Items[0].Details, `"previous_status":"pending"`)
	assert.Equal(t, "Firefox", logs.Items[0].Browser)

	assert.True(t, f.index.Has(p.ID))
}

func TestSetPropertyStatus_ReapproveKeepsPublishedAt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	owner := f.user(t, "owner@barryland.test", model.RoleParticular)
	p := f.published(t, admin, owner, "Garden house", false)

	f.clock.Advance(48 * time.Hour)
	_, err := f.moderation.SetPropertyStatus(ctx, admin, p.ID, ModerationInput{Status: model.PropertyStatusInactive})
	require.NoError(t, err)

	f.clock.Advance(24 * time.Hour)
	again, err := f.moderation.SetPropertyStatus(ctx, admin, p.ID, ModerationInput{Status: model.PropertyStatusActive})
	require.NoError(t, err)

	assert.True(t, again.PublishedAt.Time.Equal(p.PublishedAt.Time), "publishedAt = %v, want %v", again.PublishedAt.Time, p.PublishedAt.Time)
	assert.True(t, again.ModeratedAt.Time.After(p.ModeratedAt.Time))
	assert.True(t, again.ModeratedAt.Time.Equal(f.clock.Now()))
}

func TestSetPropertyStatus_Reject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	owner := f.user(t, "owner@barryland.test", model.RoleProfessional)
	p := f.published(t, admin, owner, "Duplex downtown", true)
	require.True(t, p.IsFeatured)

	got, err := f.moderation.SetPropertyStatus(ctx, admin, p.ID, ModerationInput{
		Status:          model.PropertyStatusRejected,
		RejectionReason: "  Photos missing  ",
	})
	require.NoError(t, err)

	assert.Equal(t, model.PropertyStatusRejected, got.Status)
	assert.False(t, got.IsApproved)
	assert.False(t, got.IsFeatured)
	assert.Equal(t, "Photos missing", got.RejectionReason)
	assert.False(t, f.index.Has(p.ID))

	msgs := f.mail.Messages()
	last := msgs[len(msgs)-1]
	assert.Equal(t, mail.TemplatePropertyRejected, last.Template)
	assert.Equal(t, "Photos missing", last.Data.Reason)

	notes, err := f.notifications.List(ctx, owner.ID, true, Page{})
	require.NoError(t, err)
	require.NotEmpty(t, notes.Items)
	assert.Equal(t, model.NotificationPropertyRejected, notes.Items[0].Type)
	assert.True(t, strings.Contains(notes.Items[0].Message, "Photos missing"))
}

func TestSetPropertyStatus_ApproveClearsRejection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	owner := f.user(t, "owner@barryland.test", model.RoleParticular)
	p := f.listing(t, owner, "Studio")

	_, err := f.moderation.SetPropertyStatus(ctx, admin, p.ID, ModerationInput{
		Status:          model.PropertyStatusRejected,
		RejectionReason: "Wrong city",
	})
	require.NoError(t, err)

	got, err := f.moderation.SetPropertyStatus(ctx, admin, p.ID, ModerationInput{Status: model.PropertyStatusActive})
	require.NoError(t, err)
	assert.Empty(t, got.RejectionReason)
	assert.True(t, got.IsApproved)
}

func TestSetPropertyStatus_FeaturedFlags(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	owner := f.user(t, "owner@barryland.test", model.RoleParticular)
	p := f.published(t, admin, owner, "Villa", true)

	assert.True(t, p.IsFeatured)
	assert.True(t, p.IsPromoted)
	assert.Equal(t, model.PriorityFeatured, p.Priority)

	got, err := f.moderation.SetPropertyStatus(ctx, admin, p.ID, ModerationInput{Status: model.PropertyStatusActive})
	require.NoError(t, err)
	assert.False(t, got.IsFeatured)
	assert.False(t, got.IsPromoted)
	assert.Equal(t, model.PriorityNormal, got.Priority)
}

func TestSetPropertyStatus_RenewsExpiredListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	owner := f.user(t, "owner@barryland.test", model.RoleParticular)
	p := f.listing(t, owner, "Old listing")

	f.clock.Advance(model.DefaultListingTTL + time.Hour)
	got, err := f.moderation.SetPropertyStatus(ctx, admin, p.ID, ModerationInput{Status: model.PropertyStatusActive})
	require.NoError(t, err)
	require.True(t, got.ExpiresAt.Valid)
	assert.True(t, got.ExpiresAt.Time.Equal(f.clock.Now().Add(model.DefaultListingTTL)))
}

func TestSetPropertyStatus_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	owner := f.user(t, "owner@barryland.test", model.RoleParticular)
	p := f.listing(t, owner, "Pending flat")

	tests := []struct {
		name  string
		actor model.Actor
		id    int64
		in    ModerationInput
		want  error
	}{
		{"owner is not admin", actorOf(owner), p.ID, ModerationInput{Status: model.PropertyStatusActive}, ErrForbidden},
		{"anonymous", model.Actor{}, p.ID, ModerationInput{Status: model.PropertyStatusActive}, ErrForbidden},
		{"unknown status", admin, p.ID, ModerationInput{Status: "archived"}, ErrValidation},
		{"pending is not a decision", admin, p.ID, ModerationInput{Status: model.PropertyStatusPending}, ErrValidation},
		{"reason too long", admin, p.ID, ModerationInput{Status: model.PropertyStatusRejected, RejectionReason: strings.Repeat("x", maxRejectionReason+1)}, ErrValidation},
		{"missing listing", admin, p.ID + 100, ModerationInput{Status: model.PropertyStatusActive}, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.moderation.SetPropertyStatus(ctx, tt.actor, tt.id, tt.in)
			if !errors.Is(err, tt.want) {
				t.Errorf("SetPropertyStatus() error = %v, want %v", err, tt.want)
			}
		})
	}

	unchanged, err := f.q.GetPropertyByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PropertyStatusPending, unchanged.Status)
	assert.Empty(t, f.mail.Messages())
}

func TestSetPropertyStatus_EmailFailureKeepsDecision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	owner := f.user(t, "owner@barryland.test", model.RoleParticular)
	p := f.listing(t, owner, "Loft")
	f.mail.Err = errors.New("smtp: connection refused")

	got, err := f.moderation.SetPropertyStatus(ctx, admin, p.ID, ModerationInput{Status: model.PropertyStatusActive})
	require.NoError(t, err)
	assert.Equal(t, model.PropertyStatusActive, got.Status)

	// The other side effects still ran.
	count, err := f.notifications.UnreadCount(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.True(t, f.index.Has(p.ID))
}

func TestSetPropertyStatus_InvalidatesDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	owner := f.user(t, "owner@barryland.test", model.RoleParticular)
	p := f.listing(t, owner, "Cached flat")

	before, err := f.stats.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), before.Properties.Active)

	_, err = f.moderation.SetPropertyStatus(ctx, admin, p.ID, ModerationInput{Status: model.PropertyStatusActive})
	require.NoError(t, err)

	after, err := f.stats.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), after.Properties.Active)
}

func TestModerationParams_Inactive(t *testing.T) {
	now := testEpoch
	p := store.Property{ID: 7, Status: model.PropertyStatusActive, IsApproved: true, IsFeatured: true, ModerationNotes: "old"}

	got := moderationParams(p, ModerationInput{Status: model.PropertyStatusInactive}, 1, now, time.Hour)
	if got.IsApproved || got.IsFeatured {
		t.Errorf("inactive keeps flags: approved=%v featured=%v", got.IsApproved, got.IsFeatured)
	}
	if got.ModerationNotes != "old" {
		t.Errorf("ModerationNotes = %q, want %q", got.ModerationNotes, "old")
	}
	if got.PublishedAt.Valid {
		t.Error("inactive must not set publishedAt")
	}
}
