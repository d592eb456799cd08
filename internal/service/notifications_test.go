// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saramoussaya/barryland/internal/mail"
	"github.com/saramoussaya/barryland/internal/model"
)

func TestNotify_SendsEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "owner@barryland.test", model.RoleParticular)

	n, err := f.notifications.Notify(ctx, NotifyInput{
		UserID:  u.ID,
		Title:   "  Welcome  ",
		Message: "Your account is ready.",
		Link:    "/account",
		Data:    map[string]any{"step": 1},
	})
	require.NoError(t, err)
	assert.Equal(t, "Welcome", n.Title)
	assert.Equal(t, model.NotificationSystem, n.Type)
	assert.False(t, n.IsRead)
	assert.JSONEq(t, `{"step":1}`, n.Data)

	msgs := f.mail.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, mail.TemplateNotification, msgs[0].Template)
	assert.Equal(t, "Welcome", msgs[0].Subject)
	assert.Equal(t, "https://barryland.test/account", msgs[0].Data.Link)
}

func TestNotify_EmailDisabled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "quiet@barryland.test", model.RoleParticular)
	_, err := f.users.UpdatePreferences(ctx, actorOf(u), false)
	require.NoError(t, err)

	_, err = f.notifications.Notify(ctx, NotifyInput{UserID: u.ID, Title: "Hello"})
	require.NoError(t, err)
	assert.Empty(t, f.mail.Messages())

	count, err := f.notifications.UnreadCount(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestNotify_EmailFailureReturnsNotification(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "owner@barryland.test", model.RoleParticular)
	f.mail.Err = errors.New("mailbox unavailable")

	n, err := f.notifications.Notify(ctx, NotifyInput{UserID: u.ID, Title: "Still stored"})
	require.NoError(t, err)
	assert.NotZero(t, n.ID)
	assert.Len(t, f.mail.Messages(), 1)

	rec, ok := f.logs.Find(slog.LevelWarn, "task failed")
	require.True(t, ok, "expected a task failure warning, got %+v", f.logs.Records())
	assert.Equal(t, model.EventCategoryTasks, rec.Attrs["category"])
	assert.Equal(t, "notification-email", rec.Attrs["task"])
	assert.Contains(t, rec.Attrs["error"], "mailbox unavailable")
}

func TestNotify_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "owner@barryland.test", model.RoleParticular)

	tests := []struct {
		name string
		in   NotifyInput
		want error
	}{
		{"no user", NotifyInput{Title: "x"}, ErrValidation},
		{"no title", NotifyInput{UserID: u.ID, Title: "   "}, ErrValidation},
		{"long title", NotifyInput{UserID: u.ID, Title: strings.Repeat("t", maxNotificationTitle+1)}, ErrValidation},
		{"long message", NotifyInput{UserID: u.ID, Title: "x", Message: strings.Repeat("m", maxNotificationMessage+1)}, ErrValidation},
		{"unknown user", NotifyInput{UserID: u.ID + 50, Title: "x"}, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.notifications.Notify(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, f.mail.Messages())
}

func TestNotifications_ReadAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "owner@barryland.test", model.RoleParticular)
	other := f.user(t, "other@barryland.test", model.RoleParticular)

	var ids []int64
	for _, title := range []string{"one", "two", "three"} {
		n, err := f.notifications.Record(ctx, NotifyInput{UserID: u.ID, Title: title})
		require.NoError(t, err)
		ids = append(ids, n.ID)
	}
	assert.Empty(t, f.mail.Messages(), "Record never emails")

	require.NoError(t, f.notifications.MarkRead(ctx, u.ID, ids[0]))
	require.NoError(t, f.notifications.MarkRead(ctx, u.ID, ids[0]), "marking twice is fine")
	assert.ErrorIs(t, f.notifications.MarkRead(ctx, other.ID, ids[1]), ErrNotFound)
	assert.ErrorIs(t, f.notifications.MarkRead(ctx, u.ID, 9999), ErrNotFound)

	unread, err := f.notifications.List(ctx, u.ID, true, Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread.Total)
	require.Len(t, unread.Items, 2)
	assert.Equal(t, "three", unread.Items[0].Title, "newest first")

	changed, err := f.notifications.MarkAllRead(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), changed)

	count, err := f.notifications.UnreadCount(ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	assert.ErrorIs(t, f.notifications.Delete(ctx, other.ID, ids[2]), ErrNotFound)
	require.NoError(t, f.notifications.Delete(ctx, u.ID, ids[2]))

	all, err := f.notifications.List(ctx, u.ID, false, Page{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)
	assert.Len(t, all.Items, 1)
	assert.Equal(t, int64(1), all.Limit)
}
