// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/saramoussaya/barryland/internal/mail"
	"github.com/saramoussaya/barryland/internal/model"
	"github.com/saramoussaya/barryland/internal/store"
	"github.com/saramoussaya/barryland/internal/tasks"
)

// Field limits for notifications.
const (
	maxNotificationTitle   = 200
	maxNotificationMessage = 2000
)

// NotifyInput is a notification to create for one user.
type NotifyInput struct {
	UserID  int64
	Title   string
	Message string
	Type    string
	Data    map[string]any
	Link    string
}

// NotificationService persists notifications and emails them to users who
// have not opted out.
type NotificationService struct {
	queries *store.Queries
	sender  mail.Sender
	runner  tasks.Runner
	baseURL string
	logger  *slog.Logger
	now     func() time.Time
}

// NewNotificationService creates a NotificationService. baseURL turns
// relative links into absolute ones in emails.
func NewNotificationService(db *sql.DB, sender mail.Sender, runner tasks.Runner, baseURL string, logger *slog.Logger) *NotificationService {
	return &NotificationService{
		queries: store.New(db),
		sender:  sender,
		runner:  runner,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
		now:     time.Now,
	}
}

// Notify stores a notification and queues an email unless the recipient
// disabled email notifications. Email failures are logged by the task
// runner and never affect the returned notification.
func (s *NotificationService) Notify(ctx context.Context, in NotifyInput) (store.Notification, error) {
	n, user, err := s.create(ctx, in)
	if err != nil {
		return store.Notification{}, err
	}

	if wantsEmail(user) {
		msg := mail.Message{
			To:       user.Email,
			Subject:  n.Title,
			Template: mail.TemplateNotification,
			Data: mail.Data{
				Name:    user.FirstName,
				Title:   n.Title,
				Message: n.Message,
				Link:    s.absoluteLink(n.Link),
			},
		}
		s.runner.Submit("notification-email", func(ctx context.Context) error {
			return s.sender.Send(ctx, msg)
		})
	}

	return n, nil
}

// Record stores a notification without emailing. Callers that send their
// own templated email use it.
func (s *NotificationService) Record(ctx context.Context, in NotifyInput) (store.Notification, error) {
	n, _, err := s.create(ctx, in)
	return n, err
}

func (s *NotificationService) create(ctx context.Context, in NotifyInput) (store.Notification, store.User, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Message = strings.TrimSpace(in.Message)
	if in.Type == "" {
		in.Type = model.NotificationSystem
	}

	verr := &ValidationError{}
	if in.UserID <= 0 {
		verr.Add("user_id", "is required")
	}
	if in.Title == "" {
		verr.Add("title", "is required")
	} else if len(in.Title) > maxNotificationTitle {
		verr.Add("title", "is too long")
	}
	if len(in.Message) > maxNotificationMessage {
		verr.Add("message", "is too long")
	}
	if err := verr.OrNil(); err != nil {
		return store.Notification{}, store.User{}, err
	}

	user, err := s.queries.GetUserByID(ctx, in.UserID)
	if err != nil {
		return store.Notification{}, store.User{}, storeErr("load recipient", "user", err)
	}

	n, err := s.queries.CreateNotification(ctx, store.CreateNotificationParams{
		UserID:    in.UserID,
		Type:      in.Type,
		Title:     in.Title,
		Message:   in.Message,
		Data:      detailsJSON(in.Data),
		Link:      in.Link,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return store.Notification{}, store.User{}, storeErr("create notification", "notification", err)
	}
	return n, user, nil
}

// wantsEmail reports whether user should receive notification emails. Only
// an explicit opt-out disables them.
func wantsEmail(user store.User) bool {
	if user.Email == "" {
		return false
	}
	return !user.EmailNotifications.Valid || user.EmailNotifications.Bool
}

func (s *NotificationService) absoluteLink(link string) string {
	if link == "" || strings.Contains(link, "://") {
		return link
	}
	if !strings.HasPrefix(link, "/") {
		link = "/" + link
	}
	return s.baseURL + link
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID int64, unreadOnly bool, p Page) (Paged[store.Notification], error) {
	p = p.normalize()
	items, err := s.queries.ListNotificationsByUser(ctx, store.ListNotificationsByUserParams{
		UserID:     userID,
		UnreadOnly: unreadOnly,
		Limit:      p.Limit,
		Offset:     p.Offset,
	})
	if err != nil {
		return Paged[store.Notification]{}, storeErr("list notifications", "notification", err)
	}

	var total int64
	if unreadOnly {
		total, err = s.queries.CountUnreadNotifications(ctx, userID)
	} else {
		total, err = s.queries.CountNotificationsByUser(ctx, userID)
	}
	if err != nil {
		return Paged[store.Notification]{}, storeErr("count notifications", "notification", err)
	}
	return newPaged(items, total, p), nil
}

// UnreadCount returns how many of the user's notifications are unread.
func (s *NotificationService) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	n, err := s.queries.CountUnreadNotifications(ctx, userID)
	if err != nil {
		return 0, storeErr("count unread notifications", "notification", err)
	}
	return n, nil
}

// MarkRead flags one of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id int64) error {
	n, err := s.queries.MarkNotificationRead(ctx, store.MarkNotificationReadParams{
		ReadAt: sql.NullTime{Time: s.now().UTC(), Valid: true},
		ID:     id,
		UserID: userID,
	})
	if err != nil {
		return storeErr("mark notification read", "notification", err)
	}
	if n > 0 {
		return nil
	}

	// Already read, or not the user's.
	existing, err := s.queries.GetNotification(ctx, id)
	if err != nil {
		return storeErr("load notification", "notification", err)
	}
	if existing.UserID != userID {
		return storeErr("load notification", "notification", sql.ErrNoRows)
	}
	return nil
}

// MarkAllRead flags every unread notification of the user as read and
// returns how many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	n, err := s.queries.MarkAllNotificationsRead(ctx, store.MarkAllNotificationsReadParams{
		ReadAt: sql.NullTime{Time: s.now().UTC(), Valid: true},
		UserID: userID,
	})
	if err != nil {
		return 0, storeErr("mark all notifications read", "notification", err)
	}
	return n, nil
}

// Delete removes one of the user's notifications.
func (s *NotificationService) Delete(ctx context.Context, userID, id int64) error {
	n, err := s.queries.DeleteNotification(ctx, store.DeleteNotificationParams{ID: id, UserID: userID})
	if err != nil {
		return storeErr("delete notification", "notification", err)
	}
	if n == 0 {
		return storeErr("delete notification", "notification", sql.ErrNoRows)
	}
	return nil
}
