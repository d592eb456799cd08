// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const notificationColumns = `id, user_id, type, title, message, data, link, is_read, read_at, created_at`

func scanNotification(row rowScanner) (Notification, error) {
	var i Notification
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Type,
		&i.Title,
		&i.Message,
		&i.Data,
		&i.Link,
		&i.IsRead,
		&i.ReadAt,
		&i.CreatedAt,
	)
	return i, err
}

const createNotification = `-- name: CreateNotification :one
INSERT INTO notifications (user_id, type, title, message, data, link, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING ` + notificationColumns

type CreateNotificationParams struct {
	UserID    int64     `json:"user_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Data      string    `json:"data"`
	Link      string    `json:"link"`
	CreatedAt time.Time `json:"created_at"`
}

func (q *Queries) CreateNotification(ctx context.Context, arg CreateNotificationParams) (Notification, error) {
	row := q.db.QueryRowContext(ctx, createNotification,
		arg.UserID,
		arg.Type,
		arg.Title,
		arg.Message,
		arg.Data,
		arg.Link,
		arg.CreatedAt,
	)
	return scanNotification(row)
}

const getNotification = `-- name: GetNotification :one
SELECT ` + notificationColumns + ` FROM notifications WHERE id = ?`

func (q *Queries) GetNotification(ctx context.Context, id int64) (Notification, error) {
	return scanNotification(q.db.QueryRowContext(ctx, getNotification, id))
}

const listNotificationsByUser = `-- name: ListNotificationsByUser :many
SELECT ` + notificationColumns + ` FROM notifications
WHERE user_id = ? AND (? = 0 OR is_read = 0)
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?`

type ListNotificationsByUserParams struct {
	UserID     int64 `json:"user_id"`
	UnreadOnly bool  `json:"unread_only"`
	Limit      int64 `json:"limit"`
	Offset     int64 `json:"offset"`
}

func (q *Queries) ListNotificationsByUser(ctx context.Context, arg ListNotificationsByUserParams) ([]Notification, error) {
	rows, err := q.db.QueryContext(ctx, listNotificationsByUser, arg.UserID, arg.UnreadOnly, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := []Notification{}
	for rows.Next() {
		i, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countNotificationsByUser = `-- name: CountNotificationsByUser :one
SELECT COUNT(*) FROM notifications WHERE user_id = ?`

func (q *Queries) CountNotificationsByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countNotificationsByUser, userID).Scan(&count)
	return count, err
}

const countUnreadNotifications = `-- name: CountUnreadNotifications :one
SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = 0`

func (q *Queries) CountUnreadNotifications(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countUnreadNotifications, userID).Scan(&count)
	return count, err
}

const markNotificationRead = `-- name: MarkNotificationRead :execrows
UPDATE notifications SET is_read = 1, read_at = ? WHERE id = ? AND user_id = ? AND is_read = 0`

type MarkNotificationReadParams struct {
	ReadAt sql.NullTime `json:"read_at"`
	ID     int64        `json:"id"`
	UserID int64        `json:"user_id"`
}

func (q *Queries) MarkNotificationRead(ctx context.Context, arg MarkNotificationReadParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, markNotificationRead, arg.ReadAt, arg.ID, arg.UserID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const markAllNotificationsRead = `-- name: MarkAllNotificationsRead :execrows
UPDATE notifications SET is_read = 1, read_at = ? WHERE user_id = ? AND is_read = 0`

type MarkAllNotificationsReadParams struct {
	ReadAt sql.NullTime `json:"read_at"`
	UserID int64        `json:"user_id"`
}

func (q *Queries) MarkAllNotificationsRead(ctx context.Context, arg MarkAllNotificationsReadParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, markAllNotificationsRead, arg.ReadAt, arg.UserID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteNotification = `-- name: DeleteNotification :execrows
DELETE FROM notifications WHERE id = ? AND user_id = ?`

type DeleteNotificationParams struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"user_id"`
}

func (q *Queries) DeleteNotification(ctx context.Context, arg DeleteNotificationParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteNotification, arg.ID, arg.UserID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteNotificationsByUser = `-- name: DeleteNotificationsByUser :exec
DELETE FROM notifications WHERE user_id = ?`

func (q *Queries) DeleteNotificationsByUser(ctx context.Context, userID int64) error {
	_, err := q.db.ExecContext(ctx, deleteNotificationsByUser, userID)
	return err
}
