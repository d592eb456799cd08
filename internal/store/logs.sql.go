// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const adminLogColumns = `id, admin_id, action, target_id, target_type, details, ip_address, user_agent,
    browser, os, device, country_code, created_at`

func scanAdminLog(row rowScanner) (AdminLog, error) {
	var i AdminLog
	err := row.Scan(
		&i.ID,
		&i.AdminID,
		&i.Action,
		&i.TargetID,
		&i.TargetType,
		&i.Details,
		&i.IpAddress,
		&i.UserAgent,
		&i.Browser,
		&i.Os,
		&i.Device,
		&i.CountryCode,
		&i.CreatedAt,
	)
	return i, err
}

const createAdminLog = `-- name: CreateAdminLog :one
INSERT INTO admin_logs (admin_id, action, target_id, target_type, details, ip_address, user_agent, browser, os, device, country_code, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + adminLogColumns

type CreateAdminLogParams struct {
	AdminID     int64     `json:"admin_id"`
	Action      string    `json:"action"`
	TargetID    string    `json:"target_id"`
	TargetType  string    `json:"target_type"`
	Details     string    `json:"details"`
	IpAddress   string    `json:"ip_address"`
	UserAgent   string    `json:"user_agent"`
	Browser     string    `json:"browser"`
	Os          string    `json:"os"`
	Device      string    `json:"device"`
	CountryCode string    `json:"country_code"`
	CreatedAt   time.Time `json:"created_at"`
}

func (q *Queries) CreateAdminLog(ctx context.Context, arg CreateAdminLogParams) (AdminLog, error) {
	row := q.db.QueryRowContext(ctx, createAdminLog,
		arg.AdminID,
		arg.Action,
		arg.TargetID,
		arg.TargetType,
		arg.Details,
		arg.IpAddress,
		arg.UserAgent,
		arg.Browser,
		arg.Os,
		arg.Device,
		arg.CountryCode,
		arg.CreatedAt,
	)
	return scanAdminLog(row)
}

const listAdminLogs = `-- name: ListAdminLogs :many
SELECT ` + adminLogColumns + ` FROM admin_logs
WHERE (? = 0 OR admin_id = ?) AND (? = '' OR action = ?)
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?`

type ListAdminLogsParams struct {
	AdminID int64  `json:"admin_id"`
	Action  string `json:"action"`
	Limit   int64  `json:"limit"`
	Offset  int64  `json:"offset"`
}

func (q *Queries) ListAdminLogs(ctx context.Context, arg ListAdminLogsParams) ([]AdminLog, error) {
	rows, err := q.db.QueryContext(ctx, listAdminLogs,
		arg.AdminID, arg.AdminID,
		arg.Action, arg.Action,
		arg.Limit, arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := []AdminLog{}
	for rows.Next() {
		i, err := scanAdminLog(rows)
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

const countAdminLogs = `-- name: CountAdminLogs :one
SELECT COUNT(*) FROM admin_logs WHERE (? = 0 OR admin_id = ?) AND (? = '' OR action = ?)`

type CountAdminLogsParams struct {
	AdminID int64  `json:"admin_id"`
	Action  string `json:"action"`
}

func (q *Queries) CountAdminLogs(ctx context.Context, arg CountAdminLogsParams) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countAdminLogs, arg.AdminID, arg.AdminID, arg.Action, arg.Action).Scan(&count)
	return count, err
}

const activityLogColumns = `id, user_id, action, description, target_id, target_type, details, created_at`

func scanActivityLog(row rowScanner) (ActivityLog, error) {
	var i ActivityLog
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Action,
		&i.Description,
		&i.TargetID,
		&i.TargetType,
		&i.Details,
		&i.CreatedAt,
	)
	return i, err
}

const createActivityLog = `-- name: CreateActivityLog :one
INSERT INTO activity_logs (user_id, action, description, target_id, target_type, details, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING ` + activityLogColumns

type CreateActivityLogParams struct {
	UserID      int64     `json:"user_id"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	TargetID    string    `json:"target_id"`
	TargetType  string    `json:"target_type"`
	Details     string    `json:"details"`
	CreatedAt   time.Time `json:"created_at"`
}

func (q *Queries) CreateActivityLog(ctx context.Context, arg CreateActivityLogParams) (ActivityLog, error) {
	row := q.db.QueryRowContext(ctx, createActivityLog,
		arg.UserID,
		arg.Action,
		arg.Description,
		arg.TargetID,
		arg.TargetType,
		arg.Details,
		arg.CreatedAt,
	)
	return scanActivityLog(row)
}

const listActivityLogs = `-- name: ListActivityLogs :many
SELECT ` + activityLogColumns + ` FROM activity_logs
WHERE (? = 0 OR user_id = ?) AND (? = '' OR action = ?)
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?`

type ListActivityLogsParams struct {
	UserID int64  `json:"user_id"`
	Action string `json:"action"`
	Limit  int64  `json:"limit"`
	Offset int64  `json:"offset"`
}

func (q *Queries) ListActivityLogs(ctx context.Context, arg ListActivityLogsParams) ([]ActivityLog, error) {
	rows, err := q.db.QueryContext(ctx, listActivityLogs,
		arg.UserID, arg.UserID,
		arg.Action, arg.Action,
		arg.Limit, arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := []ActivityLog{}
	for rows.Next() {
		i, err := scanActivityLog(rows)
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

const countActivityLogs = `-- name: CountActivityLogs :one
SELECT COUNT(*) FROM activity_logs WHERE (? = 0 OR user_id = ?) AND (? = '' OR action = ?)`

type CountActivityLogsParams struct {
	UserID int64  `json:"user_id"`
	Action string `json:"action"`
}

func (q *Queries) CountActivityLogs(ctx context.Context, arg CountActivityLogsParams) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countActivityLogs, arg.UserID, arg.UserID, arg.Action, arg.Action).Scan(&count)
	return count, err
}

const eventColumns = `id, level, category, message, user_id, ip_address, request_url, metadata, created_at`

func scanEvent(row rowScanner) (Event, error) {
	var i Event
	err := row.Scan(
		&i.ID,
		&i.Level,
		&i.Category,
		&i.Message,
		&i.UserID,
		&i.IpAddress,
		&i.RequestUrl,
		&i.Metadata,
		&i.CreatedAt,
	)
	return i, err
}

const createEvent = `-- name: CreateEvent :one
INSERT INTO events (level, category, message, user_id, ip_address, request_url, metadata, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + eventColumns

type CreateEventParams struct {
	Level      string        `json:"level"`
	Category   string        `json:"category"`
	Message    string        `json:"message"`
	UserID     sql.NullInt64 `json:"user_id"`
	IpAddress  string        `json:"ip_address"`
	RequestUrl string        `json:"request_url"`
	Metadata   string        `json:"metadata"`
	CreatedAt  time.Time     `json:"created_at"`
}

func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) (Event, error) {
	row := q.db.QueryRowContext(ctx, createEvent,
		arg.Level,
		arg.Category,
		arg.Message,
		arg.UserID,
		arg.IpAddress,
		arg.RequestUrl,
		arg.Metadata,
		arg.CreatedAt,
	)
	return scanEvent(row)
}

const listEvents = `-- name: ListEvents :many
SELECT ` + eventColumns + ` FROM events
WHERE (? = '' OR level = ?) AND (? = '' OR category = ?)
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?`

type ListEventsParams struct {
	Level    string `json:"level"`
	Category string `json:"category"`
	Limit    int64  `json:"limit"`
	Offset   int64  `json:"offset"`
}

func (q *Queries) ListEvents(ctx context.Context, arg ListEventsParams) ([]Event, error) {
	rows, err := q.db.QueryContext(ctx, listEvents,
		arg.Level, arg.Level,
		arg.Category, arg.Category,
		arg.Limit, arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := []Event{}
	for rows.Next() {
		i, err := scanEvent(rows)
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

const countEvents = `-- name: CountEvents :one
SELECT COUNT(*) FROM events WHERE (? = '' OR level = ?) AND (? = '' OR category = ?)`

type CountEventsParams struct {
	Level    string `json:"level"`
	Category string `json:"category"`
}

func (q *Queries) CountEvents(ctx context.Context, arg CountEventsParams) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countEvents, arg.Level, arg.Level, arg.Category, arg.Category).Scan(&count)
	return count, err
}

const deleteEventsBefore = `-- name: DeleteEventsBefore :execrows
DELETE FROM events WHERE created_at < ?`

func (q *Queries) DeleteEventsBefore(ctx context.Context, before time.Time) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteEventsBefore, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
