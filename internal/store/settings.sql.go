// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const getSetting = `-- name: GetSetting :one
SELECT key, value, description, updated_by, updated_at FROM system_settings WHERE key = ?`

func (q *Queries) GetSetting(ctx context.Context, key string) (SystemSetting, error) {
	var i SystemSetting
	err := q.db.QueryRowContext(ctx, getSetting, key).Scan(
		&i.Key,
		&i.Value,
		&i.Description,
		&i.UpdatedBy,
		&i.UpdatedAt,
	)
	return i, err
}

const listSettings = `-- name: ListSettings :many
SELECT key, value, description, updated_by, updated_at FROM system_settings ORDER BY key`

func (q *Queries) ListSettings(ctx context.Context) ([]SystemSetting, error) {
	rows, err := q.db.QueryContext(ctx, listSettings)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := []SystemSetting{}
	for rows.Next() {
		var i SystemSetting
		if err := rows.Scan(
			&i.Key,
			&i.Value,
			&i.Description,
			&i.UpdatedBy,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertSetting = `-- name: UpsertSetting :one
INSERT INTO system_settings (key, value, description, updated_by, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
    value = excluded.value,
    description = CASE WHEN excluded.description = '' THEN system_settings.description ELSE excluded.description END,
    updated_by = excluded.updated_by,
    updated_at = excluded.updated_at
RETURNING key, value, description, updated_by, updated_at`

type UpsertSettingParams struct {
	Key         string        `json:"key"`
	Value       string        `json:"value"`
	Description string        `json:"description"`
	UpdatedBy   sql.NullInt64 `json:"updated_by"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func (q *Queries) UpsertSetting(ctx context.Context, arg UpsertSettingParams) (SystemSetting, error) {
	var i SystemSetting
	err := q.db.QueryRowContext(ctx, upsertSetting,
		arg.Key,
		arg.Value,
		arg.Description,
		arg.UpdatedBy,
		arg.UpdatedAt,
	).Scan(
		&i.Key,
		&i.Value,
		&i.Description,
		&i.UpdatedBy,
		&i.UpdatedAt,
	)
	return i, err
}
