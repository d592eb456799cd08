// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

// Adding an existing member is a no-op, which gives the favorite set its set semantics.
const addFavorite = `-- name: AddFavorite :execrows
INSERT OR IGNORE INTO user_favorites (user_id, property_id, created_at) VALUES (?, ?, ?)`

type AddFavoriteParams struct {
	UserID     int64     `json:"user_id"`
	PropertyID int64     `json:"property_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// AddFavorite returns the number of rows inserted: 1 when the property was
// added, 0 when it was already a member.
func (q *Queries) AddFavorite(ctx context.Context, arg AddFavoriteParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, addFavorite, arg.UserID, arg.PropertyID, arg.CreatedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const removeFavorite = `-- name: RemoveFavorite :execrows
DELETE FROM user_favorites WHERE user_id = ? AND property_id = ?`

type RemoveFavoriteParams struct {
	UserID     int64 `json:"user_id"`
	PropertyID int64 `json:"property_id"`
}

// RemoveFavorite returns the number of rows deleted.
func (q *Queries) RemoveFavorite(ctx context.Context, arg RemoveFavoriteParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, removeFavorite, arg.UserID, arg.PropertyID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const isFavorite = `-- name: IsFavorite :one
SELECT EXISTS(SELECT 1 FROM user_favorites WHERE user_id = ? AND property_id = ?)`

type IsFavoriteParams struct {
	UserID     int64 `json:"user_id"`
	PropertyID int64 `json:"property_id"`
}

func (q *Queries) IsFavorite(ctx context.Context, arg IsFavoriteParams) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx, isFavorite, arg.UserID, arg.PropertyID).Scan(&exists)
	return exists, err
}

const listFavoriteProperties = `-- name: ListFavoriteProperties :many
SELECT ` + propertyColumns + ` FROM properties
WHERE id IN (SELECT property_id FROM user_favorites WHERE user_id = ?)
  AND (status = 'active' OR owner_id = ?)
ORDER BY (SELECT created_at FROM user_favorites f WHERE f.user_id = ? AND f.property_id = properties.id)`

// ListFavoriteProperties returns a user's visible favorites in the order they
// were added.
func (q *Queries) ListFavoriteProperties(ctx context.Context, userID int64) ([]Property, error) {
	rows, err := q.db.QueryContext(ctx, listFavoriteProperties, userID, userID, userID)
	if err != nil {
		return nil, err
	}
	return scanProperties(rows)
}

const listFavoritePropertyIDs = `-- name: ListFavoritePropertyIDs :many
SELECT property_id FROM user_favorites WHERE user_id = ? ORDER BY created_at, property_id`

func (q *Queries) ListFavoritePropertyIDs(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, listFavoritePropertyIDs, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

const countFavoritesByProperty = `-- name: CountFavoritesByProperty :one
SELECT COUNT(*) FROM user_favorites WHERE property_id = ?`

func (q *Queries) CountFavoritesByProperty(ctx context.Context, propertyID int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countFavoritesByProperty, propertyID).Scan(&count)
	return count, err
}

const removeFavoritesByProperty = `-- name: RemoveFavoritesByProperty :exec
DELETE FROM user_favorites WHERE property_id = ?`

// RemoveFavoritesByProperty pulls a property out of every user's favorite set.
func (q *Queries) RemoveFavoritesByProperty(ctx context.Context, propertyID int64) error {
	_, err := q.db.ExecContext(ctx, removeFavoritesByProperty, propertyID)
	return err
}

const removeFavoritesByUser = `-- name: RemoveFavoritesByUser :exec
UPDATE properties SET favorites_count = MAX(favorites_count - 1, 0)
WHERE id IN (SELECT property_id FROM user_favorites WHERE user_id = ?)`

const deleteFavoritesByUser = `-- name: DeleteFavoritesByUser :exec
DELETE FROM user_favorites WHERE user_id = ?`

// RemoveFavoritesByUser empties a user's favorite set and decrements the
// counter of every property that was in it.
func (q *Queries) RemoveFavoritesByUser(ctx context.Context, userID int64) error {
	if _, err := q.db.ExecContext(ctx, removeFavoritesByUser, userID); err != nil {
		return err
	}
	_, err := q.db.ExecContext(ctx, deleteFavoritesByUser, userID)
	return err
}
