// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// GroupCount is one bucket of a GROUP BY breakdown.
type GroupCount struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

func scanGroupCounts(rows *sql.Rows) ([]GroupCount, error) {
	defer func() { _ = rows.Close() }()
	items := []GroupCount{}
	for rows.Next() {
		var i GroupCount
		if err := rows.Scan(&i.Key, &i.Count); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countProperties = `-- name: CountProperties :one
SELECT COUNT(*) FROM properties`

func (q *Queries) CountProperties(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countProperties).Scan(&count)
	return count, err
}

const countPropertiesByStatusValue = `-- name: CountPropertiesByStatusValue :one
SELECT COUNT(*) FROM properties WHERE status = ?`

func (q *Queries) CountPropertiesByStatusValue(ctx context.Context, status string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countPropertiesByStatusValue, status).Scan(&count)
	return count, err
}

const countPropertiesCreatedBetween = `-- name: CountPropertiesCreatedBetween :one
SELECT COUNT(*) FROM properties WHERE created_at >= ? AND created_at <= ?`

type CountPropertiesCreatedBetweenParams struct {
	Since time.Time `json:"since"`
	Until time.Time `json:"until"`
}

func (q *Queries) CountPropertiesCreatedBetween(ctx context.Context, arg CountPropertiesCreatedBetweenParams) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countPropertiesCreatedBetween, arg.Since, arg.Until).Scan(&count)
	return count, err
}

const countPropertiesPublishedBetween = `-- name: CountPropertiesPublishedBetween :one
SELECT COUNT(*) FROM properties
WHERE status = 'active' AND published_at >= ? AND published_at <= ?`

type CountPropertiesPublishedBetweenParams struct {
	Since time.Time `json:"since"`
	Until time.Time `json:"until"`
}

func (q *Queries) CountPropertiesPublishedBetween(ctx context.Context, arg CountPropertiesPublishedBetweenParams) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countPropertiesPublishedBetween, arg.Since, arg.Until).Scan(&count)
	return count, err
}

const countPropertiesGroupedByStatus = `-- name: CountPropertiesGroupedByStatus :many
SELECT status, COUNT(*) AS count FROM properties GROUP BY status ORDER BY count DESC, status`

func (q *Queries) CountPropertiesGroupedByStatus(ctx context.Context) ([]GroupCount, error) {
	rows, err := q.db.QueryContext(ctx, countPropertiesGroupedByStatus)
	if err != nil {
		return nil, err
	}
	return scanGroupCounts(rows)
}

const topPropertyTypes = `-- name: TopPropertyTypes :many
SELECT property_type, COUNT(*) AS count FROM properties
WHERE property_type != ''
GROUP BY property_type ORDER BY count DESC, property_type LIMIT ?`

func (q *Queries) TopPropertyTypes(ctx context.Context, limit int64) ([]GroupCount, error) {
	rows, err := q.db.QueryContext(ctx, topPropertyTypes, limit)
	if err != nil {
		return nil, err
	}
	return scanGroupCounts(rows)
}

const topPropertyCategories = `-- name: TopPropertyCategories :many
SELECT category, COUNT(*) AS count FROM properties
WHERE category != ''
GROUP BY category ORDER BY count DESC, category LIMIT ?`

func (q *Queries) TopPropertyCategories(ctx context.Context, limit int64) ([]GroupCount, error) {
	rows, err := q.db.QueryContext(ctx, topPropertyCategories, limit)
	if err != nil {
		return nil, err
	}
	return scanGroupCounts(rows)
}

const topPropertyCities = `-- name: TopPropertyCities :many
SELECT city, COUNT(*) AS count FROM properties
WHERE city != ''
GROUP BY city ORDER BY count DESC, city LIMIT ?`

func (q *Queries) TopPropertyCities(ctx context.Context, limit int64) ([]GroupCount, error) {
	rows, err := q.db.QueryContext(ctx, topPropertyCities, limit)
	if err != nil {
		return nil, err
	}
	return scanGroupCounts(rows)
}

const featuredByPriority = `-- name: FeaturedByPriority :many
SELECT priority, COUNT(*) AS count FROM properties
WHERE is_featured = 1 AND status = 'active'
GROUP BY priority ORDER BY count DESC, priority`

func (q *Queries) FeaturedByPriority(ctx context.Context) ([]GroupCount, error) {
	rows, err := q.db.QueryContext(ctx, featuredByPriority)
	if err != nil {
		return nil, err
	}
	return scanGroupCounts(rows)
}

const listFeaturedProperties = `-- name: ListFeaturedProperties :many
SELECT ` + propertyColumns + ` FROM properties
WHERE is_featured = 1 AND status = 'active'
ORDER BY moderated_at DESC, id DESC LIMIT ?`

func (q *Queries) ListFeaturedProperties(ctx context.Context, limit int64) ([]Property, error) {
	rows, err := q.db.QueryContext(ctx, listFeaturedProperties, limit)
	if err != nil {
		return nil, err
	}
	return scanProperties(rows)
}

const sumPropertyViews = `-- name: SumPropertyViews :one
SELECT CAST(COALESCE(SUM(views), 0) AS INTEGER) FROM properties`

func (q *Queries) SumPropertyViews(ctx context.Context) (int64, error) {
	var total int64
	err := q.db.QueryRowContext(ctx, sumPropertyViews).Scan(&total)
	return total, err
}

const listRecentProperties = `-- name: ListRecentProperties :many
SELECT ` + propertyColumns + ` FROM properties ORDER BY created_at DESC, id DESC LIMIT ?`

func (q *Queries) ListRecentProperties(ctx context.Context, limit int64) ([]Property, error) {
	rows, err := q.db.QueryContext(ctx, listRecentProperties, limit)
	if err != nil {
		return nil, err
	}
	return scanProperties(rows)
}

const listRecentUsers = `-- name: ListRecentUsers :many
SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC, id DESC LIMIT ?`

func (q *Queries) ListRecentUsers(ctx context.Context, limit int64) ([]User, error) {
	rows, err := q.db.QueryContext(ctx, listRecentUsers, limit)
	if err != nil {
		return nil, err
	}
	return scanUsers(rows)
}
