// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const propertyColumns = `id, owner_id, title, slug, description, transaction_type, property_type, category,
    price, area, bedrooms, bathrooms, address, city, region, latitude, longitude,
    status, moderated_by, moderated_at, rejection_reason, moderation_notes,
    priority, is_promoted, is_featured, is_approved, views, favorites_count,
    published_at, expires_at, created_at, updated_at`

func scanProperty(row rowScanner) (Property, error) {
	var i Property
	err := row.Scan(
		&i.ID,
		&i.OwnerID,
		&i.Title,
		&i.Slug,
		&i.Description,
		&i.TransactionType,
		&i.PropertyType,
		&i.Category,
		&i.Price,
		&i.Area,
		&i.Bedrooms,
		&i.Bathrooms,
		&i.Address,
		&i.City,
		&i.Region,
		&i.Latitude,
		&i.Longitude,
		&i.Status,
		&i.ModeratedBy,
		&i.ModeratedAt,
		&i.RejectionReason,
		&i.ModerationNotes,
		&i.Priority,
		&i.IsPromoted,
		&i.IsFeatured,
		&i.IsApproved,
		&i.Views,
		&i.FavoritesCount,
		&i.PublishedAt,
		&i.ExpiresAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func scanProperties(rows *sql.Rows) ([]Property, error) {
	defer func() { _ = rows.Close() }()
	items := []Property{}
	for rows.Next() {
		i, err := scanProperty(rows)
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

const createProperty = `-- name: CreateProperty :one
INSERT INTO properties (
    owner_id, title, slug, description, transaction_type, property_type, category,
    price, area, bedrooms, bathrooms, address, city, region, latitude, longitude,
    status, priority, expires_at, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + propertyColumns

type CreatePropertyParams struct {
	OwnerID         int64           `json:"owner_id"`
	Title           string          `json:"title"`
	Slug            string          `json:"slug"`
	Description     string          `json:"description"`
	TransactionType string          `json:"transaction_type"`
	PropertyType    string          `json:"property_type"`
	Category        string          `json:"category"`
	Price           float64         `json:"price"`
	Area            float64         `json:"area"`
	Bedrooms        int64           `json:"bedrooms"`
	Bathrooms       int64           `json:"bathrooms"`
	Address         string          `json:"address"`
	City            string          `json:"city"`
	Region          string          `json:"region"`
	Latitude        sql.NullFloat64 `json:"latitude"`
	Longitude       sql.NullFloat64 `json:"longitude"`
	Status          string          `json:"status"`
	Priority        string          `json:"priority"`
	ExpiresAt       sql.NullTime    `json:"expires_at"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (q *Queries) CreateProperty(ctx context.Context, arg CreatePropertyParams) (Property, error) {
	row := q.db.QueryRowContext(ctx, createProperty,
		arg.OwnerID,
		arg.Title,
		arg.Slug,
		arg.Description,
		arg.TransactionType,
		arg.PropertyType,
		arg.Category,
		arg.Price,
		arg.Area,
		arg.Bedrooms,
		arg.Bathrooms,
		arg.Address,
		arg.City,
		arg.Region,
		arg.Latitude,
		arg.Longitude,
		arg.Status,
		arg.Priority,
		arg.ExpiresAt,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanProperty(row)
}

const getPropertyByID = `-- name: GetPropertyByID :one
SELECT ` + propertyColumns + ` FROM properties WHERE id = ?`

func (q *Queries) GetPropertyByID(ctx context.Context, id int64) (Property, error) {
	return scanProperty(q.db.QueryRowContext(ctx, getPropertyByID, id))
}

const getPropertyBySlug = `-- name: GetPropertyBySlug :one
SELECT ` + propertyColumns + ` FROM properties WHERE slug = ?`

func (q *Queries) GetPropertyBySlug(ctx context.Context, slug string) (Property, error) {
	return scanProperty(q.db.QueryRowContext(ctx, getPropertyBySlug, slug))
}

const slugExists = `-- name: SlugExists :one
SELECT COUNT(*) FROM properties WHERE slug = ?`

func (q *Queries) SlugExists(ctx context.Context, slug string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, slugExists, slug).Scan(&count)
	return count, err
}

const updatePropertyContent = `-- name: UpdatePropertyContent :one
UPDATE properties SET
    title = ?, description = ?, transaction_type = ?, property_type = ?, category = ?,
    price = ?, area = ?, bedrooms = ?, bathrooms = ?, address = ?, city = ?, region = ?,
    latitude = ?, longitude = ?, status = ?, is_approved = ?, is_featured = ?, updated_at = ?
WHERE id = ?
RETURNING ` + propertyColumns

type UpdatePropertyContentParams struct {
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	TransactionType string          `json:"transaction_type"`
	PropertyType    string          `json:"property_type"`
	Category        string          `json:"category"`
	Price           float64         `json:"price"`
	Area            float64         `json:"area"`
	Bedrooms        int64           `json:"bedrooms"`
	Bathrooms       int64           `json:"bathrooms"`
	Address         string          `json:"address"`
	City            string          `json:"city"`
	Region          string          `json:"region"`
	Latitude        sql.NullFloat64 `json:"latitude"`
	Longitude       sql.NullFloat64 `json:"longitude"`
	Status          string          `json:"status"`
	IsApproved      bool            `json:"is_approved"`
	IsFeatured      bool            `json:"is_featured"`
	UpdatedAt       time.Time       `json:"updated_at"`
	ID              int64           `json:"id"`
}

func (q *Queries) UpdatePropertyContent(ctx context.Context, arg UpdatePropertyContentParams) (Property, error) {
	row := q.db.QueryRowContext(ctx, updatePropertyContent,
		arg.Title,
		arg.Description,
		arg.TransactionType,
		arg.PropertyType,
		arg.Category,
		arg.Price,
		arg.Area,
		arg.Bedrooms,
		arg.Bathrooms,
		arg.Address,
		arg.City,
		arg.Region,
		arg.Latitude,
		arg.Longitude,
		arg.Status,
		arg.IsApproved,
		arg.IsFeatured,
		arg.UpdatedAt,
		arg.ID,
	)
	return scanProperty(row)
}

const updatePropertyModeration = `-- name: UpdatePropertyModeration :one
UPDATE properties SET
    status = ?, moderated_by = ?, moderated_at = ?, rejection_reason = ?, moderation_notes = ?,
    priority = ?, is_promoted = ?, is_featured = ?, is_approved = ?,
    published_at = ?, expires_at = ?, updated_at = ?
WHERE id = ?
RETURNING ` + propertyColumns

type UpdatePropertyModerationParams struct {
	Status          string        `json:"status"`
	ModeratedBy     sql.NullInt64 `json:"moderated_by"`
	ModeratedAt     sql.NullTime  `json:"moderated_at"`
	RejectionReason string        `json:"rejection_reason"`
	ModerationNotes string        `json:"moderation_notes"`
	Priority        string        `json:"priority"`
	IsPromoted      bool          `json:"is_promoted"`
	IsFeatured      bool          `json:"is_featured"`
	IsApproved      bool          `json:"is_approved"`
	PublishedAt     sql.NullTime  `json:"published_at"`
	ExpiresAt       sql.NullTime  `json:"expires_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
	ID              int64         `json:"id"`
}

func (q *Queries) UpdatePropertyModeration(ctx context.Context, arg UpdatePropertyModerationParams) (Property, error) {
	row := q.db.QueryRowContext(ctx, updatePropertyModeration,
		arg.Status,
		arg.ModeratedBy,
		arg.ModeratedAt,
		arg.RejectionReason,
		arg.ModerationNotes,
		arg.Priority,
		arg.IsPromoted,
		arg.IsFeatured,
		arg.IsApproved,
		arg.PublishedAt,
		arg.ExpiresAt,
		arg.UpdatedAt,
		arg.ID,
	)
	return scanProperty(row)
}

const updatePropertyStatus = `-- name: UpdatePropertyStatus :one
UPDATE properties SET status = ?, updated_at = ? WHERE id = ?
RETURNING ` + propertyColumns

type UpdatePropertyStatusParams struct {
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        int64     `json:"id"`
}

func (q *Queries) UpdatePropertyStatus(ctx context.Context, arg UpdatePropertyStatusParams) (Property, error) {
	return scanProperty(q.db.QueryRowContext(ctx, updatePropertyStatus, arg.Status, arg.UpdatedAt, arg.ID))
}

const renewProperty = `-- name: RenewProperty :one
UPDATE properties SET status = 'active', is_approved = 1, expires_at = ?, updated_at = ? WHERE id = ?
RETURNING ` + propertyColumns

type RenewPropertyParams struct {
	ExpiresAt sql.NullTime `json:"expires_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	ID        int64        `json:"id"`
}

func (q *Queries) RenewProperty(ctx context.Context, arg RenewPropertyParams) (Property, error) {
	return scanProperty(q.db.QueryRowContext(ctx, renewProperty, arg.ExpiresAt, arg.UpdatedAt, arg.ID))
}

const incrementPropertyViews = `-- name: IncrementPropertyViews :exec
UPDATE properties SET views = views + 1 WHERE id = ?`

func (q *Queries) IncrementPropertyViews(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, incrementPropertyViews, id)
	return err
}

const incrementFavoritesCount = `-- name: IncrementFavoritesCount :exec
UPDATE properties SET favorites_count = favorites_count + 1 WHERE id = ?`

func (q *Queries) IncrementFavoritesCount(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, incrementFavoritesCount, id)
	return err
}

// The counter is clamped at zero so concurrent toggles cannot drive it negative.
const decrementFavoritesCount = `-- name: DecrementFavoritesCount :exec
UPDATE properties SET favorites_count = MAX(favorites_count - 1, 0) WHERE id = ?`

func (q *Queries) DecrementFavoritesCount(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, decrementFavoritesCount, id)
	return err
}

const getFavoritesCount = `-- name: GetFavoritesCount :one
SELECT favorites_count FROM properties WHERE id = ?`

func (q *Queries) GetFavoritesCount(ctx context.Context, id int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, getFavoritesCount, id).Scan(&count)
	return count, err
}

const reconcileFavoritesCounts = `-- name: ReconcileFavoritesCounts :execrows
UPDATE properties SET favorites_count = (
    SELECT COUNT(*) FROM user_favorites f WHERE f.property_id = properties.id
)
WHERE favorites_count != (
    SELECT COUNT(*) FROM user_favorites f WHERE f.property_id = properties.id
)`

func (q *Queries) ReconcileFavoritesCounts(ctx context.Context) (int64, error) {
	result, err := q.db.ExecContext(ctx, reconcileFavoritesCounts)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteProperty = `-- name: DeleteProperty :exec
DELETE FROM properties WHERE id = ?`

func (q *Queries) DeleteProperty(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteProperty, id)
	return err
}

const listPropertyIDsByOwner = `-- name: ListPropertyIDsByOwner :many
SELECT id FROM properties WHERE owner_id = ? ORDER BY id`

func (q *Queries) ListPropertyIDsByOwner(ctx context.Context, ownerID int64) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, listPropertyIDsByOwner, ownerID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var ids []int64
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

// Zero values disable a filter.
const propertyFilter = `
WHERE (? = '' OR status = ?)
  AND (? = '' OR transaction_type = ?)
  AND (? = '' OR property_type = ?)
  AND (? = '' OR city = ? COLLATE NOCASE)
  AND (? = 0 OR owner_id = ?)
  AND (? = 0 OR price >= ?)
  AND (? = 0 OR price <= ?)
  AND (? = 0 OR is_featured = 1)`

// PropertyFilter narrows listings. Empty strings and zeros match everything.
type PropertyFilter struct {
	Status          string  `json:"status"`
	TransactionType string  `json:"transaction_type"`
	PropertyType    string  `json:"property_type"`
	City            string  `json:"city"`
	OwnerID         int64   `json:"owner_id"`
	MinPrice        float64 `json:"min_price"`
	MaxPrice        float64 `json:"max_price"`
	FeaturedOnly    bool    `json:"featured_only"`
}

func (f PropertyFilter) args() []any {
	return []any{
		f.Status, f.Status,
		f.TransactionType, f.TransactionType,
		f.PropertyType, f.PropertyType,
		f.City, f.City,
		f.OwnerID, f.OwnerID,
		f.MinPrice, f.MinPrice,
		f.MaxPrice, f.MaxPrice,
		f.FeaturedOnly,
	}
}

const listProperties = `-- name: ListProperties :many
SELECT ` + propertyColumns + ` FROM properties` + propertyFilter + `
ORDER BY is_featured DESC, created_at DESC, id DESC
LIMIT ? OFFSET ?`

type ListPropertiesParams struct {
	PropertyFilter
	Limit  int64 `json:"limit"`
	Offset int64 `json:"offset"`
}

func (q *Queries) ListProperties(ctx context.Context, arg ListPropertiesParams) ([]Property, error) {
	args := append(arg.PropertyFilter.args(), arg.Limit, arg.Offset)
	rows, err := q.db.QueryContext(ctx, listProperties, args...)
	if err != nil {
		return nil, err
	}
	return scanProperties(rows)
}

const countFilteredProperties = `-- name: CountFilteredProperties :one
SELECT COUNT(*) FROM properties` + propertyFilter

func (q *Queries) CountFilteredProperties(ctx context.Context, arg PropertyFilter) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countFilteredProperties, arg.args()...).Scan(&count)
	return count, err
}

const listExpiredActiveProperties = `-- name: ListExpiredActiveProperties :many
SELECT ` + propertyColumns + ` FROM properties
WHERE status = 'active' AND expires_at IS NOT NULL AND expires_at < ?
ORDER BY expires_at
LIMIT ?`

type ListExpiredActivePropertiesParams struct {
	Now   time.Time `json:"now"`
	Limit int64     `json:"limit"`
}

func (q *Queries) ListExpiredActiveProperties(ctx context.Context, arg ListExpiredActivePropertiesParams) ([]Property, error) {
	rows, err := q.db.QueryContext(ctx, listExpiredActiveProperties, arg.Now, arg.Limit)
	if err != nil {
		return nil, err
	}
	return scanProperties(rows)
}

const expireProperty = `-- name: ExpireProperty :execrows
UPDATE properties SET status = 'inactive', is_featured = 0, updated_at = ?
WHERE id = ? AND status = 'active'`

type ExpirePropertyParams struct {
	UpdatedAt time.Time `json:"updated_at"`
	ID        int64     `json:"id"`
}

func (q *Queries) ExpireProperty(ctx context.Context, arg ExpirePropertyParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, expireProperty, arg.UpdatedAt, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const createPropertyMedium = `-- name: CreatePropertyMedium :one
INSERT INTO property_media (property_id, storage_key, filename, mime_type, size, position, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING id, property_id, storage_key, filename, mime_type, size, position, created_at`

type CreatePropertyMediumParams struct {
	PropertyID int64     `json:"property_id"`
	StorageKey string    `json:"storage_key"`
	Filename   string    `json:"filename"`
	MimeType   string    `json:"mime_type"`
	Size       int64     `json:"size"`
	Position   int64     `json:"position"`
	CreatedAt  time.Time `json:"created_at"`
}

func (q *Queries) CreatePropertyMedium(ctx context.Context, arg CreatePropertyMediumParams) (PropertyMedium, error) {
	row := q.db.QueryRowContext(ctx, createPropertyMedium,
		arg.PropertyID,
		arg.StorageKey,
		arg.Filename,
		arg.MimeType,
		arg.Size,
		arg.Position,
		arg.CreatedAt,
	)
	var i PropertyMedium
	err := row.Scan(
		&i.ID,
		&i.PropertyID,
		&i.StorageKey,
		&i.Filename,
		&i.MimeType,
		&i.Size,
		&i.Position,
		&i.CreatedAt,
	)
	return i, err
}

const listPropertyMedia = `-- name: ListPropertyMedia :many
SELECT id, property_id, storage_key, filename, mime_type, size, position, created_at
FROM property_media WHERE property_id = ?
ORDER BY position, id`

func (q *Queries) ListPropertyMedia(ctx context.Context, propertyID int64) ([]PropertyMedium, error) {
	rows, err := q.db.QueryContext(ctx, listPropertyMedia, propertyID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := []PropertyMedium{}
	for rows.Next() {
		var i PropertyMedium
		if err := rows.Scan(
			&i.ID,
			&i.PropertyID,
			&i.StorageKey,
			&i.Filename,
			&i.MimeType,
			&i.Size,
			&i.Position,
			&i.CreatedAt,
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

const deletePropertyMedia = `-- name: DeletePropertyMedia :exec
DELETE FROM property_media WHERE property_id = ?`

func (q *Queries) DeletePropertyMedia(ctx context.Context, propertyID int64) error {
	_, err := q.db.ExecContext(ctx, deletePropertyMedia, propertyID)
	return err
}
