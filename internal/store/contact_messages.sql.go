// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const contactMessageColumns = `id, sender_id, recipient_id, property_id, name, email, phone, subject, body,
    status, read_at, created_at, updated_at`

func scanContactMessage(row rowScanner) (ContactMessage, error) {
	var i ContactMessage
	err := row.Scan(
		&i.ID,
		&i.SenderID,
		&i.RecipientID,
		&i.PropertyID,
		&i.Name,
		&i.Email,
		&i.Phone,
		&i.Subject,
		&i.Body,
		&i.Status,
		&i.ReadAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createContactMessage = `-- name: CreateContactMessage :one
INSERT INTO contact_messages (sender_id, recipient_id, property_id, name, email, phone, subject, body, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + contactMessageColumns

type CreateContactMessageParams struct {
	SenderID    sql.NullInt64 `json:"sender_id"`
	RecipientID sql.NullInt64 `json:"recipient_id"`
	PropertyID  sql.NullInt64 `json:"property_id"`
	Name        string        `json:"name"`
	Email       string        `json:"email"`
	Phone       string        `json:"phone"`
	Subject     string        `json:"subject"`
	Body        string        `json:"body"`
	Status      string        `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func (q *Queries) CreateContactMessage(ctx context.Context, arg CreateContactMessageParams) (ContactMessage, error) {
	row := q.db.QueryRowContext(ctx, createContactMessage,
		arg.SenderID,
		arg.RecipientID,
		arg.PropertyID,
		arg.Name,
		arg.Email,
		arg.Phone,
		arg.Subject,
		arg.Body,
		arg.Status,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanContactMessage(row)
}

const getContactMessage = `-- name: GetContactMessage :one
SELECT ` + contactMessageColumns + ` FROM contact_messages WHERE id = ?`

func (q *Queries) GetContactMessage(ctx context.Context, id int64) (ContactMessage, error) {
	return scanContactMessage(q.db.QueryRowContext(ctx, getContactMessage, id))
}

// A zero recipient lists every message, for admins.
const listContactMessages = `-- name: ListContactMessages :many
SELECT ` + contactMessageColumns + ` FROM contact_messages
WHERE (? = 0 OR recipient_id = ?) AND (? = '' OR status = ?)
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?`

type ListContactMessagesParams struct {
	RecipientID int64  `json:"recipient_id"`
	Status      string `json:"status"`
	Limit       int64  `json:"limit"`
	Offset      int64  `json:"offset"`
}

func (q *Queries) ListContactMessages(ctx context.Context, arg ListContactMessagesParams) ([]ContactMessage, error) {
	rows, err := q.db.QueryContext(ctx, listContactMessages,
		arg.RecipientID, arg.RecipientID,
		arg.Status, arg.Status,
		arg.Limit, arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := []ContactMessage{}
	for rows.Next() {
		i, err := scanContactMessage(rows)
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

const countContactMessages = `-- name: CountContactMessages :one
SELECT COUNT(*) FROM contact_messages
WHERE (? = 0 OR recipient_id = ?) AND (? = '' OR status = ?)`

type CountContactMessagesParams struct {
	RecipientID int64  `json:"recipient_id"`
	Status      string `json:"status"`
}

func (q *Queries) CountContactMessages(ctx context.Context, arg CountContactMessagesParams) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countContactMessages,
		arg.RecipientID, arg.RecipientID,
		arg.Status, arg.Status,
	).Scan(&count)
	return count, err
}

const updateContactMessageStatus = `-- name: UpdateContactMessageStatus :one
UPDATE contact_messages SET status = ?, read_at = COALESCE(read_at, ?), updated_at = ?
WHERE id = ?
RETURNING ` + contactMessageColumns

type UpdateContactMessageStatusParams struct {
	Status    string       `json:"status"`
	ReadAt    sql.NullTime `json:"read_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	ID        int64        `json:"id"`
}

func (q *Queries) UpdateContactMessageStatus(ctx context.Context, arg UpdateContactMessageStatusParams) (ContactMessage, error) {
	row := q.db.QueryRowContext(ctx, updateContactMessageStatus, arg.Status, arg.ReadAt, arg.UpdatedAt, arg.ID)
	return scanContactMessage(row)
}
