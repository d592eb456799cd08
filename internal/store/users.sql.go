// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const userColumns = `id, email, phone, password_hash, first_name, last_name, role, is_active, is_verified,
    login_attempts, locked_until, last_login_at, email_notifications, reset_code_hash, reset_code_expires_at,
    created_at, updated_at`

func scanUser(row rowScanner) (User, error) {
	var i User
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.Phone,
		&i.PasswordHash,
		&i.FirstName,
		&i.LastName,
		&i.Role,
		&i.IsActive,
		&i.IsVerified,
		&i.LoginAttempts,
		&i.LockedUntil,
		&i.LastLoginAt,
		&i.EmailNotifications,
		&i.ResetCodeHash,
		&i.ResetCodeExpiresAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func scanUsers(rows *sql.Rows) ([]User, error) {
	defer func() { _ = rows.Close() }()
	items := []User{}
	for rows.Next() {
		i, err := scanUser(rows)
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

const createUser = `-- name: CreateUser :one
INSERT INTO users (email, phone, password_hash, first_name, last_name, role, is_active, is_verified, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + userColumns

type CreateUserParams struct {
	Email        string         `json:"email"`
	Phone        sql.NullString `json:"phone"`
	PasswordHash string         `json:"password_hash"`
	FirstName    string         `json:"first_name"`
	LastName     string         `json:"last_name"`
	Role         string         `json:"role"`
	IsActive     bool           `json:"is_active"`
	IsVerified   bool           `json:"is_verified"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, createUser,
		arg.Email,
		arg.Phone,
		arg.PasswordHash,
		arg.FirstName,
		arg.LastName,
		arg.Role,
		arg.IsActive,
		arg.IsVerified,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanUser(row)
}

const getUserByID = `-- name: GetUserByID :one
SELECT ` + userColumns + ` FROM users WHERE id = ?`

func (q *Queries) GetUserByID(ctx context.Context, id int64) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByID, id))
}

const getUserByEmail = `-- name: GetUserByEmail :one
SELECT ` + userColumns + ` FROM users WHERE email = ?`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByEmail, email))
}

const countUsersByEmail = `-- name: CountUsersByEmail :one
SELECT COUNT(*) FROM users WHERE email = ?`

func (q *Queries) CountUsersByEmail(ctx context.Context, email string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countUsersByEmail, email).Scan(&count)
	return count, err
}

const countUsersByPhone = `-- name: CountUsersByPhone :one
SELECT COUNT(*) FROM users WHERE phone = ?`

func (q *Queries) CountUsersByPhone(ctx context.Context, phone string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countUsersByPhone, phone).Scan(&count)
	return count, err
}

const updateUserProfile = `-- name: UpdateUserProfile :one
UPDATE users SET first_name = ?, last_name = ?, phone = ?, updated_at = ?
WHERE id = ?
RETURNING ` + userColumns

type UpdateUserProfileParams struct {
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	Phone     sql.NullString `json:"phone"`
	UpdatedAt time.Time      `json:"updated_at"`
	ID        int64          `json:"id"`
}

func (q *Queries) UpdateUserProfile(ctx context.Context, arg UpdateUserProfileParams) (User, error) {
	row := q.db.QueryRowContext(ctx, updateUserProfile,
		arg.FirstName,
		arg.LastName,
		arg.Phone,
		arg.UpdatedAt,
		arg.ID,
	)
	return scanUser(row)
}

const updateUserPreferences = `-- name: UpdateUserPreferences :one
UPDATE users SET email_notifications = ?, updated_at = ?
WHERE id = ?
RETURNING ` + userColumns

type UpdateUserPreferencesParams struct {
	EmailNotifications sql.NullBool `json:"email_notifications"`
	UpdatedAt          time.Time    `json:"updated_at"`
	ID                 int64        `json:"id"`
}

func (q *Queries) UpdateUserPreferences(ctx context.Context, arg UpdateUserPreferencesParams) (User, error) {
	row := q.db.QueryRowContext(ctx, updateUserPreferences, arg.EmailNotifications, arg.UpdatedAt, arg.ID)
	return scanUser(row)
}

const updateUserRole = `-- name: UpdateUserRole :one
UPDATE users SET role = ?, updated_at = ?
WHERE id = ?
RETURNING ` + userColumns

type UpdateUserRoleParams struct {
	Role      string    `json:"role"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        int64     `json:"id"`
}

func (q *Queries) UpdateUserRole(ctx context.Context, arg UpdateUserRoleParams) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, updateUserRole, arg.Role, arg.UpdatedAt, arg.ID))
}

const setUserActive = `-- name: SetUserActive :exec
UPDATE users SET is_active = ?, updated_at = ? WHERE id = ?`

type SetUserActiveParams struct {
	IsActive  bool      `json:"is_active"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        int64     `json:"id"`
}

func (q *Queries) SetUserActive(ctx context.Context, arg SetUserActiveParams) error {
	_, err := q.db.ExecContext(ctx, setUserActive, arg.IsActive, arg.UpdatedAt, arg.ID)
	return err
}

const incrementLoginAttempts = `-- name: IncrementLoginAttempts :one
UPDATE users SET login_attempts = login_attempts + 1, updated_at = ?
WHERE id = ?
RETURNING login_attempts`

type IncrementLoginAttemptsParams struct {
	UpdatedAt time.Time `json:"updated_at"`
	ID        int64     `json:"id"`
}

func (q *Queries) IncrementLoginAttempts(ctx context.Context, arg IncrementLoginAttemptsParams) (int64, error) {
	var attempts int64
	err := q.db.QueryRowContext(ctx, incrementLoginAttempts, arg.UpdatedAt, arg.ID).Scan(&attempts)
	return attempts, err
}

const lockUser = `-- name: LockUser :exec
UPDATE users SET locked_until = ?, updated_at = ? WHERE id = ?`

type LockUserParams struct {
	LockedUntil sql.NullTime `json:"locked_until"`
	UpdatedAt   time.Time    `json:"updated_at"`
	ID          int64        `json:"id"`
}

func (q *Queries) LockUser(ctx context.Context, arg LockUserParams) error {
	_, err := q.db.ExecContext(ctx, lockUser, arg.LockedUntil, arg.UpdatedAt, arg.ID)
	return err
}

const recordSuccessfulLogin = `-- name: RecordSuccessfulLogin :exec
UPDATE users SET login_attempts = 0, locked_until = NULL, last_login_at = ?, updated_at = ?
WHERE id = ?`

type RecordSuccessfulLoginParams struct {
	LastLoginAt sql.NullTime `json:"last_login_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	ID          int64        `json:"id"`
}

func (q *Queries) RecordSuccessfulLogin(ctx context.Context, arg RecordSuccessfulLoginParams) error {
	_, err := q.db.ExecContext(ctx, recordSuccessfulLogin, arg.LastLoginAt, arg.UpdatedAt, arg.ID)
	return err
}

const setResetCode = `-- name: SetResetCode :exec
UPDATE users SET reset_code_hash = ?, reset_code_expires_at = ?, updated_at = ?
WHERE id = ?`

type SetResetCodeParams struct {
	ResetCodeHash      string       `json:"reset_code_hash"`
	ResetCodeExpiresAt sql.NullTime `json:"reset_code_expires_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
	ID                 int64        `json:"id"`
}

func (q *Queries) SetResetCode(ctx context.Context, arg SetResetCodeParams) error {
	_, err := q.db.ExecContext(ctx, setResetCode,
		arg.ResetCodeHash,
		arg.ResetCodeExpiresAt,
		arg.UpdatedAt,
		arg.ID,
	)
	return err
}

const updateUserPassword = `-- name: UpdateUserPassword :exec
UPDATE users SET password_hash = ?, reset_code_hash = '', reset_code_expires_at = NULL,
    login_attempts = 0, locked_until = NULL, updated_at = ?
WHERE id = ?`

type UpdateUserPasswordParams struct {
	PasswordHash string    `json:"password_hash"`
	UpdatedAt    time.Time `json:"updated_at"`
	ID           int64     `json:"id"`
}

func (q *Queries) UpdateUserPassword(ctx context.Context, arg UpdateUserPasswordParams) error {
	_, err := q.db.ExecContext(ctx, updateUserPassword, arg.PasswordHash, arg.UpdatedAt, arg.ID)
	return err
}

const deleteUser = `-- name: DeleteUser :exec
DELETE FROM users WHERE id = ?`

func (q *Queries) DeleteUser(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteUser, id)
	return err
}

const listUsers = `-- name: ListUsers :many
SELECT ` + userColumns + ` FROM users
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?`

type ListUsersParams struct {
	Limit  int64 `json:"limit"`
	Offset int64 `json:"offset"`
}

func (q *Queries) ListUsers(ctx context.Context, arg ListUsersParams) ([]User, error) {
	rows, err := q.db.QueryContext(ctx, listUsers, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	return scanUsers(rows)
}

const countUsers = `-- name: CountUsers :one
SELECT COUNT(*) FROM users`

func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countUsers).Scan(&count)
	return count, err
}

const countActiveUsers = `-- name: CountActiveUsers :one
SELECT COUNT(*) FROM users WHERE is_active = 1`

func (q *Queries) CountActiveUsers(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countActiveUsers).Scan(&count)
	return count, err
}

const countUsersCreatedSince = `-- name: CountUsersCreatedSince :one
SELECT COUNT(*) FROM users WHERE created_at >= ? AND created_at <= ?`

type CountUsersCreatedSinceParams struct {
	Since time.Time `json:"since"`
	Until time.Time `json:"until"`
}

func (q *Queries) CountUsersCreatedSince(ctx context.Context, arg CountUsersCreatedSinceParams) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countUsersCreatedSince, arg.Since, arg.Until).Scan(&count)
	return count, err
}

const countUsersActiveSince = `-- name: CountUsersActiveSince :one
SELECT COUNT(*) FROM users WHERE last_login_at >= ? AND last_login_at <= ?`

type CountUsersActiveSinceParams struct {
	Since time.Time `json:"since"`
	Until time.Time `json:"until"`
}

func (q *Queries) CountUsersActiveSince(ctx context.Context, arg CountUsersActiveSinceParams) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countUsersActiveSince, arg.Since, arg.Until).Scan(&count)
	return count, err
}

const countUsersByRole = `-- name: CountUsersByRole :many
SELECT role, COUNT(*) AS count FROM users GROUP BY role ORDER BY count DESC, role`

type CountUsersByRoleRow struct {
	Role  string `json:"role"`
	Count int64  `json:"count"`
}

func (q *Queries) CountUsersByRole(ctx context.Context) ([]CountUsersByRoleRow, error) {
	rows, err := q.db.QueryContext(ctx, countUsersByRole)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := []CountUsersByRoleRow{}
	for rows.Next() {
		var i CountUsersByRoleRow
		if err := rows.Scan(&i.Role, &i.Count); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
