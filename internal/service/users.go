// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/saramoussaya/barryland/internal/auth"
	mailer "github.com/saramoussaya/barryland/internal/mail"
	"github.com/saramoussaya/barryland/internal/model"
	"github.com/saramoussaya/barryland/internal/store"
	"github.com/saramoussaya/barryland/internal/tasks"
	"github.com/saramoussaya/barryland/internal/util"
)

// Account limits.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
	maxNameLength     = 100
)

// ErrInvalidCredentials is returned by Login for an unknown email or wrong
// password. It matches ErrUnauthorized.
var ErrInvalidCredentials = fmt.Errorf("invalid email or password: %w", ErrUnauthorized)

// ErrAccountLocked is returned while a user is locked out. It matches
// ErrForbidden.
var ErrAccountLocked = fmt.Errorf("account temporarily locked: %w", ErrForbidden)

// RegisterInput is a new account request.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Role      string
}

// ProfileInput is the editable part of an account.
type ProfileInput struct {
	FirstName string
	LastName  string
	Phone     string
}

// LoginResult is a successful authentication.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserView  `json:"user"`
}

// AccountPolicy holds lockout and reset settings.
type AccountPolicy struct {
	MaxLoginAttempts int
	LockoutDuration  time.Duration
	ResetCodeTTL     time.Duration
}

// UserService manages accounts and authentication.
type UserService struct {
	db         *sql.DB
	queries    *store.Queries
	tokens     *auth.TokenIssuer
	sender     mailer.Sender
	runner     tasks.Runner
	audit      *AuditService
	stats      *StatsService
	properties *PropertyService
	policy     AccountPolicy
	logger     *slog.Logger
	now        func() time.Time
}

// UserDeps groups the collaborators of UserService.
type UserDeps struct {
	Tokens     *auth.TokenIssuer
	Sender     mailer.Sender
	Runner     tasks.Runner
	Audit      *AuditService
	Stats      *StatsService
	Properties *PropertyService
	Policy     AccountPolicy
	Logger     *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(db *sql.DB, deps UserDeps) *UserService {
	if deps.Policy.MaxLoginAttempts <= 0 {
		deps.Policy.MaxLoginAttempts = 5
	}
	if deps.Policy.LockoutDuration <= 0 {
		deps.Policy.LockoutDuration = 15 * time.Minute
	}
	if deps.Policy.ResetCodeTTL <= 0 {
		deps.Policy.ResetCodeTTL = 15 * time.Minute
	}
	return &UserService{
		db:         db,
		queries:    store.New(db),
		tokens:     deps.Tokens,
		sender:     deps.Sender,
		runner:     deps.Runner,
		audit:      deps.Audit,
		stats:      deps.Stats,
		properties: deps.Properties,
		policy:     deps.Policy,
		logger:     deps.Logger.With("category", model.EventCategoryUser),
		now:        time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func validatePassword(verr *ValidationError, field, password string) {
	switch {
	case len(password) < MinPasswordLength:
		verr.Add(field, fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	case len(password) > MaxPasswordLength:
		verr.Add(field, "is too long")
	}
}

func (in *ProfileInput) normalize() {
	in.FirstName = sanitizePlain(in.FirstName)
	in.LastName = sanitizePlain(in.LastName)
	in.Phone = strings.TrimSpace(in.Phone)
}

func (in ProfileInput) validate(verr *ValidationError) {
	if in.FirstName == "" {
		verr.Add("first_name", "is required")
	} else if len(in.FirstName) > maxNameLength {
		verr.Add("first_name", "is too long")
	}
	if len(in.LastName) > maxNameLength {
		verr.Add("last_name", "is too long")
	}
	if len(in.Phone) > 32 {
		verr.Add("phone", "is too long")
	}
}

// Register creates a particular or professional account.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (UserView, error) {
	in.Email = normalizeEmail(in.Email)
	if in.Role == "" {
		in.Role = model.RoleParticular
	}
	profile := ProfileInput{FirstName: in.FirstName, LastName: in.LastName, Phone: in.Phone}
	profile.normalize()

	verr := &ValidationError{}
	if !validEmail(in.Email) {
		verr.Add("email", "must be a valid email address")
	}
	validatePassword(verr, "password", in.Password)
	profile.validate(verr)
	if !model.IsSelfServiceRole(in.Role) {
		verr.Add("role", "must be particular or professional")
	}
	if err := verr.OrNil(); err != nil {
		return UserView{}, err
	}

	if n, err := s.queries.CountUsersByEmail(ctx, in.Email); err != nil {
		return UserView{}, storeErr("check email", "user", err)
	} else if n > 0 {
		return UserView{}, fmt.Errorf("email already registered: %w", ErrConflict)
	}
	if profile.Phone != "" {
		if n, err := s.queries.CountUsersByPhone(ctx, profile.Phone); err != nil {
			return UserView{}, storeErr("check phone", "user", err)
		} else if n > 0 {
			return UserView{}, fmt.Errorf("phone already registered: %w", ErrConflict)
		}
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return UserView{}, fmt.Errorf("hashing password: %w", err)
	}

	now := s.now().UTC()
	user, err := s.queries.CreateUser(ctx, store.CreateUserParams{
		Email:        in.Email,
		Phone:        util.NullStringFromValue(profile.Phone),
		PasswordHash: hash,
		FirstName:    profile.FirstName,
		LastName:     profile.LastName,
		Role:         in.Role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return UserView{}, storeErr("create user", "user", err)
	}

	s.audit.RecordActivity(Activity{
		UserID:     user.ID,
		Action:     model.ActivityRegister,
		TargetID:   strconv.FormatInt(user.ID, 10),
		TargetType: model.TargetUser,
		Details:    map[string]any{"role": user.Role},
	})
	s.stats.Invalidate(ctx)
	return NewUserView(user), nil
}

// Login checks credentials and issues an access token. Repeated failures
// lock the account for the policy's lockout duration.
func (s *UserService) Login(ctx context.Context, email, password, ip string) (LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}

	user, err := s.queries.GetUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		s.logger.Warn("login failed: unknown email", "category", model.EventCategoryAuth, "ip", ip)
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, storeErr("load user", "user", err)
	}

	now := s.now().UTC()
	if user.LockedUntil.Valid && user.LockedUntil.Time.After(now) {
		return LoginResult{}, ErrAccountLocked
	}

	ok, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return LoginResult{}, s.recordFailedLogin(ctx, user, ip, now)
	}
	if !user.IsActive {
		return LoginResult{}, fmt.Errorf("account disabled: %w", ErrForbidden)
	}

	if err := s.queries.RecordSuccessfulLogin(ctx, store.RecordSuccessfulLoginParams{
		LastLoginAt: util.NullTimeFromValue(now),
		UpdatedAt:   now,
		ID:          user.ID,
	}); err != nil {
		return LoginResult{}, storeErr("record login", "user", err)
	}
	user.LastLoginAt = util.NullTimeFromValue(now)

	if auth.NeedsRehash(user.PasswordHash) {
		s.rehash(ctx, user.ID, password)
	}

	token, err := s.tokens.Issue(auth.Claims{UserID: user.ID, Role: user.Role})
	if err != nil {
		return LoginResult{}, fmt.Errorf("issuing token: %w", err)
	}

	s.audit.RecordActivity(Activity{
		UserID:     user.ID,
		Action:     model.ActivityLogin,
		TargetID:   strconv.FormatInt(user.ID, 10),
		TargetType: model.TargetUser,
		Details:    map[string]any{"ip": ip},
	})
	return LoginResult{Token: token, ExpiresAt: now.Add(s.tokens.TTL()), User: NewUserView(user)}, nil
}

func (s *UserService) recordFailedLogin(ctx context.Context, user store.User, ip string, now time.Time) error {
	attempts, err := s.queries.IncrementLoginAttempts(ctx, store.IncrementLoginAttemptsParams{UpdatedAt: now, ID: user.ID})
	if err != nil {
		return storeErr("count login attempt", "user", err)
	}
	if attempts < int64(s.policy.MaxLoginAttempts) {
		s.logger.Warn("login failed: wrong password", "category", model.EventCategoryAuth,
			"user_id", user.ID, "ip", ip, "attempts", attempts)
		return ErrInvalidCredentials
	}

	until := now.Add(s.policy.LockoutDuration)
	if err := s.queries.LockUser(ctx, store.LockUserParams{
		LockedUntil: util.NullTimeFromValue(until),
		UpdatedAt:   now,
		ID:          user.ID,
	}); err != nil {
		return storeErr("lock user", "user", err)
	}
	s.logger.Warn("account locked after failed logins", "category", model.EventCategoryAuth,
		"user_id", user.ID, "ip", ip, "attempts", attempts, "locked_until", until)
	return ErrAccountLocked
}

// rehash upgrades a stored hash made with older parameters. Failure keeps
// the old, still valid hash.
func (s *UserService) rehash(ctx context.Context, userID int64, password string) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return
	}
	if err := s.queries.UpdateUserPassword(ctx, store.UpdateUserPasswordParams{
		PasswordHash: hash,
		UpdatedAt:    s.now().UTC(),
		ID:           userID,
	}); err != nil {
		s.logger.Warn("password rehash failed", "user_id", userID, "error", err)
	}
}

// RequestPasswordReset emails a one-time code. Unknown addresses succeed
// silently so the endpoint cannot be used to probe for accounts.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if !validEmail(email) {
		return NewValidationError("email", "must be a valid email address")
	}

	user, err := s.queries.GetUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return storeErr("load user", "user", err)
	}
	if !user.IsActive {
		return nil
	}

	code, hash, err := auth.GenerateResetCode()
	if err != nil {
		return err
	}
	now := s.now().UTC()
	if err := s.queries.SetResetCode(ctx, store.SetResetCodeParams{
		ResetCodeHash:      hash,
		ResetCodeExpiresAt: util.NullTimeFromValue(now.Add(s.policy.ResetCodeTTL)),
		UpdatedAt:          now,
		ID:                 user.ID,
	}); err != nil {
		return storeErr("store reset code", "user", err)
	}

	msg := mailer.Message{
		To:       user.Email,
		Template: mailer.TemplateResetCode,
		Data: mailer.Data{
			Name:      user.FirstName,
			Code:      code,
			ExpiresIn: fmt.Sprintf("%d minutes", int(s.policy.ResetCodeTTL.Minutes())),
		},
	}
	s.runner.Submit("reset-code-email", func(ctx context.Context) error {
		return s.sender.Send(ctx, msg)
	})
	return nil
}

// ResetPassword sets a new password when code matches the pending reset
// code. The code is single use and the lockout is lifted.
func (s *UserService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = normalizeEmail(email)
	verr := &ValidationError{}
	if strings.TrimSpace(code) == "" {
		verr.Add("code", "is required")
	}
	validatePassword(verr, "password", newPassword)
	if err := verr.OrNil(); err != nil {
		return err
	}

	invalid := NewValidationError("code", "is invalid or expired")
	user, err := s.queries.GetUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return invalid
	}
	if err != nil {
		return storeErr("load user", "user", err)
	}

	now := s.now().UTC()
	expired := !user.ResetCodeExpiresAt.Valid || !user.ResetCodeExpiresAt.Time.After(now)
	if expired || !auth.CheckResetCode(strings.TrimSpace(code), user.ResetCodeHash) {
		return invalid
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	// Clears the reset code and any lockout along with the hash.
	if err := s.queries.UpdateUserPassword(ctx, store.UpdateUserPasswordParams{
		PasswordHash: hash,
		UpdatedAt:    now,
		ID:           user.ID,
	}); err != nil {
		return storeErr("reset password", "user", err)
	}

	s.audit.RecordActivity(Activity{
		UserID:     user.ID,
		Action:     model.ActivityPasswordReset,
		TargetID:   strconv.FormatInt(user.ID, 10),
		TargetType: model.TargetUser,
	})
	return nil
}

// Get returns a user by id.
func (s *UserService) Get(ctx context.Context, id int64) (UserView, error) {
	user, err := s.queries.GetUserByID(ctx, id)
	if err != nil {
		return UserView{}, storeErr("load user", "user", err)
	}
	return NewUserView(user), nil
}

// UpdateProfile changes the caller's names and phone.
func (s *UserService) UpdateProfile(ctx context.Context, actor model.Actor, in ProfileInput) (UserView, error) {
	in.normalize()
	verr := &ValidationError{}
	in.validate(verr)
	if err := verr.OrNil(); err != nil {
		return UserView{}, err
	}

	user, err := s.queries.UpdateUserProfile(ctx, store.UpdateUserProfileParams{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     util.NullStringFromValue(in.Phone),
		UpdatedAt: s.now().UTC(),
		ID:        actor.UserID,
	})
	if err != nil {
		return UserView{}, storeErr("update profile", "user", err)
	}

	s.audit.RecordActivity(Activity{
		UserID:     actor.UserID,
		Action:     model.ActivityProfileUpdate,
		TargetID:   strconv.FormatInt(actor.UserID, 10),
		TargetType: model.TargetUser,
	})
	return NewUserView(user), nil
}

// UpdatePreferences turns notification emails on or off for the caller.
func (s *UserService) UpdatePreferences(ctx context.Context, actor model.Actor, emailNotifications bool) (UserView, error) {
	user, err := s.queries.UpdateUserPreferences(ctx, store.UpdateUserPreferencesParams{
		EmailNotifications: sql.NullBool{Bool: emailNotifications, Valid: true},
		UpdatedAt:          s.now().UTC(),
		ID:                 actor.UserID,
	})
	if err != nil {
		return UserView{}, storeErr("update preferences", "user", err)
	}
	return NewUserView(user), nil
}

// List returns all users, newest first. Admin only.
func (s *UserService) List(ctx context.Context, actor model.Actor, p Page) (Paged[UserView], error) {
	if !actor.IsAdmin() {
		return Paged[UserView]{}, forbidden("listing users requires admin role")
	}
	p = p.normalize()
	users, err := s.queries.ListUsers(ctx, store.ListUsersParams{Limit: p.Limit, Offset: p.Offset})
	if err != nil {
		return Paged[UserView]{}, storeErr("list users", "user", err)
	}
	total, err := s.queries.CountUsers(ctx)
	if err != nil {
		return Paged[UserView]{}, storeErr("count users", "user", err)
	}
	return newPaged(NewUserViews(users), total, p), nil
}

// adminTarget checks that actor is an admin acting on someone else.
func (s *UserService) adminTarget(ctx context.Context, actor model.Actor, userID int64, what string) (store.User, error) {
	if !actor.IsAdmin() {
		return store.User{}, forbidden("%s requires admin role", what)
	}
	if actor.UserID == userID {
		return store.User{}, fmt.Errorf("admins cannot %s on their own account: %w", what, ErrConflict)
	}
	user, err := s.queries.GetUserByID(ctx, userID)
	if err != nil {
		return store.User{}, storeErr("load user", "user", err)
	}
	return user, nil
}

// SetRole changes another user's role. Admin only.
func (s *UserService) SetRole(ctx context.Context, actor model.Actor, userID int64, role string) (UserView, error) {
	if !model.IsValidRole(role) {
		return UserView{}, NewValidationError("role", "must be particular, professional or admin")
	}
	user, err := s.adminTarget(ctx, actor, userID, "change role")
	if err != nil {
		return UserView{}, err
	}

	updated, err := s.queries.UpdateUserRole(ctx, store.UpdateUserRoleParams{
		Role:      role,
		UpdatedAt: s.now().UTC(),
		ID:        user.ID,
	})
	if err != nil {
		return UserView{}, storeErr("update role", "user", err)
	}

	s.audit.RecordAdminAction(AdminAction{
		AdminID:    actor.UserID,
		Action:     model.AdminActionUpdateUserRole,
		TargetID:   strconv.FormatInt(user.ID, 10),
		TargetType: model.TargetUser,
		Details:    map[string]any{"previous_role": user.Role, "role": role},
		IP:         actor.IP,
		UserAgent:  actor.UserAgent,
	})
	s.stats.Invalidate(ctx)
	return NewUserView(updated), nil
}

// SetActive enables or disables another user's account. Admin only.
func (s *UserService) SetActive(ctx context.Context, actor model.Actor, userID int64, active bool) error {
	user, err := s.adminTarget(ctx, actor, userID, "change status")
	if err != nil {
		return err
	}
	if err := s.queries.SetUserActive(ctx, store.SetUserActiveParams{
		IsActive:  active,
		UpdatedAt: s.now().UTC(),
		ID:        user.ID,
	}); err != nil {
		return storeErr("set user active", "user", err)
	}

	s.audit.RecordAdminAction(AdminAction{
		AdminID:    actor.UserID,
		Action:     model.AdminActionSetUserActive,
		TargetID:   strconv.FormatInt(user.ID, 10),
		TargetType: model.TargetUser,
		Details:    map[string]any{"active": active},
		IP:         actor.IP,
		UserAgent:  actor.UserAgent,
	})
	s.stats.Invalidate(ctx)
	return nil
}

// Delete removes another user with their listings, media, favorites and
// notifications. Admin only.
func (s *UserService) Delete(ctx context.Context, actor model.Actor, userID int64) error {
	user, err := s.adminTarget(ctx, actor, userID, "delete")
	if err != nil {
		return err
	}

	propertyIDs, err := s.queries.ListPropertyIDsByOwner(ctx, user.ID)
	if err != nil {
		return storeErr("list user properties", "property", err)
	}
	var media []store.PropertyMedium
	for _, id := range propertyIDs {
		m, err := s.queries.ListPropertyMedia(ctx, id)
		if err != nil {
			return storeErr("list media", "media", err)
		}
		media = append(media, m...)
	}

	err = inTx(ctx, s.db, func(q *store.Queries) error {
		for _, id := range propertyIDs {
			if err := q.RemoveFavoritesByProperty(ctx, id); err != nil {
				return err
			}
			if err := q.DeletePropertyMedia(ctx, id); err != nil {
				return err
			}
			if err := q.DeleteProperty(ctx, id); err != nil {
				return err
			}
		}
		if err := q.RemoveFavoritesByUser(ctx, user.ID); err != nil {
			return err
		}
		if err := q.DeleteNotificationsByUser(ctx, user.ID); err != nil {
			return err
		}
		return q.DeleteUser(ctx, user.ID)
	})
	if err != nil {
		return storeErr("delete user", "user", err)
	}

	if s.properties != nil {
		s.properties.removeBlobs(media)
		for _, id := range propertyIDs {
			s.runner.Submit("search-remove", func(ctx context.Context) error {
				return s.properties.indexer.Remove(ctx, id)
			})
		}
	}

	s.audit.RecordAdminAction(AdminAction{
		AdminID:    actor.UserID,
		Action:     model.AdminActionDeleteUser,
		TargetID:   strconv.FormatInt(user.ID, 10),
		TargetType: model.TargetUser,
		Details:    map[string]any{"email": user.Email, "properties": len(propertyIDs)},
		IP:         actor.IP,
		UserAgent:  actor.UserAgent,
	})
	s.stats.Invalidate(ctx)
	return nil
}
