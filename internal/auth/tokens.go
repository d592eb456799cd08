// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

// Token errors.
var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// TokenConfig configures the token issuer.
type TokenConfig struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// Claims are the identity fields carried by an access token.
type Claims struct {
	UserID int64
	Role   string
}

// TokenIssuer signs and verifies HS256 access tokens.
type TokenIssuer struct {
	key []byte
	cfg TokenConfig
	now func() time.Time
}

// NewTokenIssuer creates a token issuer. The secret must be non-empty.
func NewTokenIssuer(cfg TokenConfig) (*TokenIssuer, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token secret is required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return &TokenIssuer{key: []byte(cfg.Secret), cfg: cfg, now: time.Now}, nil
}

// TTL returns the lifetime of issued tokens.
func (ti *TokenIssuer) TTL() time.Duration {
	return ti.cfg.TTL
}

// Issue returns a signed access token for the claims.
func (ti *TokenIssuer) Issue(c Claims) (string, error) {
	now := ti.now()

	token, err := jwt.NewBuilder().
		JwtID(uuid.New().String()).
		Issuer(ti.cfg.Issuer).
		Audience([]string{ti.cfg.Audience}).
		Subject(strconv.FormatInt(c.UserID, 10)).
		IssuedAt(now).
		NotBefore(now).
		Expiration(now.Add(ti.cfg.TTL)).
		Claim("role", c.Role).
		Build()
	if err != nil {
		return "", fmt.Errorf("build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), ti.key))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return string(signed), nil
}

// Verify checks signature, issuer, audience and time claims, and returns the identity.
func (ti *TokenIssuer) Verify(raw string) (Claims, error) {
	token, err := jwt.Parse(
		[]byte(raw),
		jwt.WithKey(jwa.HS256(), ti.key),
		jwt.WithValidate(true),
		jwt.WithIssuer(ti.cfg.Issuer),
		jwt.WithAudience(ti.cfg.Audience),
		jwt.WithClock(jwt.ClockFunc(ti.now)),
	)
	if err != nil {
		if isExpired(err) {
			return Claims{}, fmt.Errorf("verify token: %w", ErrTokenExpired)
		}
		return Claims{}, fmt.Errorf("verify token: %w", ErrTokenInvalid)
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return Claims{}, fmt.Errorf("verify token: missing subject: %w", ErrTokenInvalid)
	}
	userID, err := strconv.ParseInt(subject, 10, 64)
	if err != nil || userID <= 0 {
		return Claims{}, fmt.Errorf("verify token: bad subject: %w", ErrTokenInvalid)
	}

	var role string
	if err := token.Get("role", &role); err != nil || role == "" {
		return Claims{}, fmt.Errorf("verify token: missing role claim: %w", ErrTokenInvalid)
	}

	return Claims{UserID: userID, Role: role}, nil
}

func isExpired(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "exp") && strings.Contains(msg, "not satisfied")
}
