// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIssuer(t *testing.T) *TokenIssuer {
	t.Helper()
	ti, err := NewTokenIssuer(TokenConfig{
		Secret:   "test-secret-key-that-is-long-enough-0123",
		Issuer:   "barryland",
		Audience: "barryland-api",
		TTL:      time.Hour,
	})
	require.NoError(t, err)
	return ti
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	ti := newTestIssuer(t)

	raw, err := ti.Issue(Claims{UserID: 42, Role: "admin"})
	require.NoError(t, err)

	claims, err := ti.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestTokenIssuer_Expired(t *testing.T) {
	ti := newTestIssuer(t)
	issuedAt := time.Now().Add(-2 * time.Hour)
	ti.now = func() time.Time { return issuedAt }

	raw, err := ti.Issue(Claims{UserID: 1, Role: "particular"})
	require.NoError(t, err)

	ti.now = time.Now
	_, err = ti.Verify(raw)
	assert.True(t, errors.Is(err, ErrTokenExpired), "err = %v", err)
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	ti := newTestIssuer(t)
	raw, err := ti.Issue(Claims{UserID: 1, Role: "particular"})
	require.NoError(t, err)

	other, err := NewTokenIssuer(TokenConfig{
		Secret:   "another-secret-key-that-is-long-enough-99",
		Issuer:   "barryland",
		Audience: "barryland-api",
	})
	require.NoError(t, err)

	_, err = other.Verify(raw)
	assert.True(t, errors.Is(err, ErrTokenInvalid), "err = %v", err)
}

func TestTokenIssuer_Garbage(t *testing.T) {
	ti := newTestIssuer(t)
	_, err := ti.Verify("not-a-token")
	assert.True(t, errors.Is(err, ErrTokenInvalid))
}

func TestNewTokenIssuer_RequiresSecret(t *testing.T) {
	_, err := NewTokenIssuer(TokenConfig{})
	assert.Error(t, err)
}
