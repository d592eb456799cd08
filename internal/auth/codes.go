// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// ResetCodeDigits is the length of a password reset code.
const ResetCodeDigits = 6

// GenerateResetCode returns a random numeric one-time code and its hash.
// Only the hash is stored; the code is sent to the user.
func GenerateResetCode() (code, hash string, err error) {
	limit := big.NewInt(1_000_000)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", "", fmt.Errorf("generating reset code: %w", err)
	}
	code = fmt.Sprintf("%0*d", ResetCodeDigits, n.Int64())
	hash, err = HashArgon2(code)
	if err != nil {
		return "", "", err
	}
	return code, hash, nil
}

// CheckResetCode compares a submitted code with its stored hash.
func CheckResetCode(code, hash string) bool {
	if code == "" || hash == "" {
		return false
	}
	ok, err := VerifyArgon2(code, hash)
	return err == nil && ok
}
