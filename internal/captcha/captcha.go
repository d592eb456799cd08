// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package captcha verifies hCaptcha tokens submitted with public contact forms.
package captcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultVerifyURL is the hCaptcha verification endpoint.
	DefaultVerifyURL = "https://api.hcaptcha.com/siteverify"
	verifyTimeout    = 10 * time.Second
)

var (
	// ErrRequired is returned when no token was submitted.
	ErrRequired = errors.New("captcha: response required")
	// ErrInvalid is returned when hCaptcha rejected the token.
	ErrInvalid = errors.New("captcha: verification failed")
)

// Verifier checks a captcha token.
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

// Disabled accepts every request. Used when no secret is configured.
type Disabled struct{}

// Verify implements Verifier.
func (Disabled) Verify(context.Context, string, string) error { return nil }

// verifyResponse represents the hCaptcha API response.
type verifyResponse struct {
	Success     bool      `json:"success"`
	ChallengeTS time.Time `json:"challenge_ts"`
	Hostname    string    `json:"hostname"`
	ErrorCodes  []string  `json:"error-codes"`
}

// HCaptcha verifies tokens against the hCaptcha API.
type HCaptcha struct {
	secret    string
	verifyURL string
	client    *http.Client
	logger    *slog.Logger
}

// NewHCaptcha creates a verifier. An empty verifyURL uses DefaultVerifyURL.
func NewHCaptcha(secret, verifyURL string, logger *slog.Logger) *HCaptcha {
	if verifyURL == "" {
		verifyURL = DefaultVerifyURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HCaptcha{
		secret:    secret,
		verifyURL: verifyURL,
		client:    &http.Client{Timeout: verifyTimeout},
		logger:    logger,
	}
}

// Verify implements Verifier. Transport failures are returned as-is so the
// caller can tell them apart from a rejected token.
func (h *HCaptcha) Verify(ctx context.Context, token, remoteIP string) error {
	if strings.TrimSpace(token) == "" {
		return ErrRequired
	}

	data := url.Values{}
	data.Set("secret", h.secret)
	data.Set("response", token)
	if remoteIP != "" {
		data.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.verifyURL, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("building captcha request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("captcha verification request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var result verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to parse captcha response: %w", err)
	}

	if !result.Success {
		h.logger.Warn("captcha verification failed",
			"error_codes", result.ErrorCodes,
			"ip", remoteIP)
		return ErrInvalid
	}
	return nil
}
