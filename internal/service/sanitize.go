// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// richSanitizer keeps the safe formatting subset of user HTML. Listing
// descriptions go through it.
var richSanitizer = bluemonday.UGCPolicy()

// plainSanitizer strips every tag. Contact bodies and names go through it.
var plainSanitizer = bluemonday.StrictPolicy()

func sanitizeRich(s string) string {
	return strings.TrimSpace(richSanitizer.Sanitize(s))
}

// sanitizePlain strips markup and undoes the entity escaping bluemonday
// applies, so plain text round-trips unchanged.
func sanitizePlain(s string) string {
	return strings.TrimSpace(html.UnescapeString(plainSanitizer.Sanitize(s)))
}
