// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Event levels
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event categories
const (
	EventCategoryAuth       = "auth"
	EventCategoryProperty   = "property"
	EventCategoryUser       = "user"
	EventCategoryModeration = "moderation"
	EventCategoryTasks      = "tasks"
	EventCategorySystem     = "system"
	EventCategoryCache      = "cache"
)
