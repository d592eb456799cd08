// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/saramoussaya/barryland/internal/mail"
	"github.com/saramoussaya/barryland/internal/model"
	"github.com/saramoussaya/barryland/internal/search"
	"github.com/saramoussaya/barryland/internal/store"
	"github.com/saramoussaya/barryland/internal/tasks"
)

const (
	maxRejectionReason = 1000
	maxModerationNotes = 2000
)

// ModerationInput is an admin's decision about a listing.
type ModerationInput struct {
	Status          string
	RejectionReason string
	ModerationNotes string
	Featured        bool
}

// ModerationService moves listings between pending, active, rejected and
// inactive. The status change is persisted before returning; the owner
// notification, owner email, admin log and search update run afterwards
// as independent tasks.
type ModerationService struct {
	queries       *store.Queries
	notifications *NotificationService
	audit         *AuditService
	stats         *StatsService
	sender        mail.Sender
	indexer       search.Indexer
	runner        tasks.Runner
	listingTTL    time.Duration
	baseURL       string
	logger        *slog.Logger
	now           func() time.Time
}

// ModerationDeps groups the collaborators of ModerationService.
type ModerationDeps struct {
	Notifications *NotificationService
	Audit         *AuditService
	Stats         *StatsService
	Sender        mail.Sender
	Indexer       search.Indexer
	Runner        tasks.Runner
	ListingTTL    time.Duration
	BaseURL       string
	Logger        *slog.Logger
}

// NewModerationService creates a ModerationService.
func NewModerationService(db *sql.DB, deps ModerationDeps) *ModerationService {
	if deps.ListingTTL <= 0 {
		deps.ListingTTL = model.DefaultListingTTL
	}
	if deps.Indexer == nil {
		deps.Indexer = search.Noop{}
	}
	return &ModerationService{
		queries:       store.New(db),
		notifications: deps.Notifications,
		audit:         deps.Audit,
		stats:         deps.Stats,
		sender:        deps.Sender,
		indexer:       deps.Indexer,
		runner:        deps.Runner,
		listingTTL:    deps.ListingTTL,
		baseURL:       strings.TrimRight(deps.BaseURL, "/"),
		logger:        deps.Logger.With("category", model.EventCategoryModeration),
		now:           time.Now,
	}
}

// SetPropertyStatus applies a moderation decision and returns the updated
// listing.
func (s *ModerationService) SetPropertyStatus(ctx context.Context, actor model.Actor, propertyID int64, in ModerationInput) (store.Property, error) {
	if !actor.IsAdmin() {
		return store.Property{}, forbidden("moderation requires admin role")
	}

	in.RejectionReason = strings.TrimSpace(in.RejectionReason)
	in.ModerationNotes = strings.TrimSpace(in.ModerationNotes)
	verr := &ValidationError{}
	if !model.IsModerationStatus(in.Status) {
		verr.Add("status", "must be one of active, rejected, inactive")
	}
	if len(in.RejectionReason) > maxRejectionReason {
		verr.Add("rejection_reason", "is too long")
	}
	if len(in.ModerationNotes) > maxModerationNotes {
		verr.Add("moderation_notes", "is too long")
	}
	if err := verr.OrNil(); err != nil {
		return store.Property{}, err
	}

	prop, err := s.queries.GetPropertyByID(ctx, propertyID)
	if err != nil {
		return store.Property{}, storeErr("load property", "property", err)
	}
	previous := prop.Status
	now := s.now().UTC()

	params := moderationParams(prop, in, actor.UserID, now, s.listingTTL)
	updated, err := s.queries.UpdatePropertyModeration(ctx, params)
	if err != nil {
		return store.Property{}, storeErr("update property moderation", "property", err)
	}

	s.logger.Info("property moderated",
		"property_id", updated.ID,
		"from", previous,
		"to", updated.Status,
		"user_id", actor.UserID)

	s.stats.Invalidate(ctx)
	s.dispatchSideEffects(actor, updated, previous, in)

	return updated, nil
}

// moderationParams derives the persisted moderation fields. Re-approving
// keeps the original publish time.
func moderationParams(p store.Property, in ModerationInput, moderatorID int64, now time.Time, ttl time.Duration) store.UpdatePropertyModerationParams {
	params := store.UpdatePropertyModerationParams{
		Status:          in.Status,
		ModeratedBy:     sql.NullInt64{Int64: moderatorID, Valid: true},
		ModeratedAt:     sql.NullTime{Time: now, Valid: true},
		RejectionReason: p.RejectionReason,
		ModerationNotes: p.ModerationNotes,
		Priority:        p.Priority,
		IsPromoted:      p.IsPromoted,
		PublishedAt:     p.PublishedAt,
		ExpiresAt:       p.ExpiresAt,
		UpdatedAt:       now,
		ID:              p.ID,
	}
	if in.ModerationNotes != "" {
		params.ModerationNotes = in.ModerationNotes
	}

	switch in.Status {
	case model.PropertyStatusActive:
		if !params.PublishedAt.Valid {
			params.PublishedAt = sql.NullTime{Time: now, Valid: true}
		}
		if model.ListingExpired(params.ExpiresAt, now) {
			params.ExpiresAt = sql.NullTime{Time: now.Add(ttl), Valid: true}
		}
		params.IsApproved = true
		params.RejectionReason = ""
		if in.Featured {
			params.IsFeatured = true
			params.IsPromoted = true
			params.Priority = model.PriorityFeatured
		} else {
			params.IsFeatured = false
			params.IsPromoted = false
			if params.Priority == model.PriorityFeatured {
				params.Priority = model.PriorityNormal
			}
		}
	case model.PropertyStatusRejected:
		params.IsApproved = false
		params.IsFeatured = false
		params.RejectionReason = in.RejectionReason
	default:
		params.IsApproved = false
		params.IsFeatured = false
	}
	return params
}

// dispatchSideEffects submits the best-effort follow-ups. Each is its own
// task so one failure cannot stop the others.
func (s *ModerationService) dispatchSideEffects(actor model.Actor, p store.Property, previous string, in ModerationInput) {
	title, message, notifType := moderationNotice(p)
	link := "/properties/" + p.Slug

	s.runner.Submit("moderation-notification", func(ctx context.Context) error {
		_, err := s.notifications.Record(ctx, NotifyInput{
			UserID:  p.OwnerID,
			Title:   title,
			Message: message,
			Type:    notifType,
			Data:    map[string]any{"property_id": p.ID, "status": p.Status},
			Link:    link,
		})
		return err
	})

	s.runner.Submit("moderation-email", func(ctx context.Context) error {
		owner, err := s.queries.GetUserByID(ctx, p.OwnerID)
		if err != nil {
			return fmt.Errorf("load owner %d: %w", p.OwnerID, err)
		}
		if owner.Email == "" {
			return nil
		}
		return s.sender.Send(ctx, moderationEmail(owner, p, s.baseURL+link))
	})

	s.audit.RecordAdminAction(AdminAction{
		AdminID:    actor.UserID,
		Action:     model.ModerationAction(p.Status),
		TargetID:   strconv.FormatInt(p.ID, 10),
		TargetType: model.TargetProperty,
		Details: map[string]any{
			"previous_status":  previous,
			"status":           p.Status,
			"featured":         in.Featured,
			"rejection_reason": in.RejectionReason,
		},
		IP:        actor.IP,
		UserAgent: actor.UserAgent,
	})

	s.runner.Submit("search-index", func(ctx context.Context) error {
		if p.Status == model.PropertyStatusActive {
			return s.indexer.Index(ctx, search.DocumentFromProperty(p))
		}
		return s.indexer.Remove(ctx, p.ID)
	})
}

func moderationNotice(p store.Property) (title, message, notifType string) {
	switch p.Status {
	case model.PropertyStatusActive:
		return "Listing approved",
			fmt.Sprintf("Your listing %q is now published.", p.Title),
			model.NotificationPropertyApproved
	case model.PropertyStatusRejected:
		message = fmt.Sprintf("Your listing %q was rejected.", p.Title)
		if p.RejectionReason != "" {
			message += " Reason: " + p.RejectionReason
		}
		return "Listing rejected", message, model.NotificationPropertyRejected
	default:
		return "Listing deactivated",
			fmt.Sprintf("Your listing %q is no longer visible.", p.Title),
			model.NotificationPropertyInactive
	}
}

func moderationEmail(owner store.User, p store.Property, link string) mail.Message {
	data := mail.Data{
		Name:          owner.FirstName,
		PropertyTitle: p.Title,
		Link:          link,
	}

	tmpl := mail.TemplatePropertyInactive
	switch p.Status {
	case model.PropertyStatusActive:
		tmpl = mail.TemplatePropertyApproved
		data.Featured = p.IsFeatured
		if p.ExpiresAt.Valid {
			data.ExpiresAt = p.ExpiresAt.Time.Format("2 January 2006")
		}
	case model.PropertyStatusRejected:
		tmpl = mail.TemplatePropertyRejected
		data.Reason = p.RejectionReason
	}

	return mail.Message{To: owner.Email, Template: tmpl, Data: data}
}
