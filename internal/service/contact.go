// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/saramoussaya/barryland/internal/captcha"
	"github.com/saramoussaya/barryland/internal/mail"
	"github.com/saramoussaya/barryland/internal/model"
	"github.com/saramoussaya/barryland/internal/store"
	"github.com/saramoussaya/barryland/internal/tasks"
	"github.com/saramoussaya/barryland/internal/util"
)

const (
	maxContactBody    = 5000
	maxContactSubject = 200
)

// ContactInput is a contact form submission as received. The body may
// arrive as Message, Body or Msg.
type ContactInput struct {
	Name         string
	Email        string
	Phone        string
	Subject      string
	Message      string
	Body         string
	Msg          string
	PropertyID   int64
	CaptchaToken string
}

// ContactRequest is the canonical form of a ContactInput.
type ContactRequest struct {
	Name       string
	Email      string
	Phone      string
	Subject    string
	Body       string
	PropertyID int64
}

// NormalizeContact picks the body with precedence Message, Body, Msg and
// trims and strips markup from every text field.
func NormalizeContact(in ContactInput) ContactRequest {
	body := ""
	for _, candidate := range []string{in.Message, in.Body, in.Msg} {
		if c := sanitizePlain(candidate); c != "" {
			body = c
			break
		}
	}
	return ContactRequest{
		Name:       sanitizePlain(in.Name),
		Email:      normalizeEmail(in.Email),
		Phone:      strings.TrimSpace(in.Phone),
		Subject:    sanitizePlain(in.Subject),
		Body:       body,
		PropertyID: in.PropertyID,
	}
}

func (r ContactRequest) validate() error {
	verr := &ValidationError{}
	if r.Name == "" {
		verr.Add("name", "is required")
	} else if len(r.Name) > maxNameLength {
		verr.Add("name", "is too long")
	}
	if !validEmail(r.Email) {
		verr.Add("email", "must be a valid email address")
	}
	if len(r.Phone) > 32 {
		verr.Add("phone", "is too long")
	}
	if len(r.Subject) > maxContactSubject {
		verr.Add("subject", "is too long")
	}
	if r.Body == "" {
		verr.Add("message", "is required")
	} else if len(r.Body) > maxContactBody {
		verr.Add("message", "is too long")
	}
	return verr.OrNil()
}

// ContactService stores inquiries and routes them to listing owners.
type ContactService struct {
	queries       *store.Queries
	notifications *NotificationService
	audit         *AuditService
	captcha       captcha.Verifier
	sender        mail.Sender
	runner        tasks.Runner
	logger        *slog.Logger
	now           func() time.Time
}

// ContactDeps groups the collaborators of ContactService.
type ContactDeps struct {
	Notifications *NotificationService
	Audit         *AuditService
	Captcha       captcha.Verifier
	Sender        mail.Sender
	Runner        tasks.Runner
	Logger        *slog.Logger
}

// NewContactService creates a ContactService.
func NewContactService(db *sql.DB, deps ContactDeps) *ContactService {
	if deps.Captcha == nil {
		deps.Captcha = captcha.Disabled{}
	}
	return &ContactService{
		queries:       store.New(db),
		notifications: deps.Notifications,
		audit:         deps.Audit,
		captcha:       deps.Captcha,
		sender:        deps.Sender,
		runner:        deps.Runner,
		logger:        deps.Logger,
		now:           time.Now,
	}
}

// Submit stores an inquiry. Anonymous submissions must pass the captcha.
// When the inquiry is about a listing its owner is notified; notification
// failures do not fail the submission.
func (s *ContactService) Submit(ctx context.Context, actor model.Actor, in ContactInput) (store.ContactMessage, error) {
	req := NormalizeContact(in)
	if err := req.validate(); err != nil {
		return store.ContactMessage{}, err
	}

	if actor.UserID == 0 {
		if err := s.captcha.Verify(ctx, in.CaptchaToken, actor.IP); err != nil {
			switch {
			case errors.Is(err, captcha.ErrRequired):
				return store.ContactMessage{}, NewValidationError("captcha", "is required")
			case errors.Is(err, captcha.ErrInvalid):
				return store.ContactMessage{}, NewValidationError("captcha", "verification failed")
			default:
				return store.ContactMessage{}, fmt.Errorf("captcha unavailable: %w", err)
			}
		}
	}

	var (
		recipientID int64
		property    store.Property
	)
	if req.PropertyID > 0 {
		p, err := s.queries.GetPropertyByID(ctx, req.PropertyID)
		if err != nil {
			return store.ContactMessage{}, storeErr("load property", "property", err)
		}
		if !visible(p, actor) {
			return store.ContactMessage{}, storeErr("load property", "property", sql.ErrNoRows)
		}
		property, recipientID = p, p.OwnerID
	}

	now := s.now().UTC()
	msg, err := s.queries.CreateContactMessage(ctx, store.CreateContactMessageParams{
		SenderID:    util.NullInt64Positive(actor.UserID),
		RecipientID: util.NullInt64Positive(recipientID),
		PropertyID:  util.NullInt64Positive(req.PropertyID),
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Subject:     req.Subject,
		Body:        req.Body,
		Status:      model.ContactStatusNew,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return store.ContactMessage{}, storeErr("create contact message", "contact message", err)
	}

	if recipientID > 0 {
		s.notifyRecipient(ctx, msg, property)
	}
	if actor.UserID > 0 {
		s.audit.RecordActivity(Activity{
			UserID:     actor.UserID,
			Action:     model.ActivityContactMessage,
			TargetID:   strconv.FormatInt(msg.ID, 10),
			TargetType: model.TargetContactMessage,
			Details:    map[string]any{"property_id": req.PropertyID},
		})
	}
	return msg, nil
}

func (s *ContactService) notifyRecipient(ctx context.Context, msg store.ContactMessage, p store.Property) {
	_, err := s.notifications.Record(ctx, NotifyInput{
		UserID:  p.OwnerID,
		Title:   "New message about " + p.Title,
		Message: fmt.Sprintf("%s wrote about your listing.", msg.Name),
		Type:    model.NotificationContactMessage,
		Data:    map[string]any{"contact_message_id": msg.ID, "property_id": p.ID},
		Link:    "/messages/" + strconv.FormatInt(msg.ID, 10),
	})
	if err != nil {
		s.logger.Warn("contact notification failed", "category", model.EventCategoryTasks,
			"contact_message_id", msg.ID, "error", err)
	}

	propertyTitle := p.Title
	s.runner.Submit("contact-email", func(ctx context.Context) error {
		owner, err := s.queries.GetUserByID(ctx, p.OwnerID)
		if err != nil {
			return fmt.Errorf("load owner %d: %w", p.OwnerID, err)
		}
		if !wantsEmail(owner) {
			return nil
		}
		return s.sender.Send(ctx, mail.Message{
			To:       owner.Email,
			Template: mail.TemplateContactMessage,
			Data: mail.Data{
				Name:          owner.FirstName,
				PropertyTitle: propertyTitle,
				SenderName:    msg.Name,
				SenderEmail:   msg.Email,
				SenderPhone:   msg.Phone,
				Body:          msg.Body,
			},
		})
	})
}

// List returns inquiries addressed to the actor, or all of them for admins.
func (s *ContactService) List(ctx context.Context, actor model.Actor, status string, p Page) (Paged[store.ContactMessage], error) {
	if status != "" && !model.IsValidContactStatus(status) {
		return Paged[store.ContactMessage]{}, NewValidationError("status", "must be new, read or processed")
	}
	if actor.UserID <= 0 {
		return Paged[store.ContactMessage]{}, fmt.Errorf("listing messages requires an account: %w", ErrUnauthorized)
	}
	recipient := actor.UserID
	if actor.IsAdmin() {
		recipient = 0
	}

	p = p.normalize()
	items, err := s.queries.ListContactMessages(ctx, store.ListContactMessagesParams{
		RecipientID: recipient,
		Status:      status,
		Limit:       p.Limit,
		Offset:      p.Offset,
	})
	if err != nil {
		return Paged[store.ContactMessage]{}, storeErr("list contact messages", "contact message", err)
	}
	total, err := s.queries.CountContactMessages(ctx, store.CountContactMessagesParams{RecipientID: recipient, Status: status})
	if err != nil {
		return Paged[store.ContactMessage]{}, storeErr("count contact messages", "contact message", err)
	}
	return newPaged(items, total, p), nil
}

// Get returns an inquiry its recipient or an admin may read.
func (s *ContactService) Get(ctx context.Context, actor model.Actor, id int64) (store.ContactMessage, error) {
	msg, err := s.queries.GetContactMessage(ctx, id)
	if err != nil {
		return store.ContactMessage{}, storeErr("load contact message", "contact message", err)
	}
	if !actor.IsAdmin() && (!msg.RecipientID.Valid || msg.RecipientID.Int64 != actor.UserID) {
		return store.ContactMessage{}, forbidden("message %d is addressed to another user", id)
	}
	return msg, nil
}

// UpdateStatus moves an inquiry to new, read or processed. The first move
// away from new stamps read_at.
func (s *ContactService) UpdateStatus(ctx context.Context, actor model.Actor, id int64, status string) (store.ContactMessage, error) {
	if !model.IsValidContactStatus(status) {
		return store.ContactMessage{}, NewValidationError("status", "must be new, read or processed")
	}
	msg, err := s.Get(ctx, actor, id)
	if err != nil {
		return store.ContactMessage{}, err
	}

	now := s.now().UTC()
	var readAt sql.NullTime
	if status != model.ContactStatusNew {
		readAt = util.NullTimeFromValue(now)
	}
	updated, err := s.queries.UpdateContactMessageStatus(ctx, store.UpdateContactMessageStatusParams{
		Status:    status,
		ReadAt:    readAt,
		UpdatedAt: now,
		ID:        msg.ID,
	})
	if err != nil {
		return store.ContactMessage{}, storeErr("update contact message", "contact message", err)
	}

	if actor.IsAdmin() {
		s.audit.RecordAdminAction(AdminAction{
			AdminID:    actor.UserID,
			Action:     model.AdminActionUpdateContact,
			TargetID:   strconv.FormatInt(msg.ID, 10),
			TargetType: model.TargetContactMessage,
			Details:    map[string]any{"previous_status": msg.Status, "status": status},
			IP:         actor.IP,
			UserAgent:  actor.UserAgent,
		})
	}
	return updated, nil
}
