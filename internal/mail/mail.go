// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package mail renders templated emails and hands them to a transport.
package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Template names.
const (
	TemplateNotification     = "notification"
	TemplatePropertyApproved = "property_approved"
	TemplatePropertyRejected = "property_rejected"
	TemplatePropertyInactive = "property_inactive"
	TemplateResetCode        = "reset_code"
	TemplateContactMessage   = "contact_message"
)

// ErrDelivery is returned when an email could not be rendered or delivered.
// Callers treat it as a best-effort failure.
var ErrDelivery = errors.New("mail: delivery failed")

// Data is the set of values templates can reference. Unused fields stay empty.
type Data struct {
	SiteName string
	Name     string

	// generic notification
	Title   string
	Message string
	Link    string

	// listing emails
	PropertyTitle string
	Reason        string
	ExpiresAt     string
	Featured      bool

	// password reset
	Code      string
	ExpiresIn string

	// contact message
	SenderName  string
	SenderEmail string
	SenderPhone string
	Body        string
}

// Message asks for Template to be rendered with Data and sent to To.
// Subject overrides the template heading when set.
type Message struct {
	To       string
	Subject  string
	Template string
	Data     Data
}

// Sender delivers templated messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Envelope is a fully rendered email.
type Envelope struct {
	From    string
	To      string
	Subject string
	Text    string
	HTML    string
}

// Transport delivers rendered envelopes.
type Transport interface {
	Deliver(ctx context.Context, env Envelope) error
}

// Mailer renders templates and delivers them through a Transport.
type Mailer struct {
	transport Transport
	templates *Templates
	from      string
	siteName  string
}

// NewMailer creates a Mailer using the embedded templates.
func NewMailer(transport Transport, from, siteName string) (*Mailer, error) {
	tpl, err := LoadTemplates()
	if err != nil {
		return nil, err
	}
	return &Mailer{
		transport: transport,
		templates: tpl,
		from:      from,
		siteName:  siteName,
	}, nil
}

// Send implements Sender. Every failure wraps ErrDelivery.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("%w: empty recipient", ErrDelivery)
	}
	if msg.Data.SiteName == "" {
		msg.Data.SiteName = m.siteName
	}

	rendered, err := m.templates.Render(msg.Template, msg.Data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}

	subject := rendered.Subject
	if msg.Subject != "" {
		subject = msg.Subject
	}

	env := Envelope{
		From:    m.from,
		To:      msg.To,
		Subject: subject,
		Text:    rendered.Text,
		HTML:    rendered.HTML,
	}
	if err := m.transport.Deliver(ctx, env); err != nil {
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}
	return nil
}

// LogTransport writes envelopes to the logger instead of sending them.
// Used in development when no SMTP server is configured.
type LogTransport struct {
	Logger *slog.Logger
}

// Deliver implements Transport.
func (t LogTransport) Deliver(_ context.Context, env Envelope) error {
	logger := t.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("email (not sent, smtp disabled)",
		"to", env.To,
		"subject", env.Subject,
		"body", env.Text)
	return nil
}
