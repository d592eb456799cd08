// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saramoussaya/barryland/internal/imaging"
	"github.com/saramoussaya/barryland/internal/model"
)

func TestCreateProperty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner@barryland.test", model.RoleParticular)

	in := sampleListing("  Appartement S+2 à Sousse ")
	in.Description = `<p>Sunny</p><script>alert(1)</script>`
	in.TransactionType = "SALE"
	p, err := f.properties.Create(ctx, actorOf(owner), in)
	require.NoError(t, err)

	assert.Equal(t, model.PropertyStatusPending, p.Status)
	assert.Equal(t, "Appartement S+2 à Sousse", p.Title)
	assert.Equal(t, "appartement-s2-a-sousse", p.Slug)
	assert.Equal(t, model.TransactionSale, p.TransactionType)
	assert.NotContains(t, p.Description, "script")
	assert.Contains(t, p.Description, "<p>Sunny</p>")
	require.True(t, p.ExpiresAt.Valid)
	assert.True(t, p.ExpiresAt.Time.Equal(testEpoch.Add(model.DefaultListingTTL)))
	assert.False(t, p.PublishedAt.Valid)

	dup, err := f.properties.Create(ctx, actorOf(owner), in)
	require.NoError(t, err)
	assert.Equal(t, "appartement-s2-a-sousse-2", dup.Slug)

	_, err = f.properties.Create(ctx, model.Actor{}, in)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCreateProperty_Validation(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner@barryland.test", model.RoleParticular)
	lat := 36.8

	tests := []struct {
		name   string
		mutate func(*PropertyInput)
		field  string
	}{
		{"empty title", func(in *PropertyInput) { in.Title = " " }, "title"},
		{"long title", func(in *PropertyInput) { in.Title = strings.Repeat("a", maxTitleLength+1) }, "title"},
		{"bad transaction", func(in *PropertyInput) { in.TransactionType = "lease" }, "transaction_type"},
		{"negative price", func(in *PropertyInput) { in.Price = -1 }, "price"},
		{"no city", func(in *PropertyInput) { in.City = "" }, "city"},
		{"half coordinates", func(in *PropertyInput) { in.Latitude = &lat }, "coordinates"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := sampleListing("Valid")
			tt.mutate(&in)
			_, err := f.properties.Create(context.Background(), actorOf(owner), in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestGetProperty_Visibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	owner := f.user(t, "owner@barryland.test", model.RoleParticular)
	stranger := f.user(t, "stranger@barryland.test", model.RoleParticular)
	pending := f.listing(t, owner, "Hidden")
	active := f.published(t, admin, owner, "Public", false)

	_, err := f.properties.Get(ctx, actorOf(stranger), pending.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.properties.Get(ctx, model.Actor{}, pending.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	d, err := f.properties.Get(ctx, actorOf(owner), pending.ID)
	require.NoError(t, err)
	assert.Equal(t, pending.ID, d.ID)

	d, err = f.properties.GetBySlug(ctx, model.Actor{}, active.Slug)
	require.NoError(t, err)
	assert.Equal(t, int64(1), d.Views)

	d, err = f.properties.Get(ctx, actorOf(owner), active.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), d.Views, "owner views are not counted")

	_, err = f.properties.GetBySlug(ctx, model.Actor{}, "../etc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListProperties(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	owner := f.user(t, "owner@barryland.test", model.RoleParticular)
	stranger := f.user(t, "stranger@barryland.test", model.RoleParticular)

	f.listing(t, owner, "Pending")
	f.published(t, admin, owner, "Active sale", false)
	rental := sampleListing("Active rental")
	rental.TransactionType = model.TransactionRental
	rental.Price = 900
	r, err := f.properties.Create(ctx, actorOf(owner), rental)
	require.NoError(t, err)
	_, err = f.moderation.SetPropertyStatus(ctx, admin, r.ID, ModerationInput{Status: model.PropertyStatusActive})
	require.NoError(t, err)

	public, err := f.properties.List(ctx, model.Actor{}, ListFilter{Status: model.PropertyStatusPending}, Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), public.Total, "status filter is forced to active for the public")

	mine, err := f.properties.List(ctx, actorOf(owner), ListFilter{OwnerID: owner.ID}, Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), mine.Total)

	theirs, err := f.properties.List(ctx, actorOf(stranger), ListFilter{OwnerID: owner.ID}, Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), theirs.Total)

	rentals, err := f.properties.List(ctx, model.Actor{}, ListFilter{TransactionType: model.TransactionRental}, Page{})
	require.NoError(t, err)
	require.Len(t, rentals.Items, 1)
	assert.Equal(t, r.ID, rentals.Items[0].ID)

	cheap, err := f.properties.List(ctx, model.Actor{}, ListFilter{MaxPrice: 1000}, Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), cheap.Total)

	// The recorder reports the index as disabled, so text search uses SQL.
	text, err := f.properties.List(ctx, model.Actor{}, ListFilter{Text: "flat"}, Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), text.Total)

	_, err = f.properties.List(ctx, model.Actor{}, ListFilter{MinPrice: 10, MaxPrice: 5}, Page{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateProperty_BackToModeration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	owner := f.user(t, "owner@barryland.test", model.RoleParticular)
	stranger := f.user(t, "stranger@barryland.test", model.RoleParticular)
	p := f.published(t, admin, owner, "Original", true)

	in := sampleListing("Edited by owner")
	_, err := f.properties.Update(ctx, actorOf(stranger), p.ID, in)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := f.properties.Update(ctx, actorOf(owner), p.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Edited by owner", got.Title)
	assert.Equal(t, p.Slug, got.Slug, "slug is stable")
	assert.Equal(t, model.PropertyStatusPending, got.Status)
	assert.False(t, got.IsApproved)
	assert.False(t, got.IsFeatured)
	assert.False(t, f.index.Has(p.ID))

	// Admin edits keep the status.
	p2 := f.published(t, admin, owner, "Admin edited", false)
	got, err = f.properties.Update(ctx, admin, p2.ID, sampleListing("Fixed typo"))
	require.NoError(t, err)
	assert.Equal(t, model.PropertyStatusActive, got.Status)
	assert.True(t, f.index.Has(p2.ID))
}

func TestSetOwnerStatusAndRenew(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	owner := f.user(t, "owner@barryland.test", model.RoleParticular)
	pending := f.listing(t, owner, "Pending")
	p := f.published(t, admin, owner, "For sale", false)

	_, err := f.properties.SetOwnerStatus(ctx, actorOf(owner), p.ID, model.PropertyStatusActive)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.properties.SetOwnerStatus(ctx, actorOf(owner), pending.ID, model.PropertyStatusSold)
	assert.ErrorIs(t, err, ErrConflict)
	_, err = f.properties.Renew(ctx, actorOf(owner), pending.ID)
	assert.ErrorIs(t, err, ErrConflict)

	sold, err := f.properties.SetOwnerStatus(ctx, actorOf(owner), p.ID, model.PropertyStatusSold)
	require.NoError(t, err)
	assert.Equal(t, model.PropertyStatusSold, sold.Status)
	_, err = f.properties.Renew(ctx, actorOf(owner), p.ID)
	assert.ErrorIs(t, err, ErrConflict)

	p2 := f.published(t, admin, owner, "Renewable", false)
	f.clock.Advance(30 * 24 * time.Hour)
	renewed, err := f.properties.Renew(ctx, actorOf(owner), p2.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PropertyStatusActive, renewed.Status)
	assert.True(t, renewed.ExpiresAt.Time.Equal(f.clock.Now().Add(model.DefaultListingTTL)))

	// A moderator takedown cannot be undone by the owner.
	p3 := f.published(t, admin, owner, "Taken down", false)
	down, err := f.moderation.SetPropertyStatus(ctx, admin, p3.ID, ModerationInput{Status: model.PropertyStatusInactive})
	require.NoError(t, err)
	assert.False(t, down.IsApproved)

	_, err = f.properties.Renew(ctx, actorOf(owner), p3.ID)
	assert.ErrorIs(t, err, ErrConflict)
	got, err := f.q.GetPropertyByID(ctx, p3.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PropertyStatusInactive, got.Status)

	republished, err := f.properties.Renew(ctx, admin, p3.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PropertyStatusActive, republished.Status)
	assert.True(t, republished.IsApproved)
}

func TestExpireListings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	owner := f.user(t, "owner@barryland.test", model.RoleParticular)
	p := f.published(t, admin, owner, "Expiring", false)
	f.listing(t, owner, "Pending never expires here")

	n, err := f.properties.ExpireListings(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	f.clock.Advance(model.DefaultListingTTL + time.Minute)
	n, err = f.properties.ExpireListings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := f.q.GetPropertyByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PropertyStatusInactive, got.Status)
	assert.False(t, f.index.Has(p.ID))

	notes, err := f.notifications.List(ctx, owner.ID, true, Page{})
	require.NoError(t, err)
	require.NotEmpty(t, notes.Items)
	assert.Equal(t, model.NotificationPropertyExpired, notes.Items[0].Type)

	// Expired listings can be renewed.
	renewed, err := f.properties.Renew(ctx, actorOf(owner), p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PropertyStatusActive, renewed.Status)
}

func TestPropertyMedia(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner@barryland.test", model.RoleParticular)
	stranger := f.user(t, "stranger@barryland.test", model.RoleParticular)
	p := f.listing(t, owner, "With photos")

	m, err := f.properties.AddMedia(ctx, actorOf(owner), p.ID, "../living room.jpg", strings.NewReader("jpeg bytes"))
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", m.MimeType)
	assert.Equal(t, int64(10), m.Size)
	assert.True(t, strings.HasPrefix(m.URL, "/uploads/properties/"))

	_, err = f.properties.AddMedia(ctx, actorOf(owner), p.ID, "run.exe", strings.NewReader("MZ"))
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.properties.AddMedia(ctx, actorOf(stranger), p.ID, "a.jpg", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrForbidden)

	d, err := f.properties.Get(ctx, actorOf(owner), p.ID)
	require.NoError(t, err)
	require.Len(t, d.Media, 1)
	assert.Equal(t, m.ID, d.Media[0].ID)

	require.NoError(t, f.properties.Delete(ctx, actorOf(owner), p.ID))
	media, err := f.properties.ListMedia(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, media)

	err = f.properties.Delete(ctx, actorOf(owner), p.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPropertyMediaNormalizesPhotos(t *testing.T) {
	f := newFixture(t)
	f.properties.images = imaging.NewProcessor(100, 0)
	ctx := context.Background()
	owner := f.user(t, "photos@barryland.test", model.RoleProfessional)
	p := f.listing(t, owner, "Villa with garden")

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 300, 150))))

	m, err := f.properties.AddMedia(ctx, actorOf(owner), p.ID, "garden.png", &buf)
	require.NoError(t, err)
	assert.Equal(t, "image/png", m.MimeType)
	assert.Equal(t, "garden.png", m.Filename)

	_, err = f.properties.AddMedia(ctx, actorOf(owner), p.ID, "broken.jpg", strings.NewReader("jpeg bytes"))
	assert.ErrorIs(t, err, ErrValidation)

	// Documents are stored untouched.
	doc, err := f.properties.AddMedia(ctx, actorOf(owner), p.ID, "plan.pdf", strings.NewReader("%PDF-1.7"))
	require.NoError(t, err)
	assert.Equal(t, int64(8), doc.Size)
}
