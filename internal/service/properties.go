// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/saramoussaya/barryland/internal/imaging"
	"github.com/saramoussaya/barryland/internal/model"
	"github.com/saramoussaya/barryland/internal/search"
	"github.com/saramoussaya/barryland/internal/storage"
	"github.com/saramoussaya/barryland/internal/store"
	"github.com/saramoussaya/barryland/internal/tasks"
	"github.com/saramoussaya/barryland/internal/util"
)

// Listing field limits.
const (
	maxTitleLength       = 200
	maxDescriptionLength = 20000
	maxMediaPerProperty  = 30
	expireBatchSize      = 100
)

// PropertyInput is the editable content of a listing.
type PropertyInput struct {
	Title           string
	Description     string
	TransactionType string
	PropertyType    string
	Category        string
	Price           float64
	Area            float64
	Bedrooms        int64
	Bathrooms       int64
	Address         string
	City            string
	Region          string
	Latitude        *float64
	Longitude       *float64
}

func (in *PropertyInput) normalize() {
	in.Title = sanitizePlain(in.Title)
	in.Description = sanitizeRich(in.Description)
	in.TransactionType = strings.ToLower(strings.TrimSpace(in.TransactionType))
	in.PropertyType = strings.ToLower(strings.TrimSpace(in.PropertyType))
	in.Category = strings.ToLower(strings.TrimSpace(in.Category))
	in.Address = sanitizePlain(in.Address)
	in.City = sanitizePlain(in.City)
	in.Region = sanitizePlain(in.Region)
}

func (in PropertyInput) validate() error {
	verr := &ValidationError{}
	switch {
	case in.Title == "":
		verr.Add("title", "is required")
	case len(in.Title) > maxTitleLength:
		verr.Add("title", "is too long")
	}
	if len(in.Description) > maxDescriptionLength {
		verr.Add("description", "is too long")
	}
	if !model.IsValidTransactionType(in.TransactionType) {
		verr.Add("transaction_type", "must be sale or rental")
	}
	if in.PropertyType == "" {
		verr.Add("property_type", "is required")
	}
	if in.Price < 0 || math.IsNaN(in.Price) || math.IsInf(in.Price, 0) {
		verr.Add("price", "must be zero or positive")
	}
	if in.Area < 0 || math.IsNaN(in.Area) || math.IsInf(in.Area, 0) {
		verr.Add("area", "must be zero or positive")
	}
	if in.Bedrooms < 0 {
		verr.Add("bedrooms", "must be zero or positive")
	}
	if in.Bathrooms < 0 {
		verr.Add("bathrooms", "must be zero or positive")
	}
	if in.City == "" {
		verr.Add("city", "is required")
	}
	if (in.Latitude == nil) != (in.Longitude == nil) {
		verr.Add("coordinates", "latitude and longitude go together")
	}
	if in.Latitude != nil && (*in.Latitude < -90 || *in.Latitude > 90) {
		verr.Add("latitude", "must be between -90 and 90")
	}
	if in.Longitude != nil && (*in.Longitude < -180 || *in.Longitude > 180) {
		verr.Add("longitude", "must be between -180 and 180")
	}
	return verr.OrNil()
}

// ListFilter narrows ListProperties. Text uses the search index when one is
// configured and is ignored otherwise.
type ListFilter struct {
	Text            string
	Status          string
	TransactionType string
	PropertyType    string
	City            string
	OwnerID         int64
	MinPrice        float64
	MaxPrice        float64
	FeaturedOnly    bool
}

// MediaView is a stored media file with its public URL.
type MediaView struct {
	ID        int64     `json:"id"`
	URL       string    `json:"url"`
	Filename  string    `json:"filename"`
	MimeType  string    `json:"mime_type"`
	Size      int64     `json:"size"`
	Position  int64     `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// PropertyDetail is a listing with its media.
type PropertyDetail struct {
	PropertyView
	Media []MediaView `json:"media"`
}

// PropertyService implements listing CRUD for owners and admins.
type PropertyService struct {
	db            *sql.DB
	queries       *store.Queries
	notifications *NotificationService
	audit         *AuditService
	stats         *StatsService
	blobs         storage.BlobStore
	images        *imaging.Processor
	indexer       search.Indexer
	runner        tasks.Runner
	listingTTL    time.Duration
	logger        *slog.Logger
	now           func() time.Time
}

// PropertyDeps groups the collaborators of PropertyService.
type PropertyDeps struct {
	Notifications *NotificationService
	Audit         *AuditService
	Stats         *StatsService
	Blobs         storage.BlobStore
	Images        *imaging.Processor // optional; photos are stored as uploaded when nil
	Indexer       search.Indexer
	Runner        tasks.Runner
	ListingTTL    time.Duration
	Logger        *slog.Logger
}

// NewPropertyService creates a PropertyService.
func NewPropertyService(db *sql.DB, deps PropertyDeps) *PropertyService {
	if deps.ListingTTL <= 0 {
		deps.ListingTTL = model.DefaultListingTTL
	}
	if deps.Indexer == nil {
		deps.Indexer = search.Noop{}
	}
	return &PropertyService{
		db:            db,
		queries:       store.New(db),
		notifications: deps.Notifications,
		audit:         deps.Audit,
		stats:         deps.Stats,
		blobs:         deps.Blobs,
		images:        deps.Images,
		indexer:       deps.Indexer,
		runner:        deps.Runner,
		listingTTL:    deps.ListingTTL,
		logger:        deps.Logger.With("category", model.EventCategoryProperty),
		now:           time.Now,
	}
}

// Create stores a new listing in pending state.
func (s *PropertyService) Create(ctx context.Context, actor model.Actor, in PropertyInput) (store.Property, error) {
	if actor.UserID <= 0 {
		return store.Property{}, fmt.Errorf("creating a listing requires an account: %w", ErrUnauthorized)
	}
	in.normalize()
	if err := in.validate(); err != nil {
		return store.Property{}, err
	}

	slug, err := s.uniqueSlug(ctx, in.Title)
	if err != nil {
		return store.Property{}, err
	}

	now := s.now().UTC()
	prop, err := s.queries.CreateProperty(ctx, store.CreatePropertyParams{
		OwnerID:         actor.UserID,
		Title:           in.Title,
		Slug:            slug,
		Description:     in.Description,
		TransactionType: in.TransactionType,
		PropertyType:    in.PropertyType,
		Category:        in.Category,
		Price:           in.Price,
		Area:            in.Area,
		Bedrooms:        in.Bedrooms,
		Bathrooms:       in.Bathrooms,
		Address:         in.Address,
		City:            in.City,
		Region:          in.Region,
		Latitude:        util.NullFloat64FromPtr(in.Latitude),
		Longitude:       util.NullFloat64FromPtr(in.Longitude),
		Status:          model.PropertyStatusPending,
		Priority:        model.PriorityNormal,
		ExpiresAt:       util.NullTimeFromValue(now.Add(s.listingTTL)),
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		return store.Property{}, storeErr("create property", "property", err)
	}

	s.audit.RecordActivity(Activity{
		UserID:      actor.UserID,
		Action:      model.ActivityPropertyCreate,
		Description: prop.Title,
		TargetID:    strconv.FormatInt(prop.ID, 10),
		TargetType:  model.TargetProperty,
	})
	s.stats.Invalidate(ctx)
	return prop, nil
}

// uniqueSlug derives a slug from title, adding a numeric suffix on clashes.
func (s *PropertyService) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := util.Slugify(title)
	if base == "" {
		base = "listing"
	}
	slug := base
	for i := 2; ; i++ {
		n, err := s.queries.SlugExists(ctx, slug)
		if err != nil {
			return "", storeErr("check slug", "property", err)
		}
		if n == 0 {
			return slug, nil
		}
		suffix := "-" + strconv.Itoa(i)
		trimmed := base
		if len(trimmed)+len(suffix) > util.MaxSlugLength {
			trimmed = strings.TrimRight(trimmed[:util.MaxSlugLength-len(suffix)], "-")
		}
		slug = trimmed + suffix
	}
}

// visible reports whether actor may see p. Only active listings are public.
func visible(p store.Property, actor model.Actor) bool {
	return p.Status == model.PropertyStatusActive || actor.CanManage(p.OwnerID)
}

// Get returns a listing with its media. Listings the actor may not see are
// reported as missing. Views from anyone but the owner are counted.
func (s *PropertyService) Get(ctx context.Context, actor model.Actor, id int64) (PropertyDetail, error) {
	prop, err := s.queries.GetPropertyByID(ctx, id)
	if err != nil {
		return PropertyDetail{}, storeErr("load property", "property", err)
	}
	return s.detail(ctx, actor, prop)
}

// GetBySlug is Get addressed by slug.
func (s *PropertyService) GetBySlug(ctx context.Context, actor model.Actor, slug string) (PropertyDetail, error) {
	if !util.IsValidSlug(slug) {
		return PropertyDetail{}, storeErr("load property", "property", sql.ErrNoRows)
	}
	prop, err := s.queries.GetPropertyBySlug(ctx, slug)
	if err != nil {
		return PropertyDetail{}, storeErr("load property", "property", err)
	}
	return s.detail(ctx, actor, prop)
}

func (s *PropertyService) detail(ctx context.Context, actor model.Actor, prop store.Property) (PropertyDetail, error) {
	if !visible(prop, actor) {
		return PropertyDetail{}, storeErr("load property", "property", sql.ErrNoRows)
	}

	if actor.UserID != prop.OwnerID && prop.Status == model.PropertyStatusActive {
		if err := s.queries.IncrementPropertyViews(ctx, prop.ID); err != nil {
			s.logger.Warn("view counter update failed", "property_id", prop.ID, "error", err)
		} else {
			prop.Views++
		}
	}

	media, err := s.ListMedia(ctx, prop.ID)
	if err != nil {
		return PropertyDetail{}, err
	}
	return PropertyDetail{PropertyView: NewPropertyView(prop), Media: media}, nil
}

// List returns listings matching f. Anonymous and regular users only see
// active listings, except their own when filtering by owner.
func (s *PropertyService) List(ctx context.Context, actor model.Actor, f ListFilter, p Page) (Paged[store.Property], error) {
	p = p.normalize()
	f.Text = strings.TrimSpace(f.Text)
	f.City = strings.TrimSpace(f.City)

	if !actor.IsAdmin() && !(f.OwnerID > 0 && f.OwnerID == actor.UserID) {
		f.Status = model.PropertyStatusActive
	}
	if f.MinPrice > 0 && f.MaxPrice > 0 && f.MinPrice > f.MaxPrice {
		return Paged[store.Property]{}, NewValidationError("min_price", "must not exceed max_price")
	}

	if f.Text != "" && f.Status == model.PropertyStatusActive && f.OwnerID == 0 {
		page, err := s.searchIndex(ctx, f, p)
		if err == nil {
			return page, nil
		}
		if !errors.Is(err, search.ErrDisabled) {
			s.logger.Warn("search index query failed, using database", "error", err)
		}
	}

	filter := store.PropertyFilter{
		Status:          f.Status,
		TransactionType: f.TransactionType,
		PropertyType:    f.PropertyType,
		City:            f.City,
		OwnerID:         f.OwnerID,
		MinPrice:        f.MinPrice,
		MaxPrice:        f.MaxPrice,
		FeaturedOnly:    f.FeaturedOnly,
	}
	props, err := s.queries.ListProperties(ctx, store.ListPropertiesParams{
		PropertyFilter: filter,
		Limit:          p.Limit,
		Offset:         p.Offset,
	})
	if err != nil {
		return Paged[store.Property]{}, storeErr("list properties", "property", err)
	}
	total, err := s.queries.CountFilteredProperties(ctx, filter)
	if err != nil {
		return Paged[store.Property]{}, storeErr("count properties", "property", err)
	}
	return newPaged(props, total, p), nil
}

func (s *PropertyService) searchIndex(ctx context.Context, f ListFilter, p Page) (Paged[store.Property], error) {
	res, err := s.indexer.Search(ctx, search.Query{
		Text:            f.Text,
		TransactionType: f.TransactionType,
		PropertyType:    f.PropertyType,
		City:            f.City,
		MinPrice:        f.MinPrice,
		MaxPrice:        f.MaxPrice,
		Limit:           p.Limit,
		Offset:          p.Offset,
	})
	if err != nil {
		return Paged[store.Property]{}, err
	}

	props := make([]store.Property, 0, len(res.IDs))
	for _, id := range res.IDs {
		prop, err := s.queries.GetPropertyByID(ctx, id)
		if errors.Is(err, sql.ErrNoRows) {
			continue // index lags behind a delete
		}
		if err != nil {
			return Paged[store.Property]{}, storeErr("load search hit", "property", err)
		}
		if prop.Status != model.PropertyStatusActive {
			continue
		}
		props = append(props, prop)
	}
	return newPaged(props, res.Total, p), nil
}

// loadManaged loads a listing the actor owns or administers.
func (s *PropertyService) loadManaged(ctx context.Context, actor model.Actor, id int64) (store.Property, error) {
	prop, err := s.queries.GetPropertyByID(ctx, id)
	if err != nil {
		return store.Property{}, storeErr("load property", "property", err)
	}
	if !actor.CanManage(prop.OwnerID) {
		return store.Property{}, forbidden("listing %d belongs to another user", id)
	}
	return prop, nil
}

// Update replaces the content of a listing. A non-admin edit of a
// published or rejected listing sends it back to moderation.
func (s *PropertyService) Update(ctx context.Context, actor model.Actor, id int64, in PropertyInput) (store.Property, error) {
	in.normalize()
	if err := in.validate(); err != nil {
		return store.Property{}, err
	}
	prop, err := s.loadManaged(ctx, actor, id)
	if err != nil {
		return store.Property{}, err
	}

	status, approved, featured := prop.Status, prop.IsApproved, prop.IsFeatured
	if !actor.IsAdmin() && (status == model.PropertyStatusActive || status == model.PropertyStatusRejected) {
		status, approved, featured = model.PropertyStatusPending, false, false
	}

	updated, err := s.queries.UpdatePropertyContent(ctx, store.UpdatePropertyContentParams{
		Title:           in.Title,
		Description:     in.Description,
		TransactionType: in.TransactionType,
		PropertyType:    in.PropertyType,
		Category:        in.Category,
		Price:           in.Price,
		Area:            in.Area,
		Bedrooms:        in.Bedrooms,
		Bathrooms:       in.Bathrooms,
		Address:         in.Address,
		City:            in.City,
		Region:          in.Region,
		Latitude:        util.NullFloat64FromPtr(in.Latitude),
		Longitude:       util.NullFloat64FromPtr(in.Longitude),
		Status:          status,
		IsApproved:      approved,
		IsFeatured:      featured,
		UpdatedAt:       s.now().UTC(),
		ID:              prop.ID,
	})
	if err != nil {
		return store.Property{}, storeErr("update property", "property", err)
	}

	s.recordChange(actor, updated, model.AdminActionUpdateProperty, model.ActivityPropertyUpdate,
		map[string]any{"previous_status": prop.Status, "status": updated.Status})
	s.reindex(updated)
	if updated.Status != prop.Status {
		s.stats.Invalidate(ctx)
	}
	return updated, nil
}

// SetOwnerStatus marks an active listing sold or rented.
func (s *PropertyService) SetOwnerStatus(ctx context.Context, actor model.Actor, id int64, status string) (store.Property, error) {
	if !model.IsOwnerStatus(status) {
		return store.Property{}, NewValidationError("status", "must be sold or rented")
	}
	prop, err := s.loadManaged(ctx, actor, id)
	if err != nil {
		return store.Property{}, err
	}
	if prop.Status != model.PropertyStatusActive {
		return store.Property{}, fmt.Errorf("listing is %s, only active listings can be closed: %w", prop.Status, ErrConflict)
	}

	updated, err := s.queries.UpdatePropertyStatus(ctx, store.UpdatePropertyStatusParams{
		Status:    status,
		UpdatedAt: s.now().UTC(),
		ID:        prop.ID,
	})
	if err != nil {
		return store.Property{}, storeErr("update property status", "property", err)
	}

	s.recordChange(actor, updated, model.AdminActionUpdateProperty, model.ActivityPropertyUpdate,
		map[string]any{"previous_status": prop.Status, "status": status})
	s.reindex(updated)
	s.stats.Invalidate(ctx)
	return updated, nil
}

// Renew republishes a listing that went through moderation before and
// restarts its expiry window. Owners can renew expired listings only.
func (s *PropertyService) Renew(ctx context.Context, actor model.Actor, id int64) (store.Property, error) {
	prop, err := s.loadManaged(ctx, actor, id)
	if err != nil {
		return store.Property{}, err
	}
	if !prop.PublishedAt.Valid {
		return store.Property{}, fmt.Errorf("listing was never published: %w", ErrConflict)
	}
	if prop.Status != model.PropertyStatusActive && prop.Status != model.PropertyStatusInactive {
		return store.Property{}, fmt.Errorf("listing is %s and cannot be renewed: %w", prop.Status, ErrConflict)
	}
	// Expiry keeps the approval; a moderator takedown clears it and only
	// another moderator may republish.
	if !prop.IsApproved && !actor.IsAdmin() {
		return store.Property{}, fmt.Errorf("listing was taken down by a moderator: %w", ErrConflict)
	}

	now := s.now().UTC()
	updated, err := s.queries.RenewProperty(ctx, store.RenewPropertyParams{
		ExpiresAt: util.NullTimeFromValue(now.Add(s.listingTTL)),
		UpdatedAt: now,
		ID:        prop.ID,
	})
	if err != nil {
		return store.Property{}, storeErr("renew property", "property", err)
	}

	s.recordChange(actor, updated, model.AdminActionRenewProperty, model.ActivityPropertyRenew,
		map[string]any{"expires_at": updated.ExpiresAt.Time})
	s.reindex(updated)
	s.stats.Invalidate(ctx)
	return updated, nil
}

// Delete removes a listing, its favorites and media rows in one
// transaction. Blobs and the search document are removed afterwards.
func (s *PropertyService) Delete(ctx context.Context, actor model.Actor, id int64) error {
	prop, err := s.loadManaged(ctx, actor, id)
	if err != nil {
		return err
	}

	media, err := s.queries.ListPropertyMedia(ctx, prop.ID)
	if err != nil {
		return storeErr("list media", "media", err)
	}

	if err := inTx(ctx, s.db, func(q *store.Queries) error {
		if err := q.RemoveFavoritesByProperty(ctx, prop.ID); err != nil {
			return err
		}
		if err := q.DeletePropertyMedia(ctx, prop.ID); err != nil {
			return err
		}
		return q.DeleteProperty(ctx, prop.ID)
	}); err != nil {
		return storeErr("delete property", "property", err)
	}

	s.removeBlobs(media)
	s.runner.Submit("search-remove", func(ctx context.Context) error {
		return s.indexer.Remove(ctx, prop.ID)
	})
	s.recordChange(actor, prop, model.AdminActionDeleteProperty, model.ActivityPropertyDelete,
		map[string]any{"title": prop.Title, "media": len(media)})
	s.stats.Invalidate(ctx)
	return nil
}

// inTx runs fn against a transaction and commits when it succeeds.
func inTx(ctx context.Context, db *sql.DB, fn func(q *store.Queries) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(store.New(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *PropertyService) removeBlobs(media []store.PropertyMedium) {
	if len(media) == 0 || s.blobs == nil {
		return
	}
	keys := make([]string, 0, len(media))
	for _, m := range media {
		keys = append(keys, m.StorageKey)
	}
	s.runner.Submit("media-cleanup", func(ctx context.Context) error {
		var errs []error
		for _, key := range keys {
			if err := s.blobs.Delete(ctx, key); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
			}
		}
		return errors.Join(errs...)
	})
}

// recordChange logs an admin action for admins and an activity otherwise.
func (s *PropertyService) recordChange(actor model.Actor, p store.Property, adminAction, activity string, details map[string]any) {
	target := strconv.FormatInt(p.ID, 10)
	if actor.IsAdmin() {
		s.audit.RecordAdminAction(AdminAction{
			AdminID:    actor.UserID,
			Action:     adminAction,
			TargetID:   target,
			TargetType: model.TargetProperty,
			Details:    details,
			IP:         actor.IP,
			UserAgent:  actor.UserAgent,
		})
		return
	}
	s.audit.RecordActivity(Activity{
		UserID:      actor.UserID,
		Action:      activity,
		Description: p.Title,
		TargetID:    target,
		TargetType:  model.TargetProperty,
		Details:     details,
	})
}

// reindex queues a search update: active listings are indexed, the rest
// removed.
func (s *PropertyService) reindex(p store.Property) {
	s.runner.Submit("search-index", func(ctx context.Context) error {
		if p.Status == model.PropertyStatusActive {
			return s.indexer.Index(ctx, search.DocumentFromProperty(p))
		}
		return s.indexer.Remove(ctx, p.ID)
	})
}

// AddMedia stores an uploaded file for a listing.
func (s *PropertyService) AddMedia(ctx context.Context, actor model.Actor, id int64, filename string, r io.Reader) (MediaView, error) {
	if s.blobs == nil {
		return MediaView{}, errors.New("media storage is not configured")
	}
	prop, err := s.loadManaged(ctx, actor, id)
	if err != nil {
		return MediaView{}, err
	}

	filename = storage.SanitizeFilename(filename)
	mimeType := storage.MimeTypeFromExtension(filename)
	if !storage.AllowedMimeTypes[mimeType] {
		return MediaView{}, NewValidationError("file", "unsupported file type")
	}

	existing, err := s.queries.ListPropertyMedia(ctx, prop.ID)
	if err != nil {
		return MediaView{}, storeErr("list media", "media", err)
	}
	if len(existing) >= maxMediaPerProperty {
		return MediaView{}, NewValidationError("file", fmt.Sprintf("at most %d files per listing", maxMediaPerProperty))
	}

	if s.images != nil && imaging.IsPhoto(mimeType) {
		photo, err := s.images.Normalize(r)
		switch {
		case errors.Is(err, storage.ErrTooLarge):
			return MediaView{}, NewValidationError("file", "file is too large")
		case errors.Is(err, imaging.ErrUnsupportedFormat):
			return MediaView{}, NewValidationError("file", "file is not a valid image")
		case err != nil:
			return MediaView{}, err
		}
		r = bytes.NewReader(photo.Data)
		mimeType = photo.MimeType
		filename = imaging.FilenameFor(filename, mimeType)
	}

	key := storage.NewKey(prop.ID, filename)
	size, err := s.blobs.Put(ctx, key, r)
	if errors.Is(err, storage.ErrTooLarge) {
		return MediaView{}, NewValidationError("file", "file is too large")
	}
	if err != nil {
		return MediaView{}, &PersistenceError{Op: "store media", Err: err}
	}

	m, err := s.queries.CreatePropertyMedium(ctx, store.CreatePropertyMediumParams{
		PropertyID: prop.ID,
		StorageKey: key,
		Filename:   filename,
		MimeType:   mimeType,
		Size:       size,
		Position:   int64(len(existing)),
		CreatedAt:  s.now().UTC(),
	})
	if err != nil {
		_ = s.blobs.Delete(ctx, key)
		return MediaView{}, storeErr("create media", "media", err)
	}
	return s.mediaView(m), nil
}

// ListMedia returns a listing's media in display order.
func (s *PropertyService) ListMedia(ctx context.Context, propertyID int64) ([]MediaView, error) {
	media, err := s.queries.ListPropertyMedia(ctx, propertyID)
	if err != nil {
		return nil, storeErr("list media", "media", err)
	}
	views := make([]MediaView, 0, len(media))
	for _, m := range media {
		views = append(views, s.mediaView(m))
	}
	return views, nil
}

func (s *PropertyService) mediaView(m store.PropertyMedium) MediaView {
	v := MediaView{
		ID:        m.ID,
		Filename:  m.Filename,
		MimeType:  m.MimeType,
		Size:      m.Size,
		Position:  m.Position,
		CreatedAt: m.CreatedAt,
	}
	if s.blobs != nil {
		v.URL = s.blobs.URL(m.StorageKey)
	}
	return v
}

// ExpireListings deactivates active listings whose expiry has passed and
// notifies their owners. It returns how many listings were expired.
func (s *PropertyService) ExpireListings(ctx context.Context) (int, error) {
	now := s.now().UTC()
	expired := 0
	for {
		batch, err := s.queries.ListExpiredActiveProperties(ctx, store.ListExpiredActivePropertiesParams{
			Now:   now,
			Limit: expireBatchSize,
		})
		if err != nil {
			return expired, storeErr("list expired properties", "property", err)
		}

		changed := 0
		for _, p := range batch {
			n, err := s.queries.ExpireProperty(ctx, store.ExpirePropertyParams{UpdatedAt: now, ID: p.ID})
			if err != nil {
				return expired, storeErr("expire property", "property", err)
			}
			if n == 0 {
				continue
			}
			changed++
			s.afterExpiry(ctx, p)
		}
		expired += changed

		if len(batch) < expireBatchSize || changed == 0 {
			break
		}
	}

	if expired > 0 {
		s.stats.Invalidate(ctx)
	}
	return expired, nil
}

func (s *PropertyService) afterExpiry(ctx context.Context, p store.Property) {
	if _, err := s.notifications.Notify(ctx, NotifyInput{
		UserID:  p.OwnerID,
		Title:   "Listing expired",
		Message: fmt.Sprintf("Your listing %q has expired. Renew it to publish it again.", p.Title),
		Type:    model.NotificationPropertyExpired,
		Data:    map[string]any{"property_id": p.ID},
		Link:    "/properties/" + p.Slug,
	}); err != nil {
		s.logger.Warn("expiry notification failed", "property_id", p.ID, "error", err)
	}
	s.runner.Submit("search-remove", func(ctx context.Context) error {
		return s.indexer.Remove(ctx, p.ID)
	})
}

// Reindex pushes every active listing to the search index and returns how
// many were sent.
func (s *PropertyService) Reindex(ctx context.Context) (int, error) {
	filter := store.PropertyFilter{Status: model.PropertyStatusActive}
	sent := 0
	for offset := int64(0); ; offset += MaxPageSize {
		props, err := s.queries.ListProperties(ctx, store.ListPropertiesParams{
			PropertyFilter: filter,
			Limit:          MaxPageSize,
			Offset:         offset,
		})
		if err != nil {
			return sent, storeErr("list properties", "property", err)
		}
		for _, p := range props {
			if err := s.indexer.Index(ctx, search.DocumentFromProperty(p)); err != nil {
				return sent, fmt.Errorf("index property %d: %w", p.ID, err)
			}
			sent++
		}
		if len(props) < MaxPageSize {
			return sent, nil
		}
	}
}
