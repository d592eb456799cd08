// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package search keeps a full-text index of active listings.
package search

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/saramoussaya/barryland/internal/store"
)

// ErrDisabled is returned by Search when no search backend is configured.
var ErrDisabled = errors.New("search: disabled")

// Document is the indexed representation of a listing.
type Document struct {
	ID              int64   `json:"id"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	Slug            string  `json:"slug"`
	TransactionType string  `json:"transaction_type"`
	PropertyType    string  `json:"property_type"`
	Category        string  `json:"category"`
	City            string  `json:"city"`
	Region          string  `json:"region"`
	Price           float64 `json:"price"`
	Area            float64 `json:"area"`
	Bedrooms        int64   `json:"bedrooms"`
	Priority        string  `json:"priority"`
	IsFeatured      bool    `json:"is_featured"`
	PublishedAt     int64   `json:"published_at"`
}

// DocumentFromProperty builds the index document for a listing.
func DocumentFromProperty(p store.Property) Document {
	doc := Document{
		ID:              p.ID,
		Title:           p.Title,
		Description:     p.Description,
		Slug:            p.Slug,
		TransactionType: p.TransactionType,
		PropertyType:    p.PropertyType,
		Category:        p.Category,
		City:            p.City,
		Region:          p.Region,
		Price:           p.Price,
		Area:            p.Area,
		Bedrooms:        p.Bedrooms,
		Priority:        p.Priority,
		IsFeatured:      p.IsFeatured,
	}
	if p.PublishedAt.Valid {
		doc.PublishedAt = p.PublishedAt.Time.Unix()
	}
	return doc
}

// Query describes a listing search.
type Query struct {
	Text            string
	TransactionType string
	PropertyType    string
	City            string
	MinPrice        float64
	MaxPrice        float64
	Limit           int64
	Offset          int64
}

// Result holds matching listing IDs in relevance order.
type Result struct {
	IDs   []int64
	Total int64
}

// Indexer maintains the listing index.
type Indexer interface {
	Index(ctx context.Context, doc Document) error
	Remove(ctx context.Context, id int64) error
	Search(ctx context.Context, q Query) (Result, error)
}

// Noop is used when no search backend is configured.
type Noop struct{}

// Index implements Indexer.
func (Noop) Index(context.Context, Document) error { return nil }

// Remove implements Indexer.
func (Noop) Remove(context.Context, int64) error { return nil }

// Search implements Indexer.
func (Noop) Search(context.Context, Query) (Result, error) { return Result{}, ErrDisabled }

// filterExpr builds a Meilisearch filter expression for q.
func filterExpr(q Query) string {
	var filters []string
	if q.TransactionType != "" {
		filters = append(filters, "transaction_type = "+quote(q.TransactionType))
	}
	if q.PropertyType != "" {
		filters = append(filters, "property_type = "+quote(q.PropertyType))
	}
	if q.City != "" {
		filters = append(filters, "city = "+quote(q.City))
	}
	if q.MinPrice > 0 {
		filters = append(filters, "price >= "+strconv.FormatFloat(q.MinPrice, 'f', -1, 64))
	}
	if q.MaxPrice > 0 {
		filters = append(filters, "price <= "+strconv.FormatFloat(q.MaxPrice, 'f', -1, 64))
	}
	return strings.Join(filters, " AND ")
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
