// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package search

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/saramoussaya/barryland/internal/store"
)

func TestFilterExpr(t *testing.T) {
	tests := []struct {
		name string
		q    Query
		want string
	}{
		{"empty", Query{Text: "villa"}, ""},
		{"type", Query{TransactionType: "sale"}, `transaction_type = "sale"`},
		{
			"combined",
			Query{PropertyType: "apartment", City: "Tunis", MinPrice: 1000, MaxPrice: 250000},
			`property_type = "apartment" AND city = "Tunis" AND price >= 1000 AND price <= 250000`,
		},
		{"quotes escaped", Query{City: `La "Marsa"`}, `city = "La \"Marsa\""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := filterExpr(tt.q); got != tt.want {
				t.Errorf("filterExpr() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDocumentFromProperty(t *testing.T) {
	published := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	doc := DocumentFromProperty(store.Property{
		ID:          9,
		Title:       "Villa",
		City:        "Sousse",
		Price:       420000,
		IsFeatured:  true,
		PublishedAt: sql.NullTime{Time: published, Valid: true},
	})

	if doc.ID != 9 || doc.Title != "Villa" || doc.City != "Sousse" || !doc.IsFeatured {
		t.Errorf("unexpected document: %+v", doc)
	}
	if doc.PublishedAt != published.Unix() {
		t.Errorf("PublishedAt = %d, want %d", doc.PublishedAt, published.Unix())
	}

	if d := DocumentFromProperty(store.Property{ID: 1}); d.PublishedAt != 0 {
		t.Errorf("unpublished listing PublishedAt = %d, want 0", d.PublishedAt)
	}
}

func TestNoop(t *testing.T) {
	var idx Indexer = Noop{}
	ctx := context.Background()

	if err := idx.Index(ctx, Document{ID: 1}); err != nil {
		t.Errorf("Index: %v", err)
	}
	if err := idx.Remove(ctx, 1); err != nil {
		t.Errorf("Remove: %v", err)
	}
	if _, err := idx.Search(ctx, Query{Text: "x"}); !errors.Is(err, ErrDisabled) {
		t.Errorf("Search error = %v, want ErrDisabled", err)
	}
}
