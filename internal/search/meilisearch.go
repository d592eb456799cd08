// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package search

import (
	"context"
	"fmt"
	"strconv"

	"github.com/meilisearch/meilisearch-go"
)

// Meilisearch indexes listings in a Meilisearch instance.
type Meilisearch struct {
	client *meilisearch.Client
	index  string
}

// NewMeilisearch creates a Meilisearch indexer.
func NewMeilisearch(host, apiKey, index string) *Meilisearch {
	if index == "" {
		index = "properties"
	}
	return &Meilisearch{
		client: meilisearch.NewClient(meilisearch.ClientConfig{
			Host:   host,
			APIKey: apiKey,
		}),
		index: index,
	}
}

// Init creates the index and configures searchable and filterable attributes.
func (m *Meilisearch) Init() error {
	if _, err := m.client.CreateIndex(&meilisearch.IndexConfig{
		Uid:        m.index,
		PrimaryKey: "id",
	}); err != nil {
		return fmt.Errorf("creating index: %w", err)
	}

	idx := m.client.Index(m.index)
	if _, err := idx.UpdateSearchableAttributes(&[]string{
		"title", "description", "city", "region", "property_type", "category",
	}); err != nil {
		return fmt.Errorf("updating searchable attributes: %w", err)
	}
	if _, err := idx.UpdateFilterableAttributes(&[]string{
		"transaction_type", "property_type", "city", "price", "is_featured",
	}); err != nil {
		return fmt.Errorf("updating filterable attributes: %w", err)
	}
	if _, err := idx.UpdateSortableAttributes(&[]string{
		"price", "area", "published_at",
	}); err != nil {
		return fmt.Errorf("updating sortable attributes: %w", err)
	}
	return nil
}

// Healthy reports whether the Meilisearch server answers.
func (m *Meilisearch) Healthy() bool {
	return m.client.IsHealthy()
}

// Index implements Indexer.
func (m *Meilisearch) Index(_ context.Context, doc Document) error {
	_, err := m.client.Index(m.index).AddDocuments([]Document{doc}, "id")
	return err
}

// Remove implements Indexer.
func (m *Meilisearch) Remove(_ context.Context, id int64) error {
	_, err := m.client.Index(m.index).DeleteDocument(strconv.FormatInt(id, 10))
	return err
}

// Search implements Indexer.
func (m *Meilisearch) Search(_ context.Context, q Query) (Result, error) {
	if q.Limit <= 0 {
		q.Limit = 20
	}

	req := &meilisearch.SearchRequest{
		Limit:                q.Limit,
		Offset:               q.Offset,
		AttributesToRetrieve: []string{"id"},
	}
	if f := filterExpr(q); f != "" {
		req.Filter = f
	}

	res, err := m.client.Index(m.index).Search(q.Text, req)
	if err != nil {
		return Result{}, err
	}

	out := Result{
		IDs:   make([]int64, 0, len(res.Hits)),
		Total: res.EstimatedTotalHits,
	}
	for _, hit := range res.Hits {
		hitMap, ok := hit.(map[string]interface{})
		if !ok {
			continue
		}
		if id, ok := hitMap["id"].(float64); ok {
			out.IDs = append(out.IDs, int64(id))
		}
	}
	return out, nil
}
