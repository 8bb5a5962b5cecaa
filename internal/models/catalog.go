// Package models defines the data shared by the catalog, the recommender and its transports.
package models

import (
	"maps"
	"strings"
	"time"
)

// CatalogItem is one assessment row. Index is the row position in the loaded
// catalog and equals the row of its vector in the embedding matrix.
type CatalogItem struct {
	Index       int               `json:"index"`
	Name        string            `json:"name"`
	URL         string            `json:"url"`
	Description string            `json:"description,omitempty"`
	TestType    int               `json:"test_type,omitempty"`
	Extra       map[string]string `json:"extra,omitempty"`
}

// EmbeddingText is the text embedded for this item during offline ingestion:
// the normalized name, followed by the normalized description when present.
func (c *CatalogItem) EmbeddingText() string {
	name, desc := NormalizeText(c.Name), NormalizeText(c.Description)
	if desc == "" {
		return name
	}
	return name + ". " + desc
}

// Clone returns a copy of c that shares no maps with it.
func (c *CatalogItem) Clone() CatalogItem {
	out := *c
	out.Extra = maps.Clone(c.Extra)
	return out
}

// NormalizeText trims s and collapses each run of whitespace to one space.
// Catalog rows and queries go through it before embedding.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// HarvestRun records one crawl of the public catalog.
type HarvestRun struct {
	ID         string    `json:"id" db:"id"`
	StartedAt  time.Time `json:"started_at" db:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty" db:"finished_at"`
	Status     string    `json:"status" db:"status"`
	ItemCount  int       `json:"item_count" db:"item_count"`
	NewItems   int       `json:"new_items" db:"new_items"`
	Error      string    `json:"error,omitempty" db:"error"`
}

// Harvest run states.
const (
	HarvestRunning   = "running"
	HarvestCompleted = "completed"
	HarvestFailed    = "failed"
)
