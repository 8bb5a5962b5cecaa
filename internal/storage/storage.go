// Package storage persists harvested catalog items and the runs that produced them.
package storage

import (
	"context"
	"errors"

	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/models"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// Storage defines harvest persistence operations.
type Storage interface {
	// Run operations
	CreateRun(ctx context.Context, run *models.HarvestRun) error
	FinishRun(ctx context.Context, run *models.HarvestRun) error
	GetRun(ctx context.Context, id string) (*models.HarvestRun, error)
	ListRuns(ctx context.Context, limit int) ([]*models.HarvestRun, error)

	// Item operations. Items are keyed by URL; the first occurrence wins.
	UpsertItems(ctx context.Context, runID string, items []models.CatalogItem) (added int, err error)
	ListItems(ctx context.Context) ([]models.CatalogItem, error)
	CountItems(ctx context.Context) (int64, error)

	Close() error
}
