// Package catalog loads the assessment table, pairs it with its embedding
// matrix, and publishes the pair as an immutable, atomically swappable snapshot.
package catalog

import (
	"fmt"

	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/models"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/vector"
)

// Standard column names. Matching is case-insensitive.
const (
	ColumnName        = "name"
	ColumnURL         = "url"
	ColumnDescription = "description"
	ColumnTestType    = "test_type"
)

// Catalog is an ordered, read-only list of catalog items.
// Row i describes the same assessment as row i of the embedding matrix.
type Catalog struct {
	items   []models.CatalogItem
	columns []string
}

// New builds a Catalog from items, renumbering Index to match slice position.
func New(items []models.CatalogItem) *Catalog {
	out := make([]models.CatalogItem, len(items))
	for i, item := range items {
		out[i] = item.Clone()
		out[i].Index = i
	}
	return &Catalog{items: out, columns: []string{ColumnName, ColumnURL}}
}

// Size returns the number of rows.
func (c *Catalog) Size() int {
	return len(c.items)
}

// RowAt returns a copy of row i.
func (c *Catalog) RowAt(i int) (*models.CatalogItem, error) {
	if i < 0 || i >= len(c.items) {
		return nil, fmt.Errorf("%w: catalog row %d of %d", vector.ErrIndexOutOfRange, i, len(c.items))
	}
	item := c.items[i].Clone()
	return &item, nil
}

// Items returns a copy of all rows in order.
func (c *Catalog) Items() []models.CatalogItem {
	out := make([]models.CatalogItem, len(c.items))
	for i, item := range c.items {
		out[i] = item.Clone()
	}
	return out
}

// Columns returns the source column names in file order.
func (c *Catalog) Columns() []string {
	out := make([]string, len(c.columns))
	copy(out, c.columns)
	return out
}
