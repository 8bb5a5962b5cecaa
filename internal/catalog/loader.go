package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/models"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/storage"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/vector"
)

// Load reads a catalog from path, picking the reader by extension:
// .csv, .xlsx, or .db/.sqlite (a harvest database). All failures wrap vector.ErrLoad.
func Load(ctx context.Context, path string) (*Catalog, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%w: open catalog: %v", vector.ErrLoad, err)
		}
		defer f.Close()
		c, err := ReadCSV(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return c, nil
	case ".xlsx":
		c, err := ReadXLSX(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return c, nil
	case ".db", ".sqlite", ".sqlite3":
		return loadStorage(ctx, path)
	default:
		return nil, fmt.Errorf("%w: unsupported catalog format %q (supported: .csv, .xlsx, .db)", vector.ErrLoad, ext)
	}
}

func loadStorage(ctx context.Context, path string) (*Catalog, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: open catalog: %v", vector.ErrLoad, err)
	}
	db, err := storage.NewSQLiteStorage(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", vector.ErrLoad, err)
	}
	defer db.Close()
	items, err := db.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list items: %v", vector.ErrLoad, err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: %s has no catalog items", vector.ErrLoad, path)
	}
	return New(items), nil
}

// Save writes items to path as .csv or .xlsx.
func Save(path string, items []models.CatalogItem) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return SaveCSV(path, items)
	case ".xlsx":
		return SaveXLSX(path, items)
	default:
		return fmt.Errorf("unsupported output format %q (supported: .csv, .xlsx)", ext)
	}
}
