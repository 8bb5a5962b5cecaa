package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/models"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/vector"
)

// ReadCSV parses a comma-separated catalog with a header row.
func ReadCSV(r io.Reader) (*Catalog, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 0
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: parse csv: %v", vector.ErrLoad, err)
	}
	return parseTable(rows)
}

// WriteCSV writes items as name,url rows under a header.
func WriteCSV(w io.Writer, items []models.CatalogItem) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{ColumnName, ColumnURL}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, item := range items {
		if err := cw.Write([]string{item.Name, item.URL}); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes items to path, creating parent directories.
func SaveCSV(path string, items []models.CatalogItem) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := WriteCSV(f, items); err != nil {
		return err
	}
	return f.Close()
}
