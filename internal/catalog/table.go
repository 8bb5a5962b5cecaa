package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/models"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/vector"
)

// parseTable converts a header row plus data rows into a Catalog.
// Blank rows are skipped. Every remaining row must carry a name and a url.
func parseTable(rows [][]string) (*Catalog, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: catalog has no header row", vector.ErrLoad)
	}

	header := make([]string, len(rows[0]))
	pos := map[string]int{}
	for i, h := range rows[0] {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		header[i] = h
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}
	nameCol, ok := pos[ColumnName]
	if !ok {
		return nil, fmt.Errorf("%w: catalog has no %q column", vector.ErrLoad, ColumnName)
	}
	urlCol, ok := pos[ColumnURL]
	if !ok {
		return nil, fmt.Errorf("%w: catalog has no %q column", vector.ErrLoad, ColumnURL)
	}
	descCol, hasDesc := pos[ColumnDescription]
	typeCol, hasType := pos[ColumnTestType]

	items := make([]models.CatalogItem, 0, len(rows)-1)
	for line, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		cell := func(i int) string {
			if i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}
		item := models.CatalogItem{
			Index: len(items),
			Name:  cell(nameCol),
			URL:   cell(urlCol),
		}
		if item.Name == "" || item.URL == "" {
			return nil, fmt.Errorf("%w: data row %d is missing name or url", vector.ErrLoad, line+1)
		}
		if hasDesc {
			item.Description = cell(descCol)
		}
		if hasType {
			if v := cell(typeCol); v != "" {
				n, err := strconv.Atoi(v)
				if err != nil {
					return nil, fmt.Errorf("%w: data row %d: bad %s %q", vector.ErrLoad, line+1, ColumnTestType, v)
				}
				item.TestType = n
			}
		}
		for i, h := range header {
			switch {
			case i == nameCol, i == urlCol, hasDesc && i == descCol, hasType && i == typeCol, h == "":
				continue
			}
			if v := cell(i); v != "" {
				if item.Extra == nil {
					item.Extra = map[string]string{}
				}
				item.Extra[h] = v
			}
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: catalog has no data rows", vector.ErrLoad)
	}
	return &Catalog{items: items, columns: header}, nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
