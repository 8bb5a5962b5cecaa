package keyword

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/models"
)

const (
	fieldName        = "name"
	fieldDescription = "description"
)

// CatalogIndex is an in-memory Bleve index built once per catalog snapshot.
type CatalogIndex struct {
	index bleve.Index
}

type catalogDoc struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// NewCatalogIndex indexes items by their Index field.
func NewCatalogIndex(items []models.CatalogItem) (*CatalogIndex, error) {
	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so "java" matches "Java 8" exactly.
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt(fieldName, textFieldMapping)
	docMapping.AddFieldMappingsAt(fieldDescription, textFieldMapping)
	urlMapping := bleve.NewKeywordFieldMapping()
	urlMapping.Store = false
	docMapping.AddFieldMappingsAt("url", urlMapping)
	im.DefaultMapping = docMapping

	index, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}

	batch := index.NewBatch()
	for _, item := range items {
		doc := catalogDoc{Name: item.Name, Description: item.Description, URL: item.URL}
		if err := batch.Index(strconv.Itoa(item.Index), doc); err != nil {
			_ = index.Close()
			return nil, fmt.Errorf("index item %d: %w", item.Index, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		_ = index.Close()
		return nil, fmt.Errorf("failed to index catalog: %w", err)
	}
	return &CatalogIndex{index: index}, nil
}

// Search returns up to limit catalog rows matching query, best first.
// Name and description scores are added, with name matches multiplied by NameBoost.
func (c *CatalogIndex) Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*KeywordResult, uint64, error) {
	if strings.TrimSpace(query) == "" || limit <= 0 {
		return nil, 0, nil
	}
	nameBoost := 1.0
	fuzzy := false
	fuzziness := 1
	if opts != nil {
		if opts.NameBoost > 0 {
			nameBoost = opts.NameBoost
		}
		fuzzy = opts.FuzzyEnabled
		if opts.Fuzziness > 0 {
			fuzziness = opts.Fuzziness
		}
	}

	reqSize := limit * 2
	if reqSize < 50 {
		reqSize = 50
	}

	scores := make(map[int]float64)
	for _, f := range []struct {
		field string
		boost float64
	}{{fieldName, nameBoost}, {fieldDescription, 1.0}} {
		req := bleve.NewSearchRequest(buildQuery(query, f.field, fuzzy, fuzziness))
		req.Size = reqSize
		res, err := c.index.SearchInContext(ctx, req)
		if err != nil {
			return nil, 0, fmt.Errorf("Bleve %s search failed: %w", f.field, err)
		}
		for _, hit := range res.Hits {
			idx, err := strconv.Atoi(hit.ID)
			if err != nil {
				continue
			}
			scores[idx] += hit.Score * f.boost
		}
	}

	out := make([]*KeywordResult, 0, len(scores))
	for idx, score := range scores {
		out = append(out, &KeywordResult{Index: idx, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Index < out[j].Index
	})
	total := uint64(len(out))
	if len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

// buildQuery matches query against field. Fuzzy mode builds a disjunction
// of per-term fuzzy queries.
func buildQuery(query, field string, fuzzy bool, fuzziness int) blevequery.Query {
	terms := tokenizeQuery(query)
	if !fuzzy || len(terms) == 0 {
		mq := bleve.NewMatchQuery(query)
		mq.SetField(field)
		return mq
	}
	queries := make([]blevequery.Query, 0, len(terms))
	for _, term := range terms {
		fq := bleve.NewFuzzyQuery(term)
		fq.SetFuzziness(fuzziness)
		fq.SetField(field)
		queries = append(queries, fq)
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewDisjunctionQuery(queries...)
}

// tokenizeQuery splits query into lowercase terms.
func tokenizeQuery(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// DocCount returns the number of indexed items.
func (c *CatalogIndex) DocCount() (uint64, error) {
	return c.index.DocCount()
}

// Close releases the index.
func (c *CatalogIndex) Close() error {
	return c.index.Close()
}
