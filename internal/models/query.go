package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyQuery is returned for queries that are empty after trimming whitespace.
	ErrEmptyQuery = errors.New("query cannot be empty")
	// ErrInvalidTopK is returned for a negative top_k.
	ErrInvalidTopK = errors.New("top_k must be non-negative")
)

// RecommendRequest is the body of POST /recommend.
// TopK is a pointer so an omitted value can be told apart from an explicit 0.
type RecommendRequest struct {
	Query string `json:"query"`
	TopK  *int   `json:"top_k,omitempty"`
}

// Validate rejects a blank query and resolves TopK against defaultTopK.
// Returns the effective topK. The query is left as sent.
func (r *RecommendRequest) Validate(defaultTopK int) (int, error) {
	if strings.TrimSpace(r.Query) == "" {
		return 0, ErrEmptyQuery
	}
	if r.TopK == nil {
		return defaultTopK, nil
	}
	if *r.TopK < 0 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidTopK, *r.TopK)
	}
	return *r.TopK, nil
}
