// Package ranking scores every catalog vector against a query vector and
// returns the best matches in a deterministic order.
package ranking

import "errors"

// ErrInvalidTopK is returned for a negative topK.
var ErrInvalidTopK = errors.New("topK must be non-negative")

// ScoredResult is one ranked catalog row.
type ScoredResult struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// Ranking is ordered by Score descending, then Index ascending.
type Ranking []ScoredResult

// Indices returns the row indices in rank order.
func (r Ranking) Indices() []int {
	out := make([]int, len(r))
	for i, s := range r {
		out[i] = s.Index
	}
	return out
}

// less reports whether a ranks ahead of b.
func less(a, b ScoredResult) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Index < b.Index
}
