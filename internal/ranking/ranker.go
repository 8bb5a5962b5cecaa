package ranking

import (
	"fmt"
	"sort"

	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/vector"
)

// normer is implemented by matrices that precompute row norms.
type normer interface {
	NormAt(i int) (float64, error)
}

// Ranker computes exact cosine similarity over every row of a matrix.
// It holds no mutable state and is safe for concurrent use.
type Ranker struct {
	config *RankingConfig
}

// NewRanker creates a new Ranker with the given configuration.
func NewRanker(config *RankingConfig) *Ranker {
	if config == nil {
		config = DefaultRankingConfig()
	}
	config.ApplyDefaults()
	return &Ranker{config: config}
}

// Epsilon returns the denominator guard in use.
func (r *Ranker) Epsilon() float64 {
	return r.config.Epsilon
}

// Rank scores query against all rows of m and returns the min(topK, N) best.
// An empty matrix yields an empty Ranking for any query. Scores are always finite.
func (r *Ranker) Rank(m vector.Matrix, query []float32, topK int) (Ranking, error) {
	if topK < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTopK, topK)
	}
	n := m.Size()
	if n == 0 {
		return Ranking{}, nil
	}
	if len(query) != m.Dimension() {
		return nil, fmt.Errorf("%w: query has %d values, catalog vectors have %d",
			vector.ErrDimensionMismatch, len(query), m.Dimension())
	}
	if topK == 0 {
		return Ranking{}, nil
	}

	norms, _ := m.(normer)
	queryNorm := vector.L2Norm(query)
	scores := make(Ranking, n)
	for i := 0; i < n; i++ {
		v, err := m.VectorAt(i)
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", i, err)
		}
		var norm float64
		if norms != nil {
			if norm, err = norms.NormAt(i); err != nil {
				return nil, fmt.Errorf("read norm %d: %w", i, err)
			}
		} else {
			norm = vector.L2Norm(v)
		}
		scores[i] = ScoredResult{
			Index: i,
			Score: vector.CosineWithNorms(query, v, queryNorm, norm, r.config.Epsilon),
		}
	}

	sort.Slice(scores, func(i, j int) bool { return less(scores[i], scores[j]) })
	if topK > n {
		topK = n
	}
	return scores[:topK:topK], nil
}
