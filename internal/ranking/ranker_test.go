package ranking

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/vector"
)

func mustStore(t testing.TB, dim int, rows [][]float32) *vector.Store {
	t.Helper()
	s, err := vector.NewStore(dim, rows)
	require.NoError(t, err)
	return s
}

// plainMatrix has no precomputed norms.
type plainMatrix [][]float32

func (p plainMatrix) Dimension() int { return len(p[0]) }
func (p plainMatrix) Size() int      { return len(p) }
func (p plainMatrix) VectorAt(i int) ([]float32, error) {
	return p[i], nil
}

func TestNewRanker(t *testing.T) {
	assert.Equal(t, DefaultEpsilon, NewRanker(nil).Epsilon())
	assert.Equal(t, 1e-6, NewRanker(&RankingConfig{Epsilon: 1e-6}).Epsilon())
	assert.Equal(t, DefaultEpsilon, NewRanker(&RankingConfig{Epsilon: -1}).Epsilon())
}

func TestRank_SelfSimilarity(t *testing.T) {
	store := mustStore(t, 2, [][]float32{{1, 0}, {0, 1}, {1, 1}})
	got, err := NewRanker(nil).Rank(store, []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, []int{0, 2, 1}, got.Indices())
	assert.InDelta(t, 1.0, got[0].Score, 1e-9)
	assert.InDelta(t, math.Sqrt2/2, got[1].Score, 1e-6)
	assert.InDelta(t, 0.0, got[2].Score, 1e-12)
}

func TestRank_EmptyCatalog(t *testing.T) {
	store := mustStore(t, 3, nil)
	r := NewRanker(nil)
	for _, q := range [][]float32{{1, 2, 3}, {1}, nil} {
		for _, k := range []int{0, 1, 10} {
			got, err := r.Rank(store, q, k)
			require.NoError(t, err)
			assert.Empty(t, got)
		}
	}
}

func TestRank_TieBreakByIndex(t *testing.T) {
	store := mustStore(t, 2, [][]float32{{0, 1}, {1, 0}, {1, 0}, {1, 0}})
	got, err := NewRanker(nil).Rank(store, []float32{1, 0}, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, got.Indices())
}

func TestRank_Clamping(t *testing.T) {
	store := mustStore(t, 2, [][]float32{{1, 0}, {0, 1}, {1, 1}})
	r := NewRanker(nil)

	got, err := r.Rank(store, []float32{1, 0}, 100)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	got, err = r.Rank(store, []float32{1, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRank_ZeroVectorsAreFinite(t *testing.T) {
	store := mustStore(t, 2, [][]float32{{0, 0}, {1, 0}})
	r := NewRanker(nil)

	got, err := r.Rank(store, []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Index)
	assert.Equal(t, 0.0, got[1].Score)

	got, err = r.Rank(store, []float32{0, 0}, 2)
	require.NoError(t, err)
	for _, s := range got {
		assert.False(t, math.IsNaN(s.Score) || math.IsInf(s.Score, 0))
		assert.Equal(t, 0.0, s.Score)
	}
	assert.Equal(t, []int{0, 1}, got.Indices())
}

func TestRank_NonFiniteQuery(t *testing.T) {
	store := mustStore(t, 2, [][]float32{{1, 0}, {0, 1}})
	got, err := NewRanker(nil).Rank(store, []float32{float32(math.NaN()), 1}, 2)
	require.NoError(t, err)
	for _, s := range got {
		assert.False(t, math.IsNaN(s.Score) || math.IsInf(s.Score, 0))
	}
}

func TestRank_Errors(t *testing.T) {
	store := mustStore(t, 2, [][]float32{{1, 0}})
	r := NewRanker(nil)

	_, err := r.Rank(store, []float32{1, 0, 0}, 1)
	assert.ErrorIs(t, err, vector.ErrDimensionMismatch)

	_, err = r.Rank(store, []float32{1, 0}, -1)
	assert.ErrorIs(t, err, ErrInvalidTopK)
}

func TestRank_PlainMatrixMatchesStore(t *testing.T) {
	rows := [][]float32{{0.2, 0.9, 0.1}, {0.5, 0.5, 0.5}, {-1, 0, 0.3}, {0.9, 0.1, 0.2}}
	store := mustStore(t, 3, rows)
	r := NewRanker(nil)
	q := []float32{0.7, 0.2, 0.1}

	a, err := r.Rank(store, q, 4)
	require.NoError(t, err)
	b, err := r.Rank(plainMatrix(rows), q, 4)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRank_Deterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	rows := make([][]float32, 200)
	for i := range rows {
		rows[i] = make([]float32, 16)
		for j := range rows[i] {
			// Coarse values produce many exact ties.
			rows[i][j] = float32(rng.Intn(3))
		}
	}
	store := mustStore(t, 16, rows)
	q := rows[17]
	r := NewRanker(nil)

	first, err := r.Rank(store, q, 50)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := r.Rank(store, q, 50)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	for i := 1; i < len(first); i++ {
		assert.True(t, less(first[i-1], first[i]) || first[i-1] == first[i],
			"result %d out of order: %+v then %+v", i, first[i-1], first[i])
	}
}

func TestRank_ConcurrentUse(t *testing.T) {
	store := mustStore(t, 2, [][]float32{{1, 0}, {0, 1}, {1, 1}})
	r := NewRanker(nil)
	done := make(chan Ranking, 8)
	for i := 0; i < 8; i++ {
		go func() {
			got, _ := r.Rank(store, []float32{1, 0}, 3)
			done <- got
		}()
	}
	for i := 0; i < 8; i++ {
		assert.Equal(t, []int{0, 2, 1}, (<-done).Indices())
	}
}

func BenchmarkRank(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	rows := make([][]float32, 500)
	for i := range rows {
		rows[i] = make([]float32, 384)
		for j := range rows[i] {
			rows[i][j] = rng.Float32()*2 - 1
		}
	}
	store := mustStore(b, 384, rows)
	r := NewRanker(nil)
	q := rows[0]
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := r.Rank(store, q, 10); err != nil {
			b.Fatal(err)
		}
	}
}
