package vector

import (
	"fmt"
)

// Store is an immutable N x D matrix of float32 row vectors.
// Row norms are computed once at construction. A Store is safe for
// concurrent use without locking because nothing mutates it after NewStore.
type Store struct {
	dimensions int
	size       int
	data       []float32
	norms      []float64
}

// NewStore copies rows into a new Store. Every row must have exactly
// dimensions entries. An empty rows slice yields a valid empty Store.
func NewStore(dimensions int, rows [][]float32) (*Store, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	data := make([]float32, 0, len(rows)*dimensions)
	norms := make([]float64, len(rows))
	for i, row := range rows {
		if len(row) != dimensions {
			return nil, fmt.Errorf("%w: row %d has %d values, expected %d", ErrDimensionMismatch, i, len(row), dimensions)
		}
		data = append(data, row...)
		norms[i] = L2Norm(row)
	}
	return &Store{
		dimensions: dimensions,
		size:       len(rows),
		data:       data,
		norms:      norms,
	}, nil
}

// newStoreFlat takes ownership of data, which must hold size*dimensions values.
func newStoreFlat(dimensions, size int, data []float32) *Store {
	norms := make([]float64, size)
	for i := 0; i < size; i++ {
		norms[i] = L2Norm(data[i*dimensions : (i+1)*dimensions])
	}
	return &Store{dimensions: dimensions, size: size, data: data, norms: norms}
}

// Dimension returns D.
func (s *Store) Dimension() int {
	return s.dimensions
}

// Size returns N.
func (s *Store) Size() int {
	return s.size
}

// VectorAt returns row i. The returned slice aliases the store and must not be modified.
func (s *Store) VectorAt(i int) ([]float32, error) {
	if i < 0 || i >= s.size {
		return nil, fmt.Errorf("%w: row %d of %d", ErrIndexOutOfRange, i, s.size)
	}
	start := i * s.dimensions
	end := start + s.dimensions
	return s.data[start:end:end], nil
}

// NormAt returns the precomputed L2 norm of row i.
func (s *Store) NormAt(i int) (float64, error) {
	if i < 0 || i >= s.size {
		return 0, fmt.Errorf("%w: row %d of %d", ErrIndexOutOfRange, i, s.size)
	}
	return s.norms[i], nil
}
