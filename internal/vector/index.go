// Package vector holds the immutable embedding matrix the recommender ranks against.
package vector

import "errors"

var (
	// ErrLoad is returned when a matrix source is malformed, empty, or ragged.
	ErrLoad = errors.New("load error")
	// ErrDimensionMismatch is returned when a vector's length differs from the store dimension.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrIndexOutOfRange is returned for row lookups outside [0, Size()).
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Matrix is a read-only view over N row vectors of equal dimension.
type Matrix interface {
	Dimension() int
	Size() int
	VectorAt(i int) ([]float32, error)
}
