package vector

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Format identifies an on-disk matrix encoding.
type Format string

const (
	// FormatNPY is a NumPy .npy array (float32 or float64, C order).
	FormatNPY Format = "npy"
	// FormatVec is the compact little-endian float32 format.
	FormatVec Format = "vec"
)

// MaxValues bounds N*D for a matrix read from disk (1 GiB of float32).
const MaxValues = 1 << 28

// checkShape rejects empty, oversized, or truncated matrices before any
// allocation. avail is the number of payload bytes in the source, or -1.
func checkShape(n, d, wordSize int, avail int64) error {
	if n <= 0 || d <= 0 {
		return fmt.Errorf("%w: empty matrix (%dx%d)", ErrLoad, n, d)
	}
	if d > MaxValues || n > MaxValues/d {
		return fmt.Errorf("%w: matrix %dx%d exceeds %d values", ErrLoad, n, d, MaxValues)
	}
	if need := int64(n) * int64(d) * int64(wordSize); avail >= 0 && need > avail {
		return fmt.Errorf("%w: matrix %dx%d needs %d bytes, source has %d", ErrLoad, n, d, need, avail)
	}
	return nil
}

// initialCap caps the up-front allocation for a matrix of total values;
// larger matrices grow as rows are read.
func initialCap(total int) int {
	return min(total, 1<<20)
}

// FormatForPath picks the encoding from the file extension.
// Supported extensions: .npy, .vec, .bin.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".npy":
		return FormatNPY, nil
	case ".vec", ".bin":
		return FormatVec, nil
	default:
		return "", fmt.Errorf("unknown matrix format for %s (supported: .npy, .vec, .bin)", path)
	}
}

// LoadStore reads a matrix file. All failures wrap ErrLoad.
func LoadStore(path string) (*Store, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open matrix file: %v", ErrLoad, err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: stat matrix file: %v", ErrLoad, err)
	}

	var s *Store
	switch format {
	case FormatNPY:
		s, err = readNPY(f, info.Size())
	default:
		s, err = readVec(f, info.Size())
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// SaveStore writes s to path in the format implied by its extension.
// The parent directory is created if needed.
func SaveStore(path string, s *Store) error {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create matrix dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create matrix file: %w", err)
	}
	defer f.Close()

	switch format {
	case FormatNPY:
		err = WriteNPY(f, s)
	default:
		err = WriteVec(f, s)
	}
	if err != nil {
		return err
	}
	return f.Close()
}
