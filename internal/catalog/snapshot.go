package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/keyword"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/models"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/vector"
)

// ErrMisaligned is returned when the catalog and the embedding matrix
// have different row counts.
var ErrMisaligned = fmt.Errorf("%w: catalog and embeddings are misaligned", vector.ErrLoad)

// Source names the files a snapshot is loaded from.
type Source struct {
	CatalogPath    string `json:"catalog_path"`
	EmbeddingsPath string `json:"embeddings_path"`
}

// Snapshot pairs a catalog with its embedding store. It is immutable once
// built. Holders take a reference with Acquire and give it back with Release;
// the keyword index is closed when the last reference is released.
type Snapshot struct {
	Catalog  *Catalog
	Store    *vector.Store
	Keywords *keyword.CatalogIndex
	Source   Source
	LoadedAt time.Time
	Version  uint64

	refs atomic.Int64
}

var snapshotVersion atomic.Uint64

// NewSnapshot checks alignment and builds the keyword index for c.
func NewSnapshot(c *Catalog, store *vector.Store, src Source) (*Snapshot, error) {
	if c == nil || store == nil {
		return nil, fmt.Errorf("%w: nil catalog or store", vector.ErrLoad)
	}
	if c.Size() != store.Size() {
		return nil, fmt.Errorf("%w: %d catalog rows, %d embedding rows", ErrMisaligned, c.Size(), store.Size())
	}
	kw, err := keyword.NewCatalogIndex(c.items)
	if err != nil {
		return nil, fmt.Errorf("build keyword index: %w", err)
	}
	s := &Snapshot{
		Catalog:  c,
		Store:    store,
		Keywords: kw,
		Source:   src,
		LoadedAt: time.Now().UTC(),
		Version:  snapshotVersion.Add(1),
	}
	s.refs.Store(1)
	return s, nil
}

// LoadSnapshot reads both files named by src and pairs them.
func LoadSnapshot(ctx context.Context, src Source) (*Snapshot, error) {
	c, err := Load(ctx, src.CatalogPath)
	if err != nil {
		return nil, err
	}
	store, err := vector.LoadStore(src.EmbeddingsPath)
	if err != nil {
		return nil, err
	}
	return NewSnapshot(c, store, src)
}

// Size returns the number of aligned rows.
func (s *Snapshot) Size() int {
	return s.Store.Size()
}

// Dimension returns the embedding dimension.
func (s *Snapshot) Dimension() int {
	return s.Store.Dimension()
}

// Status summarizes the snapshot for status endpoints.
func (s *Snapshot) Status() *models.SnapshotStatus {
	return &models.SnapshotStatus{
		Version:        s.Version,
		Items:          s.Size(),
		Dimensions:     s.Dimension(),
		LoadedAt:       s.LoadedAt,
		CatalogPath:    s.Source.CatalogPath,
		EmbeddingsPath: s.Source.EmbeddingsPath,
		Columns:        s.Catalog.Columns(),
	}
}

// Acquire takes a reference. It fails once the snapshot has been fully released.
func (s *Snapshot) Acquire() bool {
	for {
		n := s.refs.Load()
		if n <= 0 {
			return false
		}
		if s.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// Release drops a reference, closing the keyword index on the last one.
func (s *Snapshot) Release() {
	if s.refs.Add(-1) == 0 && s.Keywords != nil {
		_ = s.Keywords.Close()
	}
}

// ErrNoSnapshot is returned by Holder.Acquire before any snapshot is published.
var ErrNoSnapshot = errors.New("no catalog snapshot loaded")
