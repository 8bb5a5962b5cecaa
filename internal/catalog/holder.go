package catalog

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/pkg/utils"
)

// Holder publishes the current Snapshot. Readers never block; a reload
// builds the replacement off to the side and swaps it in with one pointer store.
type Holder struct {
	current atomic.Pointer[Snapshot]
	mu      sync.Mutex
	logger  *zap.Logger
}

// NewHolder returns a holder publishing initial, which may be nil.
func NewHolder(initial *Snapshot, logger *zap.Logger) *Holder {
	h := &Holder{logger: utils.OrNop(logger)}
	if initial != nil {
		h.current.Store(initial)
	}
	return h
}

// Acquire returns the current snapshot with a reference held.
// The caller must call Release on it.
func (h *Holder) Acquire() (*Snapshot, error) {
	for {
		s := h.current.Load()
		if s == nil {
			return nil, ErrNoSnapshot
		}
		if s.Acquire() {
			return s, nil
		}
		// s was swapped out and drained between Load and Acquire.
	}
}

// Current returns the published snapshot without taking a reference.
// Only metadata fields are safe to read from it.
func (h *Holder) Current() *Snapshot {
	return h.current.Load()
}

// Swap publishes next and releases the holder's reference to the previous one.
func (h *Holder) Swap(next *Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.swapLocked(next)
}

func (h *Holder) swapLocked(next *Snapshot) {
	prev := h.current.Swap(next)
	if prev != nil {
		prev.Release()
	}
}

// Reload loads a snapshot from src and publishes it. On failure the
// current snapshot stays in place. Concurrent reloads run one at a time.
func (h *Holder) Reload(ctx context.Context, src Source) (*Snapshot, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	next, err := LoadSnapshot(ctx, src)
	if err != nil {
		h.logger.Warn("Catalog reload failed, keeping current snapshot",
			zap.String("catalog", src.CatalogPath),
			zap.String("embeddings", src.EmbeddingsPath),
			zap.Error(err))
		return nil, err
	}
	h.swapLocked(next)
	h.logger.Info("Catalog reloaded",
		zap.Uint64("version", next.Version),
		zap.Int("items", next.Size()),
		zap.Int("dimensions", next.Dimension()))
	return next, nil
}

// Close releases the published snapshot.
func (h *Holder) Close() {
	h.Swap(nil)
}
