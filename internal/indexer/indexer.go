// Package indexer embeds catalog rows into the embedding matrix the recommender ranks against.
package indexer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/catalog"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/embedding"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/models"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/vector"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/pkg/utils"
)

const defaultBatchSize = 32

// Builder turns catalog rows into an aligned embedding matrix.
type Builder struct {
	embedder  embedding.Embedder
	batchSize int
	logger    *zap.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithLogger sets a logger for progress output.
func WithLogger(l *zap.Logger) BuilderOption {
	return func(b *Builder) { b.logger = l }
}

// WithBatchSize sets how many rows go to the provider per request.
func WithBatchSize(n int) BuilderOption {
	return func(b *Builder) {
		if n > 0 {
			b.batchSize = n
		}
	}
}

// NewBuilder creates a builder that embeds with e.
func NewBuilder(e embedding.Embedder, opts ...BuilderOption) *Builder {
	b := &Builder{embedder: e, batchSize: defaultBatchSize}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = utils.OrNop(b.logger)
	return b
}

// Build embeds every item in order; row i of the result belongs to items[i].
func (b *Builder) Build(ctx context.Context, items []models.CatalogItem) (*vector.Store, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no catalog items to embed", vector.ErrLoad)
	}
	dims := b.embedder.Dimensions()
	rows := make([][]float32, 0, len(items))
	start := time.Now()

	for lo := 0; lo < len(items); lo += b.batchSize {
		hi := min(lo+b.batchSize, len(items))
		texts := make([]string, hi-lo)
		for i := range texts {
			texts[i] = items[lo+i].EmbeddingText()
		}
		embs, err := b.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed rows %d-%d: %w", lo, hi-1, err)
		}
		if len(embs) != len(texts) {
			return nil, fmt.Errorf("embed rows %d-%d: provider returned %d embeddings", lo, hi-1, len(embs))
		}
		for i, emb := range embs {
			if dims > 0 && len(emb) != dims {
				return nil, fmt.Errorf("%w: row %d has %d values, provider reports %d",
					vector.ErrDimensionMismatch, lo+i, len(emb), dims)
			}
			if !utils.AllFinite(emb) {
				return nil, fmt.Errorf("row %d: embedding contains non-finite values", lo+i)
			}
			rows = append(rows, emb)
		}
		b.logger.Debug("embedded batch", zap.Int("from", lo), zap.Int("to", hi), zap.Int("total", len(items)))
	}

	store, err := vector.NewStore(len(rows[0]), rows)
	if err != nil {
		return nil, err
	}
	b.logger.Info("embeddings built",
		zap.Int("items", store.Size()),
		zap.Int("dimensions", store.Dimension()),
		zap.Duration("took", time.Since(start)))
	return store, nil
}

// BuildFile loads the catalog at catalogPath, embeds it, and writes the matrix to outPath.
func (b *Builder) BuildFile(ctx context.Context, catalogPath, outPath string) (*vector.Store, error) {
	c, err := catalog.Load(ctx, catalogPath)
	if err != nil {
		return nil, err
	}
	store, err := b.Build(ctx, c.Items())
	if err != nil {
		return nil, err
	}
	if err := vector.SaveStore(outPath, store); err != nil {
		return nil, fmt.Errorf("save embeddings: %w", err)
	}
	return store, nil
}
