package indexer

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/catalog"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/embedding"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/models"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/vector"
)

// countingEmbedder records batch sizes and can return a bad dimension.
type countingEmbedder struct {
	*embedding.MockEmbedder
	batches []int
	short   bool
	fail    error
}

func (c *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	c.batches = append(c.batches, len(texts))
	if c.fail != nil {
		return nil, c.fail
	}
	out, err := c.MockEmbedder.EmbedBatch(ctx, texts)
	if err == nil && c.short {
		out[0] = out[0][:1]
	}
	return out, err
}

func sampleItems() []models.CatalogItem {
	return []models.CatalogItem{
		{Name: "Leadership Report", URL: "https://www.shl.com/a", Description: "Assesses  leadership\npotential"},
		{Name: "Java 8 (New)", URL: "https://www.shl.com/b"},
		{Name: "Verify Numerical", URL: "https://www.shl.com/c"},
		{Name: "OPQ32r", URL: "https://www.shl.com/d"},
		{Name: "Sales Profiler", URL: "https://www.shl.com/e"},
	}
}

func TestBuild_AlignedRows(t *testing.T) {
	ctx := context.Background()
	e := &countingEmbedder{MockEmbedder: embedding.NewMockEmbedder(8)}
	b := NewBuilder(e, WithBatchSize(2))

	items := sampleItems()
	store, err := b.Build(ctx, items)
	require.NoError(t, err)
	assert.Equal(t, 5, store.Size())
	assert.Equal(t, 8, store.Dimension())
	assert.Equal(t, []int{2, 2, 1}, e.batches)

	for i, item := range items {
		want, err := e.Embed(ctx, item.EmbeddingText())
		require.NoError(t, err)
		got, err := store.VectorAt(i)
		require.NoError(t, err)
		assert.Equal(t, want, got, "row %d", i)
	}
}

func TestBuild_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := NewBuilder(embedding.NewMockEmbedder(4)).Build(ctx, nil)
	assert.ErrorIs(t, err, vector.ErrLoad)

	short := &countingEmbedder{MockEmbedder: embedding.NewMockEmbedder(4), short: true}
	_, err = NewBuilder(short).Build(ctx, sampleItems())
	assert.ErrorIs(t, err, vector.ErrDimensionMismatch)

	down := &countingEmbedder{MockEmbedder: embedding.NewMockEmbedder(4), fail: embedding.ErrProviderUnavailable}
	_, err = NewBuilder(down).Build(ctx, sampleItems())
	assert.True(t, errors.Is(err, embedding.ErrProviderUnavailable))
}

func TestBuildFile_LoadsAsSnapshot(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	src := catalog.Source{
		CatalogPath:    filepath.Join(dir, "catalog.csv"),
		EmbeddingsPath: filepath.Join(dir, "emb", "catalog_embeddings.npy"),
	}
	require.NoError(t, catalog.SaveCSV(src.CatalogPath, sampleItems()))

	_, err := NewBuilder(embedding.NewMockEmbedder(16)).BuildFile(ctx, src.CatalogPath, src.EmbeddingsPath)
	require.NoError(t, err)

	snap, err := catalog.LoadSnapshot(ctx, src)
	require.NoError(t, err)
	defer snap.Release()
	assert.Equal(t, 5, snap.Size())
	assert.Equal(t, 16, snap.Dimension())
}
