// Package recommend is the single entry point for turning free-text queries
// into ranked catalog recommendations.
package recommend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/catalog"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/config"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/embedding"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/keyword"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/models"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/ranking"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/pkg/utils"
)

const nameBoost = 3.0

// Service embeds a query, ranks it against the current snapshot, and joins
// the winning rows back to catalog items. Safe for concurrent use.
type Service struct {
	holder       *catalog.Holder
	embedder     embedding.Embedder
	ranker       *ranking.Ranker
	defaultTopK  int
	embedTimeout time.Duration
	logger       *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets a logger for per-request debug output.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithEmbedTimeout bounds each query embedding call. Zero means no extra bound.
func WithEmbedTimeout(d time.Duration) Option {
	return func(s *Service) { s.embedTimeout = d }
}

// NewService creates a Service over holder. cfg may be nil.
func NewService(holder *catalog.Holder, embedder embedding.Embedder, cfg *config.RecommendConfig, opts ...Option) *Service {
	if cfg == nil {
		cfg = &config.RecommendConfig{DefaultTopK: 5}
	}
	s := &Service{
		holder:      holder,
		embedder:    embedder,
		ranker:      ranking.NewRanker(&ranking.RankingConfig{Epsilon: cfg.Epsilon}),
		defaultTopK: cfg.DefaultTopK,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = utils.OrNop(s.logger)
	return s
}

// DefaultTopK is the topK used when a request omits it.
func (s *Service) DefaultTopK() int {
	return s.defaultTopK
}

// Recommend returns up to topK catalog items most similar to query, best first.
// The query is normalized for embedding and echoed back as sent.
func (s *Service) Recommend(ctx context.Context, query string, topK int) (*models.RecommendResponse, error) {
	text := models.NormalizeText(query)
	if text == "" {
		return nil, ErrEmptyQuery
	}
	if topK < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTopK, topK)
	}
	if s.holder.Current() == nil {
		return nil, catalog.ErrNoSnapshot
	}

	start := time.Now()
	vec, err := s.embed(ctx, text)
	if err != nil {
		return nil, err
	}

	snap, err := s.holder.Acquire()
	if err != nil {
		return nil, err
	}
	defer snap.Release()

	ranked, err := s.ranker.Rank(snap.Store, vec, topK)
	if err != nil {
		return nil, err
	}

	resp := &models.RecommendResponse{
		Query:   query,
		Results: make([]models.Recommendation, 0, len(ranked)),
	}
	for _, r := range ranked {
		item, err := snap.Catalog.RowAt(r.Index)
		if err != nil {
			return nil, fmt.Errorf("join ranking with catalog: %w", err)
		}
		resp.Results = append(resp.Results, models.Recommendation{
			Name:  item.Name,
			URL:   item.URL,
			Score: r.Score,
		})
	}

	s.logger.Debug("recommend",
		zap.String("query", utils.Truncate(text, 80)),
		zap.Int("top_k", topK),
		zap.Int("results", len(resp.Results)),
		zap.Uint64("snapshot", snap.Version),
		zap.Duration("took", time.Since(start)))
	return resp, nil
}

func (s *Service) embed(ctx context.Context, query string) ([]float32, error) {
	if s.embedTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.embedTimeout)
		defer cancel()
	}
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingFailed, err)
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("%w: provider returned an empty vector", ErrEmbeddingFailed)
	}
	return vec, nil
}

// Item returns catalog row index from the current snapshot.
func (s *Service) Item(index int) (*models.CatalogItem, error) {
	snap, err := s.holder.Acquire()
	if err != nil {
		return nil, err
	}
	defer snap.Release()

	item, err := snap.Catalog.RowAt(index)
	if err != nil {
		return nil, fmt.Errorf("%w: catalog row %d", ErrNotFound, index)
	}
	return item, nil
}

// SearchCatalog runs a keyword lookup over catalog names and descriptions.
func (s *Service) SearchCatalog(ctx context.Context, query string, limit int, fuzzy bool) (*models.CatalogSearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	snap, err := s.holder.Acquire()
	if err != nil {
		return nil, err
	}
	defer snap.Release()

	hits, total, err := snap.Keywords.Search(ctx, query, limit, &keyword.SearchOptions{NameBoost: nameBoost, FuzzyEnabled: fuzzy})
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}
	resp := &models.CatalogSearchResponse{
		Query:   query,
		Results: make([]*models.CatalogMatch, 0, len(hits)),
		Total:   total,
	}
	for _, h := range hits {
		item, err := snap.Catalog.RowAt(h.Index)
		if err != nil {
			return nil, fmt.Errorf("join keyword hit with catalog: %w", err)
		}
		resp.Results = append(resp.Results, &models.CatalogMatch{Item: item, Score: h.Score})
	}
	return resp, nil
}
