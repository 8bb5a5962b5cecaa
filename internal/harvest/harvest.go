// Package harvest crawls the public product catalog listing and produces
// the catalog table consumed by the recommender, one row per unique url.
package harvest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/config"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/models"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/pkg/utils"
)

// Harvester pages through each configured listing type until a page comes back empty.
type Harvester struct {
	cfg     *config.HarvestConfig
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// Option configures a Harvester.
type Option func(*Harvester)

// WithLogger sets a logger for per-page progress.
func WithLogger(l *zap.Logger) Option {
	return func(h *Harvester) { h.logger = l }
}

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *Harvester) { h.client = c }
}

// New creates a Harvester. RateLimit <= 0 disables throttling.
func New(cfg *config.HarvestConfig, opts ...Option) *Harvester {
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	h := &Harvester{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, 1),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = utils.OrNop(h.logger)
	return h
}

// Run crawls every configured type in order and returns the deduplicated rows.
func (h *Harvester) Run(ctx context.Context) ([]models.CatalogItem, error) {
	start := time.Now()
	var all []models.CatalogItem
	for _, t := range h.cfg.Types {
		items, err := h.crawlType(ctx, t)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
	}
	unique := Dedupe(all)
	h.logger.Info("harvest finished",
		zap.Int("scraped", len(all)),
		zap.Int("unique", len(unique)),
		zap.Duration("took", time.Since(start)))
	return unique, nil
}

func (h *Harvester) crawlType(ctx context.Context, t config.HarvestType) ([]models.CatalogItem, error) {
	step := h.cfg.PageSize
	if step <= 0 {
		step = 12
	}
	var out []models.CatalogItem
	for offset := 0; offset < t.MaxStart; offset += step {
		items, err := h.FetchPage(ctx, offset, t.Type)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			break
		}
		out = append(out, items...)
	}
	h.logger.Info("harvested listing type", zap.Int("type", t.Type), zap.Int("items", len(out)))
	return out, nil
}

// FetchPage requests one listing page. A non-200 response or a page without
// rows returns no items and no error, which ends the crawl for that type.
func (h *Harvester) FetchPage(ctx context.Context, start, listingType int) ([]models.CatalogItem, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	target, err := pageURL(h.cfg.BaseURL, start, listingType)
	if err != nil {
		return nil, err
	}
	h.logger.Debug("scraping", zap.String("url", target))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	if h.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", h.cfg.UserAgent)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		h.logger.Warn("listing page returned non-200, stopping type",
			zap.String("url", target), zap.Int("status", resp.StatusCode))
		return nil, nil
	}
	items, err := ParsePage(resp.Body, h.cfg.SiteURL)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].TestType = listingType
	}
	return items, nil
}

func pageURL(base string, start, listingType int) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base url %q: %w", base, err)
	}
	q := u.Query()
	q.Set("start", strconv.Itoa(start))
	q.Set("type", strconv.Itoa(listingType))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Dedupe keeps the first row for each url, preserving order.
func Dedupe(items []models.CatalogItem) []models.CatalogItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]models.CatalogItem, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.URL]; ok {
			continue
		}
		seen[item.URL] = struct{}{}
		item.Index = len(out)
		out = append(out, item)
	}
	return out
}
