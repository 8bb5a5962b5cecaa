// Package server provides the HTTP API for the recommender.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/catalog"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/config"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/recommend"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/storage"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/pkg/utils"
)

// Server is the HTTP server for the recommender API.
type Server struct {
	service *recommend.Service
	holder  *catalog.Holder
	source  catalog.Source
	storage storage.Storage // optional; enables harvested item counts in status
	config  *config.Config
	version string
	logger  *zap.Logger
	server  *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithStorage attaches the harvest database for status reporting.
func WithStorage(st storage.Storage) Option {
	return func(s *Server) { s.storage = st }
}

// WithVersion sets the version string reported by / and status.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// NewServer creates a server with the given dependencies.
func NewServer(
	service *recommend.Service,
	holder *catalog.Holder,
	cfg *config.Config,
	logger *zap.Logger,
	opts ...Option,
) *Server {
	s := &Server{
		service: service,
		holder:  holder,
		source: catalog.Source{
			CatalogPath:    cfg.Catalog.Path,
			EmbeddingsPath: cfg.Catalog.EmbeddingsPath,
		},
		config: cfg,
		logger: utils.OrNop(logger),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	timeout := s.config.Server.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))
	r.Use(middleware.Compress(5))

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Post("/recommend", s.handleRecommend)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/recommend", s.handleRecommend)
		r.Get("/status", s.handleStatus)
		r.Post("/reload", s.handleReload)
		r.Get("/catalog/search", s.handleCatalogSearch)
		r.Get("/catalog/{index}", s.handleGetItem)
	})
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
