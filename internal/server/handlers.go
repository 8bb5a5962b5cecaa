package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/models"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/recommend"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/storage"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/pkg/utils"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 100
	maxBodyBytes       = 1 << 20
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"message": "SHL API running. Use /health and /recommend"}
	if s.version != "" {
		resp["version"] = s.version
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req models.RecommendRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, recommend.CodeBadRequest, "invalid request body")
		return
	}
	topK, err := req.Validate(s.service.DefaultTopK())
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.logger.Debug("recommend request", zap.String("query", utils.Truncate(req.Query, 80)), zap.Int("top_k", topK))
	resp, err := s.service.Recommend(r.Context(), req.Query, topK)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := &models.StatusResponse{Status: "ok", Version: s.version}
	if snap := s.holder.Current(); snap != nil {
		resp.Snapshot = snap.Status()
	} else {
		resp.Status = "no_catalog"
	}

	if s.storage != nil {
		n, err := s.storage.CountItems(r.Context())
		if err != nil {
			s.logger.Error("status: count harvested items failed", zap.Error(err))
		} else {
			resp.HarvestedItems = &n
		}
		runs, err := s.storage.ListRuns(r.Context(), 1)
		if err != nil {
			s.logger.Error("status: list harvest runs failed", zap.Error(err))
		} else if len(runs) > 0 {
			resp.LastHarvest = runs[0]
		}
	}

	diskBytes, err := storage.DiskUsageBytes(
		s.config.Catalog.Path,
		s.config.Catalog.EmbeddingsPath,
		s.config.Storage.DatabasePath,
	)
	if err == nil {
		resp.DiskUsageBytes = diskBytes
	}

	resp.Config = map[string]any{
		"embedding_provider":   s.config.Embedding.Provider,
		"embedding_model":      s.config.Embedding.Model,
		"embedding_dimensions": s.config.Embedding.Dimensions,
		"default_top_k":        s.service.DefaultTopK(),
		"watch":                s.config.Catalog.Watch,
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug("reload request", zap.String("catalog", s.source.CatalogPath))
	snap, err := s.holder.Reload(r.Context(), s.source)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, &models.ReloadResponse{Status: "reloaded", Snapshot: snap.Status()})
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, recommend.CodeBadRequest, "index must be an integer")
		return
	}
	item, err := s.service.Item(index)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, item)
}

func (s *Server) handleCatalogSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := defaultSearchLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.respondError(w, http.StatusBadRequest, recommend.CodeBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxSearchLimit)
	}
	fuzzy := false
	if v := q.Get("fuzzy"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, recommend.CodeBadRequest, "fuzzy must be a boolean")
			return
		}
		fuzzy = b
	}
	resp, err := s.service.SearchCatalog(r.Context(), q.Get("q"), limit, fuzzy)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// statusFor maps an error code to an HTTP status.
func statusFor(code string) int {
	switch code {
	case recommend.CodeEmptyQuery, recommend.CodeInvalidTopK, recommend.CodeBadRequest:
		return http.StatusBadRequest
	case recommend.CodeNotFound:
		return http.StatusNotFound
	case recommend.CodeEmbeddingUnavailable, recommend.CodeCatalogUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	code := recommend.Code(err)
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("code", code), zap.Error(err))
	} else {
		s.logger.Debug("request rejected", zap.String("code", code), zap.Error(err))
	}
	msg := err.Error()
	if code == recommend.CodeInternal {
		msg = "internal error"
	}
	s.respondError(w, status, code, msg)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, &models.ErrorResponse{Error: code, Message: message})
}
