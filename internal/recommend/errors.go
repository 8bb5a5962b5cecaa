package recommend

import (
	"errors"

	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/catalog"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/embedding"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/models"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/ranking"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/vector"
)

var (
	// ErrEmptyQuery is returned for a query that is blank after trimming.
	ErrEmptyQuery = models.ErrEmptyQuery
	// ErrInvalidTopK is returned for a negative topK.
	ErrInvalidTopK = models.ErrInvalidTopK
	// ErrEmbeddingFailed wraps any failure to embed the query text.
	ErrEmbeddingFailed = errors.New("embedding failed")
	// ErrNotFound is returned for catalog lookups of a row that does not exist.
	ErrNotFound = errors.New("not found")
)

// Error codes carried in ErrorResponse.Error.
const (
	CodeEmptyQuery           = "empty_query"
	CodeInvalidTopK          = "invalid_top_k"
	CodeBadRequest           = "bad_request"
	CodeEmbeddingUnavailable = "embedding_unavailable"
	CodeDimensionMismatch    = "dimension_mismatch"
	CodeNotFound             = "not_found"
	CodeCatalogUnavailable   = "catalog_unavailable"
	CodeLoadFailed           = "load_failed"
	CodeInternal             = "internal"
)

// Code maps err to a stable error code. nil maps to "".
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyQuery):
		return CodeEmptyQuery
	case errors.Is(err, ErrInvalidTopK), errors.Is(err, ranking.ErrInvalidTopK):
		return CodeInvalidTopK
	case errors.Is(err, ErrEmbeddingFailed), errors.Is(err, embedding.ErrProviderUnavailable):
		return CodeEmbeddingUnavailable
	case errors.Is(err, vector.ErrDimensionMismatch):
		return CodeDimensionMismatch
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, catalog.ErrNoSnapshot):
		return CodeCatalogUnavailable
	case errors.Is(err, vector.ErrLoad):
		return CodeLoadFailed
	default:
		return CodeInternal
	}
}
