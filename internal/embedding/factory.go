package embedding

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/config"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/pkg/utils"
)

// New builds the provider named by cfg.Provider and wraps it in an LRU cache
// when cfg.CacheSize is positive.
func New(cfg *config.EmbeddingConfig, logger *zap.Logger) (Embedder, error) {
	logger = utils.OrNop(logger)

	httpCfg := HTTPConfig{
		Endpoint:   cfg.Endpoint,
		Model:      cfg.Model,
		APIKey:     cfg.APIKey(),
		Dimensions: cfg.Dimensions,
		Timeout:    cfg.Timeout,
		RateLimit:  cfg.RateLimit,
		Burst:      cfg.Burst,
	}

	var e Embedder
	switch cfg.Provider {
	case ProviderHuggingFace, "":
		if httpCfg.APIKey == "" {
			logger.Warn("embedding API key not set; recommend requests will fail until it is",
				zap.String("env", cfg.APIKeyEnv))
		}
		e = NewHuggingFaceEmbedder(httpCfg)
	case ProviderOllama:
		e = NewOllamaEmbedder(httpCfg)
	case ProviderONNX:
		onnx, err := NewONNXEmbedder(cfg.ModelPath, cfg.Dimensions, cfg.MaxTokens)
		if err != nil {
			return nil, err
		}
		e = onnx
	case ProviderMock:
		e = NewMockEmbedder(cfg.Dimensions)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: huggingface, ollama, onnx, mock)", cfg.Provider)
	}

	logger.Info("embedding provider ready",
		zap.String("provider", cfg.Provider),
		zap.String("model", cfg.Model),
		zap.Int("dimensions", e.Dimensions()),
		zap.Int("cache_size", cfg.CacheSize))

	if cfg.CacheSize > 0 {
		return NewCachedEmbedder(e, cfg.CacheSize), nil
	}
	return e, nil
}
