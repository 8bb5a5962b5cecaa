package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/config"
)

func TestNew(t *testing.T) {
	t.Setenv("SHLREC_TEST_EMPTY_KEY", "")
	tests := []struct {
		name     string
		cfg      config.EmbeddingConfig
		wantType string
	}{
		{"mock cached", config.EmbeddingConfig{Provider: ProviderMock, Dimensions: 4, CacheSize: 10}, "*embedding.CachedEmbedder"},
		{"mock uncached", config.EmbeddingConfig{Provider: ProviderMock, Dimensions: 4}, "*embedding.MockEmbedder"},
		{"huggingface", config.EmbeddingConfig{Provider: ProviderHuggingFace, APIKeyEnv: "SHLREC_TEST_EMPTY_KEY", Dimensions: 384}, "*embedding.HuggingFaceEmbedder"},
		{"ollama", config.EmbeddingConfig{Provider: ProviderOllama, Dimensions: 384}, "*embedding.OllamaEmbedder"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := New(&tt.cfg, nil)
			if err != nil {
				t.Fatal(err)
			}
			defer e.Close()
			if got := typeName(e); got != tt.wantType {
				t.Errorf("type=%s, want %s", got, tt.wantType)
			}
		})
	}
}

func TestNew_HuggingFaceWithoutKeyFailsPerRequest(t *testing.T) {
	t.Setenv("SHLREC_TEST_EMPTY_KEY", "")
	e, err := New(&config.EmbeddingConfig{Provider: ProviderHuggingFace, APIKeyEnv: "SHLREC_TEST_EMPTY_KEY"}, nil)
	if err != nil {
		t.Fatalf("construction should succeed without a key: %v", err)
	}
	if _, err := e.Embed(context.Background(), "q"); !errors.Is(err, ErrProviderUnavailable) {
		t.Errorf("got %v, want ErrProviderUnavailable", err)
	}
}

func TestNew_Unknown(t *testing.T) {
	if _, err := New(&config.EmbeddingConfig{Provider: "word2vec"}, nil); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func typeName(v any) string {
	switch v.(type) {
	case *CachedEmbedder:
		return "*embedding.CachedEmbedder"
	case *MockEmbedder:
		return "*embedding.MockEmbedder"
	case *HuggingFaceEmbedder:
		return "*embedding.HuggingFaceEmbedder"
	case *OllamaEmbedder:
		return "*embedding.OllamaEmbedder"
	default:
		return "unknown"
	}
}
