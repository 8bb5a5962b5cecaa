// Package embedding maps text to dense vectors. Providers are interchangeable
// behind the Embedder interface: a remote inference API, a local Ollama
// server, an in-process ONNX model, or a deterministic mock.
package embedding

import (
	"context"
	"errors"
)

// Embedder produces vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

// ErrProviderUnavailable is returned when the provider cannot be reached,
// is not configured (e.g. missing API key), or is temporarily overloaded.
var ErrProviderUnavailable = errors.New("embedding provider unavailable")

// Provider names accepted by New.
const (
	ProviderHuggingFace = "huggingface"
	ProviderOllama      = "ollama"
	ProviderONNX        = "onnx"
	ProviderMock        = "mock"
)
