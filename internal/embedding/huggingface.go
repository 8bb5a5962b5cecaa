package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/pkg/utils"
)

// HuggingFaceEmbedder calls the hosted feature-extraction pipeline:
// POST {endpoint}/pipeline/feature-extraction/{model} with {"inputs": ...}.
type HuggingFaceEmbedder struct {
	remote
}

type hfRequest struct {
	Inputs any `json:"inputs"`
}

// NewHuggingFaceEmbedder creates the provider. A missing API key is not an error
// here; every call then fails with ErrProviderUnavailable.
func NewHuggingFaceEmbedder(cfg HTTPConfig) *HuggingFaceEmbedder {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://api-inference.huggingface.co"
	}
	return &HuggingFaceEmbedder{remote: newRemote(cfg)}
}

// Embed returns the sentence embedding for text. A nested response uses its first row.
func (e *HuggingFaceEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.post(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("huggingface: empty embedding response")
	}
	return vecs[0], nil
}

// EmbedBatch embeds all texts in one request.
func (e *HuggingFaceEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vecs, err := e.post(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("huggingface: got %d embeddings for %d inputs", len(vecs), len(texts))
	}
	return vecs, nil
}

func (e *HuggingFaceEmbedder) post(ctx context.Context, inputs any) ([][]float32, error) {
	if e.apiKey == "" {
		return nil, fmt.Errorf("%w: huggingface API key is not set", ErrProviderUnavailable)
	}
	if err := e.wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(hfRequest{Inputs: inputs})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	url := strings.TrimRight(e.endpoint, "/") + "/pipeline/feature-extraction/" + e.model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	raw, err := e.do(req)
	if err != nil {
		return nil, fmt.Errorf("huggingface: %w", err)
	}
	vecs, err := decodeFeatures(raw)
	if err != nil {
		return nil, fmt.Errorf("huggingface: %w", err)
	}
	return vecs, nil
}

// decodeFeatures accepts the three shapes the pipeline returns: a single
// vector, a list of vectors, or per-token vectors (mean-pooled per input).
func decodeFeatures(raw []byte) ([][]float32, error) {
	var flat []float64
	if err := json.Unmarshal(raw, &flat); err == nil {
		return [][]float32{utils.Float64sToFloat32s(flat)}, nil
	}
	var rows [][]float64
	if err := json.Unmarshal(raw, &rows); err == nil {
		out := make([][]float32, len(rows))
		for i, r := range rows {
			out[i] = utils.Float64sToFloat32s(r)
		}
		return out, nil
	}
	var tokens [][][]float64
	if err := json.Unmarshal(raw, &tokens); err == nil {
		out := make([][]float32, len(tokens))
		for i, t := range tokens {
			out[i] = meanPool(t)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unrecognized embedding response: %.200s", raw)
}

func meanPool(tokens [][]float64) []float32 {
	if len(tokens) == 0 {
		return nil
	}
	sum := make([]float64, len(tokens[0]))
	for _, t := range tokens {
		for j := range sum {
			if j < len(t) {
				sum[j] += t[j]
			}
		}
	}
	out := make([]float32, len(sum))
	for j, v := range sum {
		out[j] = float32(v / float64(len(tokens)))
	}
	return out
}
