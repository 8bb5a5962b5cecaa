package embedding

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/pkg/utils"
)

// HTTPConfig configures the remote providers.
type HTTPConfig struct {
	Endpoint   string
	Model      string
	APIKey     string
	Dimensions int
	Timeout    time.Duration
	RateLimit  float64 // requests per second, 0 = unlimited
	Burst      int
}

// remote holds the transport shared by HTTP providers.
type remote struct {
	endpoint   string
	model      string
	apiKey     string
	dimensions int
	client     *http.Client
	limiter    *rate.Limiter
}

func newRemote(cfg HTTPConfig) remote {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	r := remote{
		endpoint:   cfg.Endpoint,
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
		dimensions: cfg.Dimensions,
		client:     &http.Client{Timeout: timeout},
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		r.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return r
}

func (r *remote) wait(ctx context.Context) error {
	if r.limiter == nil {
		return nil
	}
	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

// do sends req and returns the body of a 200 response. Transport failures,
// auth failures, throttling and 5xx are reported as ErrProviderUnavailable.
func (r *remote) do(req *http.Request) ([]byte, error) {
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode == http.StatusOK {
		return body, nil
	}

	preview := utils.Truncate(string(body), 200)
	switch {
	case resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden,
		resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d: %s", ErrProviderUnavailable, resp.StatusCode, preview)
	default:
		return nil, fmt.Errorf("provider returned status %d: %s", resp.StatusCode, preview)
	}
}

// Dimensions returns the configured embedding dimension.
func (r *remote) Dimensions() int {
	return r.dimensions
}

// Close releases idle connections.
func (r *remote) Close() error {
	r.client.CloseIdleConnections()
	return nil
}
