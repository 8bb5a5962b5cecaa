package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/models"
)

var apiClient = &http.Client{Timeout: 90 * time.Second}

// callAPI sends body (if non-nil) as JSON and decodes a 200 response into out.
func callAPI(method, target string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, target, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := apiClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		var apiErr models.ErrorResponse
		if json.Unmarshal(b, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server returned %d %s: %s", resp.StatusCode, apiErr.Error, apiErr.Message)
		}
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func recommendViaHTTP(serverURL, query string, topK int) (*models.RecommendResponse, error) {
	req := models.RecommendRequest{Query: query}
	if topK >= 0 {
		req.TopK = &topK
	}
	var resp models.RecommendResponse
	if err := callAPI(http.MethodPost, serverURL+"/api/v1/recommend", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func searchViaHTTP(serverURL, query string, limit int, fuzzy bool) (*models.CatalogSearchResponse, error) {
	params := url.Values{
		"q":     {query},
		"limit": {strconv.Itoa(limit)},
		"fuzzy": {strconv.FormatBool(fuzzy)},
	}
	var resp models.CatalogSearchResponse
	if err := callAPI(http.MethodGet, serverURL+"/api/v1/catalog/search?"+params.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func statusViaHTTP(serverURL string) (*models.StatusResponse, error) {
	var resp models.StatusResponse
	if err := callAPI(http.MethodGet, serverURL+"/api/v1/status", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func reloadViaHTTP(serverURL string) (*models.ReloadResponse, error) {
	var resp models.ReloadResponse
	if err := callAPI(http.MethodPost, serverURL+"/api/v1/reload", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Snapshot == nil {
		return nil, fmt.Errorf("reload response has no snapshot")
	}
	return &resp, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeStatusText(w io.Writer, st *models.StatusResponse) {
	fmt.Fprintf(w, "Status:      %s\n", st.Status)
	if st.Version != "" {
		fmt.Fprintf(w, "Version:     %s\n", st.Version)
	}
	if s := st.Snapshot; s != nil {
		fmt.Fprintf(w, "Snapshot:    #%d loaded %s\n", s.Version, s.LoadedAt.Format(time.RFC3339))
		fmt.Fprintf(w, "Items:       %d\n", s.Items)
		fmt.Fprintf(w, "Dimensions:  %d\n", s.Dimensions)
		fmt.Fprintf(w, "Catalog:     %s\n", s.CatalogPath)
		fmt.Fprintf(w, "Embeddings:  %s\n", s.EmbeddingsPath)
		if len(s.Columns) > 0 {
			fmt.Fprintf(w, "Columns:     %s\n", strings.Join(s.Columns, ", "))
		}
	}
	if st.HarvestedItems != nil {
		fmt.Fprintf(w, "Harvested:   %d items\n", *st.HarvestedItems)
	}
	if run := st.LastHarvest; run != nil {
		fmt.Fprintf(w, "Last run:    %s %s at %s (%d items, %d new)\n",
			run.ID, run.Status, run.StartedAt.Format(time.RFC3339), run.ItemCount, run.NewItems)
	}
	if st.DiskUsageBytes > 0 {
		fmt.Fprintf(w, "Disk usage:  %s\n", formatBytes(st.DiskUsageBytes))
	}
	if len(st.Config) > 0 {
		fmt.Fprintln(w, "Config:")
		for _, k := range []string{"embedding_provider", "embedding_model", "embedding_dimensions", "default_top_k", "watch"} {
			if v, ok := st.Config[k]; ok {
				fmt.Fprintf(w, "  %-21s %v\n", k+":", v)
			}
		}
	}
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
