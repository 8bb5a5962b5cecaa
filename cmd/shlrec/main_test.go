package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/models"
)

func TestArgsReorder(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "flags after query are moved first",
			args:     []string{"java developer", "-top-k", "3"},
			expected: []string{"-top-k", "3", "java developer"},
		},
		{
			name:     "flags first returns unchanged",
			args:     []string{"-top-k", "3", "java developer"},
			expected: []string{"-top-k", "3", "java developer"},
		},
		{
			name:     "query only returns unchanged",
			args:     []string{"java developer"},
			expected: []string{"java developer"},
		},
		{
			name:     "empty args returns unchanged",
			args:     []string{},
			expected: []string{},
		},
		{
			name:     "multiple positionals then flags",
			args:     []string{"sales", "manager", "-output", "json"},
			expected: []string{"-output", "json", "sales", "manager"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := argsReorder(tt.args)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("argsReorder() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"single word", []string{"leadership"}, "leadership"},
		{"multiple words", []string{"leadership", "assessment"}, "leadership assessment"},
		{"single quoted phrase", []string{"leadership assessment"}, "leadership assessment"},
		{"empty args", []string{}, ""},
		{"blank args", []string{"  ", "  "}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildQuery(tt.args)
			if got != tt.expected {
				t.Errorf("buildQuery(%v) = %q, want %q", tt.args, got, tt.expected)
			}
		})
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
}

func TestLoadConfig_prefersCwdConfigWhenDefaultPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: "localhost"
  port: 8080
catalog:
  path: "./data/catalog.csv"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	// On macOS, cwd can be /private/var/... while configPath from t.TempDir() is /var/...; compare canonical paths.
	resolvedCanon, _ := filepath.EvalSymlinks(resolved)
	configPathCanon, _ := filepath.EvalSymlinks(configPath)
	if resolvedCanon != configPathCanon {
		t.Errorf("resolved path = %s, want %s", resolvedCanon, configPathCanon)
	}
	if !cfg.Debug {
		t.Error("debug should be true from cwd config.yaml")
	}
	if !strings.HasSuffix(cfg.Catalog.Path, filepath.Join("data", "catalog.csv")) || !filepath.IsAbs(cfg.Catalog.Path) {
		t.Errorf("catalog path not expanded: %s", cfg.Catalog.Path)
	}
}

func TestLoadConfig_usesExplicitPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
recommend:
  default_top_k: 3
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != configPath {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Recommend.DefaultTopK != 3 {
		t.Errorf("unexpected config: %+v %+v", cfg.Server, cfg.Recommend)
	}
}

func TestLoadConfig_builtInDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != "" {
		t.Errorf("resolved = %q, want built-in defaults", resolved)
	}
	if cfg.Recommend.DefaultTopK != 5 || cfg.Embedding.Dimensions != 384 {
		t.Errorf("defaults not applied: %+v %+v", cfg.Recommend, cfg.Embedding)
	}
}

func TestRecommendViaHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/recommend" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var req models.RecommendRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Query == "fail" {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(models.ErrorResponse{Error: "embedding_unavailable", Message: "provider down"})
			return
		}
		n := -1
		if req.TopK != nil {
			n = *req.TopK
		}
		_ = json.NewEncoder(w).Encode(models.RecommendResponse{
			Query:   req.Query,
			Results: []models.Recommendation{{Name: "A", URL: "https://x/a", Score: float64(n)}},
		})
	}))
	defer srv.Close()

	resp, err := recommendViaHTTP(srv.URL, "java", 3)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Query != "java" || len(resp.Results) != 1 || resp.Results[0].Score != 3 {
		t.Errorf("response: %+v", resp)
	}

	// A negative top-k leaves top_k out so the server default applies.
	resp, err = recommendViaHTTP(srv.URL, "java", -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Results[0].Score != -1 {
		t.Errorf("top_k should be omitted, server saw %v", resp.Results[0].Score)
	}

	_, err = recommendViaHTTP(srv.URL, "fail", 3)
	if err == nil || !strings.Contains(err.Error(), "embedding_unavailable") {
		t.Errorf("error: %v", err)
	}
}

func TestWriteStatusText(t *testing.T) {
	n := int64(42)
	st := &models.StatusResponse{
		Status:         "ok",
		Version:        "1.0.0",
		Snapshot:       &models.SnapshotStatus{Version: 2, Items: 377, Dimensions: 384, Columns: []string{"name", "url"}},
		HarvestedItems: &n,
		LastHarvest:    &models.HarvestRun{ID: "r1", Status: models.HarvestCompleted, ItemCount: 42, NewItems: 3},
		DiskUsageBytes: 3 * 1024 * 1024,
		Config:         map[string]any{"embedding_provider": "huggingface"},
	}
	var buf bytes.Buffer
	writeStatusText(&buf, st)
	out := buf.String()
	for _, want := range []string{"Items:       377", "Harvested:   42 items", "3.0 MiB", "huggingface", "Columns:     name, url", "r1 completed", "(42 items, 3 new)"} {
		if !strings.Contains(out, want) {
			t.Errorf("status output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteRunHistory(t *testing.T) {
	var buf bytes.Buffer
	writeRunHistory(&buf, nil)
	if !strings.Contains(buf.String(), "No harvest runs") {
		t.Errorf("empty history: %q", buf.String())
	}

	buf.Reset()
	writeRunHistory(&buf, []*models.HarvestRun{
		{ID: "b", Status: models.HarvestFailed, Error: "timeout"},
		{ID: "a", Status: models.HarvestCompleted, ItemCount: 377, NewItems: 377},
	})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[0], "ID") {
		t.Fatalf("history table:\n%s", buf.String())
	}
	if !strings.Contains(lines[1], "failed") || !strings.Contains(lines[1], "timeout") {
		t.Errorf("row 1: %q", lines[1])
	}
	if !strings.Contains(lines[2], "377") {
		t.Errorf("row 2: %q", lines[2])
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[int64]string{
		512:             "512 B",
		2048:            "2.0 KiB",
		5 * 1024 * 1024: "5.0 MiB",
	}
	for in, want := range tests {
		if got := formatBytes(in); got != want {
			t.Errorf("formatBytes(%d) = %q, want %q", in, got, want)
		}
	}
}
