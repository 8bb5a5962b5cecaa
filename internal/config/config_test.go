package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
server:
  host: "127.0.0.1"
  port: 9000
  request_timeout: 5s
embedding:
  provider: mock
  dimensions: 8
recommend:
  default_top_k: 3
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Server.RequestTimeout != 5*time.Second {
		t.Errorf("request_timeout = %v, want 5s", cfg.Server.RequestTimeout)
	}
	if cfg.Embedding.Provider != "mock" || cfg.Embedding.Dimensions != 8 {
		t.Errorf("unexpected embedding config: %+v", cfg.Embedding)
	}
	if cfg.Recommend.DefaultTopK != 3 {
		t.Errorf("default_top_k = %d, want 3", cfg.Recommend.DefaultTopK)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_ExpandPathDotSlashRelativeToConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
catalog:
  path: "./data/catalog.csv"
  embeddings_path: "./embeddings/catalog.npy"
storage:
  database_path: "/abs/harvest.db"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "data", "catalog.csv"); cfg.Catalog.Path != want {
		t.Errorf("catalog.path = %s, want %s", cfg.Catalog.Path, want)
	}
	if want := filepath.Join(dir, "embeddings", "catalog.npy"); cfg.Catalog.EmbeddingsPath != want {
		t.Errorf("catalog.embeddings_path = %s, want %s", cfg.Catalog.EmbeddingsPath, want)
	}
	if cfg.Storage.DatabasePath != "/abs/harvest.db" {
		t.Errorf("absolute path changed: %s", cfg.Storage.DatabasePath)
	}
	// Defaults are expanded as well.
	if want := filepath.Join(dir, "data", "shl_catalog_full_details.csv"); cfg.Harvest.OutputPath != want {
		t.Errorf("harvest.output_path = %s, want %s", cfg.Harvest.OutputPath, want)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	dir := t.TempDir()
	if _, err := Load(writeConfig(t, dir, "server: [")); err == nil {
		t.Error("expected parse error")
	}
	dir = t.TempDir()
	if _, err := Load(writeConfig(t, dir, "embedding:\n  provider: word2vec\n")); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("SHLREC_EMBEDDING_PROVIDER", "mock")
	dir := t.TempDir()
	cfg, err := Load(writeConfig(t, dir, "server:\n  port: 9000\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("PORT override: got %d", cfg.Server.Port)
	}
	if cfg.Embedding.Provider != "mock" {
		t.Errorf("provider override: got %s", cfg.Embedding.Provider)
	}
}

func TestLoadEnv_DotEnvFile(t *testing.T) {
	const key = "SHLREC_TEST_DOTENV_KEY"
	os.Unsetenv(key)
	t.Cleanup(func() { os.Unsetenv(key) })

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(key+"=from-dotenv\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := LoadEnv(dir); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv(key); got != "from-dotenv" {
		t.Errorf("%s = %q", key, got)
	}

	e := EmbeddingConfig{APIKeyEnv: key}
	if e.APIKey() != "from-dotenv" {
		t.Errorf("APIKey() = %q", e.APIKey())
	}
}

func TestLoadEnv_MissingFileIgnored(t *testing.T) {
	if err := LoadEnv(t.TempDir()); err != nil {
		t.Errorf("missing .env should be ignored, got %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Host != "localhost" || cfg.Server.Port != 8080 {
		t.Errorf("default server: %+v", cfg.Server)
	}
	if cfg.Recommend.DefaultTopK != 5 {
		t.Errorf("default_top_k: got %d, want 5", cfg.Recommend.DefaultTopK)
	}
	if cfg.Recommend.Epsilon != 1e-12 {
		t.Errorf("epsilon: got %g", cfg.Recommend.Epsilon)
	}
	if cfg.Embedding.Provider != "huggingface" || cfg.Embedding.APIKeyEnv != "HF_API_KEY" {
		t.Errorf("embedding defaults: %+v", cfg.Embedding)
	}
	if cfg.Embedding.Endpoint != "https://api-inference.huggingface.co" {
		t.Errorf("endpoint: got %s", cfg.Embedding.Endpoint)
	}
	if cfg.Harvest.PageSize != 12 {
		t.Errorf("page_size: got %d", cfg.Harvest.PageSize)
	}
	if len(cfg.Harvest.Types) != 2 || cfg.Harvest.Types[0].Type != 2 || cfg.Harvest.Types[1].MaxStart != 4000 {
		t.Errorf("harvest types: %+v", cfg.Harvest.Types)
	}
}

func TestApplyDefaults_OllamaEndpoint(t *testing.T) {
	cfg := &Config{Embedding: EmbeddingConfig{Provider: "ollama"}}
	ApplyDefaults(cfg)
	if cfg.Embedding.Endpoint != "http://localhost:11434" {
		t.Errorf("ollama endpoint: got %s", cfg.Embedding.Endpoint)
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saved.yaml")
	cfg := &Config{
		Server:    ServerConfig{Host: "localhost", Port: 9090},
		Embedding: EmbeddingConfig{Provider: "mock"},
	}
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Port != 9090 {
		t.Errorf("loaded port: got %d", loaded.Server.Port)
	}
}
