// Package config provides configuration loading and structs for the recommender.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Recommend RecommendConfig `yaml:"recommend"`
	Storage   StorageConfig   `yaml:"storage"`
	Harvest   HarvestConfig   `yaml:"harvest"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// CatalogConfig points at the catalog table and its aligned embedding matrix.
type CatalogConfig struct {
	Path           string        `yaml:"path"`            // .csv, .xlsx or .db
	EmbeddingsPath string        `yaml:"embeddings_path"` // .npy, .vec or .bin
	Watch          bool          `yaml:"watch"`
	Debounce       time.Duration `yaml:"debounce"`
}

// EmbeddingConfig selects and tunes the embedding provider.
type EmbeddingConfig struct {
	Provider   string        `yaml:"provider"` // huggingface, ollama, onnx, mock
	Model      string        `yaml:"model"`
	ModelPath  string        `yaml:"model_path"` // onnx only
	Endpoint   string        `yaml:"endpoint"`
	APIKeyEnv  string        `yaml:"api_key_env"`
	Dimensions int           `yaml:"dimensions"`
	MaxTokens  int           `yaml:"max_tokens"`
	CacheSize  int           `yaml:"cache_size"`
	Timeout    time.Duration `yaml:"timeout"`
	RateLimit  float64       `yaml:"rate_limit"` // requests per second, 0 = unlimited
	Burst      int           `yaml:"burst"`
	BatchSize  int           `yaml:"batch_size"`
}

// APIKey returns the provider key from the configured environment variable.
func (e *EmbeddingConfig) APIKey() string {
	if e.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(e.APIKeyEnv)
}

// RecommendConfig holds query defaults.
type RecommendConfig struct {
	DefaultTopK int     `yaml:"default_top_k"`
	Epsilon     float64 `yaml:"epsilon"`
}

// StorageConfig holds the harvest database path.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// HarvestType is one catalog listing type and the last start offset to request.
type HarvestType struct {
	Type     int `yaml:"type"`
	MaxStart int `yaml:"max_start"`
}

// HarvestConfig holds catalog crawler settings.
type HarvestConfig struct {
	BaseURL    string        `yaml:"base_url"`
	SiteURL    string        `yaml:"site_url"`
	PageSize   int           `yaml:"page_size"`
	Types      []HarvestType `yaml:"types"`
	UserAgent  string        `yaml:"user_agent"`
	RateLimit  float64       `yaml:"rate_limit"`
	Timeout    time.Duration `yaml:"timeout"`
	OutputPath string        `yaml:"output_path"`
}

// Load reads and parses the config file at path, loads .env files, applies
// environment overrides and defaults, and expands paths.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	configDir := filepath.Dir(path)
	if err := LoadEnv(configDir); err != nil {
		return nil, err
	}
	applyEnv(&cfg)
	ApplyDefaults(&cfg)

	cfg.Catalog.Path = expandPath(cfg.Catalog.Path, configDir)
	cfg.Catalog.EmbeddingsPath = expandPath(cfg.Catalog.EmbeddingsPath, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Harvest.OutputPath = expandPath(cfg.Harvest.OutputPath, configDir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a config with defaults applied and paths relative to the working directory.
func Default() *Config {
	var cfg Config
	_ = LoadEnv(".")
	applyEnv(&cfg)
	ApplyDefaults(&cfg)
	return &cfg
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate reports settings that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Embedding.Provider {
	case "huggingface", "ollama", "onnx", "mock":
	default:
		return fmt.Errorf("unknown embedding provider: %s (supported: huggingface, ollama, onnx, mock)", c.Embedding.Provider)
	}
	if c.Recommend.DefaultTopK < 0 {
		return fmt.Errorf("recommend.default_top_k must be non-negative, got %d", c.Recommend.DefaultTopK)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
