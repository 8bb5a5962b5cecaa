package config

import "time"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 60 * time.Second
	}
	if cfg.Catalog.Path == "" {
		cfg.Catalog.Path = "./data/shl_catalog_full_details.csv"
	}
	if cfg.Catalog.EmbeddingsPath == "" {
		cfg.Catalog.EmbeddingsPath = "./embeddings/catalog_embeddings.npy"
	}
	if cfg.Catalog.Debounce == 0 {
		cfg.Catalog.Debounce = 500 * time.Millisecond
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "huggingface"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "sentence-transformers/all-MiniLM-L6-v2"
	}
	if cfg.Embedding.ModelPath == "" {
		cfg.Embedding.ModelPath = "./models/all-MiniLM-L6-v2.onnx"
	}
	if cfg.Embedding.Endpoint == "" {
		switch cfg.Embedding.Provider {
		case "ollama":
			cfg.Embedding.Endpoint = "http://localhost:11434"
		default:
			cfg.Embedding.Endpoint = "https://api-inference.huggingface.co"
		}
	}
	if cfg.Embedding.APIKeyEnv == "" {
		cfg.Embedding.APIKeyEnv = "HF_API_KEY"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 1000
	}
	if cfg.Embedding.Timeout == 0 {
		cfg.Embedding.Timeout = 30 * time.Second
	}
	if cfg.Embedding.Burst == 0 {
		cfg.Embedding.Burst = 1
	}
	if cfg.Embedding.BatchSize == 0 {
		cfg.Embedding.BatchSize = 32
	}
	if cfg.Recommend.DefaultTopK == 0 {
		cfg.Recommend.DefaultTopK = 5
	}
	if cfg.Recommend.Epsilon == 0 {
		cfg.Recommend.Epsilon = 1e-12
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "./data/harvest.db"
	}
	if cfg.Harvest.BaseURL == "" {
		cfg.Harvest.BaseURL = "https://www.shl.com/products/product-catalog/"
	}
	if cfg.Harvest.SiteURL == "" {
		cfg.Harvest.SiteURL = "https://www.shl.com"
	}
	if cfg.Harvest.PageSize == 0 {
		cfg.Harvest.PageSize = 12
	}
	if cfg.Harvest.Types == nil {
		// Pre-packaged job solutions first, then individual tests.
		cfg.Harvest.Types = []HarvestType{
			{Type: 2, MaxStart: 2000},
			{Type: 1, MaxStart: 4000},
		}
	}
	if cfg.Harvest.UserAgent == "" {
		cfg.Harvest.UserAgent = "shlrec-harvester/1.0"
	}
	if cfg.Harvest.RateLimit == 0 {
		cfg.Harvest.RateLimit = 2
	}
	if cfg.Harvest.Timeout == 0 {
		cfg.Harvest.Timeout = 30 * time.Second
	}
	if cfg.Harvest.OutputPath == "" {
		cfg.Harvest.OutputPath = "./data/shl_catalog_full_details.csv"
	}
}
