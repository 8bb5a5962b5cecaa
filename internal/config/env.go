package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadEnv loads .env from dir and then from the working directory.
// Variables already present in the environment win. Missing files are ignored.
func LoadEnv(dir string) error {
	seen := map[string]bool{}
	for _, path := range []string{filepath.Join(dir, ".env"), ".env"} {
		abs, err := filepath.Abs(path)
		if err != nil || seen[abs] {
			continue
		}
		seen[abs] = true
		if err := godotenv.Load(abs); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", abs, err)
		}
	}
	return nil
}

// applyEnv overrides file settings with deployment environment variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv("HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("SHLREC_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = b
		}
	}
	if v := os.Getenv("SHLREC_CATALOG_PATH"); v != "" {
		cfg.Catalog.Path = v
	}
	if v := os.Getenv("SHLREC_EMBEDDINGS_PATH"); v != "" {
		cfg.Catalog.EmbeddingsPath = v
	}
	if v := os.Getenv("SHLREC_EMBEDDING_PROVIDER"); v != "" {
		cfg.Embedding.Provider = v
	}
}
