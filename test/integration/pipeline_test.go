// Package integration runs the harvest, embed, and serve pipeline end to end
// against local fixtures.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/catalog"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/config"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/embedding"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/harvest"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/indexer"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/models"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/recommend"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/server"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/storage"
)

var listing = map[string][]string{
	"2:0": {"Account Manager Solution", "Sales Representative Solution"},
	"1:0": {"Java 8 (New)", "Verify Numerical Reasoning", "Account Manager Solution"},
	"1:3": {"OPQ Leadership Report"},
}

func catalogSite() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		names, ok := listing[r.URL.Query().Get("type")+":"+r.URL.Query().Get("start")]
		if !ok {
			fmt.Fprint(w, "<html><body><p>No results</p></body></html>")
			return
		}
		fmt.Fprint(w, "<table>")
		for i, n := range names {
			fmt.Fprintf(w, `<tr data-course-id="%d"><td><a href="/view/%s/">%s</a></td></tr>`, i, slug(n), n)
		}
		fmt.Fprint(w, "</table>")
	}))
}

func slug(s string) string {
	var b bytes.Buffer
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + 32)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}

func TestIntegration_HarvestEmbedRecommend(t *testing.T) {
	site := catalogSite()
	defer site.Close()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Catalog.Path = filepath.Join(dir, "data", "catalog.csv")
	cfg.Catalog.EmbeddingsPath = filepath.Join(dir, "embeddings", "catalog_embeddings.npy")
	cfg.Storage.DatabasePath = filepath.Join(dir, "data", "harvest.db")
	cfg.Embedding.Provider = embedding.ProviderMock
	cfg.Embedding.Dimensions = 32
	cfg.Harvest.BaseURL = site.URL + "/products/product-catalog/"
	cfg.Harvest.SiteURL = "https://www.shl.com"
	cfg.Harvest.PageSize = 3
	cfg.Harvest.RateLimit = 0
	ctx := context.Background()

	// Harvest.
	st, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	_, items, err := harvest.New(&cfg.Harvest).RunAndRecord(ctx, st)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 5 {
		t.Fatalf("harvested %d unique items, want 5", len(items))
	}
	if err := catalog.Save(cfg.Catalog.Path, items); err != nil {
		t.Fatal(err)
	}

	// Embed.
	emb, err := embedding.New(&cfg.Embedding, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer emb.Close()
	if _, err := indexer.NewBuilder(emb, indexer.WithBatchSize(2)).BuildFile(ctx, cfg.Catalog.Path, cfg.Catalog.EmbeddingsPath); err != nil {
		t.Fatal(err)
	}

	// Serve.
	holder := catalog.NewHolder(nil, nil)
	defer holder.Close()
	if _, err := holder.Reload(ctx, catalog.Source{CatalogPath: cfg.Catalog.Path, EmbeddingsPath: cfg.Catalog.EmbeddingsPath}); err != nil {
		t.Fatal(err)
	}
	svc := recommend.NewService(holder, emb, &cfg.Recommend)
	api := httptest.NewServer(server.NewServer(svc, holder, cfg, nil, server.WithStorage(st)).Router())
	defer api.Close()

	body, _ := json.Marshal(map[string]any{"query": "Java 8 (New)", "top_k": 3})
	resp, err := http.Post(api.URL+"/recommend", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var out models.RecommendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out.Results) != 3 {
		t.Fatalf("got %d results", len(out.Results))
	}
	top := out.Results[0]
	if top.Name != "Java 8 (New)" || top.URL != "https://www.shl.com/view/java-8--new-/" {
		t.Errorf("top result: %+v", top)
	}
	if math.Abs(top.Score-1) > 1e-6 {
		t.Errorf("self-similarity score = %v, want 1", top.Score)
	}
	for i := 1; i < len(out.Results); i++ {
		if out.Results[i].Score > out.Results[i-1].Score {
			t.Errorf("results not sorted: %+v", out.Results)
		}
	}
}
