package models

import (
	"errors"
	"testing"
)

func intPtr(v int) *int { return &v }

func TestRecommendRequest_Validate(t *testing.T) {
	tests := []struct {
		name      string
		req       RecommendRequest
		wantTopK  int
		wantErr   error
		wantQuery string
	}{
		{"default top_k", RecommendRequest{Query: "java developer"}, 5, nil, "java developer"},
		{"explicit top_k", RecommendRequest{Query: "sales", TopK: intPtr(2)}, 2, nil, "sales"},
		{"zero top_k", RecommendRequest{Query: "sales", TopK: intPtr(0)}, 0, nil, "sales"},
		{"keeps query as sent", RecommendRequest{Query: "  leadership \n"}, 5, nil, "  leadership \n"},
		{"empty query", RecommendRequest{Query: ""}, 0, ErrEmptyQuery, ""},
		{"whitespace query", RecommendRequest{Query: " \t\n "}, 0, ErrEmptyQuery, " \t\n "},
		{"negative top_k", RecommendRequest{Query: "x", TopK: intPtr(-1)}, 0, ErrInvalidTopK, "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.req.Validate(5)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.wantTopK {
				t.Errorf("topK = %d, want %d", got, tt.wantTopK)
			}
			if tt.req.Query != tt.wantQuery {
				t.Errorf("query = %q, want %q", tt.req.Query, tt.wantQuery)
			}
		})
	}
}

func TestCatalogItem_EmbeddingText(t *testing.T) {
	item := CatalogItem{Name: "Java 8 (New)"}
	if item.EmbeddingText() != "Java 8 (New)" {
		t.Errorf("got %q", item.EmbeddingText())
	}
	item.Description = "Multi-choice test of Java knowledge"
	if item.EmbeddingText() != "Java 8 (New). Multi-choice test of Java knowledge" {
		t.Errorf("got %q", item.EmbeddingText())
	}
	item = CatalogItem{Name: "  Java 8\t(New) ", Description: "\n Multi-choice\n\ntest  "}
	if item.EmbeddingText() != "Java 8 (New). Multi-choice test" {
		t.Errorf("got %q", item.EmbeddingText())
	}
	item.Description = " \t "
	if item.EmbeddingText() != "Java 8 (New)" {
		t.Errorf("blank description: got %q", item.EmbeddingText())
	}
}

func TestNormalizeText(t *testing.T) {
	tests := map[string]string{
		"  a  b\n\tc ": "a b c",
		"":             "",
		" \t\n":        "",
		"one":          "one",
	}
	for in, want := range tests {
		if got := NormalizeText(in); got != want {
			t.Errorf("NormalizeText(%q) = %q, want %q", in, got, want)
		}
	}
}
