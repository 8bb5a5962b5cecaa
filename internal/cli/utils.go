// Package cli renders recommender output for the command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/models"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/pkg/utils"
)

// OutputFormat is the format for recommendation output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact is one tab-aligned line per result.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is the same document the HTTP API returns.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case OutputText, OutputCompact, OutputJSON:
		return f, nil
	case "":
		return OutputText, nil
	default:
		return "", fmt.Errorf("invalid output format %q (use text, compact, or json)", s)
	}
}

// WriteRecommendations writes response to w in the given format.
func WriteRecommendations(w io.Writer, response *models.RecommendResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	case OutputCompact:
		return writeCompact(w, response)
	default:
		writeText(w, response)
		return nil
	}
}

func writeText(w io.Writer, response *models.RecommendResponse) {
	fmt.Fprintf(w, "\n%d recommendations for %q\n\n", len(response.Results), response.Query)
	for i, r := range response.Results {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "%d. %s\n", i+1, utils.Truncate(r.Name, 120))
		fmt.Fprintf(w, "   Score: %.4f\n", r.Score)
		fmt.Fprintf(w, "   %s\n", r.URL)
	}
	if len(response.Results) > 0 {
		fmt.Fprintln(w)
	}
}

func writeCompact(w io.Writer, response *models.RecommendResponse) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, r := range response.Results {
		fmt.Fprintf(tw, "%d\t%.4f\t%s\t%s\n", i+1, r.Score, utils.Truncate(r.Name, 60), r.URL)
	}
	return tw.Flush()
}

// WriteCatalogMatches writes keyword lookup results as compact lines.
func WriteCatalogMatches(w io.Writer, response *models.CatalogSearchResponse) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "# %d matches for %q\n", response.Total, response.Query)
	for _, m := range response.Results {
		fmt.Fprintf(tw, "%d\t%.3f\t%s\t%s\n", m.Item.Index, m.Score, utils.Truncate(m.Item.Name, 60), m.Item.URL)
	}
	return tw.Flush()
}
