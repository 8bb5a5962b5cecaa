// Package keyword provides a lexical lookup over catalog names and descriptions.
// It complements the semantic recommender for exact product-name searches.
package keyword

// SearchOptions optional parameters for keyword search. Nil means use defaults.
type SearchOptions struct {
	// NameBoost multiplies the score contribution from matches in the item name.
	// Values > 1 make name matches rank higher (e.g. 3.0). Use 1.0 for no boost.
	NameBoost float64
	// FuzzyEnabled enables fuzzy matching for typo tolerance.
	FuzzyEnabled bool
	// Fuzziness is the maximum Levenshtein edit distance for fuzzy matching (1 or 2).
	// Default is 1 when FuzzyEnabled is true.
	Fuzziness int
}

// KeywordResult is a single keyword search hit. Index is the catalog row.
type KeywordResult struct {
	Index int
	Score float64
}
