package models

// Recommendation is one ranked catalog item.
type Recommendation struct {
	Name  string  `json:"name"`
	URL   string  `json:"url"`
	Score float64 `json:"score"`
}

// RecommendResponse is the response for a recommend request.
// Results are ordered by score descending, ties by catalog order.
type RecommendResponse struct {
	Query   string           `json:"query"`
	Results []Recommendation `json:"results"`
}

// CatalogMatch is a keyword lookup hit over catalog names and descriptions.
type CatalogMatch struct {
	Item  *CatalogItem `json:"item"`
	Score float64      `json:"score"`
}

// CatalogSearchResponse is the response for GET /api/v1/catalog/search.
type CatalogSearchResponse struct {
	Query   string          `json:"query"`
	Results []*CatalogMatch `json:"results"`
	Total   uint64          `json:"total"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
