package models

// OGPRequest is the payload for POST /api/v1/ogp.
type OGPRequest struct {
	// URL is the page to scrape for Open Graph metadata. Required.
	URL string `json:"url" binding:"required,url"`

	// NodeID, when set, keys the downloaded OGP image in the local cache.
	NodeID string `json:"nodeId,omitempty"`
}

// OGPResponse carries the scraped Open Graph metadata. All fields degrade to
// empty strings; the endpoint never fails just because a page has no tags.
type OGPResponse struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	URL         string `json:"url,omitempty"`
	SiteName    string `json:"siteName,omitempty"`
}

// SummaryRequest is the payload for POST /api/v1/summary.
type SummaryRequest struct {
	URL     string `json:"url" binding:"required,url"`
	Comment string `json:"comment"`
}

// SummaryResponse carries the generated bookmark summary.
type SummaryResponse struct {
	Summary string `json:"summary"`
}

// TitleRequest is the payload for POST /api/v1/title.
type TitleRequest struct {
	URL     string `json:"url,omitempty"`
	Comment string `json:"comment" binding:"required"`
}

// TitleResponse carries the generated short title.
type TitleResponse struct {
	Title string `json:"title"`
}

// TagsRequest is the payload for POST /api/v1/extract-tags.
type TagsRequest struct {
	Text string `json:"text" binding:"required"`
	URL  string `json:"url,omitempty"`
}

// TagsResponse is the structured tag-extraction result. On any LLM or parse
// failure the handler returns fixed fallback values instead of an error.
type TagsResponse struct {
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	Keywords []string `json:"keywords"`
}

// EmbeddingRequest is the payload for POST /api/v1/embedding.
type EmbeddingRequest struct {
	Text string `json:"text" binding:"required"`
}

// EmbeddingResponse carries the pseudo-embedding vector for the given text.
type EmbeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

// SaveResponse acknowledges a successful write.
type SaveResponse struct {
	Success bool `json:"success"`
}

// ErrorResponse is the uniform error envelope for all endpoints.
type ErrorResponse struct {
	Error *ErrorDetail `json:"error"`
}

// HealthResponse is returned by GET /api/v1/health.
type HealthResponse struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime"`
	NodeCount int    `json:"node_count"`
	Version   string `json:"version"`
}
