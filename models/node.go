package models

// NodeType distinguishes plain bookmark nodes from social-media post nodes.
const (
	NodeTypeDefault = "default"
	NodeTypeXPost   = "x-post"
)

// ThoughtNode is one bookmark in the knowledge graph. The full node list is
// persisted as a flat JSON array; the frontend owns layout (Position) and
// linking, the server owns enrichment (summary, tags, OGP image).
type ThoughtNode struct {
	ID            string     `json:"id"`
	URL           string     `json:"url"`
	OGPImageURL   string     `json:"ogpImageUrl"`
	Comment       string     `json:"comment"`
	Summary       string     `json:"summary"`
	Embedding     []float64  `json:"embedding"`
	CreatedAt     int64      `json:"createdAt"`
	Position      [3]float64 `json:"position"`
	LinkedNodeIDs []string   `json:"linkedNodeIds"`
	Tags          []string   `json:"tags,omitempty"`
	Category      string     `json:"category,omitempty"`
	Type          string     `json:"type,omitempty"`
}

// SimilarNode pairs a node with its distance from a reference node on a
// [0, 64] scale. Lower distance means more similar content.
type SimilarNode struct {
	Node     ThoughtNode `json:"node"`
	Distance float64     `json:"distance"`
}
