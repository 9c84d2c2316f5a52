package models

// XPostAuthor identifies the account that published a post.
// Username is the stable handle; Name is the display string and may be empty.
type XPostAuthor struct {
	Name      string `json:"name"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl"`
}

// XPost is the canonical structured representation of a social-media post.
// Every extraction strategy produces this exact shape; no strategy-specific
// fields leak to the caller.
//
// Consumers may rely on ID and Author.Username being non-empty on success.
// All other fields degrade to empty values when the source doesn't expose
// them. Images never holds more than 4 entries.
type XPost struct {
	ID        string      `json:"id"`
	URL       string      `json:"url"`
	Author    XPostAuthor `json:"author"`
	Text      string      `json:"text"`
	Images    []string    `json:"images"`
	VideoURL  string      `json:"videoUrl,omitempty"`
	CreatedAt string      `json:"createdAt"`
}

// XPostRequest is the payload for POST /api/v1/x-post.
type XPostRequest struct {
	// URL is the post URL to resolve. Required.
	URL string `json:"url" binding:"required,url"`

	// Browser forces the browser-rendered strategy into the fallback chain
	// for this request, regardless of the server default. Higher fidelity,
	// much higher latency.
	Browser bool `json:"browser,omitempty"`
}
