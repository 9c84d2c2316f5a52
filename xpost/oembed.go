package xpost

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/creativeos/creos/fetch"
	"github.com/creativeos/creos/models"
)

// oembedStrategy uses the platform's public embed endpoint as a metadata
// source. Official but limited: it yields post text and the author's display
// name, never media, and the handle has to come from the classified URL.
type oembedStrategy struct {
	client   *fetch.Client
	endpoint string
	timeout  time.Duration
}

// NewOEmbedStrategy creates the embed-protocol strategy. endpoint is the
// oEmbed root, e.g. "https://publish.twitter.com/oembed".
func NewOEmbedStrategy(client *fetch.Client, endpoint string, timeout time.Duration) Strategy {
	return &oembedStrategy{client: client, endpoint: endpoint, timeout: timeout}
}

func (s *oembedStrategy) Name() string { return "oembed" }

// oembedResponse is the subset of the oEmbed payload we consume.
type oembedResponse struct {
	HTML       string `json:"html"`
	AuthorName string `json:"author_name"`
}

func (s *oembedStrategy) Attempt(ctx context.Context, target Target) (*models.XPost, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reqURL := fmt.Sprintf("%s?url=%s&omit_script=true", s.endpoint, url.QueryEscape(target.URL))
	body, err := s.client.Get(ctx, reqURL, map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, fmt.Errorf("oembed: %w", err)
	}

	var resp oembedResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("oembed: decode: %w", err)
	}
	if resp.HTML == "" {
		return nil, ErrNoResult
	}

	// The payload embeds the post as an HTML fragment; the first paragraph
	// is the post body.
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.HTML))
	if err != nil {
		return nil, fmt.Errorf("oembed: parse fragment: %w", err)
	}
	text := strings.TrimSpace(doc.Find("p").First().Text())

	name := resp.AuthorName
	if name == "" {
		name = target.Username
	}

	return &models.XPost{
		ID:  target.PostID,
		URL: target.URL,
		Author: models.XPostAuthor{
			Name:      name,
			Username:  target.Username,
			AvatarURL: "",
		},
		Text:      text,
		Images:    []string{},
		CreatedAt: normalizeTimestamp(""),
	}, nil
}
