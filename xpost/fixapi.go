package xpost

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/creativeos/creos/fetch"
	"github.com/creativeos/creos/models"
)

// fixAPIStrategy queries a JSON mirror (fxtwitter-style API) derived from the
// post URL by host substitution. It is the cheapest strategy: one GET, one
// JSON decode, structured media out of the box.
type fixAPIStrategy struct {
	client  *fetch.Client
	baseURL string
	timeout time.Duration
}

// NewFixAPIStrategy creates the structured-mirror strategy. baseURL is the
// mirror root, e.g. "https://api.fxtwitter.com".
func NewFixAPIStrategy(client *fetch.Client, baseURL string, timeout time.Duration) Strategy {
	return &fixAPIStrategy{client: client, baseURL: baseURL, timeout: timeout}
}

func (s *fixAPIStrategy) Name() string { return "fixapi" }

// fixAPIResponse is the subset of the mirror response we consume.
type fixAPIResponse struct {
	Tweet *struct {
		ID        string `json:"id"`
		URL       string `json:"url"`
		Text      string `json:"text"`
		CreatedAt string `json:"created_at"`
		Author    struct {
			Name       string `json:"name"`
			ScreenName string `json:"screen_name"`
			AvatarURL  string `json:"avatar_url"`
		} `json:"author"`
		Media struct {
			Photos []struct {
				URL string `json:"url"`
			} `json:"photos"`
			Videos []struct {
				URL string `json:"url"`
			} `json:"videos"`
		} `json:"media"`
	} `json:"tweet"`
}

func (s *fixAPIStrategy) Attempt(ctx context.Context, target Target) (*models.XPost, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	apiURL := fmt.Sprintf("%s/%s/status/%s", s.baseURL, target.Username, target.PostID)
	body, err := s.client.Get(ctx, apiURL, map[string]string{
		"User-Agent": "Mozilla/5.0 (compatible; bot)",
		"Accept":     "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("fixapi: %w", err)
	}

	var resp fixAPIResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("fixapi: decode: %w", err)
	}
	// Missing top-level post object means the mirror had nothing for us.
	if resp.Tweet == nil {
		return nil, ErrNoResult
	}
	tweet := resp.Tweet

	id := tweet.ID
	if id == "" {
		id = target.PostID
	}
	postURL := tweet.URL
	if postURL == "" {
		postURL = target.CanonicalURL()
	}
	username := tweet.Author.ScreenName
	if username == "" {
		username = target.Username
	}

	images := make([]string, 0, len(tweet.Media.Photos))
	for _, p := range tweet.Media.Photos {
		if p.URL != "" {
			images = append(images, p.URL)
		}
	}
	videoURL := ""
	if len(tweet.Media.Videos) > 0 {
		videoURL = tweet.Media.Videos[0].URL
	}

	return &models.XPost{
		ID:  id,
		URL: postURL,
		Author: models.XPostAuthor{
			Name:      tweet.Author.Name,
			Username:  username,
			AvatarURL: tweet.Author.AvatarURL,
		},
		Text:      tweet.Text,
		Images:    capImages(images),
		VideoURL:  videoURL,
		CreatedAt: normalizeTimestamp(tweet.CreatedAt),
	}, nil
}
