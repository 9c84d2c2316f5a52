package xpost

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/creativeos/creos/fetch"
	"github.com/creativeos/creos/models"
)

// mirrorUA is the identifying header sent to HTML mirrors. A plain browser
// string keeps the block rate low on instances that reject obvious bots.
const mirrorUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// mirrorStrategy scrapes rendered HTML from a short fixed list of redundant
// mirror instances (nitter-style front-ends). Instances are tried in order
// with a bounded per-instance timeout; the first one yielding both post text
// and an author handle wins.
type mirrorStrategy struct {
	client  *fetch.Client
	mirrors []string
	timeout time.Duration
}

// NewMirrorStrategy creates the HTML-mirror strategy. mirrors are base URLs
// without trailing slashes; timeout applies per instance, not overall.
func NewMirrorStrategy(client *fetch.Client, mirrors []string, timeout time.Duration) Strategy {
	return &mirrorStrategy{client: client, mirrors: mirrors, timeout: timeout}
}

func (s *mirrorStrategy) Name() string { return "mirror" }

func (s *mirrorStrategy) Attempt(ctx context.Context, target Target) (*models.XPost, error) {
	for _, mirror := range s.mirrors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		post, err := s.tryInstance(ctx, mirror, target)
		if err != nil {
			slog.Debug("mirror instance failed",
				"mirror", mirror, "post_id", target.PostID, "error", err)
			continue
		}
		return post, nil
	}
	return nil, ErrNoResult
}

// tryInstance fetches and parses the post page from a single mirror.
func (s *mirrorStrategy) tryInstance(ctx context.Context, mirror string, target Target) (*models.XPost, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	pageURL := fmt.Sprintf("%s/%s/status/%s", mirror, target.Username, target.PostID)
	body, err := s.client.Get(ctx, pageURL, map[string]string{"User-Agent": mirrorUA})
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(doc.Find(".tweet-content").First().Text())
	username := strings.TrimPrefix(strings.TrimSpace(doc.Find(".username").First().Text()), "@")
	name := strings.TrimSpace(doc.Find(".fullname").First().Text())
	date, _ := doc.Find(".tweet-date a").First().Attr("title")

	// A mirror that serves an error page or a rate-limit interstitial still
	// returns 200; require the two load-bearing fields before trusting it.
	if text == "" || username == "" {
		return nil, ErrNoResult
	}

	var images []string
	doc.Find(".still-image").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		if ok && href != "" {
			if abs := resolveURL(mirror, href); abs != "" {
				images = append(images, abs)
			}
		}
		return len(images) < maxImages
	})

	videoURL := ""
	if src, ok := doc.Find("video source").First().Attr("src"); ok {
		videoURL = resolveURL(mirror, src)
	}

	if name == "" {
		name = username
	}

	return &models.XPost{
		ID:  target.PostID,
		URL: target.CanonicalURL(),
		Author: models.XPostAuthor{
			Name:      name,
			Username:  username,
			AvatarURL: "",
		},
		Text:      text,
		Images:    capImages(images),
		VideoURL:  videoURL,
		CreatedAt: normalizeTimestamp(date),
	}, nil
}
