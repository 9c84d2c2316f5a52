// Package ogp scrapes Open Graph metadata from bookmarked pages and manages
// the local OGP image cache.
package ogp

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/creativeos/creos/config"
	"github.com/creativeos/creos/fetch"
	"github.com/creativeos/creos/models"
)

// Scraper fetches pages and extracts their Open Graph metadata.
type Scraper struct {
	client *fetch.Client
	cfg    config.OGPConfig
}

// NewScraper creates a Scraper using the shared fetch client.
func NewScraper(client *fetch.Client, cfg config.OGPConfig) *Scraper {
	return &Scraper{client: client, cfg: cfg}
}

// Scrape fetches pageURL and extracts OGP metadata with graceful fallbacks:
// <title> when og:title is missing, the meta description or a readability
// excerpt when og:description is missing. Relative og:image URLs are
// resolved against the page URL.
func (s *Scraper) Scrape(ctx context.Context, pageURL string) (*models.OGPResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	body, err := s.client.Get(ctx, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("ogp: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ogp: parse: %w", err)
	}

	resp := &models.OGPResponse{
		Title:       metaContent(doc, `meta[property="og:title"]`),
		Description: metaContent(doc, `meta[property="og:description"]`),
		ImageURL:    metaContent(doc, `meta[property="og:image"]`),
		URL:         metaContent(doc, `meta[property="og:url"]`),
		SiteName:    metaContent(doc, `meta[property="og:site_name"]`),
	}

	if resp.Title == "" {
		resp.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if resp.Description == "" {
		resp.Description = metaContent(doc, `meta[name="description"]`)
	}
	if resp.Description == "" {
		resp.Description = readabilityExcerpt(body, pageURL)
	}
	if resp.URL == "" {
		resp.URL = pageURL
	}
	if resp.ImageURL != "" && !strings.HasPrefix(resp.ImageURL, "http") {
		if base, parseErr := url.Parse(pageURL); parseErr == nil {
			if abs, resolveErr := base.Parse(resp.ImageURL); resolveErr == nil {
				resp.ImageURL = abs.String()
			}
		}
	}

	return resp, nil
}

// DownloadImage fetches imageURL into the local OGP cache, keyed by nodeID,
// and returns the public cache path. Returns "" without error when image
// caching is disabled or imageURL is empty.
func (s *Scraper) DownloadImage(ctx context.Context, imageURL, nodeID string) (string, error) {
	if imageURL == "" || s.cfg.ImageCacheDir == "" {
		return "", nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	data, _, err := s.client.Download(ctx, imageURL)
	if err != nil {
		return "", fmt.Errorf("ogp: download image: %w", err)
	}

	if err := os.MkdirAll(s.cfg.ImageCacheDir, 0o755); err != nil {
		return "", fmt.Errorf("ogp: create cache dir: %w", err)
	}

	filename := nodeID + imageExtension(imageURL)
	path := filepath.Join(s.cfg.ImageCacheDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("ogp: write image: %w", err)
	}

	return "/ogp_cache/" + filename, nil
}

// metaContent returns the trimmed content attribute of the first element
// matching the selector, or "".
func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}

// readabilityExcerpt runs the readability algorithm as a last-resort
// description source. Failures are logged and degrade to "".
func readabilityExcerpt(body []byte, pageURL string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	article, err := readability.FromReader(bytes.NewReader(body), parsed)
	if err != nil {
		slog.Debug("readability excerpt failed", "url", pageURL, "error", err)
		return ""
	}
	return strings.TrimSpace(article.Excerpt)
}

// imageExtension extracts a usable file extension from an image URL,
// defaulting to .jpg.
func imageExtension(imageURL string) string {
	u, err := url.Parse(imageURL)
	if err != nil {
		return ".jpg"
	}
	ext := filepath.Ext(u.Path)
	if ext == "" || len(ext) > 5 {
		return ".jpg"
	}
	return ext
}
