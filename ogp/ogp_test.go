package ogp

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/creativeos/creos/config"
	"github.com/creativeos/creos/fetch"
)

func testConfig(cacheDir string) config.OGPConfig {
	return config.OGPConfig{
		Timeout:       5 * time.Second,
		ImageCacheDir: cacheDir,
	}
}

func TestScrape_FullOGPTags(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<!DOCTYPE html><html><head>
			<title>Fallback Title</title>
			<meta property="og:title" content="OGP Title">
			<meta property="og:description" content="OGP description.">
			<meta property="og:image" content="https://cdn.example/hero.png">
			<meta property="og:url" content="https://example.com/canonical">
			<meta property="og:site_name" content="Example">
		</head><body></body></html>`)
	}))
	defer srv.Close()

	s := NewScraper(fetch.NewClient(), testConfig(""))
	got, err := s.Scrape(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Scrape returned error: %v", err)
	}

	if got.Title != "OGP Title" {
		t.Errorf("title = %q", got.Title)
	}
	if got.Description != "OGP description." {
		t.Errorf("description = %q", got.Description)
	}
	if got.ImageURL != "https://cdn.example/hero.png" {
		t.Errorf("image = %q", got.ImageURL)
	}
	if got.URL != "https://example.com/canonical" {
		t.Errorf("url = %q", got.URL)
	}
	if got.SiteName != "Example" {
		t.Errorf("site name = %q", got.SiteName)
	}
}

func TestScrape_Fallbacks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<!DOCTYPE html><html><head>
			<title>  Plain Page  </title>
			<meta name="description" content="Meta description.">
			<meta property="og:image" content="/images/hero.png">
		</head><body></body></html>`)
	}))
	defer srv.Close()

	s := NewScraper(fetch.NewClient(), testConfig(""))
	got, err := s.Scrape(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Scrape returned error: %v", err)
	}

	if got.Title != "Plain Page" {
		t.Errorf("title = %q, want <title> fallback", got.Title)
	}
	if got.Description != "Meta description." {
		t.Errorf("description = %q, want meta fallback", got.Description)
	}
	if want := srv.URL + "/images/hero.png"; got.ImageURL != want {
		t.Errorf("image = %q, want resolved %q", got.ImageURL, want)
	}
	if got.URL != srv.URL {
		t.Errorf("url = %q, want page URL fallback", got.URL)
	}
}

func TestScrape_FetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := NewScraper(fetch.NewClient(), testConfig(""))
	if _, err := s.Scrape(context.Background(), srv.URL); err == nil {
		t.Fatal("Scrape succeeded on a 503 response")
	}
}

func TestDownloadImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	s := NewScraper(fetch.NewClient(), testConfig(dir))

	path, err := s.DownloadImage(context.Background(), srv.URL+"/hero.png?size=large", "node-1")
	if err != nil {
		t.Fatalf("DownloadImage returned error: %v", err)
	}
	if path != "/ogp_cache/node-1.png" {
		t.Errorf("cache path = %q", path)
	}

	data, err := os.ReadFile(filepath.Join(dir, "node-1.png"))
	if err != nil {
		t.Fatalf("cached file missing: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Errorf("cached content = %q", data)
	}
}

func TestDownloadImage_Disabled(t *testing.T) {
	s := NewScraper(fetch.NewClient(), testConfig(""))
	path, err := s.DownloadImage(context.Background(), "https://cdn.example/x.png", "node-1")
	if err != nil {
		t.Fatalf("DownloadImage returned error: %v", err)
	}
	if path != "" {
		t.Errorf("path = %q, want empty when caching disabled", path)
	}
}
