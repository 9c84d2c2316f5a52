package xpost

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/creativeos/creos/fetch"
)

func TestOEmbedStrategy_Success(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("url")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"author_name": "OpenAI",
			"html": "<blockquote class=\"twitter-tweet\"><p lang=\"en\">We shipped a thing.</p>&mdash; OpenAI (@openai)</blockquote>"
		}`)
	}))
	defer srv.Close()

	s := NewOEmbedStrategy(fetch.NewClient(), srv.URL, 5*time.Second)
	post, err := s.Attempt(context.Background(), testTarget())
	if err != nil {
		t.Fatalf("Attempt returned error: %v", err)
	}

	if gotQuery != "https://x.com/openai/status/123" {
		t.Errorf("url query param = %q", gotQuery)
	}
	if post.Text != "We shipped a thing." {
		t.Errorf("text = %q", post.Text)
	}
	if post.Author.Name != "OpenAI" {
		t.Errorf("author name = %q", post.Author.Name)
	}
	// The embed protocol doesn't expose the handle; it comes from the URL.
	if post.Author.Username != "openai" {
		t.Errorf("username = %q, want classified handle", post.Author.Username)
	}
	if len(post.Images) != 0 {
		t.Errorf("images = %v, want none from oEmbed", post.Images)
	}
	if _, parseErr := time.Parse(time.RFC3339, post.CreatedAt); parseErr != nil {
		t.Errorf("createdAt %q is not RFC 3339: %v", post.CreatedAt, parseErr)
	}
}

func TestOEmbedStrategy_EmptyFragment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"author_name": "", "html": ""}`)
	}))
	defer srv.Close()

	s := NewOEmbedStrategy(fetch.NewClient(), srv.URL, 5*time.Second)
	_, err := s.Attempt(context.Background(), testTarget())
	if !errors.Is(err, ErrNoResult) {
		t.Fatalf("err = %v, want ErrNoResult", err)
	}
}

func TestOEmbedStrategy_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	s := NewOEmbedStrategy(fetch.NewClient(), srv.URL, 5*time.Second)
	if _, err := s.Attempt(context.Background(), testTarget()); err == nil {
		t.Fatal("Attempt succeeded on a 403 response")
	}
}
