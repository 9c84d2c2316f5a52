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

const mirrorFixture = `<!DOCTYPE html>
<html><body>
<div class="main-tweet">
  <a class="fullname">Open AI</a>
  <a class="username">@openai</a>
  <div class="tweet-content">Introducing something new.</div>
  <span class="tweet-date"><a title="Jan 2, 2024 · 3:04 PM UTC">Jan 2</a></span>
  <a class="still-image" href="/pic/media%2Fimg1.jpg"></a>
  <a class="still-image" href="/pic/media%2Fimg2.jpg"></a>
  <a class="still-image" href="/pic/media%2Fimg3.jpg"></a>
  <a class="still-image" href="/pic/media%2Fimg4.jpg"></a>
  <a class="still-image" href="/pic/media%2Fimg5.jpg"></a>
  <a class="still-image" href="/pic/media%2Fimg6.jpg"></a>
  <video><source src="/video/clip.mp4"></video>
</div>
</body></html>`

func testTarget() Target {
	return Target{
		URL:      "https://x.com/openai/status/123",
		Username: "openai",
		PostID:   "123",
	}
}

func TestMirrorStrategy_ExtractsAndCapsImages(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, mirrorFixture)
	}))
	defer srv.Close()

	s := NewMirrorStrategy(fetch.NewClient(), []string{srv.URL}, 5*time.Second)
	post, err := s.Attempt(context.Background(), testTarget())
	if err != nil {
		t.Fatalf("Attempt returned error: %v", err)
	}

	if gotPath != "/openai/status/123" {
		t.Errorf("request path = %q, want /openai/status/123", gotPath)
	}
	if post.Text != "Introducing something new." {
		t.Errorf("text = %q", post.Text)
	}
	if post.Author.Username != "openai" {
		t.Errorf("username = %q, want openai", post.Author.Username)
	}
	if post.Author.Name != "Open AI" {
		t.Errorf("name = %q, want Open AI", post.Author.Name)
	}
	if len(post.Images) != 4 {
		t.Fatalf("images = %d, want exactly 4 (source has 6)", len(post.Images))
	}
	for i, img := range post.Images {
		want := srv.URL + fmt.Sprintf("/pic/media%%2Fimg%d.jpg", i+1)
		if img != want {
			t.Errorf("images[%d] = %q, want %q", i, img, want)
		}
	}
	if post.VideoURL != srv.URL+"/video/clip.mp4" {
		t.Errorf("video = %q", post.VideoURL)
	}
	if post.URL != "https://x.com/openai/status/123" {
		t.Errorf("url = %q, want canonical form", post.URL)
	}

	created, parseErr := time.Parse(time.RFC3339, post.CreatedAt)
	if parseErr != nil {
		t.Fatalf("createdAt %q is not RFC 3339: %v", post.CreatedAt, parseErr)
	}
	if created.Year() != 2024 {
		t.Errorf("createdAt = %v, want the mirror's post date", created)
	}
}

func TestMirrorStrategy_FallsThroughDeadInstances(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer dead.Close()

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>Instance has been rate limited.</body></html>")
	}))
	defer empty.Close()

	alive := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, mirrorFixture)
	}))
	defer alive.Close()

	s := NewMirrorStrategy(fetch.NewClient(), []string{dead.URL, empty.URL, alive.URL}, 5*time.Second)
	post, err := s.Attempt(context.Background(), testTarget())
	if err != nil {
		t.Fatalf("Attempt returned error: %v", err)
	}
	if post.Author.Username != "openai" {
		t.Errorf("username = %q, want result from the live mirror", post.Author.Username)
	}
}

func TestMirrorStrategy_AllInstancesFail(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer dead.Close()

	s := NewMirrorStrategy(fetch.NewClient(), []string{dead.URL, dead.URL}, 5*time.Second)
	_, err := s.Attempt(context.Background(), testTarget())
	if !errors.Is(err, ErrNoResult) {
		t.Fatalf("err = %v, want ErrNoResult", err)
	}
}

func TestMirrorStrategy_UnreachableHost(t *testing.T) {
	// Port 1 is essentially guaranteed to refuse connections.
	s := NewMirrorStrategy(fetch.NewClient(), []string{"http://127.0.0.1:1"}, time.Second)
	_, err := s.Attempt(context.Background(), testTarget())
	if err == nil {
		t.Fatal("Attempt succeeded against an unreachable mirror")
	}
}
