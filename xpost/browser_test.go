package xpost

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/creativeos/creos/models"
)

// fakeSession scripts each session operation and counts Close calls.
type fakeSession struct {
	prepareErr      error
	navigateErr     error
	navRelaxedErr   error
	extractPost     *models.XPost
	extractErr      error
	closeCalls      int
	navigateCalls   int
	navRelaxedCalls int
}

func (f *fakeSession) Prepare() error { return f.prepareErr }

func (f *fakeSession) Navigate(url string) error {
	f.navigateCalls++
	return f.navigateErr
}

func (f *fakeSession) NavigateRelaxed(url string) error {
	f.navRelaxedCalls++
	return f.navRelaxedErr
}

func (f *fakeSession) ExtractPost(postURL string) (*models.XPost, error) {
	if f.extractErr != nil {
		return nil, f.extractErr
	}
	return f.extractPost, nil
}

func (f *fakeSession) Close() error {
	f.closeCalls++
	return nil
}

func newFakeBrowserStrategy(sess *fakeSession, connectErr error) *browserStrategy {
	return &browserStrategy{
		connect: func(ctx context.Context) (session, error) {
			if connectErr != nil {
				return nil, connectErr
			}
			return sess, nil
		},
		timeout: 5 * time.Second,
	}
}

func TestBrowserStrategy_Success(t *testing.T) {
	sess := &fakeSession{
		extractPost: &models.XPost{
			Text:   "rendered text",
			Images: []string{"a", "b", "c", "d", "e", "f"},
			Author: models.XPostAuthor{Name: "OpenAI"},
		},
	}
	s := newFakeBrowserStrategy(sess, nil)

	post, err := s.Attempt(context.Background(), testTarget())
	if err != nil {
		t.Fatalf("Attempt returned error: %v", err)
	}
	if post.Text != "rendered text" {
		t.Errorf("text = %q", post.Text)
	}
	// Missing fields are backfilled from the classified target.
	if post.ID != "123" {
		t.Errorf("id = %q, want backfilled 123", post.ID)
	}
	if post.Author.Username != "openai" {
		t.Errorf("username = %q, want backfilled openai", post.Author.Username)
	}
	if len(post.Images) != 4 {
		t.Errorf("images = %d, want capped at 4", len(post.Images))
	}
	if sess.closeCalls != 1 {
		t.Errorf("Close calls = %d, want exactly 1", sess.closeCalls)
	}
}

func TestBrowserStrategy_ClosesOnceWhenNavigationFails(t *testing.T) {
	sess := &fakeSession{
		navigateErr:   errors.New("net::ERR_TIMED_OUT"),
		navRelaxedErr: errors.New("net::ERR_TIMED_OUT"),
	}
	s := newFakeBrowserStrategy(sess, nil)

	if _, err := s.Attempt(context.Background(), testTarget()); err == nil {
		t.Fatal("Attempt succeeded despite both navigation attempts failing")
	}
	if sess.navigateCalls != 1 || sess.navRelaxedCalls != 1 {
		t.Errorf("navigation calls = %d/%d, want 1/1", sess.navigateCalls, sess.navRelaxedCalls)
	}
	if sess.closeCalls != 1 {
		t.Errorf("Close calls = %d, want exactly 1", sess.closeCalls)
	}
}

func TestBrowserStrategy_RelaxedNavigationRecovers(t *testing.T) {
	sess := &fakeSession{
		navigateErr: errors.New("wait timeout"),
		extractPost: &models.XPost{Text: "late render", Author: models.XPostAuthor{Username: "openai"}},
	}
	s := newFakeBrowserStrategy(sess, nil)

	post, err := s.Attempt(context.Background(), testTarget())
	if err != nil {
		t.Fatalf("Attempt returned error: %v", err)
	}
	if post.Text != "late render" {
		t.Errorf("text = %q", post.Text)
	}
	if sess.navRelaxedCalls != 1 {
		t.Errorf("relaxed navigation calls = %d, want 1", sess.navRelaxedCalls)
	}
	if sess.closeCalls != 1 {
		t.Errorf("Close calls = %d, want exactly 1", sess.closeCalls)
	}
}

func TestBrowserStrategy_ClosesOnceWhenExtractionFails(t *testing.T) {
	sess := &fakeSession{extractErr: ErrNoResult}
	s := newFakeBrowserStrategy(sess, nil)

	if _, err := s.Attempt(context.Background(), testTarget()); err == nil {
		t.Fatal("Attempt succeeded despite extraction failure")
	}
	if sess.closeCalls != 1 {
		t.Errorf("Close calls = %d, want exactly 1", sess.closeCalls)
	}
}

func TestBrowserStrategy_ConnectFailure(t *testing.T) {
	s := newFakeBrowserStrategy(nil, errors.New("chrome not found"))
	if _, err := s.Attempt(context.Background(), testTarget()); err == nil {
		t.Fatal("Attempt succeeded despite launch failure")
	}
}

func TestBrowserStrategy_PrepareFailureIsNonFatal(t *testing.T) {
	sess := &fakeSession{
		prepareErr:  errors.New("stealth injection failed"),
		extractPost: &models.XPost{Text: "ok", Author: models.XPostAuthor{Username: "openai"}},
	}
	s := newFakeBrowserStrategy(sess, nil)

	post, err := s.Attempt(context.Background(), testTarget())
	if err != nil {
		t.Fatalf("Attempt returned error: %v", err)
	}
	if post.Text != "ok" {
		t.Errorf("text = %q", post.Text)
	}
}
