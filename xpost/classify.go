// Package xpost extracts structured post data from X/Twitter URLs.
//
// A single post URL can be resolved through several independent strategies
// (JSON mirror, HTML mirrors, oEmbed, headless browser); the Resolver runs
// them in a fixed preference order and degrades to a placeholder record when
// every strategy fails, so callers always get a structurally valid post.
package xpost

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/creativeos/creos/models"
)

// postPathPattern matches the post path form /<username>/status/<numeric id>.
var postPathPattern = regexp.MustCompile(`^/(\w+)/status/(\d+)`)

// acceptedHosts are the platform's primary domain and its short-alias
// domain, with their common subdomain variants.
var acceptedHosts = map[string]struct{}{
	"twitter.com":        {},
	"www.twitter.com":    {},
	"mobile.twitter.com": {},
	"x.com":              {},
	"www.x.com":          {},
}

// Target carries the stable identifiers classified out of a post URL.
type Target struct {
	// URL is the original URL as given by the caller.
	URL string

	// Username is the author's handle from the URL path.
	Username string

	// PostID is the platform-assigned numeric post identifier.
	PostID string
}

// CanonicalURL returns the post URL normalized to the primary domain form.
func (t Target) CanonicalURL() string {
	return fmt.Sprintf("https://x.com/%s/status/%s", t.Username, t.PostID)
}

// Classify validates that rawURL refers to a post on an accepted hostname
// and extracts its identifiers. This is a pure function; it performs no I/O.
//
// A non-matching URL is the only condition the resolver surfaces to its
// caller; every downstream failure degrades internally.
func Classify(rawURL string) (Target, error) {
	u, err := url.Parse(rawURL)
	if err == nil {
		if _, ok := acceptedHosts[strings.ToLower(u.Hostname())]; ok {
			if m := postPathPattern.FindStringSubmatch(u.Path); m != nil {
				return Target{URL: rawURL, Username: m[1], PostID: m[2]}, nil
			}
		}
	}
	return Target{}, models.NewAppError(
		models.ErrCodeUnrecognizedURL,
		"not a recognized X/Twitter post URL",
		nil,
	)
}

// IsPostURL reports whether rawURL refers to a post without extracting ids.
func IsPostURL(rawURL string) bool {
	_, err := Classify(rawURL)
	return err == nil
}
