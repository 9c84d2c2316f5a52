package xpost

import (
	"net/url"
	"time"
)

// maxImages caps the images sequence on every record, regardless of how many
// the source exposes.
const maxImages = 4

// capImages bounds imgs to maxImages entries and never returns nil, so the
// JSON encoding is always an array.
func capImages(imgs []string) []string {
	if imgs == nil {
		return []string{}
	}
	if len(imgs) > maxImages {
		return imgs[:maxImages]
	}
	return imgs
}

// resolveURL resolves ref against base, returning "" when either is
// unparsable. Already-absolute refs pass through unchanged.
func resolveURL(base, ref string) string {
	if ref == "" {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return ""
	}
	resolved, err := b.Parse(ref)
	if err != nil {
		return ""
	}
	return resolved.String()
}

// timestampLayouts are the post-time formats the sources are known to emit:
// RFC 3339 (fxtwitter), Twitter's legacy created_at, and the mirror
// tooltip format.
var timestampLayouts = []string{
	time.RFC3339,
	"Mon Jan 02 15:04:05 -0700 2006",
	"Jan 2, 2006 · 3:04 PM MST",
}

// normalizeTimestamp parses raw into RFC 3339 UTC, defaulting to the current
// time when raw is empty or in an unknown format.
func normalizeTimestamp(raw string) string {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC().Format(time.RFC3339)
		}
	}
	return time.Now().UTC().Format(time.RFC3339)
}
