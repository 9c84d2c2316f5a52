package xpost

import (
	"context"
	"errors"

	"github.com/creativeos/creos/models"
)

// ErrNoResult signals that a strategy could not extract the post and the
// resolver should advance to the next one. It is never surfaced to callers.
var ErrNoResult = errors.New("xpost: no result")

// Strategy is one independent method of extracting a post record.
//
// Attempt returns the extracted record, or an error when extraction failed
// for any reason (network error, timeout, blocked mirror, selector miss).
// The resolver treats every error identically: log and try the next
// strategy. Implementations enforce their own timeouts so no single
// strategy can block the pipeline indefinitely, and produce records already
// conforming to the canonical shape (image cap included).
type Strategy interface {
	// Name returns the strategy identifier (e.g. "fixapi", "mirror").
	Name() string

	// Attempt tries to extract the post identified by target.
	Attempt(ctx context.Context, target Target) (*models.XPost, error)
}
