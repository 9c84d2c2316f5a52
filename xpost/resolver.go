package xpost

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/creativeos/creos/config"
	"github.com/creativeos/creos/fetch"
	"github.com/creativeos/creos/models"
)

// PlaceholderText is the sentinel body of a placeholder record, returned
// when every extraction strategy has failed.
const PlaceholderText = "X post content could not be fetched"

// Resolver runs the extraction strategies for a post URL in a fixed
// preference order, stopping at the first success. Strategies execute
// strictly sequentially: a later strategy only runs after the prior one has
// definitively failed, which keeps worst-case latency predictable and spends
// no bandwidth on strategies that turn out to be unnecessary.
//
// Concurrent Resolve calls for different URLs are independent; the Resolver
// holds no per-call state.
type Resolver struct {
	chain   []Strategy
	browser Strategy
}

// NewResolver builds the default pipeline from configuration:
// structured mirror → HTML mirrors → oEmbed (→ browser when
// cfg.IncludeBrowser is set) → placeholder. The browser strategy stays
// available to explicit opt-in callers either way.
func NewResolver(cfg config.XPostConfig, browserCfg config.BrowserConfig, client *fetch.Client) *Resolver {
	chain := []Strategy{
		NewFixAPIStrategy(client, "https://"+cfg.FixAPIHost, cfg.FixAPITimeout),
		NewMirrorStrategy(client, cfg.Mirrors, cfg.MirrorTimeout),
		NewOEmbedStrategy(client, cfg.OEmbedEndpoint, cfg.OEmbedTimeout),
	}
	browser := NewBrowserStrategy(browserCfg, cfg.BrowserTimeout)
	if cfg.IncludeBrowser {
		chain = append(chain, browser)
	}
	return &Resolver{chain: chain, browser: browser}
}

// NewResolverWithStrategies builds a Resolver from explicit strategies.
// browser may be nil when no rendered fallback exists.
func NewResolverWithStrategies(chain []Strategy, browser Strategy) *Resolver {
	return &Resolver{chain: chain, browser: browser}
}

// Resolve classifies rawURL and runs the default fallback chain.
//
// It returns an error only for an unrecognized URL or a cancelled context;
// every downstream failure degrades into the next strategy and, ultimately,
// a placeholder record. A caller that sticks around always receives a
// structurally valid post for a classifiable URL.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (*models.XPost, error) {
	target, err := Classify(rawURL)
	if err != nil {
		return nil, err
	}
	return r.run(ctx, target, r.chain)
}

// ResolveRendered is the high-fidelity variant: it appends the
// browser-rendered strategy to the chain regardless of the default
// configuration. Much slower; callers opt in per request.
func (r *Resolver) ResolveRendered(ctx context.Context, rawURL string) (*models.XPost, error) {
	target, err := Classify(rawURL)
	if err != nil {
		return nil, err
	}

	chain := r.chain
	if r.browser != nil && !chainContains(chain, r.browser) {
		chain = append(append([]Strategy{}, chain...), r.browser)
	}
	return r.run(ctx, target, chain)
}

// run tries each strategy in order and falls back to a placeholder record.
// A cancelled context propagates as an error: the caller walked away, so no
// synthesized record is returned on its behalf. Deadline expiry still
// degrades to the placeholder like any other exhaustion.
func (r *Resolver) run(ctx context.Context, target Target, chain []Strategy) (*models.XPost, error) {
	for _, strat := range chain {
		if ctx.Err() != nil {
			break
		}

		post, err := strat.Attempt(ctx, target)
		if err != nil {
			slog.Info("extraction strategy failed",
				"strategy", strat.Name(),
				"url", target.URL,
				"error", err,
			)
			continue
		}
		if post == nil {
			continue
		}
		slog.Info("extraction strategy succeeded",
			"strategy", strat.Name(),
			"url", target.URL,
		)
		return post, nil
	}

	if errors.Is(ctx.Err(), context.Canceled) {
		return nil, ctx.Err()
	}

	slog.Warn("all extraction strategies failed, returning placeholder",
		"url", target.URL, "post_id", target.PostID)
	return Placeholder(target), nil
}

// Placeholder synthesizes a minimal valid record from the classified
// identifiers alone.
func Placeholder(target Target) *models.XPost {
	return &models.XPost{
		ID:  target.PostID,
		URL: target.URL,
		Author: models.XPostAuthor{
			Name:      target.Username,
			Username:  target.Username,
			AvatarURL: "",
		},
		Text:      PlaceholderText,
		Images:    []string{},
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

func chainContains(chain []Strategy, s Strategy) bool {
	for _, c := range chain {
		if c == s {
			return true
		}
	}
	return false
}
