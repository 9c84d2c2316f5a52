package xpost

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/creativeos/creos/config"
	"github.com/creativeos/creos/models"
)

const browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// session abstracts the rendered-page operations the browser strategy
// needs, so extraction logic can be exercised in tests without Chrome.
type session interface {
	// Prepare installs stealth JS and identifying headers. Must run before
	// the first navigation to take effect.
	Prepare() error

	// Navigate loads the URL and waits for the DOM to settle.
	Navigate(url string) error

	// NavigateRelaxed retries the load with a looser wait condition; used
	// when the primary wait times out on slow client-side rendering.
	NavigateRelaxed(url string) error

	// ExtractPost queries the rendered page for the post container and
	// returns the raw extraction, or an error if the container is missing.
	ExtractPost(postURL string) (*models.XPost, error)

	// Close releases the page and the browser process. Called exactly once
	// per session on every exit path.
	Close() error
}

// connectFunc opens a fresh browser session. Separated out so tests can
// inject fakes, the same way heavier fetch paths are injected elsewhere.
type connectFunc func(ctx context.Context) (session, error)

// browserStrategy drives an isolated headless browser per call: launch,
// render, extract, close. The browser is never pooled or reused across
// calls, so no state leaks between requests. Slowest strategy by far.
type browserStrategy struct {
	connect connectFunc
	timeout time.Duration
}

// NewBrowserStrategy creates the browser-rendered strategy backed by rod.
func NewBrowserStrategy(cfg config.BrowserConfig, timeout time.Duration) Strategy {
	return &browserStrategy{
		connect: func(ctx context.Context) (session, error) {
			return connectRod(ctx, cfg)
		},
		timeout: timeout,
	}
}

func (s *browserStrategy) Name() string { return "browser" }

func (s *browserStrategy) Attempt(ctx context.Context, target Target) (*models.XPost, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	sess, err := s.connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("browser: launch: %w", err)
	}
	defer func() {
		if closeErr := sess.Close(); closeErr != nil {
			slog.Warn("browser session close failed", "error", closeErr)
		}
	}()

	if err := sess.Prepare(); err != nil {
		slog.Warn("browser session prepare failed, proceeding bare", "error", err)
	}

	if err := sess.Navigate(target.URL); err != nil {
		slog.Debug("primary navigation failed, retrying with relaxed wait",
			"url", target.URL, "error", err)
		if err := sess.NavigateRelaxed(target.URL); err != nil {
			return nil, fmt.Errorf("browser: navigate: %w", err)
		}
	}

	post, err := sess.ExtractPost(target.CanonicalURL())
	if err != nil {
		return nil, fmt.Errorf("browser: extract: %w", err)
	}

	// Normalize in Go rather than trusting page-side JS with the contract.
	if post.ID == "" {
		post.ID = target.PostID
	}
	if post.Author.Username == "" {
		post.Author.Username = target.Username
	}
	post.Images = capImages(post.Images)
	post.CreatedAt = normalizeTimestamp(post.CreatedAt)
	return post, nil
}

// rodSession is the production session implementation: one launcher, one
// browser process, one page, all scoped to a single Attempt.
type rodSession struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
}

// connectRod launches an isolated headless Chromium and opens one page bound
// to ctx. Sandboxing is typically disabled for container compatibility.
func connectRod(ctx context.Context, cfg config.BrowserConfig) (session, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)

	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}

	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-gpu"))
	l.Set(flags.Flag("no-first-run"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-ipc-flooding-protection"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = browser.Close()
		l.Kill()
		return nil, fmt.Errorf("create page: %w", err)
	}

	return &rodSession{
		launcher: l,
		browser:  browser,
		page:     page.Context(ctx),
	}, nil
}

func (s *rodSession) Prepare() error {
	if _, err := s.page.EvalOnNewDocument(stealth.JS); err != nil {
		return fmt.Errorf("stealth injection: %w", err)
	}

	if err := (proto.NetworkSetUserAgentOverride{
		UserAgent: browserUA,
	}).Call(s.page); err != nil {
		return fmt.Errorf("set user agent: %w", err)
	}

	headers := proto.NetworkHeaders{
		"Accept-Language": gson.New("en-US,en;q=0.9,ja;q=0.8"),
	}
	if err := (proto.NetworkSetExtraHTTPHeaders{Headers: headers}).Call(s.page); err != nil {
		return fmt.Errorf("set extra headers: %w", err)
	}
	return nil
}

func (s *rodSession) Navigate(url string) error {
	if err := s.page.Navigate(url); err != nil {
		return err
	}
	// The post body is injected client-side well after DOMContentLoaded;
	// wait for the DOM to stop mutating instead of a fixed sleep.
	return s.page.WaitDOMStable(300*time.Millisecond, 0.1)
}

func (s *rodSession) NavigateRelaxed(url string) error {
	if err := s.page.Navigate(url); err != nil {
		return err
	}
	return s.page.WaitLoad()
}

func (s *rodSession) ExtractPost(postURL string) (*models.XPost, error) {
	res, err := s.page.Eval(extractPostJS, postURL)
	if err != nil {
		return nil, err
	}

	raw := res.Value.Str()
	if raw == "" {
		return nil, ErrNoResult
	}

	var post models.XPost
	if err := json.Unmarshal([]byte(raw), &post); err != nil {
		return nil, fmt.Errorf("decode extraction: %w", err)
	}
	return &post, nil
}

func (s *rodSession) Close() error {
	_ = s.page.Close()
	err := s.browser.Close()
	s.launcher.Kill()
	return err
}

// extractPostJS queries the rendered page for the tweet container and
// serializes the fields we need. Returns "" when the container is absent so
// the Go side can distinguish "page loaded, post missing" from eval errors.
const extractPostJS = `(postUrl) => {
	const idMatch = postUrl.match(/status\/(\d+)/);
	const article = document.querySelector('[data-testid="tweet"]') ||
		document.querySelector('article[data-testid="tweet"]') ||
		document.querySelector('div[data-testid="tweetText"]')?.closest('article');
	if (!article) return "";

	const text = article.querySelector('[data-testid="tweetText"]')?.textContent?.trim() || "";

	let name = "", username = "";
	const author = article.querySelector('[data-testid="User-Name"]') ||
		article.querySelector('div[data-testid="User-Names"]');
	if (author) {
		const spans = author.querySelectorAll("span");
		if (spans.length >= 2) {
			name = spans[0]?.textContent?.trim() || "";
			username = (spans[1]?.textContent?.trim() || "").replace("@", "");
		}
	}

	const avatar = article.querySelector('div[data-testid="Tweet-User-Avatar"] img') ||
		article.querySelector('img[src*="profile_images"]');

	const images = [];
	article.querySelectorAll('img[src*="media"]').forEach((img) => {
		const src = img.getAttribute("src");
		if (src && !src.includes("profile_images")) images.push(src);
	});

	const video = article.querySelector("video");
	const videoUrl = video?.getAttribute("src") ||
		video?.querySelector("source")?.getAttribute("src") || "";

	const createdAt = article.querySelector("time")?.getAttribute("datetime") || "";

	return JSON.stringify({
		id: idMatch ? idMatch[1] : "",
		url: postUrl,
		author: {
			name: name,
			username: username,
			avatarUrl: avatar?.getAttribute("src") || ""
		},
		text: text,
		images: images,
		videoUrl: videoUrl,
		createdAt: createdAt
	});
}`
