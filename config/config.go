package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	XPost     XPostConfig
	Browser   BrowserConfig
	OGP       OGPConfig
	LLM       LLMConfig
	Nodes     NodesConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// XPostConfig controls the post-extraction fallback pipeline.
type XPostConfig struct {
	// Mirrors is the ordered list of HTML mirror base URLs.
	Mirrors []string

	// FixAPIHost is the hostname of the structured JSON mirror.
	FixAPIHost string // default: "api.fxtwitter.com"

	// OEmbedEndpoint is the platform's public embed-metadata endpoint.
	OEmbedEndpoint string // default: "https://publish.twitter.com/oembed"

	// FixAPITimeout is the deadline for one structured-mirror call.
	FixAPITimeout time.Duration // default: 5s

	// MirrorTimeout is the deadline for one HTML-mirror instance.
	MirrorTimeout time.Duration // default: 10s

	// OEmbedTimeout is the deadline for the embed-protocol call.
	OEmbedTimeout time.Duration // default: 5s

	// BrowserTimeout is the deadline for the browser-rendered strategy.
	BrowserTimeout time.Duration // default: 30s

	// IncludeBrowser chains the browser-rendered strategy before the
	// placeholder in the default pipeline. Off by default: it trades a lot
	// of latency for fidelity, so callers opt in per request instead.
	IncludeBrowser bool // default: false
}

// BrowserConfig controls the per-call rod browser launches.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: true

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string
}

// OGPConfig controls the Open Graph metadata scraper.
type OGPConfig struct {
	// Timeout is the per-page fetch deadline.
	Timeout time.Duration // default: 10s

	// ImageCacheDir is where downloaded OGP images are stored.
	// Empty disables image downloading.
	ImageCacheDir string // default: "data/ogp_cache"
}

// LLMConfig controls the chat-completion client used for summaries,
// titles, and tag extraction.
type LLMConfig struct {
	// BaseURL is the OpenAI-compatible API root.
	BaseURL string // default: "https://api.deepseek.com/v1"

	// APIKey authenticates against the provider.
	APIKey string

	// Model is the chat model identifier.
	Model string // default: "deepseek-chat"

	// Timeout is the per-completion deadline.
	Timeout time.Duration // default: 30s

	// MaxRetries bounds the exponential-backoff retry loop on 429/5xx.
	MaxRetries int // default: 3
}

// NodesConfig controls the file-backed node store.
type NodesConfig struct {
	// DataPath is the JSON file holding the node list.
	DataPath string // default: "data/nodes.json"
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per API key.
	Burst int // default: 10
}

// CacheConfig controls the OGP response cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached responses.
	MaxEntries int // default: 1000

	// TTL is how long a cached OGP response stays valid.
	TTL time.Duration // default: 1h
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("CREOS_HOST", "0.0.0.0"),
			Port: envIntOr("CREOS_PORT", 8080),
			Mode: envOr("CREOS_MODE", "release"),
		},
		XPost: XPostConfig{
			Mirrors: envSliceOr("CREOS_XPOST_MIRRORS", []string{
				"https://nitter.net",
				"https://nitter.cz",
				"https://nitter.poast.org",
			}),
			FixAPIHost:     envOr("CREOS_XPOST_FIXAPI_HOST", "api.fxtwitter.com"),
			OEmbedEndpoint: envOr("CREOS_XPOST_OEMBED", "https://publish.twitter.com/oembed"),
			FixAPITimeout:  envDurationOr("CREOS_XPOST_FIXAPI_TIMEOUT", 5*time.Second),
			MirrorTimeout:  envDurationOr("CREOS_XPOST_MIRROR_TIMEOUT", 10*time.Second),
			OEmbedTimeout:  envDurationOr("CREOS_XPOST_OEMBED_TIMEOUT", 5*time.Second),
			BrowserTimeout: envDurationOr("CREOS_XPOST_BROWSER_TIMEOUT", 30*time.Second),
			IncludeBrowser: envBoolOr("CREOS_XPOST_BROWSER", false),
		},
		Browser: BrowserConfig{
			Headless:   envBoolOr("CREOS_HEADLESS", true),
			NoSandbox:  envBoolOr("CREOS_NO_SANDBOX", true),
			BrowserBin: os.Getenv("CREOS_BROWSER_BIN"),
		},
		OGP: OGPConfig{
			Timeout:       envDurationOr("CREOS_OGP_TIMEOUT", 10*time.Second),
			ImageCacheDir: envOr("CREOS_OGP_CACHE_DIR", "data/ogp_cache"),
		},
		LLM: LLMConfig{
			BaseURL:    envOr("CREOS_LLM_BASE_URL", "https://api.deepseek.com/v1"),
			APIKey:     os.Getenv("CREOS_LLM_API_KEY"),
			Model:      envOr("CREOS_LLM_MODEL", "deepseek-chat"),
			Timeout:    envDurationOr("CREOS_LLM_TIMEOUT", 30*time.Second),
			MaxRetries: envIntOr("CREOS_LLM_MAX_RETRIES", 3),
		},
		Nodes: NodesConfig{
			DataPath: envOr("CREOS_NODES_PATH", "data/nodes.json"),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("CREOS_AUTH_ENABLED", false),
			APIKeys: envSliceOr("CREOS_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("CREOS_RATE_RPS", 5.0),
			Burst:             envIntOr("CREOS_RATE_BURST", 10),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("CREOS_CACHE_MAX_ENTRIES", 1000),
			TTL:        envDurationOr("CREOS_CACHE_TTL", time.Hour),
		},
		Log: LogConfig{
			Level:  envOr("CREOS_LOG_LEVEL", "info"),
			Format: envOr("CREOS_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
