package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/creativeos/creos/api"
	"github.com/creativeos/creos/cache"
	"github.com/creativeos/creos/config"
	"github.com/creativeos/creos/content"
	"github.com/creativeos/creos/fetch"
	"github.com/creativeos/creos/llm"
	"github.com/creativeos/creos/models"
	"github.com/creativeos/creos/nodes"
	"github.com/creativeos/creos/ogp"
	"github.com/creativeos/creos/xpost"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("creos starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"browserInChain", cfg.XPost.IncludeBrowser,
	)

	// ── 3. Open the node store ──────────────────────────────────────
	store, err := nodes.Open(cfg.Nodes.DataPath)
	if err != nil {
		slog.Error("failed to open node store", "path", cfg.Nodes.DataPath, "error", err)
		os.Exit(1)
	}
	slog.Info("node store loaded", "path", cfg.Nodes.DataPath, "nodes", store.Count())

	// ── 4. Wire shared components ───────────────────────────────────
	client := fetch.NewClient()
	resolver := xpost.NewResolver(cfg.XPost, cfg.Browser, client)
	ogpScraper := ogp.NewScraper(client, cfg.OGP)
	llmClient := llm.NewClient(nil, cfg.LLM)
	extractor := content.NewExtractor(client)

	postCache := cache.New[*models.XPost](cfg.Cache.MaxEntries, cfg.Cache.TTL)
	ogpCache := cache.New[*models.OGPResponse](cfg.Cache.MaxEntries, cfg.Cache.TTL)

	// ── 5. Setup router ─────────────────────────────────────────────
	router := api.NewRouter(cfg, api.Deps{
		Resolver:  resolver,
		OGP:       ogpScraper,
		LLM:       llmClient,
		Extractor: extractor,
		Store:     store,
		PostCache: postCache,
		OGPCache:  ogpCache,
		StartTime: time.Now(),
	})

	// ── 6. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 7. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight requests 5 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	slog.Info("creos stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
