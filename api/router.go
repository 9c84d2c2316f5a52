// Package api wires handlers and middleware into the HTTP router.
package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/creativeos/creos/api/handler"
	"github.com/creativeos/creos/api/middleware"
	"github.com/creativeos/creos/cache"
	"github.com/creativeos/creos/config"
	"github.com/creativeos/creos/content"
	"github.com/creativeos/creos/llm"
	"github.com/creativeos/creos/models"
	"github.com/creativeos/creos/nodes"
	"github.com/creativeos/creos/ogp"
	"github.com/creativeos/creos/xpost"
)

// Deps carries the shared components the router hands to handlers.
type Deps struct {
	Resolver  *xpost.Resolver
	OGP       *ogp.Scraper
	LLM       *llm.Client
	Extractor *content.Extractor
	Store     *nodes.Store
	PostCache *cache.Cache[*models.XPost]
	OGPCache  *cache.Cache[*models.OGPResponse]
	StartTime time.Time
}

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(cfg *config.Config, deps Deps) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	// Cached OGP images are served straight from disk.
	if cfg.OGP.ImageCacheDir != "" {
		r.Static("/ogp_cache", cfg.OGP.ImageCacheDir)
	}

	v1 := r.Group("/api/v1")

	// Health — no auth required.
	v1.GET("/health", handler.Health(deps.Store, deps.StartTime))

	// Protected group — auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Post extraction
	protected.POST("/x-post", handler.XPost(deps.Resolver, deps.PostCache))

	// Bookmark metadata
	protected.POST("/ogp", handler.OGP(deps.OGP, deps.OGPCache))

	// LLM-backed enrichment
	protected.POST("/summary", handler.Summary(deps.LLM, deps.Extractor))
	protected.POST("/title", handler.Title(deps.LLM))
	protected.POST("/extract-tags", handler.Tags(deps.LLM))
	protected.POST("/embedding", handler.Embedding())

	// Node graph persistence
	protected.GET("/nodes", handler.ListNodes(deps.Store))
	protected.POST("/nodes", handler.SaveNodes(deps.Store))
	protected.GET("/nodes/:id/similar", handler.SimilarNodes(deps.Store))

	return r
}
