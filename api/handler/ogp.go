package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/creativeos/creos/cache"
	"github.com/creativeos/creos/models"
	"github.com/creativeos/creos/ogp"
)

// OGP returns a handler for POST /api/v1/ogp.
//
// Scrape failures degrade to an empty 200 response: a bookmark without a
// preview card is still a usable bookmark, so the client never sees an error
// here. When NodeID is set the og:image is downloaded into the local cache
// and the response carries the cached path instead of the origin URL.
func OGP(scraper *ogp.Scraper, cc *cache.Cache[*models.OGPResponse]) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.OGPRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		cacheKey := cache.Key(req.URL, req.NodeID)
		if cc != nil {
			if meta, hit := cc.Get(cacheKey); hit {
				c.JSON(http.StatusOK, meta)
				return
			}
		}

		meta, err := scraper.Scrape(c.Request.Context(), req.URL)
		if err != nil {
			slog.Warn("ogp scrape failed", "url", req.URL, "error", err)
			c.JSON(http.StatusOK, &models.OGPResponse{})
			return
		}

		if req.NodeID != "" && meta.ImageURL != "" {
			cached, err := scraper.DownloadImage(c.Request.Context(), meta.ImageURL, req.NodeID)
			if err != nil {
				slog.Warn("ogp image download failed", "url", meta.ImageURL, "error", err)
			} else if cached != "" {
				meta.ImageURL = cached
			}
		}

		if cc != nil {
			cc.Set(cacheKey, meta)
		}
		c.JSON(http.StatusOK, meta)
	}
}
