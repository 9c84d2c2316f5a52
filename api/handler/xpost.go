package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/creativeos/creos/cache"
	"github.com/creativeos/creos/models"
	"github.com/creativeos/creos/xpost"
)

// XPost returns a handler for POST /api/v1/x-post.
//
// Resolution flow:
//  1. Parse & validate request.
//  2. Cache lookup keyed by URL and render mode.
//  3. Resolver walks its strategy chain; with "browser": true the rendered
//     strategy is appended for this request.
//  4. A post is always returned for recognised URLs, placeholder included,
//     so placeholders are cached too and retried only after expiry.
func XPost(resolver *xpost.Resolver, cc *cache.Cache[*models.XPost]) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.XPostRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		mode := "chain"
		if req.Browser {
			mode = "rendered"
		}
		cacheKey := cache.Key(req.URL, mode)
		if cc != nil {
			if post, hit := cc.Get(cacheKey); hit {
				c.JSON(http.StatusOK, post)
				return
			}
		}

		var (
			post *models.XPost
			err  error
		)
		if req.Browser {
			post, err = resolver.ResolveRendered(c.Request.Context(), req.URL)
		} else {
			post, err = resolver.Resolve(c.Request.Context(), req.URL)
		}
		if err != nil {
			respondError(c, err)
			return
		}

		if cc != nil {
			cc.Set(cacheKey, post)
		}
		c.JSON(http.StatusOK, post)
	}
}
