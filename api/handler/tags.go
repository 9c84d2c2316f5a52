package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/creativeos/creos/llm"
	"github.com/creativeos/creos/models"
)

// Tags returns a handler for POST /api/v1/extract-tags.
//
// The fixed fallback classification is used both when the model output does
// not parse and when the provider fails outright, always with 200.
func Tags(client *llm.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.TagsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		result, err := client.ExtractTags(c.Request.Context(), req.Text, req.URL)
		if err != nil {
			slog.Error("tag extraction failed", "url", req.URL, "error", err)
			c.JSON(http.StatusOK, llm.FallbackTags())
			return
		}

		c.JSON(http.StatusOK, result)
	}
}
