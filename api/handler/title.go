package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/creativeos/creos/llm"
	"github.com/creativeos/creos/models"
)

// Title returns a handler for POST /api/v1/title.
//
// On provider failure the comment itself, capped to title length, is
// returned with 200.
func Title(client *llm.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.TitleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		title, err := client.GenerateTitle(c.Request.Context(), req.Comment)
		if err != nil {
			slog.Error("title generation failed", "error", err)
			c.JSON(http.StatusOK, models.TitleResponse{Title: llm.FallbackTitle(req.Comment)})
			return
		}

		c.JSON(http.StatusOK, models.TitleResponse{Title: title})
	}
}
