package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/creativeos/creos/content"
	"github.com/creativeos/creos/llm"
	"github.com/creativeos/creos/models"
)

// Summary returns a handler for POST /api/v1/summary.
//
// The page body is extracted first so the model summarises actual content
// rather than guessing from the URL. Extraction failure is non-fatal. When
// the provider itself fails, a canned summary derived from the comment is
// returned with 200 so saving the bookmark never blocks on the LLM.
func Summary(client *llm.Client, extractor *content.Extractor) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SummaryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		var pageText string
		if extractor != nil {
			page, err := extractor.Extract(c.Request.Context(), req.URL, "")
			if err != nil {
				slog.Warn("page extraction failed, summarising without content",
					"url", req.URL, "error", err)
			} else {
				pageText = page.PromptText()
			}
		}

		summary, err := client.Summarize(c.Request.Context(), req.URL, req.Comment, pageText)
		if err != nil {
			slog.Error("summary generation failed", "url", req.URL, "error", err)
			c.JSON(http.StatusOK, models.SummaryResponse{Summary: llm.FallbackSummary(req.Comment)})
			return
		}

		c.JSON(http.StatusOK, models.SummaryResponse{Summary: summary})
	}
}
