package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/creativeos/creos/models"
	"github.com/creativeos/creos/simhash"
)

// embeddingDims matches the dimension of the upstream embedding service this
// endpoint stands in for.
const embeddingDims = 384

// Embedding returns a handler for POST /api/v1/embedding.
//
// Vectors are derived deterministically from the text, so re-saving the same
// node yields the same embedding and similarity rankings stay stable across
// restarts.
func Embedding() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.EmbeddingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.EmbeddingResponse{
			Embedding: simhash.Vector(req.Text, embeddingDims),
		})
	}
}
