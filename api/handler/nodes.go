package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/creativeos/creos/models"
	"github.com/creativeos/creos/nodes"
)

// defaultSimilarLimit bounds GET /nodes/:id/similar results when the client
// does not pass ?limit.
const defaultSimilarLimit = 10

// ListNodes returns a handler for GET /api/v1/nodes.
func ListNodes(store *nodes.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, store.List())
	}
}

// SaveNodes returns a handler for POST /api/v1/nodes.
//
// The client owns the canonical graph and syncs the whole node set in bulk.
func SaveNodes(store *nodes.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req []models.ThoughtNode
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		if err := store.ReplaceAll(req); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SaveResponse{Success: true})
	}
}

// SimilarNodes returns a handler for GET /api/v1/nodes/:id/similar.
func SimilarNodes(store *nodes.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := defaultSimilarLimit
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				bindError(c, errors.New("limit must be a positive integer"))
				return
			}
			limit = n
		}

		results, err := store.Similar(c.Param("id"), limit)
		if err != nil {
			if errors.Is(err, nodes.ErrNotFound) {
				c.JSON(http.StatusNotFound, models.ErrorResponse{
					Error: &models.ErrorDetail{
						Code:    models.ErrCodeInvalidInput,
						Message: "node not found",
					},
				})
				return
			}
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, results)
	}
}
