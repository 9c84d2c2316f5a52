// Package handler contains the gin handlers for the HTTP API.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/creativeos/creos/models"
)

// respondError maps an AppError to the correct HTTP status code and writes
// the structured JSON error envelope.
func respondError(c *gin.Context, err error) {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		appErr = models.NewAppError(models.ErrCodeInternal, err.Error(), err)
	}

	c.JSON(mapErrorToStatus(appErr), models.ErrorResponse{Error: appErr.ToDetail()})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.AppError) int {
	switch e.Code {
	case models.ErrCodeInvalidInput, models.ErrCodeUnrecognizedURL:
		return http.StatusBadRequest // 400
	case models.ErrCodeUnauthorized, models.ErrCodeLLMAuthFailure:
		return http.StatusUnauthorized // 401
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeUpstream, models.ErrCodeLLMFailure:
		return http.StatusBadGateway // 502
	case models.ErrCodeRateLimited, models.ErrCodeLLMRateLimited:
		return http.StatusTooManyRequests // 429
	default:
		return http.StatusInternalServerError // 500
	}
}

// bindError writes a 400 for a request-body binding failure.
func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error: &models.ErrorDetail{
			Code:    models.ErrCodeInvalidInput,
			Message: err.Error(),
		},
	})
}
