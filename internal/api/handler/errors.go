package handler

import (
	"errors"
	"net/http"

	"grievancedesk/backend/internal/blobstore"
	"grievancedesk/backend/internal/reports"

	"github.com/gin-gonic/gin"
)

// statusFor maps data-access errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, reports.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, reports.ErrInvalidScope), errors.Is(err, blobstore.ErrInvalidPath):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
