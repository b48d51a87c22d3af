package api

import (
	"errors"   // Error classification
	"net/http" // HTTP status codes

	"yield_wallet/internal/ledger" // Business errors
	"yield_wallet/internal/store"  // Store sentinels

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// respondError maps a ledger or store error onto a JSON error response. Unexpected errors are
// logged and hidden behind a generic message.
func respondError(c *gin.Context, err error) {
	var lerr *ledger.Error
	switch {
	case errors.As(err, &lerr):
		c.JSON(statusForKind(lerr.Kind), gin.H{"error": lerr.Msg})
	case errors.Is(err, store.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Concurrent update, please retry"})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	default:
		logrus.WithFields(logrus.Fields{
			"method": c.Request.Method,   // HTTP method
			"path":   c.Request.URL.Path, // Request path
			"error":  err.Error(),        // Cause
		}).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

func statusForKind(k ledger.Kind) int {
	switch k {
	case ledger.KindUnauthorized:
		return http.StatusUnauthorized
	case ledger.KindForbidden:
		return http.StatusForbidden
	case ledger.KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

func badRequest(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
}
