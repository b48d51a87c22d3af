package middleware

import (
	"errors"   // Sentinel checks
	"net/http" // HTTP status codes

	"yield_wallet/internal/store" // User store

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// AdminOnlyMiddleware checks the user's role from the store on each request, so a demoted
// admin loses access before its token expires
func AdminOnlyMiddleware(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := UserID(c) // Get userID from context
		// Check if userID exists in context
		if userID == "" {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		user, err := st.GetUser(c.Request.Context(), userID) // Fetch user from the store
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,      // Caller
				"error":   err.Error(), // Store failure
			}).Error("Failed to load admin")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
			return
		}
		// Check if user exists and has the admin role
		if err != nil || !user.IsAdmin() || user.IsDeleted {
			// If not admin, abort with forbidden status
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next() // If admin, proceed to the next handler
	}
}
