package middleware

import (
	"errors"   // Sentinel checks
	"net/http" // HTTP status codes
	"time"     // Activity timestamp

	"yield_wallet/internal/domain" // Activity fields
	"yield_wallet/internal/store"  // User store

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// activityInterval is the resolution of LastActive, touches inside it are skipped
const activityInterval = time.Minute

// ActiveUserMiddleware refuses deleted and blocked accounts and records the request as activity
func ActiveUserMiddleware(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		userID := UserID(c)
		user, err := st.GetUser(ctx, userID)
		if errors.Is(err, store.ErrNotFound) || (err == nil && user.IsDeleted) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Account no longer exists"})
			return
		}
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,      // Caller
				"error":   err.Error(), // Store failure
			}).Error("Failed to load user")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
			return
		}
		if user.IsBlocked {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Account is blocked"})
			return
		}
		now := time.Now().UTC()
		if user.LastActive != nil && now.Sub(*user.LastActive) < activityInterval {
			c.Next()
			return
		}
		if err := st.TouchUser(ctx, userID, domain.Activity{LastActive: &now}); err != nil {
			// Activity tracking never fails the request
			logrus.WithFields(logrus.Fields{
				"user_id": userID,
				"error":   err.Error(),
			}).Warn("Failed to record activity")
		}
		c.Next()
	}
}
