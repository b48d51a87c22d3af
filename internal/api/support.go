package api

import (
	"net/http" // HTTP status codes

	"yield_wallet/internal/domain"     // Senders
	"yield_wallet/internal/ledger"     // Ledger service
	"yield_wallet/internal/middleware" // Authenticated user

	"github.com/gin-gonic/gin" // Gin web framework
)

// MessageRequest is one support chat line
type MessageRequest struct {
	Text string `json:"text" binding:"required"` // Message body
}

// threadHandler returns the thread of the user chosen by owner
func threadHandler(svc *ledger.Service, owner func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := owner(c)
		msgs, err := svc.Thread(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		resp := gin.H{"messages": msgs}
		// Admins also see whether the user is typing
		if c.GetString(middleware.UserIDKey) != userID {
			if u, err := svc.User(c.Request.Context(), userID); err == nil {
				resp["lastTyping"] = u.LastTyping
				resp["lastActive"] = u.LastActive
			}
		}
		c.JSON(http.StatusOK, resp)
	}
}

// sendHandler appends a message to the thread of the user chosen by owner
func sendHandler(svc *ledger.Service, sender string, owner func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req MessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c)
			return
		}
		msg, err := svc.SendMessage(c.Request.Context(), owner(c), sender, req.Text)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": msg})
	}
}

func self(c *gin.Context) string { return middleware.UserID(c) }

func pathUser(c *gin.Context) string { return c.Param("userId") }

// SupportThreadHandler returns the caller's support thread
func SupportThreadHandler(svc *ledger.Service) gin.HandlerFunc {
	return threadHandler(svc, self)
}

// SupportSendHandler sends a message to support
func SupportSendHandler(svc *ledger.Service) gin.HandlerFunc {
	return sendHandler(svc, domain.SenderUser, self)
}

// TypingHandler records that the caller is typing
func TypingHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Typing(c.Request.Context(), middleware.UserID(c)); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// AdminThreadHandler returns the support thread of the user in the path
func AdminThreadHandler(svc *ledger.Service) gin.HandlerFunc {
	return threadHandler(svc, pathUser)
}

// AdminReplyHandler answers the user in the path
func AdminReplyHandler(svc *ledger.Service) gin.HandlerFunc {
	return sendHandler(svc, domain.SenderAdmin, pathUser)
}
