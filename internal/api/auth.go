package api

import (
	"net/http" // HTTP status codes
	"time"     // Token lifetime

	"yield_wallet/internal/domain" // Models
	"yield_wallet/internal/ledger" // Ledger service
	"yield_wallet/internal/utils"  // JWT and cache helpers

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// RegisterRequest is the signup body
type RegisterRequest struct {
	Email        string `json:"email" binding:"required,email"`           // Login email
	Phone        string `json:"phone" binding:"omitempty,max=20"`         // Optional phone number
	Name         string `json:"name" binding:"required,max=100"`          // Display name
	Password     string `json:"password" binding:"required,min=8,max=64"` // Plain password
	ReferralCode string `json:"referralCode" binding:"omitempty,max=16"`  // Inviter's code
}

// LoginRequest is the login body
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`    // Login email
	Password string `json:"password" binding:"required"` // Plain password
}

// AuthResponse carries a session token and the user it belongs to
type AuthResponse struct {
	Token string       `json:"token"` // JWT token
	User  *domain.User `json:"user"`  // Authenticated user
}

// RegisterHandler creates an account and logs it in
func RegisterHandler(svc *ledger.Service, secret string, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c) // If binding fails, return bad request
			return
		}
		user, err := svc.Register(c.Request.Context(), ledger.RegisterInput{
			Email:        req.Email,
			Phone:        req.Phone,
			Name:         req.Name,
			Password:     req.Password,
			ReferralCode: req.ReferralCode,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		token, err := utils.GenerateJWT(user.ID, user.Role, secret, ttl)
		if err != nil {
			respondError(c, err)
			return
		}
		invalidate(c) // New user shows up in the admin list
		c.JSON(http.StatusCreated, AuthResponse{Token: token, User: user})
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(svc *ledger.Service, secret string, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c)
			return
		}
		user, err := svc.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			logrus.WithField("email", ledger.NormalizeEmail(req.Email)).Info("Login rejected")
			respondError(c, err)
			return
		}
		// Generate JWT token
		token, err := utils.GenerateJWT(user.ID, user.Role, secret, ttl)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, AuthResponse{Token: token, User: user}) // Return the token in the response
	}
}
