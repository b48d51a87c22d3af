package api

import (
	"fmt"      // Cache keys
	"net/http" // HTTP status codes
	"time"     // Cache TTL

	"yield_wallet/internal/domain"     // Models
	"yield_wallet/internal/ledger"     // Ledger service
	"yield_wallet/internal/middleware" // Authenticated admin
	"yield_wallet/internal/utils"      // Cache helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// Admin decisions
const (
	actionApprove = "approve"
	actionReject  = "reject"
)

// ActionRequest approves or rejects a deposit or withdrawal
type ActionRequest struct {
	UserID        string   `json:"userId" binding:"required"`                      // Owner of the transaction
	TransactionID string   `json:"transactionId" binding:"required"`               // Deposit or withdrawal ID
	Type          string   `json:"type" binding:"required,oneof=deposit withdraw"` // deposit or withdraw
	Action        string   `json:"action" binding:"required,oneof=approve reject"` // approve or reject
	Amount        *float64 `json:"amount" binding:"omitempty,gt=0,lte=1000000000"` // Deposit amount override
}

// ActionHandler resolves a pending deposit or withdrawal
func ActionHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ActionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c)
			return
		}
		user, err := svc.ResolveTransaction(c.Request.Context(), req.UserID, req.TransactionID, req.Type,
			req.Action == actionApprove, req.Amount)
		if err != nil {
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"admin_id":       middleware.UserID(c), // Acting admin
			"user_id":        req.UserID,           // Owner
			"transaction_id": req.TransactionID,    // Resolved record
			"action":         req.Action,           // approve or reject
		}).Info("Admin action")
		invalidate(c, req.UserID)
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

// EditWalletRequest adjusts a wallet
type EditWalletRequest struct {
	UserID string  `json:"userId" binding:"required"`                     // Target user
	Amount float64 `json:"amount" binding:"required,gt=0,lte=1000000000"` // Amount to add or deduct
	Type   string  `json:"type" binding:"required,oneof=add deduct"`      // Direction
	Reason string  `json:"reason" binding:"max=200"`                      // Shown in the wallet history
}

// EditWalletHandler adds to or deducts from a user's wallet
func EditWalletHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req EditWalletRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c)
			return
		}
		user, err := svc.AdjustWallet(c.Request.Context(), middleware.UserID(c), req.UserID, req.Amount, req.Type, req.Reason)
		if err != nil {
			respondError(c, err)
			return
		}
		invalidate(c, req.UserID)
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

// EditTransactionRequest changes the amount of a pending transaction
type EditTransactionRequest struct {
	UserID        string  `json:"userId" binding:"required"`                      // Owner
	TransactionID string  `json:"transactionId" binding:"required"`               // Deposit or withdrawal ID
	Type          string  `json:"type" binding:"required,oneof=deposit withdraw"` // deposit or withdraw
	Amount        float64 `json:"amount" binding:"required,gt=0,lte=1000000000"`  // New amount
}

// EditTransactionHandler edits a pending deposit or withdrawal
func EditTransactionHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req EditTransactionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c)
			return
		}
		if err := svc.EditTransaction(c.Request.Context(), req.UserID, req.TransactionID, req.Type, req.Amount); err != nil {
			respondError(c, err)
			return
		}
		invalidate(c, req.UserID)
		c.JSON(http.StatusOK, gin.H{"message": "Transaction updated"})
	}
}

// BlockRequest blocks or unblocks a user
type BlockRequest struct {
	UserID  string `json:"userId" binding:"required"` // Target user
	Blocked bool   `json:"blocked"`                   // New state
}

// BlockHandler changes a user's blocked state
func BlockHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BlockRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c)
			return
		}
		user, err := svc.SetBlocked(c.Request.Context(), req.UserID, req.Blocked)
		if err != nil {
			respondError(c, err)
			return
		}
		invalidate(c, req.UserID)
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

// DeleteUserRequest names the user to delete
type DeleteUserRequest struct {
	UserID string `json:"userId" binding:"required"` // Target user
}

// DeleteUserHandler deletes a user and blacklists its email and phone
func DeleteUserHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req DeleteUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c)
			return
		}
		if err := svc.DeleteUser(c.Request.Context(), req.UserID); err != nil {
			respondError(c, err)
			return
		}
		invalidate(c, req.UserID)
		c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
	}
}

// UserListResponse is one page of the admin user list
type UserListResponse struct {
	Users      []domain.User `json:"users"`       // List of users
	Page       int           `json:"page"`        // Current page
	PageSize   int           `json:"page_size"`   // Page size
	Total      int64         `json:"total"`       // Total number of users
	TotalPages int           `json:"total_pages"` // Total pages
	Cached     bool          `json:"cached"`      // Served from Redis
}

// ListUsersHandler returns one page of users
func ListUsersHandler(svc *ledger.Service, rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		page, pageSize := pagination(c)
		search := c.Query("search")
		// Create a cache key based on pagination parameters
		cacheKey := fmt.Sprintf("%spage=%d:size=%d:q=%s", utils.AdminUsersCachePrefix, page, pageSize, search)
		var resp UserListResponse
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &resp); err == nil && found {
			resp.Cached = true // Indicate response is from cache
			c.JSON(http.StatusOK, resp)
			return
		}
		users, total, err := svc.Users(ctx, search, page, pageSize)
		if err != nil {
			respondError(c, err)
			return
		}
		if users == nil {
			users = []domain.User{}
		}
		resp = UserListResponse{
			Users:      users,
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: (int(total) + pageSize - 1) / pageSize, // Calculate total pages
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, ttl) // Cache the response for future requests
		c.JSON(http.StatusOK, resp)
	}
}

// UserDetailHandler returns a user with all its sub-ledgers
func UserDetailHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		detail, err := svc.UserDetail(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, detail)
	}
}

// ReconcileHandler runs a reconciliation on demand
func ReconcileHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := svc.Reconcile(c.Request.Context())
		if report == nil {
			respondError(c, err)
			return
		}
		resp := gin.H{"report": report}
		if err != nil {
			// Partial report, some users could not be read
			logrus.WithField("error", err.Error()).Error("Reconciliation incomplete")
			resp["error"] = "Some users could not be checked"
		}
		c.JSON(http.StatusOK, resp)
	}
}
