package api

import (
	"net/http" // HTTP status codes
	"time"     // Cache TTL

	"yield_wallet/internal/domain"     // Models
	"yield_wallet/internal/ledger"     // Ledger service
	"yield_wallet/internal/middleware" // Authenticated user
	"yield_wallet/internal/utils"      // Cache helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
)

// MeResponse is the profile returned to the logged in user
type MeResponse struct {
	User   *domain.User  `json:"user"`   // Profile and wallet
	Plans  []domain.Plan `json:"plans"`  // Purchased plans
	Cached bool          `json:"cached"` // Served from Redis
}

// MeHandler returns the caller's profile, wallet and plans
func MeHandler(svc *ledger.Service, rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		userID := middleware.UserID(c)
		cacheKey := utils.UserCacheKey(userID) // Cache key for the user
		var resp MeResponse
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &resp); err == nil && found {
			resp.Cached = true // Indicate response is from cache
			c.JSON(http.StatusOK, resp)
			return
		}
		user, err := svc.User(ctx, userID)
		if err != nil {
			respondError(c, err)
			return
		}
		plans, err := svc.Plans(ctx, userID)
		if err != nil {
			respondError(c, err)
			return
		}
		resp = MeResponse{User: user, Plans: plans}
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, ttl) // Cache the profile
		c.JSON(http.StatusOK, resp)
	}
}

// TransactionsHandler returns one page of each of the caller's sub-ledgers
func TransactionsHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, pageSize := pagination(c)
		txs, err := svc.Transactions(c.Request.Context(), middleware.UserID(c), page, pageSize)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"deposits":      txs.Deposits,    // Deposit requests
			"withdrawals":   txs.Withdrawals, // Withdrawal requests
			"history":       txs.History,     // Every balance movement
			"walletHistory": txs.Wallet,      // Admin adjustments
			"page":          page,            // Current page
			"page_size":     pageSize,        // Page size
		})
	}
}

// DepositRequest represents a deposit request
type DepositRequest struct {
	Amount     float64 `json:"amount" binding:"required,gt=0,lte=1000000000"` // Deposit amount
	Method     string  `json:"method" binding:"required,max=32"`              // Payment method
	Screenshot string  `json:"screenshot"`                                    // Payment proof reference
	UTR        string  `json:"utr" binding:"omitempty,max=64"`                // Bank reference number
}

// DepositHandler records a deposit awaiting admin verification
func DepositHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req DepositRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c)
			return
		}
		userID := middleware.UserID(c)
		dep, user, err := svc.RequestDeposit(c.Request.Context(), userID, ledger.DepositInput{
			Amount:     req.Amount,
			Method:     req.Method,
			Screenshot: req.Screenshot,
			UTR:        req.UTR,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		invalidate(c, userID)
		c.JSON(http.StatusCreated, gin.H{"deposit": dep, "user": user})
	}
}

// WithdrawRequest represents a withdrawal request
type WithdrawRequest struct {
	Amount      float64            `json:"amount" binding:"required,gt=0,lte=1000000000"` // Amount to withdraw
	BankDetails domain.BankDetails `json:"bankDetails"`                                   // Payout destination
}

// WithdrawHandler debits the wallet and records a pending withdrawal
func WithdrawHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req WithdrawRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c)
			return
		}
		userID := middleware.UserID(c)
		wd, user, err := svc.RequestWithdrawal(c.Request.Context(), userID, ledger.WithdrawalInput{
			Amount:      req.Amount,
			BankDetails: req.BankDetails,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		invalidate(c, userID)
		c.JSON(http.StatusCreated, gin.H{"withdrawal": wd, "user": user})
	}
}

// CatalogHandler lists the plans that can be bought
func CatalogHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"plans": svc.Catalog().Active()})
	}
}

// PurchasePlanRequest selects a catalog plan
type PurchasePlanRequest struct {
	PlanCode string `json:"planCode" binding:"required"` // Catalog code
}

// PurchasePlanHandler buys a plan with wallet funds
func PurchasePlanHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PurchasePlanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c)
			return
		}
		userID := middleware.UserID(c)
		plan, user, err := svc.PurchasePlan(c.Request.Context(), userID, req.PlanCode)
		if err != nil {
			respondError(c, err)
			return
		}
		invalidate(c, userID)
		c.JSON(http.StatusCreated, gin.H{"plan": plan, "user": user})
	}
}

// ClaimBonusRequest selects one of the caller's plans
type ClaimBonusRequest struct {
	PlanIndex *int `json:"planIndex" binding:"required"` // Position among the user's plans
}

// ClaimBonusHandler credits the next daily return of a plan
func ClaimBonusHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ClaimBonusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c)
			return
		}
		userID := middleware.UserID(c)
		user, amount, err := svc.ClaimBonus(c.Request.Context(), userID, *req.PlanIndex)
		if err != nil {
			respondError(c, err)
			return
		}
		invalidate(c, userID)
		c.JSON(http.StatusOK, gin.H{"user": user, "amount": amount})
	}
}

// NotificationsHandler lists the caller's notifications
func NotificationsHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, pageSize := pagination(c)
		notes, err := svc.Notifications(c.Request.Context(), middleware.UserID(c), page, pageSize)
		if err != nil {
			respondError(c, err)
			return
		}
		unread := 0
		for _, n := range notes {
			if !n.Read {
				unread++
			}
		}
		c.JSON(http.StatusOK, gin.H{"notifications": notes, "unread": unread})
	}
}

// MarkNotificationsReadHandler flags all of the caller's notifications as read
func MarkNotificationsReadHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.MarkNotificationsRead(c.Request.Context(), middleware.UserID(c)); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Notifications marked as read"})
	}
}
