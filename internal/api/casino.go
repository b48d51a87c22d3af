package api

import (
	"net/http" // HTTP status codes

	"yield_wallet/internal/ledger"     // Ledger service
	"yield_wallet/internal/middleware" // Authenticated user

	"github.com/gin-gonic/gin" // Gin web framework
)

// BetRequest places a prediction bet
type BetRequest struct {
	GameID string  `json:"gameId" binding:"required,max=32"`              // Game
	Amount float64 `json:"amount" binding:"required,gt=0,lte=1000000000"` // Stake
	Choice string  `json:"choice" binding:"required,max=64"`              // Predicted outcome
}

// PlaceBetHandler debits the stake and records the bet
func PlaceBetHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BetRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c)
			return
		}
		userID := middleware.UserID(c)
		bet, user, err := svc.PlaceBet(c.Request.Context(), userID, req.GameID, req.Amount, req.Choice)
		if err != nil {
			respondError(c, err)
			return
		}
		invalidate(c, userID)
		c.JSON(http.StatusCreated, gin.H{"bet": bet, "user": user})
	}
}

// MyBetsHandler lists the caller's bets
func MyBetsHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		bets, err := svc.Bets(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"bets": bets})
	}
}

// Admin casino actions
const (
	casinoActiveBets = "get_active_bets"
	casinoResolveBet = "resolve_bet"
)

// AdminCasinoRequest is the body of the admin casino endpoint
type AdminCasinoRequest struct {
	Action    string  `json:"action" binding:"required"` // get_active_bets or resolve_bet
	BetID     string  `json:"betId"`                     // Bet to resolve
	Status    string  `json:"status"`                    // Win or Loss
	WinAmount float64 `json:"winAmount"`                 // Payout on Win
}

// AdminCasinoHandler lists pending bets or resolves one
func AdminCasinoHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AdminCasinoRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c)
			return
		}
		ctx := c.Request.Context()
		switch req.Action {
		case casinoActiveBets:
			bets, err := svc.ActiveBets(ctx)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"bets": bets})
		case casinoResolveBet:
			if req.BetID == "" {
				badRequest(c)
				return
			}
			bet, err := svc.ResolveBet(ctx, req.BetID, req.Status, req.WinAmount)
			if err != nil {
				respondError(c, err)
				return
			}
			invalidate(c, bet.UserID)
			c.JSON(http.StatusOK, gin.H{"bet": bet})
		default:
			respondError(c, ledger.ErrInvalidAction)
		}
	}
}
