package domain

import "time"

// Trails
const (
	TrailHistory = "history" // Every balance movement, the basis for reconciliation
	TrailWallet  = "wallet"  // Admin wallet adjustments
)

// Entry types
const (
	EntryDeposit        = "deposit"
	EntryWithdrawal     = "withdrawal"
	EntryWithdrawRefund = "withdrawal_refund"
	EntryWithdrawPaid   = "withdrawal_paid"
	EntryPlanPurchase   = "plan_purchase"
	EntryDailyReturn    = "daily_return"
	EntryReferral       = "referral"
	EntrySignupBonus    = "signup_bonus"
	EntryAdjustment     = "adjustment"
	EntryBet            = "bet"
	EntryBetWin         = "bet_win"
)

// Entry Model, one line of an append-only audit trail
type Entry struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`                              // Entry ID
	UserID       string    `gorm:"type:varchar(36);index:idx_entry_user_trail;not null" json:"userId"` // Owner
	Trail        string    `gorm:"type:varchar(16);index:idx_entry_user_trail;not null" json:"trail"`  // history or wallet
	Type         string    `gorm:"type:varchar(32);not null" json:"type"`                              // What happened
	Amount       float64   `gorm:"type:decimal(15,2);not null" json:"amount"`                          // Signed balance delta
	BalanceAfter float64   `gorm:"type:decimal(15,2);not null" json:"balanceAfter"`                    // Wallet after the movement
	Description  string    `json:"description"`                                                        // Human readable text
	Reference    string    `gorm:"type:varchar(36)" json:"reference,omitempty"`                        // Related record ID
	CreatedAt    time.Time `json:"date"`                                                               // When it happened
}
