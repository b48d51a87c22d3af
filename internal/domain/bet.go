package domain

import "time"

// Bet statuses
const (
	BetPending = "Pending" // Waiting for an admin decision
	BetWin     = "Win"     // Paid out WinAmount
	BetLoss    = "Loss"    // Stake kept
)

// Bet Model
type Bet struct {
	ID         string     `gorm:"primaryKey;type:varchar(36)" json:"id"`         // Bet ID
	UserID     string     `gorm:"type:varchar(36);index;not null" json:"userId"` // Player
	GameID     string     `gorm:"type:varchar(32);not null" json:"gameId"`       // Game the bet belongs to
	Amount     float64    `gorm:"type:decimal(15,2);not null" json:"amount"`     // Stake, debited when placed
	Choice     string     `gorm:"type:varchar(64)" json:"choice"`                // Predicted outcome
	Status     string     `gorm:"type:varchar(16);index;not null" json:"status"` // Pending, Win or Loss
	WinAmount  float64    `gorm:"type:decimal(15,2);default:0" json:"winAmount"` // Payout on Win
	CreatedAt  time.Time  `json:"createdAt"`                                     // Placement time
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`                          // Resolution time
}
