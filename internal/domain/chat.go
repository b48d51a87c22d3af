package domain

import "time"

// Message senders
const (
	SenderUser  = "user"
	SenderAdmin = "admin"
)

// Message Model, one support chat line
type Message struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`         // Message ID
	UserID    string    `gorm:"type:varchar(36);index;not null" json:"userId"` // Thread owner
	Sender    string    `gorm:"type:varchar(16);not null" json:"sender"`       // user or admin
	Text      string    `gorm:"type:text;not null" json:"text"`                // Message body
	CreatedAt time.Time `json:"date"`                                          // Send time
}

// Notification kinds
const (
	NotifyDeposit    = "deposit"
	NotifyWithdrawal = "withdrawal"
	NotifyBonus      = "bonus"
	NotifyReferral   = "referral"
	NotifyWallet     = "wallet"
	NotifyBet        = "bet"
	NotifySupport    = "support"
)

// Notification Model, an event shown to the user
type Notification struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`         // Notification ID
	UserID    string    `gorm:"type:varchar(36);index;not null" json:"userId"` // Recipient
	Kind      string    `gorm:"type:varchar(16);not null" json:"kind"`         // Event category
	Message   string    `gorm:"type:text" json:"message"`                      // Text shown to the user
	Read      bool      `gorm:"column:is_read;default:false" json:"read"`      // Seen by the user
	CreatedAt time.Time `json:"date"`                                          // Event time
}
