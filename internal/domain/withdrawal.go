package domain

import "time"

// Withdrawal statuses
const (
	WithdrawalPending   = "Pending"   // Debited, waiting for payout
	WithdrawalCompleted = "Completed" // Paid out
	WithdrawalFailed    = "Failed"    // Rejected and refunded
)

// BankDetails is the payout destination of a withdrawal
type BankDetails struct {
	AccountHolder string `json:"accountHolder,omitempty"` // Name on the account
	AccountNumber string `json:"accountNumber,omitempty"` // Bank account number
	IFSC          string `json:"ifsc,omitempty"`          // Branch code
	BankName      string `json:"bankName,omitempty"`      // Bank name
	UPIID         string `json:"upiId,omitempty"`         // UPI handle, alternative to a bank account
}

// IsEmpty reports whether no payout destination was given
func (b BankDetails) IsEmpty() bool {
	return b.UPIID == "" && b.AccountNumber == ""
}

// Withdrawal Model
type Withdrawal struct {
	ID            string      `gorm:"primaryKey;type:varchar(36)" json:"id"`            // Withdrawal ID
	UserID        string      `gorm:"type:varchar(36);index;not null" json:"userId"`    // Owner
	Amount        float64     `gorm:"type:decimal(15,2);not null" json:"amount"`        // Amount to pay out
	DebitedAmount float64     `gorm:"type:decimal(15,2);not null" json:"debitedAmount"` // Amount taken from the wallet at request time
	BankDetails   BankDetails `gorm:"serializer:json;type:text" json:"bankDetails"`     // Payout destination
	Status        string      `gorm:"type:varchar(16);index;not null" json:"status"`    // Pending, Completed or Failed
	CreatedAt     time.Time   `json:"date"`                                             // Request time
	ResolvedAt    *time.Time  `json:"resolvedAt,omitempty"`                             // Payout or rejection time
}

// IsFinal reports whether the withdrawal can no longer change state
func (w *Withdrawal) IsFinal() bool {
	return w.Status != WithdrawalPending
}
