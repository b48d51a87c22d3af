package domain

import "time"

// Deposit statuses
const (
	DepositProcessing = "Processing" // Waiting for manual verification
	DepositApproved   = "Approved"   // Verified and credited
	DepositFailed     = "Failed"     // Rejected, never credited
)

// Deposit Model
type Deposit struct {
	ID              string     `gorm:"primaryKey;type:varchar(36)" json:"id"`              // Deposit ID
	UserID          string     `gorm:"type:varchar(36);index;not null" json:"userId"`      // Owner
	Amount          float64    `gorm:"type:decimal(15,2);not null" json:"amount"`          // Amount credited on approval
	RequestedAmount float64    `gorm:"type:decimal(15,2);not null" json:"requestedAmount"` // Amount the user claimed to pay
	Method          string     `gorm:"type:varchar(32)" json:"method"`                     // Payment method (UPI, bank...)
	Status          string     `gorm:"type:varchar(16);index;not null" json:"status"`      // Processing, Approved or Failed
	Screenshot      string     `gorm:"type:mediumtext" json:"screenshot,omitempty"`        // Payment proof, opaque
	UTR             string     `gorm:"type:varchar(64);index" json:"utr,omitempty"`        // Bank reference number
	CreatedAt       time.Time  `json:"date"`                                               // Submission time
	ResolvedAt      *time.Time `json:"resolvedAt,omitempty"`                               // Approval or rejection time
}

// IsFinal reports whether the deposit can no longer change state
func (d *Deposit) IsFinal() bool {
	return d.Status != DepositProcessing
}
