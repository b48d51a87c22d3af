package domain

import "time"

// Roles
const (
	RoleUser  = "user"  // Regular investor
	RoleAdmin = "admin" // Operator with access to the admin routes
)

// User Model
type User struct {
	ID              string     `gorm:"primaryKey;type:varchar(36)" json:"id"`               // Random token (uuid)
	Email           string     `gorm:"type:varchar(191);uniqueIndex;not null" json:"email"` // Lower-cased email
	Phone           string     `gorm:"type:varchar(32);index" json:"phone,omitempty"`       // Optional phone number
	Name            string     `gorm:"type:varchar(100)" json:"name"`                       // Display name
	Password        string     `gorm:"not null" json:"-"`                                   // Bcrypt hash
	Role            string     `gorm:"type:varchar(16);default:user" json:"role"`           // Role: user or admin
	Wallet          float64    `gorm:"type:decimal(15,2);not null;default:0" json:"wallet"` // Spendable balance
	Version         int64      `gorm:"not null;default:0" json:"version"`                   // Optimistic concurrency counter
	ReferralCode    string     `gorm:"type:varchar(16);uniqueIndex" json:"referralCode"`    // Code handed out to invitees
	ReferredBy      string     `gorm:"type:varchar(36);index" json:"referredBy,omitempty"`  // Referrer user ID
	ReferralRewards float64    `gorm:"type:decimal(15,2);default:0" json:"referralRewards"` // Total referral commission earned
	IsBlocked       bool       `gorm:"default:false" json:"isBlocked"`                      // Blocked by an admin
	IsDeleted       bool       `gorm:"default:false" json:"isDeleted"`                      // Soft-deleted marker
	BonusClaimed    bool       `gorm:"default:false" json:"bonusClaimed"`                   // Signup bonus credited
	CreatedAt       time.Time  `json:"createdAt"`                                           // Registration time
	LastLogin       *time.Time `json:"lastLogin,omitempty"`                                 // Last successful login
	LastActive      *time.Time `json:"lastActive,omitempty"`                                // Last authenticated request
	LastTyping      *time.Time `json:"lastTyping,omitempty"`                                // Last typing ping in support chat
}

// IsAdmin reports whether the user may use the admin routes
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Activity holds the per-field timestamps that are updated outside of ledger transactions
type Activity struct {
	LastLogin  *time.Time // Set on login
	LastActive *time.Time // Set on authenticated requests
	LastTyping *time.Time // Set by the support chat typing indicator
}

// Blacklist kinds
const (
	BlacklistEmail = "email"
	BlacklistPhone = "phone"
)

// BlacklistEntry blocks an email or phone from registering again
type BlacklistEntry struct {
	Value     string    `gorm:"primaryKey;type:varchar(191)" json:"value"` // Email or phone
	Kind      string    `gorm:"type:varchar(16)" json:"kind"`              // email or phone
	Reason    string    `json:"reason"`                                    // Why it was blacklisted
	CreatedAt time.Time `json:"createdAt"`                                 // When it was added
}
