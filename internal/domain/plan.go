package domain

import "time"

// Plan statuses
const (
	PlanActive    = "Active"    // Still accruing daily returns
	PlanCompleted = "Completed" // All days claimed
)

// ClaimInterval is the fixed step between two claims of the same plan
const ClaimInterval = 24 * time.Hour

// Plan Model, a purchased yield product
type Plan struct {
	ID               string    `gorm:"primaryKey;type:varchar(36)" json:"id"`                                   // Plan ID
	UserID           string    `gorm:"type:varchar(36);uniqueIndex:idx_plan_user_index;not null" json:"userId"` // Owner
	Index            int       `gorm:"column:plan_index;uniqueIndex:idx_plan_user_index;not null" json:"index"` // Position among the user's plans
	Code             string    `gorm:"type:varchar(32);not null" json:"code"`                                   // Catalog code
	Name             string    `gorm:"type:varchar(100)" json:"name"`                                           // Catalog name at purchase time
	Amount           float64   `gorm:"type:decimal(15,2);not null" json:"amount"`                               // Price paid
	DailyReturn      float64   `gorm:"type:decimal(15,2);not null" json:"dailyReturn"`                          // Credited on each claim
	BonusPerDay      float64   `gorm:"type:decimal(15,2);default:0" json:"bonusPerDay"`                         // Extra credit while bonus days remain
	TotalBonusDays   int       `gorm:"default:0" json:"totalBonusDays"`                                         // Number of claims that carry the bonus
	BonusDaysClaimed int       `gorm:"default:0" json:"bonusDaysClaimed"`                                       // Bonus claims so far
	DurationDays     int       `gorm:"not null" json:"durationDays"`                                            // Total number of claims
	DaysClaimed      int       `gorm:"default:0" json:"daysClaimed"`                                            // Claims so far
	Status           string    `gorm:"type:varchar(16);not null" json:"status"`                                 // Active or Completed
	NextClaimAt      time.Time `json:"nextClaimAt"`                                                             // Earliest time of the next claim
	CreatedAt        time.Time `json:"createdAt"`                                                               // Purchase time
}

// ClaimAmount is what the next claim credits
func (p *Plan) ClaimAmount() (amount float64, withBonus bool) {
	if p.BonusDaysClaimed < p.TotalBonusDays {
		return p.DailyReturn + p.BonusPerDay, true
	}
	return p.DailyReturn, false
}
