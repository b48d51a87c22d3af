package gormstore

import (
	"yield_wallet/internal/domain"
	"yield_wallet/internal/store"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormTx runs every call on the surrounding *gorm.DB transaction
type gormTx struct {
	db *gorm.DB
}

// LockUser reads the user row with SELECT ... FOR UPDATE
func (tx *gormTx) LockUser(id string) (*domain.User, error) {
	var u domain.User
	if err := tx.db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (tx *gormTx) CreateUser(u *domain.User) error {
	return translate(tx.db.Create(u).Error)
}

// SaveUser writes every mutable column, conditioned on the version read earlier
func (tx *gormTx) SaveUser(u *domain.User) error {
	res := tx.db.Model(&domain.User{}).
		Where("id = ? AND version = ?", u.ID, u.Version).
		Updates(map[string]any{
			"email":            u.Email,
			"phone":            u.Phone,
			"name":             u.Name,
			"password":         u.Password,
			"role":             u.Role,
			"wallet":           u.Wallet,
			"referral_code":    u.ReferralCode,
			"referred_by":      u.ReferredBy,
			"referral_rewards": u.ReferralRewards,
			"is_blocked":       u.IsBlocked,
			"is_deleted":       u.IsDeleted,
			"bonus_claimed":    u.BonusClaimed,
			"version":          u.Version + 1,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrConflict
	}
	u.Version++
	return nil
}

// DeleteUser removes the user and every record it owns
func (tx *gormTx) DeleteUser(id string) error {
	for _, model := range []any{
		&domain.Deposit{}, &domain.Withdrawal{}, &domain.Plan{}, &domain.Bet{},
		&domain.Entry{}, &domain.Message{}, &domain.Notification{},
	} {
		if err := tx.db.Where("user_id = ?", id).Delete(model).Error; err != nil {
			return translate(err)
		}
	}
	res := tx.db.Where("id = ?", id).Delete(&domain.User{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (tx *gormTx) FindUserByEmail(email string) (*domain.User, error) {
	var u domain.User
	if err := tx.db.Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (tx *gormTx) FindUserByReferralCode(code string) (*domain.User, error) {
	var u domain.User
	if err := tx.db.Where("referral_code = ?", code).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (tx *gormTx) IsBlacklisted(values ...string) (bool, error) {
	var nonEmpty []string
	for _, v := range values {
		if v != "" {
			nonEmpty = append(nonEmpty, v)
		}
	}
	if len(nonEmpty) == 0 {
		return false, nil
	}
	var count int64
	if err := tx.db.Model(&domain.BlacklistEntry{}).Where("value IN ?", nonEmpty).Count(&count).Error; err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

// AddBlacklist inserts the entries, ignoring values that are already listed
func (tx *gormTx) AddBlacklist(entries ...domain.BlacklistEntry) error {
	var rows []domain.BlacklistEntry
	for _, e := range entries {
		if e.Value != "" {
			rows = append(rows, e)
		}
	}
	if len(rows) == 0 {
		return nil
	}
	return translate(tx.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error)
}

func (tx *gormTx) CreateDeposit(d *domain.Deposit) error {
	return translate(tx.db.Create(d).Error)
}

// GetDeposit locks the deposit row for the rest of the transaction
func (tx *gormTx) GetDeposit(userID, id string) (*domain.Deposit, error) {
	var d domain.Deposit
	if err := tx.db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ? AND user_id = ?", id, userID).First(&d).Error; err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (tx *gormTx) SaveDeposit(d *domain.Deposit) error {
	return translate(tx.db.Save(d).Error)
}

func (tx *gormTx) HasDepositUTR(userID, utr string) (bool, error) {
	var count int64
	if err := tx.db.Model(&domain.Deposit{}).Where("user_id = ? AND utr = ?", userID, utr).Count(&count).Error; err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

func (tx *gormTx) CreateWithdrawal(w *domain.Withdrawal) error {
	return translate(tx.db.Create(w).Error)
}

// GetWithdrawal locks the withdrawal row for the rest of the transaction
func (tx *gormTx) GetWithdrawal(userID, id string) (*domain.Withdrawal, error) {
	var w domain.Withdrawal
	if err := tx.db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ? AND user_id = ?", id, userID).First(&w).Error; err != nil {
		return nil, translate(err)
	}
	return &w, nil
}

func (tx *gormTx) SaveWithdrawal(w *domain.Withdrawal) error {
	return translate(tx.db.Save(w).Error)
}

func (tx *gormTx) CreatePlan(p *domain.Plan) error {
	return translate(tx.db.Create(p).Error)
}

func (tx *gormTx) GetPlanByIndex(userID string, index int) (*domain.Plan, error) {
	var p domain.Plan
	if err := tx.db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ? AND plan_index = ?", userID, index).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (tx *gormTx) CountPlans(userID string) (int, error) {
	var count int64
	if err := tx.db.Model(&domain.Plan{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, translate(err)
	}
	return int(count), nil
}

func (tx *gormTx) SavePlan(p *domain.Plan) error {
	return translate(tx.db.Save(p).Error)
}

func (tx *gormTx) CreateBet(b *domain.Bet) error {
	return translate(tx.db.Create(b).Error)
}

// GetBet locks the bet row so two resolutions cannot both pass the status check
func (tx *gormTx) GetBet(id string) (*domain.Bet, error) {
	var b domain.Bet
	if err := tx.db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&b).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (tx *gormTx) SaveBet(b *domain.Bet) error {
	return translate(tx.db.Save(b).Error)
}

func (tx *gormTx) AppendEntry(e *domain.Entry) error {
	return translate(tx.db.Create(e).Error)
}

// HistoryAmounts reads the history deltas of a user inside the transaction
func (tx *gormTx) HistoryAmounts(userID string) ([]float64, error) {
	var amounts []float64
	err := tx.db.Model(&domain.Entry{}).Where("user_id = ? AND trail = ?", userID, domain.TrailHistory).Pluck("amount", &amounts).Error
	return amounts, translate(err)
}

func (tx *gormTx) AppendMessage(m *domain.Message) error {
	return translate(tx.db.Create(m).Error)
}

func (tx *gormTx) AppendNotification(n *domain.Notification) error {
	return translate(tx.db.Create(n).Error)
}
