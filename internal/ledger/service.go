// Package ledger implements the wallet ledger: every balance movement, the approval workflow
// for deposits and withdrawals, plan claims, casino bets and the admin adjustments.
package ledger

import (
	"context" // Cancellation of store transactions
	"errors"  // Conflict detection
	"time"    // Clock

	"yield_wallet/internal/catalog" // Purchasable plans
	"yield_wallet/internal/domain"  // Models
	"yield_wallet/internal/metrics" // Prometheus collectors
	"yield_wallet/internal/store"   // Persistence contract
	"yield_wallet/internal/utils"   // Money helpers and ids

	"github.com/sirupsen/logrus" // Logging library
)

// maxAttempts bounds the retries of a transaction that lost a version race
const maxAttempts = 3

// Options are the tunable amounts of the ledger
type Options struct {
	SignupBonus    float64 // Credited once at registration, 0 disables it
	ReferralReward float64 // Credited to the referrer of a new user
	MinDeposit     float64 // Smallest accepted deposit
	MinWithdrawal  float64 // Smallest accepted withdrawal
}

// Service runs ledger operations against a store
type Service struct {
	store   store.Store
	catalog *catalog.Catalog
	opts    Options
	now     func() time.Time
	codes   func() (string, error) // Referral code generator
}

// NewService creates a ledger service
func NewService(st store.Store, cat *catalog.Catalog, opts Options) *Service {
	return &Service{
		store:   st,
		catalog: cat,
		opts:    opts,
		now:     func() time.Time { return time.Now().UTC() },
		codes:   utils.NewReferralCode,
	}
}

// SetClock replaces the time source
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Store exposes the underlying store for read-only handlers
func (s *Service) Store() store.Store {
	return s.store
}

// Catalog returns the plan catalog
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// update runs fn in a transaction and retries it when another writer saved the user first
func (s *Service) update(ctx context.Context, op string, fn func(tx store.Tx) error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = s.store.InTx(ctx, fn)
		if !errors.Is(err, store.ErrConflict) {
			break
		}
		logrus.WithFields(logrus.Fields{
			"operation": op,      // Ledger operation
			"attempt":   attempt, // Attempt that lost the race
		}).Warn("Version conflict, retrying")
	}
	metrics.RecordOperation(op, err)
	return err
}

// lockActive loads a user for mutation, refusing deleted accounts
func lockActive(tx store.Tx, userID string) (*domain.User, error) {
	u, err := tx.LockUser(userID)
	if err != nil {
		return nil, orNotFound(err, ErrUserNotFound)
	}
	if u.IsDeleted {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// move applies a signed delta to the wallet and records it on the history trail.
// The caller saves the user.
func (s *Service) move(tx store.Tx, u *domain.User, delta float64, entryType, desc, ref string) error {
	wallet := utils.AddMoney(u.Wallet, delta)
	if wallet > utils.MaxBalance {
		return ErrBalanceLimit
	}
	u.Wallet = wallet
	e := &domain.Entry{
		ID:           utils.NewID(),
		UserID:       u.ID,
		Trail:        domain.TrailHistory,
		Type:         entryType,
		Amount:       utils.Round2(delta),
		BalanceAfter: u.Wallet,
		Description:  desc,
		Reference:    ref,
		CreatedAt:    s.now(),
	}
	if err := tx.AppendEntry(e); err != nil {
		return err
	}
	metrics.RecordMovement(entryType, delta)
	return nil
}

// notify appends a notification for the user
func (s *Service) notify(tx store.Tx, userID, kind, msg string) error {
	return tx.AppendNotification(&domain.Notification{
		ID:        utils.NewID(),
		UserID:    userID,
		Kind:      kind,
		Message:   msg,
		CreatedAt: s.now(),
	})
}

// validAmount rejects non-positive or oversized amounts and fractions of a cent
func validAmount(v float64) bool {
	return v > 0 && v <= utils.MaxAmount && !utils.HasCents(v)
}
