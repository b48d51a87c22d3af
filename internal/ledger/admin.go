package ledger

import (
	"context" // Request scoped cancellation
	"fmt"     // Descriptions
	"strings" // Reason trimming

	"yield_wallet/internal/domain" // Models
	"yield_wallet/internal/store"  // Persistence contract
	"yield_wallet/internal/utils"  // Ids and money helpers

	"github.com/sirupsen/logrus" // Logging library
)

// Wallet adjustment directions
const (
	AdjustAdd    = "add"
	AdjustDeduct = "deduct"
)

// AdjustWallet adds to or deducts from a wallet. A deduction never takes the balance below
// zero; the applied delta is recorded on both trails.
func (s *Service) AdjustWallet(ctx context.Context, adminID, userID string, amount float64, direction, reason string) (*domain.User, error) {
	if !validAmount(amount) {
		return nil, ErrInvalidAmount
	}
	if direction != AdjustAdd && direction != AdjustDeduct {
		return nil, ErrInvalidAction
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "Admin adjustment"
	}

	var user *domain.User
	var applied float64
	err := s.update(ctx, "adjust_wallet", func(tx store.Tx) error {
		u, err := lockActive(tx, userID)
		if err != nil {
			return err
		}
		delta := utils.Round2(amount)
		if direction == AdjustDeduct {
			if delta > u.Wallet {
				delta = u.Wallet // Floor at zero
			}
			delta = -delta
		}
		if err := s.move(tx, u, delta, domain.EntryAdjustment, reason, adminID); err != nil {
			return err
		}
		if err := tx.AppendEntry(&domain.Entry{
			ID:           utils.NewID(),
			UserID:       u.ID,
			Trail:        domain.TrailWallet,
			Type:         direction,
			Amount:       delta,
			BalanceAfter: u.Wallet,
			Description:  reason,
			Reference:    adminID,
			CreatedAt:    s.now(),
		}); err != nil {
			return err
		}
		if err := tx.SaveUser(u); err != nil {
			return err
		}
		applied, user = delta, u
		return s.notify(tx, userID, domain.NotifyWallet,
			fmt.Sprintf("Your wallet was adjusted by %.2f: %s", delta, reason))
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"admin_id":  adminID,     // Acting admin
		"user_id":   userID,      // Target user
		"direction": direction,   // add or deduct
		"requested": amount,      // Requested amount
		"applied":   applied,     // Delta actually applied
		"wallet":    user.Wallet, // Balance after
	}).Info("Wallet adjusted")
	return user, nil
}

// SetBlocked blocks or unblocks a user
func (s *Service) SetBlocked(ctx context.Context, userID string, blocked bool) (*domain.User, error) {
	var user *domain.User
	err := s.update(ctx, "set_blocked", func(tx store.Tx) error {
		u, err := lockActive(tx, userID)
		if err != nil {
			return err
		}
		if u.IsAdmin() && blocked {
			return badRequest("Cannot block an admin")
		}
		u.IsBlocked = blocked
		if err := tx.SaveUser(u); err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"user_id": userID,  // Target user
		"blocked": blocked, // New state
	}).Info("User block state changed")
	return user, nil
}

// DeleteUser removes a user with all its records and blacklists its email and phone
func (s *Service) DeleteUser(ctx context.Context, userID string) error {
	var email string
	err := s.update(ctx, "delete_user", func(tx store.Tx) error {
		u, err := lockActive(tx, userID)
		if err != nil {
			return err
		}
		if u.IsAdmin() {
			return badRequest("Cannot delete an admin")
		}
		now := s.now()
		if err := tx.AddBlacklist(
			domain.BlacklistEntry{Value: u.Email, Kind: domain.BlacklistEmail, Reason: "account deleted", CreatedAt: now},
			domain.BlacklistEntry{Value: u.Phone, Kind: domain.BlacklistPhone, Reason: "account deleted", CreatedAt: now},
		); err != nil {
			return err
		}
		email = u.Email
		return tx.DeleteUser(userID)
	})
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"user_id": userID, // Deleted user
		"email":   email,  // Now blacklisted
	}).Info("User deleted")
	return nil
}
