package ledger

import (
	"context" // Request scoped cancellation
	"fmt"     // Messages
	"strings" // Input trimming

	"yield_wallet/internal/domain" // Models
	"yield_wallet/internal/store"  // Persistence contract
	"yield_wallet/internal/utils"  // Ids and money helpers

	"github.com/sirupsen/logrus" // Logging library
)

// DepositInput is a user's deposit request
type DepositInput struct {
	Amount     float64
	Method     string
	Screenshot string // Opaque reference, uploads are handled elsewhere
	UTR        string // Bank transfer reference
}

// RequestDeposit records a deposit awaiting manual verification. The wallet is not touched.
func (s *Service) RequestDeposit(ctx context.Context, userID string, in DepositInput) (*domain.Deposit, *domain.User, error) {
	if !validAmount(in.Amount) {
		return nil, nil, ErrInvalidAmount
	}
	if in.Amount < s.opts.MinDeposit {
		return nil, nil, badRequest(fmt.Sprintf("Minimum deposit is %.2f", s.opts.MinDeposit))
	}
	utr := strings.TrimSpace(in.UTR)

	var dep *domain.Deposit
	var user *domain.User
	err := s.update(ctx, "request_deposit", func(tx store.Tx) error {
		u, err := lockActive(tx, userID)
		if err != nil {
			return err
		}
		if u.IsBlocked {
			return ErrBlocked
		}
		if utr != "" {
			dup, err := tx.HasDepositUTR(userID, utr)
			if err != nil {
				return err
			}
			if dup {
				return ErrDuplicateUTR
			}
		}
		d := &domain.Deposit{
			ID:              utils.NewID(),
			UserID:          userID,
			Amount:          utils.Round2(in.Amount),
			RequestedAmount: utils.Round2(in.Amount),
			Method:          strings.TrimSpace(in.Method),
			Status:          domain.DepositProcessing,
			Screenshot:      in.Screenshot,
			UTR:             utr,
			CreatedAt:       s.now(),
		}
		if err := tx.CreateDeposit(d); err != nil {
			return err
		}
		dep, user = d, u
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	logrus.WithFields(logrus.Fields{
		"user_id":    userID,     // Depositor
		"deposit_id": dep.ID,     // New deposit
		"amount":     dep.Amount, // Requested amount
		"method":     dep.Method, // Payment method
	}).Info("Deposit requested")
	return dep, user, nil
}

// ResolveDeposit approves or rejects a Processing deposit. An approval credits the wallet
// with the deposit amount, or with override when given.
func (s *Service) ResolveDeposit(ctx context.Context, userID, depositID string, approve bool, override *float64) (*domain.User, error) {
	if override != nil && !validAmount(*override) {
		return nil, ErrInvalidAmount
	}
	var user *domain.User
	var credited float64
	err := s.update(ctx, "resolve_deposit", func(tx store.Tx) error {
		u, err := lockActive(tx, userID)
		if err != nil {
			return err
		}
		d, err := tx.GetDeposit(userID, depositID)
		if err != nil {
			return orNotFound(err, ErrTransactionNotFound)
		}
		if d.IsFinal() {
			return ErrAlreadyProcessed
		}
		now := s.now()
		d.ResolvedAt = &now
		credited = 0
		if !approve {
			d.Status = domain.DepositFailed
			if err := tx.SaveDeposit(d); err != nil {
				return err
			}
			user = u
			return s.notify(tx, userID, domain.NotifyDeposit,
				fmt.Sprintf("Your deposit of %.2f was rejected", d.Amount))
		}

		if override != nil {
			d.Amount = utils.Round2(*override)
		}
		d.Status = domain.DepositApproved
		if err := tx.SaveDeposit(d); err != nil {
			return err
		}
		if err := s.move(tx, u, d.Amount, domain.EntryDeposit, "Deposit via "+d.Method, d.ID); err != nil {
			return err
		}
		if err := tx.SaveUser(u); err != nil {
			return err
		}
		credited, user = d.Amount, u
		return s.notify(tx, userID, domain.NotifyDeposit,
			fmt.Sprintf("Your deposit of %.2f was approved", d.Amount))
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"user_id":    userID,      // Depositor
		"deposit_id": depositID,   // Resolved deposit
		"approved":   approve,     // Decision
		"credited":   credited,    // Amount credited
		"wallet":     user.Wallet, // Balance after
	}).Info("Deposit resolved")
	return user, nil
}
