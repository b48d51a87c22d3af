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

// Transaction types accepted by the admin routes
const (
	TxDeposit  = "deposit"
	TxWithdraw = "withdraw"
)

// WithdrawalInput is a user's payout request
type WithdrawalInput struct {
	Amount      float64
	BankDetails domain.BankDetails
}

// RequestWithdrawal debits the wallet and records a Pending withdrawal
func (s *Service) RequestWithdrawal(ctx context.Context, userID string, in WithdrawalInput) (*domain.Withdrawal, *domain.User, error) {
	if !validAmount(in.Amount) {
		return nil, nil, ErrInvalidAmount
	}
	if in.Amount < s.opts.MinWithdrawal {
		return nil, nil, badRequest(fmt.Sprintf("Minimum withdrawal is %.2f", s.opts.MinWithdrawal))
	}
	bank := trimBank(in.BankDetails)
	if bank.IsEmpty() {
		return nil, nil, ErrBankDetails
	}

	var wd *domain.Withdrawal
	var user *domain.User
	err := s.update(ctx, "request_withdrawal", func(tx store.Tx) error {
		u, err := lockActive(tx, userID)
		if err != nil {
			return err
		}
		if u.IsBlocked {
			return ErrBlocked
		}
		amount := utils.Round2(in.Amount)
		if u.Wallet < amount {
			return ErrInsufficientFunds
		}
		w := &domain.Withdrawal{
			ID:            utils.NewID(),
			UserID:        userID,
			Amount:        amount,
			DebitedAmount: amount,
			BankDetails:   bank,
			Status:        domain.WithdrawalPending,
			CreatedAt:     s.now(),
		}
		if err := tx.CreateWithdrawal(w); err != nil {
			return err
		}
		if err := s.move(tx, u, -amount, domain.EntryWithdrawal, "Withdrawal request", w.ID); err != nil {
			return err
		}
		if err := tx.SaveUser(u); err != nil {
			return err
		}
		wd, user = w, u
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	logrus.WithFields(logrus.Fields{
		"user_id":       userID,      // Requesting user
		"withdrawal_id": wd.ID,       // New withdrawal
		"amount":        wd.Amount,   // Debited amount
		"wallet":        user.Wallet, // Balance after
	}).Info("Withdrawal requested")
	return wd, user, nil
}

// ResolveWithdrawal completes or fails a Pending withdrawal. A failure refunds exactly what
// was debited at request time.
func (s *Service) ResolveWithdrawal(ctx context.Context, userID, withdrawalID string, approve bool) (*domain.User, error) {
	var user *domain.User
	var refunded float64
	err := s.update(ctx, "resolve_withdrawal", func(tx store.Tx) error {
		u, err := lockActive(tx, userID)
		if err != nil {
			return err
		}
		w, err := tx.GetWithdrawal(userID, withdrawalID)
		if err != nil {
			return orNotFound(err, ErrTransactionNotFound)
		}
		if w.IsFinal() {
			return ErrAlreadyProcessed
		}
		now := s.now()
		w.ResolvedAt = &now
		refunded = 0

		if approve {
			w.Status = domain.WithdrawalCompleted
			if err := tx.SaveWithdrawal(w); err != nil {
				return err
			}
			// Zero delta, the money left the wallet at request time
			if err := s.move(tx, u, 0, domain.EntryWithdrawPaid, "Withdrawal paid out", w.ID); err != nil {
				return err
			}
			if err := tx.SaveUser(u); err != nil {
				return err
			}
			user = u
			return s.notify(tx, userID, domain.NotifyWithdrawal,
				fmt.Sprintf("Your withdrawal of %.2f was paid", w.Amount))
		}

		w.Status = domain.WithdrawalFailed
		if err := tx.SaveWithdrawal(w); err != nil {
			return err
		}
		if err := s.move(tx, u, w.DebitedAmount, domain.EntryWithdrawRefund, "Withdrawal rejected, refund", w.ID); err != nil {
			return err
		}
		if err := tx.SaveUser(u); err != nil {
			return err
		}
		refunded, user = w.DebitedAmount, u
		return s.notify(tx, userID, domain.NotifyWithdrawal,
			fmt.Sprintf("Your withdrawal of %.2f was rejected and refunded", w.DebitedAmount))
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"user_id":       userID,       // Owner
		"withdrawal_id": withdrawalID, // Resolved withdrawal
		"approved":      approve,      // Decision
		"refunded":      refunded,     // Amount returned to the wallet
		"wallet":        user.Wallet,  // Balance after
	}).Info("Withdrawal resolved")
	return user, nil
}

// ResolveTransaction dispatches an admin decision to the deposit or withdrawal workflow
func (s *Service) ResolveTransaction(ctx context.Context, userID, txID, txType string, approve bool, override *float64) (*domain.User, error) {
	switch txType {
	case TxDeposit:
		return s.ResolveDeposit(ctx, userID, txID, approve, override)
	case TxWithdraw:
		return s.ResolveWithdrawal(ctx, userID, txID, approve)
	}
	return nil, ErrInvalidAction
}

// EditTransaction changes the amount of a transaction that is still awaiting a decision.
// A withdrawal keeps its original debit, which is what a rejection refunds.
func (s *Service) EditTransaction(ctx context.Context, userID, txID, txType string, amount float64) error {
	if !validAmount(amount) {
		return ErrInvalidAmount
	}
	amount = utils.Round2(amount)
	err := s.update(ctx, "edit_transaction", func(tx store.Tx) error {
		if _, err := lockActive(tx, userID); err != nil {
			return err
		}
		switch txType {
		case TxDeposit:
			d, err := tx.GetDeposit(userID, txID)
			if err != nil {
				return orNotFound(err, ErrTransactionNotFound)
			}
			if d.IsFinal() {
				return ErrAlreadyProcessed
			}
			d.Amount = amount
			return tx.SaveDeposit(d)
		case TxWithdraw:
			w, err := tx.GetWithdrawal(userID, txID)
			if err != nil {
				return orNotFound(err, ErrTransactionNotFound)
			}
			if w.IsFinal() {
				return ErrAlreadyProcessed
			}
			w.Amount = amount
			return tx.SaveWithdrawal(w)
		}
		return ErrInvalidAction
	})
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"user_id":        userID, // Owner
		"transaction_id": txID,   // Edited record
		"type":           txType, // deposit or withdraw
		"amount":         amount, // New amount
	}).Info("Transaction edited")
	return nil
}

func trimBank(b domain.BankDetails) domain.BankDetails {
	return domain.BankDetails{
		AccountHolder: strings.TrimSpace(b.AccountHolder),
		AccountNumber: strings.TrimSpace(b.AccountNumber),
		IFSC:          strings.ToUpper(strings.TrimSpace(b.IFSC)),
		BankName:      strings.TrimSpace(b.BankName),
		UPIID:         strings.TrimSpace(b.UPIID),
	}
}
