package ledger

import (
	"context" // Request scoped cancellation
	"errors"  // Sentinel checks
	"fmt"     // Error wrapping
	"time"    // Run timestamp

	"yield_wallet/internal/domain"  // Models
	"yield_wallet/internal/metrics" // Prometheus collectors
	"yield_wallet/internal/store"   // Persistence contract
	"yield_wallet/internal/utils"   // Money helpers

	"github.com/hashicorp/go-multierror" // Per-user error aggregation
	"github.com/sirupsen/logrus"         // Logging library
)

const reconcilePageSize = 200

// Mismatch is a user whose wallet differs from the sum of its history
type Mismatch struct {
	UserID       string  `json:"userId"`
	Email        string  `json:"email"`
	Wallet       float64 `json:"wallet"`
	HistoryTotal float64 `json:"historyTotal"`
	Difference   float64 `json:"difference"`
}

// Report is the result of a reconciliation run
type Report struct {
	CheckedUsers int        `json:"checkedUsers"`
	Mismatches   []Mismatch `json:"mismatches"`
	RanAt        time.Time  `json:"ranAt"`
}

// Reconcile checks every wallet against its history trail. Users are walked in ID order so
// concurrent registrations neither hide nor repeat anyone, and a mismatch is confirmed under
// the user lock before it is reported. Users that could not be read are skipped and reported
// through the returned error alongside the partial report.
func (s *Service) Reconcile(ctx context.Context) (*Report, error) {
	report := &Report{RanAt: s.now(), Mismatches: []Mismatch{}}
	var result *multierror.Error
	afterID := ""
	for {
		users, err := s.store.ScanUsers(ctx, afterID, reconcilePageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to list users: %w", err)
		}
		for i := range users {
			m, err := s.reconcileUser(ctx, &users[i])
			if err != nil {
				result = multierror.Append(result, fmt.Errorf("user %s: %w", users[i].ID, err))
				continue
			}
			report.CheckedUsers++
			if m != nil {
				report.Mismatches = append(report.Mismatches, *m)
			}
		}
		if len(users) < reconcilePageSize {
			break
		}
		afterID = users[len(users)-1].ID
	}
	metrics.RecordReconcile(len(report.Mismatches), report.RanAt)

	fields := logrus.Fields{
		"checked":    report.CheckedUsers,    // Users compared
		"mismatches": len(report.Mismatches), // Users out of balance
	}
	if len(report.Mismatches) > 0 {
		logrus.WithFields(fields).Warn("Reconciliation found mismatches")
	} else {
		logrus.WithFields(fields).Info("Reconciliation finished")
	}
	return report, result.ErrorOrNil()
}

// compare returns a mismatch when wallet differs from the sum of deltas
func compare(u *domain.User, deltas []float64) *Mismatch {
	total := utils.SumMoney(deltas...)
	wallet := utils.Round2(u.Wallet)
	if total == wallet {
		return nil
	}
	return &Mismatch{
		UserID:       u.ID,
		Email:        u.Email,
		Wallet:       wallet,
		HistoryTotal: total,
		Difference:   utils.SubMoney(wallet, total),
	}
}

func (s *Service) reconcileUser(ctx context.Context, u *domain.User) (*Mismatch, error) {
	entries, err := s.store.ListEntries(ctx, store.Filter{UserID: u.ID, Trail: domain.TrailHistory})
	if err != nil {
		return nil, err
	}
	deltas := make([]float64, 0, len(entries))
	for _, e := range entries {
		deltas = append(deltas, e.Amount)
	}
	if compare(u, deltas) == nil {
		return nil, nil
	}

	// Unlocked reads can straddle a movement, confirm with the user locked
	var m *Mismatch
	err = s.store.InTx(ctx, func(tx store.Tx) error {
		locked, err := tx.LockUser(u.ID)
		if err != nil {
			return err
		}
		amounts, err := tx.HistoryAmounts(u.ID)
		if err != nil {
			return err
		}
		m = compare(locked, amounts)
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil // Deleted since the scan
	}
	if err != nil || m == nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"user_id":       m.UserID,       // Out of balance user
		"wallet":        m.Wallet,       // Stored balance
		"history_total": m.HistoryTotal, // Sum of history deltas
	}).Warn("Wallet does not match history")
	return m, nil
}
