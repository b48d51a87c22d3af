// Package store defines the persistence contract shared by the MySQL and JSON-file backends.
package store

import (
	"context"
	"errors"

	"yield_wallet/internal/domain"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	ErrConflict  = errors.New("version conflict")
)

// Filter narrows list queries. Zero values match everything.
type Filter struct {
	UserID   string // Owner of the records
	Status   string // Record status
	Trail    string // Entry trail (history or wallet)
	Search   string // Email/name substring, users only
	Page     int    // 1-based page, 0 means no paging
	PageSize int    // Page size when Page > 0
}

// Offset returns the row offset for the filter's page
func (f Filter) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// Tx is a unit of work. Everything done through a Tx is committed together or not at all.
type Tx interface {
	// LockUser loads a user and holds it until the transaction ends.
	LockUser(id string) (*domain.User, error)
	CreateUser(u *domain.User) error
	// SaveUser writes u if the stored version still equals u.Version, then bumps u.Version.
	SaveUser(u *domain.User) error
	DeleteUser(id string) error
	FindUserByEmail(email string) (*domain.User, error)
	FindUserByReferralCode(code string) (*domain.User, error)

	IsBlacklisted(values ...string) (bool, error)
	AddBlacklist(entries ...domain.BlacklistEntry) error

	CreateDeposit(d *domain.Deposit) error
	GetDeposit(userID, id string) (*domain.Deposit, error)
	SaveDeposit(d *domain.Deposit) error
	HasDepositUTR(userID, utr string) (bool, error)

	CreateWithdrawal(w *domain.Withdrawal) error
	GetWithdrawal(userID, id string) (*domain.Withdrawal, error)
	SaveWithdrawal(w *domain.Withdrawal) error

	CreatePlan(p *domain.Plan) error
	GetPlanByIndex(userID string, index int) (*domain.Plan, error)
	CountPlans(userID string) (int, error)
	SavePlan(p *domain.Plan) error

	CreateBet(b *domain.Bet) error
	GetBet(id string) (*domain.Bet, error)
	SaveBet(b *domain.Bet) error

	AppendEntry(e *domain.Entry) error
	// HistoryAmounts returns the deltas of every history entry of a user.
	HistoryAmounts(userID string) ([]float64, error)
	AppendMessage(m *domain.Message) error
	AppendNotification(n *domain.Notification) error
}

// Store is the user record store
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error

	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	ListUsers(ctx context.Context, f Filter) ([]domain.User, int64, error)
	// ScanUsers returns up to limit users with an ID greater than afterID, in ID order.
	ScanUsers(ctx context.Context, afterID string, limit int) ([]domain.User, error)
	// TouchUser updates only the activity timestamps that are set, leaving the version alone.
	TouchUser(ctx context.Context, id string, a domain.Activity) error

	ListDeposits(ctx context.Context, f Filter) ([]domain.Deposit, error)
	ListWithdrawals(ctx context.Context, f Filter) ([]domain.Withdrawal, error)
	ListPlans(ctx context.Context, f Filter) ([]domain.Plan, error)
	ListBets(ctx context.Context, f Filter) ([]domain.Bet, error)
	ListEntries(ctx context.Context, f Filter) ([]domain.Entry, error)
	ListMessages(ctx context.Context, f Filter) ([]domain.Message, error)
	ListNotifications(ctx context.Context, f Filter) ([]domain.Notification, error)
	MarkNotificationsRead(ctx context.Context, userID string) error

	Ping(ctx context.Context) error
	Close() error
}
