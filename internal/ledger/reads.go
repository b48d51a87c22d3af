package ledger

import (
	"context" // Request scoped cancellation

	"yield_wallet/internal/domain" // Models
	"yield_wallet/internal/store"  // Persistence contract
)

// Transactions groups the sub-ledgers of one user
type Transactions struct {
	Deposits    []domain.Deposit    `json:"deposits"`
	Withdrawals []domain.Withdrawal `json:"withdrawals"`
	History     []domain.Entry      `json:"history"`
	Wallet      []domain.Entry      `json:"walletHistory"`
}

// UserDetail is the admin view of a user
type UserDetail struct {
	User  *domain.User  `json:"user"`
	Plans []domain.Plan `json:"plans"`
	Bets  []domain.Bet  `json:"bets"`
	Transactions
}

// User returns a live user
func (s *Service) User(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, orNotFound(err, ErrUserNotFound)
	}
	if u.IsDeleted {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// Plans lists a user's plans by index
func (s *Service) Plans(ctx context.Context, userID string) ([]domain.Plan, error) {
	return s.store.ListPlans(ctx, store.Filter{UserID: userID})
}

// Bets lists a user's bets, newest first
func (s *Service) Bets(ctx context.Context, userID string) ([]domain.Bet, error) {
	return s.store.ListBets(ctx, store.Filter{UserID: userID})
}

// Transactions returns one page of each sub-ledger of a user
func (s *Service) Transactions(ctx context.Context, userID string, page, pageSize int) (*Transactions, error) {
	f := store.Filter{UserID: userID, Page: page, PageSize: pageSize}
	var out Transactions
	var err error
	if out.Deposits, err = s.store.ListDeposits(ctx, f); err != nil {
		return nil, err
	}
	if out.Withdrawals, err = s.store.ListWithdrawals(ctx, f); err != nil {
		return nil, err
	}
	f.Trail = domain.TrailHistory
	if out.History, err = s.store.ListEntries(ctx, f); err != nil {
		return nil, err
	}
	f.Trail = domain.TrailWallet
	if out.Wallet, err = s.store.ListEntries(ctx, f); err != nil {
		return nil, err
	}
	return &out, nil
}

// Users returns one page of users matching search
func (s *Service) Users(ctx context.Context, search string, page, pageSize int) ([]domain.User, int64, error) {
	return s.store.ListUsers(ctx, store.Filter{Search: search, Page: page, PageSize: pageSize})
}

// UserDetail loads a user with all its sub-ledgers
func (s *Service) UserDetail(ctx context.Context, userID string) (*UserDetail, error) {
	u, err := s.User(ctx, userID)
	if err != nil {
		return nil, err
	}
	txs, err := s.Transactions(ctx, userID, 0, 0)
	if err != nil {
		return nil, err
	}
	plans, err := s.Plans(ctx, userID)
	if err != nil {
		return nil, err
	}
	bets, err := s.Bets(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UserDetail{User: u, Plans: plans, Bets: bets, Transactions: *txs}, nil
}
