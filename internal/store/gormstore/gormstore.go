// Package gormstore implements the user record store on MySQL through GORM.
package gormstore

import (
	"context"
	"errors"
	"fmt"

	"yield_wallet/internal/domain"
	"yield_wallet/internal/store"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Store is a GORM-backed store.Store
type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

// New wraps an open GORM connection
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// translate maps GORM errors onto the store sentinels; anything else is logged and wrapped
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return store.ErrDuplicate
	case errors.Is(err, store.ErrConflict), errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrDuplicate):
		return err
	}
	logrus.WithField("error", err.Error()).Error("Database error")
	return fmt.Errorf("database error: %w", err)
}

// InTx runs fn inside a database transaction. Errors returned by fn roll it back and are
// passed through unchanged.
func (s *Store) InTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{db: tx})
	})
}

// GetUser fetches a user by primary key
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// GetUserByEmail fetches a user by its unique email
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// ListUsers returns one page of users, newest first, with the total count
func (s *Store) ListUsers(ctx context.Context, f store.Filter) ([]domain.User, int64, error) {
	query := s.db.WithContext(ctx).Model(&domain.User{})
	if f.Search != "" {
		like := "%" + f.Search + "%"
		query = query.Where("email LIKE ? OR name LIKE ?", like, like) // Filter by email or name
	}
	query = query.Session(&gorm.Session{}) // Reused for count and find
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	var users []domain.User
	if err := paged(query.Order("created_at desc, id"), f).Find(&users).Error; err != nil {
		return nil, 0, translate(err)
	}
	return users, total, nil
}

// ScanUsers walks the users table by primary key
func (s *Store) ScanUsers(ctx context.Context, afterID string, limit int) ([]domain.User, error) {
	var users []domain.User
	err := s.db.WithContext(ctx).Where("id > ?", afterID).Order("id").Limit(limit).Find(&users).Error
	return users, translate(err)
}

// TouchUser updates only the activity columns that are set
func (s *Store) TouchUser(ctx context.Context, id string, a domain.Activity) error {
	updates := map[string]any{}
	if a.LastLogin != nil {
		updates["last_login"] = *a.LastLogin
	}
	if a.LastActive != nil {
		updates["last_active"] = *a.LastActive
	}
	if a.LastTyping != nil {
		updates["last_typing"] = *a.LastTyping
	}
	if len(updates) == 0 {
		return nil
	}
	return translate(s.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(updates).Error)
}

// ListDeposits returns matching deposits, newest first
func (s *Store) ListDeposits(ctx context.Context, f store.Filter) ([]domain.Deposit, error) {
	var out []domain.Deposit
	err := paged(filtered(s.db.WithContext(ctx), f).Order("created_at desc, id"), f).Find(&out).Error
	return out, translate(err)
}

// ListWithdrawals returns matching withdrawals, newest first
func (s *Store) ListWithdrawals(ctx context.Context, f store.Filter) ([]domain.Withdrawal, error) {
	var out []domain.Withdrawal
	err := paged(filtered(s.db.WithContext(ctx), f).Order("created_at desc, id"), f).Find(&out).Error
	return out, translate(err)
}

// ListPlans returns matching plans ordered by index
func (s *Store) ListPlans(ctx context.Context, f store.Filter) ([]domain.Plan, error) {
	var out []domain.Plan
	err := paged(filtered(s.db.WithContext(ctx), f).Order("user_id, plan_index"), f).Find(&out).Error
	return out, translate(err)
}

// ListBets returns matching bets, newest first
func (s *Store) ListBets(ctx context.Context, f store.Filter) ([]domain.Bet, error) {
	var out []domain.Bet
	err := paged(filtered(s.db.WithContext(ctx), f).Order("created_at desc, id"), f).Find(&out).Error
	return out, translate(err)
}

// ListEntries returns matching trail entries, newest first
func (s *Store) ListEntries(ctx context.Context, f store.Filter) ([]domain.Entry, error) {
	query := s.db.WithContext(ctx)
	if f.UserID != "" {
		query = query.Where("user_id = ?", f.UserID)
	}
	if f.Trail != "" {
		query = query.Where("trail = ?", f.Trail)
	}
	var out []domain.Entry
	err := paged(query.Order("created_at desc, id"), f).Find(&out).Error
	return out, translate(err)
}

// ListMessages returns a support thread, oldest first
func (s *Store) ListMessages(ctx context.Context, f store.Filter) ([]domain.Message, error) {
	query := s.db.WithContext(ctx)
	if f.UserID != "" {
		query = query.Where("user_id = ?", f.UserID)
	}
	var out []domain.Message
	err := paged(query.Order("created_at, id"), f).Find(&out).Error
	return out, translate(err)
}

// ListNotifications returns a user's notifications, newest first
func (s *Store) ListNotifications(ctx context.Context, f store.Filter) ([]domain.Notification, error) {
	query := s.db.WithContext(ctx)
	if f.UserID != "" {
		query = query.Where("user_id = ?", f.UserID)
	}
	var out []domain.Notification
	err := paged(query.Order("created_at desc, id"), f).Find(&out).Error
	return out, translate(err)
}

// MarkNotificationsRead flags every unread notification of the user as read
func (s *Store) MarkNotificationsRead(ctx context.Context, userID string) error {
	err := s.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
	return translate(err)
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the connection pool
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func filtered(db *gorm.DB, f store.Filter) *gorm.DB {
	if f.UserID != "" {
		db = db.Where("user_id = ?", f.UserID) // Filter by owner
	}
	if f.Status != "" {
		db = db.Where("status = ?", f.Status) // Filter by status
	}
	return db
}

func paged(db *gorm.DB, f store.Filter) *gorm.DB {
	if f.Page <= 0 || f.PageSize <= 0 {
		return db
	}
	return db.Offset(f.Offset()).Limit(f.PageSize)
}
