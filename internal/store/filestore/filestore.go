// Package filestore keeps the whole user base in a single JSON snapshot file.
//
// Every transaction holds the write lock for its whole duration. On success the
// snapshot is written to a temporary file in the same directory, synced and renamed
// over the data file, so the file on disk is always a complete snapshot. A
// transaction that fails, in fn or while writing, is rolled back by reloading the
// last committed snapshot.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"yield_wallet/internal/domain"
	"yield_wallet/internal/store"

	"github.com/sirupsen/logrus"
)

type snapshot struct {
	Version       int                               `json:"version"`
	Users         map[string]*domain.User           `json:"users"`
	Deposits      map[string]*domain.Deposit        `json:"deposits"`
	Withdrawals   map[string]*domain.Withdrawal     `json:"withdrawals"`
	Plans         map[string]*domain.Plan           `json:"plans"`
	Bets          map[string]*domain.Bet            `json:"bets"`
	Blacklist     map[string]*domain.BlacklistEntry `json:"blacklist"`
	Entries       []*domain.Entry                   `json:"entries"`
	Messages      []*domain.Message                 `json:"messages"`
	Notifications []*domain.Notification            `json:"notifications"`
	CreatedAt     time.Time                         `json:"createdAt"`
	UpdatedAt     time.Time                         `json:"updatedAt"`
}

func (s *snapshot) ensureMaps() {
	if s.Users == nil {
		s.Users = map[string]*domain.User{}
	}
	if s.Deposits == nil {
		s.Deposits = map[string]*domain.Deposit{}
	}
	if s.Withdrawals == nil {
		s.Withdrawals = map[string]*domain.Withdrawal{}
	}
	if s.Plans == nil {
		s.Plans = map[string]*domain.Plan{}
	}
	if s.Bets == nil {
		s.Bets = map[string]*domain.Bet{}
	}
	if s.Blacklist == nil {
		s.Blacklist = map[string]*domain.BlacklistEntry{}
	}
}

// ErrClosed is returned by operations on a closed store
var ErrClosed = errors.New("file store is closed")

// FileStore implements store.Store on top of one JSON file
type FileStore struct {
	mu     sync.RWMutex
	snap   *snapshot
	path   string
	closed bool
	// write persists an encoded snapshot; replaced in tests
	write func(path string, data []byte) error
}

var _ store.Store = (*FileStore)(nil)

// Open opens (or creates) the snapshot file at path
func Open(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	fs := &FileStore{path: path, write: writeAtomic}
	if err := fs.load(); err != nil {
		return nil, err
	}
	return fs, nil
}

// Close releases the store. Later operations fail with ErrClosed.
func (fs *FileStore) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.closed = true
	return nil
}

// Ping checks that the snapshot file is still reachable
func (fs *FileStore) Ping(ctx context.Context) error {
	fs.mu.RLock()
	closed := fs.closed
	fs.mu.RUnlock()
	if closed {
		return ErrClosed
	}
	_, err := os.Stat(fs.path)
	return err
}

func (fs *FileStore) load() error {
	data, err := os.ReadFile(fs.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read %s: %w", fs.path, err)
	}
	if len(data) == 0 {
		now := time.Now()
		fs.snap = &snapshot{Version: 1, CreatedAt: now, UpdatedAt: now}
		fs.snap.ensureMaps()
		return fs.flushLocked()
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decode %s: %w", fs.path, err)
	}
	snap.ensureMaps()
	fs.snap = &snap
	return nil
}

func (fs *FileStore) flushLocked() error {
	data, err := json.MarshalIndent(fs.snap, "", "  ")
	if err != nil {
		return err
	}
	return fs.write(fs.path, append(data, '\n'))
}

// writeAtomic replaces path with data through a synced temporary file and a rename
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // No-op once renamed

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	// Persist the rename itself
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}

// rollbackLocked restores the last committed snapshot after a failed transaction
func (fs *FileStore) rollbackLocked(cause error) error {
	if rerr := fs.load(); rerr != nil {
		logrus.WithFields(logrus.Fields{
			"path":  fs.path,
			"error": rerr.Error(),
		}).Error("Failed to roll back file store")
		return errors.Join(cause, rerr)
	}
	return cause
}

// InTx runs fn with exclusive access to the snapshot
func (fs *FileStore) InTx(ctx context.Context, fn func(tx store.Tx) error) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fn(&fileTx{s: fs.snap}); err != nil {
		return fs.rollbackLocked(err)
	}
	fs.snap.UpdatedAt = time.Now()
	if err := fs.flushLocked(); err != nil {
		logrus.WithFields(logrus.Fields{
			"path":  fs.path,
			"error": err.Error(),
		}).Error("Failed to write file store")
		return fs.rollbackLocked(fmt.Errorf("write %s: %w", fs.path, err))
	}
	return nil
}

func (fs *FileStore) withRead(fn func(*snapshot) error) error {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fn(fs.snap)
}

// GetUser returns a copy of the user with the given ID
func (fs *FileStore) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var out *domain.User
	_ = fs.withRead(func(s *snapshot) error {
		if u, ok := s.Users[id]; ok {
			cp := *u
			out = &cp
		}
		return nil
	})
	if out == nil {
		return nil, store.ErrNotFound
	}
	return out, nil
}

// GetUserByEmail returns a copy of the user registered with email
func (fs *FileStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var out *domain.User
	_ = fs.withRead(func(s *snapshot) error {
		out = findUser(s, func(u *domain.User) bool { return u.Email == email })
		return nil
	})
	if out == nil {
		return nil, store.ErrNotFound
	}
	return out, nil
}

// ListUsers returns one page of users, newest first, and the total match count
func (fs *FileStore) ListUsers(ctx context.Context, f store.Filter) ([]domain.User, int64, error) {
	var out []domain.User
	_ = fs.withRead(func(s *snapshot) error {
		search := strings.ToLower(f.Search)
		for _, u := range s.Users {
			if search != "" && !strings.Contains(u.Email, search) && !strings.Contains(strings.ToLower(u.Name), search) {
				continue
			}
			out = append(out, *u)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	total := int64(len(out))
	return page(out, f), total, nil
}

// ScanUsers returns users in ID order after afterID
func (fs *FileStore) ScanUsers(ctx context.Context, afterID string, limit int) ([]domain.User, error) {
	var out []domain.User
	_ = fs.withRead(func(s *snapshot) error {
		for _, u := range s.Users {
			if u.ID > afterID {
				out = append(out, *u)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// TouchUser sets the non-nil activity timestamps
func (fs *FileStore) TouchUser(ctx context.Context, id string, a domain.Activity) error {
	return fs.InTx(ctx, func(_ store.Tx) error {
		u, ok := fs.snap.Users[id]
		if !ok {
			return store.ErrNotFound
		}
		if a.LastLogin != nil {
			u.LastLogin = a.LastLogin
		}
		if a.LastActive != nil {
			u.LastActive = a.LastActive
		}
		if a.LastTyping != nil {
			u.LastTyping = a.LastTyping
		}
		return nil
	})
}

// ListDeposits returns matching deposits, newest first
func (fs *FileStore) ListDeposits(ctx context.Context, f store.Filter) ([]domain.Deposit, error) {
	var out []domain.Deposit
	_ = fs.withRead(func(s *snapshot) error {
		for _, d := range s.Deposits {
			if matches(f, d.UserID, d.Status) {
				out = append(out, *d)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return newer(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	return page(out, f), nil
}

// ListWithdrawals returns matching withdrawals, newest first
func (fs *FileStore) ListWithdrawals(ctx context.Context, f store.Filter) ([]domain.Withdrawal, error) {
	var out []domain.Withdrawal
	_ = fs.withRead(func(s *snapshot) error {
		for _, w := range s.Withdrawals {
			if matches(f, w.UserID, w.Status) {
				out = append(out, *w)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return newer(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	return page(out, f), nil
}

// ListPlans returns matching plans ordered by index
func (fs *FileStore) ListPlans(ctx context.Context, f store.Filter) ([]domain.Plan, error) {
	var out []domain.Plan
	_ = fs.withRead(func(s *snapshot) error {
		for _, p := range s.Plans {
			if matches(f, p.UserID, p.Status) {
				out = append(out, *p)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].Index < out[j].Index
	})
	return page(out, f), nil
}

// ListBets returns matching bets, newest first
func (fs *FileStore) ListBets(ctx context.Context, f store.Filter) ([]domain.Bet, error) {
	var out []domain.Bet
	_ = fs.withRead(func(s *snapshot) error {
		for _, b := range s.Bets {
			if matches(f, b.UserID, b.Status) {
				out = append(out, *b)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return newer(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	return page(out, f), nil
}

// ListEntries returns matching trail entries, newest first
func (fs *FileStore) ListEntries(ctx context.Context, f store.Filter) ([]domain.Entry, error) {
	var out []domain.Entry
	_ = fs.withRead(func(s *snapshot) error {
		// entries are appended in order, walk backwards for newest first
		for i := len(s.Entries) - 1; i >= 0; i-- {
			e := s.Entries[i]
			if (f.UserID == "" || e.UserID == f.UserID) && (f.Trail == "" || e.Trail == f.Trail) {
				out = append(out, *e)
			}
		}
		return nil
	})
	return page(out, f), nil
}

// ListMessages returns a support thread, oldest first
func (fs *FileStore) ListMessages(ctx context.Context, f store.Filter) ([]domain.Message, error) {
	var out []domain.Message
	_ = fs.withRead(func(s *snapshot) error {
		for _, m := range s.Messages {
			if f.UserID == "" || m.UserID == f.UserID {
				out = append(out, *m)
			}
		}
		return nil
	})
	return page(out, f), nil
}

// ListNotifications returns a user's notifications, newest first
func (fs *FileStore) ListNotifications(ctx context.Context, f store.Filter) ([]domain.Notification, error) {
	var out []domain.Notification
	_ = fs.withRead(func(s *snapshot) error {
		for i := len(s.Notifications) - 1; i >= 0; i-- {
			n := s.Notifications[i]
			if f.UserID == "" || n.UserID == f.UserID {
				out = append(out, *n)
			}
		}
		return nil
	})
	return page(out, f), nil
}

// MarkNotificationsRead flags every notification of the user as read
func (fs *FileStore) MarkNotificationsRead(ctx context.Context, userID string) error {
	return fs.InTx(ctx, func(_ store.Tx) error {
		for _, n := range fs.snap.Notifications {
			if n.UserID == userID {
				n.Read = true
			}
		}
		return nil
	})
}

func findUser(s *snapshot, pred func(*domain.User) bool) *domain.User {
	for _, u := range s.Users {
		if pred(u) {
			cp := *u
			return &cp
		}
	}
	return nil
}

func matches(f store.Filter, userID, status string) bool {
	return (f.UserID == "" || f.UserID == userID) && (f.Status == "" || f.Status == status)
}

func newer(a, b time.Time, idA, idB string) bool {
	if a.Equal(b) {
		return idA < idB
	}
	return a.After(b)
}

func page[T any](items []T, f store.Filter) []T {
	if f.Page <= 0 || f.PageSize <= 0 {
		return items
	}
	start := f.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + f.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
