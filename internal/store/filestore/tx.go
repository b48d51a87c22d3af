package filestore

import (
	"yield_wallet/internal/domain"
	"yield_wallet/internal/store"
)

// fileTx mutates the snapshot directly; FileStore.InTx handles commit and rollback.
type fileTx struct {
	s *snapshot
}

func (tx *fileTx) LockUser(id string) (*domain.User, error) {
	u, ok := tx.s.Users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (tx *fileTx) CreateUser(u *domain.User) error {
	if _, exists := tx.s.Users[u.ID]; exists {
		return store.ErrDuplicate
	}
	for _, other := range tx.s.Users {
		if other.Email == u.Email || (u.ReferralCode != "" && other.ReferralCode == u.ReferralCode) {
			return store.ErrDuplicate
		}
	}
	cp := *u
	tx.s.Users[u.ID] = &cp
	return nil
}

func (tx *fileTx) SaveUser(u *domain.User) error {
	cur, ok := tx.s.Users[u.ID]
	if !ok {
		return store.ErrNotFound
	}
	if cur.Version != u.Version {
		return store.ErrConflict
	}
	u.Version++
	cp := *u
	tx.s.Users[u.ID] = &cp
	return nil
}

func (tx *fileTx) DeleteUser(id string) error {
	if _, ok := tx.s.Users[id]; !ok {
		return store.ErrNotFound
	}
	delete(tx.s.Users, id)
	for k, d := range tx.s.Deposits {
		if d.UserID == id {
			delete(tx.s.Deposits, k)
		}
	}
	for k, w := range tx.s.Withdrawals {
		if w.UserID == id {
			delete(tx.s.Withdrawals, k)
		}
	}
	for k, p := range tx.s.Plans {
		if p.UserID == id {
			delete(tx.s.Plans, k)
		}
	}
	for k, b := range tx.s.Bets {
		if b.UserID == id {
			delete(tx.s.Bets, k)
		}
	}
	tx.s.Entries = without(tx.s.Entries, func(e *domain.Entry) bool { return e.UserID == id })
	tx.s.Messages = without(tx.s.Messages, func(m *domain.Message) bool { return m.UserID == id })
	tx.s.Notifications = without(tx.s.Notifications, func(n *domain.Notification) bool { return n.UserID == id })
	return nil
}

func (tx *fileTx) FindUserByEmail(email string) (*domain.User, error) {
	if u := findUser(tx.s, func(u *domain.User) bool { return u.Email == email }); u != nil {
		return u, nil
	}
	return nil, store.ErrNotFound
}

func (tx *fileTx) FindUserByReferralCode(code string) (*domain.User, error) {
	if u := findUser(tx.s, func(u *domain.User) bool { return u.ReferralCode == code }); u != nil {
		return u, nil
	}
	return nil, store.ErrNotFound
}

func (tx *fileTx) IsBlacklisted(values ...string) (bool, error) {
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := tx.s.Blacklist[v]; ok {
			return true, nil
		}
	}
	return false, nil
}

func (tx *fileTx) AddBlacklist(entries ...domain.BlacklistEntry) error {
	for i := range entries {
		e := entries[i]
		if e.Value == "" {
			continue
		}
		tx.s.Blacklist[e.Value] = &e
	}
	return nil
}

func (tx *fileTx) CreateDeposit(d *domain.Deposit) error {
	if _, exists := tx.s.Deposits[d.ID]; exists {
		return store.ErrDuplicate
	}
	cp := *d
	tx.s.Deposits[d.ID] = &cp
	return nil
}

func (tx *fileTx) GetDeposit(userID, id string) (*domain.Deposit, error) {
	d, ok := tx.s.Deposits[id]
	if !ok || d.UserID != userID {
		return nil, store.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (tx *fileTx) SaveDeposit(d *domain.Deposit) error {
	if _, ok := tx.s.Deposits[d.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *d
	tx.s.Deposits[d.ID] = &cp
	return nil
}

func (tx *fileTx) HasDepositUTR(userID, utr string) (bool, error) {
	for _, d := range tx.s.Deposits {
		if d.UserID == userID && d.UTR == utr {
			return true, nil
		}
	}
	return false, nil
}

func (tx *fileTx) CreateWithdrawal(w *domain.Withdrawal) error {
	if _, exists := tx.s.Withdrawals[w.ID]; exists {
		return store.ErrDuplicate
	}
	cp := *w
	tx.s.Withdrawals[w.ID] = &cp
	return nil
}

func (tx *fileTx) GetWithdrawal(userID, id string) (*domain.Withdrawal, error) {
	w, ok := tx.s.Withdrawals[id]
	if !ok || w.UserID != userID {
		return nil, store.ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (tx *fileTx) SaveWithdrawal(w *domain.Withdrawal) error {
	if _, ok := tx.s.Withdrawals[w.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *w
	tx.s.Withdrawals[w.ID] = &cp
	return nil
}

func (tx *fileTx) CreatePlan(p *domain.Plan) error {
	if _, exists := tx.s.Plans[p.ID]; exists {
		return store.ErrDuplicate
	}
	for _, other := range tx.s.Plans {
		if other.UserID == p.UserID && other.Index == p.Index {
			return store.ErrDuplicate
		}
	}
	cp := *p
	tx.s.Plans[p.ID] = &cp
	return nil
}

func (tx *fileTx) GetPlanByIndex(userID string, index int) (*domain.Plan, error) {
	for _, p := range tx.s.Plans {
		if p.UserID == userID && p.Index == index {
			cp := *p
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (tx *fileTx) CountPlans(userID string) (int, error) {
	n := 0
	for _, p := range tx.s.Plans {
		if p.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (tx *fileTx) SavePlan(p *domain.Plan) error {
	if _, ok := tx.s.Plans[p.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *p
	tx.s.Plans[p.ID] = &cp
	return nil
}

func (tx *fileTx) CreateBet(b *domain.Bet) error {
	if _, exists := tx.s.Bets[b.ID]; exists {
		return store.ErrDuplicate
	}
	cp := *b
	tx.s.Bets[b.ID] = &cp
	return nil
}

func (tx *fileTx) GetBet(id string) (*domain.Bet, error) {
	b, ok := tx.s.Bets[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (tx *fileTx) SaveBet(b *domain.Bet) error {
	if _, ok := tx.s.Bets[b.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *b
	tx.s.Bets[b.ID] = &cp
	return nil
}

func (tx *fileTx) AppendEntry(e *domain.Entry) error {
	cp := *e
	tx.s.Entries = append(tx.s.Entries, &cp)
	return nil
}

func (tx *fileTx) HistoryAmounts(userID string) ([]float64, error) {
	var amounts []float64
	for _, e := range tx.s.Entries {
		if e.UserID == userID && e.Trail == domain.TrailHistory {
			amounts = append(amounts, e.Amount)
		}
	}
	return amounts, nil
}

func (tx *fileTx) AppendMessage(m *domain.Message) error {
	cp := *m
	tx.s.Messages = append(tx.s.Messages, &cp)
	return nil
}

func (tx *fileTx) AppendNotification(n *domain.Notification) error {
	cp := *n
	tx.s.Notifications = append(tx.s.Notifications, &cp)
	return nil
}

func without[T any](items []*T, drop func(*T) bool) []*T {
	out := items[:0]
	for _, it := range items {
		if !drop(it) {
			out = append(out, it)
		}
	}
	return out
}
