package ledger

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"yield_wallet/internal/catalog"
	"yield_wallet/internal/domain"
	"yield_wallet/internal/store"
	"yield_wallet/internal/store/filestore"
	"yield_wallet/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestService(t *testing.T) (*Service, *filestore.FileStore, *testClock) {
	t.Helper()
	fs, err := filestore.Open(filepath.Join(t.TempDir(), "users.json"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = fs.Close() })

	cat, err := catalog.New([]catalog.Product{
		{Code: "trial", Name: "Trial", Price: 500, DailyReturn: 20, DurationDays: 3, BonusPerDay: 5, TotalBonusDays: 1, Active: true},
		{Code: "retired", Name: "Retired", Price: 100, DailyReturn: 1, DurationDays: 1, Active: false},
	})
	require.NoError(t, err)

	svc := NewService(fs, cat, Options{ReferralReward: 50, MinDeposit: 100, MinWithdrawal: 100})
	clock := &testClock{now: t0}
	svc.SetClock(clock.Now)
	return svc, fs, clock
}

func register(t *testing.T, svc *Service, email string) *domain.User {
	t.Helper()
	u, err := svc.Register(context.Background(), RegisterInput{Email: email, Name: "Test", Password: "password123", Phone: "+91" + email[:3]})
	require.NoError(t, err)
	return u
}

// fund deposits amount and approves it
func fund(t *testing.T, svc *Service, userID string, amount float64) *domain.User {
	t.Helper()
	ctx := context.Background()
	dep, _, err := svc.RequestDeposit(ctx, userID, DepositInput{Amount: amount, Method: "UPI"})
	require.NoError(t, err)
	u, err := svc.ResolveDeposit(ctx, userID, dep.ID, true, nil)
	require.NoError(t, err)
	return u
}

func historyTotal(t *testing.T, st store.Store, userID string) float64 {
	t.Helper()
	entries, err := st.ListEntries(context.Background(), store.Filter{UserID: userID, Trail: domain.TrailHistory})
	require.NoError(t, err)
	total := 0.0
	for _, e := range entries {
		total += e.Amount
	}
	return total
}

func TestDepositApprovedOnlyOnce(t *testing.T) {
	svc, fs, _ := newTestService(t)
	ctx := context.Background()
	u := register(t, svc, "ann@example.com")

	dep, user, err := svc.RequestDeposit(ctx, u.ID, DepositInput{Amount: 1000, Method: "UPI", UTR: "UTR-1"})
	require.NoError(t, err)
	assert.Equal(t, domain.DepositProcessing, dep.Status)
	assert.Equal(t, 0.0, user.Wallet)

	user, err = svc.ResolveTransaction(ctx, u.ID, dep.ID, TxDeposit, true, nil)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, user.Wallet)

	_, err = svc.ResolveTransaction(ctx, u.ID, dep.ID, TxDeposit, true, nil)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)

	got, err := svc.User(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, got.Wallet)
	assert.Equal(t, 1000.0, historyTotal(t, fs, u.ID))
}

func TestConcurrentApprovalsCreditOnce(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	u := register(t, svc, "bob@example.com")
	dep, _, err := svc.RequestDeposit(ctx, u.ID, DepositInput{Amount: 250, Method: "bank"})
	require.NoError(t, err)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ResolveDeposit(ctx, u.ID, dep.ID, true, nil)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrAlreadyProcessed)
	}
	assert.Equal(t, 1, succeeded)

	got, err := svc.User(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 250.0, got.Wallet)
}

func TestDepositRejectAndOverride(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	u := register(t, svc, "cat@example.com")

	rejected, _, err := svc.RequestDeposit(ctx, u.ID, DepositInput{Amount: 300, Method: "UPI", UTR: "A1"})
	require.NoError(t, err)
	user, err := svc.ResolveDeposit(ctx, u.ID, rejected.ID, false, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, user.Wallet)
	_, err = svc.ResolveDeposit(ctx, u.ID, rejected.ID, true, nil)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)

	_, _, err = svc.RequestDeposit(ctx, u.ID, DepositInput{Amount: 300, Method: "UPI", UTR: "A1"})
	assert.ErrorIs(t, err, ErrDuplicateUTR)

	dep, _, err := svc.RequestDeposit(ctx, u.ID, DepositInput{Amount: 300, Method: "UPI", UTR: "A2"})
	require.NoError(t, err)
	override := 280.0
	user, err = svc.ResolveDeposit(ctx, u.ID, dep.ID, true, &override)
	require.NoError(t, err)
	assert.Equal(t, 280.0, user.Wallet)

	deps, err := svc.Store().ListDeposits(ctx, store.Filter{UserID: u.ID, Status: domain.DepositApproved})
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.Equal(t, 280.0, deps[0].Amount)
	assert.Equal(t, 300.0, deps[0].RequestedAmount)
}

func TestDepositValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	u := register(t, svc, "dan@example.com")

	_, _, err := svc.RequestDeposit(ctx, u.ID, DepositInput{Amount: -5})
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, _, err = svc.RequestDeposit(ctx, u.ID, DepositInput{Amount: 100.001})
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, _, err = svc.RequestDeposit(ctx, u.ID, DepositInput{Amount: 50})
	var lerr *Error
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, KindBadRequest, lerr.Kind)

	_, err = svc.ResolveDeposit(ctx, u.ID, "missing", true, nil)
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestAmountsAboveLimitAreRejected(t *testing.T) {
	svc, fs, _ := newTestService(t)
	ctx := context.Background()
	admin, err := svc.EnsureAdmin(ctx, "root@example.com", "adminpass1")
	require.NoError(t, err)
	u := register(t, svc, "lee@example.com")

	_, _, err = svc.RequestDeposit(ctx, u.ID, DepositInput{Amount: 1e13, Method: "UPI"})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	dep, _, err := svc.RequestDeposit(ctx, u.ID, DepositInput{Amount: 300, Method: "UPI"})
	require.NoError(t, err)
	override := 1e13
	_, err = svc.ResolveDeposit(ctx, u.ID, dep.ID, true, &override)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.AdjustWallet(ctx, admin.ID, u.ID, utils.MaxAmount+1, AdjustAdd, "")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	require.NoError(t, fs.InTx(ctx, func(tx store.Tx) error {
		user, err := tx.LockUser(u.ID)
		if err != nil {
			return err
		}
		user.Wallet = utils.MaxBalance - 10
		return tx.SaveUser(user)
	}))
	_, err = svc.AdjustWallet(ctx, admin.ID, u.ID, 100, AdjustAdd, "")
	assert.ErrorIs(t, err, ErrBalanceLimit)

	got, err := svc.User(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(utils.MaxBalance-10), got.Wallet)
}

func TestWithdrawalRefundsOriginalDebitAfterEdit(t *testing.T) {
	svc, fs, _ := newTestService(t)
	ctx := context.Background()
	u := register(t, svc, "eve@example.com")
	fund(t, svc, u.ID, 1000)

	bank := domain.BankDetails{AccountHolder: "Eve", AccountNumber: "12345678", IFSC: "sbin0001"}
	wd, user, err := svc.RequestWithdrawal(ctx, u.ID, WithdrawalInput{Amount: 400, BankDetails: bank})
	require.NoError(t, err)
	assert.Equal(t, 600.0, user.Wallet)
	assert.Equal(t, 400.0, wd.DebitedAmount)
	assert.Equal(t, "SBIN0001", wd.BankDetails.IFSC)

	require.NoError(t, svc.EditTransaction(ctx, u.ID, wd.ID, TxWithdraw, 150))

	user, err = svc.ResolveTransaction(ctx, u.ID, wd.ID, TxWithdraw, false, nil)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, user.Wallet)
	assert.Equal(t, 1000.0, historyTotal(t, fs, u.ID))

	_, err = svc.ResolveWithdrawal(ctx, u.ID, wd.ID, true)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
	assert.ErrorIs(t, svc.EditTransaction(ctx, u.ID, wd.ID, TxWithdraw, 200), ErrAlreadyProcessed)
}

func TestWithdrawalApproveKeepsDebit(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	u := register(t, svc, "fay@example.com")
	fund(t, svc, u.ID, 500)

	_, _, err := svc.RequestWithdrawal(ctx, u.ID, WithdrawalInput{Amount: 600, BankDetails: domain.BankDetails{UPIID: "fay@upi"}})
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	_, _, err = svc.RequestWithdrawal(ctx, u.ID, WithdrawalInput{Amount: 200})
	assert.ErrorIs(t, err, ErrBankDetails)

	wd, _, err := svc.RequestWithdrawal(ctx, u.ID, WithdrawalInput{Amount: 200, BankDetails: domain.BankDetails{UPIID: "fay@upi"}})
	require.NoError(t, err)
	user, err := svc.ResolveWithdrawal(ctx, u.ID, wd.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 300.0, user.Wallet)

	notes, err := svc.Notifications(ctx, u.ID, 0, 0)
	require.NoError(t, err)
	require.NotEmpty(t, notes)
	assert.Equal(t, domain.NotifyWithdrawal, notes[0].Kind)
}

func TestBlockedUserCannotWithdraw(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	u := register(t, svc, "gus@example.com")
	fund(t, svc, u.ID, 500)

	_, err := svc.SetBlocked(ctx, u.ID, true)
	require.NoError(t, err)
	_, _, err = svc.RequestWithdrawal(ctx, u.ID, WithdrawalInput{Amount: 200, BankDetails: domain.BankDetails{UPIID: "gus@upi"}})
	assert.ErrorIs(t, err, ErrBlocked)

	_, err = svc.Login(ctx, "gus@example.com", "password123")
	assert.ErrorIs(t, err, ErrBlocked)
}

func TestClaimBeforeDueFailsWithoutMutation(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()
	u := register(t, svc, "hal@example.com")
	fund(t, svc, u.ID, 1000)

	plan, user, err := svc.PurchasePlan(ctx, u.ID, "trial")
	require.NoError(t, err)
	assert.Equal(t, 0, plan.Index)
	assert.Equal(t, 500.0, user.Wallet)
	assert.Equal(t, t0.Add(24*time.Hour), plan.NextClaimAt)

	clock.Advance(23 * time.Hour)
	_, _, err = svc.ClaimBonus(ctx, u.ID, 0)
	assert.ErrorIs(t, err, ErrBonusNotReady)

	plans, err := svc.Plans(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, 0, plans[0].DaysClaimed)
	assert.Equal(t, t0.Add(24*time.Hour), plans[0].NextClaimAt)
	got, err := svc.User(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 500.0, got.Wallet)
}

func TestLateClaimAdvancesByExactlyOneDay(t *testing.T) {
	svc, fs, clock := newTestService(t)
	ctx := context.Background()
	u := register(t, svc, "ivy@example.com")
	fund(t, svc, u.ID, 1000)
	_, _, err := svc.PurchasePlan(ctx, u.ID, "trial")
	require.NoError(t, err)

	// first claim is 5 hours late and carries the bonus
	clock.Advance(29 * time.Hour)
	user, amount, err := svc.ClaimBonus(ctx, u.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 25.0, amount)
	assert.Equal(t, 525.0, user.Wallet)

	plans, err := svc.Plans(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, t0.Add(48*time.Hour), plans[0].NextClaimAt)
	assert.Equal(t, int64(86400000), plans[0].NextClaimAt.Sub(t0.Add(24*time.Hour)).Milliseconds())
	assert.Equal(t, 1, plans[0].BonusDaysClaimed)

	clock.Advance(24 * time.Hour)
	_, amount, err = svc.ClaimBonus(ctx, u.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 20.0, amount)

	clock.Advance(24 * time.Hour)
	user, _, err = svc.ClaimBonus(ctx, u.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 565.0, user.Wallet)

	clock.Advance(24 * time.Hour)
	_, _, err = svc.ClaimBonus(ctx, u.ID, 0)
	assert.ErrorIs(t, err, ErrPlanCompleted)

	plans, err = svc.Plans(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanCompleted, plans[0].Status)
	assert.Equal(t, 3, plans[0].DaysClaimed)
	assert.Equal(t, 565.0, historyTotal(t, fs, u.ID))
}

func TestPurchasePlanErrors(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	u := register(t, svc, "jon@example.com")

	_, _, err := svc.PurchasePlan(ctx, u.ID, "trial")
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	_, _, err = svc.PurchasePlan(ctx, u.ID, "nope")
	assert.ErrorIs(t, err, ErrUnknownPlan)
	_, _, err = svc.PurchasePlan(ctx, u.ID, "retired")
	assert.ErrorIs(t, err, ErrUnknownPlan)
	_, _, err = svc.ClaimBonus(ctx, u.ID, 3)
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestDeductNeverGoesNegative(t *testing.T) {
	svc, fs, _ := newTestService(t)
	ctx := context.Background()
	admin, err := svc.EnsureAdmin(ctx, "root@example.com", "adminpass1")
	require.NoError(t, err)
	u := register(t, svc, "kim@example.com")
	fund(t, svc, u.ID, 120)

	user, err := svc.AdjustWallet(ctx, admin.ID, u.ID, 500, AdjustDeduct, "chargeback")
	require.NoError(t, err)
	assert.Equal(t, 0.0, user.Wallet)

	walletTrail, err := fs.ListEntries(ctx, store.Filter{UserID: u.ID, Trail: domain.TrailWallet})
	require.NoError(t, err)
	require.Len(t, walletTrail, 1)
	assert.Equal(t, -120.0, walletTrail[0].Amount)
	assert.Equal(t, 0.0, historyTotal(t, fs, u.ID))

	user, err = svc.AdjustWallet(ctx, admin.ID, u.ID, 75.5, AdjustAdd, "goodwill")
	require.NoError(t, err)
	assert.Equal(t, 75.5, user.Wallet)

	_, err = svc.AdjustWallet(ctx, admin.ID, u.ID, 10, "double", "")
	assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestDeleteUserBlacklistsEmailAndPhone(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	u, err := svc.Register(ctx, RegisterInput{Email: "Leo@Example.com", Phone: "+15550001", Name: "Leo", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "leo@example.com", u.Email)

	require.NoError(t, svc.DeleteUser(ctx, u.ID))
	_, err = svc.User(ctx, u.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.Register(ctx, RegisterInput{Email: "leo@example.com", Name: "Leo", Password: "password123"})
	assert.ErrorIs(t, err, ErrBlacklisted)
	_, err = svc.Register(ctx, RegisterInput{Email: "other@example.com", Phone: "+15550001", Name: "Leo", Password: "password123"})
	assert.ErrorIs(t, err, ErrBlacklisted)

	admin, err := svc.EnsureAdmin(ctx, "root@example.com", "adminpass1")
	require.NoError(t, err)
	err = svc.DeleteUser(ctx, admin.ID)
	var lerr *Error
	require.True(t, errors.As(err, &lerr))
}

func TestRegisterDrawsAnotherCodeOnCollision(t *testing.T) {
	svc, fs, _ := newTestService(t)
	ctx := context.Background()
	first := register(t, svc, "zed@example.com")

	draws := []string{first.ReferralCode, "FRESH234"}
	svc.codes = func() (string, error) {
		code := draws[0]
		draws = draws[1:]
		return code, nil
	}
	second := register(t, svc, "amy@example.com")
	assert.Equal(t, "FRESH234", second.ReferralCode)

	// A code taken behind the pre-check is retried, not reported as a taken email
	err := fs.InTx(ctx, func(tx store.Tx) error {
		return createUser(tx, &domain.User{ID: "u-new", Email: "new@example.com", ReferralCode: first.ReferralCode})
	})
	assert.ErrorIs(t, err, store.ErrConflict)
	err = fs.InTx(ctx, func(tx store.Tx) error {
		return createUser(tx, &domain.User{ID: "u-dup", Email: first.Email, ReferralCode: "OTHER234"})
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterPaysReferrerOnce(t *testing.T) {
	svc, fs, _ := newTestService(t)
	ctx := context.Background()
	referrer := register(t, svc, "max@example.com")

	invitee, err := svc.Register(ctx, RegisterInput{Email: "ned@example.com", Name: "Ned", Password: "password123", ReferralCode: referrer.ReferralCode})
	require.NoError(t, err)
	assert.Equal(t, referrer.ID, invitee.ReferredBy)

	got, err := svc.User(ctx, referrer.ID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, got.Wallet)
	assert.Equal(t, 50.0, got.ReferralRewards)
	assert.Equal(t, 50.0, historyTotal(t, fs, referrer.ID))

	// unknown codes are ignored
	stray, err := svc.Register(ctx, RegisterInput{Email: "oli@example.com", Name: "Oli", Password: "password123", ReferralCode: "ZZZZZZZZ"})
	require.NoError(t, err)
	assert.Empty(t, stray.ReferredBy)

	_, err = svc.Register(ctx, RegisterInput{Email: "NED@example.com", Name: "Ned", Password: "password123"})
	assert.ErrorIs(t, err, ErrEmailTaken)
	_, err = svc.Register(ctx, RegisterInput{Email: "pat@example.com", Name: "Pat", Password: "short"})
	assert.ErrorIs(t, err, ErrInvalidPassword)
	_, err = svc.Register(ctx, RegisterInput{Email: "not-an-email", Name: "Pat", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestSignupBonusCreditedOnce(t *testing.T) {
	svc, fs, _ := newTestService(t)
	svc.opts.SignupBonus = 25
	u := register(t, svc, "quinn@example.com")
	assert.True(t, u.BonusClaimed)
	assert.Equal(t, 25.0, u.Wallet)
	assert.Equal(t, 25.0, historyTotal(t, fs, u.ID))
}

func TestLogin(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	register(t, svc, "ray@example.com")

	u, err := svc.Login(ctx, " RAY@example.com ", "password123")
	require.NoError(t, err)
	require.NotNil(t, u.LastLogin)
	assert.Equal(t, t0, *u.LastLogin)

	_, err = svc.Login(ctx, "ray@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestEnsureAdminPromotesExistingUser(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	u := register(t, svc, "sam@example.com")

	admin, err := svc.EnsureAdmin(ctx, "sam@example.com", "adminpass1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, admin.ID)
	assert.True(t, admin.IsAdmin())

	again, err := svc.EnsureAdmin(ctx, "sam@example.com", "adminpass1")
	require.NoError(t, err)
	assert.Equal(t, admin.Version, again.Version)
}

func TestBetLifecycle(t *testing.T) {
	svc, fs, _ := newTestService(t)
	ctx := context.Background()
	u := register(t, svc, "tom@example.com")
	fund(t, svc, u.ID, 200)

	win, user, err := svc.PlaceBet(ctx, u.ID, "color", 50, "red")
	require.NoError(t, err)
	assert.Equal(t, 150.0, user.Wallet)
	loss, _, err := svc.PlaceBet(ctx, u.ID, "color", 30, "green")
	require.NoError(t, err)
	_, _, err = svc.PlaceBet(ctx, u.ID, "color", 500, "red")
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	active, err := svc.ActiveBets(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	_, err = svc.ResolveBet(ctx, win.ID, domain.BetWin, 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	resolved, err := svc.ResolveBet(ctx, win.ID, domain.BetWin, 95)
	require.NoError(t, err)
	assert.Equal(t, domain.BetWin, resolved.Status)
	_, err = svc.ResolveBet(ctx, win.ID, domain.BetLoss, 0)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
	_, err = svc.ResolveBet(ctx, loss.ID, domain.BetLoss, 0)
	require.NoError(t, err)
	_, err = svc.ResolveBet(ctx, "missing", domain.BetLoss, 0)
	assert.ErrorIs(t, err, ErrBetNotFound)

	got, err := svc.User(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 215.0, got.Wallet)
	assert.Equal(t, 215.0, historyTotal(t, fs, u.ID))

	active, err = svc.ActiveBets(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestSupportThreadAndNotifications(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	u := register(t, svc, "uma@example.com")

	_, err := svc.SendMessage(ctx, u.ID, domain.SenderUser, "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	_, err = svc.SendMessage(ctx, u.ID, domain.SenderUser, "Where is my deposit?")
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, u.ID, domain.SenderAdmin, "Approved now")
	require.NoError(t, err)

	thread, err := svc.Thread(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, thread, 2)
	assert.Equal(t, domain.SenderUser, thread[0].Sender)
	assert.Equal(t, domain.SenderAdmin, thread[1].Sender)

	require.NoError(t, svc.Typing(ctx, u.ID))
	got, err := svc.User(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastTyping)

	notes, err := svc.Notifications(ctx, u.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.False(t, notes[0].Read)
	require.NoError(t, svc.MarkNotificationsRead(ctx, u.ID))
	notes, err = svc.Notifications(ctx, u.ID, 0, 0)
	require.NoError(t, err)
	assert.True(t, notes[0].Read)
}

func TestReconcileReportsDrift(t *testing.T) {
	svc, fs, _ := newTestService(t)
	ctx := context.Background()
	clean := register(t, svc, "vic@example.com")
	fund(t, svc, clean.ID, 300)
	drifted := register(t, svc, "wes@example.com")
	fund(t, svc, drifted.ID, 300)

	// change the balance without a history entry
	require.NoError(t, fs.InTx(ctx, func(tx store.Tx) error {
		u, err := tx.LockUser(drifted.ID)
		if err != nil {
			return err
		}
		u.Wallet = 999
		return tx.SaveUser(u)
	}))

	report, err := svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.CheckedUsers)
	require.Len(t, report.Mismatches, 1)
	m := report.Mismatches[0]
	assert.Equal(t, drifted.ID, m.UserID)
	assert.Equal(t, 300.0, m.HistoryTotal)
	assert.Equal(t, 699.0, m.Difference)
}

func TestReconcileChecksEveryUserAcrossPages(t *testing.T) {
	svc, fs, _ := newTestService(t)
	ctx := context.Background()
	total := reconcilePageSize + 5
	require.NoError(t, fs.InTx(ctx, func(tx store.Tx) error {
		for i := 0; i < total; i++ {
			id := fmt.Sprintf("user-%04d", i)
			if err := tx.CreateUser(&domain.User{ID: id, Email: id + "@example.com", ReferralCode: fmt.Sprintf("C%07d", i), CreatedAt: t0}); err != nil {
				return err
			}
		}
		// last user of the first page is out of balance
		u, err := tx.LockUser(fmt.Sprintf("user-%04d", reconcilePageSize-1))
		if err != nil {
			return err
		}
		u.Wallet = 10
		return tx.SaveUser(u)
	}))

	report, err := svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, total, report.CheckedUsers)
	require.Len(t, report.Mismatches, 1)
	assert.Equal(t, fmt.Sprintf("user-%04d", reconcilePageSize-1), report.Mismatches[0].UserID)
}

func TestReconcileIgnoresStaleUserRead(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	u := register(t, svc, "yan@example.com")
	stale := *u // Read before the deposit landed
	fund(t, svc, u.ID, 300)

	m, err := svc.reconcileUser(ctx, &stale)
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestTransactionsAndDetail(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	u := register(t, svc, "xia@example.com")
	fund(t, svc, u.ID, 800)
	_, _, err := svc.RequestWithdrawal(ctx, u.ID, WithdrawalInput{Amount: 100, BankDetails: domain.BankDetails{UPIID: "xia@upi"}})
	require.NoError(t, err)

	txs, err := svc.Transactions(ctx, u.ID, 1, 10)
	require.NoError(t, err)
	assert.Len(t, txs.Deposits, 1)
	assert.Len(t, txs.Withdrawals, 1)
	assert.Len(t, txs.History, 2)
	assert.Empty(t, txs.Wallet)

	detail, err := svc.UserDetail(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 700.0, detail.User.Wallet)

	users, total, err := svc.Users(ctx, "xia", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, users, 1)
}
