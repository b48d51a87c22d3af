package ledger

import (
	"errors"

	"yield_wallet/internal/store"
)

// Kind classifies ledger errors for transport mapping
type Kind int

const (
	KindBadRequest Kind = iota + 1
	KindUnauthorized
	KindForbidden
	KindNotFound
)

// Error is an expected business-rule failure. Its message is safe to show to users.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func badRequest(msg string) *Error { return &Error{Kind: KindBadRequest, Msg: msg} }

var (
	ErrInvalidCredentials = &Error{Kind: KindUnauthorized, Msg: "Invalid credentials"}
	ErrBlocked            = &Error{Kind: KindForbidden, Msg: "Account is blocked"}
	ErrForbidden          = &Error{Kind: KindForbidden, Msg: "Admin access required"}

	ErrUserNotFound        = &Error{Kind: KindNotFound, Msg: "User not found"}
	ErrTransactionNotFound = &Error{Kind: KindNotFound, Msg: "Transaction not found"}
	ErrPlanNotFound        = &Error{Kind: KindNotFound, Msg: "Plan not found"}
	ErrBetNotFound         = &Error{Kind: KindNotFound, Msg: "Bet not found"}

	ErrBlacklisted       = badRequest("This email or phone cannot be registered")
	ErrEmailTaken        = badRequest("Email already registered")
	ErrInvalidEmail      = badRequest("Invalid email")
	ErrInvalidPassword   = badRequest("Password must be 8-64 characters")
	ErrNameRequired      = badRequest("Name is required")
	ErrInvalidAmount     = badRequest("Invalid amount")
	ErrInsufficientFunds = badRequest("Insufficient balance")
	ErrAlreadyProcessed  = badRequest("Transaction already processed")
	ErrBonusNotReady     = badRequest("Bonus not ready")
	ErrPlanCompleted     = badRequest("Plan already completed")
	ErrUnknownPlan       = badRequest("Unknown plan")
	ErrDuplicateUTR      = badRequest("UTR already submitted")
	ErrBankDetails       = badRequest("Bank account or UPI ID is required")
	ErrInvalidAction     = badRequest("Invalid action")
	ErrEmptyMessage      = badRequest("Message must be 1-2000 characters")
	ErrBalanceLimit      = badRequest("Wallet balance limit reached")
)

// orNotFound replaces store.ErrNotFound with a specific not-found error
func orNotFound(err, notFound error) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFound
	}
	return err
}
