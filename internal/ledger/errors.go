// Package ledger holds the domain errors shared by the points-ledger
// repositories, services and handlers.
package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrAccountNotFound means the caller-supplied user key resolved to
	// no account, neither by id nor by external auth id.
	ErrAccountNotFound = errors.New("account not found")

	// ErrInvalidAmount covers zero/negative amounts, sign/kind mismatches
	// and purchase/payment mismatches.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInsufficientBalance means a deduction would drive the balance
	// negative. Use errors.As with *InsufficientBalanceError for details.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrAccountExists means registration collided on externalAuthId.
	ErrAccountExists = errors.New("account already exists")

	// ErrStoreUnavailable wraps transient infrastructure failures. The
	// operation either fully committed or fully no-oped, so callers may
	// retry at their discretion.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// InsufficientBalanceError reports the current balance and the requested
// amount so callers can present a corrective message.
type InsufficientBalanceError struct {
	Balance  int64
	Required int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: have %d, need %d (short %d)", e.Balance, e.Required, e.Shortfall())
}

// Shortfall is how many points the account is missing.
func (e *InsufficientBalanceError) Shortfall() int64 {
	return e.Required - e.Balance
}

func (e *InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientBalance
}

// InvalidAmount builds an ErrInvalidAmount with a caller-facing reason.
func InvalidAmount(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidAmount, reason)
}

// Unavailable wraps a storage error as ErrStoreUnavailable.
func Unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
