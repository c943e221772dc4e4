package errors

import (
	"errors"
	"fmt"
)

type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func NewValidationError(msg string) error {
	return &ValidationError{Msg: msg}
}

func IsValidationError(err error) bool {
	var validationError *ValidationError
	ok := errors.As(err, &validationError)
	return ok
}

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrTemplateNotFound    = errors.New("recurring template not found")

	// ErrInvalidAccount covers a missing, deactivated or foreign-owned
	// account referenced by a balance mutation.
	ErrInvalidAccount = errors.New("invalid account")

	ErrInvalidAmount = NewValidationError("Amount must be greater than zero")

	// ErrScheduleExhausted marks a template past its end date. Terminal
	// state, not a failure.
	ErrScheduleExhausted = errors.New("recurring template past its end date")

	ErrStoreUnavailable = errors.New("store unavailable")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrTransactionNotFound) ||
		errors.Is(err, ErrTemplateNotFound)
}

// StoreUnavailable tags a transient store failure so callers can surface it
// as retryable.
func StoreUnavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
