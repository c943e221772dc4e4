package domain

import (
	"time"

	"github.com/shopspring/decimal"

	ledgerErrors "github.com/keebs5225/TrackVault/internal/ledger/errors"
)

type Direction string

const (
	DirectionDeposit    Direction = "deposit"
	DirectionWithdrawal Direction = "withdrawal"
)

func IsValidDirection(direction Direction) bool {
	return direction == DirectionDeposit || direction == DirectionWithdrawal
}

type Transaction struct {
	ID          int             `json:"transaction_id"`
	UserID      string          `json:"user_id"`
	AccountID   int             `json:"account_id"`
	Amount      decimal.Decimal `json:"amount"`
	Direction   Direction       `json:"direction"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (t *Transaction) Validate() error {
	if !t.Amount.IsPositive() {
		return ledgerErrors.ErrInvalidAmount
	}
	if !IsValidDirection(t.Direction) {
		return ledgerErrors.NewValidationError("Direction must be 'deposit' or 'withdrawal'")
	}
	if len(t.Description) > 200 {
		return ledgerErrors.NewValidationError("Description must be of length less than 200")
	}
	return nil
}

// SignedAmount is the delta this transaction contributes to its account's
// balance: +amount for a deposit, -amount for a withdrawal.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Direction == DirectionWithdrawal {
		return t.Amount.Neg()
	}
	return t.Amount
}

type TransactionFilter struct {
	AccountID *int
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Page      int
}

type TransactionRepository interface {
	Begin() (Tx, error)
	SaveTx(tx Tx, transaction *Transaction) error
	FindByID(transactionID int, userID string) (*Transaction, error)

	// FindByIDForUpdate locks the row for the duration of tx so concurrent
	// edits of the same transaction serialize.
	FindByIDForUpdate(tx Tx, transactionID int, userID string) (*Transaction, error)
	UpdateTx(tx Tx, transaction *Transaction) error
	DeleteTx(tx Tx, transactionID int, userID string) error
	FindByUser(userID string, filter TransactionFilter) ([]Transaction, error)
	SumByAccount(accountID int, userID string) (decimal.Decimal, error)
}
