package domain

import (
	"time"

	"github.com/shopspring/decimal"

	ledgerErrors "github.com/keebs5225/TrackVault/internal/ledger/errors"
)

var accountTypes = map[string]bool{
	"checking": true,
	"savings":  true,
	"credit":   true,
	"cash":     true,
}

func IsValidAccountType(accountType string) bool {
	return accountTypes[accountType]
}

// Account balance is derived state: it always equals the signed sum of the
// account's live transactions and is only ever mutated through
// AdjustBalance, together with the transaction write that caused it.
type Account struct {
	ID        int             `json:"account_id"`
	UserID    string          `json:"user_id"`
	Name      string          `json:"name"`
	Type      string          `json:"account_type"`
	Balance   decimal.Decimal `json:"balance"`
	Currency  string          `json:"currency"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (a *Account) Validate() error {
	if a.Name == "" {
		return ledgerErrors.NewValidationError("Account name must not be empty")
	}
	if len(a.Name) > 100 {
		return ledgerErrors.NewValidationError("Account name must be of length less than 100")
	}
	if !IsValidAccountType(a.Type) {
		return ledgerErrors.NewValidationError("Account type must be one of: checking, savings, credit, cash")
	}
	return nil
}

type AccountRepository interface {
	Save(account *Account) error
	FindByUser(userID string) ([]Account, error)
	FindByID(accountID int, userID string) (*Account, error)
	Update(account *Account) error
	Deactivate(accountID int, userID string) error

	// AdjustBalance applies delta to the account balance as an atomic
	// in-store increment, scoped to the owning user and active accounts.
	// It must never be implemented as read-compute-write in the caller.
	AdjustBalance(tx Tx, accountID int, userID string, delta decimal.Decimal) error
}
