package domain

import (
	"time"

	"github.com/shopspring/decimal"

	ledgerErrors "github.com/keebs5225/TrackVault/internal/ledger/errors"
)

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

func IsValidFrequency(frequency Frequency) bool {
	switch frequency {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// RecurringTemplate generates one transaction per elapsed period.
// NextRunDate is the earliest not-yet-materialized occurrence and is
// advanced exclusively by the materializer, monotonically.
type RecurringTemplate struct {
	ID          int             `json:"recurring_id"`
	UserID      string          `json:"user_id"`
	AccountID   int             `json:"account_id"`
	Amount      decimal.Decimal `json:"amount"`
	Direction   Direction       `json:"direction"`
	Frequency   Frequency       `json:"frequency"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     *time.Time      `json:"end_date,omitempty"`
	NextRunDate time.Time       `json:"next_run_date"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (t *RecurringTemplate) Validate() error {
	if !t.Amount.IsPositive() {
		return ledgerErrors.ErrInvalidAmount
	}
	if !IsValidDirection(t.Direction) {
		return ledgerErrors.NewValidationError("Direction must be 'deposit' or 'withdrawal'")
	}
	if !IsValidFrequency(t.Frequency) {
		return ledgerErrors.NewValidationError("Frequency must be one of: daily, weekly, monthly, yearly")
	}
	if t.StartDate.IsZero() {
		return ledgerErrors.NewValidationError("Start date must be set")
	}
	if t.EndDate != nil && t.EndDate.Before(t.StartDate) {
		return ledgerErrors.NewValidationError("End date must not be before start date")
	}
	if len(t.Title) > 100 {
		return ledgerErrors.NewValidationError("Title must be of length less than 100")
	}
	if len(t.Description) > 200 {
		return ledgerErrors.NewValidationError("Description must be of length less than 200")
	}
	return nil
}

// Expired reports whether the schedule is exhausted: the next occurrence
// would fall after the end date. Expired templates stay in the store for
// history but never materialize again.
func (t *RecurringTemplate) Expired() bool {
	return t.EndDate != nil && t.NextRunDate.After(*t.EndDate)
}

type RecurringTemplateRepository interface {
	Save(template *RecurringTemplate) error
	FindByUser(userID string) ([]RecurringTemplate, error)
	FindByID(recurringID int, userID string) (*RecurringTemplate, error)
	Update(template *RecurringTemplate) error
	Delete(recurringID int, userID string) error

	// FindDue returns templates with next_run_date <= now that are not
	// expired, across all users.
	FindDue(now time.Time) ([]RecurringTemplate, error)
	Begin() (Tx, error)
	// LockDueTx re-reads one due template under lock inside tx; nil without
	// error means the row is gone, no longer due, or held by a concurrent
	// scan, and the caller must skip it.
	LockDueTx(tx Tx, recurringID int, now time.Time) (*RecurringTemplate, error)
	UpdateNextRunDateTx(tx Tx, recurringID int, next time.Time) error
}
