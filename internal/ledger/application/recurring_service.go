package application

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/keebs5225/TrackVault/internal/ledger/domain"
	ledgerErrors "github.com/keebs5225/TrackVault/internal/ledger/errors"
)

// RecurringService owns recurring-template CRUD and the daily
// materialization pass that turns elapsed occurrences into transactions.
type RecurringService struct {
	templates    domain.RecurringTemplateRepository
	transactions domain.TransactionRepository
	accounts     domain.AccountRepository
}

func NewRecurringService(
	templates domain.RecurringTemplateRepository,
	transactions domain.TransactionRepository,
	accounts domain.AccountRepository,
) *RecurringService {
	return &RecurringService{templates: templates, transactions: transactions, accounts: accounts}
}

type TemplateUpdate struct {
	AccountID   *int              `json:"account_id"`
	Amount      *decimal.Decimal  `json:"amount"`
	Direction   *domain.Direction `json:"direction"`
	Frequency   *domain.Frequency `json:"frequency"`
	StartDate   *time.Time        `json:"start_date"`
	EndDate     *time.Time        `json:"end_date"`
	NextRunDate *time.Time        `json:"next_run_date"`
	Title       *string           `json:"title"`
	Description *string           `json:"description"`
}

func (s *RecurringService) CreateTemplate(template *domain.RecurringTemplate) error {
	template.Amount = template.Amount.Round(2)
	if template.NextRunDate.IsZero() {
		template.NextRunDate = template.StartDate
	}
	if err := template.Validate(); err != nil {
		return err
	}
	if err := s.checkTemplateAccount(template.AccountID, template.UserID); err != nil {
		return err
	}
	return s.templates.Save(template)
}

// checkTemplateAccount confirms the target account exists, belongs to the
// template owner and is active before the scheduler ever touches it. A
// missing, foreign or deactivated account is an invalid target.
func (s *RecurringService) checkTemplateAccount(accountID int, userID string) error {
	account, err := s.accounts.FindByID(accountID, userID)
	if err != nil {
		if errors.Is(err, ledgerErrors.ErrAccountNotFound) {
			return ledgerErrors.ErrInvalidAccount
		}
		return err
	}
	if !account.IsActive {
		return ledgerErrors.ErrInvalidAccount
	}
	return nil
}

func (s *RecurringService) GetUserTemplates(userID string) ([]domain.RecurringTemplate, error) {
	templates, err := s.templates.FindByUser(userID)
	if err != nil {
		return nil, err
	}
	if templates == nil {
		return []domain.RecurringTemplate{}, nil
	}
	return templates, nil
}

func (s *RecurringService) GetTemplate(userID string, recurringID int) (*domain.RecurringTemplate, error) {
	return s.templates.FindByID(recurringID, userID)
}

// UpdateTemplate edits scheduling state for future scans only; transactions
// already materialized are untouched.
func (s *RecurringService) UpdateTemplate(userID string, recurringID int, changes TemplateUpdate) (*domain.RecurringTemplate, error) {
	template, err := s.templates.FindByID(recurringID, userID)
	if err != nil {
		return nil, err
	}
	if changes.AccountID != nil {
		template.AccountID = *changes.AccountID
	}
	if changes.Amount != nil {
		template.Amount = changes.Amount.Round(2)
	}
	if changes.Direction != nil {
		template.Direction = *changes.Direction
	}
	if changes.Frequency != nil {
		template.Frequency = *changes.Frequency
	}
	if changes.StartDate != nil {
		template.StartDate = *changes.StartDate
	}
	if changes.EndDate != nil {
		template.EndDate = changes.EndDate
	}
	if changes.NextRunDate != nil {
		template.NextRunDate = *changes.NextRunDate
	}
	if changes.Title != nil {
		template.Title = *changes.Title
	}
	if changes.Description != nil {
		template.Description = *changes.Description
	}
	if err := template.Validate(); err != nil {
		return nil, err
	}
	// A patch that explicitly points the schedule past its end can never
	// fire; reject it instead of storing a contradiction. Ending a template
	// early by moving end_date into the past stays allowed.
	if changes.NextRunDate != nil && template.Expired() {
		return nil, ledgerErrors.ErrScheduleExhausted
	}
	if changes.AccountID != nil {
		if err := s.checkTemplateAccount(template.AccountID, userID); err != nil {
			return nil, err
		}
	}
	if err := s.templates.Update(template); err != nil {
		return nil, err
	}
	return template, nil
}

func (s *RecurringService) DeleteTemplate(userID string, recurringID int) error {
	return s.templates.Delete(recurringID, userID)
}

// ProcessDueTemplates runs one scan pass: every template whose next
// occurrence is due gets all elapsed occurrences materialized. A failing
// template is logged and skipped so it never blocks the rest of the batch;
// it is retried on the next pass. Safe to invoke more than once per day:
// a second pass finds nothing due.
func (s *RecurringService) ProcessDueTemplates(ctx context.Context, now time.Time) error {
	due, err := s.templates.FindDue(now)
	if err != nil {
		return err
	}

	for i := range due {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		template := &due[i]
		generated, err := s.materializeTemplate(template, now)
		if err != nil {
			log.Printf("recurring: template %d skipped: %v", template.ID, err)
			continue
		}
		log.Printf("recurring: template %d materialized %d transaction(s), next run %s",
			template.ID, generated, template.NextRunDate.Format("2006-01-02"))
	}
	return nil
}

// materializeTemplate generates one transaction per elapsed period and
// advances the schedule pointer once per occurrence, all inside one store
// transaction. Catch-up, not skip-ahead: a daily template three days behind
// yields three transactions.
func (s *RecurringService) materializeTemplate(template *domain.RecurringTemplate, now time.Time) (generated int, err error) {
	if !domain.IsValidFrequency(template.Frequency) {
		return 0, ledgerErrors.NewValidationError("Frequency must be one of: daily, weekly, monthly, yearly")
	}

	tx, err := s.templates.Begin()
	if err != nil {
		return 0, err
	}
	defer func() {
		if p := recover(); p != nil {
			safeRollback(tx)
			panic(p)
		} else if err != nil {
			safeRollback(tx)
		} else {
			err = tx.Commit()
		}
	}()

	// Re-read the template under lock: a concurrent scan may have advanced
	// next_run_date (or deleted the row) since FindDue returned its snapshot.
	locked, err := s.templates.LockDueTx(tx, template.ID, now)
	if err != nil {
		return 0, err
	}
	if locked == nil {
		return 0, nil
	}
	*template = *locked

	next := template.NextRunDate
	for !next.After(now) {
		if template.EndDate != nil && next.After(*template.EndDate) {
			break
		}
		occurrence := &domain.Transaction{
			UserID:      template.UserID,
			AccountID:   template.AccountID,
			Amount:      template.Amount,
			Direction:   template.Direction,
			Date:        next,
			Description: occurrenceDescription(template),
		}
		if err = s.accounts.AdjustBalance(tx, occurrence.AccountID, occurrence.UserID, occurrence.SignedAmount()); err != nil {
			return 0, err
		}
		if err = s.transactions.SaveTx(tx, occurrence); err != nil {
			return 0, err
		}
		next = domain.NextOccurrence(next, template.Frequency)
		generated++
	}

	if err = s.templates.UpdateNextRunDateTx(tx, template.ID, next); err != nil {
		return 0, err
	}
	template.NextRunDate = next
	return generated, nil
}

func occurrenceDescription(template *domain.RecurringTemplate) string {
	if template.Title != "" {
		return template.Title
	}
	return template.Description
}
