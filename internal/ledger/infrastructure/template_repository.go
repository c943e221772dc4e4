package infrastructure

import (
	"database/sql"
	"errors"
	"time"

	"github.com/keebs5225/TrackVault/internal/ledger/domain"
	ledgerErrors "github.com/keebs5225/TrackVault/internal/ledger/errors"
)

const templateColumns = `recurring_id, user_id, account_id, amount, direction, frequency, start_date, end_date, next_run_date, title, description, created_at, updated_at`

type RecurringTemplateRepository struct {
	db *sql.DB
}

func NewRecurringTemplateRepository(db *sql.DB) *RecurringTemplateRepository {
	return &RecurringTemplateRepository{db: db}
}

func (r *RecurringTemplateRepository) Begin() (domain.Tx, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, ledgerErrors.StoreUnavailable(err)
	}
	return tx, nil
}

func (r *RecurringTemplateRepository) Save(template *domain.RecurringTemplate) error {
	query := `
		INSERT INTO recurring_templates (user_id, account_id, amount, direction, frequency, start_date, end_date, next_run_date, title, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING recurring_id, created_at, updated_at
	`
	err := r.db.QueryRow(query, template.UserID, template.AccountID, template.Amount, template.Direction,
		template.Frequency, template.StartDate, template.EndDate, template.NextRunDate,
		template.Title, template.Description).
		Scan(&template.ID, &template.CreatedAt, &template.UpdatedAt)
	if err != nil {
		return ledgerErrors.StoreUnavailable(err)
	}
	return nil
}

func scanTemplates(rows *sql.Rows) ([]domain.RecurringTemplate, error) {
	defer rows.Close()
	var templates []domain.RecurringTemplate
	for rows.Next() {
		var template domain.RecurringTemplate
		if err := rows.Scan(&template.ID, &template.UserID, &template.AccountID, &template.Amount,
			&template.Direction, &template.Frequency, &template.StartDate, &template.EndDate,
			&template.NextRunDate, &template.Title, &template.Description,
			&template.CreatedAt, &template.UpdatedAt); err != nil {
			return nil, ledgerErrors.StoreUnavailable(err)
		}
		templates = append(templates, template)
	}
	return templates, rows.Err()
}

func (r *RecurringTemplateRepository) FindByUser(userID string) ([]domain.RecurringTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM recurring_templates WHERE user_id = $1 ORDER BY recurring_id`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, ledgerErrors.StoreUnavailable(err)
	}
	return scanTemplates(rows)
}

func (r *RecurringTemplateRepository) FindByID(recurringID int, userID string) (*domain.RecurringTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM recurring_templates WHERE recurring_id = $1 AND user_id = $2`
	var template domain.RecurringTemplate
	err := r.db.QueryRow(query, recurringID, userID).
		Scan(&template.ID, &template.UserID, &template.AccountID, &template.Amount,
			&template.Direction, &template.Frequency, &template.StartDate, &template.EndDate,
			&template.NextRunDate, &template.Title, &template.Description,
			&template.CreatedAt, &template.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledgerErrors.ErrTemplateNotFound
		}
		return nil, ledgerErrors.StoreUnavailable(err)
	}
	return &template, nil
}

func (r *RecurringTemplateRepository) Update(template *domain.RecurringTemplate) error {
	query := `
		UPDATE recurring_templates
		SET account_id = $1, amount = $2, direction = $3, frequency = $4, start_date = $5,
			end_date = $6, next_run_date = $7, title = $8, description = $9, updated_at = NOW()
		WHERE recurring_id = $10 AND user_id = $11
	`
	result, err := r.db.Exec(query, template.AccountID, template.Amount, template.Direction,
		template.Frequency, template.StartDate, template.EndDate, template.NextRunDate,
		template.Title, template.Description, template.ID, template.UserID)
	if err != nil {
		return ledgerErrors.StoreUnavailable(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return ledgerErrors.StoreUnavailable(err)
	}
	if affected == 0 {
		return ledgerErrors.ErrTemplateNotFound
	}
	return nil
}

func (r *RecurringTemplateRepository) Delete(recurringID int, userID string) error {
	result, err := r.db.Exec(`DELETE FROM recurring_templates WHERE recurring_id = $1 AND user_id = $2`, recurringID, userID)
	if err != nil {
		return ledgerErrors.StoreUnavailable(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return ledgerErrors.StoreUnavailable(err)
	}
	if affected == 0 {
		return ledgerErrors.ErrTemplateNotFound
	}
	return nil
}

// FindDue excludes exhausted templates in the query itself, so a template
// advanced past its end date can never be picked up again.
func (r *RecurringTemplateRepository) FindDue(now time.Time) ([]domain.RecurringTemplate, error) {
	query := `
		SELECT ` + templateColumns + `
		FROM recurring_templates
		WHERE next_run_date <= $1 AND (end_date IS NULL OR next_run_date <= end_date)
		ORDER BY recurring_id
	`
	rows, err := r.db.Query(query, now)
	if err != nil {
		return nil, ledgerErrors.StoreUnavailable(err)
	}
	return scanTemplates(rows)
}

// LockDueTx re-reads one due template inside the materializer's transaction.
// SKIP LOCKED makes overlapping scan passes fight over rows instead of
// double-materializing them: the loser sees no row and moves on.
func (r *RecurringTemplateRepository) LockDueTx(tx domain.Tx, recurringID int, now time.Time) (*domain.RecurringTemplate, error) {
	sqlTx, err := sqlTxOf(tx, "LockDueTx")
	if err != nil {
		return nil, err
	}
	query := `
		SELECT ` + templateColumns + `
		FROM recurring_templates
		WHERE recurring_id = $1 AND next_run_date <= $2 AND (end_date IS NULL OR next_run_date <= end_date)
		FOR UPDATE SKIP LOCKED
	`
	var template domain.RecurringTemplate
	err = sqlTx.QueryRow(query, recurringID, now).
		Scan(&template.ID, &template.UserID, &template.AccountID, &template.Amount,
			&template.Direction, &template.Frequency, &template.StartDate, &template.EndDate,
			&template.NextRunDate, &template.Title, &template.Description,
			&template.CreatedAt, &template.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, ledgerErrors.StoreUnavailable(err)
	}
	return &template, nil
}

func (r *RecurringTemplateRepository) UpdateNextRunDateTx(tx domain.Tx, recurringID int, next time.Time) error {
	sqlTx, err := sqlTxOf(tx, "UpdateNextRunDateTx")
	if err != nil {
		return err
	}
	// next_run_date is monotonic; the guard keeps a stale concurrent scan
	// from rewinding the schedule pointer.
	query := `
		UPDATE recurring_templates
		SET next_run_date = $1, updated_at = NOW()
		WHERE recurring_id = $2 AND next_run_date <= $1
	`
	result, err := sqlTx.Exec(query, next, recurringID)
	if err != nil {
		return ledgerErrors.StoreUnavailable(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return ledgerErrors.StoreUnavailable(err)
	}
	if affected == 0 {
		return ledgerErrors.ErrTemplateNotFound
	}
	return nil
}
