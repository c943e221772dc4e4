package infrastructure

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/keebs5225/TrackVault/internal/ledger/domain"
	ledgerErrors "github.com/keebs5225/TrackVault/internal/ledger/errors"
)

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Save(account *domain.Account) error {
	query := `
		INSERT INTO accounts (user_id, name, account_type, balance, currency, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, TRUE, NOW(), NOW())
		RETURNING account_id, created_at, updated_at
	`
	err := r.db.QueryRow(query, account.UserID, account.Name, account.Type, account.Balance, account.Currency).
		Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return ledgerErrors.StoreUnavailable(err)
	}
	account.IsActive = true
	return nil
}

func (r *AccountRepository) FindByUser(userID string) ([]domain.Account, error) {
	query := `
		SELECT account_id, user_id, name, account_type, balance, currency, is_active, created_at, updated_at
		FROM accounts
		WHERE user_id = $1 AND is_active = TRUE
		ORDER BY account_id
	`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, ledgerErrors.StoreUnavailable(err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var account domain.Account
		if err := rows.Scan(&account.ID, &account.UserID, &account.Name, &account.Type,
			&account.Balance, &account.Currency, &account.IsActive, &account.CreatedAt, &account.UpdatedAt); err != nil {
			return nil, ledgerErrors.StoreUnavailable(err)
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func (r *AccountRepository) FindByID(accountID int, userID string) (*domain.Account, error) {
	query := `
		SELECT account_id, user_id, name, account_type, balance, currency, is_active, created_at, updated_at
		FROM accounts
		WHERE account_id = $1 AND user_id = $2
	`
	var account domain.Account
	err := r.db.QueryRow(query, accountID, userID).
		Scan(&account.ID, &account.UserID, &account.Name, &account.Type,
			&account.Balance, &account.Currency, &account.IsActive, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledgerErrors.ErrAccountNotFound
		}
		return nil, ledgerErrors.StoreUnavailable(err)
	}
	return &account, nil
}

func (r *AccountRepository) Update(account *domain.Account) error {
	query := `
		UPDATE accounts
		SET name = $1, account_type = $2, updated_at = NOW()
		WHERE account_id = $3 AND user_id = $4 AND is_active = TRUE
	`
	result, err := r.db.Exec(query, account.Name, account.Type, account.ID, account.UserID)
	if err != nil {
		return ledgerErrors.StoreUnavailable(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return ledgerErrors.StoreUnavailable(err)
	}
	if affected == 0 {
		return ledgerErrors.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) Deactivate(accountID int, userID string) error {
	query := `
		UPDATE accounts
		SET is_active = FALSE, updated_at = NOW()
		WHERE account_id = $1 AND user_id = $2 AND is_active = TRUE
	`
	result, err := r.db.Exec(query, accountID, userID)
	if err != nil {
		return ledgerErrors.StoreUnavailable(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return ledgerErrors.StoreUnavailable(err)
	}
	if affected == 0 {
		return ledgerErrors.ErrAccountNotFound
	}
	return nil
}

// AdjustBalance issues the increment to the store instead of computing the
// new balance in memory, so concurrent mutations against one account can
// never lose an update.
func (r *AccountRepository) AdjustBalance(tx domain.Tx, accountID int, userID string, delta decimal.Decimal) error {
	sqlTx, ok := tx.(*sql.Tx)
	if !ok {
		return fmt.Errorf("AdjustBalance requires a *sql.Tx, got %T", tx)
	}
	query := `
		UPDATE accounts
		SET balance = balance + $1, updated_at = NOW()
		WHERE account_id = $2 AND user_id = $3 AND is_active = TRUE
	`
	result, err := sqlTx.Exec(query, delta, accountID, userID)
	if err != nil {
		return ledgerErrors.StoreUnavailable(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return ledgerErrors.StoreUnavailable(err)
	}
	if affected == 0 {
		return ledgerErrors.ErrInvalidAccount
	}
	return nil
}
