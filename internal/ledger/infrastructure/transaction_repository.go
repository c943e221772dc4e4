package infrastructure

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/keebs5225/TrackVault/internal/ledger/domain"
	ledgerErrors "github.com/keebs5225/TrackVault/internal/ledger/errors"
)

const transactionColumns = `transaction_id, user_id, account_id, amount, direction, date, description, created_at, updated_at`

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Begin() (domain.Tx, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, ledgerErrors.StoreUnavailable(err)
	}
	return tx, nil
}

func sqlTxOf(tx domain.Tx, operation string) (*sql.Tx, error) {
	sqlTx, ok := tx.(*sql.Tx)
	if !ok {
		return nil, fmt.Errorf("%s requires a *sql.Tx, got %T", operation, tx)
	}
	return sqlTx, nil
}

func (r *TransactionRepository) SaveTx(tx domain.Tx, transaction *domain.Transaction) error {
	sqlTx, err := sqlTxOf(tx, "SaveTx")
	if err != nil {
		return err
	}
	query := `
		INSERT INTO transactions (user_id, account_id, amount, direction, date, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING transaction_id, created_at, updated_at
	`
	err = sqlTx.QueryRow(query, transaction.UserID, transaction.AccountID, transaction.Amount,
		transaction.Direction, transaction.Date, transaction.Description).
		Scan(&transaction.ID, &transaction.CreatedAt, &transaction.UpdatedAt)
	if err != nil {
		return ledgerErrors.StoreUnavailable(err)
	}
	return nil
}

func scanTransaction(row *sql.Row) (*domain.Transaction, error) {
	var transaction domain.Transaction
	err := row.Scan(&transaction.ID, &transaction.UserID, &transaction.AccountID, &transaction.Amount,
		&transaction.Direction, &transaction.Date, &transaction.Description,
		&transaction.CreatedAt, &transaction.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledgerErrors.ErrTransactionNotFound
		}
		return nil, ledgerErrors.StoreUnavailable(err)
	}
	return &transaction, nil
}

func (r *TransactionRepository) FindByID(transactionID int, userID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1 AND user_id = $2`
	return scanTransaction(r.db.QueryRow(query, transactionID, userID))
}

func (r *TransactionRepository) FindByIDForUpdate(tx domain.Tx, transactionID int, userID string) (*domain.Transaction, error) {
	sqlTx, err := sqlTxOf(tx, "FindByIDForUpdate")
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1 AND user_id = $2 FOR UPDATE`
	return scanTransaction(sqlTx.QueryRow(query, transactionID, userID))
}

func (r *TransactionRepository) UpdateTx(tx domain.Tx, transaction *domain.Transaction) error {
	sqlTx, err := sqlTxOf(tx, "UpdateTx")
	if err != nil {
		return err
	}
	query := `
		UPDATE transactions
		SET account_id = $1, amount = $2, direction = $3, date = $4, description = $5, updated_at = NOW()
		WHERE transaction_id = $6 AND user_id = $7
	`
	result, err := sqlTx.Exec(query, transaction.AccountID, transaction.Amount, transaction.Direction,
		transaction.Date, transaction.Description, transaction.ID, transaction.UserID)
	if err != nil {
		return ledgerErrors.StoreUnavailable(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return ledgerErrors.StoreUnavailable(err)
	}
	if affected == 0 {
		return ledgerErrors.ErrTransactionNotFound
	}
	return nil
}

func (r *TransactionRepository) DeleteTx(tx domain.Tx, transactionID int, userID string) error {
	sqlTx, err := sqlTxOf(tx, "DeleteTx")
	if err != nil {
		return err
	}
	result, err := sqlTx.Exec(`DELETE FROM transactions WHERE transaction_id = $1 AND user_id = $2`, transactionID, userID)
	if err != nil {
		return ledgerErrors.StoreUnavailable(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return ledgerErrors.StoreUnavailable(err)
	}
	if affected == 0 {
		return ledgerErrors.ErrTransactionNotFound
	}
	return nil
}

func (r *TransactionRepository) FindByUser(userID string, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = $1`
	args := []interface{}{userID}

	if filter.AccountID != nil {
		args = append(args, *filter.AccountID)
		query += ` AND account_id = $` + strconv.Itoa(len(args))
	}
	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		query += ` AND date >= $` + strconv.Itoa(len(args))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		query += ` AND date <= $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY date DESC, transaction_id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
		if filter.Page > 1 {
			args = append(args, (filter.Page-1)*filter.Limit)
			query += ` OFFSET $` + strconv.Itoa(len(args))
		}
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, ledgerErrors.StoreUnavailable(err)
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		var transaction domain.Transaction
		if err := rows.Scan(&transaction.ID, &transaction.UserID, &transaction.AccountID, &transaction.Amount,
			&transaction.Direction, &transaction.Date, &transaction.Description,
			&transaction.CreatedAt, &transaction.UpdatedAt); err != nil {
			return nil, ledgerErrors.StoreUnavailable(err)
		}
		transactions = append(transactions, transaction)
	}
	return transactions, rows.Err()
}

func (r *TransactionRepository) SumByAccount(accountID int, userID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN direction = 'deposit' THEN amount ELSE -amount END), 0)
		FROM transactions
		WHERE account_id = $1 AND user_id = $2
	`
	var sum decimal.Decimal
	if err := r.db.QueryRow(query, accountID, userID).Scan(&sum); err != nil {
		return decimal.Zero, ledgerErrors.StoreUnavailable(err)
	}
	return sum, nil
}
