package application

import (
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/keebs5225/TrackVault/internal/ledger/domain"
)

// TransactionService keeps every account balance equal to the signed sum of
// the account's transactions. Each mutation pairs the transaction write with
// the implied balance delta inside one store transaction, and the delta is
// applied as an in-store increment so concurrent mutations against the same
// account serialize without lost updates.
type TransactionService struct {
	transactions domain.TransactionRepository
	accounts     domain.AccountRepository
}

func NewTransactionService(transactions domain.TransactionRepository, accounts domain.AccountRepository) *TransactionService {
	return &TransactionService{transactions: transactions, accounts: accounts}
}

// TransactionUpdate carries the fields a PATCH may change; nil leaves the
// stored value untouched.
type TransactionUpdate struct {
	AccountID   *int             `json:"account_id"`
	Amount      *decimal.Decimal `json:"amount"`
	Direction   *domain.Direction `json:"direction"`
	Date        *time.Time       `json:"date"`
	Description *string          `json:"description"`
}

func safeRollback(tx domain.Tx) {
	if err := tx.Rollback(); err != nil {
		log.Printf("Error during transaction rollback: %v", err)
	}
}

func (s *TransactionService) CreateTransaction(transaction *domain.Transaction) (err error) {
	transaction.Amount = transaction.Amount.Round(2)
	if err := transaction.Validate(); err != nil {
		return err
	}
	if transaction.Date.IsZero() {
		transaction.Date = time.Now().UTC()
	}

	tx, err := s.transactions.Begin()
	if err != nil {
		return err
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

	if err = s.accounts.AdjustBalance(tx, transaction.AccountID, transaction.UserID, transaction.SignedAmount()); err != nil {
		return err
	}
	if err = s.transactions.SaveTx(tx, transaction); err != nil {
		return err
	}
	return nil
}

// UpdateTransaction reverses the stored transaction's effect against its old
// account, applies the new effect against the (possibly different) new
// account and rewrites the row, all in one atomic unit. The row is locked
// for the duration, so concurrent edits of one transaction serialize.
func (s *TransactionService) UpdateTransaction(userID string, transactionID int, changes TransactionUpdate) (updated *domain.Transaction, err error) {
	tx, err := s.transactions.Begin()
	if err != nil {
		return nil, err
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

	old, err := s.transactions.FindByIDForUpdate(tx, transactionID, userID)
	if err != nil {
		return nil, err
	}

	next := *old
	if changes.AccountID != nil {
		next.AccountID = *changes.AccountID
	}
	if changes.Amount != nil {
		next.Amount = changes.Amount.Round(2)
	}
	if changes.Direction != nil {
		next.Direction = *changes.Direction
	}
	if changes.Date != nil {
		next.Date = *changes.Date
	}
	if changes.Description != nil {
		next.Description = *changes.Description
	}
	if err = next.Validate(); err != nil {
		return nil, err
	}

	if err = s.accounts.AdjustBalance(tx, old.AccountID, userID, old.SignedAmount().Neg()); err != nil {
		return nil, err
	}
	if err = s.accounts.AdjustBalance(tx, next.AccountID, userID, next.SignedAmount()); err != nil {
		return nil, err
	}
	if err = s.transactions.UpdateTx(tx, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

func (s *TransactionService) DeleteTransaction(userID string, transactionID int) (err error) {
	tx, err := s.transactions.Begin()
	if err != nil {
		return err
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

	old, err := s.transactions.FindByIDForUpdate(tx, transactionID, userID)
	if err != nil {
		return err
	}
	if err = s.accounts.AdjustBalance(tx, old.AccountID, userID, old.SignedAmount().Neg()); err != nil {
		return err
	}
	if err = s.transactions.DeleteTx(tx, transactionID, userID); err != nil {
		return err
	}
	return nil
}

func (s *TransactionService) GetTransaction(userID string, transactionID int) (*domain.Transaction, error) {
	return s.transactions.FindByID(transactionID, userID)
}

func (s *TransactionService) GetUserTransactions(userID string, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	transactions, err := s.transactions.FindByUser(userID, filter)
	if err != nil {
		return nil, err
	}
	if transactions == nil {
		return []domain.Transaction{}, nil
	}
	return transactions, nil
}
