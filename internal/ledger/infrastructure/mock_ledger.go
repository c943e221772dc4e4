package infrastructure

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/keebs5225/TrackVault/internal/ledger/domain"
	ledgerErrors "github.com/keebs5225/TrackVault/internal/ledger/errors"
)

// MockLedger is an in-memory store shared by the mock repositories below,
// used in application-layer tests. Balance adjustments are atomic under the
// store mutex, mirroring the SQL repositories' in-store increments.
type MockLedger struct {
	mu                sync.Mutex
	nextAccountID     int
	nextTransactionID int
	nextTemplateID    int
	Accounts          map[int]*domain.Account
	Transactions      map[int]*domain.Transaction
	Templates         map[int]*domain.RecurringTemplate

	// FailAdjustBalance, when set, is returned by every AdjustBalance call.
	FailAdjustBalance error
}

func NewMockLedger() *MockLedger {
	return &MockLedger{
		Accounts:     make(map[int]*domain.Account),
		Transactions: make(map[int]*domain.Transaction),
		Templates:    make(map[int]*domain.RecurringTemplate),
	}
}

func (m *MockLedger) AccountRepository() *MockAccountRepository {
	return &MockAccountRepository{ledger: m}
}

func (m *MockLedger) TransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{ledger: m}
}

func (m *MockLedger) TemplateRepository() *MockTemplateRepository {
	return &MockTemplateRepository{ledger: m}
}

// AccountBalance reads an account balance regardless of owner, for
// assertions.
func (m *MockLedger) AccountBalance(accountID int) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	if account, exists := m.Accounts[accountID]; exists {
		return account.Balance
	}
	return decimal.Zero
}

type mockTx struct{}

func (mockTx) Commit() error   { return nil }
func (mockTx) Rollback() error { return nil }

// --- AccountRepository ---

type MockAccountRepository struct {
	ledger *MockLedger
}

func (r *MockAccountRepository) Save(account *domain.Account) error {
	m := r.ledger
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextAccountID++
	account.ID = m.nextAccountID
	account.IsActive = true
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	stored := *account
	m.Accounts[account.ID] = &stored
	return nil
}

func (r *MockAccountRepository) FindByUser(userID string) ([]domain.Account, error) {
	m := r.ledger
	m.mu.Lock()
	defer m.mu.Unlock()
	var accounts []domain.Account
	for _, account := range m.Accounts {
		if account.UserID == userID && account.IsActive {
			accounts = append(accounts, *account)
		}
	}
	return accounts, nil
}

func (r *MockAccountRepository) FindByID(accountID int, userID string) (*domain.Account, error) {
	m := r.ledger
	m.mu.Lock()
	defer m.mu.Unlock()
	account, exists := m.Accounts[accountID]
	if !exists || account.UserID != userID {
		return nil, ledgerErrors.ErrAccountNotFound
	}
	found := *account
	return &found, nil
}

func (r *MockAccountRepository) Update(account *domain.Account) error {
	m := r.ledger
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, exists := m.Accounts[account.ID]
	if !exists || stored.UserID != account.UserID || !stored.IsActive {
		return ledgerErrors.ErrAccountNotFound
	}
	stored.Name = account.Name
	stored.Type = account.Type
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *MockAccountRepository) Deactivate(accountID int, userID string) error {
	m := r.ledger
	m.mu.Lock()
	defer m.mu.Unlock()
	account, exists := m.Accounts[accountID]
	if !exists || account.UserID != userID || !account.IsActive {
		return ledgerErrors.ErrAccountNotFound
	}
	account.IsActive = false
	return nil
}

func (r *MockAccountRepository) AdjustBalance(_ domain.Tx, accountID int, userID string, delta decimal.Decimal) error {
	m := r.ledger
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAdjustBalance != nil {
		return m.FailAdjustBalance
	}
	account, exists := m.Accounts[accountID]
	if !exists || account.UserID != userID || !account.IsActive {
		return ledgerErrors.ErrInvalidAccount
	}
	account.Balance = account.Balance.Add(delta)
	return nil
}

// --- TransactionRepository ---

type MockTransactionRepository struct {
	ledger *MockLedger
}

func (r *MockTransactionRepository) Begin() (domain.Tx, error) {
	return mockTx{}, nil
}

func (r *MockTransactionRepository) SaveTx(_ domain.Tx, transaction *domain.Transaction) error {
	m := r.ledger
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextTransactionID++
	transaction.ID = m.nextTransactionID
	transaction.CreatedAt = time.Now()
	transaction.UpdatedAt = transaction.CreatedAt
	stored := *transaction
	m.Transactions[transaction.ID] = &stored
	return nil
}

func (r *MockTransactionRepository) find(transactionID int, userID string) (*domain.Transaction, error) {
	transaction, exists := r.ledger.Transactions[transactionID]
	if !exists || transaction.UserID != userID {
		return nil, ledgerErrors.ErrTransactionNotFound
	}
	found := *transaction
	return &found, nil
}

func (r *MockTransactionRepository) FindByID(transactionID int, userID string) (*domain.Transaction, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	return r.find(transactionID, userID)
}

func (r *MockTransactionRepository) FindByIDForUpdate(_ domain.Tx, transactionID int, userID string) (*domain.Transaction, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	return r.find(transactionID, userID)
}

func (r *MockTransactionRepository) UpdateTx(_ domain.Tx, transaction *domain.Transaction) error {
	m := r.ledger
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, exists := m.Transactions[transaction.ID]
	if !exists || stored.UserID != transaction.UserID {
		return ledgerErrors.ErrTransactionNotFound
	}
	updated := *transaction
	updated.CreatedAt = stored.CreatedAt
	updated.UpdatedAt = time.Now()
	m.Transactions[transaction.ID] = &updated
	return nil
}

func (r *MockTransactionRepository) DeleteTx(_ domain.Tx, transactionID int, userID string) error {
	m := r.ledger
	m.mu.Lock()
	defer m.mu.Unlock()
	transaction, exists := m.Transactions[transactionID]
	if !exists || transaction.UserID != userID {
		return ledgerErrors.ErrTransactionNotFound
	}
	delete(m.Transactions, transactionID)
	return nil
}

func (r *MockTransactionRepository) FindByUser(userID string, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	m := r.ledger
	m.mu.Lock()
	defer m.mu.Unlock()
	var transactions []domain.Transaction
	for _, transaction := range m.Transactions {
		if transaction.UserID != userID {
			continue
		}
		if filter.AccountID != nil && transaction.AccountID != *filter.AccountID {
			continue
		}
		if filter.StartDate != nil && transaction.Date.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && transaction.Date.After(*filter.EndDate) {
			continue
		}
		transactions = append(transactions, *transaction)
	}
	return transactions, nil
}

func (r *MockTransactionRepository) SumByAccount(accountID int, userID string) (decimal.Decimal, error) {
	m := r.ledger
	m.mu.Lock()
	defer m.mu.Unlock()
	sum := decimal.Zero
	for _, transaction := range m.Transactions {
		if transaction.AccountID == accountID && transaction.UserID == userID {
			sum = sum.Add(transaction.SignedAmount())
		}
	}
	return sum, nil
}

// --- RecurringTemplateRepository ---

type MockTemplateRepository struct {
	ledger *MockLedger
}

func (r *MockTemplateRepository) Begin() (domain.Tx, error) {
	return mockTx{}, nil
}

func (r *MockTemplateRepository) Save(template *domain.RecurringTemplate) error {
	m := r.ledger
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextTemplateID++
	template.ID = m.nextTemplateID
	template.CreatedAt = time.Now()
	template.UpdatedAt = template.CreatedAt
	stored := *template
	m.Templates[template.ID] = &stored
	return nil
}

func (r *MockTemplateRepository) FindByUser(userID string) ([]domain.RecurringTemplate, error) {
	m := r.ledger
	m.mu.Lock()
	defer m.mu.Unlock()
	var templates []domain.RecurringTemplate
	for _, template := range m.Templates {
		if template.UserID == userID {
			templates = append(templates, *template)
		}
	}
	return templates, nil
}

func (r *MockTemplateRepository) FindByID(recurringID int, userID string) (*domain.RecurringTemplate, error) {
	m := r.ledger
	m.mu.Lock()
	defer m.mu.Unlock()
	template, exists := m.Templates[recurringID]
	if !exists || template.UserID != userID {
		return nil, ledgerErrors.ErrTemplateNotFound
	}
	found := *template
	return &found, nil
}

func (r *MockTemplateRepository) Update(template *domain.RecurringTemplate) error {
	m := r.ledger
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, exists := m.Templates[template.ID]
	if !exists || stored.UserID != template.UserID {
		return ledgerErrors.ErrTemplateNotFound
	}
	updated := *template
	updated.CreatedAt = stored.CreatedAt
	updated.UpdatedAt = time.Now()
	m.Templates[template.ID] = &updated
	return nil
}

func (r *MockTemplateRepository) Delete(recurringID int, userID string) error {
	m := r.ledger
	m.mu.Lock()
	defer m.mu.Unlock()
	template, exists := m.Templates[recurringID]
	if !exists || template.UserID != userID {
		return ledgerErrors.ErrTemplateNotFound
	}
	delete(m.Templates, recurringID)
	return nil
}

func (r *MockTemplateRepository) FindDue(now time.Time) ([]domain.RecurringTemplate, error) {
	m := r.ledger
	m.mu.Lock()
	defer m.mu.Unlock()
	var due []domain.RecurringTemplate
	for _, template := range m.Templates {
		if template.NextRunDate.After(now) || template.Expired() {
			continue
		}
		due = append(due, *template)
	}
	return due, nil
}

func (r *MockTemplateRepository) LockDueTx(_ domain.Tx, recurringID int, now time.Time) (*domain.RecurringTemplate, error) {
	m := r.ledger
	m.mu.Lock()
	defer m.mu.Unlock()
	template, exists := m.Templates[recurringID]
	if !exists || template.NextRunDate.After(now) || template.Expired() {
		return nil, nil
	}
	locked := *template
	return &locked, nil
}

func (r *MockTemplateRepository) UpdateNextRunDateTx(_ domain.Tx, recurringID int, next time.Time) error {
	m := r.ledger
	m.mu.Lock()
	defer m.mu.Unlock()
	template, exists := m.Templates[recurringID]
	if !exists {
		return ledgerErrors.ErrTemplateNotFound
	}
	if next.After(template.NextRunDate) {
		template.NextRunDate = next
		template.UpdatedAt = time.Now()
	}
	return nil
}
