package application

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keebs5225/TrackVault/internal/ledger/domain"
	ledgerErrors "github.com/keebs5225/TrackVault/internal/ledger/errors"
	"github.com/keebs5225/TrackVault/internal/ledger/infrastructure"
)

func newTestAccount(t *testing.T, ledger *infrastructure.MockLedger, userID string) *domain.Account {
	t.Helper()
	account := &domain.Account{UserID: userID, Name: "Checking", Type: "checking", Currency: "USD"}
	require.NoError(t, ledger.AccountRepository().Save(account))
	return account
}

func decf(value float64) decimal.Decimal {
	return decimal.NewFromFloat(value)
}

func TestBalanceInvariant_CreateUpdateDelete(t *testing.T) {
	ledger := infrastructure.NewMockLedger()
	service := NewTransactionService(ledger.TransactionRepository(), ledger.AccountRepository())
	account := newTestAccount(t, ledger, "user-1")

	deposit := &domain.Transaction{
		UserID: "user-1", AccountID: account.ID,
		Amount: decf(100), Direction: domain.DirectionDeposit,
		Date: time.Now(), Description: "Paycheck",
	}
	require.NoError(t, service.CreateTransaction(deposit))
	assert.True(t, ledger.AccountBalance(account.ID).Equal(decf(100)))

	withdrawal := &domain.Transaction{
		UserID: "user-1", AccountID: account.ID,
		Amount: decf(30), Direction: domain.DirectionWithdrawal,
		Date: time.Now(), Description: "Groceries",
	}
	require.NoError(t, service.CreateTransaction(withdrawal))
	assert.True(t, ledger.AccountBalance(account.ID).Equal(decf(70)))

	// Flipping the withdrawal to a deposit reverses -30 and applies +30.
	newDirection := domain.DirectionDeposit
	updated, err := service.UpdateTransaction("user-1", withdrawal.ID, TransactionUpdate{Direction: &newDirection})
	require.NoError(t, err)
	assert.Equal(t, domain.DirectionDeposit, updated.Direction)
	assert.True(t, ledger.AccountBalance(account.ID).Equal(decf(130)))

	require.NoError(t, service.DeleteTransaction("user-1", deposit.ID))
	assert.True(t, ledger.AccountBalance(account.ID).Equal(decf(30)))

	// Balance always equals the signed sum of the live transactions.
	sum, err := ledger.TransactionRepository().SumByAccount(account.ID, "user-1")
	require.NoError(t, err)
	assert.True(t, ledger.AccountBalance(account.ID).Equal(sum))
}

func TestCreateTransaction_RejectsNonPositiveAmount(t *testing.T) {
	ledger := infrastructure.NewMockLedger()
	service := NewTransactionService(ledger.TransactionRepository(), ledger.AccountRepository())
	account := newTestAccount(t, ledger, "user-1")

	for _, amount := range []decimal.Decimal{decimal.Zero, decf(-10)} {
		err := service.CreateTransaction(&domain.Transaction{
			UserID: "user-1", AccountID: account.ID,
			Amount: amount, Direction: domain.DirectionDeposit, Date: time.Now(),
		})
		assert.ErrorIs(t, err, ledgerErrors.ErrInvalidAmount)
	}
	assert.True(t, ledger.AccountBalance(account.ID).IsZero())
	assert.Empty(t, ledger.Transactions)
}

func TestCreateTransaction_RejectsUnknownOrForeignAccount(t *testing.T) {
	ledger := infrastructure.NewMockLedger()
	service := NewTransactionService(ledger.TransactionRepository(), ledger.AccountRepository())
	account := newTestAccount(t, ledger, "user-1")

	err := service.CreateTransaction(&domain.Transaction{
		UserID: "user-1", AccountID: 999,
		Amount: decf(10), Direction: domain.DirectionDeposit, Date: time.Now(),
	})
	assert.ErrorIs(t, err, ledgerErrors.ErrInvalidAccount)

	// Another user cannot post into user-1's account.
	err = service.CreateTransaction(&domain.Transaction{
		UserID: "user-2", AccountID: account.ID,
		Amount: decf(10), Direction: domain.DirectionDeposit, Date: time.Now(),
	})
	assert.ErrorIs(t, err, ledgerErrors.ErrInvalidAccount)
	assert.Empty(t, ledger.Transactions)
}

func TestCreateTransaction_RejectsDeactivatedAccount(t *testing.T) {
	ledger := infrastructure.NewMockLedger()
	service := NewTransactionService(ledger.TransactionRepository(), ledger.AccountRepository())
	account := newTestAccount(t, ledger, "user-1")
	require.NoError(t, ledger.AccountRepository().Deactivate(account.ID, "user-1"))

	err := service.CreateTransaction(&domain.Transaction{
		UserID: "user-1", AccountID: account.ID,
		Amount: decf(10), Direction: domain.DirectionDeposit, Date: time.Now(),
	})
	assert.ErrorIs(t, err, ledgerErrors.ErrInvalidAccount)
}

func TestUpdateTransaction_MovesBetweenAccounts(t *testing.T) {
	ledger := infrastructure.NewMockLedger()
	service := NewTransactionService(ledger.TransactionRepository(), ledger.AccountRepository())
	first := newTestAccount(t, ledger, "user-1")
	second := &domain.Account{UserID: "user-1", Name: "Savings", Type: "savings", Currency: "USD"}
	require.NoError(t, ledger.AccountRepository().Save(second))

	deposit := &domain.Transaction{
		UserID: "user-1", AccountID: first.ID,
		Amount: decf(50), Direction: domain.DirectionDeposit, Date: time.Now(),
	}
	require.NoError(t, service.CreateTransaction(deposit))

	_, err := service.UpdateTransaction("user-1", deposit.ID, TransactionUpdate{AccountID: &second.ID})
	require.NoError(t, err)

	assert.True(t, ledger.AccountBalance(first.ID).IsZero())
	assert.True(t, ledger.AccountBalance(second.ID).Equal(decf(50)))
}

func TestUpdateTransaction_OwnershipIsolation(t *testing.T) {
	ledger := infrastructure.NewMockLedger()
	service := NewTransactionService(ledger.TransactionRepository(), ledger.AccountRepository())
	account := newTestAccount(t, ledger, "user-1")

	deposit := &domain.Transaction{
		UserID: "user-1", AccountID: account.ID,
		Amount: decf(25), Direction: domain.DirectionDeposit, Date: time.Now(),
	}
	require.NoError(t, service.CreateTransaction(deposit))

	amount := decf(1000)
	_, err := service.UpdateTransaction("user-2", deposit.ID, TransactionUpdate{Amount: &amount})
	assert.ErrorIs(t, err, ledgerErrors.ErrTransactionNotFound)

	err = service.DeleteTransaction("user-2", deposit.ID)
	assert.ErrorIs(t, err, ledgerErrors.ErrTransactionNotFound)

	assert.True(t, ledger.AccountBalance(account.ID).Equal(decf(25)))
}

func TestConcurrentCreates_NoLostBalanceUpdates(t *testing.T) {
	ledger := infrastructure.NewMockLedger()
	service := NewTransactionService(ledger.TransactionRepository(), ledger.AccountRepository())
	account := newTestAccount(t, ledger, "user-1")

	const workers = 32
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			direction := domain.DirectionDeposit
			if i%2 == 1 {
				direction = domain.DirectionWithdrawal
			}
			err := service.CreateTransaction(&domain.Transaction{
				UserID: "user-1", AccountID: account.ID,
				Amount: decf(10), Direction: direction, Date: time.Now(),
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	// Half deposits, half withdrawals of equal size: every delta must have
	// landed, so the balance is back at zero and matches the signed sum.
	sum, err := ledger.TransactionRepository().SumByAccount(account.ID, "user-1")
	require.NoError(t, err)
	assert.True(t, ledger.AccountBalance(account.ID).IsZero())
	assert.True(t, sum.IsZero())
	assert.Len(t, ledger.Transactions, workers)
}
