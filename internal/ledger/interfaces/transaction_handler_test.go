package interfaces

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keebs5225/TrackVault/internal/ledger/domain"
)

func seedAccount(t *testing.T, fixture *handlerFixture, userID string) *domain.Account {
	t.Helper()
	account := &domain.Account{UserID: userID, Name: "Checking", Type: "checking", Currency: "USD"}
	require.NoError(t, fixture.ledger.AccountRepository().Save(account))
	return account
}

func TestCreateTransaction_AdjustsBalance(t *testing.T) {
	fixture := newHandlerFixture()
	account := seedAccount(t, fixture, "user-1")

	body, err := json.Marshal(map[string]interface{}{
		"account_id":  account.ID,
		"amount":      "125.50",
		"direction":   "deposit",
		"date":        "2026-03-01T00:00:00Z",
		"description": "Paycheck",
	})
	require.NoError(t, err)

	req := authedRequest(http.MethodPost, "/api/transactions", "user-1", bytes.NewBuffer(body))
	w := httptest.NewRecorder()
	fixture.transactions.CreateTransaction(w, req)

	res := w.Result()
	assert.Equal(t, http.StatusCreated, res.StatusCode)

	response := decodeResponse(t, res)
	assert.Equal(t, "success", response["status"])
	assert.True(t, fixture.ledger.AccountBalance(account.ID).Equal(decimal.NewFromFloat(125.50)))
}

func TestCreateTransaction_InvalidBody(t *testing.T) {
	fixture := newHandlerFixture()

	req := authedRequest(http.MethodPost, "/api/transactions", "user-1", bytes.NewBufferString("not json"))
	w := httptest.NewRecorder()
	fixture.transactions.CreateTransaction(w, req)

	res := w.Result()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	response := decodeResponse(t, res)
	assert.Equal(t, "Invalid request body", response["message"])
}

func TestCreateTransaction_NonPositiveAmount(t *testing.T) {
	fixture := newHandlerFixture()
	account := seedAccount(t, fixture, "user-1")

	body, err := json.Marshal(map[string]interface{}{
		"account_id": account.ID,
		"amount":     "-5",
		"direction":  "withdrawal",
	})
	require.NoError(t, err)

	req := authedRequest(http.MethodPost, "/api/transactions", "user-1", bytes.NewBuffer(body))
	w := httptest.NewRecorder()
	fixture.transactions.CreateTransaction(w, req)

	res := w.Result()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.True(t, fixture.ledger.AccountBalance(account.ID).IsZero())
}

func TestCreateTransaction_UnknownAccount(t *testing.T) {
	fixture := newHandlerFixture()

	body, err := json.Marshal(map[string]interface{}{
		"account_id": 42,
		"amount":     "10",
		"direction":  "deposit",
	})
	require.NoError(t, err)

	req := authedRequest(http.MethodPost, "/api/transactions", "user-1", bytes.NewBuffer(body))
	w := httptest.NewRecorder()
	fixture.transactions.CreateTransaction(w, req)

	res := w.Result()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	response := decodeResponse(t, res)
	assert.Equal(t, "Account does not exist or is not active", response["message"])
}

func TestGetTransactions_FilterValidation(t *testing.T) {
	fixture := newHandlerFixture()

	for _, target := range []string{
		"/api/transactions?account_id=abc",
		"/api/transactions?start_date=03-01-2026",
		"/api/transactions?limit=0",
		"/api/transactions?page=-1",
	} {
		req := authedRequest(http.MethodGet, target, "user-1", nil)
		w := httptest.NewRecorder()
		fixture.transactions.GetTransactions(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode, target)
	}
}

func TestGetTransactions_FiltersByAccountAndDate(t *testing.T) {
	fixture := newHandlerFixture()
	first := seedAccount(t, fixture, "user-1")
	second := seedAccount(t, fixture, "user-1")

	save := func(accountID int, date time.Time) {
		tr := &domain.Transaction{
			UserID: "user-1", AccountID: accountID,
			Amount: decimal.NewFromInt(10), Direction: domain.DirectionDeposit,
			Date: date,
		}
		require.NoError(t, fixture.ledger.TransactionRepository().SaveTx(nil, tr))
	}
	save(first.ID, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	save(first.ID, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
	save(second.ID, time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC))

	req := authedRequest(http.MethodGet, "/api/transactions?account_id=1&start_date=2026-03-01", "user-1", nil)
	w := httptest.NewRecorder()
	fixture.transactions.GetTransactions(w, req)

	res := w.Result()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	response := decodeResponse(t, res)
	data := response["data"].([]interface{})
	require.Len(t, data, 1)
	row := data[0].(map[string]interface{})
	assert.Equal(t, float64(first.ID), row["account_id"])
}

func TestUpdateTransaction_NotFoundForOtherUser(t *testing.T) {
	fixture := newHandlerFixture()
	account := seedAccount(t, fixture, "user-1")

	tr := &domain.Transaction{
		UserID: "user-1", AccountID: account.ID,
		Amount: decimal.NewFromInt(10), Direction: domain.DirectionDeposit,
		Date: time.Now(),
	}
	require.NoError(t, fixture.ledger.TransactionRepository().SaveTx(nil, tr))

	body := bytes.NewBufferString(`{"amount": "100"}`)
	req := authedRequest(http.MethodPatch, "/api/transactions/1", "user-2", body)
	req.SetPathValue("transactionID", "1")
	w := httptest.NewRecorder()
	fixture.transactions.UpdateTransaction(w, req)

	res := w.Result()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	response := decodeResponse(t, res)
	assert.Equal(t, "Transaction not found", response["message"])
}

func TestDeleteTransaction_ReversesBalance(t *testing.T) {
	fixture := newHandlerFixture()
	account := seedAccount(t, fixture, "user-1")

	body, err := json.Marshal(map[string]interface{}{
		"account_id": account.ID,
		"amount":     "40",
		"direction":  "deposit",
	})
	require.NoError(t, err)
	req := authedRequest(http.MethodPost, "/api/transactions", "user-1", bytes.NewBuffer(body))
	w := httptest.NewRecorder()
	fixture.transactions.CreateTransaction(w, req)
	require.Equal(t, http.StatusCreated, w.Result().StatusCode)

	req = authedRequest(http.MethodDelete, "/api/transactions/1", "user-1", nil)
	req.SetPathValue("transactionID", "1")
	w = httptest.NewRecorder()
	fixture.transactions.DeleteTransaction(w, req)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
	assert.True(t, fixture.ledger.AccountBalance(account.ID).IsZero())
	assert.Empty(t, fixture.ledger.Transactions)
}
