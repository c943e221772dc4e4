package interfaces

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keebs5225/TrackVault/internal/ledger/application"
	"github.com/keebs5225/TrackVault/internal/ledger/domain"
	"github.com/keebs5225/TrackVault/internal/ledger/infrastructure"
)

type handlerFixture struct {
	ledger       *infrastructure.MockLedger
	accounts     *AccountHandler
	transactions *TransactionHandler
	recurring    *RecurringHandler
}

func newHandlerFixture() *handlerFixture {
	ledger := infrastructure.NewMockLedger()
	accountService := application.NewAccountService(ledger.AccountRepository())
	transactionService := application.NewTransactionService(ledger.TransactionRepository(), ledger.AccountRepository())
	recurringService := application.NewRecurringService(ledger.TemplateRepository(), ledger.TransactionRepository(), ledger.AccountRepository())
	return &handlerFixture{
		ledger:       ledger,
		accounts:     NewAccountHandler(accountService, respondJSON, respondError),
		transactions: NewTransactionHandler(transactionService, respondJSON, respondError),
		recurring:    NewRecurringHandler(recurringService, respondJSON, respondError),
	}
}

func authedRequest(method, target, userID string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(context.WithValue(req.Context(), "userID", userID))
}

func decodeResponse(t *testing.T, res *http.Response) map[string]interface{} {
	t.Helper()
	defer res.Body.Close()
	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&response))
	return response
}

func TestCreateAccount_Success(t *testing.T) {
	fixture := newHandlerFixture()

	body, err := json.Marshal(map[string]interface{}{
		"name":         "Main Checking",
		"account_type": "checking",
	})
	require.NoError(t, err)

	req := authedRequest(http.MethodPost, "/api/accounts", "user-1", bytes.NewBuffer(body))
	w := httptest.NewRecorder()
	fixture.accounts.CreateAccount(w, req)

	res := w.Result()
	assert.Equal(t, http.StatusCreated, res.StatusCode)

	response := decodeResponse(t, res)
	assert.Equal(t, "success", response["status"])
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "Main Checking", data["name"])
	assert.Equal(t, float64(1), data["account_id"])
}

func TestCreateAccount_InvalidType(t *testing.T) {
	fixture := newHandlerFixture()

	body, err := json.Marshal(map[string]interface{}{
		"name":         "Weird",
		"account_type": "offshore",
	})
	require.NoError(t, err)

	req := authedRequest(http.MethodPost, "/api/accounts", "user-1", bytes.NewBuffer(body))
	w := httptest.NewRecorder()
	fixture.accounts.CreateAccount(w, req)

	res := w.Result()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	response := decodeResponse(t, res)
	assert.Equal(t, "error", response["status"])
}

func TestCreateAccount_Unauthorized(t *testing.T) {
	fixture := newHandlerFixture()

	req := httptest.NewRequest(http.MethodPost, "/api/accounts", bytes.NewBufferString("{}"))
	w := httptest.NewRecorder()
	fixture.accounts.CreateAccount(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Result().StatusCode)
}

func TestGetAccount_NotFoundAndForeign(t *testing.T) {
	fixture := newHandlerFixture()
	account := &domain.Account{UserID: "user-1", Name: "Checking", Type: "checking", Currency: "USD"}
	require.NoError(t, fixture.ledger.AccountRepository().Save(account))

	req := authedRequest(http.MethodGet, "/api/accounts/999", "user-1", nil)
	req.SetPathValue("accountID", "999")
	w := httptest.NewRecorder()
	fixture.accounts.GetAccount(w, req)
	assert.Equal(t, http.StatusNotFound, w.Result().StatusCode)

	// Another user's ID resolves the same as a missing account.
	req = authedRequest(http.MethodGet, "/api/accounts/1", "user-2", nil)
	req.SetPathValue("accountID", "1")
	w = httptest.NewRecorder()
	fixture.accounts.GetAccount(w, req)
	assert.Equal(t, http.StatusNotFound, w.Result().StatusCode)
}

func TestUpdateAccount_IgnoresBalanceField(t *testing.T) {
	fixture := newHandlerFixture()
	account := &domain.Account{UserID: "user-1", Name: "Checking", Type: "checking", Currency: "USD"}
	require.NoError(t, fixture.ledger.AccountRepository().Save(account))

	// A client sending "balance" cannot move money; only name and type
	// are updatable and balance stays derived from transactions.
	body := bytes.NewBufferString(`{"name": "Renamed", "balance": "9999"}`)
	req := authedRequest(http.MethodPatch, "/api/accounts/1", "user-1", body)
	req.SetPathValue("accountID", "1")
	w := httptest.NewRecorder()
	fixture.accounts.UpdateAccount(w, req)

	res := w.Result()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	response := decodeResponse(t, res)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "Renamed", data["name"])
	assert.True(t, fixture.ledger.AccountBalance(account.ID).IsZero())
}

func TestDeleteAccount_SoftDeletes(t *testing.T) {
	fixture := newHandlerFixture()
	account := &domain.Account{UserID: "user-1", Name: "Checking", Type: "checking", Currency: "USD"}
	require.NoError(t, fixture.ledger.AccountRepository().Save(account))

	req := authedRequest(http.MethodDelete, "/api/accounts/1", "user-1", nil)
	req.SetPathValue("accountID", "1")
	w := httptest.NewRecorder()
	fixture.accounts.DeleteAccount(w, req)
	assert.Equal(t, http.StatusOK, w.Result().StatusCode)

	stored := fixture.ledger.Accounts[account.ID]
	assert.False(t, stored.IsActive)
}

func TestGetAccounts_EmptyListNotNull(t *testing.T) {
	fixture := newHandlerFixture()

	req := authedRequest(http.MethodGet, "/api/accounts", "user-1", nil)
	w := httptest.NewRecorder()
	fixture.accounts.GetAccounts(w, req)

	res := w.Result()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	response := decodeResponse(t, res)
	data, ok := response["data"].([]interface{})
	assert.True(t, ok, "data must be a JSON array, not null")
	assert.Empty(t, data)
}
