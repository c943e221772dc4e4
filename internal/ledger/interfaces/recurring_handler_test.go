package interfaces

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTemplate_Success(t *testing.T) {
	fixture := newHandlerFixture()
	account := seedAccount(t, fixture, "user-1")

	body, err := json.Marshal(map[string]interface{}{
		"account_id": account.ID,
		"amount":     "1200",
		"direction":  "withdrawal",
		"frequency":  "monthly",
		"start_date": "2026-04-01T00:00:00Z",
		"title":      "Rent",
	})
	require.NoError(t, err)

	req := authedRequest(http.MethodPost, "/api/recurring", "user-1", bytes.NewBuffer(body))
	w := httptest.NewRecorder()
	fixture.recurring.CreateTemplate(w, req)

	res := w.Result()
	assert.Equal(t, http.StatusCreated, res.StatusCode)

	response := decodeResponse(t, res)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "Rent", data["title"])
	// Without an explicit next run date the schedule starts at start_date.
	assert.Equal(t, "2026-04-01T00:00:00Z", data["next_run_date"])
}

func TestCreateTemplate_InvalidFrequency(t *testing.T) {
	fixture := newHandlerFixture()
	account := seedAccount(t, fixture, "user-1")

	body, err := json.Marshal(map[string]interface{}{
		"account_id": account.ID,
		"amount":     "10",
		"direction":  "deposit",
		"frequency":  "fortnightly",
		"start_date": "2026-04-01T00:00:00Z",
		"title":      "Oddball",
	})
	require.NoError(t, err)

	req := authedRequest(http.MethodPost, "/api/recurring", "user-1", bytes.NewBuffer(body))
	w := httptest.NewRecorder()
	fixture.recurring.CreateTemplate(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
}

func TestGetTemplate_NotFound(t *testing.T) {
	fixture := newHandlerFixture()

	req := authedRequest(http.MethodGet, "/api/recurring/7", "user-1", nil)
	req.SetPathValue("recurringID", "7")
	w := httptest.NewRecorder()
	fixture.recurring.GetTemplate(w, req)

	res := w.Result()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	response := decodeResponse(t, res)
	assert.Equal(t, "Recurring transaction not found", response["message"])
}

func TestDeleteTemplate_RemovesTemplate(t *testing.T) {
	fixture := newHandlerFixture()
	account := seedAccount(t, fixture, "user-1")

	body, err := json.Marshal(map[string]interface{}{
		"account_id": account.ID,
		"amount":     "10",
		"direction":  "deposit",
		"frequency":  "daily",
		"start_date": "2026-03-01T00:00:00Z",
		"title":      "Allowance",
	})
	require.NoError(t, err)
	req := authedRequest(http.MethodPost, "/api/recurring", "user-1", bytes.NewBuffer(body))
	w := httptest.NewRecorder()
	fixture.recurring.CreateTemplate(w, req)
	require.Equal(t, http.StatusCreated, w.Result().StatusCode)

	req = authedRequest(http.MethodDelete, "/api/recurring/1", "user-1", nil)
	req.SetPathValue("recurringID", "1")
	w = httptest.NewRecorder()
	fixture.recurring.DeleteTemplate(w, req)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
	assert.Empty(t, fixture.ledger.Templates)
}
