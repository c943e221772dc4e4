package interfaces

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/keebs5225/TrackVault/internal/ledger/application"
	"github.com/keebs5225/TrackVault/internal/ledger/domain"
)

type AccountServiceInterface interface {
	CreateAccount(account *domain.Account) error
	GetUserAccounts(userID string) ([]domain.Account, error)
	GetAccount(userID string, accountID int) (*domain.Account, error)
	UpdateAccount(userID string, accountID int, changes application.AccountUpdate) (*domain.Account, error)
	DeleteAccount(userID string, accountID int) error
}

type AccountHandler struct {
	service      AccountServiceInterface
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string)
}

func NewAccountHandler(
	service AccountServiceInterface,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
) *AccountHandler {
	if service == nil || respondJSON == nil || respondError == nil {
		panic("Service and response functions must not be nil")
	}
	return &AccountHandler{
		service:      service,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var account domain.Account
	if err := json.NewDecoder(r.Body).Decode(&account); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	account.UserID = userID
	if err := h.service.CreateAccount(&account); err != nil {
		status, message := statusForError(err)
		if message == "" {
			log.Println("Error during account creation:", err)
			message = "Failed to create account"
		}
		h.respondError(w, status, message)
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Account successfully created.",
		"data":    account,
	})
}

func (h *AccountHandler) GetAccounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	accounts, err := h.service.GetUserAccounts(userID)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve accounts")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Accounts retrieved successfully.",
		"data":    accounts,
	})
}

func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	accountID, err := strconv.Atoi(r.PathValue("accountID"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid account ID")
		return
	}

	account, err := h.service.GetAccount(userID, accountID)
	if err != nil {
		status, message := statusForError(err)
		if message == "" {
			log.Println("Error during account retrieval:", err)
			message = "Failed to retrieve account"
		}
		h.respondError(w, status, message)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Account retrieved successfully.",
		"data":    account,
	})
}

func (h *AccountHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	accountID, err := strconv.Atoi(r.PathValue("accountID"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid account ID")
		return
	}
	var changes application.AccountUpdate
	if err := json.NewDecoder(r.Body).Decode(&changes); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	account, err := h.service.UpdateAccount(userID, accountID, changes)
	if err != nil {
		status, message := statusForError(err)
		if message == "" {
			log.Println("Error during account update:", err)
			message = "Failed to update account"
		}
		h.respondError(w, status, message)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Account updated successfully.",
		"data":    account,
	})
}

func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	accountID, err := strconv.Atoi(r.PathValue("accountID"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid account ID")
		return
	}

	if err := h.service.DeleteAccount(userID, accountID); err != nil {
		status, message := statusForError(err)
		if message == "" {
			log.Println("Error during account deletion:", err)
			message = "Failed to delete account"
		}
		h.respondError(w, status, message)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Account deactivated successfully.",
	})
}
