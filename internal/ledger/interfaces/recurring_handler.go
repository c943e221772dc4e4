package interfaces

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/keebs5225/TrackVault/internal/ledger/application"
	"github.com/keebs5225/TrackVault/internal/ledger/domain"
)

type RecurringServiceInterface interface {
	CreateTemplate(template *domain.RecurringTemplate) error
	GetUserTemplates(userID string) ([]domain.RecurringTemplate, error)
	GetTemplate(userID string, recurringID int) (*domain.RecurringTemplate, error)
	UpdateTemplate(userID string, recurringID int, changes application.TemplateUpdate) (*domain.RecurringTemplate, error)
	DeleteTemplate(userID string, recurringID int) error
}

type RecurringHandler struct {
	service      RecurringServiceInterface
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string)
}

func NewRecurringHandler(
	service RecurringServiceInterface,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
) *RecurringHandler {
	if service == nil || respondJSON == nil || respondError == nil {
		panic("Service and response functions must not be nil")
	}
	return &RecurringHandler{
		service:      service,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

func (h *RecurringHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var template domain.RecurringTemplate
	if err := json.NewDecoder(r.Body).Decode(&template); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	template.UserID = userID
	if err := h.service.CreateTemplate(&template); err != nil {
		status, message := statusForError(err)
		if message == "" {
			log.Println("Error during recurring transaction creation:", err)
			message = "Failed to create recurring transaction"
		}
		h.respondError(w, status, message)
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Recurring transaction successfully created.",
		"data":    template,
	})
}

func (h *RecurringHandler) GetTemplates(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	templates, err := h.service.GetUserTemplates(userID)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve recurring transactions")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Recurring transactions retrieved successfully.",
		"data":    templates,
	})
}

func (h *RecurringHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	recurringID, err := strconv.Atoi(r.PathValue("recurringID"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid recurring transaction ID")
		return
	}

	template, err := h.service.GetTemplate(userID, recurringID)
	if err != nil {
		status, message := statusForError(err)
		if message == "" {
			log.Println("Error during recurring transaction retrieval:", err)
			message = "Failed to retrieve recurring transaction"
		}
		h.respondError(w, status, message)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Recurring transaction retrieved successfully.",
		"data":    template,
	})
}

func (h *RecurringHandler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	recurringID, err := strconv.Atoi(r.PathValue("recurringID"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid recurring transaction ID")
		return
	}
	var changes application.TemplateUpdate
	if err := json.NewDecoder(r.Body).Decode(&changes); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	template, err := h.service.UpdateTemplate(userID, recurringID, changes)
	if err != nil {
		status, message := statusForError(err)
		if message == "" {
			log.Println("Error during recurring transaction update:", err)
			message = "Failed to update recurring transaction"
		}
		h.respondError(w, status, message)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Recurring transaction updated successfully.",
		"data":    template,
	})
}

func (h *RecurringHandler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	recurringID, err := strconv.Atoi(r.PathValue("recurringID"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid recurring transaction ID")
		return
	}

	if err := h.service.DeleteTemplate(userID, recurringID); err != nil {
		status, message := statusForError(err)
		if message == "" {
			log.Println("Error during recurring transaction deletion:", err)
			message = "Failed to delete recurring transaction"
		}
		h.respondError(w, status, message)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Recurring transaction deleted successfully.",
	})
}
