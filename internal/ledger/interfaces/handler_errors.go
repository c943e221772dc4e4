package interfaces

import (
	"errors"
	"net/http"

	ledgerErrors "github.com/keebs5225/TrackVault/internal/ledger/errors"
)

// statusForError maps service errors to HTTP responses. An empty message
// means the caller should log the error and use its own fallback message.
func statusForError(err error) (int, string) {
	switch {
	case ledgerErrors.IsValidationError(err):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, ledgerErrors.ErrInvalidAccount):
		return http.StatusBadRequest, "Account does not exist or is not active"
	case errors.Is(err, ledgerErrors.ErrAccountNotFound):
		return http.StatusNotFound, "Account not found"
	case errors.Is(err, ledgerErrors.ErrTransactionNotFound):
		return http.StatusNotFound, "Transaction not found"
	case errors.Is(err, ledgerErrors.ErrTemplateNotFound):
		return http.StatusNotFound, "Recurring transaction not found"
	case errors.Is(err, ledgerErrors.ErrScheduleExhausted):
		return http.StatusBadRequest, "Schedule is already past its end date"
	case errors.Is(err, ledgerErrors.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "Storage temporarily unavailable"
	default:
		return http.StatusInternalServerError, ""
	}
}
