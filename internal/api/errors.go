package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/transfa/banking-service/internal/domain"
	"go.uber.org/zap"
)

// errorResponse is the body written for every failed request.
type errorResponse struct {
	Error string `json:"error"`
}

var validationErrors = []error{
	domain.ErrInvalidAmount,
	domain.ErrInvalidEmail,
	domain.ErrInvalidClientData,
	domain.ErrUnsupportedAccountType,
	domain.ErrInvalidStatusValue,
	domain.ErrInvalidAccountNumber,
	ErrInvalidRequest,
}

var notFoundErrors = []error{
	domain.ErrClientNotFound,
	domain.ErrAccountNotFound,
}

var conflictErrors = []error{
	domain.ErrAccountNotActive,
	domain.ErrBalanceNotZero,
	domain.ErrAlreadyCancelled,
	domain.ErrInvalidStateTransition,
	domain.ErrClientUnderage,
	domain.ErrClientHasLinkedAccounts,
	domain.ErrClientAlreadyExists,
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// statusForError maps a service error to its HTTP status.
func statusForError(err error) int {
	switch {
	case isAny(err, validationErrors):
		return http.StatusBadRequest
	case isAny(err, notFoundErrors):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case isAny(err, conflictErrors):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError writes err with its mapped status. Unexpected errors are logged
// and their detail is not exposed to the caller.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, status, "internal server error")
		return
	}
	logger.Debug("request rejected", zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(err))
	writeError(w, status, err.Error())
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}
