package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/transfa/banking-service/internal/domain"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid amount", domain.ErrInvalidAmount, http.StatusBadRequest},
		{"wrapped invalid request", fmt.Errorf("%w: monto is required", ErrInvalidRequest), http.StatusBadRequest},
		{"unsupported type", fmt.Errorf("create: %w", domain.ErrUnsupportedAccountType), http.StatusBadRequest},
		{"client not found", fmt.Errorf("client 9: %w", domain.ErrClientNotFound), http.StatusNotFound},
		{"account not found", domain.ErrAccountNotFound, http.StatusNotFound},
		{"insufficient funds", fmt.Errorf("withdraw: %w", domain.ErrInsufficientFunds), http.StatusUnprocessableEntity},
		{"not active", domain.ErrAccountNotActive, http.StatusConflict},
		{"underage", domain.ErrClientUnderage, http.StatusConflict},
		{"linked accounts", domain.ErrClientHasLinkedAccounts, http.StatusConflict},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusForError(tt.err))
		})
	}
}
