/**
 * @description
 * Sentinel errors raised by the banking domain and its orchestration layer.
 * Callers classify failures with errors.Is; every layer above wraps with %w.
 */
package domain

import "errors"

// Validation errors: the caller supplied input that violates a precondition.
var (
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInvalidEmail           = errors.New("invalid email address")
	ErrInvalidClientData      = errors.New("first names and last name must have at least 2 characters")
	ErrUnsupportedAccountType = errors.New("unsupported account type")
	ErrInvalidStatusValue     = errors.New("invalid account status value")
	ErrInvalidAccountNumber   = errors.New("invalid account number")
)

// Not-found errors.
var (
	ErrClientNotFound  = errors.New("client not found")
	ErrAccountNotFound = errors.New("account not found")
)

// State-conflict errors: the request is well formed but a domain rule rejects it.
var (
	ErrAccountNotActive         = errors.New("account is not active")
	ErrInsufficientFunds        = errors.New("insufficient funds")
	ErrBalanceNotZero           = errors.New("account balance must be zero to cancel")
	ErrAlreadyCancelled         = errors.New("account is already cancelled")
	ErrInvalidStateTransition   = errors.New("invalid account state transition")
	ErrClientUnderage           = errors.New("client must be at least 18 years old")
	ErrClientHasLinkedAccounts  = errors.New("client has linked accounts")
	ErrClientAlreadyExists      = errors.New("client with this identification already exists")
	ErrAccountNumberUnavailable = errors.New("could not allocate a free account number")
)
