/**
 * @description
 * This file defines the HTTP handlers for the banking API. Handlers are responsible
 * for parsing requests, calling the appropriate service method, and writing the
 * response. Domain errors are mapped to statuses in errors.go.
 *
 * @dependencies
 * - github.com/go-chi/chi/v5: URL parameter handling.
 * - github.com/shopspring/decimal: Request amounts.
 * - go.uber.org/zap: Logging unexpected failures.
 */
package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/transfa/banking-service/internal/app"
	"github.com/transfa/banking-service/internal/domain"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// Movement types accepted by POST /transacciones.
const (
	movementDeposit    = "CONSIGNACION"
	movementWithdrawal = "RETIRO"
	movementTransfer   = "TRANSFERENCIA"
)

// ---- Clients ----

// CreateClientRequest defines the expected JSON body for registering a client.
type CreateClientRequest struct {
	IdentificationType   string `json:"tipo_identificacion" validate:"required"`
	IdentificationNumber string `json:"numero_identificacion" validate:"required"`
	FirstNames           string `json:"nombres" validate:"required"`
	LastName             string `json:"apellido" validate:"required"`
	Email                string `json:"correo_electronico" validate:"required"`
	BirthDate            string `json:"fecha_nacimiento" validate:"required,datetime=2006-01-02"`
}

// UpdateClientRequest defines the expected JSON body for modifying a client.
type UpdateClientRequest struct {
	FirstNames string `json:"nombres" validate:"required"`
	LastName   string `json:"apellido" validate:"required"`
	Email      string `json:"correo_electronico" validate:"required"`
}

// ClientResponse is the client representation returned by the API.
type ClientResponse struct {
	ID                   int64     `json:"id"`
	IdentificationType   string    `json:"tipo_identificacion"`
	IdentificationNumber string    `json:"numero_identificacion"`
	FirstNames           string    `json:"nombres"`
	LastName             string    `json:"apellido"`
	Email                string    `json:"correo_electronico"`
	BirthDate            string    `json:"fecha_nacimiento"`
	CreatedAt            time.Time `json:"fecha_creacion"`
	ModifiedAt           time.Time `json:"fecha_modificacion"`
}

func newClientResponse(c *domain.Client) ClientResponse {
	return ClientResponse{
		ID:                   c.ID,
		IdentificationType:   c.IdentificationType,
		IdentificationNumber: c.IdentificationNumber,
		FirstNames:           c.FirstNames,
		LastName:             c.LastName,
		Email:                c.Email.String(),
		BirthDate:            c.BirthDate.Format(dateLayout),
		CreatedAt:            c.CreatedAt,
		ModifiedAt:           c.ModifiedAt,
	}
}

// ClientHandler holds the dependencies for client handlers.
type ClientHandler struct {
	service *app.ClientService
	logger  *zap.Logger
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(service *app.ClientService, logger *zap.Logger) *ClientHandler {
	return &ClientHandler{service: service, logger: logger}
}

// CreateClient handles POST /clientes.
func (h *ClientHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req CreateClientRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	email, err := domain.NewEmail(req.Email)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	birthDate, err := time.Parse(dateLayout, req.BirthDate)
	if err != nil {
		writeServiceError(w, r, h.logger, fmt.Errorf("%w: fecha_nacimiento: %v", ErrInvalidRequest, err))
		return
	}

	client := domain.NewClient(req.IdentificationType, req.IdentificationNumber, req.FirstNames, req.LastName, email, birthDate, time.Now())
	saved, err := h.service.CreateClient(r.Context(), client)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, newClientResponse(saved))
}

// GetClient handles GET /clientes/{id}.
func (h *ClientHandler) GetClient(w http.ResponseWriter, r *http.Request) {
	id, err := clientIDParam(r)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	client, found, err := h.service.FindClientByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	if !found {
		writeServiceError(w, r, h.logger, domain.ErrClientNotFound)
		return
	}

	writeJSON(w, http.StatusOK, newClientResponse(client))
}

// UpdateClient handles PUT /clientes/{id}.
func (h *ClientHandler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id, err := clientIDParam(r)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	var req UpdateClientRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	email, err := domain.NewEmail(req.Email)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	updated, err := h.service.UpdateClient(r.Context(), id, app.ClientUpdate{
		FirstNames: req.FirstNames,
		LastName:   req.LastName,
		Email:      email,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, newClientResponse(updated))
}

// DeleteClient handles DELETE /clientes/{id}.
func (h *ClientHandler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id, err := clientIDParam(r)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	if err := h.service.DeleteClient(r.Context(), id); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func clientIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid client id %q", ErrInvalidRequest, raw)
	}
	return id, nil
}

// ---- Accounts ----

// CreateAccountRequest defines the expected JSON body for opening an account.
type CreateAccountRequest struct {
	ClientID    int64  `json:"cliente_id" validate:"gt=0"`
	AccountType string `json:"tipo_cuenta" validate:"required"`
	GMFExempt   bool   `json:"exenta_gmf"`
}

// ChangeStatusRequest defines the expected JSON body for a status change.
type ChangeStatusRequest struct {
	Status string `json:"estado" validate:"required"`
}

// DepositRequest defines the expected JSON body for a direct deposit.
type DepositRequest struct {
	AccountNumber string          `json:"numero_cuenta" validate:"required"`
	Amount        decimal.Decimal `json:"monto" validate:"positive_decimal"`
}

// AccountResponse is the account representation returned by the API.
type AccountResponse struct {
	ID         int64                `json:"id"`
	ClientID   int64                `json:"cliente_id"`
	Type       domain.AccountType   `json:"tipo_cuenta"`
	Number     string               `json:"numero_cuenta"`
	Status     domain.AccountStatus `json:"estado"`
	Balance    domain.Money         `json:"saldo"`
	GMFExempt  bool                 `json:"exenta_gmf"`
	CreatedAt  time.Time            `json:"fecha_creacion"`
	ModifiedAt time.Time            `json:"fecha_modificacion"`
}

func newAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		ID:         a.ID,
		ClientID:   a.ClientID,
		Type:       a.Type(),
		Number:     a.Number,
		Status:     a.Status(),
		Balance:    a.Balance(),
		GMFExempt:  a.GMFExempt,
		CreatedAt:  a.CreatedAt,
		ModifiedAt: a.ModifiedAt,
	}
}

// AccountHandler holds the dependencies for account handlers.
type AccountHandler struct {
	accounts     *app.AccountService
	transactions *app.TransactionService
	logger       *zap.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accounts *app.AccountService, transactions *app.TransactionService, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, transactions: transactions, logger: logger}
}

// CreateAccount handles POST /productos.
func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	account, err := h.accounts.CreateAccount(r.Context(), req.ClientID, req.AccountType, req.GMFExempt)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, newAccountResponse(account))
}

// GetAccount handles GET /productos/{numero}.
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "numero")

	account, found, err := h.accounts.FindByNumber(r.Context(), number)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	if !found {
		writeServiceError(w, r, h.logger, domain.ErrAccountNotFound)
		return
	}

	writeJSON(w, http.StatusOK, newAccountResponse(account))
}

// ChangeStatus handles PATCH /productos/{numero}/estado.
func (h *AccountHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	var req ChangeStatusRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	account, err := h.accounts.ChangeStatus(r.Context(), chi.URLParam(r, "numero"), req.Status)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, newAccountResponse(account))
}

// CancelAccount handles DELETE /productos/{numero}/cancelar.
func (h *AccountHandler) CancelAccount(w http.ResponseWriter, r *http.Request) {
	if _, err := h.accounts.CancelAccount(r.Context(), chi.URLParam(r, "numero")); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Deposit handles POST /productos/depositar. The deposit is recorded in the
// ledger like any other CONSIGNACION.
func (h *AccountHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req DepositRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	amount, err := requestAmount(req.Amount)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	if _, err := h.transactions.Deposit(r.Context(), req.AccountNumber, amount); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- Transactions ----

// CreateTransactionRequest defines the expected JSON body for a money movement.
type CreateTransactionRequest struct {
	MovementType       string          `json:"tipo_movimiento" validate:"required,oneof=CONSIGNACION RETIRO TRANSFERENCIA"`
	OriginAccount      string          `json:"cuenta_origen"`
	DestinationAccount string          `json:"cuenta_destino"`
	Amount             decimal.Decimal `json:"monto" validate:"positive_decimal"`
}

// TransactionHandler holds the dependencies for transaction handlers.
type TransactionHandler struct {
	service *app.TransactionService
	logger  *zap.Logger
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(service *app.TransactionService, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{service: service, logger: logger}
}

// CreateTransaction handles POST /transacciones. Deposits and withdrawals return
// one record; transfers return the debit and credit records.
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req CreateTransactionRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	req.MovementType = strings.ToUpper(strings.TrimSpace(req.MovementType))
	req.OriginAccount = strings.TrimSpace(req.OriginAccount)
	req.DestinationAccount = strings.TrimSpace(req.DestinationAccount)
	if err := validateStruct(&req); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	if err := requireAccounts(req); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	amount, err := requestAmount(req.Amount)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	switch req.MovementType {
	case movementDeposit:
		tx, err := h.service.Deposit(r.Context(), req.DestinationAccount, amount)
		if err != nil {
			writeServiceError(w, r, h.logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, tx)
	case movementWithdrawal:
		tx, err := h.service.Withdraw(r.Context(), req.OriginAccount, amount)
		if err != nil {
			writeServiceError(w, r, h.logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, tx)
	default:
		records, err := h.service.Transfer(r.Context(), req.OriginAccount, req.DestinationAccount, amount)
		if err != nil {
			writeServiceError(w, r, h.logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, records)
	}
}

// History handles GET /transacciones/historial/{numero}.
func (h *TransactionHandler) History(w http.ResponseWriter, r *http.Request) {
	history, err := h.service.History(r.Context(), chi.URLParam(r, "numero"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func requireAccounts(req CreateTransactionRequest) error {
	needOrigin := req.MovementType == movementWithdrawal || req.MovementType == movementTransfer
	needDestination := req.MovementType == movementDeposit || req.MovementType == movementTransfer
	if needOrigin && req.OriginAccount == "" {
		return fmt.Errorf("%w: cuenta_origen is required for %s", ErrInvalidRequest, req.MovementType)
	}
	if needDestination && req.DestinationAccount == "" {
		return fmt.Errorf("%w: cuenta_destino is required for %s", ErrInvalidRequest, req.MovementType)
	}
	return nil
}

// requestAmount rounds a request amount to money scale; anything that rounds to
// zero or below is rejected.
func requestAmount(raw decimal.Decimal) (domain.Money, error) {
	amount := domain.NewMoney(raw)
	if !amount.IsPositive() {
		return domain.Money{}, fmt.Errorf("%w: monto must be at least 0.01", domain.ErrInvalidAmount)
	}
	return amount, nil
}
