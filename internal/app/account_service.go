/**
 * @description
 * AccountService orchestrates the account lifecycle: opening accounts for existing
 * clients, moving money in and out of a single account, status changes and
 * cancellation. Every mutation follows the same shape: load the account by
 * number, check it may be touched, apply the domain rule, persist.
 *
 * @notes
 * - There is no locking here. Two concurrent mutations of the same account race
 *   at the store; the store's constraints are the only guard.
 */
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/transfa/banking-service/internal/domain"
	"github.com/transfa/banking-service/internal/store"
	"github.com/transfa/banking-service/pkg/rabbitmq"
	"go.uber.org/zap"
)

// maxNumberAttempts bounds how many generated numbers are tried before giving up.
const maxNumberAttempts = 10

// AccountService holds the dependencies for account operations.
type AccountService struct {
	clients  store.ClientRepository
	accounts store.AccountRepository
	numbers  NumberGenerator
	events   rabbitmq.Publisher
	logger   *zap.Logger
	now      func() time.Time
}

// NewAccountService creates a new AccountService.
func NewAccountService(
	clients store.ClientRepository,
	accounts store.AccountRepository,
	numbers NumberGenerator,
	events rabbitmq.Publisher,
	logger *zap.Logger,
) *AccountService {
	return &AccountService{
		clients:  clients,
		accounts: accounts,
		numbers:  numbers,
		events:   events,
		logger:   logger.Named("account_service"),
		now:      time.Now,
	}
}

// CreateAccount opens a new active, zero-balance account of accountType for clientID.
func (s *AccountService) CreateAccount(ctx context.Context, clientID int64, accountType string, gmfExempt bool) (*domain.Account, error) {
	if _, found, err := s.clients.FindByID(ctx, clientID); err != nil {
		return nil, fmt.Errorf("find client %d: %w", clientID, err)
	} else if !found {
		return nil, fmt.Errorf("client %d: %w", clientID, domain.ErrClientNotFound)
	}

	kind, err := domain.ParseAccountType(accountType)
	if err != nil {
		return nil, err
	}

	body, err := s.allocateNumberBody(ctx, kind)
	if err != nil {
		return nil, err
	}

	account, err := domain.NewAccount(clientID, kind, body, gmfExempt, s.now())
	if err != nil {
		return nil, err
	}

	saved, err := s.accounts.Save(ctx, account)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			// Lost a race for the number between the existence check and the insert.
			return nil, fmt.Errorf("account number %s: %w", account.Number, domain.ErrAccountNumberUnavailable)
		}
		return nil, fmt.Errorf("save account: %w", err)
	}

	s.logger.Info("account created",
		zap.Int64("client_id", clientID),
		zap.String("number", saved.Number),
		zap.String("type", string(saved.Type())),
	)
	publishEvent(ctx, s.events, s.logger, domain.EventAccountCreated, domain.NewAccountEvent(saved))
	return saved, nil
}

func (s *AccountService) allocateNumberBody(ctx context.Context, kind domain.AccountType) (int64, error) {
	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		body := s.numbers.Next()
		number, err := domain.FormatAccountNumber(kind, body)
		if err != nil {
			return 0, err
		}
		exists, err := s.accounts.ExistsByNumber(ctx, number)
		if err != nil {
			return 0, fmt.Errorf("check account number: %w", err)
		}
		if !exists {
			return body, nil
		}
		s.logger.Debug("generated account number already taken", zap.String("number", number), zap.Int("attempt", attempt))
	}
	return 0, domain.ErrAccountNumberUnavailable
}

// Deposit credits amount to an active account.
func (s *AccountService) Deposit(ctx context.Context, number string, amount domain.Money) (*domain.Account, error) {
	account, err := s.findActive(ctx, number)
	if err != nil {
		return nil, err
	}
	account.Deposit(amount, s.now())
	return s.save(ctx, account)
}

// Withdraw debits amount from an active account under its type's overdraft policy.
func (s *AccountService) Withdraw(ctx context.Context, number string, amount domain.Money) (*domain.Account, error) {
	account, err := s.findActive(ctx, number)
	if err != nil {
		return nil, err
	}
	if err := account.Withdraw(amount, s.now()); err != nil {
		return nil, fmt.Errorf("withdraw from %s: %w", number, err)
	}
	return s.save(ctx, account)
}

// CancelAccount closes an active account whose balance is zero.
func (s *AccountService) CancelAccount(ctx context.Context, number string) (*domain.Account, error) {
	account, err := s.findActive(ctx, number)
	if err != nil {
		return nil, err
	}
	if err := account.Cancel(s.now()); err != nil {
		return nil, fmt.Errorf("cancel %s: %w", number, err)
	}
	saved, err := s.save(ctx, account)
	if err != nil {
		return nil, err
	}
	s.logger.Info("account cancelled", zap.String("number", number))
	publishEvent(ctx, s.events, s.logger, domain.EventAccountCancelled, domain.NewAccountEvent(saved))
	return saved, nil
}

// ChangeStatus applies "ACTIVA" or "INACTIVA" (case-insensitive) to the account.
func (s *AccountService) ChangeStatus(ctx context.Context, number string, status string) (*domain.Account, error) {
	account, err := s.find(ctx, number)
	if err != nil {
		return nil, err
	}

	previous := account.Status()
	switch domain.AccountStatus(strings.ToUpper(strings.TrimSpace(status))) {
	case domain.AccountStatusActive:
		if err := account.Activate(s.now()); err != nil {
			return nil, fmt.Errorf("activate %s: %w", number, err)
		}
	case domain.AccountStatusInactive:
		account.Inactivate(s.now())
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatusValue, status)
	}

	saved, err := s.save(ctx, account)
	if err != nil {
		return nil, err
	}
	if saved.Status() != previous {
		s.logger.Info("account status changed",
			zap.String("number", number),
			zap.String("from", string(previous)),
			zap.String("to", string(saved.Status())),
		)
		publishEvent(ctx, s.events, s.logger, domain.EventAccountStatusChanged, domain.NewAccountEvent(saved))
	}
	return saved, nil
}

// FindByNumber is a plain lookup; a missing account is reported through found, not err.
func (s *AccountService) FindByNumber(ctx context.Context, number string) (*domain.Account, bool, error) {
	account, found, err := s.accounts.FindByNumber(ctx, number)
	if err != nil {
		return nil, false, fmt.Errorf("find account %s: %w", number, err)
	}
	return account, found, nil
}

func (s *AccountService) find(ctx context.Context, number string) (*domain.Account, error) {
	account, found, err := s.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("account %s: %w", number, domain.ErrAccountNotFound)
	}
	return account, nil
}

func (s *AccountService) findActive(ctx context.Context, number string) (*domain.Account, error) {
	account, err := s.find(ctx, number)
	if err != nil {
		return nil, err
	}
	if !account.IsActive() {
		return nil, fmt.Errorf("account %s is %s: %w", number, account.Status(), domain.ErrAccountNotActive)
	}
	return account, nil
}

func (s *AccountService) save(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	saved, err := s.accounts.Save(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("save account %s: %w", account.Number, err)
	}
	return saved, nil
}
