/**
 * @description
 * TransactionService composes account mutations with ledger writes. Deposits and
 * withdrawals produce one ledger entry; a transfer produces a debit and a credit
 * entry written as one batch.
 *
 * @notes
 * - Transfer debits the origin before crediting the destination. If the credit
 *   leg fails, the debit is NOT reversed: the origin keeps the reduced balance
 *   and no ledger entry is written. The gap is logged at error level and
 *   published as transfer.credit_failed so the reconciliation job and operators
 *   can act on it.
 */
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/transfa/banking-service/internal/domain"
	"github.com/transfa/banking-service/internal/store"
	"github.com/transfa/banking-service/pkg/rabbitmq"
	"go.uber.org/zap"
)

// TransactionService holds the dependencies for compound money movements.
type TransactionService struct {
	accounts *AccountService
	ledger   store.TransactionRepository
	events   rabbitmq.Publisher
	logger   *zap.Logger
	now      func() time.Time
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(accounts *AccountService, ledger store.TransactionRepository, events rabbitmq.Publisher, logger *zap.Logger) *TransactionService {
	return &TransactionService{
		accounts: accounts,
		ledger:   ledger,
		events:   events,
		logger:   logger.Named("transaction_service"),
		now:      time.Now,
	}
}

// Deposit credits to and records a CONSIGNACION entry.
func (s *TransactionService) Deposit(ctx context.Context, to string, amount domain.Money) (*domain.Transaction, error) {
	if _, err := s.accounts.Deposit(ctx, to, amount); err != nil {
		return nil, err
	}
	return s.record(ctx, domain.NewDepositTransaction(to, amount, s.now()))
}

// Withdraw debits from and records a RETIRO entry.
func (s *TransactionService) Withdraw(ctx context.Context, from string, amount domain.Money) (*domain.Transaction, error) {
	if _, err := s.accounts.Withdraw(ctx, from, amount); err != nil {
		return nil, err
	}
	return s.record(ctx, domain.NewWithdrawalTransaction(from, amount, s.now()))
}

// Transfer moves amount from one account to another and returns the debit and credit entries.
func (s *TransactionService) Transfer(ctx context.Context, from, to string, amount domain.Money) ([]*domain.Transaction, error) {
	s.logger.Info("transfer requested",
		zap.String("from", from),
		zap.String("to", to),
		zap.String("amount", amount.String()),
	)

	if _, err := s.accounts.Withdraw(ctx, from, amount); err != nil {
		return nil, fmt.Errorf("transfer debit leg: %w", err)
	}

	if _, err := s.accounts.Deposit(ctx, to, amount); err != nil {
		s.logger.Error("transfer credit leg failed after debit; origin not compensated",
			zap.String("from", from),
			zap.String("to", to),
			zap.String("amount", amount.String()),
			zap.Error(err),
		)
		publishEvent(ctx, s.events, s.logger, domain.EventTransferCreditFailed, domain.TransferCreditFailedEvent{
			OriginAccount:      from,
			DestinationAccount: to,
			Amount:             amount,
			Reason:             err.Error(),
		})
		return nil, fmt.Errorf("transfer credit leg: %w", err)
	}

	debit, credit := domain.NewTransferTransactions(from, to, amount, s.now())
	saved, err := s.ledger.SaveAll(ctx, []*domain.Transaction{debit, credit})
	if err != nil {
		return nil, fmt.Errorf("record transfer: %w", err)
	}

	for _, tx := range saved {
		publishEvent(ctx, s.events, s.logger, domain.EventTransactionRecorded, tx)
	}
	return saved, nil
}

// History lists the entries for number, newest first. Unknown numbers yield an empty list;
// inactive and cancelled accounts keep their history.
func (s *TransactionService) History(ctx context.Context, number string) ([]*domain.Transaction, error) {
	history, err := s.ledger.FindByAccount(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("history for %s: %w", number, err)
	}
	if history == nil {
		history = []*domain.Transaction{}
	}
	return history, nil
}

func (s *TransactionService) record(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	saved, err := s.ledger.Save(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", tx.Type, err)
	}
	publishEvent(ctx, s.events, s.logger, domain.EventTransactionRecorded, saved)
	return saved, nil
}
