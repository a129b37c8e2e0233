/**
 * @description
 * Reconciler compares every account balance with the net of its ledger entries.
 * A difference means a money movement was applied without being recorded, which
 * is what a transfer whose credit leg failed leaves behind.
 */
package app

import (
	"context"
	"fmt"

	"github.com/transfa/banking-service/internal/domain"
	"github.com/transfa/banking-service/internal/store"
	"github.com/transfa/banking-service/pkg/rabbitmq"
	"go.uber.org/zap"
)

// Mismatch describes one account whose balance disagrees with its ledger.
type Mismatch struct {
	AccountNumber string
	Balance       domain.Money
	LedgerNet     domain.Money
}

// Difference is balance minus ledger net.
func (m Mismatch) Difference() domain.Money {
	return m.Balance.Subtract(m.LedgerNet)
}

// Reconciler holds the dependencies for the reconciliation job.
type Reconciler struct {
	accounts store.AccountRepository
	ledger   store.TransactionRepository
	events   rabbitmq.Publisher
	logger   *zap.Logger
}

// NewReconciler creates a new Reconciler.
func NewReconciler(accounts store.AccountRepository, ledger store.TransactionRepository, events rabbitmq.Publisher, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		accounts: accounts,
		ledger:   ledger,
		events:   events,
		logger:   logger.Named("reconciler"),
	}
}

// Run checks all accounts and returns the ones out of balance.
func (r *Reconciler) Run(ctx context.Context) ([]Mismatch, error) {
	accounts, err := r.accounts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	var mismatches []Mismatch
	for _, account := range accounts {
		if err := ctx.Err(); err != nil {
			return mismatches, err
		}

		entries, err := r.ledger.FindByAccount(ctx, account.Number)
		if err != nil {
			return mismatches, fmt.Errorf("ledger for %s: %w", account.Number, err)
		}

		net := domain.ZeroMoney()
		for _, entry := range entries {
			net = net.Add(entry.SignedAmountFor(account.Number))
		}
		if net.Equal(account.Balance()) {
			continue
		}

		m := Mismatch{AccountNumber: account.Number, Balance: account.Balance(), LedgerNet: net}
		mismatches = append(mismatches, m)

		r.logger.Warn("account balance does not match ledger",
			zap.String("number", m.AccountNumber),
			zap.String("balance", m.Balance.String()),
			zap.String("ledger_net", m.LedgerNet.String()),
		)
		publishEvent(ctx, r.events, r.logger, domain.EventLedgerMismatch, domain.LedgerMismatchEvent{
			AccountNumber: m.AccountNumber,
			Balance:       m.Balance,
			LedgerNet:     m.LedgerNet,
			Difference:    m.Difference(),
		})
	}

	r.logger.Info("reconciliation finished", zap.Int("accounts", len(accounts)), zap.Int("mismatches", len(mismatches)))
	return mismatches, nil
}
