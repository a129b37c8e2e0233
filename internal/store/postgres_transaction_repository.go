/**
 * @description
 * PostgreSQL implementation of TransactionRepository, the append-only ledger.
 *
 * @notes
 * - SaveAll wraps the inserts in one database transaction, so a transfer's
 *   debit and credit entries are written together or not at all.
 */
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/transfa/banking-service/internal/domain"
	"go.uber.org/zap"
)

const insertTransactionQuery = `
	INSERT INTO transactions (type, amount, occurred_at, origin_account, destination_account)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id
`

// PostgresTransactionRepository is the PostgreSQL implementation of TransactionRepository.
type PostgresTransactionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresTransactionRepository creates a new instance of PostgresTransactionRepository.
func NewPostgresTransactionRepository(db *pgxpool.Pool, logger *zap.Logger) *PostgresTransactionRepository {
	return &PostgresTransactionRepository{db: db, logger: logger.Named("transaction_repository")}
}

func (r *PostgresTransactionRepository) Save(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	saved, err := insertTransaction(ctx, r.db, tx)
	if err != nil {
		r.logger.Error("failed to record transaction", zap.String("type", string(tx.Type)), zap.Error(err))
		return nil, err
	}
	return saved, nil
}

func (r *PostgresTransactionRepository) SaveAll(ctx context.Context, txs []*domain.Transaction) ([]*domain.Transaction, error) {
	dbTx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin ledger batch: %w", err)
	}
	defer dbTx.Rollback(ctx)

	saved := make([]*domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		s, err := insertTransaction(ctx, dbTx, tx)
		if err != nil {
			r.logger.Error("failed to record ledger batch", zap.Int("size", len(txs)), zap.Error(err))
			return nil, err
		}
		saved = append(saved, s)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit ledger batch: %w", err)
	}
	return saved, nil
}

// FindByAccount returns the entries touching number, newest first.
func (r *PostgresTransactionRepository) FindByAccount(ctx context.Context, number string) ([]*domain.Transaction, error) {
	query := `
		SELECT id, type, amount::text, occurred_at, origin_account, destination_account
		FROM transactions
		WHERE origin_account = $1 OR destination_account = $1
		ORDER BY occurred_at DESC, id DESC
	`
	rows, err := r.db.Query(ctx, query, number)
	if err != nil {
		return nil, fmt.Errorf("query history for %s: %w", number, err)
	}
	defer rows.Close()

	history := make([]*domain.Transaction, 0)
	for rows.Next() {
		var (
			t      domain.Transaction
			txType string
			amount string
		)
		if err := rows.Scan(&t.ID, &txType, &amount, &t.Timestamp, &t.OriginAccount, &t.DestinationAccount); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Type = domain.TransactionType(txType)
		if t.Amount, err = domain.ParseMoney(amount); err != nil {
			return nil, fmt.Errorf("transaction %d has a malformed amount: %w", t.ID, err)
		}
		history = append(history, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read history for %s: %w", number, err)
	}
	return history, nil
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertTransaction(ctx context.Context, q querier, tx *domain.Transaction) (*domain.Transaction, error) {
	saved := *tx
	err := q.QueryRow(ctx, insertTransactionQuery,
		string(tx.Type),
		tx.Amount.Decimal(),
		tx.Timestamp,
		tx.OriginAccount,
		tx.DestinationAccount,
	).Scan(&saved.ID)
	if err != nil {
		return nil, fmt.Errorf("insert %s transaction: %w", tx.Type, err)
	}
	tx.ID = saved.ID
	return &saved, nil
}
