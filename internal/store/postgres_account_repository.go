/**
 * @description
 * PostgreSQL implementation of AccountRepository over the `accounts` table.
 *
 * @notes
 * - Balances are NUMERIC(19,2). They are written from decimal.Decimal and read
 *   back as text so no float conversion ever happens.
 * - The unique index on `number` is what guarantees account numbers never collide.
 */
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/transfa/banking-service/internal/domain"
	"go.uber.org/zap"
)

const accountColumns = `id, client_id, account_type, number, balance::text, status, gmf_exempt, created_at, modified_at`

// PostgresAccountRepository is the PostgreSQL implementation of AccountRepository.
type PostgresAccountRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresAccountRepository creates a new instance of PostgresAccountRepository.
func NewPostgresAccountRepository(db *pgxpool.Pool, logger *zap.Logger) *PostgresAccountRepository {
	return &PostgresAccountRepository{db: db, logger: logger.Named("account_repository")}
}

// Save inserts a new account or updates the mutable fields of an existing one.
func (r *PostgresAccountRepository) Save(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	state := account.State()

	var err error
	if state.ID == 0 {
		query := `
			INSERT INTO accounts (client_id, account_type, number, balance, status, gmf_exempt, created_at, modified_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id
		`
		err = r.db.QueryRow(ctx, query,
			state.ClientID,
			string(state.Type),
			state.Number,
			state.Balance.Decimal(),
			string(state.Status),
			state.GMFExempt,
			state.CreatedAt,
			state.ModifiedAt,
		).Scan(&state.ID)
	} else {
		query := `
			UPDATE accounts
			SET balance = $2, status = $3, gmf_exempt = $4, modified_at = $5
			WHERE id = $1
			RETURNING id
		`
		err = r.db.QueryRow(ctx, query,
			state.ID,
			state.Balance.Decimal(),
			string(state.Status),
			state.GMFExempt,
			state.ModifiedAt,
		).Scan(&state.ID)
	}

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("account %s: %w", state.Number, domain.ErrAccountNotFound)
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			r.logger.Warn("unique constraint violation saving account",
				zap.String("constraint", pgErr.ConstraintName),
				zap.String("number", state.Number),
			)
			return nil, fmt.Errorf("save account %s: %w", state.Number, ErrDuplicateKey)
		}
		r.logger.Error("failed to save account", zap.String("number", state.Number), zap.Error(err))
		return nil, fmt.Errorf("save account %s: %w", state.Number, err)
	}

	account.ID = state.ID
	return domain.RestoreAccount(state)
}

func (r *PostgresAccountRepository) FindByNumber(ctx context.Context, number string) (*domain.Account, bool, error) {
	return r.findOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE number = $1`, number)
}

func (r *PostgresAccountRepository) FindByID(ctx context.Context, id int64) (*domain.Account, bool, error) {
	return r.findOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
}

func (r *PostgresAccountRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE number = $1)`, number).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check account number %s: %w", number, err)
	}
	return exists, nil
}

// List returns every account ordered by ID.
func (r *PostgresAccountRepository) List(ctx context.Context) ([]*domain.Account, error) {
	rows, err := r.db.Query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

func (r *PostgresAccountRepository) findOne(ctx context.Context, query string, arg any) (*domain.Account, bool, error) {
	a, err := scanAccount(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return a, true, nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		s           domain.AccountState
		accountType string
		balance     string
		status      string
	)
	err := row.Scan(
		&s.ID,
		&s.ClientID,
		&accountType,
		&s.Number,
		&balance,
		&status,
		&s.GMFExempt,
		&s.CreatedAt,
		&s.ModifiedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}

	s.Type = domain.AccountType(accountType)
	s.Status = domain.AccountStatus(status)
	if s.Balance, err = domain.ParseMoney(balance); err != nil {
		return nil, fmt.Errorf("account %s has a malformed balance: %w", s.Number, err)
	}
	return domain.RestoreAccount(s)
}
