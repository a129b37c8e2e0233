/**
 * @description
 * PostgreSQL implementation of ClientRepository. Deleted clients stay in the
 * `clients` table with `deleted_at` set and are invisible to every lookup.
 *
 * @dependencies
 * - github.com/jackc/pgx/v5/pgxpool: The PostgreSQL driver.
 * - go.uber.org/zap: Structured logging of database failures.
 */
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/transfa/banking-service/internal/domain"
	"go.uber.org/zap"
)

const uniqueViolationCode = "23505"

const clientColumns = `id, identification_type, identification_number, first_names, last_name,
	email, birth_date, created_at, modified_at`

// PostgresClientRepository is the PostgreSQL implementation of ClientRepository.
type PostgresClientRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresClientRepository creates a new instance of PostgresClientRepository.
func NewPostgresClientRepository(db *pgxpool.Pool, logger *zap.Logger) *PostgresClientRepository {
	return &PostgresClientRepository{db: db, logger: logger.Named("client_repository")}
}

// Save inserts a new client or updates an existing, non-deleted one.
func (r *PostgresClientRepository) Save(ctx context.Context, client *domain.Client) (*domain.Client, error) {
	var err error
	if client.ID == 0 {
		query := `
			INSERT INTO clients (identification_type, identification_number, first_names, last_name,
				email, birth_date, created_at, modified_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id
		`
		err = r.db.QueryRow(ctx, query,
			client.IdentificationType,
			client.IdentificationNumber,
			client.FirstNames,
			client.LastName,
			client.Email.String(),
			client.BirthDate,
			client.CreatedAt,
			client.ModifiedAt,
		).Scan(&client.ID)
	} else {
		query := `
			UPDATE clients
			SET first_names = $2, last_name = $3, email = $4, modified_at = $5
			WHERE id = $1 AND deleted_at IS NULL
			RETURNING id
		`
		err = r.db.QueryRow(ctx, query,
			client.ID,
			client.FirstNames,
			client.LastName,
			client.Email.String(),
			client.ModifiedAt,
		).Scan(&client.ID)
	}

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("client %d: %w", client.ID, domain.ErrClientNotFound)
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			r.logger.Warn("unique constraint violation saving client", zap.String("constraint", pgErr.ConstraintName))
			return nil, fmt.Errorf("save client: %w", ErrDuplicateKey)
		}
		r.logger.Error("failed to save client", zap.Error(err))
		return nil, fmt.Errorf("save client: %w", err)
	}

	saved := *client
	return &saved, nil
}

func (r *PostgresClientRepository) FindByID(ctx context.Context, id int64) (*domain.Client, bool, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1 AND deleted_at IS NULL`
	return r.findOne(ctx, query, id)
}

func (r *PostgresClientRepository) FindByIdentification(ctx context.Context, idType, idNumber string) (*domain.Client, bool, error) {
	query := `SELECT ` + clientColumns + ` FROM clients
		WHERE identification_type = $1 AND identification_number = $2 AND deleted_at IS NULL`
	return r.findOne(ctx, query, idType, idNumber)
}

// Delete marks the client as deleted. Deleting an unknown or already deleted client is a no-op.
func (r *PostgresClientRepository) Delete(ctx context.Context, id int64) error {
	query := `UPDATE clients SET deleted_at = $2, modified_at = $2 WHERE id = $1 AND deleted_at IS NULL`
	if _, err := r.db.Exec(ctx, query, id, time.Now().UTC()); err != nil {
		r.logger.Error("failed to delete client", zap.Int64("client_id", id), zap.Error(err))
		return fmt.Errorf("delete client %d: %w", id, err)
	}
	return nil
}

// HasLinkedAccounts counts the client's accounts that are not cancelled.
func (r *PostgresClientRepository) HasLinkedAccounts(ctx context.Context, clientID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM accounts WHERE client_id = $1 AND status <> $2)`
	var linked bool
	if err := r.db.QueryRow(ctx, query, clientID, string(domain.AccountStatusCancelled)).Scan(&linked); err != nil {
		return false, fmt.Errorf("check linked accounts for client %d: %w", clientID, err)
	}
	return linked, nil
}

func (r *PostgresClientRepository) findOne(ctx context.Context, query string, args ...any) (*domain.Client, bool, error) {
	var (
		c     domain.Client
		email string
	)
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&c.ID,
		&c.IdentificationType,
		&c.IdentificationNumber,
		&c.FirstNames,
		&c.LastName,
		&email,
		&c.BirthDate,
		&c.CreatedAt,
		&c.ModifiedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("find client: %w", err)
	}

	c.Email, err = domain.NewEmail(email)
	if err != nil {
		return nil, false, fmt.Errorf("client %d has a malformed stored email: %w", c.ID, err)
	}
	return &c, true, nil
}
