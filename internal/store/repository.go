/**
 * @description
 * This file defines the interfaces for the data access layer (repositories).
 * The services depend on these contracts only; PostgreSQL and in-memory
 * implementations live next to them in this package.
 *
 * @notes
 * - Lookups report absence with a found flag instead of an error. Whether a
 *   missing record is a failure is decided by the caller.
 * - Save assigns the ID on first insert and writes it back to the passed value.
 */
package store

import (
	"context"
	"errors"

	"github.com/transfa/banking-service/internal/domain"
)

// ErrDuplicateKey is returned when an insert or update violates a unique constraint.
var ErrDuplicateKey = errors.New("duplicate key")

// ClientRepository defines the persistence operations for clients.
type ClientRepository interface {
	Save(ctx context.Context, client *domain.Client) (*domain.Client, error)
	FindByID(ctx context.Context, id int64) (*domain.Client, bool, error)
	// Delete is logical; the client row is kept with a deletion stamp.
	Delete(ctx context.Context, id int64) error
	// HasLinkedAccounts reports whether the client owns any account that is not cancelled.
	HasLinkedAccounts(ctx context.Context, clientID int64) (bool, error)
	FindByIdentification(ctx context.Context, idType, idNumber string) (*domain.Client, bool, error)
}

// AccountRepository defines the persistence operations for accounts.
type AccountRepository interface {
	Save(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByNumber(ctx context.Context, number string) (*domain.Account, bool, error)
	FindByID(ctx context.Context, id int64) (*domain.Account, bool, error)
	ExistsByNumber(ctx context.Context, number string) (bool, error)
	List(ctx context.Context) ([]*domain.Account, error)
}

// TransactionRepository defines the persistence operations for ledger entries.
type TransactionRepository interface {
	Save(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	// SaveAll persists every entry or none of them.
	SaveAll(ctx context.Context, txs []*domain.Transaction) ([]*domain.Transaction, error)
	// FindByAccount returns entries whose origin or destination is number, newest first.
	FindByAccount(ctx context.Context, number string) ([]*domain.Transaction, error)
}
