/**
 * @description
 * In-memory implementations of the repository contracts. They back the service
 * when STORE_DRIVER=memory and are used by tests across the module.
 *
 * @notes
 * - Values are copied on the way in and on the way out so callers never share
 *   state with the store, matching what a database round trip gives you.
 * - Each repository guards its maps with its own mutex; there are no cross-store
 *   transactions.
 */
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/transfa/banking-service/internal/domain"
)

// MemoryStore bundles the in-memory repositories so they can see each other
// (client deletion needs to inspect accounts).
type MemoryStore struct {
	Clients      *MemoryClientRepository
	Accounts     *MemoryAccountRepository
	Transactions *MemoryTransactionRepository
}

// NewMemoryStore creates an empty, linked set of in-memory repositories.
func NewMemoryStore() *MemoryStore {
	accounts := NewMemoryAccountRepository()
	return &MemoryStore{
		Clients:      NewMemoryClientRepository(accounts),
		Accounts:     accounts,
		Transactions: NewMemoryTransactionRepository(),
	}
}

// MemoryClientRepository stores clients in a map keyed by ID.
type MemoryClientRepository struct {
	mu       sync.RWMutex
	nextID   int64
	clients  map[int64]domain.Client
	accounts *MemoryAccountRepository
}

// NewMemoryClientRepository creates a client store that consults accounts for linked-account checks.
func NewMemoryClientRepository(accounts *MemoryAccountRepository) *MemoryClientRepository {
	return &MemoryClientRepository{
		clients:  make(map[int64]domain.Client),
		accounts: accounts,
	}
}

// Save inserts or replaces a client, assigning an ID on first save.
func (r *MemoryClientRepository) Save(_ context.Context, client *domain.Client) (*domain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, existing := range r.clients {
		if id != client.ID && existing.DeletedAt == nil &&
			existing.IdentificationType == client.IdentificationType &&
			existing.IdentificationNumber == client.IdentificationNumber {
			return nil, ErrDuplicateKey
		}
	}

	if client.ID == 0 {
		r.nextID++
		client.ID = r.nextID
	}
	r.clients[client.ID] = *client
	saved := *client
	return &saved, nil
}

// FindByID returns a client that has not been logically deleted.
func (r *MemoryClientRepository) FindByID(_ context.Context, id int64) (*domain.Client, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.clients[id]
	if !ok || c.DeletedAt != nil {
		return nil, false, nil
	}
	return &c, true, nil
}

// Delete marks a client as deleted.
func (r *MemoryClientRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.clients[id]
	if !ok || c.DeletedAt != nil {
		return nil
	}
	now := time.Now()
	c.DeletedAt = &now
	r.clients[id] = c
	return nil
}

// HasLinkedAccounts reports whether the client holds any account that is not cancelled.
func (r *MemoryClientRepository) HasLinkedAccounts(ctx context.Context, clientID int64) (bool, error) {
	if r.accounts == nil {
		return false, nil
	}
	return r.accounts.hasOpenAccounts(clientID), nil
}

// FindByIdentification looks a live client up by identification type and number.
func (r *MemoryClientRepository) FindByIdentification(_ context.Context, idType, idNumber string) (*domain.Client, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.clients {
		if c.DeletedAt == nil && c.IdentificationType == idType && c.IdentificationNumber == idNumber {
			found := c
			return &found, true, nil
		}
	}
	return nil, false, nil
}

// MemoryAccountRepository stores account snapshots keyed by ID.
type MemoryAccountRepository struct {
	mu       sync.RWMutex
	nextID   int64
	accounts map[int64]domain.AccountState
	byNumber map[string]int64
}

// NewMemoryAccountRepository creates an empty account store.
func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{
		accounts: make(map[int64]domain.AccountState),
		byNumber: make(map[string]int64),
	}
}

// Save inserts or replaces an account. A number held by another account yields ErrDuplicateKey.
func (r *MemoryAccountRepository) Save(_ context.Context, account *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, taken := r.byNumber[account.Number]; taken && id != account.ID {
		return nil, ErrDuplicateKey
	}

	if account.ID == 0 {
		r.nextID++
		account.ID = r.nextID
	}
	state := account.State()
	r.accounts[state.ID] = state
	r.byNumber[state.Number] = state.ID
	return domain.RestoreAccount(state)
}

// FindByNumber returns the account with the given number.
func (r *MemoryAccountRepository) FindByNumber(_ context.Context, number string) (*domain.Account, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byNumber[number]
	if !ok {
		return nil, false, nil
	}
	return restoreFound(r.accounts[id])
}

// FindByID returns the account with the given ID.
func (r *MemoryAccountRepository) FindByID(_ context.Context, id int64) (*domain.Account, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.accounts[id]
	if !ok {
		return nil, false, nil
	}
	return restoreFound(state)
}

// ExistsByNumber reports whether number is already allocated.
func (r *MemoryAccountRepository) ExistsByNumber(_ context.Context, number string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byNumber[number]
	return ok, nil
}

// List returns every account ordered by ID.
func (r *MemoryAccountRepository) List(_ context.Context) ([]*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int64, 0, len(r.accounts))
	for id := range r.accounts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]*domain.Account, 0, len(ids))
	for _, id := range ids {
		a, err := domain.RestoreAccount(r.accounts[id])
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *MemoryAccountRepository) hasOpenAccounts(clientID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.accounts {
		if a.ClientID == clientID && a.Status != domain.AccountStatusCancelled {
			return true
		}
	}
	return false
}

func restoreFound(state domain.AccountState) (*domain.Account, bool, error) {
	a, err := domain.RestoreAccount(state)
	if err != nil {
		return nil, false, err
	}
	return a, true, nil
}

// MemoryTransactionRepository is an append-only slice of ledger entries.
type MemoryTransactionRepository struct {
	mu      sync.RWMutex
	nextID  int64
	entries []domain.Transaction
}

// NewMemoryTransactionRepository creates an empty ledger.
func NewMemoryTransactionRepository() *MemoryTransactionRepository {
	return &MemoryTransactionRepository{}
}

// Save appends one entry and assigns its ID.
func (r *MemoryTransactionRepository) Save(_ context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.appendLocked(tx), nil
}

// SaveAll appends entries under a single lock.
func (r *MemoryTransactionRepository) SaveAll(_ context.Context, txs []*domain.Transaction) ([]*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	saved := make([]*domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		saved = append(saved, r.appendLocked(tx))
	}
	return saved, nil
}

// FindByAccount returns the entries where number is origin or destination, newest first.
func (r *MemoryTransactionRepository) FindByAccount(_ context.Context, number string) ([]*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Transaction, 0)
	for i := range r.entries {
		e := r.entries[i]
		if (e.OriginAccount != nil && *e.OriginAccount == number) ||
			(e.DestinationAccount != nil && *e.DestinationAccount == number) {
			out = append(out, &e)
		}
	}
	// Newest first; later inserts win ties.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID > out[j].ID
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

// Len returns the number of stored entries.
func (r *MemoryTransactionRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func (r *MemoryTransactionRepository) appendLocked(tx *domain.Transaction) *domain.Transaction {
	r.nextID++
	tx.ID = r.nextID
	r.entries = append(r.entries, *tx)
	saved := *tx
	return &saved
}
