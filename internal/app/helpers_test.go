package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/transfa/banking-service/internal/domain"
	"github.com/transfa/banking-service/internal/store"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

// recordingPublisher captures published routing keys and payloads.
type recordingPublisher struct {
	mu       sync.Mutex
	keys     []string
	payloads []interface{}
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, routingKey)
	p.payloads = append(p.payloads, payload)
	return p.err
}

func (p *recordingPublisher) Close() {}

func (p *recordingPublisher) published(routingKey string) []interface{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []interface{}
	for i, k := range p.keys {
		if k == routingKey {
			out = append(out, p.payloads[i])
		}
	}
	return out
}

// failingAccountRepository wraps a real repository and fails Save for one number.
type failingAccountRepository struct {
	store.AccountRepository
	failNumber string
	err        error
}

func (r *failingAccountRepository) Save(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	if account.Number == r.failNumber {
		return nil, r.err
	}
	return r.AccountRepository.Save(ctx, account)
}

var errStoreDown = errors.New("store unavailable")

type testEnv struct {
	store        *store.MemoryStore
	events       *recordingPublisher
	clients      *ClientService
	accounts     *AccountService
	transactions *TransactionService
}

func newTestEnv(t *testing.T, numbers ...int64) *testEnv {
	t.Helper()

	mem := store.NewMemoryStore()
	if len(numbers) == 0 {
		numbers = []int64{1}
	}
	events := &recordingPublisher{}
	logger := zap.NewNop()

	accountSvc := NewAccountService(mem.Clients, mem.Accounts, NewSequenceNumberGenerator(numbers...), events, logger)
	accountSvc.now = func() time.Time { return fixedNow }
	txSvc := NewTransactionService(accountSvc, mem.Transactions, events, logger)
	txSvc.now = func() time.Time { return fixedNow }
	clientSvc := NewClientService(mem.Clients, events, logger)
	clientSvc.now = func() time.Time { return fixedNow }

	return &testEnv{
		store:        mem,
		events:       events,
		clients:      clientSvc,
		accounts:     accountSvc,
		transactions: txSvc,
	}
}

func newTestClient(t *testing.T, idNumber string, birthDate time.Time) *domain.Client {
	t.Helper()
	email, err := domain.NewEmail("ana.perez@example.com")
	require.NoError(t, err)
	return domain.NewClient("CC", idNumber, "Ana", "Perez", email, birthDate, fixedNow)
}

func (e *testEnv) seedClient(t *testing.T, idNumber string) *domain.Client {
	t.Helper()
	saved, err := e.store.Clients.Save(context.Background(), newTestClient(t, idNumber, time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	return saved
}

// seedAccount stores an active account with the given balance directly in memory.
func (e *testEnv) seedAccount(t *testing.T, clientID int64, kind domain.AccountType, body int64, balance string) *domain.Account {
	t.Helper()
	account, err := domain.NewAccount(clientID, kind, body, false, fixedNow)
	require.NoError(t, err)
	if balance != "" {
		amount, err := domain.ParseMoney(balance)
		require.NoError(t, err)
		account.Deposit(amount, fixedNow)
	}
	saved, err := e.store.Accounts.Save(context.Background(), account)
	require.NoError(t, err)
	return saved
}

func (e *testEnv) balanceOf(t *testing.T, number string) domain.Money {
	t.Helper()
	account, found, err := e.store.Accounts.FindByNumber(context.Background(), number)
	require.NoError(t, err)
	require.True(t, found, "account %s not found", number)
	return account.Balance()
}

func mustMoney(t *testing.T, s string) domain.Money {
	t.Helper()
	m, err := domain.ParseMoney(s)
	require.NoError(t, err)
	return m
}
