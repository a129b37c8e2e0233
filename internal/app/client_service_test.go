package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/transfa/banking-service/internal/domain"
)

func TestCreateClient_AgeBoundary(t *testing.T) {
	tests := []struct {
		name      string
		birthDate time.Time
		wantErr   error
	}{
		{name: "exactly eighteen today", birthDate: time.Date(2006, time.June, 15, 0, 0, 0, 0, time.UTC)},
		{name: "eighteen tomorrow", birthDate: time.Date(2006, time.June, 16, 0, 0, 0, 0, time.UTC), wantErr: domain.ErrClientUnderage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			saved, err := env.clients.CreateClient(context.Background(), newTestClient(t, "1001", tt.birthDate))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				_, found, err := env.store.Clients.FindByIdentification(context.Background(), "CC", "1001")
				require.NoError(t, err)
				assert.False(t, found)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, saved.ID)
			assert.Equal(t, fixedNow, saved.CreatedAt)
			assert.Equal(t, fixedNow, saved.ModifiedAt)
			assert.Len(t, env.events.published(domain.EventClientCreated), 1)
		})
	}
}

func TestCreateClient_Validation(t *testing.T) {
	env := newTestEnv(t)
	client := newTestClient(t, "1001", time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC))
	client.LastName = "P"

	_, err := env.clients.CreateClient(context.Background(), client)
	require.ErrorIs(t, err, domain.ErrInvalidClientData)
}

func TestCreateClient_DuplicateIdentification(t *testing.T) {
	env := newTestEnv(t)
	env.seedClient(t, "1001")

	_, err := env.clients.CreateClient(context.Background(), newTestClient(t, "1001", time.Date(1985, time.March, 3, 0, 0, 0, 0, time.UTC)))
	require.ErrorIs(t, err, domain.ErrClientAlreadyExists)
}

func TestUpdateClient(t *testing.T) {
	env := newTestEnv(t)
	client := env.seedClient(t, "1001")
	email, err := domain.NewEmail("Nuevo@Example.com")
	require.NoError(t, err)

	later := fixedNow.Add(time.Hour)
	env.clients.now = func() time.Time { return later }

	updated, err := env.clients.UpdateClient(context.Background(), client.ID, ClientUpdate{FirstNames: "Maria", LastName: "Gomez", Email: email})
	require.NoError(t, err)
	assert.Equal(t, "Maria", updated.FirstNames)
	assert.Equal(t, "nuevo@example.com", updated.Email.String())
	assert.Equal(t, later, updated.ModifiedAt)
	assert.Equal(t, fixedNow, updated.CreatedAt)

	_, err = env.clients.UpdateClient(context.Background(), client.ID, ClientUpdate{FirstNames: "M", LastName: "Gomez", Email: email})
	require.ErrorIs(t, err, domain.ErrInvalidClientData)

	_, err = env.clients.UpdateClient(context.Background(), 404, ClientUpdate{FirstNames: "Maria", LastName: "Gomez", Email: email})
	require.ErrorIs(t, err, domain.ErrClientNotFound)
}

func TestDeleteClient(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client := env.seedClient(t, "1001")
	account := env.seedAccount(t, client.ID, domain.AccountTypeSavings, 1, "")

	err := env.clients.DeleteClient(ctx, client.ID)
	require.ErrorIs(t, err, domain.ErrClientHasLinkedAccounts)

	_, err = env.accounts.CancelAccount(ctx, account.Number)
	require.NoError(t, err)

	require.NoError(t, env.clients.DeleteClient(ctx, client.ID))
	assert.Len(t, env.events.published(domain.EventClientDeleted), 1)

	_, found, err := env.clients.FindClientByID(ctx, client.ID)
	require.NoError(t, err)
	assert.False(t, found)

	err = env.clients.DeleteClient(ctx, client.ID)
	require.ErrorIs(t, err, domain.ErrClientNotFound)
}
