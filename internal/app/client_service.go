/**
 * @description
 * ClientService manages client registration, updates and logical deletion.
 */
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/transfa/banking-service/internal/domain"
	"github.com/transfa/banking-service/internal/store"
	"github.com/transfa/banking-service/pkg/rabbitmq"
	"go.uber.org/zap"
)

// ClientUpdate carries the fields a client may change after registration.
type ClientUpdate struct {
	FirstNames string
	LastName   string
	Email      domain.Email
}

// ClientService holds the dependencies for client operations.
type ClientService struct {
	clients store.ClientRepository
	events  rabbitmq.Publisher
	logger  *zap.Logger
	now     func() time.Time
}

// NewClientService creates a new ClientService.
func NewClientService(clients store.ClientRepository, events rabbitmq.Publisher, logger *zap.Logger) *ClientService {
	return &ClientService{
		clients: clients,
		events:  events,
		logger:  logger.Named("client_service"),
		now:     time.Now,
	}
}

// CreateClient validates and registers a new client.
func (s *ClientService) CreateClient(ctx context.Context, client *domain.Client) (*domain.Client, error) {
	if err := client.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	if !client.IsAdult(now) {
		s.logger.Warn("rejected underage client", zap.String("identification_number", client.IdentificationNumber))
		return nil, domain.ErrClientUnderage
	}

	if _, exists, err := s.clients.FindByIdentification(ctx, client.IdentificationType, client.IdentificationNumber); err != nil {
		return nil, fmt.Errorf("check identification: %w", err)
	} else if exists {
		return nil, domain.ErrClientAlreadyExists
	}

	client.MarkCreated(now)
	saved, err := s.clients.Save(ctx, client)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return nil, domain.ErrClientAlreadyExists
		}
		return nil, fmt.Errorf("save client: %w", err)
	}

	s.logger.Info("client created", zap.Int64("client_id", saved.ID))
	publishEvent(ctx, s.events, s.logger, domain.EventClientCreated, clientEvent(saved))
	return saved, nil
}

// DeleteClient logically deletes a client that has no open accounts.
func (s *ClientService) DeleteClient(ctx context.Context, id int64) error {
	client, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	linked, err := s.clients.HasLinkedAccounts(ctx, id)
	if err != nil {
		return fmt.Errorf("check linked accounts: %w", err)
	}
	if linked {
		s.logger.Warn("client deletion blocked by linked accounts", zap.Int64("client_id", id))
		return domain.ErrClientHasLinkedAccounts
	}

	if err := s.clients.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete client %d: %w", id, err)
	}

	s.logger.Info("client deleted", zap.Int64("client_id", id))
	publishEvent(ctx, s.events, s.logger, domain.EventClientDeleted, clientEvent(client))
	return nil
}

// UpdateClient replaces the client's names and email.
func (s *ClientService) UpdateClient(ctx context.Context, id int64, update ClientUpdate) (*domain.Client, error) {
	client, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	client.FirstNames = update.FirstNames
	client.LastName = update.LastName
	client.Email = update.Email
	if err := client.Validate(); err != nil {
		return nil, err
	}
	client.MarkModified(s.now())

	saved, err := s.clients.Save(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("save client %d: %w", id, err)
	}
	publishEvent(ctx, s.events, s.logger, domain.EventClientUpdated, clientEvent(saved))
	return saved, nil
}

// FindClientByID is a plain lookup; a missing client is reported through found.
func (s *ClientService) FindClientByID(ctx context.Context, id int64) (*domain.Client, bool, error) {
	client, found, err := s.clients.FindByID(ctx, id)
	if err != nil {
		return nil, false, fmt.Errorf("find client %d: %w", id, err)
	}
	return client, found, nil
}

func (s *ClientService) find(ctx context.Context, id int64) (*domain.Client, error) {
	client, found, err := s.FindClientByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("client %d: %w", id, domain.ErrClientNotFound)
	}
	return client, nil
}

func clientEvent(c *domain.Client) domain.ClientEvent {
	return domain.ClientEvent{
		ClientID:             c.ID,
		IdentificationType:   c.IdentificationType,
		IdentificationNumber: c.IdentificationNumber,
	}
}
