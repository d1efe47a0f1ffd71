package subscriptions

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/velorie/teamhub-backend/pkg/db/models"
	pkgerrors "github.com/velorie/teamhub-backend/pkg/errors"
)

// Keys carries the client-side encryption material for one endpoint.
type Keys struct {
	P256dh string
	Auth   string
}

// Service defines the subscription registry operations exposed to the API
// and the push dispatcher.
type Service interface {
	Register(ctx context.Context, userID uuid.UUID, endpoint string, keys Keys) error
	List(ctx context.Context, userID uuid.UUID) ([]models.PushSubscription, error)
	Remove(ctx context.Context, userID uuid.UUID, endpoint string) error
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService wires the subscription registry.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "subscriptions repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Register(ctx context.Context, userID uuid.UUID, endpoint string, keys Keys) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" || strings.TrimSpace(keys.P256dh) == "" || strings.TrimSpace(keys.Auth) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "subscription endpoint and keys are required")
	}

	sub := &models.PushSubscription{
		ID:        uuid.New(),
		UserID:    userID,
		Endpoint:  endpoint,
		P256dh:    keys.P256dh,
		Auth:      keys.Auth,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Upsert(ctx, sub); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store subscription")
	}
	return nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]models.PushSubscription, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	subs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list subscriptions")
	}
	return subs, nil
}

func (s *service) Remove(ctx context.Context, userID uuid.UUID, endpoint string) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if strings.TrimSpace(endpoint) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "endpoint required")
	}
	if err := s.repo.Remove(ctx, userID, endpoint); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove subscription")
	}
	return nil
}
