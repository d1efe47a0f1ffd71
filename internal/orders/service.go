package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/velorie/teamhub-backend/internal/notifications"
	"github.com/velorie/teamhub-backend/internal/users"
	"github.com/velorie/teamhub-backend/pkg/db/models"
	"github.com/velorie/teamhub-backend/pkg/enums"
	pkgerrors "github.com/velorie/teamhub-backend/pkg/errors"
	"github.com/velorie/teamhub-backend/pkg/logger"
)

const defaultListLimit = 200

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, msg notifications.Message) error
}

// CreateInput carries the fields for a new order.
type CreateInput struct {
	Client  string
	DueDate time.Time
	Amount  decimal.Decimal
	Todo    string
}

// Service manages client orders and their completion payout.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Order, error)
	List(ctx context.Context) ([]models.Order, error)
	Complete(ctx context.Context, orderID uuid.UUID) (*models.User, error)
}

// ServiceParams carries the order service dependencies.
type ServiceParams struct {
	Logger   *logger.Logger
	DB       txRunner
	Repo     Repository
	Users    users.Repository
	Notifier notifier
}

type service struct {
	logg     *logger.Logger
	db       txRunner
	repo     Repository
	users    users.Repository
	notifier notifier
	now      func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "db runner required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "orders repository required")
	}
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	if params.Notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifier required")
	}
	return &service{
		logg:     params.Logger,
		db:       params.DB,
		repo:     params.Repo,
		users:    params.Users,
		notifier: params.Notifier,
		now:      time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Order, error) {
	client := strings.TrimSpace(input.Client)
	todo := strings.TrimSpace(input.Todo)
	if client == "" || todo == "" || input.DueDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client, due date and todo required")
	}
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	order := &models.Order{
		ID:      uuid.New(),
		Client:  client,
		DueDate: input.DueDate,
		Amount:  input.Amount,
		Todo:    todo,
		Status:  enums.OrderStatusOpen,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}
	return order, nil
}

func (s *service) List(ctx context.Context) ([]models.Order, error) {
	orders, err := s.repo.List(ctx, defaultListLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return orders, nil
}

// Complete closes an open order and credits its amount to the admin wallet.
// The status flip and the payout commit together; the notification follows.
func (s *service) Complete(ctx context.Context, orderID uuid.UUID) (*models.User, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find order")
	}

	admin, err := s.users.FindAdmin(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve admin wallet")
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		done, err := s.repo.MarkDone(ctx, tx, order.ID, s.now().UTC())
		if err != nil {
			return err
		}
		if !done {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not open")
		}
		return s.users.WithTx(tx).AddBalance(ctx, tx, admin.ID, order.Amount)
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete order")
	}

	msg := notifications.Message{
		Kind:  enums.NotificationOrderDone,
		Title: "Orders",
		Body:  fmt.Sprintf("Order completed. +%s added to the wallet.", order.Amount.StringFixed(2)),
		Data: map[string]any{
			"orderId": order.ID.String(),
			"url":     "/#orders",
		},
	}
	if err := s.notifier.Notify(ctx, admin.ID, msg); err != nil {
		s.logg.Error(s.logg.WithUserID(ctx, admin.ID.String()), "failed to notify order completion", err)
	}

	return s.users.FindAdmin(ctx)
}
