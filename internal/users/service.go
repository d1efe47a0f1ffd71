package users

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/velorie/teamhub-backend/internal/notifications"
	"github.com/velorie/teamhub-backend/pkg/db/models"
	"github.com/velorie/teamhub-backend/pkg/enums"
	pkgerrors "github.com/velorie/teamhub-backend/pkg/errors"
	"github.com/velorie/teamhub-backend/pkg/logger"
)

const bcryptCost = 10

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, msg notifications.Message) error
}

// Stats is the admin dashboard summary.
type Stats struct {
	TeamCount    int64
	AdminBalance decimal.Decimal
}

// Service manages accounts and the internal wallet.
type Service interface {
	EnsureAdmin(ctx context.Context, login, password string) error
	CreateEmployee(ctx context.Context, login, password string) (*models.User, error)
	ListEmployees(ctx context.Context) ([]models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*models.User, error)
	Transfer(ctx context.Context, toUserID uuid.UUID, amount decimal.Decimal) (*models.User, error)
	TopUpWallet(ctx context.Context, amount decimal.Decimal) (*models.User, error)
	DashboardStats(ctx context.Context) (*Stats, error)
}

// ServiceParams carries the user service dependencies.
type ServiceParams struct {
	Logger   *logger.Logger
	DB       txRunner
	Repo     Repository
	Notifier notifier
}

type service struct {
	logg     *logger.Logger
	db       txRunner
	repo     Repository
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
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	if params.Notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifier required")
	}
	return &service{
		logg:     params.Logger,
		db:       params.DB,
		repo:     params.Repo,
		notifier: params.Notifier,
		now:      time.Now,
	}, nil
}

// HashPassword derives the stored credential hash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// EnsureAdmin creates the administrator account on first boot. An existing
// account with the configured login is left untouched.
func (s *service) EnsureAdmin(ctx context.Context, login, password string) error {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "admin login and password required")
	}

	_, err := s.repo.FindByLogin(ctx, login)
	if err == nil {
		return nil
	}
	if !IsNotFound(err) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up admin account")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash admin password")
	}
	admin := &models.User{
		ID:       uuid.New(),
		Login:    login,
		PassHash: hash,
		Role:     enums.UserRoleAdmin,
		Balance:  decimal.Zero,
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create admin account")
	}
	s.logg.Info(s.logg.WithUserID(ctx, admin.ID.String()), "admin account bootstrapped")
	return nil
}

func (s *service) CreateEmployee(ctx context.Context, login, password string) (*models.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "login and password required")
	}

	if _, err := s.repo.FindByLogin(ctx, login); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "login already taken")
	} else if !IsNotFound(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check login availability")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	user := &models.User{
		ID:       uuid.New(),
		Login:    login,
		PassHash: hash,
		Role:     enums.UserRoleEmployee,
		Balance:  decimal.Zero,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create employee")
	}

	msg := notifications.Message{
		Kind:  enums.NotificationEmployeeCreated,
		Title: "TeamHub",
		Body:  "Your account has been created. Sign in to the app.",
	}
	if err := s.notifier.Notify(ctx, user.ID, msg); err != nil {
		s.logg.Error(s.logg.WithUserID(ctx, user.ID.String()), "failed to notify new employee", err)
	}
	return user, nil
}

func (s *service) ListEmployees(ctx context.Context) ([]models.User, error) {
	employees, err := s.repo.ListEmployees(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list employees")
	}
	return employees, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find user")
	}
	return user, nil
}

// GetProfile loads the user together with their assigned projects.
func (s *service) GetProfile(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByIDWithProjects(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	return user, nil
}

// Transfer moves funds from the admin wallet to an employee. Both balance
// updates commit in one transaction; the recipient is notified afterwards.
func (s *service) Transfer(ctx context.Context, toUserID uuid.UUID, amount decimal.Decimal) (*models.User, error) {
	if toUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient required")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	admin, err := s.repo.FindAdmin(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve admin wallet")
	}
	recipient, err := s.GetByID(ctx, toUserID)
	if err != nil {
		return nil, err
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		covered, err := repo.DeductBalance(ctx, tx, admin.ID, amount)
		if err != nil {
			return err
		}
		if !covered {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "admin wallet has insufficient funds")
		}
		return repo.AddBalance(ctx, tx, recipient.ID, amount)
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "transfer funds")
	}

	msg := notifications.Message{
		Kind:  enums.NotificationMoneyReceived,
		Title: "Wallet",
		Body:  fmt.Sprintf("You received a transfer: %s", amount.StringFixed(2)),
		Data:  map[string]any{"amount": amount.StringFixed(2), "url": "/#wallet"},
	}
	if err := s.notifier.Notify(ctx, recipient.ID, msg); err != nil {
		s.logg.Error(s.logg.WithUserID(ctx, recipient.ID.String()), "failed to notify transfer recipient", err)
	}

	return s.repo.FindAdmin(ctx)
}

// TopUpWallet adds funds to the admin wallet manually.
func (s *service) TopUpWallet(ctx context.Context, amount decimal.Decimal) (*models.User, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	admin, err := s.repo.FindAdmin(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve admin wallet")
	}
	if err := s.repo.AddBalance(ctx, nil, admin.ID, amount); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "top up wallet")
	}

	msg := notifications.Message{
		Kind:  enums.NotificationWalletAdd,
		Title: "Wallet",
		Body:  fmt.Sprintf("Added manually: +%s", amount.StringFixed(2)),
		Data:  map[string]any{"amount": amount.StringFixed(2), "url": "/#wallet"},
	}
	if err := s.notifier.Notify(ctx, admin.ID, msg); err != nil {
		s.logg.Error(s.logg.WithUserID(ctx, admin.ID.String()), "failed to notify wallet top-up", err)
	}

	return s.repo.FindAdmin(ctx)
}

func (s *service) DashboardStats(ctx context.Context) (*Stats, error) {
	count, err := s.repo.CountEmployees(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count employees")
	}
	admin, err := s.repo.FindAdmin(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve admin wallet")
	}
	return &Stats{TeamCount: count, AdminBalance: admin.Balance}, nil
}
