package users

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/velorie/teamhub-backend/internal/notifications"
	"github.com/velorie/teamhub-backend/pkg/db/models"
	"github.com/velorie/teamhub-backend/pkg/enums"
	pkgerrors "github.com/velorie/teamhub-backend/pkg/errors"
	"github.com/velorie/teamhub-backend/pkg/logger"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type captureNotifier struct {
	sent []notifications.Message
	to   []uuid.UUID
}

func (c *captureNotifier) Notify(_ context.Context, userID uuid.UUID, msg notifications.Message) error {
	c.to = append(c.to, userID)
	c.sent = append(c.sent, msg)
	return nil
}

func setupUsersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	users := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  login TEXT NOT NULL UNIQUE,
  pass_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'employee',
  balance NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	projects := `
CREATE TABLE IF NOT EXISTS projects (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  image_url TEXT NOT NULL DEFAULT '',
  income NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	members := `
CREATE TABLE IF NOT EXISTS project_members (
  project_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  created_at DATETIME,
  PRIMARY KEY (project_id, user_id)
);`
	require.NoError(t, db.Exec(users).Error)
	require.NoError(t, db.Exec(projects).Error)
	require.NoError(t, db.Exec(members).Error)
	return db
}

func newUsersService(t *testing.T, db *gorm.DB, notifier *captureNotifier) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Logger:   logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		DB:       gormTxRunner{db: db},
		Repo:     NewRepository(db),
		Notifier: notifier,
	})
	require.NoError(t, err)
	return svc
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	db := setupUsersTestDB(t)
	svc := newUsersService(t, db, &captureNotifier{})
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "boss", "secret"))
	require.NoError(t, svc.EnsureAdmin(ctx, "boss", "different-password"))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("role = ?", enums.UserRoleAdmin).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	admin, err := NewRepository(db).FindAdmin(ctx)
	require.NoError(t, err)
	assert.Equal(t, "boss", admin.Login)
}

func TestCreateEmployeeNotifiesAndRejectsDuplicates(t *testing.T) {
	db := setupUsersTestDB(t)
	notifier := &captureNotifier{}
	svc := newUsersService(t, db, notifier)
	ctx := context.Background()

	user, err := svc.CreateEmployee(ctx, "anna", "pass123")
	require.NoError(t, err)
	assert.Equal(t, enums.UserRoleEmployee, user.Role)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, enums.NotificationEmployeeCreated, notifier.sent[0].Kind)
	assert.Equal(t, user.ID, notifier.to[0])

	_, err = svc.CreateEmployee(ctx, "anna", "other")
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeConflict, coded.Code())
}

func TestTransferMovesFundsAtomically(t *testing.T) {
	db := setupUsersTestDB(t)
	notifier := &captureNotifier{}
	svc := newUsersService(t, db, notifier)
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "boss", "secret"))
	repo := NewRepository(db)
	admin, err := repo.FindAdmin(ctx)
	require.NoError(t, err)
	require.NoError(t, db.Model(admin).Update("balance", decimal.NewFromInt(100)).Error)

	employee, err := svc.CreateEmployee(ctx, "anna", "pass123")
	require.NoError(t, err)

	updatedAdmin, err := svc.Transfer(ctx, employee.ID, decimal.NewFromInt(40))
	require.NoError(t, err)
	assert.True(t, updatedAdmin.Balance.Equal(decimal.NewFromInt(60)), "admin balance: %s", updatedAdmin.Balance)

	reloaded, err := repo.FindByID(ctx, employee.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.Balance.Equal(decimal.NewFromInt(40)), "employee balance: %s", reloaded.Balance)

	last := notifier.sent[len(notifier.sent)-1]
	assert.Equal(t, enums.NotificationMoneyReceived, last.Kind)
}

func TestTransferInsufficientFunds(t *testing.T) {
	db := setupUsersTestDB(t)
	notifier := &captureNotifier{}
	svc := newUsersService(t, db, notifier)
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "boss", "secret"))
	employee, err := svc.CreateEmployee(ctx, "anna", "pass123")
	require.NoError(t, err)
	sentBefore := len(notifier.sent)

	_, err = svc.Transfer(ctx, employee.ID, decimal.NewFromInt(10))
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeStateConflict, coded.Code())

	// The failed transfer must not move anything or notify anyone.
	reloaded, err := NewRepository(db).FindByID(ctx, employee.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.Balance.IsZero())
	assert.Len(t, notifier.sent, sentBefore)
}

func TestTopUpWalletNotifiesAdmin(t *testing.T) {
	db := setupUsersTestDB(t)
	notifier := &captureNotifier{}
	svc := newUsersService(t, db, notifier)
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "boss", "secret"))

	admin, err := svc.TopUpWallet(ctx, decimal.NewFromFloat(49.99))
	require.NoError(t, err)
	assert.True(t, admin.Balance.Equal(decimal.NewFromFloat(49.99)), "balance: %s", admin.Balance)

	last := notifier.sent[len(notifier.sent)-1]
	assert.Equal(t, enums.NotificationWalletAdd, last.Kind)
	assert.Equal(t, admin.ID, notifier.to[len(notifier.to)-1])
}

func TestDashboardStats(t *testing.T) {
	db := setupUsersTestDB(t)
	svc := newUsersService(t, db, &captureNotifier{})
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "boss", "secret"))
	_, err := svc.CreateEmployee(ctx, "anna", "pass123")
	require.NoError(t, err)
	_, err = svc.CreateEmployee(ctx, "tomek", "pass123")
	require.NoError(t, err)

	stats, err := svc.DashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TeamCount)
	assert.True(t, stats.AdminBalance.IsZero())
}
