package orders

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/velorie/teamhub-backend/internal/notifications"
	"github.com/velorie/teamhub-backend/internal/users"
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

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	usersSchema := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  login TEXT NOT NULL UNIQUE,
  pass_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'employee',
  balance NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	ordersSchema := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  client TEXT NOT NULL,
  due_date DATETIME NOT NULL,
  amount NUMERIC NOT NULL,
  todo TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'open',
  done_at DATETIME,
  notified_7d INTEGER NOT NULL DEFAULT 0,
  notified_3d INTEGER NOT NULL DEFAULT 0,
  notified_24h INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(usersSchema).Error)
	require.NoError(t, db.Exec(ordersSchema).Error)
	return db
}

func seedAdmin(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	admin := &models.User{
		ID:       uuid.New(),
		Login:    "boss",
		PassHash: "x",
		Role:     enums.UserRoleAdmin,
		Balance:  decimal.Zero,
	}
	require.NoError(t, db.Create(admin).Error)
	return admin
}

func newOrdersService(t *testing.T, db *gorm.DB, notifier *captureNotifier) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Logger:   logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		DB:       gormTxRunner{db: db},
		Repo:     NewRepository(db),
		Users:    users.NewRepository(db),
		Notifier: notifier,
	})
	require.NoError(t, err)
	return svc
}

func TestCreateAndListOrders(t *testing.T) {
	db := setupOrdersTestDB(t)
	seedAdmin(t, db)
	svc := newOrdersService(t, db, &captureNotifier{})
	ctx := context.Background()

	due := time.Now().UTC().Add(10 * 24 * time.Hour)
	order, err := svc.Create(ctx, CreateInput{
		Client:  "Acme",
		DueDate: due,
		Amount:  decimal.NewFromInt(500),
		Todo:    "full logo set",
	})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusOpen, order.Status)
	assert.False(t, order.Notified7d)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Acme", list[0].Client)
}

func TestCreateOrderValidation(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrdersService(t, db, &captureNotifier{})
	due := time.Now().UTC().Add(24 * time.Hour)

	cases := []struct {
		name  string
		input CreateInput
	}{
		{"missing client", CreateInput{DueDate: due, Amount: decimal.NewFromInt(1), Todo: "x"}},
		{"missing due date", CreateInput{Client: "Acme", Amount: decimal.NewFromInt(1), Todo: "x"}},
		{"missing todo", CreateInput{Client: "Acme", DueDate: due, Amount: decimal.NewFromInt(1)}},
		{"zero amount", CreateInput{Client: "Acme", DueDate: due, Todo: "x"}},
		{"negative amount", CreateInput{Client: "Acme", DueDate: due, Amount: decimal.NewFromInt(-5), Todo: "x"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.input)
			coded := pkgerrors.As(err)
			require.NotNil(t, coded)
			assert.Equal(t, pkgerrors.CodeValidation, coded.Code())
		})
	}
}

func TestCompleteOrderCreditsAdminWallet(t *testing.T) {
	db := setupOrdersTestDB(t)
	admin := seedAdmin(t, db)
	notifier := &captureNotifier{}
	svc := newOrdersService(t, db, notifier)
	ctx := context.Background()

	order, err := svc.Create(ctx, CreateInput{
		Client:  "Acme",
		DueDate: time.Now().UTC().Add(48 * time.Hour),
		Amount:  decimal.NewFromFloat(750.50),
		Todo:    "brand refresh",
	})
	require.NoError(t, err)

	updatedAdmin, err := svc.Complete(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, updatedAdmin.Balance.Equal(decimal.NewFromFloat(750.50)), "balance: %s", updatedAdmin.Balance)

	reloaded, err := NewRepository(db).FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusDone, reloaded.Status)
	require.NotNil(t, reloaded.DoneAt)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, enums.NotificationOrderDone, notifier.sent[0].Kind)
	assert.Equal(t, admin.ID, notifier.to[0])
}

func TestCompleteOrderTwiceIsStateConflict(t *testing.T) {
	db := setupOrdersTestDB(t)
	seedAdmin(t, db)
	notifier := &captureNotifier{}
	svc := newOrdersService(t, db, notifier)
	ctx := context.Background()

	order, err := svc.Create(ctx, CreateInput{
		Client:  "Acme",
		DueDate: time.Now().UTC().Add(48 * time.Hour),
		Amount:  decimal.NewFromInt(100),
		Todo:    "banner",
	})
	require.NoError(t, err)

	_, err = svc.Complete(ctx, order.ID)
	require.NoError(t, err)

	_, err = svc.Complete(ctx, order.ID)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeStateConflict, coded.Code())

	// The wallet must be credited exactly once.
	admin, err := users.NewRepository(db).FindAdmin(ctx)
	require.NoError(t, err)
	assert.True(t, admin.Balance.Equal(decimal.NewFromInt(100)), "balance: %s", admin.Balance)
	assert.Len(t, notifier.sent, 1)
}

func TestCompleteMissingOrder(t *testing.T) {
	db := setupOrdersTestDB(t)
	seedAdmin(t, db)
	svc := newOrdersService(t, db, &captureNotifier{})

	_, err := svc.Complete(context.Background(), uuid.New())
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}

func TestLatchDeadlineFlagGuards(t *testing.T) {
	db := setupOrdersTestDB(t)
	seedAdmin(t, db)
	repo := NewRepository(db)
	ctx := context.Background()

	order := &models.Order{
		ID:      uuid.New(),
		Client:  "Acme",
		DueDate: time.Now().UTC().Add(5 * 24 * time.Hour),
		Amount:  decimal.NewFromInt(100),
		Todo:    "banner",
		Status:  enums.OrderStatusOpen,
	}
	require.NoError(t, db.Create(order).Error)

	latched, err := repo.LatchDeadlineFlag(ctx, nil, order.ID, "notified_7d")
	require.NoError(t, err)
	assert.True(t, latched)

	// Second latch loses.
	latched, err = repo.LatchDeadlineFlag(ctx, nil, order.ID, "notified_7d")
	require.NoError(t, err)
	assert.False(t, latched)

	// Closed orders cannot latch.
	require.NoError(t, db.Model(order).Update("status", enums.OrderStatusDone).Error)
	latched, err = repo.LatchDeadlineFlag(ctx, nil, order.ID, "notified_3d")
	require.NoError(t, err)
	assert.False(t, latched)

	// Unknown columns are rejected.
	_, err = repo.LatchDeadlineFlag(ctx, nil, order.ID, "status")
	require.Error(t, err)
}
