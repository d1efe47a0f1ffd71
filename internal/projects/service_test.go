package projects

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
	"github.com/velorie/teamhub-backend/internal/users"
	"github.com/velorie/teamhub-backend/pkg/db/models"
	"github.com/velorie/teamhub-backend/pkg/enums"
	pkgerrors "github.com/velorie/teamhub-backend/pkg/errors"
	"github.com/velorie/teamhub-backend/pkg/logger"
)

type captureNotifier struct {
	direct    []notifications.Message
	broadcast []notifications.Message
	projects  []uuid.UUID
	to        []uuid.UUID
}

func (c *captureNotifier) Notify(_ context.Context, userID uuid.UUID, msg notifications.Message) error {
	c.to = append(c.to, userID)
	c.direct = append(c.direct, msg)
	return nil
}

func (c *captureNotifier) NotifyProject(_ context.Context, projectID uuid.UUID, msg notifications.Message) error {
	c.projects = append(c.projects, projectID)
	c.broadcast = append(c.broadcast, msg)
	return nil
}

func setupProjectsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schemas := []string{`
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  login TEXT NOT NULL UNIQUE,
  pass_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'employee',
  balance NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS projects (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  image_url TEXT NOT NULL DEFAULT '',
  income NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS project_members (
  project_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  created_at DATETIME,
  PRIMARY KEY (project_id, user_id)
);`}
	for _, schema := range schemas {
		require.NoError(t, db.Exec(schema).Error)
	}
	return db
}

func newProjectsService(t *testing.T, db *gorm.DB, notifier *captureNotifier) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Logger:   logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Repo:     NewRepository(db),
		Users:    users.NewRepository(db),
		Notifier: notifier,
	})
	require.NoError(t, err)
	return svc
}

func seedEmployee(t *testing.T, db *gorm.DB, login string) *models.User {
	t.Helper()

	user := &models.User{ID: uuid.New(), Login: login, PassHash: "x", Role: enums.UserRoleEmployee, Balance: decimal.Zero}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestAssignNotifiesEmployeeAndIsIdempotent(t *testing.T) {
	db := setupProjectsTestDB(t)
	notifier := &captureNotifier{}
	svc := newProjectsService(t, db, notifier)
	ctx := context.Background()

	employee := seedEmployee(t, db, "anna")
	project, err := svc.Create(ctx, CreateInput{Name: "Website"})
	require.NoError(t, err)

	require.NoError(t, svc.Assign(ctx, project.ID, employee.ID))
	require.Len(t, notifier.direct, 1)
	assert.Equal(t, enums.NotificationAssignedProject, notifier.direct[0].Kind)
	assert.Equal(t, employee.ID, notifier.to[0])

	// Assigning again must not create a second membership row.
	require.NoError(t, svc.Assign(ctx, project.ID, employee.ID))
	ids, err := NewRepository(db).ListMemberIDs(ctx, project.ID)
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}

func TestAssignUnknownTargets(t *testing.T) {
	db := setupProjectsTestDB(t)
	svc := newProjectsService(t, db, &captureNotifier{})
	ctx := context.Background()

	employee := seedEmployee(t, db, "anna")
	project, err := svc.Create(ctx, CreateInput{Name: "Website"})
	require.NoError(t, err)

	err = svc.Assign(ctx, uuid.New(), employee.ID)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())

	err = svc.Assign(ctx, project.ID, uuid.New())
	coded = pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}

func TestListForMemberScopesProjects(t *testing.T) {
	db := setupProjectsTestDB(t)
	svc := newProjectsService(t, db, &captureNotifier{})
	ctx := context.Background()

	anna := seedEmployee(t, db, "anna")
	mine, err := svc.Create(ctx, CreateInput{Name: "Mine"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{Name: "Other"})
	require.NoError(t, err)
	require.NoError(t, svc.Assign(ctx, mine.ID, anna.ID))

	all, err := svc.ListForAdmin(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	scoped, err := svc.ListForMember(ctx, anna.ID)
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "Mine", scoped[0].Name)
}

func TestCanAccess(t *testing.T) {
	db := setupProjectsTestDB(t)
	svc := newProjectsService(t, db, &captureNotifier{})
	ctx := context.Background()

	anna := seedEmployee(t, db, "anna")
	project, err := svc.Create(ctx, CreateInput{Name: "Website"})
	require.NoError(t, err)

	ok, err := svc.CanAccess(ctx, project.ID, uuid.New(), enums.UserRoleAdmin)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.CanAccess(ctx, project.ID, anna.ID, enums.UserRoleEmployee)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, svc.Assign(ctx, project.ID, anna.ID))
	ok, err = svc.CanAccess(ctx, project.ID, anna.ID, enums.UserRoleEmployee)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSetIncome(t *testing.T) {
	db := setupProjectsTestDB(t)
	svc := newProjectsService(t, db, &captureNotifier{})
	ctx := context.Background()

	project, err := svc.Create(ctx, CreateInput{Name: "Website"})
	require.NoError(t, err)

	updated, err := svc.SetIncome(ctx, project.ID, decimal.NewFromInt(1200))
	require.NoError(t, err)
	assert.True(t, updated.Income.Equal(decimal.NewFromInt(1200)), "income: %s", updated.Income)

	_, err = svc.SetIncome(ctx, project.ID, decimal.NewFromInt(-1))
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeValidation, coded.Code())

	_, err = svc.SetIncome(ctx, uuid.New(), decimal.NewFromInt(10))
	coded = pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}

func TestBroadcastTargetsProject(t *testing.T) {
	db := setupProjectsTestDB(t)
	notifier := &captureNotifier{}
	svc := newProjectsService(t, db, notifier)
	ctx := context.Background()

	project, err := svc.Create(ctx, CreateInput{Name: "Website"})
	require.NoError(t, err)

	require.NoError(t, svc.Broadcast(ctx, project.ID, "standup moved to 10:00"))
	require.Len(t, notifier.broadcast, 1)
	assert.Equal(t, project.ID, notifier.projects[0])
	assert.Equal(t, enums.NotificationAdminMessage, notifier.broadcast[0].Kind)
	assert.Equal(t, "standup moved to 10:00", notifier.broadcast[0].Body)

	err = svc.Broadcast(ctx, project.ID, "   ")
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeValidation, coded.Code())

	err = svc.Broadcast(ctx, uuid.New(), "hello")
	coded = pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}
