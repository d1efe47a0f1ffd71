package tasks

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
	"github.com/velorie/teamhub-backend/internal/projects"
	"github.com/velorie/teamhub-backend/internal/users"
	"github.com/velorie/teamhub-backend/pkg/db/models"
	"github.com/velorie/teamhub-backend/pkg/enums"
	pkgerrors "github.com/velorie/teamhub-backend/pkg/errors"
	"github.com/velorie/teamhub-backend/pkg/logger"
)

type captureNotifier struct {
	sent []notifications.Message
	to   []uuid.UUID
}

func (c *captureNotifier) Notify(_ context.Context, userID uuid.UUID, msg notifications.Message) error {
	c.to = append(c.to, userID)
	c.sent = append(c.sent, msg)
	return nil
}

func setupTasksTestDB(t *testing.T) *gorm.DB {
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
);`, `
CREATE TABLE IF NOT EXISTS tasks (
  id TEXT PRIMARY KEY,
  project_id TEXT NOT NULL,
  assignee_id TEXT NOT NULL,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  due_date DATETIME NOT NULL,
  status TEXT NOT NULL DEFAULT 'open',
  done_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`}
	for _, schema := range schemas {
		require.NoError(t, db.Exec(schema).Error)
	}
	return db
}

type fixture struct {
	svc      Service
	notifier *captureNotifier
	admin    *models.User
	employee *models.User
	project  *models.Project
}

func setupFixture(t *testing.T) (*gorm.DB, *fixture) {
	t.Helper()

	db := setupTasksTestDB(t)
	notifier := &captureNotifier{}

	admin := &models.User{ID: uuid.New(), Login: "boss", PassHash: "x", Role: enums.UserRoleAdmin, Balance: decimal.Zero}
	employee := &models.User{ID: uuid.New(), Login: "anna", PassHash: "x", Role: enums.UserRoleEmployee, Balance: decimal.Zero}
	project := &models.Project{ID: uuid.New(), Name: "Website", Income: decimal.Zero}
	require.NoError(t, db.Create(admin).Error)
	require.NoError(t, db.Create(employee).Error)
	require.NoError(t, db.Create(project).Error)
	require.NoError(t, db.Create(&models.ProjectMember{ProjectID: project.ID, UserID: employee.ID}).Error)

	svc, err := NewService(ServiceParams{
		Logger:   logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Repo:     NewRepository(db),
		Projects: projects.NewRepository(db),
		Users:    users.NewRepository(db),
		Notifier: notifier,
	})
	require.NoError(t, err)

	return db, &fixture{svc: svc, notifier: notifier, admin: admin, employee: employee, project: project}
}

func TestCreateTaskNotifiesAssignee(t *testing.T) {
	_, f := setupFixture(t)
	ctx := context.Background()

	due := time.Now().UTC().Add(72 * time.Hour)
	task, err := f.svc.Create(ctx, CreateInput{
		ProjectID:  f.project.ID,
		AssigneeID: f.employee.ID,
		Title:      "Landing page",
		DueDate:    due,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.TaskStatusOpen, task.Status)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, enums.NotificationTaskAssigned, f.notifier.sent[0].Kind)
	assert.Equal(t, f.employee.ID, f.notifier.to[0])
	require.NotNil(t, f.notifier.sent[0].ProjectID)
	assert.Equal(t, f.project.ID, *f.notifier.sent[0].ProjectID)
}

func TestCreateTaskUnknownAssignee(t *testing.T) {
	_, f := setupFixture(t)

	_, err := f.svc.Create(context.Background(), CreateInput{
		ProjectID:  f.project.ID,
		AssigneeID: uuid.New(),
		Title:      "Landing page",
		DueDate:    time.Now().UTC().Add(time.Hour),
	})
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}

func TestListForUserScopesByRole(t *testing.T) {
	db, f := setupFixture(t)
	ctx := context.Background()

	other := &models.User{ID: uuid.New(), Login: "tomek", PassHash: "x", Role: enums.UserRoleEmployee, Balance: decimal.Zero}
	require.NoError(t, db.Create(other).Error)
	require.NoError(t, db.Create(&models.ProjectMember{ProjectID: f.project.ID, UserID: other.ID}).Error)

	due := time.Now().UTC().Add(time.Hour)
	_, err := f.svc.Create(ctx, CreateInput{ProjectID: f.project.ID, AssigneeID: f.employee.ID, Title: "mine", DueDate: due})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, CreateInput{ProjectID: f.project.ID, AssigneeID: other.ID, Title: "theirs", DueDate: due})
	require.NoError(t, err)

	adminView, err := f.svc.ListForUser(ctx, f.project.ID, f.admin.ID, enums.UserRoleAdmin)
	require.NoError(t, err)
	assert.Len(t, adminView, 2)

	employeeView, err := f.svc.ListForUser(ctx, f.project.ID, f.employee.ID, enums.UserRoleEmployee)
	require.NoError(t, err)
	require.Len(t, employeeView, 1)
	assert.Equal(t, "mine", employeeView[0].Title)

	// Non-members are rejected outright.
	stranger := &models.User{ID: uuid.New(), Login: "ghost", PassHash: "x", Role: enums.UserRoleEmployee, Balance: decimal.Zero}
	require.NoError(t, db.Create(stranger).Error)
	_, err = f.svc.ListForUser(ctx, f.project.ID, stranger.ID, enums.UserRoleEmployee)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeForbidden, coded.Code())
}

func TestCompleteTaskNotifiesAdmin(t *testing.T) {
	db, f := setupFixture(t)
	ctx := context.Background()

	task, err := f.svc.Create(ctx, CreateInput{
		ProjectID:  f.project.ID,
		AssigneeID: f.employee.ID,
		Title:      "Landing page",
		DueDate:    time.Now().UTC().Add(time.Hour),
	})
	require.NoError(t, err)
	sentBefore := len(f.notifier.sent)

	require.NoError(t, f.svc.Complete(ctx, task.ID, f.employee.ID, enums.UserRoleEmployee))

	reloaded, err := NewRepository(db).FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.TaskStatusDone, reloaded.Status)
	require.NotNil(t, reloaded.DoneAt)

	require.Len(t, f.notifier.sent, sentBefore+1)
	last := f.notifier.sent[len(f.notifier.sent)-1]
	assert.Equal(t, enums.NotificationTaskDone, last.Kind)
	assert.Equal(t, f.admin.ID, f.notifier.to[len(f.notifier.to)-1])

	// Completing again stays quiet.
	require.NoError(t, f.svc.Complete(ctx, task.ID, f.employee.ID, enums.UserRoleEmployee))
	assert.Len(t, f.notifier.sent, sentBefore+1)
}

func TestCompleteTaskForbiddenForOtherEmployee(t *testing.T) {
	db, f := setupFixture(t)
	ctx := context.Background()

	other := &models.User{ID: uuid.New(), Login: "tomek", PassHash: "x", Role: enums.UserRoleEmployee, Balance: decimal.Zero}
	require.NoError(t, db.Create(other).Error)

	task, err := f.svc.Create(ctx, CreateInput{
		ProjectID:  f.project.ID,
		AssigneeID: f.employee.ID,
		Title:      "Landing page",
		DueDate:    time.Now().UTC().Add(time.Hour),
	})
	require.NoError(t, err)

	err = f.svc.Complete(ctx, task.ID, other.ID, enums.UserRoleEmployee)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeForbidden, coded.Code())

	// The admin can close anyone's task.
	require.NoError(t, f.svc.Complete(ctx, task.ID, f.admin.ID, enums.UserRoleAdmin))
}
