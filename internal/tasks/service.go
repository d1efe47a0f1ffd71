package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/velorie/teamhub-backend/internal/notifications"
	"github.com/velorie/teamhub-backend/internal/projects"
	"github.com/velorie/teamhub-backend/internal/users"
	"github.com/velorie/teamhub-backend/pkg/db/models"
	"github.com/velorie/teamhub-backend/pkg/enums"
	pkgerrors "github.com/velorie/teamhub-backend/pkg/errors"
	"github.com/velorie/teamhub-backend/pkg/logger"
)

type notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, msg notifications.Message) error
}

// CreateInput carries the fields for a new task.
type CreateInput struct {
	ProjectID   uuid.UUID
	AssigneeID  uuid.UUID
	Title       string
	Description string
	DueDate     time.Time
}

// Service manages task assignment and completion.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Task, error)
	ListForUser(ctx context.Context, projectID, userID uuid.UUID, role enums.UserRole) ([]models.Task, error)
	Complete(ctx context.Context, taskID, actorID uuid.UUID, role enums.UserRole) error
}

// ServiceParams carries the task service dependencies.
type ServiceParams struct {
	Logger   *logger.Logger
	Repo     Repository
	Projects projects.Repository
	Users    users.Repository
	Notifier notifier
}

type service struct {
	logg     *logger.Logger
	repo     Repository
	projects projects.Repository
	users    users.Repository
	notifier notifier
	now      func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "tasks repository required")
	}
	if params.Projects == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "projects repository required")
	}
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	if params.Notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifier required")
	}
	return &service{
		logg:     params.Logger,
		repo:     params.Repo,
		projects: params.Projects,
		users:    params.Users,
		notifier: params.Notifier,
		now:      time.Now,
	}, nil
}

// Create assigns a task to an employee and notifies them.
func (s *service) Create(ctx context.Context, input CreateInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" || input.AssigneeID == uuid.Nil || input.DueDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assignee, title and due date required")
	}

	project, err := s.projects.FindByID(ctx, input.ProjectID)
	if err != nil {
		if projects.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find project")
	}
	assignee, err := s.users.FindByID(ctx, input.AssigneeID)
	if err != nil {
		if users.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "assignee not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find assignee")
	}

	task := &models.Task{
		ID:          uuid.New(),
		ProjectID:   project.ID,
		AssigneeID:  assignee.ID,
		Title:       title,
		Description: input.Description,
		DueDate:     input.DueDate,
		Status:      enums.TaskStatusOpen,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create task")
	}

	msg := notifications.Message{
		Kind:      enums.NotificationTaskAssigned,
		ProjectID: &project.ID,
		Title:     "New task",
		Body:      fmt.Sprintf("%s (due: %s)", task.Title, task.DueDate.Format("2006-01-02")),
		Data: map[string]any{
			"taskId":    task.ID.String(),
			"projectId": project.ID.String(),
		},
	}
	if err := s.notifier.Notify(ctx, assignee.ID, msg); err != nil {
		s.logg.Error(s.logg.WithUserID(ctx, assignee.ID.String()), "failed to notify task assignment", err)
	}
	return task, nil
}

// ListForUser returns project tasks; employees only see their own.
func (s *service) ListForUser(ctx context.Context, projectID, userID uuid.UUID, role enums.UserRole) ([]models.Task, error) {
	if role == enums.UserRoleAdmin {
		tasks, err := s.repo.ListByProject(ctx, projectID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list project tasks")
		}
		return tasks, nil
	}

	member, err := s.projects.IsMember(ctx, projectID, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}
	if !member {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not a member of this project")
	}

	tasks, err := s.repo.ListByProjectAndAssignee(ctx, projectID, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list assigned tasks")
	}
	return tasks, nil
}

// Complete marks a task done and alerts the admin. Only the assignee or the
// admin may complete a task.
func (s *service) Complete(ctx context.Context, taskID, actorID uuid.UUID, role enums.UserRole) error {
	task, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		if IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "task not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find task")
	}
	if role != enums.UserRoleAdmin && task.AssigneeID != actorID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "task belongs to another employee")
	}

	done, err := s.repo.MarkDone(ctx, task.ID, s.now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark task done")
	}
	if !done {
		return nil
	}

	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find actor")
	}
	admin, err := s.users.FindAdmin(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve admin recipient")
	}

	body := fmt.Sprintf("%s finished: %s", actor.Login, task.Title)
	if project, err := s.projects.FindByID(ctx, task.ProjectID); err == nil {
		body = fmt.Sprintf("%s (project: %s)", body, project.Name)
	}

	msg := notifications.Message{
		Kind:      enums.NotificationTaskDone,
		ProjectID: &task.ProjectID,
		Title:     "Task completed",
		Body:      body,
		Data: map[string]any{
			"taskId":    task.ID.String(),
			"projectId": task.ProjectID.String(),
		},
	}
	if err := s.notifier.Notify(ctx, admin.ID, msg); err != nil {
		s.logg.Error(s.logg.WithUserID(ctx, admin.ID.String()), "failed to notify task completion", err)
	}
	return nil
}
