package projects

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/velorie/teamhub-backend/internal/notifications"
	"github.com/velorie/teamhub-backend/internal/users"
	"github.com/velorie/teamhub-backend/pkg/db/models"
	"github.com/velorie/teamhub-backend/pkg/enums"
	pkgerrors "github.com/velorie/teamhub-backend/pkg/errors"
	"github.com/velorie/teamhub-backend/pkg/logger"
)

type notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, msg notifications.Message) error
	NotifyProject(ctx context.Context, projectID uuid.UUID, msg notifications.Message) error
}

// CreateInput carries the fields for a new project.
type CreateInput struct {
	Name        string
	Description string
	ImageURL    string
}

// Service manages projects, membership and project-wide announcements.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Project, error)
	ListForAdmin(ctx context.Context) ([]models.Project, error)
	ListForMember(ctx context.Context, userID uuid.UUID) ([]models.Project, error)
	Assign(ctx context.Context, projectID, userID uuid.UUID) error
	CanAccess(ctx context.Context, projectID, userID uuid.UUID, role enums.UserRole) (bool, error)
	SetIncome(ctx context.Context, projectID uuid.UUID, income decimal.Decimal) (*models.Project, error)
	Broadcast(ctx context.Context, projectID uuid.UUID, text string) error
}

// ServiceParams carries the project service dependencies.
type ServiceParams struct {
	Logger   *logger.Logger
	Repo     Repository
	Users    users.Repository
	Notifier notifier
}

type service struct {
	logg     *logger.Logger
	repo     Repository
	users    users.Repository
	notifier notifier
}

func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	if params.Repo == nil {
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
		users:    params.Users,
		notifier: params.Notifier,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "project name required")
	}

	project := &models.Project{
		ID:          uuid.New(),
		Name:        name,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		Income:      decimal.Zero,
	}
	if err := s.repo.Create(ctx, project); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create project")
	}
	return project, nil
}

func (s *service) ListForAdmin(ctx context.Context) ([]models.Project, error) {
	projects, err := s.repo.ListAllWithMembers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list projects")
	}
	return projects, nil
}

func (s *service) ListForMember(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	projects, err := s.repo.ListByMember(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list member projects")
	}
	return projects, nil
}

// Assign grants an employee access to the project and tells them about it.
func (s *service) Assign(ctx context.Context, projectID, userID uuid.UUID) error {
	project, err := s.repo.FindByID(ctx, projectID)
	if err != nil {
		if IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find project")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if users.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find user")
	}

	if err := s.repo.AddMember(ctx, project.ID, user.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add project member")
	}

	msg := notifications.Message{
		Kind:      enums.NotificationAssignedProject,
		ProjectID: &project.ID,
		Title:     "Assigned to project",
		Body:      fmt.Sprintf("You now have access to the project: %s", project.Name),
		Data:      map[string]any{"projectId": project.ID.String()},
	}
	if err := s.notifier.Notify(ctx, user.ID, msg); err != nil {
		s.logg.Error(s.logg.WithProjectID(ctx, project.ID.String()), "failed to notify assignment", err)
	}
	return nil
}

// CanAccess reports whether the user may see the project. Admins see all.
func (s *service) CanAccess(ctx context.Context, projectID, userID uuid.UUID, role enums.UserRole) (bool, error) {
	if role == enums.UserRoleAdmin {
		return true, nil
	}
	member, err := s.repo.IsMember(ctx, projectID, userID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}
	return member, nil
}

func (s *service) SetIncome(ctx context.Context, projectID uuid.UUID, income decimal.Decimal) (*models.Project, error) {
	if income.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "income cannot be negative")
	}
	if err := s.repo.SetIncome(ctx, projectID, income); err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set project income")
	}
	return s.repo.FindByID(ctx, projectID)
}

// Broadcast sends an announcement to every member of the project.
func (s *service) Broadcast(ctx context.Context, projectID uuid.UUID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "message text required")
	}

	project, err := s.repo.FindByID(ctx, projectID)
	if err != nil {
		if IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find project")
	}

	msg := notifications.Message{
		Kind:  enums.NotificationAdminMessage,
		Title: fmt.Sprintf("Announcement: %s", project.Name),
		Body:  text,
		Data:  map[string]any{"projectId": project.ID.String()},
	}
	return s.notifier.NotifyProject(ctx, project.ID, msg)
}
