package ideas

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/velorie/teamhub-backend/pkg/db/models"
	pkgerrors "github.com/velorie/teamhub-backend/pkg/errors"
)

const defaultListLimit = 200

// CreateInput carries the fields for a new idea.
type CreateInput struct {
	Title       string
	Description string
	ImageURL    string
}

// Service manages the admin idea backlog.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Idea, error)
	List(ctx context.Context) ([]models.Idea, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "ideas repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Idea, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title and description required")
	}

	idea := &models.Idea{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		ImageURL:    input.ImageURL,
	}
	if err := s.repo.Create(ctx, idea); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create idea")
	}
	return idea, nil
}

func (s *service) List(ctx context.Context) ([]models.Idea, error) {
	ideas, err := s.repo.List(ctx, defaultListLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ideas")
	}
	return ideas, nil
}
