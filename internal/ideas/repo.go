package ideas

import (
	"context"

	"gorm.io/gorm"

	"github.com/velorie/teamhub-backend/pkg/db/models"
)

// Repository persists the idea backlog.
type Repository interface {
	Create(ctx context.Context, idea *models.Idea) error
	List(ctx context.Context, limit int) ([]models.Idea, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Create(ctx context.Context, idea *models.Idea) error {
	return r.db.WithContext(ctx).Create(idea).Error
}

func (r *repositoryImpl) List(ctx context.Context, limit int) ([]models.Idea, error) {
	var ideas []models.Idea
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&ideas).Error
	if err != nil {
		return nil, err
	}
	return ideas, nil
}
