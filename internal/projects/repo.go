package projects

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/velorie/teamhub-backend/pkg/db/models"
)

// Repository persists projects and their membership rows.
type Repository interface {
	Create(ctx context.Context, project *models.Project) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	FindByIDWithMembers(ctx context.Context, id uuid.UUID) (*models.Project, error)
	ListAllWithMembers(ctx context.Context) ([]models.Project, error)
	ListByMember(ctx context.Context, userID uuid.UUID) ([]models.Project, error)
	AddMember(ctx context.Context, projectID, userID uuid.UUID) error
	IsMember(ctx context.Context, projectID, userID uuid.UUID) (bool, error)
	ListMemberIDs(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error)
	SetIncome(ctx context.Context, projectID uuid.UUID, income decimal.Decimal) error
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Create(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).First(&project, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *repositoryImpl) FindByIDWithMembers(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).
		Preload("Members").
		First(&project, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *repositoryImpl) ListAllWithMembers(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.WithContext(ctx).
		Preload("Members").
		Order("created_at ASC").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *repositoryImpl) ListByMember(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.WithContext(ctx).
		Joins("JOIN project_members pm ON pm.project_id = projects.id").
		Where("pm.user_id = ?", userID).
		Order("projects.created_at ASC").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// AddMember links the user to the project; assigning twice is a no-op.
func (r *repositoryImpl) AddMember(ctx context.Context, projectID, userID uuid.UUID) error {
	member := &models.ProjectMember{ProjectID: projectID, UserID: userID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(member).Error
}

func (r *repositoryImpl) IsMember(ctx context.Context, projectID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *repositoryImpl) ListMemberIDs(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.ProjectMember{}).
		Where("project_id = ?", projectID).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repositoryImpl) SetIncome(ctx context.Context, projectID uuid.UUID, income decimal.Decimal) error {
	res := r.db.WithContext(ctx).
		Model(&models.Project{}).
		Where("id = ?", projectID).
		Update("income", income)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IsNotFound reports whether err is the driver's missing-row error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
