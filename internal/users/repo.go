package users

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/velorie/teamhub-backend/pkg/db/models"
	"github.com/velorie/teamhub-backend/pkg/enums"
)

// Repository persists user accounts and wallet balances.
type Repository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByIDWithProjects(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByLogin(ctx context.Context, login string) (*models.User, error)
	FindAdmin(ctx context.Context) (*models.User, error)
	ListEmployees(ctx context.Context) ([]models.User, error)
	CountEmployees(ctx context.Context) (int64, error)
	AddBalance(ctx context.Context, tx *gorm.DB, userID uuid.UUID, delta decimal.Decimal) error
	DeductBalance(ctx context.Context, tx *gorm.DB, userID uuid.UUID, amount decimal.Decimal) (bool, error)
	WithTx(tx *gorm.DB) Repository
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repositoryImpl) FindByIDWithProjects(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("Projects").
		First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repositoryImpl) FindByLogin(ctx context.Context, login string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "login = ?", login).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindAdmin returns the administrator account. Exactly one exists after the
// startup bootstrap.
func (r *repositoryImpl) FindAdmin(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "role = ?", enums.UserRoleAdmin).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repositoryImpl) ListEmployees(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Preload("Projects").
		Where("role = ?", enums.UserRoleEmployee).
		Order("created_at ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *repositoryImpl) CountEmployees(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("role = ?", enums.UserRoleEmployee).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *repositoryImpl) AddBalance(ctx context.Context, tx *gorm.DB, userID uuid.UUID, delta decimal.Decimal) error {
	res := r.conn(tx).WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("balance", gorm.Expr("balance + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeductBalance subtracts amount only while the balance covers it. The guard
// sits in the WHERE clause so concurrent transfers cannot overdraw.
func (r *repositoryImpl) DeductBalance(ctx context.Context, tx *gorm.DB, userID uuid.UUID, amount decimal.Decimal) (bool, error) {
	res := r.conn(tx).WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND balance >= ?", userID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// IsNotFound reports whether err is the driver's missing-row error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
