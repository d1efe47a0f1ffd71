package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velorie/teamhub-backend/pkg/db/models"
	"github.com/velorie/teamhub-backend/pkg/enums"
)

// Columns that latch the deadline alerts. LatchDeadlineFlag rejects anything
// else so a bad caller cannot flip arbitrary fields.
var deadlineFlagColumns = map[string]bool{
	"notified_7d":  true,
	"notified_3d":  true,
	"notified_24h": true,
}

// Repository persists client orders.
type Repository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, limit int) ([]models.Order, error)
	FindOpen(ctx context.Context) ([]models.Order, error)
	MarkDone(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) (bool, error)
	LatchDeadlineFlag(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, column string) (bool, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *repositoryImpl) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repositoryImpl) List(ctx context.Context, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repositoryImpl) FindOpen(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.OrderStatusOpen).
		Order("due_date ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// MarkDone flips an open order to done. Zero rows means the order was not
// open (or does not exist), which the caller maps to a state conflict.
func (r *repositoryImpl) MarkDone(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) (bool, error) {
	res := r.conn(tx).WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, enums.OrderStatusOpen).
		Updates(map[string]any{
			"status":  enums.OrderStatusDone,
			"done_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// LatchDeadlineFlag sets the flag column only while the order is still open
// and the flag is still false. The guard makes the scanner race-safe: two
// concurrent scans see one winner and one zero-row update.
func (r *repositoryImpl) LatchDeadlineFlag(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, column string) (bool, error) {
	if !deadlineFlagColumns[column] {
		return false, errors.New("unknown deadline flag column " + column)
	}
	res := r.conn(tx).WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ? AND "+column+" = ?", orderID, enums.OrderStatusOpen, false).
		Update(column, true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// IsNotFound reports whether err is the driver's missing-row error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
