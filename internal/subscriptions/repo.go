package subscriptions

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/velorie/teamhub-backend/pkg/db/models"
)

// Repository exposes persistence helpers for push subscriptions.
type Repository interface {
	Upsert(ctx context.Context, sub *models.PushSubscription) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.PushSubscription, error)
	Remove(ctx context.Context, userID uuid.UUID, endpoint string) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a subscription repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

// Upsert inserts the subscription or refreshes the encryption keys when the
// (user, endpoint) pair already exists.
func (r *repositoryImpl) Upsert(ctx context.Context, sub *models.PushSubscription) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth", "updated_at"}),
		}).
		Create(sub).Error
}

func (r *repositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.PushSubscription, error) {
	var subs []models.PushSubscription
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}

// Remove deletes one registration; removing an absent endpoint is a no-op.
func (r *repositoryImpl) Remove(ctx context.Context, userID uuid.UUID, endpoint string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND endpoint = ?", userID, endpoint).
		Delete(&models.PushSubscription{}).Error
}
