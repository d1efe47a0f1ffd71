package models

import (
	"time"

	"github.com/google/uuid"
)

// PushSubscription is one push-capable device registration for a user.
// A user may hold any number of them; uniqueness is (user, endpoint).
type PushSubscription struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_push_user_endpoint"`
	Endpoint  string    `gorm:"column:endpoint;not null;uniqueIndex:idx_push_user_endpoint"`
	P256dh    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"column:auth;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
