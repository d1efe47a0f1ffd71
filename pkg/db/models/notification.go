package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/velorie/teamhub-backend/pkg/enums"
	"github.com/velorie/teamhub-backend/pkg/types"
)

// Notification is one append-only ledger entry addressed to a user.
// Rows are immutable after creation except for ReadAt.
type Notification struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID              `gorm:"column:user_id;type:uuid;not null;index"`
	ProjectID *uuid.UUID             `gorm:"column:project_id;type:uuid"`
	Kind      enums.NotificationKind `gorm:"column:kind;type:text;not null"`
	Title     string                 `gorm:"column:title;not null"`
	Body      string                 `gorm:"column:body;not null"`
	Data      types.JSONMap          `gorm:"column:data;type:jsonb"`
	ReadAt    *time.Time             `gorm:"column:read_at"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
}

// Read reports whether the owning user has acknowledged the entry.
func (n Notification) Read() bool { return n.ReadAt != nil }
