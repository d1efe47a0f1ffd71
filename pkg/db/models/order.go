package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/velorie/teamhub-backend/pkg/enums"
)

// Order is a client engagement with a due date. The three notified flags
// latch the deadline thresholds so the scanner fires each alert exactly
// once per order; they are never reset while the order stays open.
type Order struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Client    string            `gorm:"column:client;not null"`
	DueDate   time.Time         `gorm:"column:due_date;not null;index"`
	Amount    decimal.Decimal   `gorm:"column:amount;type:numeric(14,2);not null"`
	Todo      string            `gorm:"column:todo;not null"`
	Status    enums.OrderStatus `gorm:"column:status;type:text;not null;default:'open';index"`
	DoneAt    *time.Time        `gorm:"column:done_at"`

	Notified7d  bool `gorm:"column:notified_7d;not null;default:false"`
	Notified3d  bool `gorm:"column:notified_3d;not null;default:false"`
	Notified24h bool `gorm:"column:notified_24h;not null;default:false"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
