package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/velorie/teamhub-backend/pkg/enums"
)

// User is either the single administrator or an employee.
type User struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Login     string          `gorm:"column:login;not null;uniqueIndex"`
	PassHash  string          `gorm:"column:pass_hash;not null"`
	Role      enums.UserRole  `gorm:"column:role;type:text;not null;default:'employee'"`
	Balance   decimal.Decimal `gorm:"column:balance;type:numeric(14,2);not null;default:0"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`

	Projects []Project `gorm:"many2many:project_members;joinForeignKey:UserID;joinReferences:ProjectID"`
}
