package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Project groups tasks and members; income is tracked per project.
type Project struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name        string          `gorm:"column:name;not null"`
	Description string          `gorm:"column:description;not null;default:''"`
	ImageURL    string          `gorm:"column:image_url;not null;default:''"`
	Income      decimal.Decimal `gorm:"column:income;type:numeric(14,2);not null;default:0"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`

	Members []User `gorm:"many2many:project_members;joinForeignKey:ProjectID;joinReferences:UserID"`
}

// ProjectMember is the join row between projects and their assigned users.
type ProjectMember struct {
	ProjectID uuid.UUID `gorm:"column:project_id;type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (ProjectMember) TableName() string { return "project_members" }
