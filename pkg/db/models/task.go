package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/velorie/teamhub-backend/pkg/enums"
)

// Task is a unit of work assigned to one employee inside a project.
type Task struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	ProjectID   uuid.UUID        `gorm:"column:project_id;type:uuid;not null;index"`
	AssigneeID  uuid.UUID        `gorm:"column:assignee_id;type:uuid;not null;index"`
	Title       string           `gorm:"column:title;not null"`
	Description string           `gorm:"column:description;not null;default:''"`
	DueDate     time.Time        `gorm:"column:due_date;not null"`
	Status      enums.TaskStatus `gorm:"column:status;type:text;not null;default:'open'"`
	DoneAt      *time.Time       `gorm:"column:done_at"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
