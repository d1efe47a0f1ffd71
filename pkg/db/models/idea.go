package models

import (
	"time"

	"github.com/google/uuid"
)

// Idea is a lightweight admin-curated note on the ideas board.
type Idea struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Title       string    `gorm:"column:title;not null"`
	Description string    `gorm:"column:description;not null"`
	ImageURL    string    `gorm:"column:image_url;not null;default:''"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}
