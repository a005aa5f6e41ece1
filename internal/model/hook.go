package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Hook is a reusable opening line. A nil UserID makes it visible to everyone.
type Hook struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string     `gorm:"type:text;not null" json:"title"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	CreatedAt time.Time  `json:"-"`
}

func (h *Hook) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
