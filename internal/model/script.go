package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Script is one generated block of marketing text for a product.
type Script struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"products,omitempty"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	IsPublish bool      `gorm:"not null;default:false" json:"is_publish"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (s *Script) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// ProductRef is the slim product embedded in script listings.
type ProductRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ScriptGroup is the newest script of a product plus how many it has.
type ScriptGroup struct {
	ID          uuid.UUID   `json:"id"`
	Content     string      `json:"content"`
	CreatedAt   time.Time   `json:"created_at"`
	IsPublish   bool        `json:"is_publish"`
	ProductID   uuid.UUID   `json:"product_id"`
	Product     *ProductRef `json:"products"`
	ScriptCount int         `json:"script_count"`
}
