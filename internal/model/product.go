package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product belongs to one user. (user_id, lower(name)) is unique, see
// repository.Migrate.
type Product struct {
	BaseModel
	UserID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	Name         string          `gorm:"type:varchar(255);not null" json:"name"`
	Description  *string         `gorm:"type:text" json:"description"`
	Price        decimal.Decimal `gorm:"type:decimal(16,2);not null;default:0" json:"price"`
	AffiliateFee decimal.Decimal `gorm:"type:decimal(16,2);not null;default:0" json:"affiliate_fee"`
	CategoryID   *uuid.UUID      `gorm:"type:uuid;index" json:"category_id"`
	Category     *Category       `gorm:"foreignKey:CategoryID" json:"product_category,omitempty"`

	CategoryName *string `gorm:"-" json:"category_name"`
}

// FillCategoryName copies the preloaded category name to CategoryName.
func (p *Product) FillCategoryName() {
	if p.Category != nil {
		name := p.Category.Name
		p.CategoryName = &name
	}
}
