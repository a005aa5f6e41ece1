package repository

import (
	"fmt"

	"scriptaffiliator/internal/model"

	"gorm.io/gorm"
)

// Indexes gorm tags cannot express. Product names are unique per user
// regardless of case; the store is the only arbiter of duplicates.
var extraIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_products_user_lower_name ON products (user_id, lower(name))`,
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Product{},
		&model.Script{},
		&model.Hook{},
		&model.Prompt{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	for _, stmt := range extraIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}
