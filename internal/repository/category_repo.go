package repository

import (
	"scriptaffiliator/internal/model"

	"gorm.io/gorm"
)

type CategoryRepository interface {
	FindAll() ([]model.Category, error)
	// SeedDefaults creates categories whose name does not exist yet.
	SeedDefaults(categories []model.Category) (int, error)
}

type categoryRepo struct {
	db *gorm.DB
}

func NewCategoryRepo(db *gorm.DB) CategoryRepository {
	return &categoryRepo{db}
}

func (r *categoryRepo) FindAll() ([]model.Category, error) {
	var categories []model.Category
	err := r.db.Select("id", "name", "description", "created_at").
		Order("created_at ASC").
		Find(&categories).Error
	return categories, err
}

func (r *categoryRepo) SeedDefaults(categories []model.Category) (int, error) {
	created := 0
	for _, c := range categories {
		var existing model.Category
		err := r.db.Where("name = ?", c.Name).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			if err := r.db.Create(&c).Error; err != nil {
				return created, err
			}
			created++
		} else if err != nil {
			return created, err
		}
	}
	return created, nil
}
