package repository

import (
	"scriptaffiliator/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PromptRepository interface {
	FindByCode(code string) (*model.Prompt, error)
	Upsert(prompt *model.Prompt) error
}

type promptRepo struct {
	db *gorm.DB
}

func NewPromptRepo(db *gorm.DB) PromptRepository {
	return &promptRepo{db}
}

func (r *promptRepo) FindByCode(code string) (*model.Prompt, error) {
	var p model.Prompt
	if err := r.db.Where("code = ?", code).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *promptRepo) Upsert(prompt *model.Prompt) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"text"}),
	}).Create(prompt).Error
}
