package repository

import (
	"scriptaffiliator/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type HookRepository interface {
	// FindVisible returns global hooks plus the hooks owned by userID.
	FindVisible(userID uuid.UUID) ([]model.Hook, error)
	Create(hook *model.Hook) error
	SeedGlobal(titles []string) (int, error)
}

type hookRepo struct {
	db *gorm.DB
}

func NewHookRepo(db *gorm.DB) HookRepository {
	return &hookRepo{db}
}

func (r *hookRepo) FindVisible(userID uuid.UUID) ([]model.Hook, error) {
	var hooks []model.Hook
	err := r.db.Select("id", "title", "user_id").
		Where("user_id IS NULL OR user_id = ?", userID).
		Order("created_at ASC").
		Find(&hooks).Error
	return hooks, err
}

func (r *hookRepo) Create(hook *model.Hook) error {
	return r.db.Create(hook).Error
}

func (r *hookRepo) SeedGlobal(titles []string) (int, error) {
	created := 0
	for _, title := range titles {
		var n int64
		if err := r.db.Model(&model.Hook{}).Where("user_id IS NULL AND title = ?", title).Count(&n).Error; err != nil {
			return created, err
		}
		if n > 0 {
			continue
		}
		if err := r.db.Create(&model.Hook{Title: title}).Error; err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}
