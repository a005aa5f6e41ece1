package repository

import (
	"time"

	"scriptaffiliator/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ScriptRepository interface {
	CreateBatch(scripts []model.Script) error
	FindByID(id uuid.UUID) (*model.Script, error)
	// FindAll lists scripts newest first with their product, optionally
	// restricted to one owner.
	FindAll(userID *uuid.UUID) ([]model.Script, error)
	FindByProduct(productID *uuid.UUID) ([]model.Script, error)
	UpdateContent(id uuid.UUID, content string) error
	UpdatePublish(id uuid.UUID, isPublish bool) error
	GetStats(userID uuid.UUID) (*ScriptStats, error)
	FindCreatedSince(userID uuid.UUID, since time.Time) ([]model.Script, error)
}

// ScriptStats backs the dashboard overview.
type ScriptStats struct {
	TotalScripts     int64 `json:"total_scripts"`
	PublishedScripts int64 `json:"published_scripts"`
}

type scriptRepo struct {
	db *gorm.DB
}

func NewScriptRepo(db *gorm.DB) ScriptRepository {
	return &scriptRepo{db}
}

func (r *scriptRepo) CreateBatch(scripts []model.Script) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Product").Create(&scripts).Error
	})
}

func (r *scriptRepo) FindByID(id uuid.UUID) (*model.Script, error) {
	var s model.Script
	if err := r.db.First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *scriptRepo) FindAll(userID *uuid.UUID) ([]model.Script, error) {
	var scripts []model.Script
	q := r.db.Preload("Product").Order("created_at DESC")
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	err := q.Find(&scripts).Error
	return scripts, err
}

func (r *scriptRepo) FindByProduct(productID *uuid.UUID) ([]model.Script, error) {
	var scripts []model.Script
	q := r.db.Select("id", "content", "created_at", "is_publish", "product_id", "user_id").
		Order("created_at DESC")
	if productID != nil {
		q = q.Where("product_id = ?", *productID)
	}
	err := q.Find(&scripts).Error
	return scripts, err
}

func (r *scriptRepo) UpdateContent(id uuid.UUID, content string) error {
	return r.updateColumn(id, "content", content)
}

func (r *scriptRepo) UpdatePublish(id uuid.UUID, isPublish bool) error {
	return r.updateColumn(id, "is_publish", isPublish)
}

func (r *scriptRepo) updateColumn(id uuid.UUID, column string, value interface{}) error {
	res := r.db.Model(&model.Script{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *scriptRepo) GetStats(userID uuid.UUID) (*ScriptStats, error) {
	var stats ScriptStats
	base := r.db.Model(&model.Script{}).Where("user_id = ?", userID)

	if err := base.Session(&gorm.Session{}).Count(&stats.TotalScripts).Error; err != nil {
		return nil, err
	}
	if err := base.Session(&gorm.Session{}).Where("is_publish = ?", true).Count(&stats.PublishedScripts).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *scriptRepo) FindCreatedSince(userID uuid.UUID, since time.Time) ([]model.Script, error) {
	var scripts []model.Script
	err := r.db.Select("id", "created_at", "is_publish").
		Where("user_id = ? AND created_at >= ?", userID, since).
		Order("created_at ASC").
		Find(&scripts).Error
	return scripts, err
}
