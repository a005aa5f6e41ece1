package repository

import (
	"strings"

	"scriptaffiliator/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductRepository interface {
	CreateBatch(products []model.Product) error
	FindByUser(userID uuid.UUID) ([]model.Product, error)
	FindByID(id uuid.UUID) (*model.Product, error)
	// FindNamesFolded returns the stored names of userID's products whose
	// lower-cased name is in lowerNames.
	FindNamesFolded(userID uuid.UUID, lowerNames []string) ([]string, error)
	Replace(product *model.Product) error
	CountByUser(userID uuid.UUID) (int64, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

// CreateBatch inserts all rows in one statement inside a transaction, so a
// constraint violation on any row leaves nothing behind.
func (r *productRepo) CreateBatch(products []model.Product) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Category").Create(&products).Error
	})
}

func (r *productRepo) FindByUser(userID uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	err := r.db.Preload("Category").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	for i := range products {
		products[i].FillCategoryName()
	}
	return products, nil
}

func (r *productRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := r.db.Preload("Category").First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	product.FillCategoryName()
	return &product, nil
}

func (r *productRepo) FindNamesFolded(userID uuid.UUID, lowerNames []string) ([]string, error) {
	folded := make([]string, len(lowerNames))
	for i, n := range lowerNames {
		folded[i] = strings.ToLower(n)
	}

	var names []string
	err := r.db.Model(&model.Product{}).
		Where("user_id = ? AND lower(name) IN ?", userID, folded).
		Order("name").
		Pluck("name", &names).Error
	return names, err
}

// Replace overwrites every editable field of the product with the given id.
func (r *productRepo) Replace(product *model.Product) error {
	res := r.db.Model(&model.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]interface{}{
			"name":          product.Name,
			"description":   product.Description,
			"price":         product.Price,
			"affiliate_fee": product.AffiliateFee,
			"category_id":   product.CategoryID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepo) CountByUser(userID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.Model(&model.Product{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}
