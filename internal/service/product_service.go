package service

import (
	"errors"
	"fmt"
	"strings"

	"scriptaffiliator/internal/model"
	"scriptaffiliator/internal/repository"
	"scriptaffiliator/internal/ws"
	"scriptaffiliator/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrMissingUserID     = errors.New("userId is required")
	ErrInvalidPayload    = errors.New("invalid payload")
	ErrProductIDRequired = errors.New("product id required")
	ErrProductNotFound   = errors.New("product not found")
	ErrInvalidCategory   = errors.New("invalid category_id")
)

// DuplicateNamesError rejects a whole batch. Names are lower-cased.
type DuplicateNamesError struct {
	Names   []string
	InBatch bool
}

func (e *DuplicateNamesError) Error() string {
	if e.InBatch {
		return "duplicate product names in request: " + strings.Join(e.Names, ", ")
	}
	return "products with these names already exist: " + strings.Join(e.Names, ", ")
}

type ProductInput struct {
	Name         string          `json:"name" validate:"notblank"`
	Description  *string         `json:"description"`
	Price        decimal.Decimal `json:"price"`
	AffiliateFee decimal.Decimal `json:"affiliate_fee"`
	CategoryID   *string         `json:"category_id"`
}

type CreateProductsRequest struct {
	UserID   string         `json:"userId" validate:"required,uuid"`
	Products []ProductInput `json:"products" validate:"required,min=1,dive"`
}

type UpdateProductRequest struct {
	ID string `json:"id" validate:"required"`
	ProductInput
}

type ProductService interface {
	List(userID string) ([]model.Product, error)
	BulkCreate(req *CreateProductsRequest) ([]model.Product, error)
	Update(req *UpdateProductRequest) (*model.Product, error)
}

type productService struct {
	productRepo repository.ProductRepository
	wsHub       *ws.Hub
	log         *zap.Logger
}

func NewProductService(pRepo repository.ProductRepository, hub *ws.Hub, log *zap.Logger) ProductService {
	return &productService{productRepo: pRepo, wsHub: hub, log: log}
}

func (s *productService) List(userID string) ([]model.Product, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrMissingUserID
	}
	products, err := s.productRepo.FindByUser(id)
	if err != nil {
		s.log.Error("list products failed", zap.Error(err))
		return nil, err
	}
	return products, nil
}

func (s *productService) BulkCreate(req *CreateProductsRequest) ([]model.Product, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, ErrInvalidPayload
	}
	userID := uuid.MustParse(req.UserID)

	// collisions inside the request are caught here, collisions with stored
	// rows by the (user_id, lower(name)) index
	seen := make(map[string]bool, len(req.Products))
	var clashing []string
	for _, p := range req.Products {
		folded := strings.ToLower(strings.TrimSpace(p.Name))
		if seen[folded] {
			clashing = append(clashing, folded)
		}
		seen[folded] = true
	}
	if len(clashing) > 0 {
		return nil, &DuplicateNamesError{Names: clashing, InBatch: true}
	}

	products := make([]model.Product, 0, len(req.Products))
	folded := make([]string, 0, len(req.Products))
	for _, in := range req.Products {
		categoryID, err := parseCategoryID(in.CategoryID)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSpace(in.Name)
		products = append(products, model.Product{
			UserID:       userID,
			Name:         name,
			Description:  emptyToNil(in.Description),
			Price:        in.Price,
			AffiliateFee: in.AffiliateFee,
			CategoryID:   categoryID,
		})
		folded = append(folded, strings.ToLower(name))
	}

	if err := s.productRepo.CreateBatch(products); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, lookupErr := s.productRepo.FindNamesFolded(userID, folded)
			if lookupErr != nil {
				s.log.Warn("resolve duplicate product names failed", zap.Error(lookupErr))
			}
			for i := range existing {
				existing[i] = strings.ToLower(existing[i])
			}
			return nil, &DuplicateNamesError{Names: existing}
		}
		s.log.Error("insert products failed", zap.String("user_id", req.UserID), zap.Error(err))
		return nil, fmt.Errorf("insert products: %w", err)
	}

	s.wsHub.SendToUser(userID, ws.EventProductCreated, map[string]interface{}{"count": len(products)})
	return products, nil
}

func (s *productService) Update(req *UpdateProductRequest) (*model.Product, error) {
	id, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, ErrProductIDRequired
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrInvalidPayload
	}
	categoryID, err := parseCategoryID(req.CategoryID)
	if err != nil {
		return nil, err
	}

	err = s.productRepo.Replace(&model.Product{
		BaseModel:    model.BaseModel{ID: id},
		Name:         strings.TrimSpace(req.Name),
		Description:  emptyToNil(req.Description),
		Price:        req.Price,
		AffiliateFee: req.AffiliateFee,
		CategoryID:   categoryID,
	})
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrProductNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return nil, &DuplicateNamesError{Names: []string{strings.ToLower(strings.TrimSpace(req.Name))}}
	case err != nil:
		s.log.Error("update product failed", zap.String("id", req.ID), zap.Error(err))
		return nil, fmt.Errorf("update product: %w", err)
	}

	return s.productRepo.FindByID(id)
}

func parseCategoryID(raw *string) (*uuid.UUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		return nil, ErrInvalidCategory
	}
	return &id, nil
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
