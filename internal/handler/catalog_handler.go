package handler

import (
	"scriptaffiliator/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CatalogHandler struct {
	products   service.ProductService
	categories service.CategoryService
	hooks      service.HookService
}

func NewCatalogHandler(p service.ProductService, c service.CategoryService, h service.HookService) *CatalogHandler {
	return &CatalogHandler{products: p, categories: c, hooks: h}
}

// GetProducts lists the user's products, newest first
// GET /api/products?userId=
func (h *CatalogHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.products.List(c.Query("userId"))
	if err != nil {
		return fail(c, err, "error")
	}
	return c.JSON(products)
}

// CreateProducts inserts a batch of products, all or nothing
// POST /api/products
func (h *CatalogHandler) CreateProducts(c *fiber.Ctx) error {
	var req service.CreateProductsRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	products, err := h.products.BulkCreate(&req)
	if err != nil {
		return fail(c, err, "error")
	}
	return c.Status(fiber.StatusCreated).JSON(products)
}

// UpdateProduct replaces the editable fields of one product
// PUT /api/products
func (h *CatalogHandler) UpdateProduct(c *fiber.Ctx) error {
	var req service.UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	product, err := h.products.Update(&req)
	if err != nil {
		return fail(c, err, "error")
	}
	return c.JSON(fiber.Map{"message": "Product updated successfully", "data": product})
}

// GetCategories
// GET /api/categories
func (h *CatalogHandler) GetCategories(c *fiber.Ctx) error {
	categories, err := h.categories.List()
	if err != nil {
		return fail(c, err, "error")
	}
	return c.JSON(categories)
}

// GetHooks returns shared hooks plus the user's own
// GET /api/hooks?userId=
func (h *CatalogHandler) GetHooks(c *fiber.Ctx) error {
	hooks, err := h.hooks.List(c.Query("userId"))
	if err != nil {
		return fail(c, err, "error")
	}
	return c.JSON(hooks)
}

type CreateHookRequest struct {
	Title  string `json:"title"`
	UserID string `json:"userId"`
}

// CreateHook
// POST /api/hooks
func (h *CatalogHandler) CreateHook(c *fiber.Ctx) error {
	var req CreateHookRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	hook, err := h.hooks.Create(req.Title, req.UserID)
	if err != nil {
		return fail(c, err, "error")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"hook": hook})
}
