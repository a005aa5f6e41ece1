package handler

import (
	"scriptaffiliator/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ScriptHandler struct {
	generation service.GenerationService
	scripts    service.ScriptService
}

func NewScriptHandler(g service.GenerationService, s service.ScriptService) *ScriptHandler {
	return &ScriptHandler{generation: g, scripts: s}
}

// GenerateScript composes the prompt and returns the model output
// POST /api/generate-script
func (h *ScriptHandler) GenerateScript(c *fiber.Ctx) error {
	var req service.GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid JSON"})
	}

	result, err := h.generation.Generate(c.UserContext(), &req)
	if err != nil {
		return fail(c, err, "message")
	}
	return c.JSON(result)
}

// SaveScripts stores one row per generated script
// POST /api/save-script
func (h *ScriptHandler) SaveScripts(c *fiber.Ctx) error {
	var req service.SaveScriptsRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	saved, err := h.scripts.Save(&req)
	if err != nil {
		return fail(c, err, "error")
	}
	return c.JSON(fiber.Map{"success": true, "count": len(saved), "data": saved})
}

// GetScripts lists the newest script per product with a per-product count
// GET /api/scripts?userId=
func (h *ScriptHandler) GetScripts(c *fiber.Ctx) error {
	groups, err := h.scripts.ListGrouped(c.Query("userId"))
	if err != nil {
		return fail(c, err, "error")
	}
	return c.JSON(groups)
}

// UpdateScript edits content only
// PUT /api/scripts
func (h *ScriptHandler) UpdateScript(c *fiber.Ctx) error {
	var req service.UpdateScriptRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	if err := h.scripts.UpdateContent(&req); err != nil {
		return fail(c, err, "error")
	}
	return c.JSON(fiber.Map{"success": true})
}

// SetPublish flips the publish flag only
// PUT /api/is-publish
func (h *ScriptHandler) SetPublish(c *fiber.Ctx) error {
	var req service.PublishRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	if err := h.scripts.SetPublish(&req); err != nil {
		return fail(c, err, "error")
	}
	return c.JSON(fiber.Map{"success": true})
}

// GetProductScripts lists scripts of one product, or all without productId
// GET /api/product-script?productId=
func (h *ScriptHandler) GetProductScripts(c *fiber.Ctx) error {
	scripts, err := h.scripts.ListByProduct(c.Query("productId"))
	if err != nil {
		return fail(c, err, "error")
	}
	return c.JSON(scripts)
}
