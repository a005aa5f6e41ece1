package handler

import (
	"strconv"

	"scriptaffiliator/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	service service.DashboardService
}

func NewDashboardHandler(s service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// GetScriptActivity returns generated/published counts per day for charts
// Query params: userId, days (default 7)
func (h *DashboardHandler) GetScriptActivity(c *fiber.Ctx) error {
	daysStr := c.Query("days", "7")
	days, err := strconv.Atoi(daysStr)
	if err != nil || days <= 0 || days > 365 {
		days = 7
	}

	data, err := h.service.GetScriptActivity(c.Query("userId"), days)
	if err != nil {
		if statusFor(err) != fiber.StatusInternalServerError {
			return fail(c, err, "error")
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch script activity"})
	}

	return c.JSON(fiber.Map{
		"period": days,
		"data":   data,
	})
}

// GetDashboardStats returns overview statistics
func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.GetDashboardStats(c.Query("userId"))
	if err != nil {
		if statusFor(err) != fiber.StatusInternalServerError {
			return fail(c, err, "error")
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch dashboard stats"})
	}

	return c.JSON(stats)
}
