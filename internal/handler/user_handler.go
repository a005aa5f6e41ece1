package handler

import (
	"errors"
	"io"

	"scriptaffiliator/internal/middleware"
	"scriptaffiliator/internal/service"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type userIDRequest struct {
	UserID string `json:"userId"`
}

// GetUser returns the profile row. A missing row is still a 200 with null
// data.
// POST /api/get-user
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	var req userIDRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	user, err := h.userService.GetProfile(req.UserID)
	switch {
	case errors.Is(err, service.ErrMissingUserID):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing user_id"})
	case errors.Is(err, service.ErrUserNotFound):
		return c.JSON(fiber.Map{"message": "User not found", "data": nil})
	case err != nil:
		return fail(c, err, "error")
	}
	return c.JSON(fiber.Map{"message": "Success", "data": user})
}

// UpdateProfile
// PUT /api/profile
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	var req service.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	user, err := h.userService.UpdateProfile(&req)
	if err != nil {
		return fail(c, err, "error")
	}
	return c.JSON(fiber.Map{"message": "Profile updated", "data": user})
}

type ChangePasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

// ChangePassword sets the password of the signed-in user
// PUT /api/profile/password
func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	userID, _ := middleware.UserID(c)
	if err := h.userService.ChangePassword(userID, req.NewPassword); err != nil {
		return fail(c, err, "error")
	}
	return c.JSON(fiber.Map{"message": "Password updated successfully"})
}

// UploadAvatar takes a multipart "avatar" file for form field userId
// POST /api/profile/avatar
func (h *UserHandler) UploadAvatar(c *fiber.Ctx) error {
	userID := h.targetUser(c, c.FormValue("userId"))

	header, err := c.FormFile("avatar")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar file is required"})
	}
	file, err := header.Open()
	if err != nil {
		return fail(c, err, "error")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, service.MaxAvatarBytes+1))
	if err != nil {
		return fail(c, err, "error")
	}

	url, err := h.userService.UploadAvatar(userID, header.Filename, data)
	if err != nil {
		return fail(c, err, "error")
	}
	return c.JSON(fiber.Map{"message": "Avatar updated", "avatar_url": url})
}

// DeleteAvatar
// DELETE /api/profile/avatar
func (h *UserHandler) DeleteAvatar(c *fiber.Ctx) error {
	var req userIDRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return invalidJSON(c)
		}
	}

	if err := h.userService.RemoveAvatar(h.targetUser(c, req.UserID)); err != nil {
		return fail(c, err, "error")
	}
	return c.JSON(fiber.Map{"message": "Avatar removed"})
}

// targetUser prefers an explicit id and falls back to the session user.
func (h *UserHandler) targetUser(c *fiber.Ctx, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if id, ok := middleware.UserID(c); ok {
		return id.String()
	}
	return ""
}
