package handler

import (
	"errors"
	"strings"

	"scriptaffiliator/internal/service"
	"scriptaffiliator/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

const internalError = "Internal server error"

// clientMessages is the text clients see for each service error.
var clientMessages = []struct {
	err error
	msg string
}{
	{service.ErrMissingUserID, "userId is required"},
	{service.ErrInvalidPayload, "Invalid payload"},
	{service.ErrProductIDRequired, "Product ID required"},
	{service.ErrProductNotFound, "Product not found"},
	{service.ErrInvalidCategory, "Invalid category_id"},
	{service.ErrTitleRequired, "Title is required"},
	{service.ErrInvalidRequestBody, "Invalid request body"},
	{service.ErrScriptNotFound, "Script not found"},
	{service.ErrSaveScripts, "Failed to save scripts"},
	{service.ErrFetchScripts, "Failed to fetch scripts"},
	{service.ErrMissingFields, "Missing required fields"},
	{service.ErrInvalidScriptCount, "scriptCount must be a positive number"},
	{service.ErrPromptNotFound, "Prompt not found"},
	{service.ErrGenerationFailed, internalError},
	{service.ErrRegisterFields, "Email, password and full name are required"},
	{service.ErrInvalidEmail, "Invalid email format"},
	{service.ErrPasswordTooShort, "Password must be at least 6 characters"},
	{service.ErrEmailTaken, "Email is already registered"},
	{service.ErrLoginFields, "Email and password are required"},
	{service.ErrInvalidCredentials, "Invalid login credentials"},
	{service.ErrProviderRequired, "Provider is required"},
	{service.ErrOAuthUnavailable, "OAuth login is not configured"},
	{service.ErrUserNotFound, "User not found"},
	{service.ErrSessionRevoked, "Session revoked"},
	{service.ErrInvalidAvatar, "Avatar must be an image up to 2MB"},
	{service.ErrAvatarStorage, "Failed to store avatar"},
	{jwt.ErrInvalidToken, "Invalid or expired token"},
	{jwt.ErrMissingToken, "Missing session token"},
}

var badRequest = []error{
	service.ErrMissingUserID,
	service.ErrInvalidPayload,
	service.ErrProductIDRequired,
	service.ErrInvalidCategory,
	service.ErrTitleRequired,
	service.ErrInvalidRequestBody,
	service.ErrMissingFields,
	service.ErrInvalidScriptCount,
	service.ErrRegisterFields,
	service.ErrInvalidEmail,
	service.ErrPasswordTooShort,
	service.ErrLoginFields,
	service.ErrInvalidCredentials,
	service.ErrProviderRequired,
	service.ErrInvalidAvatar,
}

var notFound = []error{
	service.ErrProductNotFound,
	service.ErrScriptNotFound,
	service.ErrPromptNotFound,
	service.ErrUserNotFound,
}

// these carry no upstream detail and are shown as is
var publicServerErrors = []error{
	service.ErrSaveScripts,
	service.ErrFetchScripts,
	service.ErrGenerationFailed,
	service.ErrAvatarStorage,
	service.ErrOAuthUnavailable,
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	var dup *service.DuplicateNamesError
	switch {
	case errors.As(err, &dup):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrEmailTaken):
		return fiber.StatusConflict
	case errors.Is(err, jwt.ErrInvalidToken), errors.Is(err, jwt.ErrMissingToken), errors.Is(err, service.ErrSessionRevoked):
		return fiber.StatusUnauthorized
	case isAny(err, badRequest):
		return fiber.StatusBadRequest
	case isAny(err, notFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// messageFor returns the client-facing text for err. Server errors without
// an entry are reduced to a generic message.
func messageFor(err error, status int) string {
	var dup *service.DuplicateNamesError
	if errors.As(err, &dup) {
		if dup.InBatch {
			return "Duplicate product names in request: " + strings.Join(dup.Names, ", ")
		}
		return "Products with these names already exist: " + strings.Join(dup.Names, ", ")
	}
	for _, m := range clientMessages {
		if errors.Is(err, m.err) {
			if status == fiber.StatusInternalServerError && !isAny(err, publicServerErrors) {
				return internalError
			}
			return m.msg
		}
	}
	if status == fiber.StatusInternalServerError {
		return internalError
	}
	return err.Error()
}

// fail writes err under key ("error" for most routes).
func fail(c *fiber.Ctx, err error, key string) error {
	status := statusFor(err)
	return c.Status(status).JSON(fiber.Map{key: messageFor(err, status)})
}

func invalidJSON(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
}
