package handler

import (
	"errors"
	"fmt"
	"testing"

	"scriptaffiliator/internal/service"
	"scriptaffiliator/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestStatusAndMessage(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"missing fields", service.ErrMissingFields, fiber.StatusBadRequest, "Missing required fields"},
		{"bad script count", service.ErrInvalidScriptCount, fiber.StatusBadRequest, "scriptCount must be a positive number"},
		{"wrapped not found", fmt.Errorf("load: %w", service.ErrScriptNotFound), fiber.StatusNotFound, "Script not found"},
		{"email taken", service.ErrEmailTaken, fiber.StatusConflict, "Email is already registered"},
		{"revoked", service.ErrSessionRevoked, fiber.StatusUnauthorized, "Session revoked"},
		{"bad token", jwt.ErrInvalidToken, fiber.StatusUnauthorized, "Invalid or expired token"},
		{"generation", service.ErrGenerationFailed, fiber.StatusInternalServerError, "Internal server error"},
		{"public 500", service.ErrSaveScripts, fiber.StatusInternalServerError, "Failed to save scripts"},
		{"unknown 500", errors.New("dial tcp 10.0.0.1:5432: refused"), fiber.StatusInternalServerError, "Internal server error"},
		{
			"existing names",
			&service.DuplicateNamesError{Names: []string{"widget"}},
			fiber.StatusBadRequest,
			"Products with these names already exist: widget",
		},
		{
			"batch names",
			&service.DuplicateNamesError{Names: []string{"a", "b"}, InBatch: true},
			fiber.StatusBadRequest,
			"Duplicate product names in request: a, b",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := statusFor(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.msg, messageFor(tt.err, status))
		})
	}
}
