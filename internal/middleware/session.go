package middleware

import (
	"strings"

	"scriptaffiliator/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	localUserID  = "user_id"
	localSession = "session"
)

// SessionResolver turns a session token into the live session.
type SessionResolver interface {
	Resolve(token string) (*service.SessionView, error)
}

// LoadSession reads the session cookie (or a Bearer token) and, when it is
// valid, stores the session in the request locals. It never rejects.
func LoadSession(resolver SessionResolver, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(cookieName)
		if token == "" {
			token = bearerToken(c.Get(fiber.HeaderAuthorization))
		}
		if token == "" {
			return c.Next()
		}

		view, err := resolver.Resolve(token)
		if err != nil {
			return c.Next()
		}

		c.Locals(localUserID, view.User.ID.String())
		c.Locals(localSession, view)
		return c.Next()
	}
}

// RequireSession rejects requests LoadSession found no session for.
func RequireSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if Session(c) == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}
		return c.Next()
	}
}

// Session returns the session loaded for this request, or nil.
func Session(c *fiber.Ctx) *service.SessionView {
	view, _ := c.Locals(localSession).(*service.SessionView)
	return view
}

func UserID(c *fiber.Ctx) (uuid.UUID, bool) {
	raw, ok := c.Locals(localUserID).(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	return id, err == nil
}

func bearerToken(header string) string {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return parts[1]
}
