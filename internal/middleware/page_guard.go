package middleware

import (
	"path"
	"strings"

	"github.com/gofiber/fiber/v2"
)

var publicPages = map[string]bool{
	"/":              true,
	"/auth/callback": true,
	"/login":         true,
	"/register":      true,
	"/verify-email":  true,
}

var publicPrefixes = []string{"/api/", "/storage/", "/_next/"}

var assetExtensions = map[string]bool{
	".js": true, ".css": true, ".map": true, ".ico": true, ".svg": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true,
	".woff": true, ".woff2": true, ".ttf": true, ".txt": true, ".json": true,
}

// IsPublicPath reports whether p is served without a session.
func IsPublicPath(p string) bool {
	if publicPages[p] || p == "/api" {
		return true
	}
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return assetExtensions[strings.ToLower(path.Ext(p))]
}

// PageGuard redirects to / when a non-public page is requested without a
// session. It must run after LoadSession.
func PageGuard() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if IsPublicPath(c.Path()) || Session(c) != nil {
			return c.Next()
		}
		return c.Redirect("/", fiber.StatusFound)
	}
}
