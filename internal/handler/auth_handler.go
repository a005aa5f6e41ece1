package handler

import (
	"errors"
	"strings"
	"time"

	"scriptaffiliator/internal/middleware"
	"scriptaffiliator/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const pkceCookie = "sa_pkce"

// CookieSettings describes the session cookie.
type CookieSettings struct {
	Name   string
	Secure bool
}

// AuthInfo is what GET /api/auth/config reports.
type AuthInfo struct {
	HasSupabaseURL      bool
	HasSupabaseAnonKey  bool
	SiteURL             string
	Env                 string
	SessionPollInterval time.Duration
}

type AuthHandler struct {
	authService service.AuthService
	cookie      CookieSettings
	info        AuthInfo
	log         *zap.Logger
}

func NewAuthHandler(authService service.AuthService, cookie CookieSettings, info AuthInfo, log *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, cookie: cookie, info: info, log: log}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type OAuthRequest struct {
	Provider   string `json:"provider"`
	RedirectTo string `json:"redirectTo"`
}

// Register handles sign-up
// POST /api/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req service.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	user, err := h.authService.Register(&req)
	if err != nil {
		return fail(c, err, "error")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Registration successful",
		"user":    user.ToResponse(),
	})
}

// Login handles email/password sign-in and sets the session cookie
// POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	session, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		return fail(c, err, "error")
	}

	h.setSessionCookie(c, session)
	return c.JSON(fiber.Map{
		"message": "Login successful",
		"user":    session.View.User,
	})
}

// OAuth returns the provider URL to send the browser to
// POST /api/auth/oauth
func (h *AuthHandler) OAuth(c *fiber.Ctx) error {
	var req OAuthRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	redirectTo := req.RedirectTo
	if redirectTo == "" {
		redirectTo = h.origin(c) + "/auth/callback"
	}

	url, verifier, err := h.authService.OAuthURL(req.Provider, redirectTo)
	if err != nil {
		if !errors.Is(err, service.ErrProviderRequired) {
			h.log.Error("oauth url failed", zap.String("provider", req.Provider), zap.Error(err))
		}
		return fail(c, err, "error")
	}

	c.Cookie(&fiber.Cookie{
		Name:     pkceCookie,
		Value:    verifier,
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Minute),
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{
		"message": "OAuth redirect ready",
		"url":     url,
	})
}

// Callback finishes an OAuth sign-in
// GET /auth/callback?code=&next=
func (h *AuthHandler) Callback(c *fiber.Ctx) error {
	next := safeNext(c.Query("next"))
	code := c.Query("code")

	if code == "" {
		if middleware.Session(c) == nil {
			return c.Redirect("/?error=no_session")
		}
		return c.Redirect(next)
	}

	session, err := h.authService.CompleteOAuth(code, c.Cookies(pkceCookie))
	if err != nil {
		if errors.Is(err, service.ErrOAuthExchange) {
			return c.Redirect("/?error=auth_failed")
		}
		h.log.Error("oauth callback failed", zap.Error(err))
		return c.Redirect("/?error=unexpected")
	}

	h.expireCookie(c, pkceCookie)
	h.setSessionCookie(c, session)
	return c.Redirect(next)
}

// Session reports the current cookie session, null when there is none
// GET /api/auth/session
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	view := middleware.Session(c)
	if view == nil {
		return c.JSON(fiber.Map{"session": nil})
	}
	return c.JSON(fiber.Map{"session": view})
}

// Refresh re-issues the session cookie
// POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	userID, _ := middleware.UserID(c)
	session, err := h.authService.Refresh(userID)
	if err != nil {
		return fail(c, err, "error")
	}
	h.setSessionCookie(c, session)
	return c.JSON(fiber.Map{"session": session.View})
}

// Logout revokes every session of the user
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	userID, _ := middleware.UserID(c)
	if err := h.authService.Logout(userID); err != nil {
		return fail(c, err, "error")
	}
	h.expireCookie(c, h.cookie.Name)
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// Config reports which auth settings are present
// GET /api/auth/config
func (h *AuthHandler) Config(c *fiber.Ctx) error {
	siteURL := h.info.SiteURL
	if siteURL == "" {
		siteURL = "not set"
	}
	return c.JSON(fiber.Map{
		"message": "Auth config check",
		"config": fiber.Map{
			"hasSupabaseUrl":      h.info.HasSupabaseURL,
			"hasSupabaseAnonKey":  h.info.HasSupabaseAnonKey,
			"siteUrl":             siteURL,
			"nodeEnv":             h.info.Env,
			"sessionPollInterval": int(h.info.SessionPollInterval.Seconds()),
		},
	})
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, session *service.Session) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.View.ExpiresAt,
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (h *AuthHandler) expireCookie(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (h *AuthHandler) origin(c *fiber.Ctx) string {
	if h.info.SiteURL != "" {
		return strings.TrimRight(h.info.SiteURL, "/")
	}
	return c.BaseURL()
}

// safeNext only allows same-site paths.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/dashboard"
	}
	return next
}
