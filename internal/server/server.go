// Package server assembles the HTTP application from its dependencies.
package server

import (
	"os"
	"path/filepath"

	"scriptaffiliator/internal/config"
	"scriptaffiliator/internal/handler"
	"scriptaffiliator/internal/middleware"
	"scriptaffiliator/internal/repository"
	"scriptaffiliator/internal/service"
	"scriptaffiliator/internal/ws"
	"scriptaffiliator/pkg/genclient"
	"scriptaffiliator/pkg/jwt"
	"scriptaffiliator/pkg/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Deps struct {
	Config    *config.Config
	DB        *gorm.DB
	Generator genclient.Generator
	Identity  service.IdentityProvider
	Storage   storage.Storage
	Hub       *ws.Hub
	Log       *zap.Logger
	// AccessLog enables the request logger middleware.
	AccessLog bool
}

func New(d Deps) *fiber.App {
	cfg := d.Config
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	// repositories
	userRepo := repository.NewUserRepo(d.DB)
	productRepo := repository.NewProductRepo(d.DB)
	categoryRepo := repository.NewCategoryRepo(d.DB)
	hookRepo := repository.NewHookRepo(d.DB)
	scriptRepo := repository.NewScriptRepo(d.DB)
	promptRepo := repository.NewPromptRepo(d.DB)

	// services
	tokens := jwt.NewManager(cfg.Session.Secret, cfg.Session.TTL)
	authService := service.NewAuthService(userRepo, tokens, d.Identity, d.Hub, log.Named("auth"))
	productService := service.NewProductService(productRepo, d.Hub, log.Named("products"))
	categoryService := service.NewCategoryService(categoryRepo, log.Named("categories"))
	hookService := service.NewHookService(hookRepo, log.Named("hooks"))
	scriptService := service.NewScriptService(scriptRepo, d.Hub, log.Named("scripts"))
	generationService := service.NewGenerationService(promptRepo, d.Generator, service.GenerationOptions{
		Model:      cfg.Gemini.Model,
		PromptCode: cfg.PromptCode,
		Timeout:    cfg.Gemini.Timeout,
	}, log.Named("generation"))
	userService := service.NewUserService(userRepo, d.Storage, log.Named("users"))
	dashService := service.NewDashboardService(productRepo, scriptRepo)

	// handlers
	authHandler := handler.NewAuthHandler(authService,
		handler.CookieSettings{Name: cfg.Session.CookieName, Secure: cfg.Session.Secure},
		handler.AuthInfo{
			HasSupabaseURL:      cfg.Supabase.URL != "",
			HasSupabaseAnonKey:  cfg.Supabase.AnonKey != "",
			SiteURL:             cfg.SiteURL,
			Env:                 cfg.Env,
			SessionPollInterval: cfg.Session.PollInterval,
		}, log.Named("auth"))
	catalogHandler := handler.NewCatalogHandler(productService, categoryService, hookService)
	scriptHandler := handler.NewScriptHandler(generationService, scriptService)
	userHandler := handler.NewUserHandler(userService)
	dashHandler := handler.NewDashboardHandler(dashService)
	wsHandler := handler.NewWSHandler(d.Hub)

	app := fiber.New(fiber.Config{
		AppName: "ScriptAffiliator",
	})

	if d.AccessLog {
		app.Use(logger.New())
	}
	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(middleware.LoadSession(authService, cfg.Session.CookieName))

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/oauth", authHandler.OAuth)
	auth.Get("/session", authHandler.Session)
	auth.Get("/config", authHandler.Config)
	auth.Post("/refresh", middleware.RequireSession(), authHandler.Refresh)
	auth.Post("/logout", middleware.RequireSession(), authHandler.Logout)
	app.Get("/auth/callback", authHandler.Callback)

	api.Get("/products", catalogHandler.GetProducts)
	api.Post("/products", catalogHandler.CreateProducts)
	api.Put("/products", catalogHandler.UpdateProduct)
	api.Get("/categories", catalogHandler.GetCategories)
	api.Get("/hooks", catalogHandler.GetHooks)
	api.Post("/hooks", catalogHandler.CreateHook)

	limiter := middleware.NewRateLimiter(cfg.GenerateRatePerMinute, cfg.GenerateRateBurst)
	api.Post("/generate-script", limiter.Handler(middleware.SessionOrIP), scriptHandler.GenerateScript)
	api.Post("/save-script", scriptHandler.SaveScripts)
	api.Get("/scripts", scriptHandler.GetScripts)
	api.Put("/scripts", scriptHandler.UpdateScript)
	api.Put("/is-publish", scriptHandler.SetPublish)
	api.Get("/product-script", scriptHandler.GetProductScripts)

	api.Post("/get-user", userHandler.GetUser)
	api.Put("/profile", userHandler.UpdateProfile)
	api.Put("/profile/password", middleware.RequireSession(), userHandler.ChangePassword)
	api.Post("/profile/avatar", userHandler.UploadAvatar)
	api.Delete("/profile/avatar", userHandler.DeleteAvatar)

	api.Get("/dashboard/stats", dashHandler.GetDashboardStats)
	api.Get("/dashboard/script-activity", dashHandler.GetScriptActivity)

	api.Get("/ws", wsHandler.Upgrade, wsHandler.Serve())

	api.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	})

	if disk, ok := d.Storage.(*storage.Disk); ok {
		app.Static(storage.DiskPrefix, disk.Dir())
	}

	// everything below serves pages
	app.Use(middleware.PageGuard())
	mountWeb(app, cfg.WebDir)

	return app
}

// mountWeb serves the dashboard build with index.html as the fallback.
func mountWeb(app *fiber.App, dir string) {
	if dir == "" {
		app.Get("/", func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"name": "scriptaffiliator", "status": "ok"})
		})
		return
	}

	app.Static("/", dir, fiber.Static{Index: "index.html"})
	index := filepath.Join(dir, "index.html")
	app.Get("/*", func(c *fiber.Ctx) error {
		if page := filepath.Join(dir, filepath.Clean("/"+c.Path())+".html"); fileExists(page) {
			return c.SendFile(page)
		}
		return c.SendFile(index)
	})
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
