package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"scriptaffiliator/internal/config"
	"scriptaffiliator/internal/repository"
	"scriptaffiliator/internal/server"
	"scriptaffiliator/internal/ws"
	"scriptaffiliator/pkg/database"
	"scriptaffiliator/pkg/genclient"
	"scriptaffiliator/pkg/logger"
	"scriptaffiliator/pkg/storage"
	"scriptaffiliator/pkg/supabase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog, err := logger.New(cfg.Env, os.Getenv("LOG_LEVEL"))
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	// 2. Setup Database
	db, err := database.Connect(cfg.Database.DSN(), zlog)
	if err != nil {
		zlog.Fatal("database connection failed", zap.Error(err))
	}
	if err := repository.Migrate(db); err != nil {
		zlog.Fatal("migration failed", zap.Error(err))
	}

	// 3. External services
	var generator genclient.Generator = genclient.Disabled{}
	if cfg.Gemini.APIKey != "" {
		gemini, err := genclient.NewGemini(context.Background(), cfg.Gemini.APIKey)
		if err != nil {
			zlog.Fatal("generation client failed", zap.Error(err))
		}
		generator = gemini
	} else {
		zlog.Warn("GEMINI_API_KEY not set, script generation is disabled")
	}

	sb := supabase.New(cfg.Supabase.URL, cfg.Supabase.AnonKey, cfg.Supabase.ServiceRoleKey)
	if !sb.Configured() {
		zlog.Warn("Supabase is not configured, OAuth sign-in is disabled")
	}

	var store storage.Storage
	switch cfg.Storage.Driver {
	case "supabase":
		store = storage.NewBucket(sb, cfg.Storage.Bucket)
	default:
		disk, err := storage.NewDisk(cfg.Storage.Dir)
		if err != nil {
			zlog.Fatal("storage setup failed", zap.String("dir", cfg.Storage.Dir), zap.Error(err))
		}
		store = disk
	}

	// 4. Setup WebSocket Hub
	hub := ws.NewHub(zlog.Named("ws"))
	go hub.Run()

	// 5. Wiring
	app := server.New(server.Deps{
		Config:    cfg,
		DB:        db,
		Generator: generator,
		Identity:  sb,
		Storage:   store,
		Hub:       hub,
		Log:       zlog,
		AccessLog: true,
	})

	// 6. Graceful Shutdown
	go func() {
		zlog.Info("listening", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := app.Listen(":" + cfg.Port); err != nil && !errors.Is(err, context.Canceled) {
			zlog.Panic("listen failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		zlog.Error("Server forced to shutdown", zap.Error(err))
	}
	hub.Stop()

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	zlog.Info("Server exited")
}
