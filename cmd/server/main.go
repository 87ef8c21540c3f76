package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kjsb_flow_app_go/config"
	"kjsb_flow_app_go/db"
	"kjsb_flow_app_go/handlers"
	"kjsb_flow_app_go/logger"
	"kjsb_flow_app_go/middleware"
	"kjsb_flow_app_go/services"
	"kjsb_flow_app_go/services/i18n"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zl, flush, err := logger.Install(cfg.LogLevel, cfg.LogFormat, "kjsb-server")
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer flush()

	if err := i18n.Load(); err != nil {
		zl.Fatal("failed to load translations", zap.Error(err))
	}

	// Data backend (PostgREST or local SQLite/Turso)
	if err := services.InitializeBackend(cfg); err != nil {
		zl.Fatal("failed to initialize backend", zap.Error(err))
	}
	defer db.Close()

	services.InitializeStorage(cfg)
	services.InitializeCache(cfg)
	services.InitSecurityMonitor(cfg)
	middleware.InitAssetVersions("static")

	signer := services.NewSessionSigner(cfg.SessionSecret, 0)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(echomiddleware.Recover())
	e.Use(middleware.RequestLogger(zl.Named("http")))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{AllowOrigins: cfg.AllowedOrigins}))

	// Make config available to handlers
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("config", cfg)
			return next(c)
		}
	})
	e.Use(middleware.CSPNonce())
	e.Use(middleware.Locale(cfg))
	e.Use(middleware.CSRF(cfg))

	// Static files
	e.Static("/static", "static")

	handlers.RegisterRoutes(e, cfg, signer, nil)

	// Start server
	go func() {
		zl.Info("server starting", zap.String("port", cfg.ServerPort), zap.String("backend", cfg.Backend))
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		zl.Error("graceful shutdown failed", zap.Error(err))
	}
	zl.Info("server stopped")
}
