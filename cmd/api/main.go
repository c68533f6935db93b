package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xyz-asif/sheetodo/internal/config"
	"github.com/xyz-asif/sheetodo/internal/database"
	"github.com/xyz-asif/sheetodo/internal/features/todos"
	"github.com/xyz-asif/sheetodo/internal/middleware"
	"github.com/xyz-asif/sheetodo/internal/pkg/logger"
	"github.com/xyz-asif/sheetodo/internal/routes"
)

func main() {
	cfg := config.Load()

	log := logger.NewWithWriter(os.Stdout, logger.ParseLevel(cfg.LogLevel), cfg.IsProduction())
	logger.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := database.OpenRowStore(ctx, cfg, todos.SheetLayout())
	if err != nil {
		log.Fatal("Failed to open %s row store: %v", cfg.RowStore, err)
	}
	defer closeStore()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(log))
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))

	if err := routes.SetupRoutes(ctx, router, store, cfg); err != nil {
		log.Fatal("Failed to set up routes: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server starting on port %s (store=%s)", cfg.Port, cfg.RowStore)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
		return
	}

	log.Info("Server exited")
}
