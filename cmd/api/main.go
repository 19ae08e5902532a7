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

	"github.com/gin-gonic/gin"
	"github.com/pnt-cleaner/app/config"
	"github.com/pnt-cleaner/app/controllers"
	"github.com/pnt-cleaner/app/services"
	"github.com/pnt-cleaner/helpers/utils"
	"github.com/pnt-cleaner/internal/bootstrap"
	"github.com/pnt-cleaner/internal/metrics"
	"github.com/pnt-cleaner/routes"
	"go.uber.org/zap"
)

func main() {
	// 1. Configuration; PNT_CONFIG points at a file, PNT_* overrides keys
	cfg, err := config.Load(nil, os.Getenv("PNT_CONFIG"))
	if err != nil {
		log.Fatalf("Cannot load configuration: %v", err)
	}

	// 2. Logger
	logger, err := utils.NewLogger(cfg.App.Env, os.Getenv("PNT_LOG_LEVEL"))
	if err != nil {
		log.Fatalf("Cannot initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting PNT cleaning service", zap.String("env", cfg.App.Env))

	ctx := context.Background()
	deps := bootstrap.New(cfg, nil, logger)
	defer func() {
		if err := deps.Close(context.Background()); err != nil {
			logger.Error("Error closing clients", zap.Error(err))
		}
	}()

	// 3. Rules, resources and processor
	eng, err := deps.BuildEngine(ctx)
	if err != nil {
		logger.Fatal("Cannot build cleaning engine", zap.Error(err))
	}

	// 4. Result cache
	cache, err := deps.NewCache(ctx, eng.Rules.Version)
	if err != nil {
		logger.Fatal("Cannot initialize cache", zap.Error(err))
	}

	// 5. Services
	m := metrics.New()
	cleaningService := services.NewCleaningService(eng.Processor, deps.PoolConfig(), cache, eng.Rules.Version, logger)
	cleaningService.AddJobSink(m)

	var audit services.DocumentCounter
	if cfg.Cache.Enabled && cfg.Cache.Backend == "hybrid" {
		if db, err := deps.Mongo(ctx); err == nil {
			audit = db.Collection(cfg.Mongo.AuditCollection)
		}
	}
	adminService := services.NewAdminService(cleaningService, eng.Resources, audit, logger)

	// 6. Router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	routes.SetupAllRoutes(router, routes.Router{
		Cleaning: controllers.NewCleaningController(cleaningService, m, logger),
		Admin:    controllers.NewAdminController(adminService, logger),
		Metrics:  m,
		Logger:   logger,
	})

	server := &http.Server{
		Addr:        ":" + cfg.App.Port,
		Handler:     router,
		ReadTimeout: cfg.App.RequestTimeout,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.App.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 7. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shut down", zap.Error(err))
	}
	if cache != nil {
		if err := cache.Close(); err != nil {
			logger.Error("Error closing cache", zap.Error(err))
		}
	}
	logger.Info("Server exited")
}
