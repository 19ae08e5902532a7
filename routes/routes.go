// Package routes wires controllers to the gin router.
//
// api.go holds the /v1 API, web.go the service index and health probes.
package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pnt-cleaner/app/controllers"
	"github.com/pnt-cleaner/internal/metrics"
	"go.uber.org/zap"
)

// Router dependencies of every route
type Router struct {
	Cleaning *controllers.CleaningController
	Admin    *controllers.AdminController
	Metrics  *metrics.Metrics // nil disables /metrics
	Logger   *zap.Logger
}

// SetupAllRoutes installs middleware and every route
func SetupAllRoutes(router *gin.Engine, r Router) {
	if r.Logger == nil {
		r.Logger = zap.NewNop()
	}
	setupMiddleware(router, r)

	SetupWebRoutes(router, r.Cleaning)
	SetupAPIRoutes(router, r.Cleaning, r.Admin)
	if r.Metrics != nil {
		router.GET("/metrics", gin.WrapH(r.Metrics.Handler()))
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"error":  "Route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})
}

func setupMiddleware(router *gin.Engine, r Router) {
	router.Use(gin.Recovery())
	router.Use(requestLogger(r.Logger))
	if r.Metrics != nil {
		router.Use(r.Metrics.GinMiddleware())
	}
}

// requestLogger logs each request through zap
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
