package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pnt-cleaner/app/requests"
	"github.com/pnt-cleaner/app/responses"
	"github.com/pnt-cleaner/app/services"
	"go.uber.org/zap"
)

// AdminController handles admin requests
type AdminController struct {
	adminService *services.AdminService
	logger       *zap.Logger
}

// NewAdminController creates an AdminController
func NewAdminController(adminService *services.AdminService, logger *zap.Logger) *AdminController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminController{adminService: adminService, logger: logger}
}

// InvalidateCache drops cached results of other rules versions, or all
// of them with {"all": true}
func (ac *AdminController) InvalidateCache(c *gin.Context) {
	var req requests.InvalidateCacheRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "INVALID_REQUEST", "Invalid request: "+err.Error())
			return
		}
	}

	startTime := time.Now()
	err := ac.adminService.InvalidateCache(c.Request.Context(), req.All)
	if errors.Is(err, services.ErrCacheDisabled) {
		c.JSON(http.StatusConflict, responses.ErrorResponse{
			Error:   "CACHE_DISABLED",
			Message: err.Error(),
		})
		return
	}
	if err != nil {
		ac.logger.Error("Cannot invalidate cache", zap.Error(err))
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:   "INVALIDATE_ERROR",
			Message: "Cannot invalidate cache: " + err.Error(),
		})
		return
	}

	processingTime := time.Since(startTime)
	ac.logger.Info("Cache invalidated", zap.Bool("all", req.All), zap.Duration("duration", processingTime))

	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success: true,
		Message: "Cache invalidated",
		Data: map[string]interface{}{
			"all":                req.All,
			"processing_time_ms": processingTime.Milliseconds(),
		},
	})
}

// GetStats system statistics
func (ac *AdminController) GetStats(c *gin.Context) {
	stats, err := ac.adminService.GetSystemStats(c.Request.Context())
	if err != nil {
		ac.logger.Error("Cannot collect stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:   "STATS_ERROR",
			Message: "Cannot collect stats: " + err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetResources loaded reference lists and catalogs
func (ac *AdminController) GetResources(c *gin.Context) {
	lists, catalogs := ac.adminService.Resources()
	c.JSON(http.StatusOK, responses.ResourcesResponse{Lists: lists, Catalogs: catalogs})
}
