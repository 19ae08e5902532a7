package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/pnt-cleaner/app/controllers"
)

// SetupAPIRoutes installs the /v1 API
func SetupAPIRoutes(router *gin.Engine, cleaning *controllers.CleaningController, admin *controllers.AdminController) {
	v1 := router.Group("/v1")
	{
		v1.POST("/records/clean", cleaning.CleanRecord)
		v1.POST("/values/clean", cleaning.CleanValue)
		v1.GET("/rules", cleaning.GetRules)

		jobs := v1.Group("/jobs")
		{
			jobs.POST("", cleaning.BatchClean)
			jobs.GET("/:jobID/status", cleaning.GetJobStatus)
			jobs.GET("/:jobID/results", cleaning.GetJobResults)
		}

		adminGroup := v1.Group("/admin")
		{
			adminGroup.GET("/stats", admin.GetStats)
			adminGroup.GET("/resources", admin.GetResources)
			adminGroup.POST("/cache/invalidate", admin.InvalidateCache)
		}

		v1.GET("/health", cleaning.HealthCheck)
	}
}
