package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/pnt-cleaner/app/controllers"
)

// SetupWebRoutes installs the service index and health probes
func SetupWebRoutes(router *gin.Engine, cleaning *controllers.CleaningController) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "PNT procurement cleaner",
			"endpoints": map[string]string{
				"clean_record": "POST /v1/records/clean",
				"clean_value":  "POST /v1/values/clean",
				"rules":        "GET /v1/rules",
				"jobs":         "POST /v1/jobs",
				"job_status":   "GET /v1/jobs/:jobID/status",
				"job_results":  "GET /v1/jobs/:jobID/results",
				"stats":        "GET /v1/admin/stats",
			},
		})
	})

	router.GET("/health", cleaning.HealthCheck)
	router.GET("/ready", cleaning.HealthCheck)
	router.GET("/live", func(c *gin.Context) { c.Status(200) })
}
