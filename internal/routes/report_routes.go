package routes

import (
	"greentrack/internal/controllers"
	"greentrack/internal/middleware"

	"github.com/gin-gonic/gin"
)

// ReportRoutes serves the read-only KPI report to any valid token.
func ReportRoutes(r *gin.Engine, pc *controllers.PipelineController, secret string) {
	reports := r.Group("/reports")
	reports.Use(middleware.RequireAuth(secret))
	{
		reports.GET("/summary", pc.Report)
	}
}
