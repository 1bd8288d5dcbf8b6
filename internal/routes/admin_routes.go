package routes

import (
	"greentrack/internal/controllers"
	"greentrack/internal/middleware"

	"github.com/gin-gonic/gin"
)

func AdminRoutes(r *gin.Engine, pc *controllers.PipelineController, secret string) {
	admin := r.Group("/admin")
	admin.Use(middleware.RequireAuthWithRole(secret, middleware.RoleAdmin))
	{
		admin.POST("/ingest", pc.Ingest)
		admin.POST("/facts/rebuild", pc.RebuildFacts)
		admin.POST("/views/refresh", pc.RefreshViews)
	}
}
