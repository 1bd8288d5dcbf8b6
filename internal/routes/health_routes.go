package routes

import (
	"greentrack/internal/controllers"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func HealthRoutes(r *gin.Engine, pc *controllers.PipelineController) {
	r.GET("/healthz", pc.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
