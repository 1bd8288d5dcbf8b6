package routes

import (
	"io"

	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"

	"greentrack/internal/controllers"
)

// Options carries what the router needs from the entry point.
type Options struct {
	Pipeline  *controllers.PipelineController
	JWTSecret string
	// AccessLog receives one line per request; nil disables request logging.
	AccessLog io.Writer
}

func SetupRouter(opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if opts.AccessLog != nil {
		r.Use(ginlog.SetLogger(
			ginlog.WithWriter(opts.AccessLog),
			ginlog.WithSkipPath([]string{"/healthz", "/metrics"}),
		))
	}

	HealthRoutes(r, opts.Pipeline)
	ReportRoutes(r, opts.Pipeline, opts.JWTSecret)
	AdminRoutes(r, opts.Pipeline, opts.JWTSecret)

	return r
}
