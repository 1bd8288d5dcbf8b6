package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"greentrack/internal/config"
	"greentrack/internal/controllers"
	"greentrack/internal/logger"
	"greentrack/internal/middleware"
	"greentrack/internal/routes"
)

func main() {
	settings := config.Load()

	// Structured logging to file
	log := logger.Setup(logger.Options{
		Level: settings.LogLevel,
		File:  settings.LogFile,
		Echo:  settings.DBEcho,
	})
	gin.SetMode(gin.ReleaseMode)

	db, err := config.OpenDB(settings, log)
	if err != nil {
		log.WithError(err).Fatal("connect database")
	}
	if err := config.InitDB(context.Background(), db, settings); err != nil {
		log.WithError(err).Fatal("initialize schema")
	}

	access := log.Writer()
	defer access.Close()

	r := routes.SetupRouter(routes.Options{
		Pipeline: &controllers.PipelineController{
			DB:        db,
			DataDir:   settings.DataDir,
			BatchSize: settings.BatchSize,
			Log:       log,

			ElectricMarkers: settings.ElectricMarkers,
		},
		JWTSecret: settings.JWTSecret,
		AccessLog: access,
	})

	// Wrap with CORS
	handler := middleware.EnableCORS(r)

	log.Infof("server running at %s", settings.HTTPAddr)
	if err := http.ListenAndServe(settings.HTTPAddr, handler); err != nil {
		log.WithError(err).Fatal("http server stopped")
	}
}
