package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"greentrack/internal/analytics"
	"greentrack/internal/facts"
	"greentrack/internal/ingest"
)

// PipelineController exposes the ingestion and fact-build entry points.
type PipelineController struct {
	DB        *gorm.DB
	DataDir   string // used when a request names none
	BatchSize int
	Log       logrus.FieldLogger
	// ElectricMarkers feed the report's electric-vehicle rule.
	ElectricMarkers []string
}

func (pc *PipelineController) logger() logrus.FieldLogger {
	if pc.Log == nil {
		return logrus.StandardLogger()
	}
	return pc.Log
}

// Ingest loads the extracts of a data directory and returns the per-table
// row counts.
func (pc *PipelineController) Ingest(c *gin.Context) {
	var input struct {
		DataDir string `json:"data_dir"`
		Replace bool   `json:"replace"`
	}
	// an empty body means defaults
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ingest input: " + err.Error()})
		return
	}
	if input.DataDir == "" {
		input.DataDir = pc.DataDir
	}

	loader := ingest.NewLoader(pc.DB, pc.BatchSize, pc.logger())
	summary, err := loader.LoadAll(c.Request.Context(), input.DataDir, input.Replace)
	if errors.Is(err, ingest.ErrDataDir) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ingestion failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary, "total": summary.Total()})
}

// RebuildFacts rebuilds the fact table and refreshes the aggregate views.
func (pc *PipelineController) RebuildFacts(c *gin.Context) {
	n, err := facts.NewBuilder(pc.DB, pc.BatchSize, pc.logger()).Rebuild(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Fact build failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"inserted": n})
}

// RefreshViews creates the aggregate views if needed and recomputes them.
func (pc *PipelineController) RefreshViews(c *gin.Context) {
	ctx := c.Request.Context()
	err := pc.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := facts.EnsureViews(ctx, tx); err != nil {
			return err
		}
		return facts.RefreshViews(ctx, tx)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "View refresh failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"refreshed": true})
}

// Report returns the KPI report over the fact table. Optional query
// parameters: threshold (underutilization cut-off) and top (orders listed).
func (pc *PipelineController) Report(c *gin.Context) {
	threshold := analytics.DefaultUnderutilizedThreshold
	if v := c.Query("threshold"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid threshold"})
			return
		}
		threshold = f
	}
	top := 5
	if v := c.Query("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid top"})
			return
		}
		top = n
	}

	an := analytics.NewAnalyzer(pc.DB, analytics.NewClassifier(pc.ElectricMarkers), pc.logger())
	r, err := an.Report(c.Request.Context(), threshold, top)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Report failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, r)
}

// Health reports whether the database answers.
func (pc *PipelineController) Health(c *gin.Context) {
	sqlDB, err := pc.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
