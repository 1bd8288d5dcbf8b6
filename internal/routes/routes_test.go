package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"greentrack/internal/controllers"
	"greentrack/internal/middleware"
	"greentrack/internal/testutil"
)

const secret = "routes-secret"

func setup(t *testing.T) (*gin.Engine, *gorm.DB, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	dir := t.TempDir()
	r := SetupRouter(Options{
		Pipeline:  &controllers.PipelineController{DB: db, DataDir: dir, BatchSize: 100},
		JWTSecret: secret,
	})
	token, err := middleware.GenerateToken(secret, "test", middleware.RoleAdmin, time.Hour)
	require.NoError(t, err)
	return r, db, token
}

func do(t *testing.T, r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthAndMetricsAreOpen(t *testing.T) {
	r, _, _ := setup(t)

	w := do(t, r, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, r, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "greentrack_fact_rows")
}

func TestAdminRequiresToken(t *testing.T) {
	r, _, _ := setup(t)
	for _, path := range []string{"/admin/ingest", "/admin/facts/rebuild", "/admin/views/refresh"} {
		w := do(t, r, http.MethodPost, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestIngestEndpoint(t *testing.T) {
	r, _, token := setup(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "MEANS_OF_TRANSPORT.csv"),
		[]byte("MEANS OF TRANSPORT;MTR DESCRIPTION\nTRUCK;Truck\nVAN;Van\n"), 0o644))

	w := do(t, r, http.MethodPost, "/admin/ingest", token, gin.H{"data_dir": dir, "replace": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Summary map[string]int `json:"summary"`
		Total   int            `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Summary["transport_types"])
	assert.Equal(t, 2, resp.Total)

	// default directory is empty but exists
	w = do(t, r, http.MethodPost, "/admin/ingest", token, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, r, http.MethodPost, "/admin/ingest", token, gin.H{"data_dir": filepath.Join(dir, "missing")})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRebuildAndRefreshEndpoints(t *testing.T) {
	r, db, token := setup(t)
	testutil.SeedScenario(t, db)

	w := do(t, r, http.MethodPost, "/admin/facts/rebuild", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"inserted":1}`, w.Body.String())

	w = do(t, r, http.MethodPost, "/admin/views/refresh", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"refreshed":true}`, w.Body.String())
}

func TestReportAcceptsAnyValidToken(t *testing.T) {
	r, db, adminToken := setup(t)
	testutil.SeedScenario(t, db)
	require.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/admin/facts/rebuild", adminToken, nil).Code)

	w := do(t, r, http.MethodGet, "/reports/summary", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	viewer, err := middleware.GenerateToken(secret, "analyst", "viewer", time.Hour)
	require.NoError(t, err)

	// a viewer may read reports but not trigger the pipeline
	w = do(t, r, http.MethodPost, "/admin/facts/rebuild", viewer, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, r, http.MethodGet, "/reports/summary?threshold=0.6&top=1", viewer, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var report struct {
		Totals struct {
			Stages int64 `json:"stages"`
		} `json:"totals"`
		HighEmission  []json.RawMessage `json:"high_emission_orders"`
		Underutilized []json.RawMessage `json:"underutilized_vehicles"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.EqualValues(t, 1, report.Totals.Stages)
	assert.Len(t, report.HighEmission, 1)
	assert.Len(t, report.Underutilized, 1, "load ratio 0.5 is below 0.6")

	w = do(t, r, http.MethodGet, "/reports/summary?threshold=abc", viewer, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
