package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bkpreport/internal/config"
	apierrors "bkpreport/internal/errors"
	"bkpreport/internal/files"
	"bkpreport/internal/services"
	"bkpreport/internal/shared/testutil"
)

func newTestHealthHandler(t *testing.T, dataDir string, withReports bool) *HealthHandler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)

	var reports *services.ReportService
	if withReports {
		reports = services.NewReportService(config.ReportConfig{},
			files.NewManager(filepath.Join(t.TempDir(), "uploads"), logger), nil, logger)
	}
	return NewHealthHandler(services.NewHealthService("1.2.0", config.PathsConfig{DataDir: dataDir}, reports, logger), logger)
}

func TestHealthHandler_Routes(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		dataDir     string
		withReports bool
		wantStatus  int
		wantState   string
	}{
		{name: "health", path: "/", withReports: true, wantStatus: http.StatusOK, wantState: "ok"},
		{name: "live", path: "/live", withReports: true, wantStatus: http.StatusOK, wantState: "alive"},
		{name: "ready", path: "/ready", dataDir: "tmp", withReports: true, wantStatus: http.StatusOK, wantState: "ready"},
		{name: "not ready", path: "/ready", dataDir: "missing", withReports: false, wantStatus: http.StatusServiceUnavailable, wantState: "not_ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dataDir := tt.dataDir
			switch dataDir {
			case "tmp":
				dataDir = t.TempDir()
			case "missing":
				dataDir = filepath.Join(t.TempDir(), "missing")
			}

			rec := httptest.NewRecorder()
			newTestHealthHandler(t, dataDir, tt.withReports).Routes().
				ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			var body services.HealthStatus
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantState, body.Status)
			assert.Equal(t, "1.2.0", body.Version)
		})
	}
}

func TestHealthHandler_Version(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHealthHandler(t, t.TempDir(), true).
		Version(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version":"1.2.0"`)
}

func TestMetricsHandler(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	errorHandler := apierrors.NewErrorHandler(logger, false)

	t.Run("disabled", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewMetricsHandler(nil, errorHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("exporter", func(t *testing.T) {
		exporter := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("# HELP bkp_up\n"))
		})
		rec := httptest.NewRecorder()
		NewMetricsHandler(exporter, errorHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "# HELP bkp_up\n", rec.Body.String())
	})
}
