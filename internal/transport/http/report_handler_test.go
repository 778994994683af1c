package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bkpreport/internal/config"
	apierrors "bkpreport/internal/errors"
	"bkpreport/internal/exporter"
	"bkpreport/internal/middleware"
	"bkpreport/internal/services"
	"bkpreport/internal/shared/testutil"
	"bkpreport/pkg/contracts/domain"
)

// MockReportService is a mock implementation of ReportServiceInterface
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) CellManagers() []string {
	return config.DefaultCellManagers()
}

func (m *MockReportService) CreateWorkspace(ctx context.Context) string {
	return m.Called().String(0)
}

func (m *MockReportService) DeleteWorkspace(ctx context.Context, id string) error {
	return m.Called(id).Error(0)
}

func (m *MockReportService) UploadCellManager(ctx context.Context, id, cellManager string, uploads []services.Upload) (services.CellManagerResult, error) {
	args := m.Called(id, cellManager, uploads)
	return args.Get(0).(services.CellManagerResult), args.Error(1)
}

func (m *MockReportService) UploadSchedule(ctx context.Context, id string, upload services.Upload, period string) (domain.ScheduleReport, error) {
	args := m.Called(id, upload, period)
	return args.Get(0).(domain.ScheduleReport), args.Error(1)
}

func (m *MockReportService) Dashboard(ctx context.Context, id string, q services.DateQuery) (services.Dashboard, error) {
	args := m.Called(id, q)
	return args.Get(0).(services.Dashboard), args.Error(1)
}

func (m *MockReportService) ExportTable(ctx context.Context, id, table string, q services.DateQuery) (exporter.Table, error) {
	args := m.Called(id, table, q)
	return args.Get(0).(exporter.Table), args.Error(1)
}

func (m *MockReportService) ExportTables(ctx context.Context, id string, q services.DateQuery) ([]exporter.Table, error) {
	args := m.Called(id, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]exporter.Table), args.Error(1)
}

type multipartFile struct {
	field string
	name  string
	data  []byte
}

func multipartRequest(t *testing.T, target string, parts []multipartFile, values map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, p := range parts {
		fw, err := mw.CreateFormFile(p.field, p.name)
		require.NoError(t, err)
		_, err = fw.Write(p.data)
		require.NoError(t, err)
	}
	for k, v := range values {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func newTestHandler(t *testing.T, svc ReportServiceInterface, maxUpload int64) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	h := NewReportHandler(svc,
		middleware.NewValidator(logger, config.DefaultCellManagers()),
		maxUpload,
		logger,
		apierrors.NewErrorHandler(logger, false))
	return h.Routes()
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestReportHandler_CreateWorkspace(t *testing.T) {
	svc := new(MockReportService)
	svc.On("CreateWorkspace").Return("9b2f6c1e-7d0a-4c55-9a8e-3f1f0f3a2b10")
	router := newTestHandler(t, svc, 1<<20)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/workspaces", nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "9b2f6c1e-7d0a-4c55-9a8e-3f1f0f3a2b10", decodeBody(t, rec)["id"])
	svc.AssertExpectations(t)
}

func TestReportHandler_ListCellManagers(t *testing.T) {
	router := newTestHandler(t, new(MockReportService), 1<<20)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cell-managers", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["cell_managers"], len(config.DefaultCellManagers()))
}

func TestReportHandler_DeleteWorkspace(t *testing.T) {
	id := uuid.New().String()

	tests := []struct {
		name       string
		id         string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{name: "deleted", id: id, wantStatus: http.StatusNoContent},
		{name: "unknown", id: id, serviceErr: fmt.Errorf("%w: %s", services.ErrWorkspaceNotFound, id), wantStatus: http.StatusNotFound, wantCode: "WORKSPACE_NOT_FOUND"},
		{name: "malformed id", id: "not-a-uuid", wantStatus: http.StatusBadRequest, wantCode: "VALIDATION_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockReportService)
			svc.On("DeleteWorkspace", tt.id).Return(tt.serviceErr).Maybe()
			router := newTestHandler(t, svc, 1<<20)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/workspaces/"+tt.id, nil))

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeBody(t, rec)["error_code"])
			}
		})
	}
}

func TestReportHandler_UploadCellManager(t *testing.T) {
	id := uuid.New().String()
	result := services.CellManagerResult{
		Report: domain.CellManagerReport{
			CellManager: "COMHP81",
			TotalJobs:   2,
			Sessions:    []domain.SessionRecord{{Specification: "FS_a"}, {Specification: "FS_b"}},
		},
	}

	svc := new(MockReportService)
	svc.On("UploadCellManager", id, "COMHP81", mock.MatchedBy(func(uploads []services.Upload) bool {
		if len(uploads) != 2 {
			return false
		}
		return uploads[0].Filename == "a.csv" && uploads[1].Filename == "b.txt"
	})).Return(result, nil)
	router := newTestHandler(t, svc, 1<<20)

	req := multipartRequest(t, "/workspaces/"+id+"/cell-managers/COMHP81", []multipartFile{
		{field: "files", name: "a.csv", data: []byte("first")},
		{field: "files", name: "b.txt", data: []byte("second")},
	}, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	report := body["report"].(map[string]interface{})
	assert.Equal(t, "COMHP81", report["cell_manager"])
	assert.NotContains(t, report, "sessions")
	svc.AssertExpectations(t)
}

func TestReportHandler_UploadCellManagerErrors(t *testing.T) {
	id := uuid.New().String()

	tests := []struct {
		name       string
		cm         string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "unknown cell manager",
			cm:         "NOPE",
			serviceErr: services.ErrUnknownCellManager,
			wantStatus: http.StatusNotFound,
			wantCode:   "UNKNOWN_CELL_MANAGER",
		},
		{
			name:       "no files",
			cm:         "COMHP81",
			serviceErr: services.ErrNoFiles,
			wantStatus: http.StatusBadRequest,
			wantCode:   "NO_FILES",
		},
		{
			name:       "unsupported file",
			cm:         "COMHP81",
			serviceErr: apierrors.UnsupportedFileError("a.pdf", []string{".csv", ".txt"}),
			wantStatus: http.StatusUnsupportedMediaType,
			wantCode:   "UNSUPPORTED_FILE",
		},
		{
			name:       "unreadable export",
			cm:         "COMHP81",
			serviceErr: apierrors.NewParsingError("failed to read session exports", io.ErrUnexpectedEOF),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "PARSING",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockReportService)
			svc.On("UploadCellManager", id, tt.cm, mock.Anything).Return(services.CellManagerResult{}, tt.serviceErr)
			router := newTestHandler(t, svc, 1<<20)

			req := multipartRequest(t, "/workspaces/"+id+"/cell-managers/"+tt.cm, []multipartFile{
				{field: "files", name: "a.csv", data: []byte("x")},
			}, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantCode, decodeBody(t, rec)["error_code"])
		})
	}
}

func TestReportHandler_UploadRequiresMultipart(t *testing.T) {
	router := newTestHandler(t, new(MockReportService), 1<<20)

	req := httptest.NewRequest(http.MethodPost, "/workspaces/"+uuid.New().String()+"/schedule", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestReportHandler_UploadTooLarge(t *testing.T) {
	router := newTestHandler(t, new(MockReportService), 1024)

	req := multipartRequest(t, "/workspaces/"+uuid.New().String()+"/cell-managers/COMHP81", []multipartFile{
		{field: "files", name: "big.csv", data: bytes.Repeat([]byte("a"), 64<<10)},
	}, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())
	assert.Equal(t, "PAYLOAD_TOO_LARGE", decodeBody(t, rec)["error_code"])
}

func TestReportHandler_UploadSchedule(t *testing.T) {
	id := uuid.New().String()
	svc := new(MockReportService)
	svc.On("UploadSchedule", id, mock.MatchedBy(func(u services.Upload) bool {
		return u.Filename == "Marzo.xlsx"
	}), "Marzo 2024").Return(domain.ScheduleReport{PeriodName: "Marzo 2024", Rows: []domain.ScheduleRow{}}, nil)
	router := newTestHandler(t, svc, 1<<20)

	req := multipartRequest(t, "/workspaces/"+id+"/schedule", []multipartFile{
		{field: "file", name: "Marzo.xlsx", data: []byte("PK\x03\x04")},
	}, map[string]string{"period": " Marzo 2024 "})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Marzo 2024", decodeBody(t, rec)["period_name"])
	svc.AssertExpectations(t)

	t.Run("missing file", func(t *testing.T) {
		req := multipartRequest(t, "/workspaces/"+id+"/schedule", nil, map[string]string{"period": "x"})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestReportHandler_GetDashboard(t *testing.T) {
	id := uuid.New().String()
	from := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		query      string
		expectCall bool
		wantQuery  services.DateQuery
		wantStatus int
	}{
		{name: "no dates", query: "", expectCall: true, wantStatus: http.StatusOK},
		{name: "both dates", query: "?from=2024-03-01&to=2024-03-31", expectCall: true, wantQuery: services.DateQuery{From: &from, To: &to}, wantStatus: http.StatusOK},
		{name: "bad date", query: "?from=01/03/2024", wantStatus: http.StatusBadRequest},
		{name: "inverted", query: "?from=2024-03-31&to=2024-03-01", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockReportService)
			if tt.expectCall {
				svc.On("Dashboard", id, tt.wantQuery).Return(services.Dashboard{WorkspaceID: id}, nil)
			}
			router := newTestHandler(t, svc, 1<<20)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/workspaces/"+id+"/dashboard"+tt.query, nil))

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.expectCall {
				assert.Equal(t, id, decodeBody(t, rec)["workspace_id"])
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestReportHandler_Export(t *testing.T) {
	id := uuid.New().String()
	table := exporter.Table{
		Name:    exporter.TableCellManagers,
		Headers: []string{"Plataforma", "Jobs"},
		Rows:    [][]string{{"COMHP81", "3"}},
		Numeric: []bool{false, true},
	}

	t.Run("csv", func(t *testing.T) {
		svc := new(MockReportService)
		svc.On("ExportTable", id, exporter.TableCellManagers, services.DateQuery{}).Return(table, nil)
		router := newTestHandler(t, svc, 1<<20)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/workspaces/"+id+"/export/cell-managers.csv", nil))

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="cell-managers.csv"`)
		assert.Equal(t, "\ufeffPlataforma,Jobs\nCOMHP81,3\n", rec.Body.String())
	})

	t.Run("summary workbook", func(t *testing.T) {
		svc := new(MockReportService)
		svc.On("ExportTables", id, services.DateQuery{}).Return([]exporter.Table{table}, nil)
		router := newTestHandler(t, svc, 1<<20)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/workspaces/"+id+"/export/summary.xlsx", nil))

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
	})

	t.Run("unknown table", func(t *testing.T) {
		svc := new(MockReportService)
		svc.On("ExportTable", id, "tickers", services.DateQuery{}).Return(exporter.Table{}, services.ErrUnknownTable)
		router := newTestHandler(t, svc, 1<<20)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/workspaces/"+id+"/export/tickers.csv", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("no schedule", func(t *testing.T) {
		svc := new(MockReportService)
		svc.On("ExportTable", id, exporter.TableSchedule, services.DateQuery{}).Return(exporter.Table{}, services.ErrNoData)
		router := newTestHandler(t, svc, 1<<20)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/workspaces/"+id+"/export/schedule.csv", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "NO_DATA", decodeBody(t, rec)["error_code"])
	})

	t.Run("bad extension", func(t *testing.T) {
		router := newTestHandler(t, new(MockReportService), 1<<20)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/workspaces/"+id+"/export/cell-managers.pdf", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSplitExportName(t *testing.T) {
	tests := []struct {
		file, table, format string
	}{
		{"cell-managers.csv", "cell-managers", "csv"},
		{"summary.xlsx", "summary", "xlsx"},
		{"schedule.CSV", "schedule.CSV", ""},
		{".csv", ".csv", ""},
		{"sessions", "sessions", ""},
	}
	for _, tt := range tests {
		table, format := splitExportName(tt.file)
		assert.Equal(t, tt.table, table, tt.file)
		assert.Equal(t, tt.format, format, tt.file)
	}
}
