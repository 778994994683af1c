package http

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "bkpreport/internal/errors"
	"bkpreport/internal/exporter"
	"bkpreport/internal/middleware"
	"bkpreport/internal/services"
)

// multipartMemory is the part of a multipart body kept in memory; the rest
// spills to temporary files.
const multipartMemory = 8 << 20

// summaryExport names the workbook holding every table of a workspace.
const summaryExport = "summary"

// DashboardQuery holds the date bounds of dashboard and export requests
type DashboardQuery struct {
	From string `query:"from" validate:"omitempty,isodate"`
	To   string `query:"to" validate:"omitempty,isodate"`
}

// workspaceParams holds the workspace id path parameter
type workspaceParams struct {
	ID string `json:"workspace_id" validate:"required,uuid4"`
}

// ReportHandler handles workspace, upload, dashboard and export requests
type ReportHandler struct {
	service        ReportServiceInterface
	validator      *middleware.Validator
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
	maxUploadBytes int64
}

// NewReportHandler creates a new report handler with RFC 7807 error handling
func NewReportHandler(service ReportServiceInterface, validator *middleware.Validator, maxUploadBytes int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ReportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportHandler{
		service:        service,
		validator:      validator,
		logger:         logger.With(slog.String("component", "report_handler")),
		errorHandler:   errorHandler,
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns the report routes
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes registers the report routes on r
func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/cell-managers", h.ListCellManagers)
	r.Post("/workspaces", h.CreateWorkspace)

	r.Route("/workspaces/{id}", func(r chi.Router) {
		r.Use(h.WorkspaceCtx)
		r.Delete("/", h.DeleteWorkspace)
		r.With(middleware.ContentTypeValidator("multipart/form-data")).
			Post("/cell-managers/{cm}", h.UploadCellManager)
		r.With(middleware.ContentTypeValidator("multipart/form-data")).
			Post("/schedule", h.UploadSchedule)
		r.Get("/dashboard", h.GetDashboard)
		r.Get("/export/{file}", h.Export)
	})
}

// WorkspaceCtx validates the workspace id path parameter
func (h *ReportHandler) WorkspaceCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		params := workspaceParams{ID: chi.URLParam(r, "id")}
		if err := h.validator.ValidateStruct(params); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ListCellManagers handles GET /api/cell-managers
func (h *ReportHandler) ListCellManagers(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"cell_managers": h.service.CellManagers(),
	})
}

// CreateWorkspace handles POST /api/workspaces
func (h *ReportHandler) CreateWorkspace(w http.ResponseWriter, r *http.Request) {
	id := h.service.CreateWorkspace(r.Context())
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]string{"id": id})
}

// DeleteWorkspace handles DELETE /api/workspaces/{id}
func (h *ReportHandler) DeleteWorkspace(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteWorkspace(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

// UploadCellManager handles POST /api/workspaces/{id}/cell-managers/{cm}.
// The multipart field "files" carries one or more session exports.
func (h *ReportHandler) UploadCellManager(w http.ResponseWriter, r *http.Request) {
	form, err := h.parseMultipart(w, r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	defer form.RemoveAll()

	uploads, closeAll, err := openUploads(form.File["files"])
	defer closeAll()
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	id := chi.URLParam(r, "id")
	cm := chi.URLParam(r, "cm")
	result, err := h.service.UploadCellManager(r.Context(), id, cm, uploads)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, result.Summary())
}

// UploadSchedule handles POST /api/workspaces/{id}/schedule. The multipart
// field "file" carries the workbook; "period" optionally names the month.
func (h *ReportHandler) UploadSchedule(w http.ResponseWriter, r *http.Request) {
	form, err := h.parseMultipart(w, r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	defer form.RemoveAll()

	headers := form.File["file"]
	if len(headers) != 1 {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "exactly one workbook is required"))
		return
	}

	uploads, closeAll, err := openUploads(headers)
	defer closeAll()
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	period := ""
	if values := form.Value["period"]; len(values) > 0 {
		period = strings.TrimSpace(values[0])
	}

	report, err := h.service.UploadSchedule(r.Context(), chi.URLParam(r, "id"), uploads[0], period)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, report)
}

// GetDashboard handles GET /api/workspaces/{id}/dashboard?from=&to=
func (h *ReportHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	q, err := h.dateQuery(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	dashboard, err := h.service.Dashboard(r.Context(), chi.URLParam(r, "id"), q)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, dashboard)
}

// Export handles GET /api/workspaces/{id}/export/{table}.csv and
// /export/{table}.xlsx; summary.xlsx holds every available table.
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	table, format := splitExportName(file)
	if format == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "export must end in .csv or .xlsx"))
		return
	}

	q, err := h.dateQuery(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	id := chi.URLParam(r, "id")
	var tables []exporter.Table
	if table == summaryExport && format == "xlsx" {
		tables, err = h.service.ExportTables(r.Context(), id, q)
	} else {
		var t exporter.Table
		t, err = h.service.ExportTable(r.Context(), id, table, q)
		tables = []exporter.Table{t}
	}
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file))
	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		err = exporter.EncodeCSV(w, tables[0].Headers, tables[0].Rows, true)
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		err = exporter.WriteWorkbook(w, tables...)
	}
	if err != nil {
		// Headers are already sent; the client sees a truncated body.
		h.logger.ErrorContext(r.Context(), "export write failed",
			slog.String("file", file),
			slog.String("error", err.Error()))
	}
}

// parseMultipart bounds the request body and parses the multipart form
func (h *ReportHandler) parseMultipart(w http.ResponseWriter, r *http.Request) (*multipart.Form, error) {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, err
		}
		return nil, apierrors.InvalidRequestWithError(err)
	}
	return r.MultipartForm, nil
}

// dateQuery validates and parses the from/to query parameters
func (h *ReportHandler) dateQuery(r *http.Request) (services.DateQuery, error) {
	params := DashboardQuery{
		From: strings.TrimSpace(r.URL.Query().Get("from")),
		To:   strings.TrimSpace(r.URL.Query().Get("to")),
	}
	if err := h.validator.ValidateStruct(params); err != nil {
		return services.DateQuery{}, err
	}

	var q services.DateQuery
	if params.From != "" {
		t, _ := time.Parse(middleware.DateLayout, params.From)
		q.From = &t
	}
	if params.To != "" {
		t, _ := time.Parse(middleware.DateLayout, params.To)
		q.To = &t
	}
	if q.From != nil && q.To != nil && q.From.After(*q.To) {
		return services.DateQuery{}, apierrors.ErrValidation("from", "from must not be after to")
	}
	return q, nil
}

// handleServiceError maps service errors to API errors
func (h *ReportHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrWorkspaceNotFound):
		err = apierrors.ErrWorkspaceNotFound
	case errors.Is(err, services.ErrUnknownCellManager):
		err = apierrors.UnknownCellManagerError(chi.URLParam(r, "cm"), h.service.CellManagers())
	case errors.Is(err, services.ErrNoFiles):
		err = apierrors.ErrNoFilesUploaded
	case errors.Is(err, services.ErrInvalidDateRange):
		err = apierrors.ErrValidation("from", err.Error())
	case errors.Is(err, services.ErrUnknownTable):
		err = apierrors.NotFoundError("export table")
	case errors.Is(err, services.ErrNoData):
		err = apierrors.NewWithDetails(http.StatusNotFound, "NO_DATA", "No report data available", err.Error())
	}
	h.errorHandler.HandleError(w, r, err)
}

// openUploads opens every multipart file. closeAll is always safe to call.
func openUploads(headers []*multipart.FileHeader) ([]services.Upload, func(), error) {
	files := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}

	uploads := make([]services.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, closeAll, apierrors.InvalidRequestWithError(err)
		}
		files = append(files, f)
		uploads = append(uploads, services.Upload{Filename: fh.Filename, Content: f})
	}
	return uploads, closeAll, nil
}

// splitExportName splits "cell-managers.csv" into its table and format.
func splitExportName(file string) (table, format string) {
	for _, ext := range []string{"csv", "xlsx"} {
		if name, ok := strings.CutSuffix(file, "."+ext); ok && name != "" {
			return name, ext
		}
	}
	return file, ""
}
