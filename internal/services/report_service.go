package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"bkpreport/internal/config"
	"bkpreport/internal/dataprocessing"
	apierrors "bkpreport/internal/errors"
	"bkpreport/internal/exporter"
	"bkpreport/internal/files"
	"bkpreport/internal/infrastructure"
	"bkpreport/internal/validation"
	"bkpreport/pkg/contracts/domain"
)

// scheduleGroup is the upload folder of a workspace's schedule workbook.
const scheduleGroup = "schedule"

// Upload is one file received from a caller.
type Upload struct {
	Filename string
	Content  io.Reader
}

// CellManagerResult is a parsed Cell Manager with its parse statistics.
type CellManagerResult struct {
	Report domain.CellManagerReport  `json:"report"`
	Stats  dataprocessing.ParseStats `json:"stats"`
}

// Summary returns the result without the session list.
func (r CellManagerResult) Summary() CellManagerResult {
	r.Report.Sessions = nil
	return r
}

// DateQuery bounds a dashboard or export. Nil ends are filled from the
// session dates of the workspace.
type DateQuery struct {
	From *time.Time
	To   *time.Time
}

// Dashboard is the filtered view of a workspace.
type Dashboard struct {
	WorkspaceID  string                     `json:"workspace_id"`
	Window       *domain.DateRange          `json:"window,omitempty"`
	Bounds       *domain.DateRange          `json:"bounds,omitempty"`
	CellManagers []domain.CellManagerReport `json:"cell_managers"`
	Overview     domain.CellManagerOverview `json:"overview"`
	Schedule     *domain.ScheduleReport     `json:"schedule,omitempty"`
}

// workspace holds the current reports of one caller.
type workspace struct {
	id       string
	created  time.Time
	results  map[string]CellManagerResult
	schedule *domain.ScheduleReport
}

// ReportService manages workspaces and runs the parsing engine on uploads.
type ReportService struct {
	cellManagers []string
	windowDays   int
	store        *files.Manager
	validator    *validation.FileValidator
	metrics      *infrastructure.BusinessMetrics
	tracer       trace.Tracer
	logger       *slog.Logger

	mu         sync.RWMutex
	workspaces map[string]*workspace
}

// NewReportService creates a report service. metrics may be nil.
func NewReportService(cfg config.ReportConfig, store *files.Manager, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("service", "report"))

	windowDays := cfg.DefaultWindowDays
	if windowDays <= 0 {
		windowDays = config.DefaultWindowDays
	}

	cellManagers := cfg.CellManagers
	if len(cellManagers) == 0 {
		cellManagers = config.DefaultCellManagers()
	}

	return &ReportService{
		cellManagers: append([]string(nil), cellManagers...),
		windowDays:   windowDays,
		store:        store,
		validator:    validation.NewFileValidator(logger),
		metrics:      metrics,
		tracer:       otel.Tracer(infrastructure.MeterName + "/services"),
		logger:       logger,
		workspaces:   make(map[string]*workspace),
	}
}

// CellManagers returns the accepted Cell Manager names in display order.
func (s *ReportService) CellManagers() []string {
	return append([]string(nil), s.cellManagers...)
}

// IsCellManager reports whether name is an accepted Cell Manager.
func (s *ReportService) IsCellManager(name string) bool {
	for _, cm := range s.cellManagers {
		if cm == name {
			return true
		}
	}
	return false
}

// CreateWorkspace registers an empty workspace and returns its id.
func (s *ReportService) CreateWorkspace(ctx context.Context) string {
	ws := &workspace{
		id:      uuid.New().String(),
		created: time.Now(),
		results: make(map[string]CellManagerResult),
	}

	s.mu.Lock()
	s.workspaces[ws.id] = ws
	count := len(s.workspaces)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Workspace created",
		slog.String("workspace", ws.id),
		slog.Int("workspaces", count))
	return ws.id
}

// DeleteWorkspace drops a workspace and its stored uploads.
func (s *ReportService) DeleteWorkspace(ctx context.Context, id string) error {
	s.mu.Lock()
	_, ok := s.workspaces[id]
	delete(s.workspaces, id)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrWorkspaceNotFound, id)
	}

	if s.store != nil {
		if err := s.store.RemoveWorkspace(id); err != nil {
			return apierrors.NewStorageError("failed to remove workspace uploads", err)
		}
	}

	s.logger.InfoContext(ctx, "Workspace deleted", slog.String("workspace", id))
	return nil
}

// WorkspaceCount returns the number of live workspaces.
func (s *ReportService) WorkspaceCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.workspaces)
}

// HasWorkspace reports whether id names a live workspace.
func (s *ReportService) HasWorkspace(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.workspaces[id]
	return ok
}

// UploadCellManager stores and parses the session exports of one Cell
// Manager. The parsed report replaces the previous one for that Cell Manager.
func (s *ReportService) UploadCellManager(ctx context.Context, id, cellManager string, uploads []Upload) (CellManagerResult, error) {
	ctx, span := s.tracer.Start(ctx, "ReportService.UploadCellManager",
		trace.WithAttributes(
			attribute.String("workspace.id", id),
			attribute.String("cell_manager", cellManager),
			attribute.Int("upload.files", len(uploads)),
		))
	defer span.End()

	if !s.HasWorkspace(id) {
		return CellManagerResult{}, fmt.Errorf("%w: %s", ErrWorkspaceNotFound, id)
	}
	if !s.IsCellManager(cellManager) {
		return CellManagerResult{}, fmt.Errorf("%w: %s", ErrUnknownCellManager, cellManager)
	}
	if len(uploads) == 0 {
		return CellManagerResult{}, ErrNoFiles
	}
	for _, u := range uploads {
		if err := s.validator.ValidateUploadName(validation.SessionUpload, u.Filename); err != nil {
			return CellManagerResult{}, err
		}
	}

	paths, err := s.storeUploads(id, cellManager, uploads)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "storing uploads failed")
		return CellManagerResult{}, err
	}

	result, err := s.parseCellManager(ctx, cellManager, paths)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parsing failed")
		return CellManagerResult{}, err
	}

	s.mu.Lock()
	ws, ok := s.workspaces[id]
	if ok {
		ws.results[cellManager] = result
	}
	s.mu.Unlock()
	if !ok {
		return CellManagerResult{}, fmt.Errorf("%w: %s", ErrWorkspaceNotFound, id)
	}

	span.SetAttributes(attribute.Int("sessions", result.Report.TotalJobs))
	s.logger.InfoContext(ctx, "Cell Manager uploaded",
		slog.String("workspace", id),
		slog.String("cell_manager", cellManager),
		slog.Int("files", result.Stats.Files),
		slog.Int("jobs", result.Report.TotalJobs),
		slog.Int("skipped_rows", result.Stats.Skipped))
	return result, nil
}

// UploadSchedule stores and parses a schedule workbook. An empty period is
// taken from the file name.
func (s *ReportService) UploadSchedule(ctx context.Context, id string, upload Upload, period string) (domain.ScheduleReport, error) {
	ctx, span := s.tracer.Start(ctx, "ReportService.UploadSchedule",
		trace.WithAttributes(attribute.String("workspace.id", id)))
	defer span.End()

	if !s.HasWorkspace(id) {
		return domain.ScheduleReport{}, fmt.Errorf("%w: %s", ErrWorkspaceNotFound, id)
	}
	if err := s.validator.ValidateUploadName(validation.WorkbookUpload, upload.Filename); err != nil {
		return domain.ScheduleReport{}, err
	}

	paths, err := s.storeUploads(id, scheduleGroup, []Upload{upload})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "storing upload failed")
		return domain.ScheduleReport{}, err
	}

	if period == "" {
		period = dataprocessing.PeriodFromFilename(files.SanitizeFilename(upload.Filename))
	}

	report, err := s.parseSchedule(ctx, paths[0], period)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parsing failed")
		return domain.ScheduleReport{}, err
	}

	s.mu.Lock()
	ws, ok := s.workspaces[id]
	if ok {
		ws.schedule = &report
	}
	s.mu.Unlock()
	if !ok {
		return domain.ScheduleReport{}, fmt.Errorf("%w: %s", ErrWorkspaceNotFound, id)
	}

	s.logger.InfoContext(ctx, "Schedule uploaded",
		slog.String("workspace", id),
		slog.String("period", report.PeriodName),
		slog.Int("platforms", len(report.Rows)))
	return report, nil
}

// Dashboard returns the workspace's reports filtered to the query window.
// Without explicit dates the window is the last configured days before the
// newest session.
func (s *ReportService) Dashboard(ctx context.Context, id string, q DateQuery) (Dashboard, error) {
	_, span := s.tracer.Start(ctx, "ReportService.Dashboard",
		trace.WithAttributes(attribute.String("workspace.id", id)))
	defer span.End()

	reports, schedule, err := s.snapshot(id)
	if err != nil {
		return Dashboard{}, err
	}

	filtered, window, bounds, err := s.applyWindow(reports, q)
	if err != nil {
		return Dashboard{}, err
	}

	d := Dashboard{
		WorkspaceID:  id,
		Window:       window,
		Bounds:       bounds,
		CellManagers: make([]domain.CellManagerReport, 0, len(filtered)),
		Overview:     dataprocessing.SummarizeCellManagers(filtered),
		Schedule:     schedule,
	}
	for _, r := range filtered {
		r.Sessions = nil
		d.CellManagers = append(d.CellManagers, r)
	}
	return d, nil
}

// ExportTable renders one report table of a workspace. Cell Manager and
// session tables use the same window as Dashboard.
func (s *ReportService) ExportTable(ctx context.Context, id, table string, q DateQuery) (exporter.Table, error) {
	_, span := s.tracer.Start(ctx, "ReportService.ExportTable",
		trace.WithAttributes(
			attribute.String("workspace.id", id),
			attribute.String("table", table),
		))
	defer span.End()

	switch table {
	case exporter.TableCellManagers, exporter.TableSchedule, exporter.TableSessions:
	default:
		return exporter.Table{}, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}

	reports, schedule, err := s.snapshot(id)
	if err != nil {
		return exporter.Table{}, err
	}

	if table == exporter.TableSchedule {
		if schedule == nil {
			return exporter.Table{}, fmt.Errorf("%w: no schedule uploaded", ErrNoData)
		}
		return exporter.ScheduleTable(*schedule), nil
	}

	filtered, _, _, err := s.applyWindow(reports, q)
	if err != nil {
		return exporter.Table{}, err
	}
	if table == exporter.TableSessions {
		return exporter.SessionTable(filtered), nil
	}
	return exporter.CellManagerTable(dataprocessing.SummarizeCellManagers(filtered)), nil
}

// ExportTables renders every table the workspace has data for, in the order
// of a summary workbook.
func (s *ReportService) ExportTables(ctx context.Context, id string, q DateQuery) ([]exporter.Table, error) {
	reports, schedule, err := s.snapshot(id)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 && schedule == nil {
		return nil, fmt.Errorf("%w: workspace %s is empty", ErrNoData, id)
	}

	var tables []exporter.Table
	if len(reports) > 0 {
		filtered, _, _, err := s.applyWindow(reports, q)
		if err != nil {
			return nil, err
		}
		tables = append(tables,
			exporter.CellManagerTable(dataprocessing.SummarizeCellManagers(filtered)),
			exporter.SessionTable(filtered))
	}
	if schedule != nil {
		tables = append(tables, exporter.ScheduleTable(*schedule))
	}

	s.logger.DebugContext(ctx, "Tables exported",
		slog.String("workspace", id),
		slog.Int("tables", len(tables)))
	return tables, nil
}

// LoadCellManagers parses <dir>/<cm>/ session exports for every configured
// Cell Manager concurrently. Results keep the configured order; Cell
// Managers without files are left out.
func (s *ReportService) LoadCellManagers(ctx context.Context, dir string) ([]CellManagerResult, error) {
	discovery := files.NewDiscovery("")
	found, err := discovery.DiscoverCellManagers(dir, s.cellManagers)
	if err != nil {
		return nil, apierrors.NewStorageError("failed to discover session exports", err)
	}
	s.warnUnknownDirectories(ctx, discovery, dir)

	results := make([]*CellManagerResult, len(found))
	g, gctx := errgroup.WithContext(ctx)
	for i, cm := range found {
		if len(cm.Files) == 0 {
			s.logger.DebugContext(ctx, "No session exports for Cell Manager",
				slog.String("cell_manager", cm.CellManager),
				slog.String("dir", cm.Dir))
			continue
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := s.parseCellManager(gctx, cm.CellManager, files.Paths(cm.Files))
			if err != nil {
				return err
			}
			results[i] = &result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]CellManagerResult, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}

	s.logger.InfoContext(ctx, "Cell Managers loaded",
		slog.String("dir", dir),
		slog.Int("cell_managers", len(out)))
	return out, nil
}

// warnUnknownDirectories logs subdirectories of dir that match no configured
// Cell Manager. Their files are never read.
func (s *ReportService) warnUnknownDirectories(ctx context.Context, discovery *files.Discovery, dir string) {
	dirs, err := discovery.ListDirectories(dir)
	if err != nil {
		return
	}
	for _, d := range dirs {
		if !s.IsCellManager(d.Name) {
			s.logger.WarnContext(ctx, "Ignoring directory that matches no Cell Manager",
				slog.String("dir", d.Path),
				slog.Any("cell_managers", s.cellManagers))
		}
	}
}

// LatestWorkbook returns the most recently modified schedule workbook directly
// under dir. ok is false when dir holds none.
func (s *ReportService) LatestWorkbook(dir string) (path string, ok bool, err error) {
	found, err := files.NewDiscovery("").FindWorkbooks(dir)
	if err != nil {
		return "", false, apierrors.NewStorageError("failed to look for schedule workbooks", err)
	}
	latest, ok := files.GetLatestFile(found)
	return latest.Path, ok, nil
}

// ParseSchedule parses a workbook from disk for callers without a workspace.
func (s *ReportService) ParseSchedule(ctx context.Context, path, period string) (domain.ScheduleReport, error) {
	if err := s.validator.ValidateWorkbookFile(path); err != nil {
		return domain.ScheduleReport{}, err
	}
	return s.parseSchedule(ctx, path, period)
}

// ParseCellManager parses session exports from disk for callers without a
// workspace.
func (s *ReportService) ParseCellManager(ctx context.Context, cellManager string, paths []string) (CellManagerResult, error) {
	if len(paths) == 0 {
		return CellManagerResult{}, ErrNoFiles
	}
	for _, p := range paths {
		if err := s.validator.ValidateSessionFile(p); err != nil {
			if !config.FileExists(p) {
				return CellManagerResult{}, apierrors.NewStorageError("session export is not readable", err)
			}
			return CellManagerResult{}, err
		}
	}
	return s.parseCellManager(ctx, cellManager, paths)
}

// Window resolves a query against the session dates of reports and returns
// the filtered reports together with the window used.
func (s *ReportService) Window(reports []domain.CellManagerReport, q DateQuery) ([]domain.CellManagerReport, *domain.DateRange, error) {
	filtered, window, _, err := s.applyWindow(reports, q)
	return filtered, window, err
}

func (s *ReportService) parseCellManager(ctx context.Context, cellManager string, paths []string) (CellManagerResult, error) {
	start := time.Now()
	report, stats, err := dataprocessing.ParseCellManagerFiles(cellManager, paths, s.logger)
	s.metrics.RecordSessionParse(ctx, cellManager, stats.Files, stats.Records, stats.Skipped, time.Since(start), err)
	if err != nil {
		s.logger.ErrorContext(ctx, "Session parsing failed",
			slog.String("cell_manager", cellManager),
			slog.String("error", err.Error()))
		return CellManagerResult{}, apierrors.NewParsingError("failed to read session exports", err).
			WithContext("cell_manager", cellManager)
	}
	return CellManagerResult{Report: report, Stats: stats}, nil
}

func (s *ReportService) parseSchedule(ctx context.Context, path, period string) (domain.ScheduleReport, error) {
	start := time.Now()
	report, err := dataprocessing.ParseScheduleFile(path, period, s.logger)
	s.metrics.RecordScheduleParse(ctx, len(report.Rows), time.Since(start), err)
	if err != nil {
		s.logger.ErrorContext(ctx, "Schedule parsing failed",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return domain.ScheduleReport{}, apierrors.NewParsingError("failed to read schedule workbook", err)
	}
	return report, nil
}

// storeUploads replaces the stored files of a group with uploads. Stored
// names carry the upload's position, so paths keep the given order and
// uploads sharing a name do not overwrite each other.
func (s *ReportService) storeUploads(id, group string, uploads []Upload) ([]string, error) {
	if s.store == nil {
		return nil, apierrors.NewStorageError("upload storage is not configured", nil)
	}
	if err := s.store.ClearGroup(id, group); err != nil {
		return nil, apierrors.NewStorageError("failed to clear previous uploads", err)
	}

	paths := make([]string, 0, len(uploads))
	for i, u := range uploads {
		name := fmt.Sprintf("%03d_%s", i, files.SanitizeFilename(u.Filename))
		path, err := s.store.SaveUpload(id, group, name, u.Content)
		if err != nil {
			return nil, apierrors.NewStorageError("failed to store upload", err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// snapshot copies the workspace's reports in Cell Manager display order.
func (s *ReportService) snapshot(id string) ([]domain.CellManagerReport, *domain.ScheduleReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ws, ok := s.workspaces[id]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrWorkspaceNotFound, id)
	}

	reports := make([]domain.CellManagerReport, 0, len(ws.results))
	for _, cm := range s.cellManagers {
		if r, ok := ws.results[cm]; ok {
			reports = append(reports, r.Report)
		}
	}

	var schedule *domain.ScheduleReport
	if ws.schedule != nil {
		sr := *ws.schedule
		schedule = &sr
	}
	return reports, schedule, nil
}

// applyWindow fills missing query ends from the session date bounds and
// filters every report. Reports pass unfiltered when no window can be
// resolved.
func (s *ReportService) applyWindow(reports []domain.CellManagerReport, q DateQuery) ([]domain.CellManagerReport, *domain.DateRange, *domain.DateRange, error) {
	var boundsPtr *domain.DateRange
	bounds, dated := dataprocessing.SessionDateBounds(reports...)
	if dated {
		boundsPtr = &bounds
	}

	var window domain.DateRange
	switch {
	case q.From != nil && q.To != nil:
		window = domain.DateRange{Start: *q.From, End: *q.To}
	case q.From != nil:
		window = domain.DateRange{Start: *q.From, End: *q.From}
		if dated && bounds.End.After(*q.From) {
			window.End = bounds.End
		}
	case q.To != nil:
		window = domain.DateRange{Start: *q.To, End: *q.To}
		if dated && bounds.Start.Before(*q.To) {
			window.Start = bounds.Start
		}
	case dated:
		window = dataprocessing.DefaultWindow(bounds, s.windowDays)
	default:
		return reports, nil, nil, nil
	}

	if window.Start.After(window.End) {
		return nil, nil, nil, fmt.Errorf("%w: %s is after %s", ErrInvalidDateRange,
			window.Start.Format(time.DateOnly), window.End.Format(time.DateOnly))
	}

	filtered := make([]domain.CellManagerReport, 0, len(reports))
	for _, r := range reports {
		filtered = append(filtered, dataprocessing.FilterByDateRange(r, window.Start, window.End))
	}
	return filtered, &window, boundsPtr, nil
}
