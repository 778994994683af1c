package http

import (
	"context"

	"bkpreport/internal/exporter"
	"bkpreport/internal/services"
	"bkpreport/pkg/contracts/domain"
)

// ReportServiceInterface defines the report operations used by ReportHandler
type ReportServiceInterface interface {
	CellManagers() []string
	CreateWorkspace(ctx context.Context) string
	DeleteWorkspace(ctx context.Context, id string) error
	UploadCellManager(ctx context.Context, id, cellManager string, uploads []services.Upload) (services.CellManagerResult, error)
	UploadSchedule(ctx context.Context, id string, upload services.Upload, period string) (domain.ScheduleReport, error)
	Dashboard(ctx context.Context, id string, q services.DateQuery) (services.Dashboard, error)
	ExportTable(ctx context.Context, id, table string, q services.DateQuery) (exporter.Table, error)
	ExportTables(ctx context.Context, id string, q services.DateQuery) ([]exporter.Table, error)
}

var _ ReportServiceInterface = (*services.ReportService)(nil)
