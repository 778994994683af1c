package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"bkpreport/internal/config"
	"bkpreport/pkg/contracts/domain"
)

// ReportExporter writes report tables to the reports directory
type ReportExporter struct {
	csvWriter *CSVWriter
	logger    *slog.Logger
}

// NewReportExporter creates a new report exporter
func NewReportExporter(paths *config.Paths, logger *slog.Logger) *ReportExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportExporter{
		csvWriter: NewCSVWriter(paths, logger),
		logger:    logger.With(slog.String("component", "report_exporter")),
	}
}

// ExportTables writes each table to <outputDir>/<name>.csv and returns the written paths.
func (e *ReportExporter) ExportTables(outputDir string, tables ...Table) ([]string, error) {
	written := make([]string, 0, len(tables))
	for _, t := range tables {
		path := filepath.Join(outputDir, t.Name+".csv")
		if err := e.csvWriter.WriteSimpleCSV(path, t.Headers, t.Rows); err != nil {
			return written, fmt.Errorf("failed to export %s: %w", t.Name, err)
		}
		written = append(written, e.csvWriter.resolvePath(path))
	}

	e.logger.Info("Report tables exported",
		slog.String("output_dir", outputDir),
		slog.Int("tables", len(written)))
	return written, nil
}

// ExportSessions streams every session of the reports to a CSV file.
func (e *ReportExporter) ExportSessions(filePath string, reports []domain.CellManagerReport) error {
	stream, err := e.csvWriter.CreateStreamWriter(filePath, sessionHeaders)
	if err != nil {
		return fmt.Errorf("failed to create session export: %w", err)
	}

	count := 0
	for _, r := range reports {
		for _, s := range r.Sessions {
			if err := stream.WriteRecord(sessionRow(r.CellManager, s)); err != nil {
				stream.Close()
				return fmt.Errorf("failed to write session record: %w", err)
			}
			count++
		}
	}

	if err := stream.Close(); err != nil {
		return fmt.Errorf("failed to close session export: %w", err)
	}

	e.logger.Debug("Sessions exported", slog.String("file", filePath), slog.Int("sessions", count))
	return nil
}

// ExportWorkbook writes all tables into a single XLSX file.
func (e *ReportExporter) ExportWorkbook(filePath string, tables ...Table) error {
	fullPath := e.csvWriter.resolvePath(filePath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create workbook: %w", err)
	}

	if err := WriteWorkbook(file, tables...); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close workbook: %w", err)
	}

	e.logger.Info("Summary workbook exported", slog.String("file", fullPath))
	return nil
}
