package dataprocessing

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"bkpreport/internal/config"
	"bkpreport/pkg/contracts/domain"
)

// OperationKPI is the share of scheduled jobs that did not fail.
func OperationKPI(programados, fallidos int) float64 {
	if programados <= 0 {
		return 0
	}
	return round2(float64(programados-fallidos) / float64(programados) * 100)
}

// RelaunchPct is the share of non-failed jobs that were relaunched.
func RelaunchPct(relanzados, programados, fallidos int) float64 {
	den := programados - fallidos
	if den <= 0 {
		return 0
	}
	return round2(float64(relanzados) / float64(den) * 100)
}

// ManagedFailurePct is the share of failed or relaunched jobs with documented handling.
func ManagedFailurePct(gestionados, fallidos, relanzados int) float64 {
	den := fallidos + relanzados
	if den <= 0 {
		return 0
	}
	return round2(float64(gestionados) / float64(den) * 100)
}

func newScheduleRow(platform string, c domain.SheetCounts) domain.ScheduleRow {
	return domain.ScheduleRow{
		Platform:         platform,
		Programados:      c.Programados,
		Ejecutados:       c.Ejecutados,
		Fallidos:         c.Fallidos,
		Relanzados:       c.Relanzados,
		Q:                c.Q,
		Gestionados:      c.Gestionados,
		KPIOperacion:     OperationKPI(c.Programados, c.Fallidos),
		PctRelanzamiento: RelaunchPct(c.Relanzados, c.Programados, c.Fallidos),
		GestionFallidos:  ManagedFailurePct(c.Gestionados, c.Fallidos, c.Relanzados),
	}
}

// BuildScheduleReport turns per-sheet counts into platform rows in mapping
// order. Sheets missing from counts are skipped, as are unmapped and excluded
// sheets. Totals are computed from the summed counts.
func BuildScheduleReport(periodName string, counts map[string]domain.SheetCounts) domain.ScheduleReport {
	report := domain.ScheduleReport{
		PeriodName: periodName,
		Rows:       []domain.ScheduleRow{},
	}

	var sum domain.SheetCounts
	for _, m := range config.ScheduleSheets() {
		if config.IsExcludedSheet(m.Sheet) {
			continue
		}
		c, ok := counts[m.Sheet]
		if !ok {
			continue
		}
		report.Rows = append(report.Rows, newScheduleRow(m.Platform, c))
		sum = sum.Add(c)
	}

	report.Totals = domain.ScheduleTotals{
		Programados:            sum.Programados,
		Ejecutados:             sum.Ejecutados,
		Fallidos:               sum.Fallidos,
		Relanzados:             sum.Relanzados,
		Q:                      sum.Q,
		Gestionados:            sum.Gestionados,
		KPIOperacionGeneral:    OperationKPI(sum.Programados, sum.Fallidos),
		PctRelanzadosGeneral:   RelaunchPct(sum.Relanzados, sum.Programados, sum.Fallidos),
		GestionFallidosGeneral: ManagedFailurePct(sum.Gestionados, sum.Fallidos, sum.Relanzados),
	}
	return report
}

// ParseScheduleWorkbook classifies every mapped sheet present in f. Cells are
// read as their cached values, so formulas yield their last computed result.
func ParseScheduleWorkbook(f *excelize.File, periodName string, logger *slog.Logger) (domain.ScheduleReport, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "schedule_parser"))

	present := make(map[string]bool)
	for _, name := range f.GetSheetList() {
		present[name] = true
	}

	counts := make(map[string]domain.SheetCounts)
	for _, m := range config.ScheduleSheets() {
		if !present[m.Sheet] || config.IsExcludedSheet(m.Sheet) {
			continue
		}

		rows, err := f.GetRows(m.Sheet)
		if err != nil {
			return domain.ScheduleReport{}, fmt.Errorf("failed to read sheet %s: %w", m.Sheet, err)
		}

		counts[m.Sheet] = ClassifySheet(rows)
		logger.Debug("Schedule sheet classified",
			slog.String("sheet", m.Sheet),
			slog.Int("programados", counts[m.Sheet].Programados))
	}

	if len(counts) == 0 {
		logger.Warn("Workbook has no recognized schedule sheets",
			slog.Any("sheets", f.GetSheetList()))
	}

	return BuildScheduleReport(periodName, counts), nil
}

// ParseScheduleFile opens a schedule workbook from disk. An empty periodName
// is derived from the file name.
func ParseScheduleFile(filePath, periodName string, logger *slog.Logger) (domain.ScheduleReport, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return domain.ScheduleReport{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if periodName == "" {
		periodName = PeriodFromFilename(filePath)
	}
	return ParseScheduleWorkbook(f, periodName, logger)
}

// ParseScheduleReader is ParseScheduleFile for an uploaded workbook.
func ParseScheduleReader(r io.Reader, periodName string, logger *slog.Logger) (domain.ScheduleReport, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return domain.ScheduleReport{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return ParseScheduleWorkbook(f, periodName, logger)
}

// PeriodFromFilename strips the directory and a workbook extension.
func PeriodFromFilename(filePath string) string {
	name := filepath.Base(filePath)
	for _, ext := range []string{".xlsx", ".xlsm"} {
		if strings.HasSuffix(strings.ToLower(name), ext) {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}
