package dataprocessing

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"bkpreport/pkg/contracts/domain"
)

// ParseStats summarizes a batch of session files.
type ParseStats struct {
	Files      int `json:"files"`
	Headerless int `json:"headerless"`
	Records    int `json:"records"`
	Skipped    int `json:"skipped_rows"`
}

// AggregateCellManager concatenates the records of the given parse results in
// order and computes the Cell Manager totals. It has no side effects.
func AggregateCellManager(cellManager string, results ...domain.SessionParseResult) domain.CellManagerReport {
	var sessions []domain.SessionRecord
	for _, r := range results {
		sessions = append(sessions, r.Records...)
	}
	return buildCellManagerReport(cellManager, sessions)
}

// ParseCellManagerFiles parses every file of one Cell Manager and aggregates
// them. Files without a header contribute nothing; an unreadable file aborts.
func ParseCellManagerFiles(cellManager string, filePaths []string, logger *slog.Logger) (domain.CellManagerReport, ParseStats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "session_parser"), slog.String("cell_manager", cellManager))

	var stats ParseStats
	results := make([]domain.SessionParseResult, 0, len(filePaths))

	for _, path := range filePaths {
		result, err := ParseSessionFile(path)
		if err != nil {
			return domain.CellManagerReport{}, stats, fmt.Errorf("cell manager %s: %w", cellManager, err)
		}

		stats.Files++
		stats.Records += len(result.Records)
		stats.Skipped += result.SkippedRows

		if !result.HeaderFound {
			stats.Headerless++
			logger.Warn("Session file has no header", slog.String("file", path))
		} else {
			logger.Debug("Session file parsed",
				slog.String("file", path),
				slog.Int("records", len(result.Records)),
				slog.Int("skipped_rows", result.SkippedRows))
		}

		results = append(results, result)
	}

	return AggregateCellManager(cellManager, results...), stats, nil
}

// buildCellManagerReport is shared by aggregation and date filtering so both
// derive totals from the same formulas.
func buildCellManagerReport(cellManager string, sessions []domain.SessionRecord) domain.CellManagerReport {
	policies := make(map[string]struct{})
	var totalGB float64
	compliant := 0

	for _, s := range sessions {
		policies[s.Specification] = struct{}{}
		totalGB += s.GBWritten
		if IsCompliant(s.Success) {
			compliant++
		}
	}

	report := domain.CellManagerReport{
		CellManager:   cellManager,
		TotalPolicies: len(policies),
		TotalJobs:     len(sessions),
		SizeTB:        round2(totalGB / 1024),
		Sessions:      sessions,
	}
	if report.TotalJobs > 0 {
		report.CompliancePct = round2(float64(compliant) / float64(report.TotalJobs) * 100)
	}
	return report
}

// IsCompliant reports whether a session success value counts toward compliance.
// Blank values and the literal "0%" do not.
func IsCompliant(success string) bool {
	s := strings.TrimSpace(success)
	return s != "" && s != domain.DefaultSuccess
}

// round2 rounds half away from zero to two decimals.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
