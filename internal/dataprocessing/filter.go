package dataprocessing

import (
	"time"

	"bkpreport/pkg/contracts/domain"
)

// FilterByDateRange returns a new report holding only the sessions whose start
// instant lies within the calendar days [start, end], both inclusive. Undated
// sessions are always dropped. Totals are rebuilt from the kept sessions.
func FilterByDateRange(report domain.CellManagerReport, start, end time.Time) domain.CellManagerReport {
	from := startOfDay(start)
	to := startOfDay(end).AddDate(0, 0, 1).Add(-time.Nanosecond)

	var kept []domain.SessionRecord
	for _, s := range report.Sessions {
		if !s.Dated() {
			continue
		}
		if s.StartDatetime.Before(from) || s.StartDatetime.After(to) {
			continue
		}
		kept = append(kept, s)
	}

	return buildCellManagerReport(report.CellManager, kept)
}

// SessionDateBounds returns the first and last calendar day carrying a dated
// session across all reports. ok is false when no session is dated.
func SessionDateBounds(reports ...domain.CellManagerReport) (bounds domain.DateRange, ok bool) {
	for _, r := range reports {
		for _, s := range r.Sessions {
			if !s.Dated() {
				continue
			}
			day := startOfDay(*s.StartDatetime)
			if !ok || day.Before(bounds.Start) {
				bounds.Start = day
			}
			if !ok || day.After(bounds.End) {
				bounds.End = day
			}
			ok = true
		}
	}
	return bounds, ok
}

// DefaultWindow returns the last days of bounds, never starting before bounds.Start.
func DefaultWindow(bounds domain.DateRange, days int) domain.DateRange {
	start := bounds.End.AddDate(0, 0, -days)
	if start.Before(bounds.Start) {
		start = bounds.Start
	}
	return domain.DateRange{Start: start, End: bounds.End}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
