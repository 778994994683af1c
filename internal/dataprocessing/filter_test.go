package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bkpreport/pkg/contracts/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datedReport() domain.CellManagerReport {
	return AggregateCellManager("COMHP81", domain.SessionParseResult{Records: []domain.SessionRecord{
		session("FS_a", 1024, "100%", at(2024, 3, 1, 0)),
		session("FS_b", 512, "0%", at(2024, 3, 10, 12)),
		session("FS_a", 256, "100%", at(2024, 3, 20, 23)),
	}})
}

func TestFilterByDateRangeFullRangeIsIdentity(t *testing.T) {
	report := datedReport()

	bounds, ok := SessionDateBounds(report)
	require.True(t, ok)

	filtered := FilterByDateRange(report, bounds.Start, bounds.End)
	assert.Equal(t, report, filtered)
}

func TestFilterByDateRangeEmpty(t *testing.T) {
	filtered := FilterByDateRange(datedReport(), day(2025, 1, 1), day(2025, 1, 31))

	assert.Equal(t, "COMHP81", filtered.CellManager)
	assert.Zero(t, filtered.TotalJobs)
	assert.Zero(t, filtered.TotalPolicies)
	assert.Zero(t, filtered.SizeTB)
	assert.Zero(t, filtered.CompliancePct)
	assert.Empty(t, filtered.Sessions)
}

func TestFilterByDateRangeInclusiveDays(t *testing.T) {
	tests := []struct {
		name     string
		start    time.Time
		end      time.Time
		wantJobs int
	}{
		{"end day covers late sessions", day(2024, 3, 10), day(2024, 3, 20), 2},
		{"start day covers midnight", day(2024, 3, 1), day(2024, 3, 1), 1},
		{"times inside the day are ignored", time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC), time.Date(2024, 3, 10, 1, 0, 0, 0, time.UTC), 1},
		{"gap between sessions", day(2024, 3, 11), day(2024, 3, 19), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filtered := FilterByDateRange(datedReport(), tt.start, tt.end)
			assert.Equal(t, tt.wantJobs, filtered.TotalJobs)
			assert.Len(t, filtered.Sessions, tt.wantJobs)
		})
	}
}

func TestFilterByDateRangeRecomputes(t *testing.T) {
	filtered := FilterByDateRange(datedReport(), day(2024, 3, 10), day(2024, 3, 31))

	expected := AggregateCellManager("COMHP81", domain.SessionParseResult{Records: []domain.SessionRecord{
		session("FS_b", 512, "0%", at(2024, 3, 10, 12)),
		session("FS_a", 256, "100%", at(2024, 3, 20, 23)),
	}})

	assert.Equal(t, expected.TotalPolicies, filtered.TotalPolicies)
	assert.Equal(t, expected.TotalJobs, filtered.TotalJobs)
	assert.Equal(t, expected.SizeTB, filtered.SizeTB)
	assert.Equal(t, expected.CompliancePct, filtered.CompliancePct)
	assert.Equal(t, 50.0, filtered.CompliancePct)
}

func TestFilterByDateRangeDropsUndated(t *testing.T) {
	report := AggregateCellManager("COMHP81", domain.SessionParseResult{Records: []domain.SessionRecord{
		session("FS_a", 1024, "100%", at(2024, 3, 1, 0)),
		session("FS_b", 1024, "100%", nil),
	}})
	require.Equal(t, 2, report.TotalJobs)

	filtered := FilterByDateRange(report, day(1970, 1, 1), day(2100, 1, 1))

	assert.Equal(t, 1, filtered.TotalJobs)
	assert.Equal(t, 1.0, filtered.SizeTB)
	assert.Equal(t, 2, report.TotalJobs, "source report must not change")
}

func TestSessionDateBounds(t *testing.T) {
	other := AggregateCellManager("COMHP83", domain.SessionParseResult{Records: []domain.SessionRecord{
		session("x", 1, "100%", at(2024, 2, 28, 5)),
		session("y", 1, "100%", nil),
	}})

	bounds, ok := SessionDateBounds(datedReport(), other)
	require.True(t, ok)
	assert.Equal(t, day(2024, 2, 28), bounds.Start)
	assert.Equal(t, day(2024, 3, 20), bounds.End)

	_, ok = SessionDateBounds(AggregateCellManager("empty"))
	assert.False(t, ok)
}

func TestDefaultWindow(t *testing.T) {
	tests := []struct {
		name   string
		bounds domain.DateRange
		days   int
		want   domain.DateRange
	}{
		{
			name:   "long history",
			bounds: domain.DateRange{Start: day(2024, 1, 1), End: day(2024, 6, 30)},
			days:   30,
			want:   domain.DateRange{Start: day(2024, 5, 31), End: day(2024, 6, 30)},
		},
		{
			name:   "clamped to first day",
			bounds: domain.DateRange{Start: day(2024, 6, 20), End: day(2024, 6, 30)},
			days:   30,
			want:   domain.DateRange{Start: day(2024, 6, 20), End: day(2024, 6, 30)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultWindow(tt.bounds, tt.days))
		})
	}
}
