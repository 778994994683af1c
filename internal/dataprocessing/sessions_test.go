package dataprocessing

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bkpreport/pkg/contracts/domain"
)

// sessionRow builds a tab separated export row with n fields, filling the
// given offsets.
func sessionRow(n int, values map[int]string) string {
	fields := make([]string, n)
	for i, v := range values {
		if i < n {
			fields[i] = v
		}
	}
	return strings.Join(fields, "\t")
}

func fullRow(spec, start, gb, success string) string {
	return sessionRow(23, map[int]string{
		colSessionType:   "Backup",
		colSpecification: spec,
		colStatus:        "Completed",
		colMode:          "full",
		colStartTime:     start,
		colEndTime:       "later",
		colDuration:      "0:10",
		colGBWritten:     gb,
		colErrors:        "2",
		colWarnings:      "1",
		colFailedDA:      "0",
		colCompletedDA:   "4",
		colObjects:       "5",
		colSuccess:       success,
		colSessionID:     "2024/03/15-1",
	})
}

const exportPreamble = "# Data Protector session report\n# Generated: today\n"

func TestParseSessionLinesHeaderDetection(t *testing.T) {
	tests := []struct {
		name        string
		header      string
		wantHeader  bool
		wantRecords int
	}{
		{"hash marker", "# Session Type\tSpecification", true, 1},
		{"no marker", "Session Type\tSpecification", true, 1},
		{"several markers and spaces", "  ## \tSession Type\tSpecification", true, 1},
		{"different header", "# Sessions\tSpecification", false, 0},
		{"token not at start", "# The Session Type\tSpecification", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := []string{"# preamble", tt.header, fullRow("FS_daily", "03/15/2024 10:30:00 PM", "10", "100%")}
			result := ParseSessionLines(lines)

			assert.Equal(t, tt.wantHeader, result.HeaderFound)
			assert.Len(t, result.Records, tt.wantRecords)
		})
	}
}

func TestParseSessionLinesNoHeader(t *testing.T) {
	result := ParseSessionLines([]string{"random", fullRow("FS", "", "1", "100%")})

	assert.False(t, result.HeaderFound)
	assert.Empty(t, result.Records)
	assert.Zero(t, result.SkippedRows)
}

func TestParseSessionLinesFieldCounts(t *testing.T) {
	lines := []string{
		"# Session Type\tSpecification",
		sessionRow(10, map[int]string{0: "Backup", 1: "too-short"}),
		"",
		"   ",
		sessionRow(11, map[int]string{0: "Backup", 1: "minimal", 4: "03/15/2024 10:30:00 PM", 10: "2.5"}),
		fullRow("complete", "03/16/2024 01:00:00 AM", "7.5", "100%"),
	}

	result := ParseSessionLines(lines)

	require.Len(t, result.Records, 2)
	assert.Equal(t, 1, result.SkippedRows)

	minimal := result.Records[0]
	assert.Equal(t, "minimal", minimal.Specification)
	assert.Equal(t, 2.5, minimal.GBWritten)
	assert.Equal(t, domain.DefaultSuccess, minimal.Success)
	assert.Zero(t, minimal.Errors)
	assert.Empty(t, minimal.SessionID)

	complete := result.Records[1]
	assert.Equal(t, "Backup", complete.SessionType)
	assert.Equal(t, "Completed", complete.Status)
	assert.Equal(t, "full", complete.Mode)
	assert.Equal(t, "later", complete.EndTime)
	assert.Equal(t, "0:10", complete.Duration)
	assert.Equal(t, 7.5, complete.GBWritten)
	assert.Equal(t, 2, complete.Errors)
	assert.Equal(t, 1, complete.Warnings)
	assert.Equal(t, 4, complete.CompletedDA)
	assert.Equal(t, 5, complete.Objects)
	assert.Equal(t, "100%", complete.Success)
	assert.Equal(t, "2024/03/15-1", complete.SessionID)
}

func TestParseSessionLinesEmptyEdgeCells(t *testing.T) {
	lines := []string{
		"# Session Type\tSpecification",
		sessionRow(11, map[int]string{0: "Backup", 1: "no-size", 2: "Completed", 4: "03/15/2024 10:30:00 PM"}),
		sessionRow(11, map[int]string{1: "no-type", 2: "Failed", 3: "full", 10: "3"}) + "\r",
	}

	result := ParseSessionLines(lines)

	require.Len(t, result.Records, 2)
	assert.Zero(t, result.SkippedRows)

	noSize := result.Records[0]
	assert.Equal(t, "no-size", noSize.Specification)
	assert.Zero(t, noSize.GBWritten)

	noType := result.Records[1]
	assert.Empty(t, noType.SessionType)
	assert.Equal(t, "no-type", noType.Specification)
	assert.Equal(t, "Failed", noType.Status)
	assert.Equal(t, "full", noType.Mode)
	assert.Equal(t, 3.0, noType.GBWritten)
}

func TestParseSessionLinesPreservesOrder(t *testing.T) {
	lines := []string{"# Session Type"}
	for _, spec := range []string{"c", "a", "b"} {
		lines = append(lines, fullRow(spec, "", "1", "100%"))
	}

	result := ParseSessionLines(lines)

	require.Len(t, result.Records, 3)
	assert.Equal(t, "c", result.Records[0].Specification)
	assert.Equal(t, "a", result.Records[1].Specification)
	assert.Equal(t, "b", result.Records[2].Specification)
}

func TestParseSessionLinesTolerantNumbers(t *testing.T) {
	row := sessionRow(23, map[int]string{
		colSpecification: "spec",
		colGBWritten:     "n/a",
		colErrors:        "1.5",
		colFailedDA:      "-3",
		colCompletedDA:   "abc",
		colSuccess:       "  ",
	})

	result := ParseSessionLines([]string{"# Session Type", row})

	require.Len(t, result.Records, 1)
	r := result.Records[0]
	assert.Zero(t, r.GBWritten)
	assert.Zero(t, r.Errors)
	assert.Zero(t, r.FailedDA)
	assert.Zero(t, r.CompletedDA)
	assert.Equal(t, domain.DefaultSuccess, r.Success)
}

func TestParseStartTime(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *time.Time
	}{
		{
			name: "month first 12 hour",
			raw:  "03/15/2024 10:30:00 PM",
			want: ptrTime(time.Date(2024, 3, 15, 22, 30, 0, 0, time.UTC)),
		},
		{
			name: "day first 24 hour",
			raw:  "25/12/2024 13:00:00",
			want: ptrTime(time.Date(2024, 12, 25, 13, 0, 0, 0, time.UTC)),
		},
		{
			name: "iso",
			raw:  "2024-01-15 08:00:00",
			want: ptrTime(time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)),
		},
		{name: "empty", raw: "   ", want: nil},
		{name: "garbage", raw: "not a date", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseStartTime(tt.raw)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "got %s", got)
		})
	}
}

func TestUndatedRecordKeepsRawStartTime(t *testing.T) {
	result := ParseSessionLines([]string{"# Session Type", fullRow("spec", "yesterday-ish", "1", "100%")})

	require.Len(t, result.Records, 1)
	assert.Equal(t, "yesterday-ish", result.Records[0].StartTime)
	assert.Nil(t, result.Records[0].StartDatetime)
	assert.False(t, result.Records[0].Dated())
}

func TestParseSessionFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "COMHP81_week.txt")
	content := exportPreamble + "# Session Type\tSpecification\r\n" +
		fullRow("FS_a", "03/15/2024 10:30:00 PM", "512", "100%") + "\r\n" +
		fullRow("FS_b", "03/16/2024 10:30:00 PM", "512", "0%") + "\r\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	result, err := ParseSessionFile(path)
	require.NoError(t, err)

	assert.Equal(t, path, result.Source)
	assert.True(t, result.HeaderFound)
	require.Len(t, result.Records, 2)
	assert.Equal(t, "2024/03/15-1", result.Records[1].SessionID)
}

func TestParseSessionFileMissing(t *testing.T) {
	_, err := ParseSessionFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestParseSessionReaderInvalidBytes(t *testing.T) {
	content := "# Session Type\n" + fullRow("FS_\xff\xfe_bad", "", "1", "100%") + "\n"
	result, err := ParseSessionReader(strings.NewReader(content))
	require.NoError(t, err)

	require.Len(t, result.Records, 1)
	assert.Contains(t, result.Records[0].Specification, "\uFFFD")
	assert.True(t, strings.HasPrefix(result.Records[0].Specification, "FS_"))
}

func TestParseSessionReaderUTF8BOM(t *testing.T) {
	content := "\xef\xbb\xbf# Session Type\n" + fullRow("FS", "", "1", "100%") + "\n"

	result, err := ParseSessionReader(strings.NewReader(content))
	require.NoError(t, err)

	assert.True(t, result.HeaderFound)
	assert.Len(t, result.Records, 1)
}

func ptrTime(t time.Time) *time.Time {
	return &t
}
