package testutil

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestSessionExport(t *testing.T) {
	doc := SessionExport(
		SessionFixture{Specification: "FS_daily", StartTime: "03/01/2024 10:00:00 PM", GBWritten: "12.5", Success: "100%"},
		SessionFixture{Specification: "DB_weekly"},
	)

	lines := strings.Split(strings.TrimRight(doc, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, SessionHeader, lines[2])

	fields := strings.Split(lines[3], "\t")
	require.Len(t, fields, sessionFieldCount)
	assert.Equal(t, "FS_daily", fields[1])
	assert.Equal(t, "12.5", fields[10])
	assert.Equal(t, "100%", fields[20])
	assert.Equal(t, "2024/03/01-2", strings.Split(lines[4], "\t")[22])
}

func TestScheduleWorkbookBytes(t *testing.T) {
	data := ScheduleWorkbookBytes(t,
		ScheduleSheet("COMHP81", "Completed", "Relaunched"),
		ScheduleSheet("NETBACKUP", "Failed"),
	)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"COMHP81", "NETBACKUP"}, f.GetSheetList())

	rows, err := f.GetRows("COMHP81")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Status", rows[0][3])
	assert.Equal(t, "R-2", rows[2][4])
}

func TestWriteScheduleWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Schedule Abril 2024.xlsx")
	WriteScheduleWorkbook(t, path, ScheduleSheet("COMHP83", "Completed"))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"COMHP83"}, f.GetSheetList())
}
