package testutil

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// sessionFieldCount matches a full Data Protector session export row.
const sessionFieldCount = 23

// SessionHeader is the column header line of a session export.
const SessionHeader = "Session Type\tSpecification\tStatus\tMode\tStart Time\tStart Time UTC\tEnd Time\tEnd Time UTC\tQueuing\tDuration\tGB Written\tMedia\tErrors\tWarnings\tPending DA\tRunning DA\tFailed DA\tCompleted DA\tObjects\tFiles\tSuccess\tOwner\tSession ID"

// SessionFixture is one exported backup session. Empty fields stay empty in
// the exported row.
type SessionFixture struct {
	Specification string
	Status        string
	StartTime     string
	GBWritten     string
	Success       string
}

func (s SessionFixture) row(n int) string {
	fields := make([]string, sessionFieldCount)
	fields[0] = "Backup"
	fields[1] = s.Specification
	fields[2] = s.Status
	fields[3] = "full"
	fields[4] = s.StartTime
	fields[9] = "0:15"
	fields[10] = s.GBWritten
	fields[12] = "0"
	fields[13] = "0"
	fields[20] = s.Success
	fields[22] = fmt.Sprintf("2024/03/01-%d", n+1)
	return strings.Join(fields, "\t")
}

// SessionExport renders a complete export document with preamble and header.
func SessionExport(sessions ...SessionFixture) string {
	var b strings.Builder
	b.WriteString("# Sessions report\n# Generated by omnirpt\n")
	b.WriteString(SessionHeader)
	b.WriteString("\n")
	for i, s := range sessions {
		b.WriteString(s.row(i))
		b.WriteString("\n")
	}
	return b.String()
}

// WriteSessionExport writes SessionExport output to dir/name and returns the path.
func WriteSessionExport(t *testing.T, dir, name string, sessions ...SessionFixture) string {
	t.Helper()

	require.NoError(t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(SessionExport(sessions...)), 0644))
	return path
}

// SheetFixture is one worksheet of a schedule workbook.
type SheetFixture struct {
	Name string
	Rows [][]interface{}
}

// ScheduleSheet builds a sheet with the usual schedule header and one row per
// status. Relaunched statuses get a relaunch id.
func ScheduleSheet(name string, statuses ...string) SheetFixture {
	rows := [][]interface{}{{"Job", "Servidor", "Hora", "Status", "Job ID Relanzado", "Caso ITSM"}}
	for i, status := range statuses {
		relaunch := ""
		if strings.Contains(strings.ToLower(status), "relaunch") {
			relaunch = fmt.Sprintf("R-%d", i+1)
		}
		rows = append(rows, []interface{}{fmt.Sprintf("job-%d", i+1), "srv01", "22:00", status, relaunch, ""})
	}
	return SheetFixture{Name: name, Rows: rows}
}

func buildWorkbook(t *testing.T, sheets []SheetFixture) *excelize.File {
	t.Helper()

	f := excelize.NewFile()
	for i, s := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", s.Name))
		} else {
			_, err := f.NewSheet(s.Name)
			require.NoError(t, err)
		}
		for r, row := range s.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			values := row
			require.NoError(t, f.SetSheetRow(s.Name, cell, &values))
		}
	}
	return f
}

// WriteScheduleWorkbook saves the sheets as an .xlsx file at path.
func WriteScheduleWorkbook(t *testing.T, path string, sheets ...SheetFixture) {
	t.Helper()

	f := buildWorkbook(t, sheets)
	defer f.Close()
	require.NoError(t, f.SaveAs(path))
}

// ScheduleWorkbookBytes returns the sheets as an in-memory .xlsx document.
func ScheduleWorkbookBytes(t *testing.T, sheets ...SheetFixture) []byte {
	t.Helper()

	f := buildWorkbook(t, sheets)
	defer f.Close()

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}
