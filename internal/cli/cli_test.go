package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bkpreport/internal/exporter"
	"bkpreport/internal/shared/testutil"
)

var comhp81Sessions = []testutil.SessionFixture{
	{Specification: "FS_a", StartTime: "03/01/2024 10:00:00 PM", GBWritten: "1024", Success: "100%"},
	{Specification: "FS_b", StartTime: "03/20/2024 09:00:00 AM", GBWritten: "512", Success: "0%"},
	{Specification: "FS_a", StartTime: "03/25/2024 09:00:00 AM", GBWritten: "512", Success: "100%"},
}

// execute runs the command tree with args and returns its output
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSessionsCommand(t *testing.T) {
	dir := t.TempDir()
	export := testutil.WriteSessionExport(t, dir, "sessions.csv", comhp81Sessions...)

	t.Run("all sessions", func(t *testing.T) {
		csvPath := filepath.Join(dir, "out", "comhp81.csv")
		out, err := execute(t, "sessions", "--cell-manager", "COMHP81", "--csv", csvPath, export)
		require.NoError(t, err, out)

		assert.Contains(t, out, "COMHP81")
		assert.Contains(t, out, "66.67")
		assert.Contains(t, out, "2.00")
		assert.Contains(t, out, "no date filter")
		assert.NotContains(t, out, "TOTAL")

		data, err := os.ReadFile(csvPath)
		require.NoError(t, err)
		assert.Equal(t, "\ufeffPlataforma,Cant. Políticas,Jobs,Size TB,% Cumplimiento\nCOMHP81,2,3,2.00,66.67\n", string(data))
	})

	t.Run("date window", func(t *testing.T) {
		out, err := execute(t, "sessions", "-c", "COMHP81", "--from", "2024-03-15", "--to", "2024-03-31", export)
		require.NoError(t, err, out)

		assert.Contains(t, out, "Sessions from 2024-03-15 to 2024-03-31")
		assert.Contains(t, out, "50.00")
	})
}

func TestSessionsCommandErrors(t *testing.T) {
	export := testutil.WriteSessionExport(t, t.TempDir(), "sessions.txt", comhp81Sessions...)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "unknown cell manager", args: []string{"sessions", "-c", "NOPE", export}, wantErr: "unknown cell manager"},
		{name: "missing cell manager", args: []string{"sessions", export}, wantErr: "cell-manager"},
		{name: "no files", args: []string{"sessions", "-c", "COMHP81"}, wantErr: "requires at least 1 arg"},
		{name: "bad date", args: []string{"sessions", "-c", "COMHP81", "--from", "01/03/2024", export}, wantErr: "invalid --from"},
		{name: "inverted dates", args: []string{"sessions", "-c", "COMHP81", "--from", "2024-03-31", "--to", "2024-03-01", export}, wantErr: "is after"},
		{name: "missing file", args: []string{"sessions", "-c", "COMHP81", filepath.Join(t.TempDir(), "nope.csv")}, wantErr: "not readable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestScheduleCommand(t *testing.T) {
	dir := t.TempDir()
	workbook := filepath.Join(dir, "Marzo 2024.xlsx")
	testutil.WriteScheduleWorkbook(t, workbook,
		testutil.ScheduleSheet("COMHP81", "Completed", "Failed", "Relaunched"),
		testutil.ScheduleSheet("ACRONIS", "Failed"),
	)

	csvPath := filepath.Join(dir, "schedule.csv")
	out, err := execute(t, "schedule", "--csv", csvPath, workbook)
	require.NoError(t, err, out)

	assert.Contains(t, out, "Schedule Marzo 2024")
	assert.Contains(t, out, "COMHP81")
	assert.Contains(t, out, "66.67")
	assert.NotContains(t, out, "ACRONIS")
	assert.FileExists(t, csvPath)

	out, err = execute(t, "schedule", "--period", "March", workbook)
	require.NoError(t, err)
	assert.Contains(t, out, "Schedule March")

	_, err = execute(t, "schedule", filepath.Join(dir, "missing.xlsx"))
	assert.Error(t, err)
}

func TestReportCommand(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteSessionExport(t, filepath.Join(dir, "COMHP81"), "a.csv", comhp81Sessions...)
	testutil.WriteSessionExport(t, filepath.Join(dir, "COMHP83"), "b.txt",
		testutil.SessionFixture{Specification: "DB", StartTime: "03/10/2024 01:00:00 AM", GBWritten: "1024", Success: "100%"})
	workbook := filepath.Join(dir, "Marzo 2024.xlsx")
	testutil.WriteScheduleWorkbook(t, workbook, testutil.ScheduleSheet("COMHP81", "Completed", "Completed"))

	outDir := filepath.Join(dir, "exports")
	xlsxPath := filepath.Join(dir, "summary.xlsx")
	out, err := execute(t, "report", "--dir", dir, "--schedule", workbook, "--csv-dir", outDir, "--xlsx", xlsxPath)
	require.NoError(t, err, out)

	assert.Contains(t, out, "Cell Managers")
	assert.Contains(t, out, "COMHP83")
	assert.Contains(t, out, "TOTAL")
	assert.Contains(t, out, "Schedule Marzo 2024")
	assert.NotContains(t, out, "LNXCELLMNGVEN")

	for _, name := range []string{"cell-managers.csv", "sessions.csv", "schedule.csv"} {
		assert.FileExists(t, filepath.Join(outDir, name))
	}
	assert.FileExists(t, xlsxPath)

	sessions, err := os.ReadFile(filepath.Join(outDir, "sessions.csv"))
	require.NoError(t, err)
	assert.Equal(t, 5, strings.Count(string(sessions), "\n"))
}

func TestReportCommandEmptyDir(t *testing.T) {
	_, err := execute(t, "report", "--dir", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no session exports")
}

func TestReportCommandFindsWorkbook(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteSessionExport(t, filepath.Join(dir, "COMHP81"), "a.csv", comhp81Sessions...)
	testutil.WriteScheduleWorkbook(t, filepath.Join(dir, "Abril 2024.xlsx"),
		testutil.ScheduleSheet("COMHP81", "Completed", "Failed"))

	out, err := execute(t, "report", "--dir", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Schedule Abril 2024")
}

func TestDisplayRows(t *testing.T) {
	tbl := exporter.Table{
		Headers: []string{"Plataforma", "Cant. Políticas", "Jobs", "Size TB", "% Cumplimiento"},
		Rows: [][]string{
			{"COMHP81", "2", "3", "2.00", "66.67"},
			{"TOTAL", "2", "3", "2.00", "n/a"},
		},
	}

	rows := displayRows(tbl, complianceColumn())
	assert.Equal(t, []string{"COMHP81", "2", "3", "2.00 TB", "66.67%"}, rows[0])
	assert.Equal(t, "n/a", rows[1][4])
	assert.Equal(t, "66.67", tbl.Rows[0][4], "source rows are not modified")

	assert.Equal(t, tbl.Rows, displayRows(tbl, nil))
}
