package exporter

import (
	"bkpreport/internal/dataprocessing"
	"bkpreport/pkg/contracts/domain"
)

// Table names accepted by exports.
const (
	TableCellManagers = "cell-managers"
	TableSchedule     = "schedule"
	TableSessions     = "sessions"
)

// Table is a rendered report table shared by the CSV, XLSX and console outputs.
type Table struct {
	Name    string
	Title   string
	Headers []string
	Rows    [][]string
	Numeric []bool // per column; numeric cells are written as numbers to workbooks
}

// CellManagerTable renders the Cell Manager overview with its TOTAL row.
func CellManagerTable(overview domain.CellManagerOverview) Table {
	t := Table{
		Name:    TableCellManagers,
		Title:   "Cell Managers",
		Headers: []string{"Plataforma", "Cant. Políticas", "Jobs", "Size TB", "% Cumplimiento"},
		Numeric: []bool{false, true, true, true, true},
	}
	row := func(r domain.CellManagerSummaryRow) []string {
		return []string{
			r.Platform,
			formatInt(r.TotalPolicies),
			formatInt(r.TotalJobs),
			formatFloat(r.SizeTB),
			formatFloat(r.CompliancePct),
		}
	}
	for _, r := range overview.Rows {
		t.Rows = append(t.Rows, row(r))
	}
	t.Rows = append(t.Rows, row(overview.Total))
	return t
}

// ScheduleTable renders the schedule report with its TOTAL row.
func ScheduleTable(report domain.ScheduleReport) Table {
	t := Table{
		Name:  TableSchedule,
		Title: "Schedule",
		Headers: []string{
			"Resumen", "Ejecutados", "Programados", "Relanzados", "Fallidos", "Casos ITSM",
			"Gestionados", "Ind. Efect. Op.", "Relanzamiento", "Gest. Fallidos",
		},
		Numeric: []bool{false, true, true, true, true, true, true, true, true, true},
	}
	for _, r := range report.Rows {
		t.Rows = append(t.Rows, []string{
			r.Platform,
			formatInt(r.Ejecutados),
			formatInt(r.Programados),
			formatInt(r.Relanzados),
			formatInt(r.Fallidos),
			formatInt(r.Q),
			formatInt(r.Gestionados),
			formatFloat(r.KPIOperacion),
			formatFloat(r.PctRelanzamiento),
			formatFloat(r.GestionFallidos),
		})
	}
	tot := report.Totals
	t.Rows = append(t.Rows, []string{
		dataprocessing.TotalLabel,
		formatInt(tot.Ejecutados),
		formatInt(tot.Programados),
		formatInt(tot.Relanzados),
		formatInt(tot.Fallidos),
		formatInt(tot.Q),
		formatInt(tot.Gestionados),
		formatFloat(tot.KPIOperacionGeneral),
		formatFloat(tot.PctRelanzadosGeneral),
		formatFloat(tot.GestionFallidosGeneral),
	})
	return t
}

var sessionHeaders = []string{
	"Cell Manager", "Session Type", "Specification", "Status", "Mode", "Start Time", "End Time",
	"Duration", "GB Written", "Errors", "Warnings", "Failed DA", "Completed DA", "Objects",
	"Success", "Session ID",
}

func sessionRow(cellManager string, s domain.SessionRecord) []string {
	return []string{
		cellManager,
		s.SessionType,
		s.Specification,
		s.Status,
		s.Mode,
		s.StartTime,
		s.EndTime,
		s.Duration,
		formatFloat(s.GBWritten),
		formatInt(s.Errors),
		formatInt(s.Warnings),
		formatInt(s.FailedDA),
		formatInt(s.CompletedDA),
		formatInt(s.Objects),
		s.Success,
		s.SessionID,
	}
}

// SessionTable lists every session of the given reports in report order.
func SessionTable(reports []domain.CellManagerReport) Table {
	t := Table{
		Name:    TableSessions,
		Title:   "Sessions",
		Headers: sessionHeaders,
		Numeric: []bool{
			false, false, false, false, false, false, false,
			false, true, true, true, true, true, true,
			false, false,
		},
	}
	for _, r := range reports {
		for _, s := range r.Sessions {
			t.Rows = append(t.Rows, sessionRow(r.CellManager, s))
		}
	}
	return t
}
