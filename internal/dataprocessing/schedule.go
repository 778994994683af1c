package dataprocessing

import (
	"strings"

	"bkpreport/pkg/contracts/domain"
)

// defaultStatusColumn is used when no header names a status column (column D).
const defaultStatusColumn = 3

// scheduleColumns holds the column indexes discovered from a sheet header.
// A negative index means the column is absent.
type scheduleColumns struct {
	status   int
	relaunch int
	caseID   int
}

func discoverScheduleColumns(header []string) scheduleColumns {
	cols := scheduleColumns{status: -1, relaunch: -1, caseID: -1}

	// Later matches override earlier ones.
	for i, cell := range header {
		h := strings.ToUpper(strings.TrimSpace(cell))
		if h == "" {
			continue
		}
		if strings.Contains(h, "STATUS") || strings.Contains(h, "ESTADO") {
			cols.status = i
		}
		if strings.Contains(h, "RELANZADO") {
			cols.relaunch = i
		}
		if strings.Contains(h, "CASO") || strings.Contains(h, "TICKET") || strings.Contains(h, "ITSM") {
			cols.caseID = i
		}
	}

	if cols.status < 0 {
		cols.status = defaultStatusColumn
	}
	return cols
}

// rowClass is the outcome of classifying a single schedule row.
type rowClass struct {
	executed   bool
	failed     bool
	relaunched bool
	hasCase    bool
	managed    bool
}

// ClassifySheet counts the categories of one worksheet. rows[0] is the header;
// data rows with an empty first cell are skipped without ending the scan.
func ClassifySheet(rows [][]string) domain.SheetCounts {
	var counts domain.SheetCounts
	if len(rows) == 0 {
		return counts
	}

	cols := discoverScheduleColumns(rows[0])

	for _, row := range rows[1:] {
		if len(row) == 0 || row[0] == "" {
			continue
		}

		c := classifyRow(row, cols)

		counts.Programados++
		if c.executed {
			counts.Ejecutados++
		}
		if c.failed {
			counts.Fallidos++
		}
		if c.relaunched {
			counts.Relanzados++
		}
		if c.hasCase {
			counts.Q++
		}
		if c.managed {
			counts.Gestionados++
		}
	}

	return counts
}

func classifyRow(row []string, cols scheduleColumns) rowClass {
	status := strings.ToLower(strings.TrimSpace(cell(row, cols.status)))

	var c rowClass
	c.failed = status == "failed" || status == "aborted"

	hasRelaunchID := false
	if cols.relaunch >= 0 {
		switch strings.TrimSpace(cell(row, cols.relaunch)) {
		case "", "None", "nan":
		default:
			hasRelaunchID = true
		}
	}

	c.relaunched = strings.Contains(status, "relaunched") || hasRelaunchID
	c.executed = status != "" && !c.failed

	if cols.caseID >= 0 {
		c.hasCase = IsITSMTicket(cell(row, cols.caseID))
	} else {
		for _, v := range row {
			if IsITSMTicket(v) {
				c.hasCase = true
				break
			}
		}
	}

	c.managed = (c.failed && c.hasCase) || (c.relaunched && (c.hasCase || hasRelaunchID))
	return c
}

// cell returns row[idx], or "" when the row is shorter.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
