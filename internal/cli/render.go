package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"bkpreport/internal/dataprocessing"
	"bkpreport/internal/exporter"
	"bkpreport/pkg/contracts/domain"
)

var (
	colorDim = lipgloss.AdaptiveColor{Light: "242", Dark: "240"}

	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	noteStyle   = lipgloss.NewStyle().Foreground(colorDim).Italic(true)
)

// tieredColumn names the percentage column colored by tier. sizeIndex is a
// column shown in TB, or -1.
type tieredColumn struct {
	index     int
	sizeIndex int
	tier      func(float64) exporter.Tier
}

// displayRows formats the tier column as a percentage and the size column in TB
func displayRows(t exporter.Table, tiered *tieredColumn) [][]string {
	if tiered == nil {
		return t.Rows
	}
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = append([]string(nil), row...)
		if tiered.index < len(row) {
			if v, err := strconv.ParseFloat(row[tiered.index], 64); err == nil {
				rows[i][tiered.index] = exporter.FormatPct(v)
			}
		}
		if tiered.sizeIndex >= 0 && tiered.sizeIndex < len(row) {
			if v, err := strconv.ParseFloat(row[tiered.sizeIndex], 64); err == nil {
				rows[i][tiered.sizeIndex] = exporter.FormatTB(v)
			}
		}
	}
	return rows
}

// renderTable draws t with the tier column colored and the TOTAL row bold
func renderTable(t exporter.Table, tiered *tieredColumn) string {
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(t.Headers...).
		Rows(displayRows(t, tiered)...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}

			style := cellStyle
			if col < len(t.Numeric) && t.Numeric[col] {
				style = style.Align(lipgloss.Right)
			}
			if row < 0 || row >= len(t.Rows) {
				return style
			}
			if t.Rows[row][0] == dataprocessing.TotalLabel {
				style = style.Bold(true)
			}
			if tiered != nil && col == tiered.index && col < len(t.Rows[row]) {
				if v, err := strconv.ParseFloat(t.Rows[row][col], 64); err == nil {
					style = style.Foreground(lipgloss.Color(tiered.tier(v).Color()))
				}
			}
			return style
		})

	return tbl.String()
}

func complianceColumn() *tieredColumn {
	return &tieredColumn{index: 4, sizeIndex: 3, tier: exporter.ComplianceTier}
}

func kpiColumn() *tieredColumn {
	return &tieredColumn{index: 7, sizeIndex: -1, tier: exporter.KPITier}
}

// printTable writes a titled table
func printTable(out io.Writer, t exporter.Table, tiered *tieredColumn) {
	fmt.Fprintln(out, titleStyle.Render(t.Title))
	fmt.Fprintln(out, renderTable(t, tiered))
}

// printWindow notes the date window applied to the sessions
func printWindow(out io.Writer, window *domain.DateRange) {
	if window == nil {
		fmt.Fprintln(out, noteStyle.Render("All sessions (no date filter)"))
		return
	}
	fmt.Fprintln(out, noteStyle.Render(fmt.Sprintf("Sessions from %s to %s",
		window.Start.Format("2006-01-02"), window.End.Format("2006-01-02"))))
}

// printSkipped reports exports that were read without a header or with short rows
func printSkipped(out io.Writer, cellManager string, stats dataprocessing.ParseStats) {
	var notes []string
	if stats.Headerless > 0 {
		notes = append(notes, fmt.Sprintf("%d file(s) without a session header", stats.Headerless))
	}
	if stats.Skipped > 0 {
		notes = append(notes, fmt.Sprintf("%d short row(s) skipped", stats.Skipped))
	}
	if len(notes) == 0 {
		return
	}
	fmt.Fprintln(out, noteStyle.Render(cellManager+": "+strings.Join(notes, ", ")))
}
