// Package exporter renders report aggregates as tables and writes them out.
//
// Tables (CellManagerTable, ScheduleTable, SessionTable) are shared by every
// output. CSVWriter writes them with a UTF-8 BOM so spreadsheet tools detect the
// encoding, WriteWorkbook places each table on its own XLSX sheet, and the
// format helpers provide the percentage and size strings plus the four-tier
// color rating used by the CLI and the API.
//
// Example usage:
//
//	exp := exporter.NewReportExporter(paths, logger)
//	files, err := exp.ExportTables("2024-03",
//		exporter.CellManagerTable(overview),
//		exporter.ScheduleTable(schedule))
package exporter
