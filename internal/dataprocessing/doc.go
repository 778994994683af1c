// Package dataprocessing turns backup session exports and schedule workbooks
// into the compliance and KPI aggregates shown in reports.
//
// # Session exports
//
// A session export is tab separated text with a free-form preamble. The line
// starting with "Session Type" (after any leading '#' markers) is the header and
// every later line with at least eleven fields becomes a domain.SessionRecord:
//
//	result, err := dataprocessing.ParseSessionFile("COMHP81/week12.txt")
//	report := dataprocessing.AggregateCellManager("COMHP81", result)
//
// Start times go through an ordered chain of date parsers; records whose start
// time cannot be parsed stay in the unfiltered totals but never match a date
// range (see FilterByDateRange).
//
// # Schedule workbooks
//
// ParseScheduleFile reads the sheets listed by config.ScheduleSheets, classifies
// each row with ClassifySheet and derives the operation, relaunch and managed
// failure KPIs per platform and over the summed totals.
//
// # Error Handling
//
// Only unreadable input is reported as an error. Missing headers, short rows,
// non-numeric cells and unknown sheets degrade to empty or zero values so one bad
// file never stops a batch.
package dataprocessing
