package domain

import (
	"time"
)

// DefaultSuccess is the success value of a session whose export carries no success column.
const DefaultSuccess = "0%"

// SessionRecord represents one row of a Data Protector backup session export.
// Records are created once by the session parser and never modified afterwards.
type SessionRecord struct {
	SessionType   string     `json:"session_type"`
	Specification string     `json:"specification"`
	Status        string     `json:"status"`
	Mode          string     `json:"mode"`
	StartTime     string     `json:"start_time"`
	StartDatetime *time.Time `json:"start_datetime,omitempty"` // nil when StartTime could not be parsed
	EndTime       string     `json:"end_time"`
	Duration      string     `json:"duration"`
	GBWritten     float64    `json:"gb_written" validate:"min=0"`
	Errors        int        `json:"errors" validate:"min=0"`
	Warnings      int        `json:"warnings" validate:"min=0"`
	FailedDA      int        `json:"failed_da" validate:"min=0"`
	CompletedDA   int        `json:"completed_da" validate:"min=0"`
	Objects       int        `json:"objects" validate:"min=0"`
	Success       string     `json:"success"`
	SessionID     string     `json:"session_id"`
}

// Dated reports whether the record has a parsed start instant.
func (s SessionRecord) Dated() bool {
	return s.StartDatetime != nil
}

// SessionParseResult is the outcome of parsing one session export file.
// A file without a recognizable header yields an empty result, not an error.
type SessionParseResult struct {
	Source      string          `json:"source,omitempty"`
	HeaderFound bool            `json:"header_found"`
	Records     []SessionRecord `json:"records"`
	SkippedRows int             `json:"skipped_rows"` // data rows with fewer than the minimum field count
}

// CellManagerReport aggregates the sessions of one Cell Manager.
// It is rebuilt from scratch whenever its session set changes.
type CellManagerReport struct {
	CellManager   string          `json:"cell_manager"`
	TotalPolicies int             `json:"total_policies" validate:"min=0"`
	TotalJobs     int             `json:"total_jobs" validate:"min=0"`
	SizeTB        float64         `json:"size_tb" validate:"min=0"`
	CompliancePct float64         `json:"compliance_pct" validate:"min=0,max=100"`
	Sessions      []SessionRecord `json:"sessions,omitempty"`
}

// CellManagerSummaryRow is one line of the multi Cell Manager overview table.
type CellManagerSummaryRow struct {
	Platform      string  `json:"platform"`
	TotalPolicies int     `json:"total_policies"`
	TotalJobs     int     `json:"total_jobs"`
	SizeTB        float64 `json:"size_tb"`
	CompliancePct float64 `json:"compliance_pct"`
}

// CellManagerOverview holds the per Cell Manager rows and the job-weighted total row.
type CellManagerOverview struct {
	Rows  []CellManagerSummaryRow `json:"rows"`
	Total CellManagerSummaryRow   `json:"total"`
}

// DateRange is an inclusive calendar-day interval.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
