package config

// Application constants
const (
	AppName     = "bkpreport"
	AppVersion  = "1.2.0"
	ServiceName = "bkpreport"

	// DefaultWindowDays is the length of the dashboard's initial date window.
	DefaultWindowDays = 30

	// Compliance thresholds (percent) for the four-tier categorization.
	ComplianceGoodThreshold    = 98.0
	ComplianceWarningThreshold = 95.0
	ComplianceLowThreshold     = 90.0

	// KPI thresholds (percent) for the four-tier categorization.
	KPIGoodThreshold    = 97.0
	KPIWarningThreshold = 90.0
	KPILowThreshold     = 80.0
)

// ScheduleSheet maps a workbook sheet name to the platform shown in reports.
type ScheduleSheet struct {
	Sheet    string
	Platform string
}

var defaultCellManagers = [...]string{
	"COMHP81",
	"COMHP83",
	"LNXCELLMNGVEN",
	"LNXCELLMNGPTA",
	"LNXCELLMNGTRI",
}

// Declaration order is the report row order.
var scheduleSheets = [...]ScheduleSheet{
	{Sheet: "COMHP81", Platform: "COMHP81"},
	{Sheet: "COMHP83", Platform: "COMHP83"},
	{Sheet: "LNXCELLMNGVEN", Platform: "LNXCELLMNGVEN"},
	{Sheet: "LNXCELLMNGTRI", Platform: "LNXCELLMNGTRI"},
	{Sheet: "LNXCELLMNGPTA", Platform: "LNXCELLMNGPTA"},
	{Sheet: "NETBACKUP", Platform: "NETBACKUP"},
	{Sheet: "COMMVAULT_NBUIT", Platform: "COMMVAULT_NBUIT"},
	{Sheet: "COMMVAULT_OCI", Platform: "COMMVAULT_OCI"},
}

var excludedSheets = [...]string{"ACRONIS"}

// DefaultCellManagers returns a fresh copy of the known Cell Manager names.
func DefaultCellManagers() []string {
	out := make([]string, len(defaultCellManagers))
	copy(out, defaultCellManagers[:])
	return out
}

// ScheduleSheets returns a fresh copy of the ordered sheet-to-platform mapping.
func ScheduleSheets() []ScheduleSheet {
	out := make([]ScheduleSheet, len(scheduleSheets))
	copy(out, scheduleSheets[:])
	return out
}

// IsExcludedSheet reports whether a sheet must never be processed.
func IsExcludedSheet(name string) bool {
	for _, s := range excludedSheets {
		if s == name {
			return true
		}
	}
	return false
}
