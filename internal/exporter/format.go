package exporter

import (
	"fmt"
	"strconv"

	"bkpreport/internal/config"
)

// Tier is a four level rating used to color compliance and KPI values.
type Tier int

const (
	TierGood Tier = iota
	TierWarning
	TierLow
	TierCritical
)

var tierColors = [...]string{
	TierGood:     "#00e676",
	TierWarning:  "#ffab00",
	TierLow:      "#ff6d00",
	TierCritical: "#ff1744",
}

var tierNames = [...]string{
	TierGood:     "good",
	TierWarning:  "warning",
	TierLow:      "low",
	TierCritical: "critical",
}

// Color returns the hex color of the tier.
func (t Tier) Color() string {
	if t < TierGood || t > TierCritical {
		return tierColors[TierCritical]
	}
	return tierColors[t]
}

func (t Tier) String() string {
	if t < TierGood || t > TierCritical {
		return "unknown"
	}
	return tierNames[t]
}

// MarshalText encodes the tier by name in JSON payloads.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func tierFor(v, good, warning, low float64) Tier {
	switch {
	case v >= good:
		return TierGood
	case v >= warning:
		return TierWarning
	case v >= low:
		return TierLow
	default:
		return TierCritical
	}
}

// ComplianceTier rates a compliance percentage (98/95/90).
func ComplianceTier(pct float64) Tier {
	return tierFor(pct, config.ComplianceGoodThreshold, config.ComplianceWarningThreshold, config.ComplianceLowThreshold)
}

// KPITier rates a schedule KPI percentage (97/90/80).
func KPITier(pct float64) Tier {
	return tierFor(pct, config.KPIGoodThreshold, config.KPIWarningThreshold, config.KPILowThreshold)
}

// FormatPct renders a percentage with two decimals, e.g. "98.50%".
func FormatPct(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

// FormatTB renders a size in terabytes with two decimals, e.g. "1.25 TB".
func FormatTB(v float64) string {
	return fmt.Sprintf("%.2f TB", v)
}

// formatFloat formats a float64 value for CSV output with exactly 2 decimal places
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

func formatInt(i int) string {
	return strconv.Itoa(i)
}
