package exporter

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPct(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{98, "98.00%"},
		{66.666, "66.67%"},
		{0, "0.00%"},
		{100, "100.00%"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatPct(tt.in))
	}
}

func TestFormatTB(t *testing.T) {
	assert.Equal(t, "1.25 TB", FormatTB(1.25))
	assert.Equal(t, "0.00 TB", FormatTB(0))
	assert.Equal(t, "1024.50 TB", FormatTB(1024.5))
}

func TestComplianceTier(t *testing.T) {
	tests := []struct {
		pct   float64
		tier  Tier
		color string
	}{
		{100, TierGood, "#00e676"},
		{98, TierGood, "#00e676"},
		{97.99, TierWarning, "#ffab00"},
		{95, TierWarning, "#ffab00"},
		{94.99, TierLow, "#ff6d00"},
		{90, TierLow, "#ff6d00"},
		{89.99, TierCritical, "#ff1744"},
		{0, TierCritical, "#ff1744"},
	}

	for _, tt := range tests {
		tier := ComplianceTier(tt.pct)
		assert.Equal(t, tt.tier, tier, "pct %v", tt.pct)
		assert.Equal(t, tt.color, tier.Color())
	}
}

func TestKPITier(t *testing.T) {
	tests := []struct {
		pct  float64
		tier Tier
	}{
		{97, TierGood},
		{96.99, TierWarning},
		{90, TierWarning},
		{89.99, TierLow},
		{80, TierLow},
		{79.99, TierCritical},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.tier, KPITier(tt.pct), "pct %v", tt.pct)
	}
}

func TestTierJSON(t *testing.T) {
	data, err := json.Marshal(map[string]Tier{"tier": TierLow})
	require.NoError(t, err)
	assert.JSONEq(t, `{"tier":"low"}`, string(data))

	assert.Equal(t, "unknown", Tier(9).String())
	assert.Equal(t, "#ff1744", Tier(-1).Color())
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "13.40", formatFloat(13.4))
	assert.Equal(t, "-0.50", formatFloat(-0.5))
	assert.Equal(t, "42", formatInt(42))
}
