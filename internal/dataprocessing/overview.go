package dataprocessing

import (
	"bkpreport/pkg/contracts/domain"
)

// TotalLabel names the summary row of aggregated tables.
const TotalLabel = "TOTAL"

// SummarizeCellManagers builds the overview table in the order given. The
// total compliance is weighted by each Cell Manager's job count.
func SummarizeCellManagers(reports []domain.CellManagerReport) domain.CellManagerOverview {
	overview := domain.CellManagerOverview{
		Rows:  make([]domain.CellManagerSummaryRow, 0, len(reports)),
		Total: domain.CellManagerSummaryRow{Platform: TotalLabel},
	}

	var sizeTB, weighted float64
	for _, r := range reports {
		overview.Rows = append(overview.Rows, domain.CellManagerSummaryRow{
			Platform:      r.CellManager,
			TotalPolicies: r.TotalPolicies,
			TotalJobs:     r.TotalJobs,
			SizeTB:        r.SizeTB,
			CompliancePct: r.CompliancePct,
		})
		overview.Total.TotalPolicies += r.TotalPolicies
		overview.Total.TotalJobs += r.TotalJobs
		sizeTB += r.SizeTB
		weighted += r.CompliancePct * float64(r.TotalJobs)
	}

	overview.Total.SizeTB = round2(sizeTB)
	if overview.Total.TotalJobs > 0 {
		overview.Total.CompliancePct = round2(weighted / float64(overview.Total.TotalJobs))
	}
	return overview
}
