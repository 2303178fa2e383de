package analytics

import (
	"salespulse-api/internal/domain"
)

// Revenue derives the dashboard overview scalars from a deal
// collection. The collection is expected to combine the trailing-window
// closed fetch with the open pipeline fetch; the time window itself is
// decided by the fetch, not here.
//
// Plain floating-point summation throughout; formatting happens only at
// presentation boundaries.
func Revenue(deals []domain.Deal) domain.RevenueMetrics {
	var m domain.RevenueMetrics
	for _, d := range deals {
		switch {
		case d.Stage == domain.StageClosedWon:
			m.TotalRevenue += d.Value
			m.DealsWon++
		case d.Open():
			m.PipelineValue += d.Value
		}
	}
	if m.DealsWon > 0 {
		m.AverageDealSize = m.TotalRevenue / float64(m.DealsWon)
	}
	return m
}
