package analytics

import (
	"fmt"
	"time"

	"salespulse-api/internal/domain"
)

// Probability floors for the overlapping confidence tiers.
const (
	committedProbability = 75
	bestCaseProbability  = 50
)

// MonthlyForecast buckets deals into the trailing `months` calendar
// months by close date and computes the four confidence-tier sums per
// bucket. The sums deliberately overlap: a committed deal also counts
// toward best case and pipeline.
func MonthlyForecast(deals []domain.Deal, now time.Time, months int) []domain.ForecastPoint {
	if months <= 0 {
		return nil
	}

	// Anchor on the first of the month so AddDate never normalizes a
	// day-of-month that the target month lacks.
	anchor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	points := make([]domain.ForecastPoint, 0, months)
	for i := months - 1; i >= 0; i-- {
		bucket := anchor.AddDate(0, -i, 0)
		year, month := bucket.Year(), bucket.Month()

		point := domain.ForecastPoint{Period: bucket.Format("Jan")}
		for _, d := range deals {
			if d.CloseDate.Year() != year || d.CloseDate.Month() != month {
				continue
			}
			point.Pipeline += d.Value
			if d.Probability >= committedProbability {
				point.Committed += d.Value
			}
			if d.Probability >= bestCaseProbability {
				point.BestCase += d.Value
			}
			if d.Stage == domain.StageClosedWon {
				point.Closed += d.Value
			}
		}
		points = append(points, point)
	}
	return points
}

// Hand-authored history for the two quarters preceding the computed
// one. The live data window rarely reaches that far back, so the
// outlook series keeps fixed demo values there, mirroring how the
// dashboard presents it.
var quarterHistory = []domain.QuarterForecast{
	{Committed: 2400000, BestCase: 3200000, Pipeline: 4800000, Actual: 2100000},
	{Committed: 2800000, BestCase: 3600000, Pipeline: 5200000, Actual: 2650000},
}

// QuarterOutlook summarizes the current quarter against quota and
// builds a four-quarter series: two fixed history quarters, the
// computed current quarter, and a projected next quarter.
func QuarterOutlook(deals []domain.Deal, now time.Time, quota float64) domain.QuarterOutlook {
	var out domain.QuarterOutlook
	for _, d := range deals {
		if d.Stage == domain.StageClosedWon {
			out.ClosedWon += d.Value
		}
		if d.Stage == domain.StageClosedLost {
			continue
		}
		out.Pipeline += d.Value
		if d.Probability >= committedProbability {
			out.Committed += d.Value
		}
		if d.Probability >= bestCaseProbability {
			out.BestCase += d.Value
		}
	}

	if quota > 0 {
		out.QuotaAttainment = out.ClosedWon / quota * 100
	}
	out.Severity = AttainmentSeverity(out.QuotaAttainment)

	current := quarterOf(now)
	quarters := make([]domain.QuarterForecast, 0, 4)
	for i, h := range quarterHistory {
		h.Period = quarterLabel(current - 2 + i)
		quarters = append(quarters, h)
	}
	quarters = append(quarters, domain.QuarterForecast{
		Period:    quarterLabel(current),
		Committed: out.Committed,
		BestCase:  out.BestCase,
		Pipeline:  out.Pipeline,
		Actual:    out.ClosedWon,
	})
	quarters = append(quarters, domain.QuarterForecast{
		Period:    quarterLabel(current + 1),
		Committed: out.Committed * 1.1,
		BestCase:  out.BestCase * 1.1,
		Pipeline:  out.Pipeline * 1.05,
	})
	out.Quarters = quarters
	return out
}

// AttainmentSeverity maps an attainment percentage onto the tri-level
// display severity: below 60% high, below 80% medium, otherwise low.
func AttainmentSeverity(attainment float64) domain.AttainmentSeverity {
	switch {
	case attainment < 60:
		return domain.SeverityHigh
	case attainment < 80:
		return domain.SeverityMedium
	default:
		return domain.SeverityLow
	}
}

// quarterOf returns a monotonically increasing quarter ordinal so
// labels stay correct across year boundaries.
func quarterOf(t time.Time) int {
	return t.Year()*4 + (int(t.Month())-1)/3
}

func quarterLabel(ordinal int) string {
	return fmt.Sprintf("Q%d %d", ordinal%4+1, ordinal/4)
}
