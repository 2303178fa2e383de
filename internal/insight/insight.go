// Package insight generates ranked, human-readable findings from a
// deal collection. Two interchangeable strategies exist: a fixed-
// threshold rule engine and a statistics-driven variant that judges
// deals relative to the dataset's own distribution. Both honor the
// same contract: at most domain.MaxInsights findings, empty input
// yields an empty result.
package insight

import (
	"time"

	"salespulse-api/internal/domain"
)

// Strategy produces up to domain.MaxInsights insights from a deal
// collection. Implementations are pure: no I/O, no retained state
// between calls.
type Strategy interface {
	Generate(deals []domain.Deal, now time.Time) []domain.Insight
}

// cap truncates to the contract limit without re-sorting: rule order
// is the ranking.
func capInsights(insights []domain.Insight) []domain.Insight {
	if len(insights) > domain.MaxInsights {
		return insights[:domain.MaxInsights]
	}
	return insights
}
