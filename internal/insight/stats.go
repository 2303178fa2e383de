package insight

import (
	"fmt"
	"math"
	"time"

	"salespulse-api/internal/analytics"
	"salespulse-api/internal/domain"
)

// StatConfig parameterizes the statistics-driven strategy. Thresholds
// are relative to the dataset's own distribution; confidence values
// are fixed per-rule constants, not statistically derived.
type StatConfig struct {
	AboveAverageFactor   float64       // multiple of the mean that makes a deal "high value"
	ClosingSoonWindow    time.Duration // close-date proximity that makes low probability risky
	LowProbabilityFloor  int
	ProspectingShareBar  float64 // minimum healthy share of pipeline in prospecting
	HealthyWinRate       float64 // percent
	ConcentrationCeiling float64 // maximum healthy single-owner share of pipeline value
}

// DefaultStatConfig returns the standard relative thresholds.
func DefaultStatConfig() StatConfig {
	return StatConfig{
		AboveAverageFactor:   1.5,
		ClosingSoonWindow:    30 * 24 * time.Hour,
		LowProbabilityFloor:  75,
		ProspectingShareBar:  0.3,
		HealthyWinRate:       25,
		ConcentrationCeiling: 0.4,
	}
}

// StatStrategy judges deals against the collection's own distribution
// and attaches a confidence score per finding instead of a coarse
// priority ordering.
type StatStrategy struct {
	cfg StatConfig
}

func NewStatStrategy(cfg StatConfig) *StatStrategy {
	return &StatStrategy{cfg: cfg}
}

func (s *StatStrategy) Generate(deals []domain.Deal, now time.Time) []domain.Insight {
	if len(deals) == 0 {
		return nil
	}

	var insights []domain.Insight
	appendIf := func(ins *domain.Insight) {
		if ins != nil {
			insights = append(insights, *ins)
		}
	}

	appendIf(s.aboveAverageDeals(deals))
	appendIf(s.slippingDeals(deals, now))
	appendIf(s.pipelineHealth(deals))
	appendIf(s.winRateTrend(deals))
	appendIf(s.ownerConcentration(deals))

	return capInsights(insights)
}

func (s *StatStrategy) aboveAverageDeals(deals []domain.Deal) *domain.Insight {
	var total float64
	for _, d := range deals {
		total += d.Value
	}
	average := total / float64(len(deals))

	count := 0
	var sum float64
	for _, d := range deals {
		if d.Value > average*s.cfg.AboveAverageFactor {
			count++
			sum += d.Value
		}
	}
	if count == 0 {
		return nil
	}
	return &domain.Insight{
		ID:       "high-value-deals",
		Category: domain.InsightOpportunity,
		Title:    "High-Value Opportunities Identified",
		Description: fmt.Sprintf("%d deals worth %s are above average deal size. Focus sales efforts here.",
			count, analytics.FormatMoney(sum)),
		Priority:   domain.PriorityHigh,
		Confidence: 92,
	}
}

func (s *StatStrategy) slippingDeals(deals []domain.Deal, now time.Time) *domain.Insight {
	count := 0
	var sum float64
	for _, d := range deals {
		if !d.Open() {
			continue
		}
		daysToClose := d.CloseDate.Sub(now)
		if daysToClose < s.cfg.ClosingSoonWindow && d.Probability < s.cfg.LowProbabilityFloor {
			count++
			sum += d.Value
		}
	}
	if count == 0 {
		return nil
	}
	days := int(s.cfg.ClosingSoonWindow / (24 * time.Hour))
	return &domain.Insight{
		ID:       "at-risk-deals",
		Category: domain.InsightRisk,
		Title:    "Deals at Risk of Slipping",
		Description: fmt.Sprintf("%d deals worth %s are closing within %d days but have low probability. Immediate action needed.",
			count, analytics.FormatMoney(sum), days),
		Priority:   domain.PriorityHigh,
		Confidence: 88,
	}
}

func (s *StatStrategy) pipelineHealth(deals []domain.Deal) *domain.Insight {
	var prospecting, total float64
	for _, d := range deals {
		total += d.Value
		if d.Stage == domain.StageProspecting {
			prospecting += d.Value
		}
	}
	if total <= 0 {
		return nil
	}
	share := prospecting / total
	if share >= s.cfg.ProspectingShareBar {
		return nil
	}
	return &domain.Insight{
		ID:       "pipeline-health",
		Category: domain.InsightRecommendation,
		Title:    "Pipeline Generation Needed",
		Description: fmt.Sprintf("Only %.0f%% of pipeline is in prospecting stage. Increase lead generation activities to maintain healthy pipeline.",
			math.Round(share*100)),
		Priority:   domain.PriorityMedium,
		Confidence: 85,
	}
}

func (s *StatStrategy) winRateTrend(deals []domain.Deal) *domain.Insight {
	won, closed := 0, 0
	for _, d := range deals {
		if d.Stage.Closed() {
			closed++
			if d.Stage == domain.StageClosedWon {
				won++
			}
		}
	}
	if closed == 0 {
		return nil
	}
	winRate := float64(won) / float64(closed) * 100
	if winRate == 0 {
		return nil
	}

	description := fmt.Sprintf("Win rate of %.0f%% is below industry average. Review qualification and closing processes.", winRate)
	priority := domain.PriorityMedium
	if winRate >= s.cfg.HealthyWinRate {
		description = fmt.Sprintf("Strong win rate of %.0f%% indicates effective sales process. Continue current strategies.", winRate)
		priority = domain.PriorityLow
	}
	return &domain.Insight{
		ID:          "win-rate",
		Category:    domain.InsightTrend,
		Title:       fmt.Sprintf("Win Rate Analysis: %.0f%%", winRate),
		Description: description,
		Priority:    priority,
		Confidence:  90,
	}
}

func (s *StatStrategy) ownerConcentration(deals []domain.Deal) *domain.Insight {
	totals := make(map[string]float64)
	var total float64
	for _, d := range deals {
		totals[d.Owner] += d.Value
		total += d.Value
	}
	if total <= 0 {
		return nil
	}

	topOwner := ""
	var topValue float64
	for owner, value := range totals {
		if value > topValue || (value == topValue && owner < topOwner) {
			topOwner = owner
			topValue = value
		}
	}

	share := topValue / total
	if share <= s.cfg.ConcentrationCeiling {
		return nil
	}
	return &domain.Insight{
		ID:       "deal-concentration",
		Category: domain.InsightRisk,
		Title:    "High Deal Concentration Risk",
		Description: fmt.Sprintf("%s owns %.0f%% of total pipeline value. Consider redistributing deals to reduce risk.",
			topOwner, math.Round(share*100)),
		Priority:   domain.PriorityMedium,
		Confidence: 87,
	}
}
