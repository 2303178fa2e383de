package analytics

import (
	"salespulse-api/internal/domain"
)

// stageConfig fixes the display order and nominal win probability per
// stage. Closed-lost deals are excluded from the pipeline view.
var stageConfig = []struct {
	stage       domain.DealStage
	name        string
	probability int
}{
	{domain.StageProspecting, "Prospecting", 10},
	{domain.StageQualification, "Qualification", 25},
	{domain.StageProposal, "Proposal", 50},
	{domain.StageNegotiation, "Negotiation", 75},
	{domain.StageClosedWon, "Closed Won", 100},
}

// PipelineBreakdown aggregates deal count and value per stage in fixed
// funnel order.
func PipelineBreakdown(deals []domain.Deal) []domain.StageSummary {
	summaries := make([]domain.StageSummary, 0, len(stageConfig))
	for _, cfg := range stageConfig {
		summary := domain.StageSummary{
			Stage:       cfg.stage,
			Name:        cfg.name,
			Probability: cfg.probability,
		}
		for _, d := range deals {
			if d.Stage == cfg.stage {
				summary.Deals++
				summary.Value += d.Value
			}
		}
		summaries = append(summaries, summary)
	}
	return summaries
}
