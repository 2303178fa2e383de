package insight

import (
	"fmt"
	"time"

	"salespulse-api/internal/analytics"
	"salespulse-api/internal/domain"
)

// RuleConfig holds the fixed business thresholds the rule strategy
// evaluates against. Defaults are the product's long-standing
// constants; they are injectable so deployments can tune them.
type RuleConfig struct {
	StalledAfter    time.Duration // negotiation-stage inactivity before a deal is at risk
	RecentWinWindow time.Duration // how far back a win still counts as an upsell lead
	StaleAfter      time.Duration // open-deal inactivity before a follow-up reminder
	HighValueFloor  float64       // open-deal value that counts as high-value pipeline
	QuarterlyQuota  float64
}

// DefaultRuleConfig returns the standard thresholds.
func DefaultRuleConfig() RuleConfig {
	return RuleConfig{
		StalledAfter:    30 * 24 * time.Hour,
		RecentWinWindow: 90 * 24 * time.Hour,
		StaleAfter:      7 * 24 * time.Hour,
		HighValueFloor:  50000,
		QuarterlyQuota:  1000000,
	}
}

// RuleStrategy is the fixed-threshold insight generator. Rules are
// evaluated in a fixed order, each contributes at most one insight,
// and the result is truncated to the first four non-empty findings
// without re-sorting. A simplicity trade-off, not an optimality
// guarantee.
type RuleStrategy struct {
	cfg RuleConfig
}

func NewRuleStrategy(cfg RuleConfig) *RuleStrategy {
	return &RuleStrategy{cfg: cfg}
}

func (s *RuleStrategy) Generate(deals []domain.Deal, now time.Time) []domain.Insight {
	if len(deals) == 0 {
		return nil
	}

	var insights []domain.Insight
	for _, rule := range []func([]domain.Deal, time.Time) *domain.Insight{
		s.stalledDeal,
		s.recentWin,
		s.quotaAchievement,
		s.staleFollowUp,
		s.highValuePipeline,
	} {
		if ins := rule(deals, now); ins != nil {
			insights = append(insights, *ins)
		}
	}
	return capInsights(insights)
}

// stalledDeal flags the highest-value negotiation-stage deal with no
// activity for longer than the stall threshold.
func (s *RuleStrategy) stalledDeal(deals []domain.Deal, now time.Time) *domain.Insight {
	var top *domain.Deal
	for i, d := range deals {
		if d.Stage != domain.StageNegotiation {
			continue
		}
		if now.Sub(d.LastActivity()) <= s.cfg.StalledAfter {
			continue
		}
		if top == nil || d.Value > top.Value {
			top = &deals[i]
		}
	}
	if top == nil {
		return nil
	}
	return &domain.Insight{
		ID:       "risk-1",
		Category: domain.InsightRisk,
		Title:    "Deal at Risk",
		Description: fmt.Sprintf("%s (%s) worth %s has been stalled. Consider escalating to close.",
			top.Title, top.Company, analytics.FormatMoney(top.Value)),
		Priority: domain.PriorityHigh,
		Action:   "Review Deal",
	}
}

// recentWin flags the highest-value deal won within the upsell window.
func (s *RuleStrategy) recentWin(deals []domain.Deal, now time.Time) *domain.Insight {
	var top *domain.Deal
	for i, d := range deals {
		if d.Stage != domain.StageClosedWon {
			continue
		}
		if now.Sub(d.CloseDate) >= s.cfg.RecentWinWindow {
			continue
		}
		if top == nil || d.Value > top.Value {
			top = &deals[i]
		}
	}
	if top == nil {
		return nil
	}
	return &domain.Insight{
		ID:       "opportunity-1",
		Category: domain.InsightOpportunity,
		Title:    "Upsell Opportunity",
		Description: fmt.Sprintf("%s recently closed for %s. High potential for additional services.",
			top.Company, analytics.FormatMoney(top.Value)),
		Priority: domain.PriorityMedium,
		Action:   "Create Proposal",
	}
}

// quotaAchievement always emits; priority scales inversely with
// attainment.
func (s *RuleStrategy) quotaAchievement(deals []domain.Deal, _ time.Time) *domain.Insight {
	var closedWon float64
	for _, d := range deals {
		if d.Stage == domain.StageClosedWon {
			closedWon += d.Value
		}
	}

	attainment := 0.0
	if s.cfg.QuarterlyQuota > 0 {
		attainment = closedWon / s.cfg.QuarterlyQuota * 100
	}

	advice := "On track to exceed quota this quarter!"
	if attainment < 80 {
		advice = "Focus on high-probability deals to hit target."
	}

	priority := domain.PriorityLow
	switch {
	case attainment < 60:
		priority = domain.PriorityHigh
	case attainment < 80:
		priority = domain.PriorityMedium
	}

	return &domain.Insight{
		ID:          "forecast-1",
		Category:    domain.InsightForecast,
		Title:       "Quota Achievement",
		Description: fmt.Sprintf("You're %.0f%% to quota. %s", attainment, advice),
		Priority:    priority,
		Action:      "View Deals",
	}
}

// staleFollowUp emits a count of open deals with no recent activity.
func (s *RuleStrategy) staleFollowUp(deals []domain.Deal, now time.Time) *domain.Insight {
	stale := 0
	for _, d := range deals {
		if d.Open() && now.Sub(d.LastActivity()) > s.cfg.StaleAfter {
			stale++
		}
	}
	if stale == 0 {
		return nil
	}
	days := int(s.cfg.StaleAfter / (24 * time.Hour))
	return &domain.Insight{
		ID:       "timing-1",
		Category: domain.InsightTiming,
		Title:    "Follow-up Reminder",
		Description: fmt.Sprintf("%d prospects haven't been contacted in %d+ days. Schedule follow-ups to maintain momentum.",
			stale, days),
		Priority: domain.PriorityLow,
		Action:   "Schedule Calls",
	}
}

// highValuePipeline emits a count-and-sum of open deals above the
// high-value floor.
func (s *RuleStrategy) highValuePipeline(deals []domain.Deal, _ time.Time) *domain.Insight {
	count := 0
	var total float64
	for _, d := range deals {
		if d.Open() && d.Value > s.cfg.HighValueFloor {
			count++
			total += d.Value
		}
	}
	if count == 0 {
		return nil
	}
	return &domain.Insight{
		ID:       "value-1",
		Category: domain.InsightOpportunity,
		Title:    "High-Value Pipeline",
		Description: fmt.Sprintf("%d deals worth %s in pipeline. Focus on these for maximum impact.",
			count, analytics.FormatMoney(total)),
		Priority: domain.PriorityMedium,
		Action:   "Prioritize",
	}
}
