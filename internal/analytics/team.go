package analytics

import (
	"sort"

	"salespulse-api/internal/domain"
)

// TeamPerformance derives per-owner performance from the deal
// collection. Deals are attributed to members by owner email first,
// falling back to the owner display name when the CRM did not return
// an email on the opportunity.
func TeamPerformance(deals []domain.Deal, members []domain.TeamMember) domain.TeamSummary {
	stats := make([]domain.TeamMemberStats, len(members))
	byEmail := make(map[string]int, len(members))
	byName := make(map[string]int, len(members))
	for i, m := range members {
		stats[i] = domain.TeamMemberStats{
			ID:    m.ID,
			Name:  m.Name,
			Email: m.Email,
			Title: m.Title,
		}
		byEmail[m.Email] = i
		byName[m.Name] = i
	}

	lostByMember := make([]int, len(members))
	var summary domain.TeamSummary
	for _, d := range deals {
		if d.Stage == domain.StageClosedWon {
			summary.TotalRevenue += d.Value
			summary.DealsWon++
		}
		if d.Stage != domain.StageClosedLost {
			summary.TotalDeals++
		}

		idx, ok := byEmail[d.OwnerID]
		if !ok {
			idx, ok = byName[d.Owner]
		}
		if !ok {
			continue
		}
		switch {
		case d.Stage == domain.StageClosedWon:
			stats[idx].Revenue += d.Value
			stats[idx].DealsWon++
		case d.Stage == domain.StageClosedLost:
			lostByMember[idx]++
		default:
			stats[idx].PipelineValue += d.Value
			stats[idx].OpenDeals++
		}
	}

	for i := range stats {
		closed := stats[i].DealsWon + lostByMember[i]
		if closed > 0 {
			stats[i].WinRate = float64(stats[i].DealsWon) / float64(closed) * 100
		}
	}
	if closed := countClosed(deals); closed > 0 {
		summary.WinRate = float64(summary.DealsWon) / float64(closed) * 100
	}

	// Highest producers first.
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Revenue+stats[i].PipelineValue > stats[j].Revenue+stats[j].PipelineValue
	})
	summary.Members = stats
	return summary
}

func countClosed(deals []domain.Deal) int {
	n := 0
	for _, d := range deals {
		if d.Stage.Closed() {
			n++
		}
	}
	return n
}
