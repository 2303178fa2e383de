package crm

import (
	"time"

	"salespulse-api/internal/domain"
)

// Sentinel values used when the raw record is missing relationships.
const (
	UnknownCompany = "Unknown Company"
	UnknownOwner   = "Unknown Owner"
)

// stageTable maps CRM stage labels onto the canonical six-value set.
var stageTable = map[string]domain.DealStage{
	"Prospecting":          domain.StageProspecting,
	"Qualification":        domain.StageQualification,
	"Needs Analysis":       domain.StageQualification,
	"Value Proposition":    domain.StageProposal,
	"Id. Decision Makers":  domain.StageProposal,
	"Perception Analysis":  domain.StageProposal,
	"Proposal/Price Quote": domain.StageProposal,
	"Negotiation/Review":   domain.StageNegotiation,
	"Closed Won":           domain.StageClosedWon,
	"Closed Lost":          domain.StageClosedLost,
}

// MapStage resolves a raw CRM stage label. Labels absent from the
// table map to prospecting with ok=false so callers can count or log
// the coercion; the default itself is not an error.
func MapStage(label string) (domain.DealStage, bool) {
	if stage, ok := stageTable[label]; ok {
		return stage, true
	}
	return domain.StageProspecting, false
}

// OpportunityToDeal maps one raw opportunity record to the normalized
// Deal representation. Pure and total: no I/O, no side effects, every
// input produces a valid Deal.
func OpportunityToDeal(o Opportunity) domain.Deal {
	stage, _ := MapStage(o.StageName)

	company := UnknownCompany
	if o.Account != nil && o.Account.Name != "" {
		company = o.Account.Name
	}

	owner := UnknownOwner
	ownerID := ""
	if o.Owner != nil {
		if o.Owner.Name != "" {
			owner = o.Owner.Name
		}
		ownerID = o.Owner.Email
	}

	return domain.Deal{
		ID:          o.ID,
		Title:       o.Name,
		Company:     company,
		Value:       o.Amount,
		Stage:       stage,
		Probability: o.Probability,
		CloseDate:   parseDate(o.CloseDate),
		Owner:       owner,
		OwnerID:     ownerID,
		CreatedAt:   parseTimestamp(o.CreatedDate),
		UpdatedAt:   parseTimestamp(o.LastModifiedDate),
	}
}

// OpportunitiesToDeals maps a record batch, returning the deals plus
// the number of stage labels that fell back to the default mapping.
func OpportunitiesToDeals(records []Opportunity) ([]domain.Deal, int) {
	deals := make([]domain.Deal, 0, len(records))
	unmapped := 0
	for _, o := range records {
		if _, ok := MapStage(o.StageName); !ok {
			unmapped++
		}
		deals = append(deals, OpportunityToDeal(o))
	}
	return deals, unmapped
}

// UserToTeamMember maps a raw user record to the team view shape.
func UserToTeamMember(u User) domain.TeamMember {
	return domain.TeamMember{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Title: u.Title,
	}
}

func parseDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.000-0700"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
