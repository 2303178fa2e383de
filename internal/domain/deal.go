package domain

import (
	"time"
)

// DealStage is the canonical sales funnel stage. CRM stage labels are
// mapped onto this closed set by the crm package.
type DealStage string

const (
	StageProspecting   DealStage = "prospecting"
	StageQualification DealStage = "qualification"
	StageProposal      DealStage = "proposal"
	StageNegotiation   DealStage = "negotiation"
	StageClosedWon     DealStage = "closed-won"
	StageClosedLost    DealStage = "closed-lost"
)

func (s DealStage) IsValid() bool {
	switch s {
	case StageProspecting, StageQualification, StageProposal,
		StageNegotiation, StageClosedWon, StageClosedLost:
		return true
	}
	return false
}

// Closed reports whether the stage is terminal (won or lost).
func (s DealStage) Closed() bool {
	return s == StageClosedWon || s == StageClosedLost
}

// Deal is the normalized internal representation of a CRM opportunity.
// Deals are constructed fresh on every fetch cycle and never mutated.
type Deal struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Value       float64   `json:"value"`
	Stage       DealStage `json:"stage"`
	Probability int       `json:"probability"`
	CloseDate   time.Time `json:"closeDate"`
	Owner       string    `json:"owner"`
	OwnerID     string    `json:"ownerId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Open reports whether the deal is still in the pipeline.
func (d Deal) Open() bool {
	return !d.Stage.Closed()
}

// LastActivity returns the most recent activity timestamp known for the
// deal. Falls back to the creation timestamp when the deal was never
// modified after creation.
func (d Deal) LastActivity() time.Time {
	if !d.UpdatedAt.IsZero() {
		return d.UpdatedAt
	}
	return d.CreatedAt
}

// TeamMember is a normalized CRM user, used by the team performance view.
type TeamMember struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Title string `json:"title"`
}
