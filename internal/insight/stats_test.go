package insight

import (
	"testing"
	"time"

	"salespulse-api/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var statNow = time.Date(2024, 7, 20, 12, 0, 0, 0, time.UTC)

func TestStatStrategy_EmptyInput(t *testing.T) {
	s := NewStatStrategy(DefaultStatConfig())
	assert.Empty(t, s.Generate(nil, statNow))
}

func TestStatStrategy_AboveAverageDeals(t *testing.T) {
	s := NewStatStrategy(DefaultStatConfig())
	// Average 62500; the 200K deal clears 1.5x that, nothing else does.
	deals := []domain.Deal{
		{Value: 200000, Stage: domain.StageProposal, Probability: 80, CloseDate: statNow.AddDate(0, 3, 0)},
		{Value: 20000, Stage: domain.StageProspecting, Probability: 80, CloseDate: statNow.AddDate(0, 3, 0)},
		{Value: 20000, Stage: domain.StageProspecting, Probability: 80, CloseDate: statNow.AddDate(0, 3, 0)},
		{Value: 10000, Stage: domain.StageProspecting, Probability: 80, CloseDate: statNow.AddDate(0, 3, 0)},
	}

	insights := s.Generate(deals, statNow)

	ins := findInsight(t, insights, "high-value-deals")
	require.NotNil(t, ins)
	assert.Equal(t, domain.PriorityHigh, ins.Priority)
	assert.Equal(t, 92, ins.Confidence)
	assert.Contains(t, ins.Description, "1 deals")
	assert.Contains(t, ins.Description, "$200K")
}

func TestStatStrategy_SlippingDeals(t *testing.T) {
	s := NewStatStrategy(DefaultStatConfig())
	deals := []domain.Deal{
		// Closing in 10 days at 40% probability: slipping.
		{Value: 80000, Stage: domain.StageProposal, Probability: 40, CloseDate: statNow.AddDate(0, 0, 10)},
		// Closing soon but high probability: fine.
		{Value: 80000, Stage: domain.StageNegotiation, Probability: 90, CloseDate: statNow.AddDate(0, 0, 10)},
		// Low probability but far out: fine.
		{Value: 80000, Stage: domain.StageProspecting, Probability: 20, CloseDate: statNow.AddDate(0, 6, 0)},
	}

	insights := s.Generate(deals, statNow)

	ins := findInsight(t, insights, "at-risk-deals")
	require.NotNil(t, ins)
	assert.Equal(t, domain.InsightRisk, ins.Category)
	assert.Equal(t, 88, ins.Confidence)
	assert.Contains(t, ins.Description, "1 deals")
	assert.Contains(t, ins.Description, "within 30 days")
}

func TestStatStrategy_PipelineHealth(t *testing.T) {
	s := NewStatStrategy(DefaultStatConfig())
	// Prospecting is 10% of pipeline value, under the 30% bar.
	deals := []domain.Deal{
		{Value: 10000, Stage: domain.StageProspecting, Probability: 80, CloseDate: statNow.AddDate(0, 3, 0)},
		{Value: 90000, Stage: domain.StageNegotiation, Probability: 80, CloseDate: statNow.AddDate(0, 3, 0)},
	}

	insights := s.Generate(deals, statNow)

	ins := findInsight(t, insights, "pipeline-health")
	require.NotNil(t, ins)
	assert.Equal(t, domain.InsightRecommendation, ins.Category)
	assert.Contains(t, ins.Description, "10%")
}

func TestStatStrategy_PipelineHealth_HealthyShareSilent(t *testing.T) {
	s := NewStatStrategy(DefaultStatConfig())
	deals := []domain.Deal{
		{Value: 50000, Stage: domain.StageProspecting, Probability: 80, CloseDate: statNow.AddDate(0, 3, 0)},
		{Value: 50000, Stage: domain.StageNegotiation, Probability: 80, CloseDate: statNow.AddDate(0, 3, 0)},
	}

	insights := s.Generate(deals, statNow)

	assert.Nil(t, findInsight(t, insights, "pipeline-health"))
}

func TestStatStrategy_WinRateTrend(t *testing.T) {
	s := NewStatStrategy(DefaultStatConfig())

	t.Run("strong", func(t *testing.T) {
		deals := []domain.Deal{
			{Value: 10000, Stage: domain.StageClosedWon},
			{Value: 10000, Stage: domain.StageClosedWon},
			{Value: 10000, Stage: domain.StageClosedLost},
		}

		ins := findInsight(t, s.Generate(deals, statNow), "win-rate")
		require.NotNil(t, ins)
		assert.Equal(t, domain.PriorityLow, ins.Priority)
		assert.Contains(t, ins.Title, "67%")
		assert.Contains(t, ins.Description, "Strong win rate")
	})

	t.Run("below average", func(t *testing.T) {
		deals := []domain.Deal{
			{Value: 10000, Stage: domain.StageClosedWon},
			{Value: 10000, Stage: domain.StageClosedLost},
			{Value: 10000, Stage: domain.StageClosedLost},
			{Value: 10000, Stage: domain.StageClosedLost},
			{Value: 10000, Stage: domain.StageClosedLost},
		}

		ins := findInsight(t, s.Generate(deals, statNow), "win-rate")
		require.NotNil(t, ins)
		assert.Equal(t, domain.PriorityMedium, ins.Priority)
		assert.Contains(t, ins.Description, "below industry average")
	})

	t.Run("no closed deals silent", func(t *testing.T) {
		deals := []domain.Deal{{Value: 10000, Stage: domain.StageProposal, Probability: 80, CloseDate: statNow.AddDate(0, 3, 0)}}
		assert.Nil(t, findInsight(t, s.Generate(deals, statNow), "win-rate"))
	})
}

func TestStatStrategy_OwnerConcentration(t *testing.T) {
	s := NewStatStrategy(DefaultStatConfig())
	deals := []domain.Deal{
		{Value: 70000, Owner: "Lisa Wang", Stage: domain.StageNegotiation, Probability: 80, CloseDate: statNow.AddDate(0, 3, 0)},
		{Value: 15000, Owner: "Mike Chen", Stage: domain.StageProposal, Probability: 80, CloseDate: statNow.AddDate(0, 3, 0)},
		{Value: 15000, Owner: "David Kim", Stage: domain.StageProspecting, Probability: 80, CloseDate: statNow.AddDate(0, 3, 0)},
	}

	insights := s.Generate(deals, statNow)

	ins := findInsight(t, insights, "deal-concentration")
	require.NotNil(t, ins)
	assert.Equal(t, domain.InsightRisk, ins.Category)
	assert.Contains(t, ins.Description, "Lisa Wang")
	assert.Contains(t, ins.Description, "70%")
}

func TestStatStrategy_CapsAtFour(t *testing.T) {
	s := NewStatStrategy(DefaultStatConfig())
	// Dataset engineered to trip all five detectors.
	deals := []domain.Deal{
		{Value: 300000, Owner: "Lisa Wang", Stage: domain.StageNegotiation, Probability: 40, CloseDate: statNow.AddDate(0, 0, 5)},
		{Value: 20000, Owner: "Mike Chen", Stage: domain.StageProposal, Probability: 80, CloseDate: statNow.AddDate(0, 3, 0)},
		{Value: 10000, Owner: "Mike Chen", Stage: domain.StageClosedWon},
		{Value: 10000, Owner: "Mike Chen", Stage: domain.StageClosedLost},
		{Value: 10000, Owner: "Mike Chen", Stage: domain.StageClosedLost},
		{Value: 10000, Owner: "Mike Chen", Stage: domain.StageClosedLost},
	}

	insights := s.Generate(deals, statNow)

	require.Len(t, insights, domain.MaxInsights)
	assert.Equal(t, "high-value-deals", insights[0].ID)
	assert.Nil(t, findInsight(t, insights, "deal-concentration"), "fifth detector truncated")
}
