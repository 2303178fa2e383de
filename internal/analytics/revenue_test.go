package analytics

import (
	"testing"

	"salespulse-api/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestRevenue(t *testing.T) {
	deals := []domain.Deal{
		{ID: "1", Value: 125000, Stage: domain.StageProposal, Probability: 75},
		{ID: "2", Value: 95000, Stage: domain.StageClosedWon, Probability: 100},
	}

	m := Revenue(deals)

	assert.Equal(t, float64(95000), m.TotalRevenue)
	assert.Equal(t, 1, m.DealsWon)
	assert.Equal(t, float64(125000), m.PipelineValue)
	assert.Equal(t, float64(95000), m.AverageDealSize)
}

func TestRevenue_ClosedLostExcluded(t *testing.T) {
	deals := []domain.Deal{
		{ID: "1", Value: 50000, Stage: domain.StageClosedLost},
		{ID: "2", Value: 30000, Stage: domain.StageNegotiation},
	}

	m := Revenue(deals)

	assert.Zero(t, m.TotalRevenue)
	assert.Zero(t, m.DealsWon)
	assert.Equal(t, float64(30000), m.PipelineValue)
	assert.Zero(t, m.AverageDealSize)
}

func TestRevenue_Empty(t *testing.T) {
	m := Revenue(nil)

	assert.Zero(t, m.TotalRevenue)
	assert.Zero(t, m.DealsWon)
	assert.Zero(t, m.PipelineValue)
	assert.Zero(t, m.AverageDealSize)
}

func TestRevenue_AverageOverMultipleWins(t *testing.T) {
	deals := []domain.Deal{
		{Value: 100000, Stage: domain.StageClosedWon},
		{Value: 50000, Stage: domain.StageClosedWon},
		{Value: 75000, Stage: domain.StageClosedWon},
	}

	m := Revenue(deals)

	assert.Equal(t, float64(225000), m.TotalRevenue)
	assert.Equal(t, 3, m.DealsWon)
	assert.Equal(t, float64(75000), m.AverageDealSize)
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{1200000, "$1.2M"},
		{1000000, "$1.0M"},
		{200000, "$200K"},
		{1000, "$1K"},
		{999, "$999"},
		{0, "$0"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatMoney(tt.value))
	}
}
