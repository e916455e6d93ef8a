package attribution

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BuzzwordStrategies/MarketingOS/internal/domain"
)

func productLaunchDef() *domain.WorkflowDefinition {
	return &domain.WorkflowDefinition{
		ID:      "product-launch",
		Revenue: domain.RevenueRange{MinUSD: 15000, MaxUSD: 50000},
	}
}

func TestEstimateBounds(t *testing.T) {
	est := NewHeuristic(1)
	def := productLaunchDef()
	mid := def.Revenue.Midpoint()

	for i := 0; i < 100; i++ {
		attr := est.Estimate(def, nil)
		assert.GreaterOrEqual(t, float64(attr.EstimatedRevenueUSD), mid*0.7-1)
		assert.LessOrEqual(t, float64(attr.EstimatedRevenueUSD), mid*1.3+1)
		assert.GreaterOrEqual(t, attr.Confidence, 85)
		assert.LessOrEqual(t, attr.Confidence, 100)
	}
}

func TestEstimateChannelWeightsSumTo100(t *testing.T) {
	est := NewHeuristic(7)
	attr := est.Estimate(productLaunchDef(), nil)

	total := 0
	for _, ch := range attr.Channels {
		total += ch.Contribution
		assert.NotEmpty(t, ch.Name)
		assert.Greater(t, ch.RevenueUSD, 0)
	}
	assert.Equal(t, 100, total)
}

func TestEstimateIsDeterministicForSeed(t *testing.T) {
	def := productLaunchDef()
	a := NewHeuristic(42).Estimate(def, nil)
	b := NewHeuristic(42).Estimate(def, nil)
	assert.Equal(t, a, b)
}
