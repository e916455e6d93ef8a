package attribution

import (
	"math"
	"math/rand"
	"sync"

	"github.com/BuzzwordStrategies/MarketingOS/internal/domain"
	"github.com/BuzzwordStrategies/MarketingOS/internal/executor"
)

// Estimator assigns a post-hoc revenue estimate to a completed execution.
// The engine only depends on this interface, so the heuristic below can be
// replaced by a real model without touching the engine.
type Estimator interface {
	Estimate(def *domain.WorkflowDefinition, outputs map[string]executor.Result) domain.Attribution
}

// channelWeights is the fixed breakdown across channels; weights sum to 100.
var channelWeights = []struct {
	name   string
	weight int
}{
	{"Organic Search", 35},
	{"Paid Social", 25},
	{"Email Marketing", 20},
	{"Direct Traffic", 12},
	{"Referrals", 8},
}

// Heuristic scales the definition's revenue range midpoint by a random
// multiplier in [0.7, 1.3) and splits the result across the fixed channel
// weights. It is a placeholder, not a model.
type Heuristic struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewHeuristic creates an estimator drawing multipliers from the given seed.
func NewHeuristic(seed int64) *Heuristic {
	return &Heuristic{rng: rand.New(rand.NewSource(seed))}
}

func (h *Heuristic) Estimate(def *domain.WorkflowDefinition, outputs map[string]executor.Result) domain.Attribution {
	h.mu.Lock()
	multiplier := 0.7 + h.rng.Float64()*0.6
	confidence := 85 + h.rng.Intn(16)
	h.mu.Unlock()

	base := def.Revenue.Midpoint()
	total := int(math.Round(base * multiplier))

	channels := make([]domain.ChannelAttribution, 0, len(channelWeights))
	for _, cw := range channelWeights {
		channels = append(channels, domain.ChannelAttribution{
			Name:         cw.name,
			Contribution: cw.weight,
			RevenueUSD:   int(math.Round(base * float64(cw.weight) / 100 * multiplier)),
		})
	}

	return domain.Attribution{
		EstimatedRevenueUSD: total,
		Confidence:          confidence,
		Channels:            channels,
	}
}
