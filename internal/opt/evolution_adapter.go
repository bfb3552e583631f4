package opt

import (
	"context"
	"log/slog"
	"math"

	"github.com/cwbudde/canonicales/internal/es"
)

// EvolutionAdapter runs the canonical evolution strategy in minimize mode,
// starting from the centre of the bounds.
type EvolutionAdapter struct {
	generations int
	popSize     int
	seed        int64
	stepSize    float64
}

// NewEvolution creates an evolution strategy adapter. A stepSize <= 0 selects
// a step of 5% of the mean bound width.
func NewEvolution(generations, popSize int, seed int64, stepSize float64) Optimizer {
	return &EvolutionAdapter{
		generations: generations,
		popSize:     popSize,
		seed:        seed,
		stepSize:    stepSize,
	}
}

func (e *EvolutionAdapter) Name() string {
	return "evolution"
}

// Run executes the evolution strategy and clamps the result to the bounds
func (e *EvolutionAdapter) Run(eval func([]float64) float64, lower, upper []float64, dim int) ([]float64, float64) {
	params := boxCentre(lower, upper, dim)

	cfg := es.DefaultConfig()
	cfg.Generations = e.generations
	cfg.OffspringPopulationSize = e.popSize
	cfg.Maximize = false
	cfg.ShowEvery = 0
	cfg.MutationStepSize = e.stepSize
	if cfg.MutationStepSize <= 0 {
		cfg.MutationStepSize = 0.05 * meanWidth(lower, upper, dim)
	}

	best, err := es.Run(context.Background(), es.ScoreFunc(eval), params, cfg, e.seed)
	if err != nil {
		slog.Warn("Evolution strategy failed, returning box centre", "error", err)
		centre := boxCentre(lower, upper, dim)
		return centre, eval(centre)
	}

	for i := range best {
		best[i] = clamp(best[i], lower[i], upper[i])
	}
	return best, eval(best)
}

func boxCentre(lower, upper []float64, dim int) []float64 {
	centre := make([]float64, dim)
	for i := range centre {
		centre[i] = (lower[i] + upper[i]) / 2
	}
	return centre
}

func meanWidth(lower, upper []float64, dim int) float64 {
	if dim == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < dim; i++ {
		sum += upper[i] - lower[i]
	}
	return sum / float64(dim)
}

func clamp(val, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, val))
}
