package es

import (
	"fmt"
	"math"
)

// Recombination selects how elite perturbations are blended into an update.
type Recombination int

const (
	// RecombineMean averages the weighted elite noise vectors, dividing by μ
	// even though the weights already sum to 1. This is the default.
	RecombineMean Recombination = iota

	// RecombineWeightedSum uses the weighted sum of elite noise vectors
	// without the extra 1/μ factor.
	RecombineWeightedSum
)

func (r Recombination) String() string {
	switch r {
	case RecombineMean:
		return "mean"
	case RecombineWeightedSum:
		return "weighted-sum"
	default:
		return fmt.Sprintf("recombination(%d)", int(r))
	}
}

// ParseRecombination maps a name ("mean", "weighted-sum") to a Recombination.
func ParseRecombination(name string) (Recombination, error) {
	switch name {
	case "", "mean":
		return RecombineMean, nil
	case "weighted-sum", "sum":
		return RecombineWeightedSum, nil
	default:
		return RecombineMean, &ConfigError{Field: "Recombination", Reason: fmt.Sprintf("unknown mode %q", name)}
	}
}

// Config holds the hyperparameters of one evolution run.
type Config struct {
	// Generations is the number of sample/select/update cycles to execute
	Generations int

	// OffspringPopulationSize is λ, the number of perturbed candidates per generation
	OffspringPopulationSize int

	// ParentPopulationPercent determines μ = round(percent × λ)
	ParentPopulationPercent float64

	// MutationStepSize is σ; it scales both perturbation and update
	MutationStepSize float64

	// Maximize selects the highest scores when true, the lowest when false
	Maximize bool

	// ShowEvery is the progress-reporting cadence in generations (0 = never)
	ShowEvery int

	Recombination Recombination
}

// DefaultConfig returns the canonical defaults. Generations and
// OffspringPopulationSize have no sensible default and must be set.
func DefaultConfig() Config {
	return Config{
		ParentPopulationPercent: 0.25,
		MutationStepSize:        1,
		Maximize:                true,
		ShowEvery:               1000,
		Recombination:           RecombineMean,
	}
}

// ParentPopulationSize returns μ = round(ParentPopulationPercent × λ).
// Halves round away from zero, so λ=50 at 25% gives μ=13.
func (c Config) ParentPopulationSize() int {
	return int(math.Round(c.ParentPopulationPercent * float64(c.OffspringPopulationSize)))
}

// Validate checks the configuration and returns a *ConfigError describing
// the first violated precondition.
func (c Config) Validate() error {
	if c.Generations <= 0 {
		return &ConfigError{Field: "Generations", Reason: fmt.Sprintf("must be positive, got %d", c.Generations)}
	}
	if c.OffspringPopulationSize <= 0 {
		return &ConfigError{Field: "OffspringPopulationSize", Reason: fmt.Sprintf("must be positive, got %d", c.OffspringPopulationSize)}
	}
	if math.IsNaN(c.ParentPopulationPercent) || c.ParentPopulationPercent <= 0 || c.ParentPopulationPercent > 1 {
		return &ConfigError{Field: "ParentPopulationPercent", Reason: fmt.Sprintf("must be in (0, 1], got %g", c.ParentPopulationPercent)}
	}
	if math.IsNaN(c.MutationStepSize) || math.IsInf(c.MutationStepSize, 0) || c.MutationStepSize <= 0 {
		return &ConfigError{Field: "MutationStepSize", Reason: fmt.Sprintf("must be positive and finite, got %g", c.MutationStepSize)}
	}
	if c.ShowEvery < 0 {
		return &ConfigError{Field: "ShowEvery", Reason: fmt.Sprintf("cannot be negative, got %d", c.ShowEvery)}
	}
	mu := c.ParentPopulationSize()
	if mu < 1 {
		return &ConfigError{
			Field:  "ParentPopulationPercent",
			Reason: fmt.Sprintf("%g of %d offspring rounds to %d parents, need at least 1", c.ParentPopulationPercent, c.OffspringPopulationSize, mu),
		}
	}
	if mu > c.OffspringPopulationSize {
		return &ConfigError{
			Field:  "ParentPopulationPercent",
			Reason: fmt.Sprintf("%d parents exceeds %d offspring", mu, c.OffspringPopulationSize),
		}
	}
	switch c.Recombination {
	case RecombineMean, RecombineWeightedSum:
	default:
		return &ConfigError{Field: "Recombination", Reason: fmt.Sprintf("unknown mode %d", int(c.Recombination))}
	}
	return nil
}
