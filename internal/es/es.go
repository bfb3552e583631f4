// Package es implements a canonical (μ/μ_w, λ) Evolution Strategy with
// log-rank recombination weights and a fixed, isotropic mutation step size.
package es

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Optimizer runs the evolution loop. It owns its random number generator, so
// two optimizers built with the same seed and config produce the same
// trajectory on a deterministic environment.
//
// An Optimizer is not safe for concurrent use.
type Optimizer struct {
	config       Config
	rng          *rand.Rand
	logger       *slog.Logger
	reporter     Reporter
	onGeneration func(GenerationStats)
}

// Option customizes an Optimizer.
type Option func(*Optimizer)

// WithLogger sets the logger used for run lifecycle messages and, unless a
// reporter is set, for progress reports.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Optimizer) {
		o.logger = logger
	}
}

// WithReporter replaces the progress reporter.
func WithReporter(reporter Reporter) Option {
	return func(o *Optimizer) {
		o.reporter = reporter
	}
}

// WithObserver registers a callback invoked after every generation.
func WithObserver(fn func(GenerationStats)) Option {
	return func(o *Optimizer) {
		o.onGeneration = fn
	}
}

// New validates config and returns an optimizer seeded with seed.
func New(config Config, seed int64, opts ...Option) (*Optimizer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	o := &Optimizer{
		config: config,
		rng:    rand.New(rand.NewSource(seed)),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.reporter == nil {
		o.reporter = LogReporter{Logger: o.logger}
	}
	return o, nil
}

// Config returns the optimizer's configuration.
func (o *Optimizer) Config() Config {
	return o.config
}

// Run evolves params for the configured number of generations and returns
// the same slice with its updated values. params is modified in place.
//
// The run stops early only if env returns an error or ctx is cancelled; in
// both cases params holds the result of the last completed generation.
func (o *Optimizer) Run(ctx context.Context, env Environment, params []float64) ([]float64, error) {
	if env == nil {
		return params, &ConfigError{Field: "Environment", Reason: "cannot be nil"}
	}
	if len(params) == 0 {
		return params, &ConfigError{Field: "PolicyParameters", Reason: "cannot be empty"}
	}

	cfg := o.config
	lambda := cfg.OffspringPopulationSize
	mu := cfg.ParentPopulationSize()
	sigma := cfg.MutationStepSize
	dim := len(params)

	weights := CalculateWeights(mu)
	delta := make([]float64, dim)

	o.logger.Info("Starting evolution",
		"generations", cfg.Generations,
		"offspring", lambda,
		"parents", mu,
		"dimension", dim,
		"step_size", sigma,
		"maximize", cfg.Maximize,
		"recombination", cfg.Recombination.String(),
	)

	for generation := 0; generation < cfg.Generations; generation++ {
		if err := ctx.Err(); err != nil {
			return params, fmt.Errorf("evolution stopped before generation %d: %w", generation+1, err)
		}

		noise := mat.NewDense(lambda, dim, nil)
		candidates := mat.NewDense(lambda, dim, nil)
		scores := make([]float64, lambda)

		for child := 0; child < lambda; child++ {
			row := noise.RawRowView(child)
			for k := range row {
				row[k] = o.rng.NormFloat64()
			}

			candidate := candidates.RawRowView(child)
			floats.AddScaledTo(candidate, params, sigma, row)

			score, err := env.Evaluate(candidate)
			if err != nil {
				return params, &EvaluationError{Generation: generation + 1, Offspring: child, Err: err}
			}
			scores[child] = score
		}

		elites := selectElites(scores, mu, cfg.Maximize)
		recombine(delta, noise, elites, weights, cfg.Recombination)
		floats.AddScaled(params, sigma, delta)

		reporting := cfg.ShowEvery > 0 && (generation+1)%cfg.ShowEvery == 0
		if reporting || o.onGeneration != nil {
			stats := o.stats(generation+1, scores, elites, params)
			if o.onGeneration != nil {
				o.onGeneration(stats)
			}
			if reporting {
				o.reporter.Report(stats)
			}
		}
	}

	o.logger.Info("Evolution complete", "generations", cfg.Generations)
	return params, nil
}

func (o *Optimizer) stats(generation int, scores []float64, elites []int, params []float64) GenerationStats {
	mean, std := stat.MeanStdDev(scores, nil)
	if len(scores) < 2 {
		std = 0
	}
	return GenerationStats{
		Generation: generation,
		BestScore:  scores[elites[0]],
		MeanScore:  mean,
		StdScore:   std,
		Elites:     append([]int(nil), elites...),
		Params:     append([]float64(nil), params...),
	}
}

// Run is a convenience wrapper building a one-off Optimizer.
func Run(ctx context.Context, env Environment, params []float64, config Config, seed int64, opts ...Option) ([]float64, error) {
	o, err := New(config, seed, opts...)
	if err != nil {
		return params, err
	}
	return o.Run(ctx, env, params)
}

// selectElites returns the indices of the mu best scores, best first.
// Maximizing ranks by descending score, minimizing by ascending score.
// Equal scores keep offspring order, so maximizing f and minimizing -f
// select identical elites.
func selectElites(scores []float64, mu int, maximize bool) []int {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		if maximize {
			return scores[order[a]] > scores[order[b]]
		}
		return scores[order[a]] < scores[order[b]]
	})
	return order[:mu]
}

// recombine writes the update direction into delta: the elite noise rows
// scaled by their rank weights, averaged over the elites (RecombineMean) or
// summed (RecombineWeightedSum).
func recombine(delta []float64, noise *mat.Dense, elites []int, weights []float64, mode Recombination) {
	for k := range delta {
		delta[k] = 0
	}
	for rank, e := range elites {
		floats.AddScaled(delta, weights[rank], noise.RawRowView(e))
	}
	if mode == RecombineMean {
		n := float64(len(elites))
		for k := range delta {
			delta[k] /= n
		}
	}
}
