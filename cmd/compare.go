package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/cwbudde/canonicales/internal/objective"
	"github.com/cwbudde/canonicales/internal/opt"
	"github.com/spf13/cobra"
)

var (
	compareObjective string
	compareDimension int
	compareLower     float64
	compareUpper     float64
	compareIters     int
	comparePopSize   int
	compareStepSize  float64
	compareSeed      int64
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare the evolution strategy against the Mayfly baseline",
	Long: `Runs the evolution strategy and the Mayfly optimizer on the same objective,
bounds, iteration budget and population size, and prints the best cost
reached by each. Maximizing objectives are negated into costs.`,
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().StringVar(&compareObjective, "objective", "sphere", "Objective: bowl, rastrigin, rosenbrock, sphere")
	compareCmd.Flags().IntVar(&compareDimension, "dim", 5, "Dimension")
	compareCmd.Flags().Float64Var(&compareLower, "lower", -5, "Lower bound for every dimension")
	compareCmd.Flags().Float64Var(&compareUpper, "upper", 5, "Upper bound for every dimension")
	compareCmd.Flags().IntVar(&compareIters, "iters", 200, "Generations / iterations per optimizer")
	compareCmd.Flags().IntVar(&comparePopSize, "pop", 30, "Population size (Mayfly needs at least 20)")
	compareCmd.Flags().Float64Var(&compareStepSize, "step-size", 0, "ES mutation step size (0 = 5% of bound width)")
	compareCmd.Flags().Int64Var(&compareSeed, "seed", 42, "Random seed")

	rootCmd.AddCommand(compareCmd)
}

type comparison struct {
	Name    string
	Best    []float64
	Cost    float64
	Elapsed time.Duration
}

// compareOptimizers runs every optimizer on cost within [lower, upper].
func compareOptimizers(optimizers []opt.Optimizer, cost objective.Func, lower, upper []float64, dim int) []comparison {
	results := make([]comparison, 0, len(optimizers))
	for _, o := range optimizers {
		slog.Info("Running optimizer", "optimizer", o.Name(), "dimension", dim)

		start := time.Now()
		best, c := o.Run(cost, lower, upper, dim)
		elapsed := time.Since(start)

		slog.Info("Optimizer finished", "optimizer", o.Name(), "cost", c, "elapsed", elapsed)
		results = append(results, comparison{Name: o.Name(), Best: best, Cost: c, Elapsed: elapsed})
	}
	return results
}

func runCompare(cmd *cobra.Command, args []string) error {
	if compareDimension <= 0 {
		return fmt.Errorf("dimension must be positive, got %d", compareDimension)
	}
	if compareLower >= compareUpper {
		return fmt.Errorf("lower bound %g must be below upper bound %g", compareLower, compareUpper)
	}

	spec, err := objective.Lookup(compareObjective, nil)
	if err != nil {
		return err
	}

	lower, upper := opt.UniformBounds(compareDimension, compareLower, compareUpper)
	optimizers := []opt.Optimizer{
		opt.NewEvolution(compareIters, comparePopSize, compareSeed, compareStepSize),
		opt.NewMayfly(compareIters, comparePopSize, compareSeed),
	}

	results := compareOptimizers(optimizers, spec.Cost(), lower, upper, compareDimension)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "OPTIMIZER\tBEST COST\tELAPSED")
	fmt.Fprintln(w, "---------\t---------\t-------")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%.6g\t%s\n", r.Name, r.Cost, r.Elapsed.Round(time.Millisecond))
	}
	return w.Flush()
}
