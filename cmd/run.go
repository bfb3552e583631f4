package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/cwbudde/canonicales/internal/config"
	"github.com/cwbudde/canonicales/internal/es"
	"github.com/cwbudde/canonicales/internal/objective"
	"github.com/cwbudde/canonicales/internal/store"
	"github.com/spf13/cobra"
)

var (
	runConfigPath    string
	runObjective     string
	runTarget        []float64
	runInitial       []float64
	runDimension     int
	runGenerations   int
	runOffspring     int
	runParentPercent float64
	runStepSize      float64
	runMaximize      bool
	runRecombination string
	runShowEvery     int
	runSeed          int64
	runDataDir       string
	runTraceParams   bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the evolution strategy on a benchmark objective",
	Long: `Runs the evolution strategy on a named objective and prints the final
parameter vector. Settings come from --config (YAML) and are overridden by
any flag given explicitly. With --data-dir the run record and a
per-generation trace are stored for later inspection with "runs".`,
	RunE: runEvolution,
}

func init() {
	d := config.Default()

	runCmd.Flags().StringVar(&runConfigPath, "config", "", "YAML run file")
	runCmd.Flags().StringVar(&runObjective, "objective", d.Objective, "Objective: bowl, rastrigin, rosenbrock, sphere")
	runCmd.Flags().Float64SliceVar(&runTarget, "target", nil, "Target vector for the bowl objective")
	runCmd.Flags().Float64SliceVar(&runInitial, "initial", nil, "Initial parameter vector (default zeros)")
	runCmd.Flags().IntVar(&runDimension, "dim", d.Dimension, "Dimension when --initial is not given")
	runCmd.Flags().IntVar(&runGenerations, "generations", d.Generations, "Number of generations")
	runCmd.Flags().IntVar(&runOffspring, "offspring", d.Offspring, "Offspring population size (lambda)")
	runCmd.Flags().Float64Var(&runParentPercent, "parent-percent", d.ParentPercent, "Fraction of offspring recombined (mu = round(percent * lambda))")
	runCmd.Flags().Float64Var(&runStepSize, "step-size", d.StepSize, "Mutation step size (sigma)")
	runCmd.Flags().BoolVar(&runMaximize, "maximize", false, "Maximize (true) or minimize (false) the objective; when omitted the objective's natural direction is used")
	runCmd.Flags().StringVar(&runRecombination, "recombination", d.Recombination, "Recombination: mean, weighted-sum")
	runCmd.Flags().IntVar(&runShowEvery, "show-every", d.ShowEvery, "Report progress every N generations (0 = never)")
	runCmd.Flags().Int64Var(&runSeed, "seed", d.Seed, "Random seed")
	runCmd.Flags().StringVar(&runDataDir, "data-dir", "", "Directory for run records and traces (empty = don't store)")
	runCmd.Flags().BoolVar(&runTraceParams, "trace-params", false, "Include the parameter vector in every trace line")

	rootCmd.AddCommand(runCmd)
}

// runFileFromFlags loads --config if given and applies explicitly set flags on top.
func runFileFromFlags(cmd *cobra.Command) (config.RunFile, error) {
	rf := config.Default()
	if runConfigPath != "" {
		loaded, err := config.Load(runConfigPath)
		if err != nil {
			return rf, err
		}
		rf = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("objective") {
		rf.Objective = runObjective
	}
	if flags.Changed("target") {
		rf.Target = runTarget
	}
	if flags.Changed("initial") {
		rf.Initial = runInitial
		rf.Dimension = 0
	}
	if flags.Changed("dim") {
		rf.Dimension = runDimension
	}
	if flags.Changed("generations") {
		rf.Generations = runGenerations
	}
	if flags.Changed("offspring") {
		rf.Offspring = runOffspring
	}
	if flags.Changed("parent-percent") {
		rf.ParentPercent = runParentPercent
	}
	if flags.Changed("step-size") {
		rf.StepSize = runStepSize
	}
	if flags.Changed("maximize") {
		maximize := runMaximize
		rf.Maximize = &maximize
	}
	if flags.Changed("recombination") {
		rf.Recombination = runRecombination
	}
	if flags.Changed("show-every") {
		rf.ShowEvery = runShowEvery
	}
	if flags.Changed("seed") {
		rf.Seed = runSeed
	}
	if flags.Changed("data-dir") {
		rf.DataDir = runDataDir
	}
	if flags.Changed("trace-params") {
		rf.TraceParams = runTraceParams
	}
	return rf, nil
}

func runEvolution(cmd *cobra.Command, args []string) error {
	rf, err := runFileFromFlags(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	record, err := executeRun(ctx, rf, slog.Default())
	if err != nil {
		return err
	}

	fmt.Printf("Final parameters: %v\n", record.FinalParams)
	fmt.Printf("Final score: %g (%s, %d generations)\n", record.FinalScore, record.Config.Objective, record.Generations)
	if rf.DataDir != "" {
		fmt.Printf("Stored run %s in %s\n", record.RunID, rf.DataDir)
	}
	return nil
}

// executeRun performs one evolution run described by rf. When rf.DataDir is
// set the trace is streamed to disk during the run and the record is saved
// after it.
func executeRun(ctx context.Context, rf config.RunFile, logger *slog.Logger) (*store.RunRecord, error) {
	spec, err := objective.Lookup(rf.Objective, rf.Target)
	if err != nil {
		return nil, err
	}

	params, err := rf.InitialParams()
	if err != nil {
		return nil, fmt.Errorf("invalid initial parameters: %w", err)
	}
	initial := append([]float64(nil), params...)

	cfg, err := rf.ESConfig(spec.Maximize)
	if err != nil {
		return nil, err
	}

	opts := []es.Option{es.WithLogger(logger)}

	var (
		runStore *store.FSStore
		trace    *store.TraceWriter
	)
	runID := store.NewRunID()
	if rf.DataDir != "" {
		runStore, err = store.NewFSStore(rf.DataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to create run store: %w", err)
		}
		trace, err = store.NewTraceWriter(rf.DataDir, runID, rf.TraceParams)
		if err != nil {
			return nil, fmt.Errorf("failed to create trace: %w", err)
		}
		opts = append(opts, es.WithObserver(trace.Observe))
	}

	logger.Info("Starting run", "run_id", runID, "objective", spec.Name, "dimension", len(params), "seed", rf.Seed)

	start := time.Now()
	final, runErr := es.Run(ctx, es.ScoreFunc(spec.Func), params, cfg, rf.Seed, opts...)

	if trace != nil {
		if err := trace.Close(); err != nil && runErr == nil {
			runErr = fmt.Errorf("failed to write trace: %w", err)
		}
	}
	if runErr != nil {
		discardRun(runStore, runID, logger)
		return nil, runErr
	}

	record := store.NewRunRecord(rf.StoreConfig(cfg), initial, final, spec.Func(final), cfg.Generations, start)
	record.RunID = runID

	logger.Info("Run complete",
		"run_id", runID,
		"elapsed", time.Since(start),
		"final_score", record.FinalScore,
	)

	if runStore != nil {
		if err := runStore.SaveRun(record); err != nil {
			discardRun(runStore, runID, logger)
			return nil, fmt.Errorf("failed to save run: %w", err)
		}
	}
	return record, nil
}

// discardRun removes the directory of a run that produced no record, so no
// trace is left behind that "runs list" and "runs clean" cannot see.
func discardRun(runStore *store.FSStore, runID string, logger *slog.Logger) {
	if runStore == nil {
		return
	}
	if err := runStore.DeleteRun(runID); err != nil && !errors.Is(err, store.ErrNotFound) {
		logger.Warn("Failed to remove incomplete run", "run_id", runID, "error", err)
	}
}
