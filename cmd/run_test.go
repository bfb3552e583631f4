package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cwbudde/canonicales/internal/config"
	"github.com/cwbudde/canonicales/internal/store"
	"gonum.org/v1/gonum/floats"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExecuteRun_BowlStoresRecordAndTrace(t *testing.T) {
	dataDir := t.TempDir()

	rf := config.Default()
	rf.Objective = "bowl"
	rf.Target = []float64{3, -1}
	rf.Initial = []float64{0, 0}
	rf.Dimension = 0
	rf.Generations = 200
	rf.Offspring = 50
	rf.StepSize = 0.5
	rf.Seed = 42
	rf.DataDir = dataDir

	record, err := executeRun(context.Background(), rf, discardLogger())
	if err != nil {
		t.Fatalf("executeRun failed: %v", err)
	}

	if dist := floats.Distance(record.FinalParams, rf.Target, 2); dist > 0.2 {
		t.Errorf("Final params %v are %.4f from target", record.FinalParams, dist)
	}
	if record.InitialParams[0] != 0 || record.InitialParams[1] != 0 {
		t.Errorf("Initial params mismatch: got %v", record.InitialParams)
	}
	if !record.Config.Maximize {
		t.Error("Expected bowl to be maximized")
	}

	runStore, err := store.NewFSStore(dataDir)
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}
	loaded, err := runStore.LoadRun(record.RunID)
	if err != nil {
		t.Fatalf("LoadRun failed: %v", err)
	}
	if loaded.Generations != 200 {
		t.Errorf("Generations mismatch: got %d, want 200", loaded.Generations)
	}

	reader, err := store.NewTraceReader(dataDir, record.RunID)
	if err != nil {
		t.Fatalf("NewTraceReader failed: %v", err)
	}
	defer reader.Close()

	entries, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(entries) != 200 {
		t.Fatalf("Expected 200 trace entries, got %d", len(entries))
	}
	if entries[0].Generation != 1 || entries[199].Generation != 200 {
		t.Errorf("Trace generations out of order: first %d, last %d", entries[0].Generation, entries[199].Generation)
	}
	if entries[199].BestScore <= entries[0].BestScore {
		t.Errorf("Expected best score to improve: %g -> %g", entries[0].BestScore, entries[199].BestScore)
	}
}

func TestExecuteRun_WithoutDataDir(t *testing.T) {
	rf := config.Default()
	rf.Objective = "sphere"
	rf.Dimension = 3
	rf.Initial = nil
	rf.Generations = 20
	rf.Offspring = 10

	record, err := executeRun(context.Background(), rf, discardLogger())
	if err != nil {
		t.Fatalf("executeRun failed: %v", err)
	}
	if record.Config.Maximize {
		t.Error("Expected sphere to be minimized")
	}
	if len(record.FinalParams) != 3 {
		t.Errorf("Expected 3 params, got %d", len(record.FinalParams))
	}
}

func TestExecuteRun_Errors(t *testing.T) {
	rf := config.Default()
	rf.Objective = "ackley"
	if _, err := executeRun(context.Background(), rf, discardLogger()); err == nil {
		t.Error("Expected error for unknown objective")
	}

	rf = config.Default()
	rf.Offspring = 0
	if _, err := executeRun(context.Background(), rf, discardLogger()); err == nil {
		t.Error("Expected error for zero offspring")
	}

	rf = config.Default()
	rf.Dimension = 0
	if _, err := executeRun(context.Background(), rf, discardLogger()); err == nil {
		t.Error("Expected error for empty parameter vector")
	}
}

// resetRunFlags restores the named flags of the shared run command once the
// test finishes.
func resetRunFlags(t *testing.T, names ...string) {
	t.Helper()

	t.Cleanup(func() {
		for _, name := range names {
			f := runCmd.Flags().Lookup(name)
			if f == nil {
				continue
			}
			f.Value.Set(f.DefValue)
			f.Changed = false
		}
	})
}

func TestExecuteRun_CancelledLeavesNoRunDir(t *testing.T) {
	dataDir := t.TempDir()

	rf := config.Default()
	rf.DataDir = dataDir

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := executeRun(ctx, rf, discardLogger()); !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(dataDir, "runs"))
	if err != nil && !os.IsNotExist(err) {
		t.Fatalf("Failed to read runs directory: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no run directories after a cancelled run, found %d", len(entries))
	}
}

func TestRunMaximizeFlagDefault(t *testing.T) {
	f := runCmd.Flags().Lookup("maximize")
	if f == nil {
		t.Fatal("Expected a maximize flag")
	}
	if f.DefValue != "false" {
		t.Errorf("Expected no implied direction in the default, got %s", f.DefValue)
	}
	if !strings.Contains(f.Usage, "natural direction") {
		t.Errorf("Usage should explain the omitted-flag behaviour: %q", f.Usage)
	}
}

func TestRunFileFromFlags_OverridesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	content := "objective: rosenbrock\ngenerations: 10\noffspring: 12\nseed: 3\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write run file: %v", err)
	}

	resetRunFlags(t, "config", "generations")

	if err := runCmd.Flags().Set("config", path); err != nil {
		t.Fatalf("Set config failed: %v", err)
	}
	if err := runCmd.Flags().Set("generations", "7"); err != nil {
		t.Fatalf("Set generations failed: %v", err)
	}

	rf, err := runFileFromFlags(runCmd)
	if err != nil {
		t.Fatalf("runFileFromFlags failed: %v", err)
	}

	if rf.Objective != "rosenbrock" {
		t.Errorf("Objective mismatch: got %s", rf.Objective)
	}
	if rf.Generations != 7 {
		t.Errorf("Expected flag to override generations: got %d", rf.Generations)
	}
	if rf.Offspring != 12 || rf.Seed != 3 {
		t.Errorf("Expected file values kept: offspring %d, seed %d", rf.Offspring, rf.Seed)
	}
	if rf.Maximize != nil {
		t.Error("Maximize should stay unset when the flag is not given")
	}
}
