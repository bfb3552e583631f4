package store

import (
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cwbudde/canonicales/internal/es"
)

func TestTraceWriter_WriteAndRead(t *testing.T) {
	tmpDir := t.TempDir()
	runID := "run-trace"

	writer, err := NewTraceWriter(tmpDir, runID, false)
	if err != nil {
		t.Fatalf("Failed to create trace writer: %v", err)
	}

	entries := []TraceEntry{
		{Generation: 1, BestScore: -10, MeanScore: -12, StdScore: 1.5, Timestamp: time.Now()},
		{Generation: 2, BestScore: -8, MeanScore: -9, StdScore: 1.1, Timestamp: time.Now()},
		{Generation: 3, BestScore: -5, MeanScore: -6, StdScore: 0.9, Timestamp: time.Now(), Params: []float64{1, 2}},
	}

	for _, entry := range entries {
		if err := writer.Write(entry); err != nil {
			t.Fatalf("Failed to write entry: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close writer: %v", err)
	}

	tracePath := filepath.Join(tmpDir, "runs", runID, "trace.jsonl")
	if writer.Path() != tracePath {
		t.Errorf("Path mismatch: got %s, want %s", writer.Path(), tracePath)
	}

	reader, err := NewTraceReader(tmpDir, runID)
	if err != nil {
		t.Fatalf("Failed to create trace reader: %v", err)
	}
	defer reader.Close()

	read, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("Failed to read entries: %v", err)
	}
	if len(read) != len(entries) {
		t.Fatalf("Expected %d entries, got %d", len(entries), len(read))
	}

	for i, entry := range read {
		if entry.Generation != entries[i].Generation {
			t.Errorf("Entry %d: expected generation %d, got %d", i, entries[i].Generation, entry.Generation)
		}
		if entry.BestScore != entries[i].BestScore {
			t.Errorf("Entry %d: expected best %f, got %f", i, entries[i].BestScore, entry.BestScore)
		}
		if len(entry.Params) != len(entries[i].Params) {
			t.Errorf("Entry %d: expected %d params, got %d", i, len(entries[i].Params), len(entry.Params))
		}
	}
}

func TestTraceWriter_Observe(t *testing.T) {
	tmpDir := t.TempDir()

	writer, err := NewTraceWriter(tmpDir, "run-observe", true)
	if err != nil {
		t.Fatalf("Failed to create trace writer: %v", err)
	}

	for g := 1; g <= 4; g++ {
		writer.Observe(es.GenerationStats{
			Generation: g,
			BestScore:  float64(-10 + g),
			Elites:     []int{0},
			Params:     []float64{float64(g), 0},
		})
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reader, err := NewTraceReader(tmpDir, "run-observe")
	if err != nil {
		t.Fatalf("Failed to create trace reader: %v", err)
	}
	defer reader.Close()

	for g := 1; g <= 4; g++ {
		entry, err := reader.Read()
		if err != nil {
			t.Fatalf("Read %d failed: %v", g, err)
		}
		if entry.Generation != g {
			t.Errorf("Generation mismatch: got %d, want %d", entry.Generation, g)
		}
		if len(entry.Params) != 2 || entry.Params[0] != float64(g) {
			t.Errorf("Generation %d: params mismatch: got %v", g, entry.Params)
		}
	}

	if _, err := reader.Read(); err != io.EOF {
		t.Errorf("Expected io.EOF, got %v", err)
	}
}

func TestTraceWriter_Truncates(t *testing.T) {
	tmpDir := t.TempDir()

	for run := 0; run < 2; run++ {
		writer, err := NewTraceWriter(tmpDir, "run-twice", false)
		if err != nil {
			t.Fatalf("Failed to create trace writer: %v", err)
		}
		writer.Write(TraceEntry{Generation: 1})
		if err := writer.Flush(); err != nil {
			t.Fatalf("Flush failed: %v", err)
		}
		writer.Close()
	}

	reader, err := NewTraceReader(tmpDir, "run-twice")
	if err != nil {
		t.Fatalf("Failed to create trace reader: %v", err)
	}
	defer reader.Close()

	entries, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected 1 entry after rewrite, got %d", len(entries))
	}
}

func TestNewTraceEntry_OmitsParams(t *testing.T) {
	stats := es.GenerationStats{Generation: 7, BestScore: 1, MeanScore: 0.5, Params: []float64{1, 2, 3}}

	entry := NewTraceEntry(stats, false)
	if entry.Params != nil {
		t.Errorf("Expected no params, got %v", entry.Params)
	}

	entry = NewTraceEntry(stats, true)
	stats.Params[0] = 42
	if entry.Params[0] != 1 {
		t.Errorf("Params alias stats: got %v", entry.Params)
	}
}

func TestTraceReader_NotFound(t *testing.T) {
	_, err := NewTraceReader(t.TempDir(), "missing")
	if _, ok := err.(*NotFoundError); !ok {
		t.Errorf("Expected NotFoundError, got %T: %v", err, err)
	}
}

func TestDeleteRunRemovesTrace(t *testing.T) {
	store, tempDir := setupTestStore(t)

	if err := store.SaveRun(createTestRecord("run-x")); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	writer, err := NewTraceWriter(tempDir, "run-x", false)
	if err != nil {
		t.Fatalf("Failed to create trace writer: %v", err)
	}
	writer.Write(TraceEntry{Generation: 1})
	writer.Close()

	if err := store.DeleteRun("run-x"); err != nil {
		t.Fatalf("DeleteRun failed: %v", err)
	}
	if _, err := os.Stat(writer.Path()); !os.IsNotExist(err) {
		t.Error("Trace should be removed with the run")
	}
}

func TestTraceWriter_NonFiniteValues(t *testing.T) {
	tmpDir := t.TempDir()

	writer, err := NewTraceWriter(tmpDir, "run-diverged", true)
	if err != nil {
		t.Fatalf("Failed to create trace writer: %v", err)
	}

	writer.Observe(es.GenerationStats{
		Generation: 1,
		BestScore:  math.Inf(1),
		MeanScore:  math.NaN(),
		StdScore:   math.Inf(-1),
		Params:     []float64{1.5, math.NaN()},
	})
	writer.Observe(es.GenerationStats{Generation: 2, BestScore: -3, Params: []float64{2, 0}})

	if err := writer.Close(); err != nil {
		t.Fatalf("Close failed on non-finite values: %v", err)
	}

	reader, err := NewTraceReader(tmpDir, "run-diverged")
	if err != nil {
		t.Fatalf("Failed to create trace reader: %v", err)
	}
	defer reader.Close()

	entries, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}

	first := entries[0]
	if !math.IsNaN(first.BestScore) || !math.IsNaN(first.MeanScore) || !math.IsNaN(first.StdScore) {
		t.Errorf("Expected non-finite scores to read back as NaN, got %+v", first)
	}
	if len(first.Params) != 2 || first.Params[0] != 1.5 || !math.IsNaN(first.Params[1]) {
		t.Errorf("Params mismatch: got %v", first.Params)
	}

	second := entries[1]
	if second.BestScore != -3 || second.MeanScore != 0 {
		t.Errorf("Finite scores changed: got %+v", second)
	}
	if second.Timestamp.IsZero() {
		t.Error("Timestamp lost")
	}
}
