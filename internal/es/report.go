package es

import "log/slog"

// GenerationStats summarizes one completed generation.
type GenerationStats struct {
	// Generation is 1-indexed
	Generation int

	// BestScore is the score of the top-ranked elite
	BestScore float64

	// MeanScore and StdScore describe all λ offspring scores
	MeanScore float64
	StdScore  float64

	// Elites holds the selected offspring indices, best first
	Elites []int

	// Params is a copy of the parameter vector after this generation's update
	Params []float64
}

// Reporter receives progress every ShowEvery generations.
type Reporter interface {
	Report(stats GenerationStats)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(stats GenerationStats)

func (f ReporterFunc) Report(stats GenerationStats) {
	f(stats)
}

// LogReporter reports progress as structured log records.
type LogReporter struct {
	Logger *slog.Logger
}

func (r LogReporter) Report(stats GenerationStats) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Generation",
		"generation", stats.Generation,
		"best_score", stats.BestScore,
		"mean_score", stats.MeanScore,
		"std_score", stats.StdScore,
	)
}
