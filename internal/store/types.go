package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunConfig is the persisted copy of a run's settings.
type RunConfig struct {
	Objective               string    `json:"objective"`
	Target                  []float64 `json:"target,omitempty"`
	Generations             int       `json:"generations"`
	OffspringPopulationSize int       `json:"offspringPopulationSize"`
	ParentPopulationPercent float64   `json:"parentPopulationPercent"`
	MutationStepSize        float64   `json:"mutationStepSize"`
	Maximize                bool      `json:"maximize"`
	Recombination           string    `json:"recombination"`
	Seed                    int64     `json:"seed"`
}

// RunRecord is the outcome of one finished evolution run.
type RunRecord struct {
	// RunID uniquely identifies the run
	RunID string `json:"runId"`

	Config RunConfig `json:"config"`

	// InitialParams is the parameter vector the run started from
	InitialParams []float64 `json:"initialParams"`

	// FinalParams is the parameter vector after the last generation
	FinalParams []float64 `json:"finalParams"`

	// FinalScore is the objective evaluated at FinalParams
	FinalScore float64 `json:"finalScore"`

	// Generations is the number of completed generations
	Generations int `json:"generations"`

	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// RunInfo contains metadata about a run without the parameter vectors.
type RunInfo struct {
	RunID       string        `json:"runId"`
	Objective   string        `json:"objective"`
	Dimension   int           `json:"dimension"`
	Generations int           `json:"generations"`
	FinalScore  float64       `json:"finalScore"`
	FinishedAt  time.Time     `json:"finishedAt"`
	Duration    time.Duration `json:"duration"`
}

// NewRunID returns a fresh random run identifier.
func NewRunID() string {
	return uuid.New().String()
}

// NewRunRecord creates a record for a finished run with a fresh RunID.
func NewRunRecord(config RunConfig, initial, final []float64, finalScore float64, generations int, startedAt time.Time) *RunRecord {
	return &RunRecord{
		RunID:         NewRunID(),
		Config:        config,
		InitialParams: append([]float64(nil), initial...),
		FinalParams:   append([]float64(nil), final...),
		FinalScore:    finalScore,
		Generations:   generations,
		StartedAt:     startedAt,
		FinishedAt:    time.Now(),
	}
}

// ToInfo converts a full RunRecord to RunInfo (metadata only).
func (r *RunRecord) ToInfo() RunInfo {
	return RunInfo{
		RunID:       r.RunID,
		Objective:   r.Config.Objective,
		Dimension:   len(r.FinalParams),
		Generations: r.Generations,
		FinalScore:  r.FinalScore,
		FinishedAt:  r.FinishedAt,
		Duration:    r.FinishedAt.Sub(r.StartedAt),
	}
}

// Validate checks if the record has valid data.
func (r *RunRecord) Validate() error {
	if r.RunID == "" {
		return &ValidationError{Field: "RunID", Reason: "cannot be empty"}
	}
	if len(r.FinalParams) == 0 {
		return &ValidationError{Field: "FinalParams", Reason: "cannot be empty"}
	}
	if len(r.InitialParams) != len(r.FinalParams) {
		return &ValidationError{
			Field:  "InitialParams",
			Reason: fmt.Sprintf("length mismatch: %d initial vs %d final", len(r.InitialParams), len(r.FinalParams)),
		}
	}
	if r.Generations < 0 {
		return &ValidationError{Field: "Generations", Reason: "cannot be negative"}
	}
	if r.Generations > r.Config.Generations {
		return &ValidationError{
			Field:  "Generations",
			Reason: fmt.Sprintf("%d exceeds configured %d", r.Generations, r.Config.Generations),
		}
	}
	if r.Config.Objective == "" {
		return &ValidationError{Field: "Config.Objective", Reason: "cannot be empty"}
	}
	if r.Config.OffspringPopulationSize <= 0 {
		return &ValidationError{Field: "Config.OffspringPopulationSize", Reason: "must be positive"}
	}
	if r.StartedAt.IsZero() || r.FinishedAt.IsZero() {
		return &ValidationError{Field: "Timestamps", Reason: "cannot be zero"}
	}
	if r.FinishedAt.Before(r.StartedAt) {
		return &ValidationError{Field: "FinishedAt", Reason: "before StartedAt"}
	}
	return nil
}

// ValidationError represents a run record validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}
