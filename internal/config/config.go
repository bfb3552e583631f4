// Package config loads run settings from YAML files.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/canonicales/internal/es"
	"github.com/cwbudde/canonicales/internal/store"
)

// RunFile describes one evolution run.
//
//	objective: bowl
//	target: [3.0, -1.0]
//	initial: [0.0, 0.0]
//	generations: 200
//	offspring: 50
//	parentPercent: 0.25
//	stepSize: 0.5
//	seed: 42
type RunFile struct {
	Objective string    `yaml:"objective"`
	Target    []float64 `yaml:"target,omitempty"`

	// Initial is the starting parameter vector. When empty, a zero vector of
	// length Dimension is used.
	Initial   []float64 `yaml:"initial,omitempty"`
	Dimension int       `yaml:"dimension,omitempty"`

	Generations   int     `yaml:"generations"`
	Offspring     int     `yaml:"offspring"`
	ParentPercent float64 `yaml:"parentPercent"`
	StepSize      float64 `yaml:"stepSize"`

	// Maximize overrides the objective's natural direction when set
	Maximize *bool `yaml:"maximize,omitempty"`

	Recombination string `yaml:"recombination,omitempty"`
	ShowEvery     int    `yaml:"showEvery"`
	Seed          int64  `yaml:"seed"`

	// DataDir enables persisting the run record and trace
	DataDir     string `yaml:"dataDir,omitempty"`
	TraceParams bool   `yaml:"traceParams,omitempty"`
}

// Default returns a RunFile carrying the optimizer defaults.
func Default() RunFile {
	d := es.DefaultConfig()
	return RunFile{
		Objective:     "bowl",
		Dimension:     2,
		Generations:   200,
		Offspring:     50,
		ParentPercent: d.ParentPopulationPercent,
		StepSize:      d.MutationStepSize,
		Recombination: d.Recombination.String(),
		ShowEvery:     d.ShowEvery,
		Seed:          42,
	}
}

// Load reads a YAML run file. Keys absent from the file keep their defaults.
func Load(path string) (RunFile, error) {
	rf := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return rf, fmt.Errorf("failed to read run file: %w", err)
	}
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return rf, fmt.Errorf("failed to parse run file %s: %w", path, err)
	}
	return rf, nil
}

// InitialParams returns a fresh copy of the starting parameter vector.
func (rf RunFile) InitialParams() ([]float64, error) {
	if len(rf.Initial) > 0 {
		if rf.Dimension > 0 && rf.Dimension != len(rf.Initial) {
			return nil, fmt.Errorf("initial has %d values but dimension is %d", len(rf.Initial), rf.Dimension)
		}
		return append([]float64(nil), rf.Initial...), nil
	}
	if rf.Dimension <= 0 {
		return nil, fmt.Errorf("dimension must be positive when no initial vector is given, got %d", rf.Dimension)
	}
	return make([]float64, rf.Dimension), nil
}

// ESConfig converts the file into optimizer hyperparameters. naturalMaximize
// is the objective's own direction, used unless Maximize is set.
func (rf RunFile) ESConfig(naturalMaximize bool) (es.Config, error) {
	recombination, err := es.ParseRecombination(rf.Recombination)
	if err != nil {
		return es.Config{}, err
	}

	cfg := es.DefaultConfig()
	cfg.Generations = rf.Generations
	cfg.OffspringPopulationSize = rf.Offspring
	cfg.ParentPopulationPercent = rf.ParentPercent
	cfg.MutationStepSize = rf.StepSize
	cfg.Maximize = naturalMaximize
	if rf.Maximize != nil {
		cfg.Maximize = *rf.Maximize
	}
	cfg.ShowEvery = rf.ShowEvery
	cfg.Recombination = recombination

	if err := cfg.Validate(); err != nil {
		return es.Config{}, err
	}
	return cfg, nil
}

// StoreConfig returns the persisted form of the run settings.
func (rf RunFile) StoreConfig(cfg es.Config) store.RunConfig {
	return store.RunConfig{
		Objective:               rf.Objective,
		Target:                  rf.Target,
		Generations:             cfg.Generations,
		OffspringPopulationSize: cfg.OffspringPopulationSize,
		ParentPopulationPercent: cfg.ParentPopulationPercent,
		MutationStepSize:        cfg.MutationStepSize,
		Maximize:                cfg.Maximize,
		Recombination:           cfg.Recombination.String(),
		Seed:                    rf.Seed,
	}
}
