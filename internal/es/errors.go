package es

import "fmt"

// ErrInvalidConfig matches any *ConfigError.
// Use errors.Is(err, ErrInvalidConfig) to check for a configuration problem.
var ErrInvalidConfig = &ConfigError{}

// ConfigError reports a violated precondition of a run.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "invalid config"
	}
	return "invalid config: " + e.Field + " " + e.Reason
}

func (e *ConfigError) Is(target error) bool {
	_, ok := target.(*ConfigError)
	return ok
}

// EvaluationError wraps an error returned by the environment with the
// position in the run where it happened.
type EvaluationError struct {
	Generation int // 1-indexed
	Offspring  int
	Err        error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluation failed at generation %d, offspring %d: %v", e.Generation, e.Offspring, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}
