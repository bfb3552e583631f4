package es

// Environment scores a parameter vector. It is the only collaborator the
// optimizer calls out to, once per offspring per generation.
//
// The slice passed to Evaluate is a perturbed copy owned by the optimizer and
// must not be modified. Scores are expected to be finite: NaN or Inf scores
// are not detected and corrupt selection for the rest of the run.
type Environment interface {
	Evaluate(params []float64) (float64, error)
}

// EnvironmentFunc adapts a fallible function to Environment.
type EnvironmentFunc func(params []float64) (float64, error)

func (f EnvironmentFunc) Evaluate(params []float64) (float64, error) {
	return f(params)
}

// ScoreFunc adapts an infallible scoring function, such as an optimizer cost
// function, to Environment.
type ScoreFunc func(params []float64) float64

func (f ScoreFunc) Evaluate(params []float64) (float64, error) {
	return f(params), nil
}
