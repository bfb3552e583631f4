// Package objective provides benchmark functions for exercising optimizers.
package objective

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Func scores a parameter vector
type Func func(x []float64) float64

// Sphere computes sum(x_i^2), minimum 0 at the origin
func Sphere(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return sum
}

// Bowl returns a reward peaking at 0 on target: -sum((x_i - target_i)^2).
// Missing target entries are treated as 0.
func Bowl(target []float64) Func {
	return func(x []float64) float64 {
		var sum float64
		for i, v := range x {
			var t float64
			if i < len(target) {
				t = target[i]
			}
			d := v - t
			sum += d * d
		}
		return -sum
	}
}

// Rosenbrock is the banana-valley function, minimum 0 at (1, ..., 1)
func Rosenbrock(x []float64) float64 {
	var sum float64
	for i := 0; i+1 < len(x); i++ {
		a := x[i+1] - x[i]*x[i]
		b := 1 - x[i]
		sum += 100*a*a + b*b
	}
	return sum
}

// Rastrigin is highly multimodal, minimum 0 at the origin
func Rastrigin(x []float64) float64 {
	sum := 10 * float64(len(x))
	for _, v := range x {
		sum += v*v - 10*math.Cos(2*math.Pi*v)
	}
	return sum
}

// Spec describes a named objective and the direction it should be optimized in.
type Spec struct {
	Name     string
	Maximize bool
	Func     Func
}

// Cost returns the objective as a cost to minimize.
func (s Spec) Cost() Func {
	if !s.Maximize {
		return s.Func
	}
	f := s.Func
	return func(x []float64) float64 {
		return -f(x)
	}
}

var registry = map[string]func(target []float64) Spec{
	"sphere": func([]float64) Spec {
		return Spec{Name: "sphere", Maximize: false, Func: Sphere}
	},
	"bowl": func(target []float64) Spec {
		return Spec{Name: "bowl", Maximize: true, Func: Bowl(target)}
	},
	"rosenbrock": func([]float64) Spec {
		return Spec{Name: "rosenbrock", Maximize: false, Func: Rosenbrock}
	},
	"rastrigin": func([]float64) Spec {
		return Spec{Name: "rastrigin", Maximize: false, Func: Rastrigin}
	},
}

// Names returns the registered objective names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the named objective. target is only used by "bowl".
func Lookup(name string, target []float64) (Spec, error) {
	build, ok := registry[strings.ToLower(name)]
	if !ok {
		return Spec{}, fmt.Errorf("unknown objective %q (valid: %s)", name, strings.Join(Names(), ", "))
	}
	return build(target), nil
}
