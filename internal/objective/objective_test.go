package objective

import (
	"math"
	"testing"
)

func TestKnownMinima(t *testing.T) {
	tests := []struct {
		name string
		f    Func
		x    []float64
		want float64
	}{
		{"sphere origin", Sphere, []float64{0, 0, 0}, 0},
		{"sphere point", Sphere, []float64{1, 2}, 5},
		{"rosenbrock ones", Rosenbrock, []float64{1, 1, 1}, 0},
		{"rosenbrock origin", Rosenbrock, []float64{0, 0}, 1},
		{"rastrigin origin", Rastrigin, []float64{0, 0}, 0},
		{"bowl at target", Bowl([]float64{3, -1}), []float64{3, -1}, 0},
		{"bowl at origin", Bowl([]float64{3, -1}), []float64{0, 0}, -10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f(tt.x); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("got %f, want %f", got, tt.want)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	spec, err := Lookup("Bowl", []float64{1})
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if spec.Name != "bowl" || !spec.Maximize {
		t.Errorf("Unexpected spec: %+v", spec)
	}
	if got := spec.Cost()([]float64{3}); got != 4 {
		t.Errorf("Cost mismatch: got %f, want 4", got)
	}

	sphere, err := Lookup("sphere", nil)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if got := sphere.Cost()([]float64{2}); got != 4 {
		t.Errorf("Minimizing objective should be its own cost: got %f", got)
	}

	if _, err := Lookup("ackley", nil); err == nil {
		t.Error("Expected error for unknown objective")
	}
}

func TestNamesSorted(t *testing.T) {
	names := Names()
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("Names not sorted: %v", names)
		}
	}
	if len(names) != 4 {
		t.Errorf("Expected 4 objectives, got %d", len(names))
	}
}
