package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/geodesim/internal/dynamo"
)

func TestRK4Accuracy(t *testing.T) {
	integ := NewRK4(0.01)

	x0 := dynamo.State{1.0, 0.0}
	steps := 100

	x := x0
	for i := 0; i < steps; i++ {
		x = integ.Propagate(x, harmonic, UseDefault())
	}

	expectedX := math.Cos(float64(steps) * 0.01)
	expectedV := -math.Sin(float64(steps) * 0.01)

	if math.Abs(x[0]-expectedX) > 1e-8 {
		t.Errorf("position error too large: got %.10f, expected %.10f", x[0], expectedX)
	}

	if math.Abs(x[1]-expectedV) > 1e-8 {
		t.Errorf("velocity error too large: got %.10f, expected %.10f", x[1], expectedV)
	}

	if integ.Stats().Evaluations != 4*steps {
		t.Errorf("expected %d evaluations, got %d", 4*steps, integ.Stats().Evaluations)
	}
}

func TestEulerFirstOrder(t *testing.T) {
	integ := NewEuler(0.1)
	x := integ.Propagate(dynamo.State{1, 0}, harmonic, UseDefault())
	if x[0] != 1 || x[1] != -0.1 {
		t.Errorf("unexpected euler step: %v", x)
	}

	x = integ.Propagate(dynamo.State{1, 0}, harmonic, Fixed(0.5))
	if x[1] != -0.5 {
		t.Errorf("fixed step ignored: %v", x)
	}
}

func TestDormandPrinceBeatsRK4(t *testing.T) {
	rk4 := NewRK4(0.1)
	dp := NewDormandPrince(0.1, 0.1, 0.1, 1e-12)

	x4 := dynamo.State{1, 0}
	x5 := dynamo.State{1, 0}
	for i := 0; i < 100; i++ {
		x4 = rk4.Propagate(x4, harmonic, UseDefault())
		x5 = dp.Propagate(x5, harmonic, UseDefault())
	}

	exact := dynamo.State{math.Cos(10), -math.Sin(10)}
	e4 := x4.Sub(exact).Norm()
	e5 := x5.Sub(exact).Norm()
	t.Logf("rk4 error %.3e, dopri5 error %.3e", e4, e5)
	if e5 >= e4 {
		t.Errorf("dopri5 (%.3e) should beat rk4 (%.3e) at equal step", e5, e4)
	}
}
