package dynamo

import (
	"fmt"
	"math"
)

// State is the flat numeric vector the integrators operate on. Its length is
// fixed by the body that produced it: 2*D for a particle, 5*D for an entity.
type State []float64

func NewState(n int) State {
	return make(State, n)
}

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Norm is the unweighted Euclidean norm over every component.
func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Add(other State) State {
	mustMatch(s, other)
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] + other[i]
	}
	return result
}

func (s State) Sub(other State) State {
	mustMatch(s, other)
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] - other[i]
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

func (s State) Div(divisor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] / divisor
	}
	return result
}

func (s State) Neg() State {
	return s.Scale(-1)
}

// AddScaledInPlace performs s += factor*other without allocating.
func (s State) AddScaledInPlace(other State, factor float64) {
	mustMatch(s, other)
	for i := range s {
		s[i] += factor * other[i]
	}
}

// Lerp returns s + frac*(other-s).
func (s State) Lerp(other State, frac float64) State {
	mustMatch(s, other)
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] + frac*(other[i]-s[i])
	}
	return result
}

func mustMatch(a, b State) {
	if len(a) != len(b) {
		panic(fmt.Sprintf("dynamo: state length mismatch %d != %d", len(a), len(b)))
	}
}

// DerivativeFunc maps a state to its derivative with respect to the affine
// parameter. It must be a pure function of its argument.
type DerivativeFunc func(x State) State

type Result struct {
	States      []State
	Params      []float64
	Metrics     map[string]float64
	StepsTaken  int
	Evaluations int
	Errors      []error
}
