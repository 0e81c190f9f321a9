package integrators

import "github.com/san-kum/geodesim/internal/dynamo"

// StepSize requests either a fixed step or the integrator's current default.
type StepSize struct {
	h     float64
	fixed bool
}

func UseDefault() StepSize { return StepSize{} }

func Fixed(h float64) StepSize { return StepSize{h: h, fixed: true} }

func (s StepSize) IsDefault() bool { return !s.fixed }

// Resolve returns the requested step, or def when the default was requested.
func (s StepSize) Resolve(def float64) float64 {
	if s.fixed {
		return s.h
	}
	return def
}

type Stats struct {
	Steps         int
	Evaluations   int
	Reused        int
	OverTolerance int
	LastError     float64
	LastStep      float64
	NextStep      float64
}

// StepInfo describes one completed step.
type StepInfo struct {
	Step        float64
	Error       float64
	NextStep    float64
	Evaluations int
	Reused      bool
	OverTol     bool
}

// Observer is notified after every step.
type Observer interface {
	ObserveStep(integrator string, info StepInfo)
}

// Propagator advances a flat state by one step of the affine parameter.
type Propagator interface {
	Name() string
	Propagate(start dynamo.State, f dynamo.DerivativeFunc, step StepSize) dynamo.State
	// Reset drops anything cached from previous calls. Call it whenever the
	// driven state changes discontinuously.
	Reset()
	LastStep() float64
	Stats() Stats
	SetObserver(o Observer)
}

// Body is anything that can be shifted along its own flat derivative.
type Body[T any] interface {
	Len() int
	ShiftInPlace(dir dynamo.State, amount float64)
	Clone() T
}

// PropagateInPlace advances body by one step. The integrator works on the
// displacement from the current state, so every derivative evaluation sees a
// body shifted from the original by a single ShiftInPlace.
func PropagateInPlace[T Body[T]](p Propagator, body T, deriv func(T) dynamo.State, step StepSize) {
	f := func(delta dynamo.State) dynamo.State {
		b := body.Clone()
		b.ShiftInPlace(delta, 1)
		return deriv(b)
	}
	delta := p.Propagate(dynamo.NewState(body.Len()), f, step)
	body.ShiftInPlace(delta, 1)
}
