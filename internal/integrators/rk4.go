package integrators

import "github.com/san-kum/geodesim/internal/dynamo"

// RK4 is the classic fixed-step fourth order method.
type RK4 struct {
	step           float64
	k1, k2, k3, k4 dynamo.State
	scratch        dynamo.State
	lastStep       float64
	stats          Stats
	observer       Observer
}

func NewRK4(step float64) *RK4 {
	return &RK4{step: step}
}

func (r *RK4) Name() string { return "rk4" }

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(dynamo.State, n)
		r.k2 = make(dynamo.State, n)
		r.k3 = make(dynamo.State, n)
		r.k4 = make(dynamo.State, n)
		r.scratch = make(dynamo.State, n)
	}
}

func (r *RK4) Propagate(x dynamo.State, f dynamo.DerivativeFunc, step StepSize) dynamo.State {
	h := step.Resolve(r.step)
	n := len(x)
	r.ensureScratch(n)

	copy(r.k1, f(x))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + h*0.5*r.k1[i]
	}
	copy(r.k2, f(r.scratch))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + h*0.5*r.k2[i]
	}
	copy(r.k3, f(r.scratch))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + h*r.k3[i]
	}
	copy(r.k4, f(r.scratch))

	result := make(dynamo.State, n)
	h6 := h / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + h6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}

	r.lastStep = h
	r.stats.Steps++
	r.stats.Evaluations += 4
	r.stats.LastStep = h
	r.stats.NextStep = r.step
	if r.observer != nil {
		r.observer.ObserveStep(r.Name(), StepInfo{Step: h, NextStep: r.step, Evaluations: 4})
	}
	return result
}

// Reset is a no-op: RK4 caches no stages between calls.
func (r *RK4) Reset() {}

func (r *RK4) LastStep() float64      { return r.lastStep }
func (r *RK4) Stats() Stats           { return r.stats }
func (r *RK4) SetObserver(o Observer) { r.observer = o }
