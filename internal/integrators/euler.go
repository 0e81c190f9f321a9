package integrators

import "github.com/san-kum/geodesim/internal/dynamo"

type Euler struct {
	step     float64
	lastStep float64
	stats    Stats
	observer Observer
}

func NewEuler(step float64) *Euler {
	return &Euler{step: step}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Propagate(x dynamo.State, f dynamo.DerivativeFunc, step StepSize) dynamo.State {
	h := step.Resolve(e.step)
	dx := f(x)
	result := make(dynamo.State, len(x))
	for i := range x {
		result[i] = x[i] + h*dx[i]
	}
	e.lastStep = h
	e.stats.Steps++
	e.stats.Evaluations++
	e.stats.LastStep = h
	e.stats.NextStep = e.step
	if e.observer != nil {
		e.observer.ObserveStep(e.Name(), StepInfo{Step: h, NextStep: e.step, Evaluations: 1})
	}
	return result
}

func (e *Euler) Reset() {}

func (e *Euler) LastStep() float64      { return e.lastStep }
func (e *Euler) Stats() Stats           { return e.stats }
func (e *Euler) SetObserver(o Observer) { e.observer = o }
