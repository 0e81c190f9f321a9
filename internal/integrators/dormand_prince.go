package integrators

import (
	"math"

	"github.com/san-kum/geodesim/internal/dynamo"
)

// Dormand-Prince 5(4) tableau
var (
	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

// DormandPrince is an adaptive embedded Runge-Kutta integrator with
// first-same-as-last reuse of the final stage.
//
// Steps are never rejected: the error estimate only sizes the next step.
// When the estimate stays above maxErr even at minStep, accuracy degrades
// silently; Stats.OverTolerance counts those steps. The error norm is the
// unweighted Euclidean norm over all state components.
type DormandPrince struct {
	step        float64
	defaultStep float64
	minStep     float64
	maxStep     float64
	maxErr      float64

	last     dynamo.State
	lastStep float64
	stats    Stats
	observer Observer
}

func NewDormandPrince(defaultStep, minStep, maxStep, maxErr float64) *DormandPrince {
	return &DormandPrince{
		step:        defaultStep,
		defaultStep: defaultStep,
		minStep:     minStep,
		maxStep:     maxStep,
		maxErr:      maxErr,
	}
}

func (d *DormandPrince) Name() string { return "dopri5" }

func (d *DormandPrince) Propagate(x dynamo.State, f dynamo.DerivativeFunc, step StepSize) dynamo.State {
	h := step.Resolve(d.step)
	n := len(x)
	evals := 0

	var k1 dynamo.State
	reused := d.last != nil && len(d.last) == n
	if reused {
		k1 = d.last
	} else {
		k1 = f(x)
		evals++
	}

	x2 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x2[i] = x[i] + h*b21*k1[i]
	}
	k2 := f(x2)

	x3 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x3[i] = x[i] + h*(b31*k1[i]+b32*k2[i])
	}
	k3 := f(x3)

	x4 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x4[i] = x[i] + h*(b41*k1[i]+b42*k2[i]+b43*k3[i])
	}
	k4 := f(x4)

	x5 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x5[i] = x[i] + h*(b51*k1[i]+b52*k2[i]+b53*k3[i]+b54*k4[i])
	}
	k5 := f(x5)

	x6 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x6[i] = x[i] + h*(b61*k1[i]+b62*k2[i]+b63*k3[i]+b64*k4[i]+b65*k5[i])
	}
	k6 := f(x6)

	xNew := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		xNew[i] = x[i] + h*(c1*k1[i]+c3*k3[i]+c4*k4[i]+c5*k5[i]+c6*k6[i])
	}

	k7 := f(xNew)
	evals += 6

	sum := 0.0
	for i := 0; i < n; i++ {
		e := h * (dc1*k1[i] + dc3*k3[i] + dc4*k4[i] + dc5*k5[i] + dc6*k6[i] + dc7*k7[i])
		sum += e * e
	}
	errNorm := math.Sqrt(sum)

	next := d.maxStep
	if errNorm != 0 {
		next = h * math.Pow(d.maxErr/errNorm, 0.25)
	}
	d.step = clamp(next, d.minStep, d.maxStep)
	d.last = k7
	d.lastStep = h

	d.stats.Steps++
	d.stats.Evaluations += evals
	if reused {
		d.stats.Reused++
	}
	if errNorm > d.maxErr {
		d.stats.OverTolerance++
	}
	d.stats.LastError = errNorm
	d.stats.LastStep = h
	d.stats.NextStep = d.step

	if d.observer != nil {
		d.observer.ObserveStep(d.Name(), StepInfo{Step: h, Error: errNorm, NextStep: d.step, Evaluations: evals, Reused: reused, OverTol: errNorm > d.maxErr})
	}

	return xNew
}

// Reset drops the cached final stage and restores the configured default step.
func (d *DormandPrince) Reset() {
	d.last = nil
	d.step = d.defaultStep
}

// LastDerivative returns a copy of the cached final stage, if any.
func (d *DormandPrince) LastDerivative() (dynamo.State, bool) {
	if d.last == nil {
		return nil, false
	}
	return d.last.Clone(), true
}

// DefaultStep is the step the next UseDefault request will take.
func (d *DormandPrince) DefaultStep() float64 { return d.step }

func (d *DormandPrince) LastStep() float64      { return d.lastStep }
func (d *DormandPrince) Stats() Stats           { return d.stats }
func (d *DormandPrince) SetObserver(o Observer) { d.observer = o }

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
