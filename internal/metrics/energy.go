package metrics

import (
	"math"

	"github.com/san-kum/geodesim/internal/manifold"
)

// Metric accumulates a diagnostic along a worldline.
type Metric interface {
	Name() string
	Observe(v manifold.Vector, lambda float64)
	Value() float64
	Reset()
}

// NormDrift tracks the largest absolute change of g(v, v) from its first
// sample. Absolute rather than relative so that null geodesics are covered.
type NormDrift struct {
	name     string
	initial  float64
	current  float64
	maxDrift float64
	samples  int
}

func NewNormDrift() *NormDrift {
	return &NormDrift{name: "norm_drift"}
}

func (n *NormDrift) Name() string { return n.name }

func (n *NormDrift) Observe(v manifold.Vector, lambda float64) {
	norm := manifold.Inner(v, v)
	if n.samples == 0 {
		n.initial = norm
	}
	n.current = norm
	n.samples++
	n.maxDrift = math.Max(n.maxDrift, math.Abs(norm-n.initial))
}

func (n *NormDrift) Value() float64   { return n.maxDrift }
func (n *NormDrift) Current() float64 { return n.current }

func (n *NormDrift) Reset() {
	n.initial = 0
	n.current = 0
	n.maxDrift = 0
	n.samples = 0
}

// EnergyDrift tracks the conserved Killing energy g(d/dt, v), relative to
// its first sample. Every chart in the atlas keeps the static time as slot 0.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(v manifold.Vector, lambda float64) {
	energy := Energy(v)

	if e.samples == 0 {
		e.initialEnergy = energy
	}

	e.currentEnergy = energy
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

// Energy returns g_0a v^a.
func Energy(v manifold.Vector) float64 {
	return manifold.Lower(v).Get(0)
}
