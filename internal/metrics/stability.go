package metrics

import (
	"math"

	"github.com/san-kum/geodesim/internal/manifold"
)

// MinRadius records the closest approach to the centre (slot 1 in every chart).
type MinRadius struct {
	name    string
	min     float64
	samples int
}

func NewMinRadius() *MinRadius {
	return &MinRadius{name: "min_radius", min: math.Inf(1)}
}

func (m *MinRadius) Name() string { return m.name }

func (m *MinRadius) Observe(v manifold.Vector, lambda float64) {
	m.samples++
	m.min = math.Min(m.min, v.Point().At(1))
}

func (m *MinRadius) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.min
}

func (m *MinRadius) Reset() {
	m.min = math.Inf(1)
	m.samples = 0
}

// Stability is the fraction of samples whose components are all finite and
// bounded by threshold.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(v manifold.Vector, lambda float64) {
	s.samples++
	x, c := v.Point().Coords(), v.Components()
	vals := append(x[:], c[:]...)
	for _, val := range vals {
		if math.IsNaN(val) || math.Abs(val) > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// Defaults returns the diagnostics every run collects.
func Defaults() []Metric {
	return []Metric{NewNormDrift(), NewEnergyDrift(), NewMinRadius(), NewStability(1e12)}
}
