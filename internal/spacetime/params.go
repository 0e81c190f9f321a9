package spacetime

import (
	"fmt"
	"math"

	"github.com/san-kum/geodesim/internal/dynamo"
)

type Params struct {
	Mass        float64 `yaml:"mass" json:"mass"`
	AngMomentum float64 `yaml:"spin" json:"spin"`
}

func (p Params) Validate() error {
	if p.Mass <= 0 || math.IsNaN(p.Mass) {
		return fmt.Errorf("%w: mass must be positive, got %g", dynamo.ErrParameterBounds, p.Mass)
	}
	if math.Abs(p.AngMomentum) > p.Mass {
		return fmt.Errorf("%w: |spin| %g exceeds mass %g", dynamo.ErrParameterBounds, p.AngMomentum, p.Mass)
	}
	return nil
}

// Horizon is the outer horizon radius.
func (p Params) Horizon() float64 {
	m, a := p.Mass, p.AngMomentum
	return m + math.Sqrt(m*m-a*a)
}

// TortoiseRadius is r + 2M ln((r-2M)/2M).
func (p Params) TortoiseRadius(r float64) float64 {
	m := p.Mass
	return r + 2*m*math.Log(0.5*(r-2*m)/m)
}

// AdvancedTime maps Schwarzschild time to the Eddington-Finkelstein null coordinate.
func (p Params) AdvancedTime(t, r float64) float64 {
	return t + p.TortoiseRadius(r)
}

// StaticTime is the inverse of AdvancedTime.
func (p Params) StaticTime(u, r float64) float64 {
	return u - p.TortoiseRadius(r)
}
