package spacetime

import (
	"math"

	"github.com/san-kum/geodesim/internal/manifold"
)

type conversion struct {
	manifold.Transition
	from, to manifold.Chart
}

func (c conversion) From() manifold.Chart { return c.from }
func (c conversion) To() manifold.Chart   { return c.to }

// NewConversion binds a coordinate transition to its two charts.
func NewConversion(from, to manifold.Chart, t manifold.Transition) manifold.Conversion {
	return conversion{Transition: t, from: from, to: to}
}

// advanced maps Schwarzschild (t, r) to Eddington-Finkelstein (u, r), or back
// when inverse is set. Angles pass through.
type advanced struct {
	p       Params
	inverse bool
}

func (a advanced) ConvertPoint(x manifold.Coords) manifold.Coords {
	out := x
	if a.inverse {
		out[0] = a.p.StaticTime(x[0], x[1])
	} else {
		out[0] = a.p.AdvancedTime(x[0], x[1])
	}
	return out
}

// dudr is du/dr at fixed t, which is r/(r-2M).
func (a advanced) dudr(r float64) float64 {
	return r / (r - 2*a.p.Mass)
}

func (a advanced) Jacobian(x manifold.Coords) manifold.Matrix {
	m := manifold.Identity()
	if a.inverse {
		m[0][1] = -a.dudr(x[1])
	} else {
		m[0][1] = a.dudr(x[1])
	}
	return m
}

func (a advanced) InvJacobian(x manifold.Coords) manifold.Matrix {
	m := manifold.Identity()
	if a.inverse {
		m[0][1] = a.dudr(x[1])
	} else {
		m[0][1] = -a.dudr(x[1])
	}
	return m
}

// Conversions returns every transition between the charts of p.
func Conversions(p Params) []manifold.Conversion {
	schw := Schwarzschild{P: p}
	ef := EddingtonFinkelstein{P: p}
	kerr := Kerr{P: p}

	convs := []manifold.Conversion{
		NewConversion(schw, ef, advanced{p: p}),
		NewConversion(ef, schw, advanced{p: p, inverse: true}),
	}
	for _, south := range []bool{false, true} {
		sp := SchwarzschildPole{P: p, South: south}
		ep := EddingtonPole{P: p, South: south}
		kp := NewKerrPole(p, south)
		convs = append(convs,
			NewConversion(schw, sp, stereo{south: south}),
			NewConversion(sp, schw, stereo{south: south, inverse: true}),
			NewConversion(ef, ep, stereo{south: south}),
			NewConversion(ep, ef, stereo{south: south, inverse: true}),
			NewConversion(kerr, kp, stereo{south: south}),
			NewConversion(kp, kerr, stereo{south: south, inverse: true}),
		)
	}
	return convs
}

// NewAtlas registers every chart and conversion for p.
func NewAtlas(p Params) *manifold.Atlas {
	atlas := manifold.NewAtlas()
	atlas.Register(Conversions(p)...)
	return atlas
}

// Polar is implemented by charts that can report the polar angle of a point.
type Polar interface {
	manifold.Chart
	Theta(x manifold.Coords) float64
}

type poleChart interface {
	BaseChart() string
}

// PoleSwitch reports the chart a body at x should move to. A spherical chart
// hands over to the nearer pole chart once sin(theta) drops below threshold;
// a pole chart hands back once sin(theta) exceeds twice the threshold.
func PoleSwitch(c manifold.Chart, x manifold.Coords, threshold float64) (string, bool) {
	polar, ok := c.(Polar)
	if !ok {
		return "", false
	}
	theta := polar.Theta(x)
	sin := math.Abs(math.Sin(theta))

	if pc, ok := c.(poleChart); ok {
		if sin > 2*threshold {
			return pc.BaseChart(), true
		}
		return "", false
	}
	if sin < threshold {
		return poleName(c.Name(), theta > math.Pi/2), true
	}
	return "", false
}
