package spacetime

import (
	"math"

	"github.com/san-kum/geodesim/internal/manifold"
)

// Kerr uses ingoing Kerr coordinates (v, r, theta, phi). With zero spin it
// coincides with EddingtonFinkelstein. The connection is numeric.
type Kerr struct {
	P Params
}

func (Kerr) Name() string { return KerrName }

func (Kerr) Theta(x manifold.Coords) float64 { return x[2] }

func (k Kerr) Metric(x manifold.Coords) manifold.Matrix {
	m, a := k.P.Mass, k.P.AngMomentum
	r, th := x[1], x[2]
	sin, cos := math.Sincos(th)
	s2 := sin * sin
	rho2 := r*r + a*a*cos*cos

	var g manifold.Matrix
	g[0][0] = 1 - 2*m*r/rho2
	g[0][1] = -1
	g[0][3] = 2 * m * a * r * s2 / rho2
	g[1][3] = a * s2
	g[2][2] = -rho2
	g[3][3] = -(r*r + a*a + 2*m*r*a*a*s2/rho2) * s2

	g[1][0] = g[0][1]
	g[3][0] = g[0][3]
	g[3][1] = g[1][3]
	return g
}

func (k Kerr) InvMetric(x manifold.Coords) manifold.Matrix {
	m, a := k.P.Mass, k.P.AngMomentum
	r, th := x[1], x[2]
	sin, cos := math.Sincos(th)
	s2 := sin * sin
	rho2 := r*r + a*a*cos*cos
	delta := r*r - 2*m*r + a*a

	var g manifold.Matrix
	g[0][0] = -a * a * s2 / rho2
	g[0][1] = -(r*r + a*a) / rho2
	g[0][3] = -a / rho2
	g[1][1] = -delta / rho2
	g[1][3] = -a / rho2
	g[2][2] = -1 / rho2
	g[3][3] = -1 / (rho2 * s2)

	g[1][0] = g[0][1]
	g[3][0] = g[0][3]
	g[3][1] = g[1][3]
	return g
}

func (k Kerr) Christoffel(x manifold.Coords) manifold.Symbols {
	return manifold.NumericConnection(k, x, manifold.DefaultDiffStep)
}

// KerrPole is the Kerr metric pulled back to stereographic angles.
type KerrPole struct {
	manifold.Reprojected
	South bool
}

func NewKerrPole(p Params, south bool) KerrPole {
	base := Kerr{P: p}
	return KerrPole{
		Reprojected: manifold.NewReprojected(poleName(KerrName, south), base, stereo{south: south, inverse: true}),
		South:       south,
	}
}

func (k KerrPole) BaseChart() string { return KerrName }

func (k KerrPole) Theta(x manifold.Coords) float64 {
	return stereoTheta(x[2], x[3], k.South)
}
