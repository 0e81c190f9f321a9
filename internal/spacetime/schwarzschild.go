package spacetime

import (
	"math"

	"github.com/san-kum/geodesim/internal/manifold"
)

const (
	SchwarzschildName = "schwarzschild"
	EddingtonName     = "eddington-finkelstein"
	KerrName          = "kerr"
)

// Schwarzschild uses coordinates (t, r, theta, phi). Valid for r > 2M away
// from the polar axis.
type Schwarzschild struct {
	P Params
}

func (Schwarzschild) Name() string { return SchwarzschildName }

func (Schwarzschild) Theta(x manifold.Coords) float64 { return x[2] }

func (s Schwarzschild) Metric(x manifold.Coords) manifold.Matrix {
	r, th := x[1], x[2]
	f := 1 - 2*s.P.Mass/r
	sin := math.Sin(th)
	var g manifold.Matrix
	g[0][0] = f
	g[1][1] = -1 / f
	g[2][2] = -r * r
	g[3][3] = -r * r * sin * sin
	return g
}

func (s Schwarzschild) InvMetric(x manifold.Coords) manifold.Matrix {
	r, th := x[1], x[2]
	f := 1 - 2*s.P.Mass/r
	sin := math.Sin(th)
	var g manifold.Matrix
	g[0][0] = 1 / f
	g[1][1] = -f
	g[2][2] = -1 / (r * r)
	g[3][3] = -1 / (r * r * sin * sin)
	return g
}

func (s Schwarzschild) Christoffel(x manifold.Coords) manifold.Symbols {
	m := s.P.Mass
	r, th := x[1], x[2]
	sin, cos := math.Sin(th), math.Cos(th)
	var c manifold.Symbols

	c[0][0][1] = m / (r * (r - 2*m))

	c[1][0][0] = m * (r - 2*m) / (r * r * r)
	c[1][1][1] = -m / (r * (r - 2*m))
	c[1][2][2] = -(r - 2*m)
	c[1][3][3] = -(r - 2*m) * sin * sin

	sphericalAngular(&c, r, sin, cos)
	c.Symmetrize()
	return c
}

// sphericalAngular fills the theta and phi rows shared by every spherical chart.
func sphericalAngular(c *manifold.Symbols, r, sin, cos float64) {
	c[2][1][2] = 1 / r
	c[2][3][3] = -sin * cos
	c[3][1][3] = 1 / r
	c[3][2][3] = cos / sin
}

// EddingtonFinkelstein uses (u, r, theta, phi) with u = t + r*, the advanced
// null coordinate. It stays regular across r = 2M.
type EddingtonFinkelstein struct {
	P Params
}

func (EddingtonFinkelstein) Name() string { return EddingtonName }

func (EddingtonFinkelstein) Theta(x manifold.Coords) float64 { return x[2] }

func (e EddingtonFinkelstein) Metric(x manifold.Coords) manifold.Matrix {
	r, th := x[1], x[2]
	f := 1 - 2*e.P.Mass/r
	sin := math.Sin(th)
	var g manifold.Matrix
	g[0][0] = f
	g[0][1] = -1
	g[1][0] = -1
	g[2][2] = -r * r
	g[3][3] = -r * r * sin * sin
	return g
}

func (e EddingtonFinkelstein) InvMetric(x manifold.Coords) manifold.Matrix {
	r, th := x[1], x[2]
	f := 1 - 2*e.P.Mass/r
	sin := math.Sin(th)
	var g manifold.Matrix
	g[0][1] = -1
	g[1][0] = -1
	g[1][1] = -f
	g[2][2] = -1 / (r * r)
	g[3][3] = -1 / (r * r * sin * sin)
	return g
}

func (e EddingtonFinkelstein) Christoffel(x manifold.Coords) manifold.Symbols {
	m := e.P.Mass
	r, th := x[1], x[2]
	sin, cos := math.Sin(th), math.Cos(th)
	var c manifold.Symbols

	c[0][0][0] = m / (r * r)
	c[0][2][2] = -r
	c[0][3][3] = -r * sin * sin

	c[1][0][0] = m * (r - 2*m) / (r * r * r)
	c[1][0][1] = -m / (r * r)
	c[1][2][2] = -(r - 2*m)
	c[1][3][3] = -(r - 2*m) * sin * sin

	sphericalAngular(&c, r, sin, cos)
	c.Symmetrize()
	return c
}
