package spacetime

import (
	"math"
	"strings"

	"github.com/san-kum/geodesim/internal/manifold"
)

func poleName(base string, south bool) string {
	if south {
		return base + "/south-pole"
	}
	return base + "/north-pole"
}

// toStereo projects (theta, phi) onto the plane tangent to the chosen pole.
func toStereo(theta, phi float64, south bool) (x, y float64) {
	if south {
		theta = math.Pi - theta
	}
	tau := math.Tan(theta / 2)
	return tau * math.Cos(phi), tau * math.Sin(phi)
}

func fromStereo(x, y float64, south bool) (theta, phi float64) {
	theta = 2 * math.Atan(math.Hypot(x, y))
	if south {
		theta = math.Pi - theta
	}
	return theta, math.Atan2(y, x)
}

func stereoTheta(x, y float64, south bool) float64 {
	theta := 2 * math.Atan(math.Hypot(x, y))
	if south {
		return math.Pi - theta
	}
	return theta
}

// stereoJacobian is d(x,y)/d(theta,phi).
func stereoJacobian(theta, phi float64, south bool) [2][2]float64 {
	sign := 1.0
	if south {
		theta = math.Pi - theta
		sign = -1
	}
	tau := math.Tan(theta / 2)
	half := (1 + tau*tau) / 2
	sin, cos := math.Sincos(phi)
	return [2][2]float64{
		{sign * half * cos, -tau * sin},
		{sign * half * sin, tau * cos},
	}
}

// stereoInvJacobian is d(theta,phi)/d(x,y). Singular at the pole itself,
// where phi is undefined.
func stereoInvJacobian(x, y float64, south bool) [2][2]float64 {
	sign := 1.0
	if south {
		sign = -1
	}
	rho2 := x*x + y*y
	k := 2 / (math.Sqrt(rho2) * (1 + rho2))
	return [2][2]float64{
		{sign * k * x, sign * k * y},
		{-y / rho2, x / rho2},
	}
}

func embedAngular(b [2][2]float64) manifold.Matrix {
	m := manifold.Identity()
	m[2][2], m[2][3] = b[0][0], b[0][1]
	m[3][2], m[3][3] = b[1][0], b[1][1]
	return m
}

// stereo maps spherical (., ., theta, phi) to pole (., ., x, y), or back when
// inverse is set. The first two slots pass through unchanged.
type stereo struct {
	south   bool
	inverse bool
}

func (s stereo) ConvertPoint(x manifold.Coords) manifold.Coords {
	out := x
	if s.inverse {
		out[2], out[3] = fromStereo(x[2], x[3], s.south)
	} else {
		out[2], out[3] = toStereo(x[2], x[3], s.south)
	}
	return out
}

func (s stereo) Jacobian(x manifold.Coords) manifold.Matrix {
	if s.inverse {
		return embedAngular(stereoInvJacobian(x[2], x[3], s.south))
	}
	return embedAngular(stereoJacobian(x[2], x[3], s.south))
}

func (s stereo) InvJacobian(x manifold.Coords) manifold.Matrix {
	y := s.ConvertPoint(x)
	if s.inverse {
		return embedAngular(stereoJacobian(y[2], y[3], s.south))
	}
	return embedAngular(stereoInvJacobian(y[2], y[3], s.south))
}

// conformal returns A = 4/(1+rho^2)^2, the factor in r^2 A (dx^2 + dy^2).
func conformal(x, y float64) float64 {
	q := 1 + x*x + y*y
	return 4 / (q * q)
}

// stereoAngular fills the x and y rows of a pole chart's connection.
func stereoAngular(c *manifold.Symbols, r, x, y float64) {
	q := 1 + x*x + y*y

	c[2][1][2] = 1 / r
	c[2][2][2] = -2 * x / q
	c[2][2][3] = -2 * y / q
	c[2][3][3] = 2 * x / q

	c[3][1][3] = 1 / r
	c[3][3][3] = -2 * y / q
	c[3][2][3] = -2 * x / q
	c[3][2][2] = 2 * y / q
}

// SchwarzschildPole is Schwarzschild with stereographic angles (t, r, x, y).
type SchwarzschildPole struct {
	P     Params
	South bool
}

func (s SchwarzschildPole) Name() string { return poleName(SchwarzschildName, s.South) }
func (s SchwarzschildPole) BaseChart() string {
	return SchwarzschildName
}
func (s SchwarzschildPole) Theta(x manifold.Coords) float64 {
	return stereoTheta(x[2], x[3], s.South)
}

func (s SchwarzschildPole) Metric(x manifold.Coords) manifold.Matrix {
	r := x[1]
	f := 1 - 2*s.P.Mass/r
	a := conformal(x[2], x[3])
	var g manifold.Matrix
	g[0][0] = f
	g[1][1] = -1 / f
	g[2][2] = -r * r * a
	g[3][3] = -r * r * a
	return g
}

func (s SchwarzschildPole) InvMetric(x manifold.Coords) manifold.Matrix {
	r := x[1]
	f := 1 - 2*s.P.Mass/r
	a := conformal(x[2], x[3])
	var g manifold.Matrix
	g[0][0] = 1 / f
	g[1][1] = -f
	g[2][2] = -1 / (r * r * a)
	g[3][3] = -1 / (r * r * a)
	return g
}

func (s SchwarzschildPole) Christoffel(x manifold.Coords) manifold.Symbols {
	m := s.P.Mass
	r := x[1]
	a := conformal(x[2], x[3])
	var c manifold.Symbols

	c[0][0][1] = m / (r * (r - 2*m))

	c[1][0][0] = m * (r - 2*m) / (r * r * r)
	c[1][1][1] = -m / (r * (r - 2*m))
	c[1][2][2] = -(r - 2*m) * a
	c[1][3][3] = -(r - 2*m) * a

	stereoAngular(&c, r, x[2], x[3])
	c.Symmetrize()
	return c
}

// EddingtonPole is Eddington-Finkelstein with stereographic angles (u, r, x, y).
type EddingtonPole struct {
	P     Params
	South bool
}

func (e EddingtonPole) Name() string { return poleName(EddingtonName, e.South) }
func (e EddingtonPole) BaseChart() string {
	return EddingtonName
}
func (e EddingtonPole) Theta(x manifold.Coords) float64 {
	return stereoTheta(x[2], x[3], e.South)
}

func (e EddingtonPole) Metric(x manifold.Coords) manifold.Matrix {
	r := x[1]
	f := 1 - 2*e.P.Mass/r
	a := conformal(x[2], x[3])
	var g manifold.Matrix
	g[0][0] = f
	g[0][1] = -1
	g[1][0] = -1
	g[2][2] = -r * r * a
	g[3][3] = -r * r * a
	return g
}

func (e EddingtonPole) InvMetric(x manifold.Coords) manifold.Matrix {
	r := x[1]
	f := 1 - 2*e.P.Mass/r
	a := conformal(x[2], x[3])
	var g manifold.Matrix
	g[0][1] = -1
	g[1][0] = -1
	g[1][1] = -f
	g[2][2] = -1 / (r * r * a)
	g[3][3] = -1 / (r * r * a)
	return g
}

func (e EddingtonPole) Christoffel(x manifold.Coords) manifold.Symbols {
	m := e.P.Mass
	r := x[1]
	a := conformal(x[2], x[3])
	var c manifold.Symbols

	c[0][0][0] = m / (r * r)
	c[0][2][2] = -r * a
	c[0][3][3] = -r * a

	c[1][0][0] = m * (r - 2*m) / (r * r * r)
	c[1][0][1] = -m / (r * r)
	c[1][2][2] = -(r - 2*m) * a
	c[1][3][3] = -(r - 2*m) * a

	stereoAngular(&c, r, x[2], x[3])
	c.Symmetrize()
	return c
}

// Spatial maps a position in any chart of the atlas to Cartesian-like
// (X, Y, Z) built from r and the polar angles. Used for plotting only.
func Spatial(chart string, x manifold.Coords) (X, Y, Z float64) {
	theta, phi := x[2], x[3]
	switch {
	case strings.HasSuffix(chart, "/north-pole"):
		theta, phi = fromStereo(x[2], x[3], false)
	case strings.HasSuffix(chart, "/south-pole"):
		theta, phi = fromStereo(x[2], x[3], true)
	}
	r := x[1]
	return r * math.Sin(theta) * math.Cos(phi), r * math.Sin(theta) * math.Sin(phi), r * math.Cos(theta)
}
