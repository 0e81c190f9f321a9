package manifold

// Dim is the dimension of every chart handled by the engine.
const Dim = 4

type Coords [Dim]float64

type Matrix [Dim][Dim]float64

// Symbols holds Christoffel symbols of the second kind, Gamma^a_bc at [a][b][c].
type Symbols [Dim][Dim][Dim]float64

// Chart is one coordinate patch. Implementations must be pure functions of
// the coordinates. Outside the advertised domain they may return NaN or Inf.
type Chart interface {
	Name() string
	Metric(x Coords) Matrix
	InvMetric(x Coords) Matrix
	Christoffel(x Coords) Symbols
}

// SameChart reports whether two charts are the same patch.
func SameChart(a, b Chart) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Name() == b.Name()
}

func Identity() Matrix {
	var m Matrix
	for i := 0; i < Dim; i++ {
		m[i][i] = 1
	}
	return m
}

func (m Matrix) Mul(o Matrix) Matrix {
	var r Matrix
	for i := 0; i < Dim; i++ {
		for j := 0; j < Dim; j++ {
			s := 0.0
			for k := 0; k < Dim; k++ {
				s += m[i][k] * o[k][j]
			}
			r[i][j] = s
		}
	}
	return r
}

func (m Matrix) T() Matrix {
	var r Matrix
	for i := 0; i < Dim; i++ {
		for j := 0; j < Dim; j++ {
			r[i][j] = m[j][i]
		}
	}
	return r
}

func (m Matrix) Apply(v Coords) Coords {
	var r Coords
	for i := 0; i < Dim; i++ {
		for j := 0; j < Dim; j++ {
			r[i] += m[i][j] * v[j]
		}
	}
	return r
}

func (m Matrix) flat() []float64 {
	out := make([]float64, 0, Dim*Dim)
	for i := 0; i < Dim; i++ {
		out = append(out, m[i][:]...)
	}
	return out
}

func (s *Symbols) flat() []float64 {
	out := make([]float64, 0, Dim*Dim*Dim)
	for a := 0; a < Dim; a++ {
		for b := 0; b < Dim; b++ {
			out = append(out, s[a][b][:]...)
		}
	}
	return out
}

// Symmetrize copies Gamma^a_bc into Gamma^a_cb for every b < c.
func (s *Symbols) Symmetrize() {
	for a := 0; a < Dim; a++ {
		for b := 0; b < Dim; b++ {
			for c := b + 1; c < Dim; c++ {
				s[a][c][b] = s[a][b][c]
			}
		}
	}
}

// Point is a coordinate tuple tagged with its chart.
type Point struct {
	chart Chart
	x     Coords
}

func NewPoint(c Chart, x Coords) Point {
	return Point{chart: c, x: x}
}

func (p Point) Chart() Chart   { return p.chart }
func (p Point) Coords() Coords { return p.x }
func (p Point) At(i int) float64 {
	return p.x[i]
}

// ShiftInPlace moves the point by amount*dir. dir must hold at least Dim values.
func (p *Point) ShiftInPlace(dir []float64, amount float64) {
	for i := 0; i < Dim; i++ {
		p.x[i] += amount * dir[i]
	}
}

func (p Point) Metric() Matrix    { return p.chart.Metric(p.x) }
func (p Point) InvMetric() Matrix { return p.chart.InvMetric(p.x) }
