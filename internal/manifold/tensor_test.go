package manifold

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type minkowski struct{}

func (minkowski) Name() string { return "minkowski" }
func (minkowski) Metric(Coords) Matrix {
	return Matrix{{1, 0, 0, 0}, {0, -1, 0, 0}, {0, 0, -1, 0}, {0, 0, 0, -1}}
}
func (m minkowski) InvMetric(x Coords) Matrix { return m.Metric(x) }
func (minkowski) Christoffel(Coords) Symbols  { return Symbols{} }

func origin() Point {
	return NewPoint(minkowski{}, Coords{})
}

func TestInner_Minkowski(t *testing.T) {
	p := origin()
	u := NewVector(p, Coords{2, 1, 0, 0})
	v := NewVector(p, Coords{1, 0, 3, 0})

	assert.Equal(t, 3.0, Inner(u, u))
	assert.Equal(t, 2.0, Inner(u, v))
	assert.Equal(t, -8.0, Inner(v, v))

	low := Lower(u)
	assert.Equal(t, []Variance{Covariant}, low.Signature())
	assert.Equal(t, []float64{2, -1, 0, 0}, low.Components())
}

func TestContract_MatchesExplicitSums(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	p := origin()

	comps := make([]float64, Dim*Dim*Dim)
	for i := range comps {
		comps[i] = rng.Float64()*2 - 1
	}
	gamma := NewTensor(p, []Variance{Contravariant, Covariant, Covariant}, comps)
	u := NewVector(p, Coords{0.3, -1.2, 0.7, 2.0})
	w := NewVector(p, Coords{1.1, 0.4, -0.5, 0.9})

	got := Contract(Contract(gamma, u.Tensor(), 1, 0), w.Tensor(), 1, 0)
	require.Equal(t, 1, got.Rank())

	for a := 0; a < Dim; a++ {
		want := 0.0
		for b := 0; b < Dim; b++ {
			for c := 0; c < Dim; c++ {
				want += gamma.Get(a, b, c) * u.At(b) * w.At(c)
			}
		}
		assert.InDelta(t, want, got.Get(a), 1e-12)
	}

	// contracting the last covariant slot first gives the mirrored sum
	mirrored := Contract(Contract(gamma, u.Tensor(), 2, 0), w.Tensor(), 1, 0)
	for a := 0; a < Dim; a++ {
		want := 0.0
		for b := 0; b < Dim; b++ {
			for c := 0; c < Dim; c++ {
				want += gamma.Get(a, b, c) * w.At(b) * u.At(c)
			}
		}
		assert.InDelta(t, want, mirrored.Get(a), 1e-12)
	}
}

func TestContract_ResultIndexOrder(t *testing.T) {
	p := origin()
	m := ZeroTensor(p, Contravariant, Covariant)
	m.Set(5, 2, 1)
	cov := NewTensor(p, []Variance{Covariant}, []float64{0, 0, 1, 0})

	// sum over m's first index leaves its covariant index
	out := Contract(cov, m, 0, 0)
	assert.Equal(t, []Variance{Covariant}, out.Signature())
	assert.Equal(t, []float64{0, 5, 0, 0}, out.Components())
}

func TestContract_RejectsMatchingVariance(t *testing.T) {
	p := origin()
	u := NewVector(p, Coords{1, 0, 0, 0}).Tensor()
	assert.Panics(t, func() { Contract(u, u, 0, 0) })
	assert.Panics(t, func() { Contract(MetricAt(p), u, 2, 0) })
}

func TestNewTensor_ComponentCount(t *testing.T) {
	assert.Panics(t, func() { NewTensor(origin(), []Variance{Covariant}, []float64{1, 2}) })
	assert.NotPanics(t, func() { NewTensor(origin(), nil, []float64{1}) })
}

func TestTensor_LinearOps(t *testing.T) {
	p := origin()
	g := MetricAt(p)

	sum := g.Add(g.Scale(2))
	assert.Equal(t, 3.0, sum.Get(0, 0))
	assert.Equal(t, -3.0, sum.Get(3, 3))
	assert.Equal(t, -1.0, g.Neg().Get(0, 0))
	assert.Equal(t, 0.0, sum.Sub(g.Scale(3)).Get(1, 1))

	// operations never alias their inputs
	assert.Equal(t, 1.0, g.Get(0, 0))

	assert.Panics(t, func() { g.Add(InvMetricAt(p)) })
	assert.Panics(t, func() { g.Add(Scalar(p, 1)) })
}

func TestTensor_ValueAndVector(t *testing.T) {
	p := origin()
	assert.Equal(t, 4.0, Scalar(p, 4).Value())
	assert.Panics(t, func() { MetricAt(p).Value() })

	v := NewVector(p, Coords{1, 2, 3, 4})
	assert.Equal(t, v, v.Tensor().Vector())
	assert.Panics(t, func() { Lower(v).Vector() })
}

func TestPoint_ShiftAndRebase(t *testing.T) {
	p := origin()
	p.ShiftInPlace([]float64{1, 2, 3, 4}, 0.5)
	assert.Equal(t, Coords{0.5, 1, 1.5, 2}, p.Coords())

	v := ZeroVector(origin())
	v.Rebase(p)
	assert.Equal(t, p, v.Point())
}

func TestMatrix_Algebra(t *testing.T) {
	m := Matrix{{1, 2, 0, 0}, {0, 1, 0, 0}, {0, 0, 2, 0}, {0, 0, 0, 1}}
	assert.Equal(t, m, m.Mul(Identity()))
	assert.Equal(t, Coords{5, 2, 6, 4}, m.Apply(Coords{1, 2, 3, 4}))
	assert.Equal(t, 2.0, m.T()[1][0])

	inv, err := Invert(m)
	require.NoError(t, err)
	prod := m.Mul(inv)
	for i := 0; i < Dim; i++ {
		for j := 0; j < Dim; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			assert.InDelta(t, want, prod[i][j], 1e-14)
		}
	}

	_, err = Invert(Matrix{})
	assert.Error(t, err)
}

func TestSymbols_Symmetrize(t *testing.T) {
	var s Symbols
	s[1][0][3] = 7
	s.Symmetrize()
	assert.Equal(t, 7.0, s[1][3][0])
}
