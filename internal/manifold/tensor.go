package manifold

import (
	"fmt"
	"strings"
)

type Variance uint8

const (
	Contravariant Variance = iota
	Covariant
)

func (v Variance) String() string {
	if v == Covariant {
		return "covariant"
	}
	return "contravariant"
}

// Tensor is a rank-generic set of Dim^rank components anchored at a point.
// Components are stored row-major: the first index varies slowest.
type Tensor struct {
	at  Point
	sig []Variance
	c   []float64
}

// NewTensor copies comps. It panics when len(comps) is not Dim^len(sig).
func NewTensor(at Point, sig []Variance, comps []float64) Tensor {
	if len(comps) != size(len(sig)) {
		panic(fmt.Sprintf("manifold: rank %d tensor needs %d components, got %d", len(sig), size(len(sig)), len(comps)))
	}
	t := Tensor{at: at, sig: append([]Variance(nil), sig...), c: make([]float64, len(comps))}
	copy(t.c, comps)
	return t
}

func ZeroTensor(at Point, sig ...Variance) Tensor {
	return Tensor{at: at, sig: append([]Variance(nil), sig...), c: make([]float64, size(len(sig)))}
}

func Scalar(at Point, v float64) Tensor {
	return Tensor{at: at, c: []float64{v}}
}

func MetricAt(p Point) Tensor {
	return Tensor{at: p, sig: []Variance{Covariant, Covariant}, c: p.Metric().flat()}
}

func InvMetricAt(p Point) Tensor {
	return Tensor{at: p, sig: []Variance{Contravariant, Contravariant}, c: p.InvMetric().flat()}
}

func ConnectionAt(p Point) Tensor {
	s := p.chart.Christoffel(p.x)
	return Tensor{at: p, sig: []Variance{Contravariant, Covariant, Covariant}, c: s.flat()}
}

// MixedTensor wraps m as a (1,1) tensor with the row index contravariant.
func MixedTensor(at Point, m Matrix) Tensor {
	return Tensor{at: at, sig: []Variance{Contravariant, Covariant}, c: m.flat()}
}

func (t Tensor) Rank() int    { return len(t.sig) }
func (t Tensor) Point() Point { return t.at }

func (t Tensor) Signature() []Variance {
	return append([]Variance(nil), t.sig...)
}

func (t Tensor) Components() []float64 {
	return append([]float64(nil), t.c...)
}

func (t Tensor) Get(idx ...int) float64 {
	return t.c[t.offset(idx)]
}

func (t Tensor) Set(val float64, idx ...int) {
	t.c[t.offset(idx)] = val
}

// Value returns the single component of a rank 0 tensor.
func (t Tensor) Value() float64 {
	if len(t.sig) != 0 {
		panic(fmt.Sprintf("manifold: Value on rank %d tensor", len(t.sig)))
	}
	return t.c[0]
}

// Vector converts a rank 1 contravariant tensor back to a Vector.
func (t Tensor) Vector() Vector {
	if len(t.sig) != 1 || t.sig[0] != Contravariant {
		panic("manifold: tensor is not a vector")
	}
	var c Coords
	copy(c[:], t.c)
	return Vector{at: t.at, c: c}
}

func (t Tensor) Add(o Tensor) Tensor {
	t.mustMatch(o)
	r := t.Clone()
	for i := range r.c {
		r.c[i] += o.c[i]
	}
	return r
}

func (t Tensor) Sub(o Tensor) Tensor {
	t.mustMatch(o)
	r := t.Clone()
	for i := range r.c {
		r.c[i] -= o.c[i]
	}
	return r
}

func (t Tensor) Scale(a float64) Tensor {
	r := t.Clone()
	for i := range r.c {
		r.c[i] *= a
	}
	return r
}

func (t Tensor) Neg() Tensor {
	return t.Scale(-1)
}

func (t Tensor) Clone() Tensor {
	return Tensor{at: t.at, sig: append([]Variance(nil), t.sig...), c: append([]float64(nil), t.c...)}
}

func (t Tensor) String() string {
	parts := make([]string, len(t.sig))
	for i, v := range t.sig {
		if v == Covariant {
			parts[i] = "_"
		} else {
			parts[i] = "^"
		}
	}
	return fmt.Sprintf("Tensor[%s]%v", strings.Join(parts, ""), t.c)
}

// Contract sums index i of a against index j of b. The indices must have
// opposite variance. The result carries a's remaining indices followed by
// b's, and is anchored at a's base point. Chart and base point agreement
// is the caller's responsibility.
func Contract(a, b Tensor, i, j int) Tensor {
	ra, rb := len(a.sig), len(b.sig)
	if i < 0 || i >= ra || j < 0 || j >= rb {
		panic(fmt.Sprintf("manifold: contraction index out of range (%d of %d, %d of %d)", i, ra, j, rb))
	}
	if a.sig[i] == b.sig[j] {
		panic(fmt.Sprintf("manifold: cannot contract two %s indices", a.sig[i]))
	}

	sig := make([]Variance, 0, ra+rb-2)
	sig = append(sig, a.sig[:i]...)
	sig = append(sig, a.sig[i+1:]...)
	sig = append(sig, b.sig[:j]...)
	sig = append(sig, b.sig[j+1:]...)

	out := make([]float64, size(len(sig)))
	ia := make([]int, ra)
	ib := make([]int, rb)
	idx := make([]int, len(sig))

	for n := range out {
		decode(n, idx)
		k := 0
		for m := 0; m < ra; m++ {
			if m == i {
				continue
			}
			ia[m] = idx[k]
			k++
		}
		for m := 0; m < rb; m++ {
			if m == j {
				continue
			}
			ib[m] = idx[k]
			k++
		}
		sum := 0.0
		for s := 0; s < Dim; s++ {
			ia[i] = s
			ib[j] = s
			sum += a.c[offset(ia)] * b.c[offset(ib)]
		}
		out[n] = sum
	}

	return Tensor{at: a.at, sig: sig, c: out}
}

func (t Tensor) mustMatch(o Tensor) {
	if len(t.sig) != len(o.sig) {
		panic(fmt.Sprintf("manifold: rank mismatch %d != %d", len(t.sig), len(o.sig)))
	}
	for i := range t.sig {
		if t.sig[i] != o.sig[i] {
			panic(fmt.Sprintf("manifold: variance mismatch at index %d", i))
		}
	}
}

func (t Tensor) offset(idx []int) int {
	if len(idx) != len(t.sig) {
		panic(fmt.Sprintf("manifold: %d indices for rank %d tensor", len(idx), len(t.sig)))
	}
	return offset(idx)
}

func offset(idx []int) int {
	off := 0
	for _, i := range idx {
		off = off*Dim + i
	}
	return off
}

func decode(n int, idx []int) {
	for k := len(idx) - 1; k >= 0; k-- {
		idx[k] = n % Dim
		n /= Dim
	}
}

func size(rank int) int {
	n := 1
	for i := 0; i < rank; i++ {
		n *= Dim
	}
	return n
}
