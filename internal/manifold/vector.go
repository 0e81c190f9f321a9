package manifold

// Vector is a tangent vector with contravariant components at a base point.
type Vector struct {
	at Point
	c  Coords
}

func NewVector(at Point, c Coords) Vector {
	return Vector{at: at, c: c}
}

func ZeroVector(at Point) Vector {
	return Vector{at: at}
}

func (v Vector) Point() Point       { return v.at }
func (v Vector) Components() Coords { return v.c }
func (v Vector) At(i int) float64   { return v.c[i] }

// Rebase re-attaches the vector to p without changing its components.
func (v *Vector) Rebase(p Point) {
	v.at = p
}

func (v *Vector) ShiftInPlace(dir []float64, amount float64) {
	for i := 0; i < Dim; i++ {
		v.c[i] += amount * dir[i]
	}
}

func (v Vector) Add(o Vector) Vector {
	for i := 0; i < Dim; i++ {
		v.c[i] += o.c[i]
	}
	return v
}

func (v Vector) Sub(o Vector) Vector {
	for i := 0; i < Dim; i++ {
		v.c[i] -= o.c[i]
	}
	return v
}

func (v Vector) Scale(a float64) Vector {
	for i := 0; i < Dim; i++ {
		v.c[i] *= a
	}
	return v
}

func (v Vector) Tensor() Tensor {
	c := make([]float64, Dim)
	copy(c, v.c[:])
	return Tensor{at: v.at, sig: []Variance{Contravariant}, c: c}
}

// Inner returns g(u, v) at u's base point.
func Inner(u, v Vector) float64 {
	g := MetricAt(u.at)
	return Contract(Contract(g, u.Tensor(), 0, 0), v.Tensor(), 0, 0).Value()
}

// Lower returns the covector g(v, .).
func Lower(v Vector) Tensor {
	return Contract(MetricAt(v.at), v.Tensor(), 1, 0)
}
