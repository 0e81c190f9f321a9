package manifold

// Transition is a coordinate map between two patches, without the chart
// identities attached. Both matrices are evaluated at source coordinates.
type Transition interface {
	ConvertPoint(x Coords) Coords
	Jacobian(x Coords) Matrix
	InvJacobian(x Coords) Matrix
}

// Conversion is a Transition from one chart to another.
type Conversion interface {
	Transition
	From() Chart
	To() Chart
}

func ConvertPoint(c Conversion, p Point) Point {
	return Point{chart: c.To(), x: c.ConvertPoint(p.x)}
}

func JacobianAt(c Conversion, p Point) Tensor {
	return MixedTensor(p, c.Jacobian(p.x))
}

func InvJacobianAt(c Conversion, p Point) Tensor {
	return MixedTensor(p, c.InvJacobian(p.x))
}

// ConvertVector pushes v forward through the Jacobian and re-anchors it at
// the converted base point.
func ConvertVector(c Conversion, v Vector) Vector {
	return Vector{at: ConvertPoint(c, v.at), c: c.Jacobian(v.at.x).Apply(v.c)}
}

// ConvertTensor transforms every contravariant index with the Jacobian and
// every covariant index with the inverse Jacobian.
func ConvertTensor(c Conversion, t Tensor) Tensor {
	j := c.Jacobian(t.at.x)
	inv := c.InvJacobian(t.at.x)
	comps := append([]float64(nil), t.c...)
	for pos, v := range t.sig {
		if v == Contravariant {
			comps = transformIndex(comps, len(t.sig), pos, j, false)
		} else {
			comps = transformIndex(comps, len(t.sig), pos, inv, true)
		}
	}
	return Tensor{at: ConvertPoint(c, t.at), sig: append([]Variance(nil), t.sig...), c: comps}
}

// transformIndex applies m (or its transpose) to index pos of a flat tensor.
func transformIndex(c []float64, rank, pos int, m Matrix, transposed bool) []float64 {
	out := make([]float64, len(c))
	idx := make([]int, rank)
	for n := range out {
		decode(n, idx)
		target := idx[pos]
		sum := 0.0
		for k := 0; k < Dim; k++ {
			idx[pos] = k
			coef := m[target][k]
			if transposed {
				coef = m[k][target]
			}
			sum += coef * c[offset(idx)]
		}
		out[n] = sum
	}
	return out
}
