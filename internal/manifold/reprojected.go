package manifold

// Reprojected is a chart whose metric is the pullback of a base chart's
// metric through a fixed transition. Its connection is numeric.
type Reprojected struct {
	name   string
	base   Chart
	toBase Transition
	h      float64
}

// NewReprojected builds a chart named name from base. toBase maps this
// chart's coordinates to base coordinates.
func NewReprojected(name string, base Chart, toBase Transition) Reprojected {
	return Reprojected{name: name, base: base, toBase: toBase, h: DefaultDiffStep}
}

func (r Reprojected) Name() string { return r.name }
func (r Reprojected) Base() Chart  { return r.base }

func (r Reprojected) Metric(x Coords) Matrix {
	j := r.toBase.Jacobian(x)
	g := r.base.Metric(r.toBase.ConvertPoint(x))
	return j.T().Mul(g).Mul(j)
}

func (r Reprojected) InvMetric(x Coords) Matrix {
	k := r.toBase.InvJacobian(x)
	ginv := r.base.InvMetric(r.toBase.ConvertPoint(x))
	return k.Mul(ginv).Mul(k.T())
}

func (r Reprojected) Christoffel(x Coords) Symbols {
	return NumericConnection(r, x, r.h)
}
