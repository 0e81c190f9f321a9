package manifold

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

func dense(m Matrix) *mat.Dense {
	return mat.NewDense(Dim, Dim, m.flat())
}

func identityResidual(prod *mat.Dense) float64 {
	worst := 0.0
	for i := 0; i < Dim; i++ {
		for j := 0; j < Dim; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			worst = math.Max(worst, math.Abs(prod.At(i, j)-want))
		}
	}
	return worst
}

// MetricResidual returns max |g g^-1 - I| at x.
func MetricResidual(c Chart, x Coords) float64 {
	var prod mat.Dense
	prod.Mul(dense(c.Metric(x)), dense(c.InvMetric(x)))
	return identityResidual(&prod)
}

// JacobianResidual returns max |J J^-1 - I| at x.
func JacobianResidual(t Transition, x Coords) float64 {
	var prod mat.Dense
	prod.Mul(dense(t.Jacobian(x)), dense(t.InvJacobian(x)))
	return identityResidual(&prod)
}

func Invert(m Matrix) (Matrix, error) {
	var inv mat.Dense
	if err := inv.Inverse(dense(m)); err != nil {
		return Matrix{}, fmt.Errorf("invert matrix: %w", err)
	}
	var out Matrix
	for i := 0; i < Dim; i++ {
		for j := 0; j < Dim; j++ {
			out[i][j] = inv.At(i, j)
		}
	}
	return out, nil
}

// InverseMetricError compares the chart's closed form inverse metric with a
// numerical inverse of its metric, relative to the largest entry.
func InverseMetricError(c Chart, x Coords) (float64, error) {
	num, err := Invert(c.Metric(x))
	if err != nil {
		return 0, err
	}
	closed := c.InvMetric(x)
	worst, scale := 0.0, 0.0
	for i := 0; i < Dim; i++ {
		for j := 0; j < Dim; j++ {
			worst = math.Max(worst, math.Abs(num[i][j]-closed[i][j]))
			scale = math.Max(scale, math.Abs(closed[i][j]))
		}
	}
	if scale == 0 {
		return worst, nil
	}
	return worst / scale, nil
}
