package manifold

import "math"

// DefaultDiffStep is the relative step used by the finite difference helpers.
const DefaultDiffStep = 1e-5

// MetricField is the part of a chart needed to derive its connection.
type MetricField interface {
	Metric(x Coords) Matrix
	InvMetric(x Coords) Matrix
}

// NumericConnection evaluates Gamma^a_bc = 1/2 g^ad (d_b g_dc + d_c g_db - d_d g_bc)
// with central differences of the metric. h is scaled by max(1, |x^i|)
// per coordinate.
func NumericConnection(f MetricField, x Coords, h float64) Symbols {
	var dg [Dim]Matrix
	for k := 0; k < Dim; k++ {
		step := h * math.Max(1, math.Abs(x[k]))
		xp, xm := x, x
		xp[k] += step
		xm[k] -= step
		gp, gm := f.Metric(xp), f.Metric(xm)
		for i := 0; i < Dim; i++ {
			for j := 0; j < Dim; j++ {
				dg[k][i][j] = (gp[i][j] - gm[i][j]) / (2 * step)
			}
		}
	}

	ginv := f.InvMetric(x)
	var s Symbols
	for a := 0; a < Dim; a++ {
		for b := 0; b < Dim; b++ {
			for c := b; c < Dim; c++ {
				sum := 0.0
				for d := 0; d < Dim; d++ {
					sum += ginv[a][d] * (dg[b][d][c] + dg[c][d][b] - dg[d][b][c])
				}
				s[a][b][c] = 0.5 * sum
			}
		}
	}
	s.Symmetrize()
	return s
}

// NumericJacobian differentiates t.ConvertPoint by central differences.
func NumericJacobian(t Transition, x Coords, h float64) Matrix {
	var m Matrix
	for j := 0; j < Dim; j++ {
		step := h * math.Max(1, math.Abs(x[j]))
		xp, xm := x, x
		xp[j] += step
		xm[j] -= step
		yp, ym := t.ConvertPoint(xp), t.ConvertPoint(xm)
		for i := 0; i < Dim; i++ {
			m[i][j] = (yp[i] - ym[i]) / (2 * step)
		}
	}
	return m
}
