// Package manifold implements the chart, point, vector and tensor machinery
// the equations of motion are written in.
//
// A [Chart] is a pure bundle of functions of the coordinates: the covariant
// metric, its inverse, and the Christoffel symbols. Charts carry no mutable
// state, so they may be shared freely between goroutines.
//
// Tensors are flat arrays of Dim^rank components tagged with a base [Point]
// and a per-index [Variance]. [Contract] sums a contravariant index against a
// covariant one; that single operation is enough to write the geodesic
// equation once for every chart.
//
// Transitions between charts are modelled as a flat registry ([Atlas]) of
// [Conversion] values keyed by (source, target) chart names.
//
// # Index conventions
//
// Matrix[i][j] is row i, column j. For a conversion A to B, Jacobian[i][j] is
// dB^i/dA^j and InvJacobian[i][j] is dA^i/dB^j, both evaluated at the source
// point. Symbols[a][b][c] is Gamma^a_bc.
package manifold
