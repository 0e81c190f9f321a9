package manifold_test

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/geodesim/internal/dynamo"
	"github.com/san-kum/geodesim/internal/manifold"
	"github.com/san-kum/geodesim/internal/spacetime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sun = spacetime.Params{Mass: 4.9e-6}

func TestAtlas_Lookup(t *testing.T) {
	atlas := spacetime.NewAtlas(sun)

	conv, err := atlas.Conversion(spacetime.SchwarzschildName, spacetime.EddingtonName)
	require.NoError(t, err)
	assert.Equal(t, spacetime.SchwarzschildName, conv.From().Name())
	assert.Equal(t, spacetime.EddingtonName, conv.To().Name())

	_, err = atlas.Conversion(spacetime.SchwarzschildName, spacetime.KerrName)
	assert.True(t, errors.Is(err, dynamo.ErrNoConversion))

	_, err = atlas.Chart("minkowski")
	assert.True(t, errors.Is(err, dynamo.ErrUnknownChart))

	charts := atlas.Charts()
	assert.Contains(t, charts, "kerr/south-pole")
	assert.IsIncreasing(t, charts)
	assert.Len(t, atlas.Conversions(), 14)
}

func TestConvertTensor_PullsBackMetric(t *testing.T) {
	m := 0.3
	p := spacetime.Params{Mass: m}
	atlas := spacetime.NewAtlas(p)

	cases := []struct {
		from, to string
		x        manifold.Coords
	}{
		{spacetime.SchwarzschildName, spacetime.EddingtonName, manifold.Coords{1.2, 2.5, 1.1, 0.4}},
		{spacetime.EddingtonName, spacetime.SchwarzschildName, manifold.Coords{-0.7, 4.0, 2.0, -1.3}},
		{spacetime.SchwarzschildName, "schwarzschild/north-pole", manifold.Coords{0, 3.0, 0.2, 0.9}},
		{"eddington-finkelstein/south-pole", spacetime.EddingtonName, manifold.Coords{0.5, 1.5, 0.3, -0.2}},
	}

	for _, tc := range cases {
		conv, err := atlas.Conversion(tc.from, tc.to)
		require.NoError(t, err)
		src := manifold.NewPoint(conv.From(), tc.x)

		pulled := manifold.ConvertTensor(conv, manifold.MetricAt(src))
		want := conv.To().Metric(conv.ConvertPoint(tc.x))

		assert.Equal(t, tc.to, pulled.Point().Chart().Name())
		for i := 0; i < manifold.Dim; i++ {
			for j := 0; j < manifold.Dim; j++ {
				assert.InDelta(t, want[i][j], pulled.Get(i, j), 1e-9*math.Max(1, math.Abs(want[i][j])),
					"%s->%s g[%d][%d]", tc.from, tc.to, i, j)
			}
		}
	}
}

func TestConvertVector_PreservesNorm(t *testing.T) {
	atlas := spacetime.NewAtlas(spacetime.Params{Mass: 0.5})
	conv, err := atlas.Conversion(spacetime.SchwarzschildName, "schwarzschild/north-pole")
	require.NoError(t, err)

	x := manifold.NewPoint(conv.From(), manifold.Coords{0, 4, 0.3, 2.1})
	v := manifold.NewVector(x, manifold.Coords{1.4, 0.2, -0.05, 0.3})
	w := manifold.ConvertVector(conv, v)

	assert.InDelta(t, manifold.Inner(v, v), manifold.Inner(w, w), 1e-12)
	assert.Equal(t, w.Point(), manifold.ConvertPoint(conv, x))
}

func TestNumericConnection_MatchesAnalytic(t *testing.T) {
	p := spacetime.Params{Mass: 0.4}
	charts := []struct {
		chart manifold.Chart
		x     manifold.Coords
	}{
		{spacetime.Schwarzschild{P: p}, manifold.Coords{0, 3, 1.0, 0.5}},
		{spacetime.EddingtonFinkelstein{P: p}, manifold.Coords{2, 1.3, 2.2, -0.5}},
		{spacetime.SchwarzschildPole{P: p}, manifold.Coords{0, 5, 0.3, -0.4}},
		{spacetime.EddingtonPole{P: p, South: true}, manifold.Coords{1, 2, -0.2, 0.6}},
	}

	for _, tc := range charts {
		analytic := tc.chart.Christoffel(tc.x)
		numeric := manifold.NumericConnection(tc.chart, tc.x, manifold.DefaultDiffStep)
		for a := 0; a < manifold.Dim; a++ {
			for b := 0; b < manifold.Dim; b++ {
				for c := 0; c < manifold.Dim; c++ {
					assert.InDelta(t, analytic[a][b][c], numeric[a][b][c], 1e-6,
						"%s Gamma^%d_%d%d", tc.chart.Name(), a, b, c)
				}
			}
		}
	}
}

func TestReprojected_MatchesClosedFormPoleChart(t *testing.T) {
	p := spacetime.Params{Mass: 0.2}
	atlas := spacetime.NewAtlas(p)
	toBase, err := atlas.Conversion("schwarzschild/north-pole", spacetime.SchwarzschildName)
	require.NoError(t, err)

	pulled := manifold.NewReprojected("pulled", spacetime.Schwarzschild{P: p}, toBase)
	closed := spacetime.SchwarzschildPole{P: p}
	x := manifold.Coords{0, 2.5, 0.15, -0.25}

	g1, g2 := pulled.Metric(x), closed.Metric(x)
	i1, i2 := pulled.InvMetric(x), closed.InvMetric(x)
	for i := 0; i < manifold.Dim; i++ {
		for j := 0; j < manifold.Dim; j++ {
			assert.InDelta(t, g2[i][j], g1[i][j], 1e-12)
			assert.InDelta(t, i2[i][j], i1[i][j], 1e-12)
		}
	}
	assert.Less(t, manifold.MetricResidual(pulled, x), 1e-12)
}
