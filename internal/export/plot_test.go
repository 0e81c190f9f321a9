package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/geodesim/internal/storage"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func samples() *storage.Samples {
	return &storage.Samples{
		Lambdas: []float64{0, 1, 2},
		Charts:  []string{"schwarzschild", "schwarzschild", "schwarzschild/north-pole"},
		States: [][]float64{
			{0, 10, 1.5, 0, 1, 0, 0, 0.03},
			{1, 10, 1.5, 0.03, 1, 0, 0, 0.03},
			{2, 10, 0.01, 0.02, 1, 0, 0, 0.03},
		},
	}
}

func TestRadiusPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RadiusPNG(&buf, "radius", samples()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestOrbitPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, OrbitPNG(&buf, "orbit", samples()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestEmpty(t *testing.T) {
	assert.Error(t, RadiusPNG(&bytes.Buffer{}, "", &storage.Samples{}))
	assert.Error(t, OrbitPNG(&bytes.Buffer{}, "", &storage.Samples{}))
}
