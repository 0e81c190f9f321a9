package telemetry

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/geodesim/internal/dynamo"
	"github.com/san-kum/geodesim/internal/integrators"
)

func TestRecorder_CountsIntegratorSteps(t *testing.T) {
	rec := New()
	dp := integrators.NewDormandPrince(0.01, 1e-4, 0.1, 1e-12)
	dp.SetObserver(rec)

	x := dynamo.State{1, 0}
	f := func(s dynamo.State) dynamo.State { return dynamo.State{s[1], -s[0]} }
	for i := 0; i < 3; i++ {
		x = dp.Propagate(x, f, integrators.UseDefault())
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(rec.steps.WithLabelValues("dopri5")))
	assert.Equal(t, 19.0, testutil.ToFloat64(rec.evaluations.WithLabelValues("dopri5")))
	assert.Equal(t, 2.0, testutil.ToFloat64(rec.reused.WithLabelValues("dopri5")))
}

func TestRecorder_Handler(t *testing.T) {
	rec := New()
	rec.ChartSwitch("schwarzschild", "schwarzschild/north-pole")
	rec.RunFinished("target")

	srv := httptest.NewServer(rec.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	buf := new(strings.Builder)
	_, err = io.Copy(buf, resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "geodesim_chart_switches_total")
	assert.Contains(t, buf.String(), `outcome="target"`)
}
