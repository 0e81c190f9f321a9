package experiment

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/geodesim/internal/config"
	"github.com/san-kum/geodesim/internal/dynamo"
	"github.com/san-kum/geodesim/internal/integrators"
	"github.com/san-kum/geodesim/internal/manifold"
	"github.com/san-kum/geodesim/internal/spacetime"
	"github.com/san-kum/geodesim/internal/worldline"
)

type recorder struct {
	mu       sync.Mutex
	switches []string
	finished []string
	samples  []Sample
}

func (r *recorder) ChartSwitch(from, to string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.switches = append(r.switches, from+"->"+to)
}

func (r *recorder) RunFinished(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = append(r.finished, outcome)
}

func (r *recorder) OnSample(s Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, s)
}

func TestExecute_RadialPhotonInterpolatesTarget(t *testing.T) {
	cfg := config.GetPreset("radial", "outgoing")
	tr, err := Execute(context.Background(), cfg, NewRegistry(), Env{})
	require.NoError(t, err)

	assert.True(t, tr.Reached)
	assert.Equal(t, OutcomeTarget, tr.Stop)
	assert.Equal(t, spacetime.EddingtonName, tr.CrossingChart)
	assert.InDelta(t, 100.0, tr.Crossing[1], 1e-9)

	p := cfg.Params()
	got := p.StaticTime(tr.Crossing[0], tr.Crossing[1])
	t0 := p.StaticTime(cfg.Position[0], cfg.Position[1])
	want := t0 + p.TortoiseRadius(100) - p.TortoiseRadius(10)
	assert.InDelta(t, want, got, 1e-5)

	assert.Less(t, tr.Metrics["norm_drift"], 1e-9)
	assert.Equal(t, tr.Iterations, tr.StepsTaken)
	assert.Equal(t, len(tr.States), len(tr.Params))
	assert.Equal(t, len(tr.States), len(tr.Charts))
}

func TestExecute_CircularOrbitKeepsRadius(t *testing.T) {
	cfg := config.GetPreset("orbit", "circular")
	cfg.Run.Duration = 200

	tr, err := Execute(context.Background(), cfg, NewRegistry(), Env{})
	require.NoError(t, err)

	assert.Equal(t, OutcomeDuration, tr.Stop)
	assert.False(t, tr.Reached)
	assert.GreaterOrEqual(t, tr.Lambda, 200.0)
	final := tr.States[len(tr.States)-1]
	assert.InDelta(t, 10.0, final[1], 1e-6)
	assert.InDelta(t, 10.0, tr.Metrics["min_radius"], 1e-6)
	assert.Less(t, tr.Metrics["energy_drift"], 1e-8)
	assert.Equal(t, 1.0, tr.Metrics["stability"])
}

func TestExecute_PolarOrbitSwitchesCharts(t *testing.T) {
	cfg := config.GetPreset("orbit", "polar")
	cfg.Run.Duration = 200
	rec := &recorder{}

	tr, err := Execute(context.Background(), cfg, NewRegistry(), Env{Listener: rec, Samples: rec})
	require.NoError(t, err)

	assert.Greater(t, tr.Switches, 1)
	assert.Len(t, rec.switches, tr.Switches)
	assert.Equal(t, "schwarzschild->schwarzschild/south-pole", rec.switches[0])
	assert.Equal(t, []string{OutcomeDuration}, rec.finished)

	var sawPole bool
	for _, c := range tr.Charts {
		if strings.HasSuffix(c, "-pole") {
			sawPole = true
		}
	}
	assert.True(t, sawPole)
	assert.Len(t, rec.samples, len(tr.States))

	for _, s := range tr.States {
		assert.InDelta(t, 10.0, s[1], 1e-6)
	}
	assert.Less(t, tr.Metrics["energy_drift"], 1e-8)
}

func TestExecute_HoveringObserverStaysPut(t *testing.T) {
	tr, err := Execute(context.Background(), config.GetPreset("observer", "hovering"), NewRegistry(), Env{})
	require.NoError(t, err)
	final := tr.States[len(tr.States)-1]
	require.Len(t, final, worldline.EntityLen)
	assert.InDelta(t, 20.0, final[1], 1e-8)

	tr, err = Execute(context.Background(), config.GetPreset("observer", "boosted"), NewRegistry(), Env{})
	require.NoError(t, err)
	final = tr.States[len(tr.States)-1]
	assert.Greater(t, final[1], 20.0)
}

func TestExecute_UnknownChart(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Chart = "minkowski"
	_, err := Execute(context.Background(), cfg, NewRegistry(), Env{})
	assert.True(t, errors.Is(err, dynamo.ErrUnknownChart))
}

func TestRunner_MaxIterations(t *testing.T) {
	cfg := config.GetPreset("radial", "outgoing")
	cfg.Run.MaxIterations = 5

	tr, err := Execute(context.Background(), cfg, NewRegistry(), Env{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, dynamo.ErrMaxIterations))

	var simErr *dynamo.SimulationError
	require.True(t, errors.As(err, &simErr))
	assert.Equal(t, 5, simErr.Step)
	require.NotNil(t, tr)
	assert.Equal(t, OutcomeFailed, tr.Stop)
	assert.Equal(t, 5, tr.Iterations)
}

func TestRunner_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Execute(ctx, config.GetPreset("radial", "outgoing"), NewRegistry(), Env{})
	assert.True(t, errors.Is(err, dynamo.ErrContextCanceled))
}

func TestRunner_NeedsStopCondition(t *testing.T) {
	p := spacetime.Params{Mass: 1}
	atlas := spacetime.NewAtlas(p)
	r := NewRunner[*worldline.Particle](atlas, integrators.NewRK4(0.1), Options{MaxIterations: 10})

	x := manifold.NewPoint(spacetime.Schwarzschild{P: p}, manifold.Coords{0, 10, 1, 0})
	_, err := r.Run(context.Background(), worldline.NewParticle(x, manifold.NewVector(x, manifold.Coords{1, 0, 0, 0})))
	assert.True(t, errors.Is(err, dynamo.ErrParameterBounds))
}

func TestRunner_InwardTarget(t *testing.T) {
	p := spacetime.Params{Mass: 1}
	atlas := spacetime.NewAtlas(p)
	r := NewRunner[*worldline.Particle](atlas, integrators.NewDormandPrince(0.01, 1e-4, 0.1, 1e-12), Options{
		TargetRadius:  3,
		MaxIterations: 100000,
		Step:          integrators.UseDefault(),
	})

	// Ingoing radial null ray: du = 0 in advanced coordinates.
	x := manifold.NewPoint(spacetime.EddingtonFinkelstein{P: p}, manifold.Coords{0, 10, math.Pi / 2, 0})
	out, err := r.Run(context.Background(), worldline.NewParticle(x, manifold.NewVector(x, manifold.Coords{0, -1, 0, 0})))
	require.NoError(t, err)
	assert.True(t, out.Reached)
	assert.InDelta(t, 3.0, out.Crossing[1], 1e-9)
	assert.InDelta(t, 0.0, out.Crossing[0], 1e-9)
	assert.InDelta(t, 3.0, out.Body.Pos().At(1), 0.11)
}

func TestCompare(t *testing.T) {
	cfg := config.GetPreset("radial", "outgoing")
	cfg.Run.TargetRadius = 30

	reg := NewRegistry()
	got, err := Compare(context.Background(), cfg, reg.ListIntegrators(), reg, Env{})
	require.NoError(t, err)
	require.Len(t, got, 3)

	for kind, tr := range got {
		assert.True(t, tr.Reached, kind)
		assert.InDelta(t, 30.0, tr.Crossing[1], 1e-9, kind)
	}
	assert.Less(t, got["dopri5"].Iterations, got["euler"].Iterations)
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	assert.Equal(t, []string{"dopri5", "euler", "rk4"}, reg.ListIntegrators())

	_, err := reg.GetIntegrator(config.IntegratorConfig{Kind: "leapfrog"})
	assert.Error(t, err)

	charts := reg.ListCharts()
	assert.Contains(t, charts, spacetime.KerrName)
	assert.Contains(t, charts, "eddington-finkelstein/south-pole")
}

func TestShapiro(t *testing.T) {
	res, err := Shapiro(context.Background(), NewRegistry(), Env{})
	require.NoError(t, err)

	assert.Greater(t, res.T1, 0.0)
	assert.Less(t, res.T2, 0.0)
	assert.InDelta(t, 2.3411745e-4, res.Expected, 1e-10)
	assert.InEpsilon(t, res.Expected, res.Delay, 1e-3)
}
