package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/geodesim/internal/config"
	"github.com/san-kum/geodesim/internal/dynamo"
	"github.com/san-kum/geodesim/internal/integrators"
	"github.com/san-kum/geodesim/internal/logging"
	"github.com/san-kum/geodesim/internal/manifold"
	"github.com/san-kum/geodesim/internal/worldline"
)

// Env carries the optional collaborators of a run. Zero values are fine.
type Env struct {
	Logger   *slog.Logger
	Listener Listener
	Steps    integrators.Observer
	Samples  Observer
}

func OptionsFromConfig(rc config.RunConfig) Options {
	return Options{
		TargetRadius:  rc.TargetRadius,
		Duration:      rc.Duration,
		MaxIterations: rc.MaxIterations,
		ProgressEvery: rc.ProgressEvery,
		SwitchPoles:   rc.SwitchPoles,
		PoleThreshold: rc.PoleThreshold,
		RecordEvery:   rc.RecordEvery,
		ValidateState: rc.ValidateState,
		Step:          integrators.UseDefault(),
	}
}

// BuildParticle places a geodesic body at cfg's position and velocity.
func BuildParticle(cfg *config.Config, reg *Registry) (*worldline.Particle, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	chart, err := reg.Atlas(cfg.Params()).Chart(cfg.Chart)
	if err != nil {
		return nil, err
	}
	x := manifold.NewPoint(chart, manifold.Coords(cfg.Position))
	return worldline.NewParticle(x, manifold.NewVector(x, manifold.Coords(cfg.Velocity))), nil
}

// Execute builds the chart, body and integrator described by cfg and runs it.
func Execute(ctx context.Context, cfg *config.Config, reg *Registry, env Env) (*Trajectory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	atlas := reg.Atlas(cfg.Params())
	chart, err := atlas.Chart(cfg.Chart)
	if err != nil {
		return nil, err
	}
	integ, err := reg.GetIntegrator(cfg.Integrator)
	if err != nil {
		return nil, err
	}
	if env.Steps != nil {
		integ.SetObserver(env.Steps)
	}

	logger := env.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	logger = logger.With("chart", cfg.Chart, "body", cfg.Body, "integrator", integ.Name())

	x := manifold.NewPoint(chart, manifold.Coords(cfg.Position))
	vel := manifold.NewVector(x, manifold.Coords(cfg.Velocity))
	opts := OptionsFromConfig(cfg.Run)

	switch cfg.Body {
	case "particle":
		return run(ctx, NewRunner[*worldline.Particle](atlas, integ, opts), worldline.NewParticle(x, vel), reg, env, logger)
	case "entity":
		t := cfg.Tetrad
		e := worldline.NewEntity(x, vel,
			manifold.NewVector(x, manifold.Coords(t.Forward)),
			manifold.NewVector(x, manifold.Coords(t.Right)),
			manifold.NewVector(x, manifold.Coords(t.Up)),
		)
		e.Orthonormalize()
		e.AddForce(t.Force[0], t.Force[1], t.Force[2])
		e.AddAngVel(t.AngVel[0], t.AngVel[1], t.AngVel[2])
		return run(ctx, NewRunner[*worldline.Entity](atlas, integ, opts), e, reg, env, logger)
	}
	return nil, fmt.Errorf("unknown body: %s", cfg.Body)
}

func run[T Body[T]](ctx context.Context, r *Runner[T], body T, reg *Registry, env Env, logger *slog.Logger) (*Trajectory, error) {
	r.SetLogger(logger)
	if env.Listener != nil {
		r.SetListener(env.Listener)
	}
	if env.Samples != nil {
		r.AddObserver(env.Samples)
	}
	for _, m := range reg.DefaultMetrics() {
		r.AddMetric(m)
	}

	out, err := r.Run(ctx, body)
	if out == nil {
		return nil, err
	}
	logger.Info("run finished", "stop", out.Stop, "iterations", out.Iterations, "lambda", out.Lambda, "switches", out.Switches)
	return &out.Trajectory, err
}

// Ensemble executes independent configurations in parallel.
func Ensemble(ctx context.Context, cfgs []*config.Config, reg *Registry, env Env, limit int) ([]*Trajectory, error) {
	out := make([]*Trajectory, len(cfgs))
	_, err := dynamo.NewEnsemble(len(cfgs), limit).Run(ctx, func(ctx context.Context, idx int) (*dynamo.Result, error) {
		tr, err := Execute(ctx, cfgs[idx], reg, env)
		if err != nil {
			return nil, fmt.Errorf("run %d: %w", idx, err)
		}
		out[idx] = tr
		return &tr.Result, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Compare runs cfg once per integrator kind. Step bounds are shared.
func Compare(ctx context.Context, cfg *config.Config, kinds []string, reg *Registry, env Env) (map[string]*Trajectory, error) {
	cfgs := make([]*config.Config, len(kinds))
	for i, kind := range kinds {
		c := cfg.Clone()
		c.Integrator.Kind = kind
		cfgs[i] = c
	}
	trs, err := Ensemble(ctx, cfgs, reg, env, 0)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*Trajectory, len(kinds))
	for i, kind := range kinds {
		out[kind] = trs[i]
	}
	return out, nil
}
