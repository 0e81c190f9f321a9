package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/geodesim/internal/dynamo"
	"github.com/san-kum/geodesim/internal/integrators"
	"github.com/san-kum/geodesim/internal/logging"
	"github.com/san-kum/geodesim/internal/manifold"
	"github.com/san-kum/geodesim/internal/metrics"
	"github.com/san-kum/geodesim/internal/spacetime"
)

// Body is a worldline the driver can advance and carry between charts.
type Body[T any] interface {
	integrators.Body[T]
	Pos() manifold.Point
	Vel() manifold.Vector
	Derivative() dynamo.State
	Convert(conv manifold.Conversion) T
	State() dynamo.State
}

// Options controls a run. A zero TargetRadius or Duration disables that stop
// condition.
type Options struct {
	TargetRadius  float64
	Duration      float64
	MaxIterations int
	ProgressEvery int
	SwitchPoles   bool
	PoleThreshold float64
	RecordEvery   int
	ValidateState bool
	Step          integrators.StepSize
}

// Listener receives driver events. telemetry.Recorder implements it.
type Listener interface {
	ChartSwitch(from, to string)
	RunFinished(outcome string)
}

// Observer is called for every recorded sample.
type Observer interface {
	OnSample(s Sample)
}

type Sample struct {
	Iteration int
	Lambda    float64
	Chart     string
	State     dynamo.State
}

// Trajectory is what a run produced, independent of the body type. The
// embedded Result holds the recorded samples in States and their affine
// parameter in Params.
type Trajectory struct {
	dynamo.Result
	Charts        []string
	Crossing      dynamo.State
	CrossingChart string
	Reached       bool
	Lambda        float64
	Iterations    int
	Switches      int
	Stop          string
	Stats         integrators.Stats
}

type Outcome[T any] struct {
	Trajectory
	Body T
}

const (
	OutcomeTarget   = "target"
	OutcomeDuration = "duration"
	OutcomeFailed   = "failed"
)

type Runner[T Body[T]] struct {
	atlas     *manifold.Atlas
	integ     integrators.Propagator
	opts      Options
	logger    *slog.Logger
	metrics   []metrics.Metric
	observers []Observer
	listener  Listener
}

func NewRunner[T Body[T]](atlas *manifold.Atlas, integ integrators.Propagator, opts Options) *Runner[T] {
	if opts.PoleThreshold <= 0 {
		opts.PoleThreshold = 0.1
	}
	return &Runner[T]{
		atlas:  atlas,
		integ:  integ,
		opts:   opts,
		logger: logging.Discard(),
	}
}

func (r *Runner[T]) SetLogger(l *slog.Logger)           { r.logger = l }
func (r *Runner[T]) SetListener(l Listener)             { r.listener = l }
func (r *Runner[T]) AddMetric(m metrics.Metric)         { r.metrics = append(r.metrics, m) }
func (r *Runner[T]) AddObserver(o Observer)             { r.observers = append(r.observers, o) }
func (r *Runner[T]) Integrator() integrators.Propagator { return r.integ }

func derivative[T Body[T]](b T) dynamo.State { return b.Derivative() }

// Run propagates body until it crosses TargetRadius (radius is slot 1 in every
// chart of the atlas) or the affine parameter reaches Duration. The crossing
// state is linearly interpolated between the last two steps.
func (r *Runner[T]) Run(ctx context.Context, body T) (*Outcome[T], error) {
	if r.opts.TargetRadius <= 0 && r.opts.Duration <= 0 {
		return nil, fmt.Errorf("%w: need target radius or duration", dynamo.ErrParameterBounds)
	}
	if r.opts.MaxIterations <= 0 {
		return nil, fmt.Errorf("%w: max iterations must be positive", dynamo.ErrParameterBounds)
	}

	out := &Outcome[T]{}
	out.Metrics = make(map[string]float64)
	for _, m := range r.metrics {
		m.Reset()
	}

	target := r.opts.TargetRadius
	outward := body.Pos().At(1) < target
	crossed := func(rad float64) bool {
		if outward {
			return rad >= target
		}
		return rad <= target
	}

	r.integ.Reset()
	r.record(out, body)
	r.observe(body, 0)

	finish := func(kind string, err error) (*Outcome[T], error) {
		out.Body = body
		out.Stop = kind
		out.Iterations = out.StepsTaken
		out.Stats = r.integ.Stats()
		out.Evaluations = out.Stats.Evaluations
		for _, m := range r.metrics {
			out.Metrics[m.Name()] = m.Value()
		}
		if last := len(out.Params) - 1; last < 0 || out.Params[last] != out.Lambda {
			r.record(out, body)
		}
		if err != nil {
			out.Errors = append(out.Errors, err)
		}
		if r.listener != nil {
			r.listener.RunFinished(kind)
		}
		return out, err
	}

	if target > 0 && crossed(body.Pos().At(1)) {
		out.Crossing = body.State()
		out.CrossingChart = body.Pos().Chart().Name()
		out.Reached = true
		return finish(OutcomeTarget, nil)
	}

	for i := 1; ; i++ {
		if err := ctx.Err(); err != nil {
			return finish(OutcomeFailed, fmt.Errorf("%w: %v", dynamo.ErrContextCanceled, err))
		}
		if i > r.opts.MaxIterations {
			err := &dynamo.SimulationError{Step: i - 1, Param: out.Lambda, State: body.State(), Wrapped: dynamo.ErrMaxIterations}
			return finish(OutcomeFailed, err)
		}

		prev := body.State()
		integrators.PropagateInPlace(r.integ, body, derivative[T], r.opts.Step)
		out.Lambda += r.integ.LastStep()
		out.StepsTaken++

		cur := body.State()
		if r.opts.ValidateState && !cur.IsValid() {
			r.logger.Warn("non-finite state", "iteration", i, "lambda", out.Lambda)
			err := &dynamo.SimulationError{Step: i, Param: out.Lambda, State: cur, Wrapped: dynamo.ErrInvalidState}
			return finish(OutcomeFailed, err)
		}

		rad := body.Pos().At(1)
		if r.opts.ProgressEvery > 0 && i%r.opts.ProgressEvery == 0 {
			r.logger.Info("propagating", "iteration", i, "r", rad, "lambda", out.Lambda, "step", r.integ.LastStep())
		}
		r.observe(body, out.Lambda)

		if target > 0 && crossed(rad) {
			frac := (target - prev[1]) / (rad - prev[1])
			out.Crossing = prev.Lerp(cur, frac)
			out.CrossingChart = body.Pos().Chart().Name()
			out.Reached = true
			return finish(OutcomeTarget, nil)
		}
		if r.opts.Duration > 0 && out.Lambda >= r.opts.Duration {
			return finish(OutcomeDuration, nil)
		}

		if r.opts.RecordEvery > 0 && i%r.opts.RecordEvery == 0 {
			r.record(out, body)
		}

		if r.opts.SwitchPoles {
			next, err := r.switchChart(body)
			if err != nil {
				return finish(OutcomeFailed, &dynamo.SimulationError{Step: i, Param: out.Lambda, State: cur, Wrapped: err})
			}
			if next != nil {
				body = *next
				out.Switches++
			}
		}
	}
}

// switchChart moves body to a near-pole chart, or back, when PoleSwitch says
// so. The integrator is reset because its cached stage belongs to the old
// coordinates.
func (r *Runner[T]) switchChart(body T) (*T, error) {
	pos := body.Pos()
	from := pos.Chart().Name()
	to, ok := spacetime.PoleSwitch(pos.Chart(), pos.Coords(), r.opts.PoleThreshold)
	if !ok {
		return nil, nil
	}
	conv, err := r.atlas.Conversion(from, to)
	if err != nil {
		return nil, err
	}
	next := body.Convert(conv)
	r.integ.Reset()
	r.logger.Info("chart switch", "from", from, "to", to, "r", pos.At(1))
	if r.listener != nil {
		r.listener.ChartSwitch(from, to)
	}
	return &next, nil
}

func (r *Runner[T]) record(out *Outcome[T], body T) {
	s := Sample{
		Iteration: out.StepsTaken,
		Lambda:    out.Lambda,
		Chart:     body.Pos().Chart().Name(),
		State:     body.State(),
	}
	out.States = append(out.States, s.State)
	out.Params = append(out.Params, s.Lambda)
	out.Charts = append(out.Charts, s.Chart)
	for _, o := range r.observers {
		o.OnSample(s)
	}
}

func (r *Runner[T]) observe(body T, lambda float64) {
	for _, m := range r.metrics {
		m.Observe(body.Vel(), lambda)
	}
}
