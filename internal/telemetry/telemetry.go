// Package telemetry exports integrator and driver activity as Prometheus
// metrics.
package telemetry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/san-kum/geodesim/internal/integrators"
)

// Recorder implements integrators.Observer and counts driver events.
type Recorder struct {
	registry *prometheus.Registry

	steps       *prometheus.CounterVec
	evaluations *prometheus.CounterVec
	reused      *prometheus.CounterVec
	overTol     *prometheus.CounterVec
	stepSize    *prometheus.HistogramVec
	errEstimate *prometheus.HistogramVec
	switches    *prometheus.CounterVec
	runs        *prometheus.CounterVec
}

func New() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "geodesim_integrator_steps_total",
			Help: "Integrator steps taken",
		}, []string{"integrator"}),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "geodesim_derivative_evaluations_total",
			Help: "Derivative evaluations performed",
		}, []string{"integrator"}),
		reused: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "geodesim_fsal_reuse_total",
			Help: "Steps whose first stage came from the previous step",
		}, []string{"integrator"}),
		overTol: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "geodesim_steps_over_tolerance_total",
			Help: "Steps whose error estimate exceeded the target",
		}, []string{"integrator"}),
		stepSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "geodesim_step_size",
			Help:    "Affine parameter step sizes",
			Buckets: prometheus.ExponentialBuckets(1e-5, 4, 10),
		}, []string{"integrator"}),
		errEstimate: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "geodesim_error_estimate",
			Help:    "Embedded error estimate per step",
			Buckets: prometheus.ExponentialBuckets(1e-16, 10, 14),
		}, []string{"integrator"}),
		switches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "geodesim_chart_switches_total",
			Help: "Chart transitions performed by the driver",
		}, []string{"from", "to"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "geodesim_runs_total",
			Help: "Completed propagations by outcome",
		}, []string{"outcome"}),
	}
	reg.MustRegister(r.steps, r.evaluations, r.reused, r.overTol, r.stepSize, r.errEstimate, r.switches, r.runs)
	return r
}

// ObserveStep satisfies integrators.Observer.
func (r *Recorder) ObserveStep(integrator string, info integrators.StepInfo) {
	r.steps.WithLabelValues(integrator).Inc()
	r.evaluations.WithLabelValues(integrator).Add(float64(info.Evaluations))
	r.stepSize.WithLabelValues(integrator).Observe(info.Step)
	if info.Reused {
		r.reused.WithLabelValues(integrator).Inc()
	}
	if info.OverTol {
		r.overTol.WithLabelValues(integrator).Inc()
	}
	if info.Error > 0 {
		r.errEstimate.WithLabelValues(integrator).Observe(info.Error)
	}
}

func (r *Recorder) ChartSwitch(from, to string) {
	r.switches.WithLabelValues(from, to).Inc()
}

func (r *Recorder) RunFinished(outcome string) {
	r.runs.WithLabelValues(outcome).Inc()
}

func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (r *Recorder) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
