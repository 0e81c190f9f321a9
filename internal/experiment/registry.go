package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/geodesim/internal/config"
	"github.com/san-kum/geodesim/internal/integrators"
	"github.com/san-kum/geodesim/internal/manifold"
	"github.com/san-kum/geodesim/internal/metrics"
	"github.com/san-kum/geodesim/internal/spacetime"
)

type IntegratorFactory func(ic config.IntegratorConfig) integrators.Propagator

type Registry struct {
	integrators map[string]IntegratorFactory
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]IntegratorFactory),
	}

	r.integrators["dopri5"] = func(ic config.IntegratorConfig) integrators.Propagator {
		return integrators.NewDormandPrince(ic.DefaultStep, ic.MinStep, ic.MaxStep, ic.MaxErr)
	}
	r.integrators["rk4"] = func(ic config.IntegratorConfig) integrators.Propagator {
		return integrators.NewRK4(ic.DefaultStep)
	}
	r.integrators["euler"] = func(ic config.IntegratorConfig) integrators.Propagator {
		return integrators.NewEuler(ic.DefaultStep)
	}

	return r
}

func (r *Registry) GetIntegrator(ic config.IntegratorConfig) (integrators.Propagator, error) {
	fn, ok := r.integrators[ic.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", ic.Kind)
	}
	return fn(ic), nil
}

func (r *Registry) ListIntegrators() []string {
	names := make([]string, 0, len(r.integrators))
	for name := range r.integrators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Atlas returns every chart and conversion for the given spacetime.
func (r *Registry) Atlas(p spacetime.Params) *manifold.Atlas {
	return spacetime.NewAtlas(p)
}

func (r *Registry) ListCharts() []string {
	return r.Atlas(spacetime.Params{Mass: 1}).Charts()
}

func (r *Registry) DefaultMetrics() []metrics.Metric {
	return metrics.Defaults()
}
