package analysis

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/geodesim/internal/dynamo"
	"github.com/san-kum/geodesim/internal/integrators"
	"github.com/san-kum/geodesim/internal/worldline"
)

// Options controls the separation estimate. Propagation uses fixed RK4
// steps so both worldlines are compared at equal affine parameter.
type Options struct {
	Perturbation float64
	Step         float64
	Duration     float64
	// RenormEvery is the number of steps between rescaling the separation
	// back to Perturbation.
	RenormEvery int
}

func DefaultOptions() Options {
	return Options{Perturbation: 1e-8, Step: 0.01, Duration: 20, RenormEvery: 100}
}

func (o Options) validate() error {
	if o.Perturbation <= 0 || o.Step <= 0 || o.Duration < o.Step || o.RenormEvery <= 0 {
		return fmt.Errorf("%w: lyapunov options %+v", dynamo.ErrParameterBounds, o)
	}
	return nil
}

// LyapunovExponent estimates the largest Lyapunov exponent of p's geodesic
// by perturbing its radius. The chart is never switched, so p should stay
// clear of the coordinate poles for the whole duration.
//
// Algorithm:
//  1. Run the reference and a perturbed copy side by side
//  2. Every RenormEvery steps add ln(|dx|/d0) and rescale dx to d0
//  3. lambda = sum / duration
func LyapunovExponent(ctx context.Context, p *worldline.Particle, opts Options) (float64, error) {
	return lyapunovForSlot(ctx, p, 1, opts)
}

// LyapunovSpectrum perturbs every slot of the flat [x, v] state in turn.
// Slots run concurrently.
func LyapunovSpectrum(ctx context.Context, p *worldline.Particle, opts Options) ([]float64, error) {
	spectrum := make([]float64, p.Len())
	g, ctx := errgroup.WithContext(ctx)
	for i := range spectrum {
		i := i
		g.Go(func() error {
			l, err := lyapunovForSlot(ctx, p, i, opts)
			if err != nil {
				return fmt.Errorf("slot %d: %w", i, err)
			}
			spectrum[i] = l
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return spectrum, nil
}

func derivative(p *worldline.Particle) dynamo.State { return p.Derivative() }

func lyapunovForSlot(ctx context.Context, p *worldline.Particle, slot int, opts Options) (float64, error) {
	if err := opts.validate(); err != nil {
		return 0, err
	}

	ref, pert := p.Clone(), p.Clone()
	kick := dynamo.NewState(p.Len())
	kick[slot] = 1
	pert.ShiftInPlace(kick, opts.Perturbation)

	integ := integrators.NewRK4(opts.Step)
	step := integrators.UseDefault()
	n := int(math.Round(opts.Duration / opts.Step))
	d0 := opts.Perturbation

	sumLog := 0.0
	for i := 1; i <= n; i++ {
		integrators.PropagateInPlace(integ, ref, derivative, step)
		integrators.PropagateInPlace(integ, pert, derivative, step)

		if i%opts.RenormEvery != 0 && i != n {
			continue
		}
		if err := ctx.Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", dynamo.ErrContextCanceled, err)
		}

		diff := pert.State().Sub(ref.State())
		sep := diff.Norm()
		if !diff.IsValid() || math.IsNaN(sep) {
			return 0, &dynamo.SimulationError{Step: i, Param: float64(i) * opts.Step, State: ref.State(), Wrapped: dynamo.ErrInvalidState}
		}
		if sep == 0 {
			continue
		}
		sumLog += math.Log(sep / d0)

		// Pull the perturbed copy back along the separation.
		pert.ShiftInPlace(diff, d0/sep-1)
	}

	return sumLog / (float64(n) * opts.Step), nil
}
