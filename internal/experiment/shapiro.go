package experiment

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/geodesim/internal/config"
	"github.com/san-kum/geodesim/internal/spacetime"
)

// ShapiroResult is the radar echo delay between Earth and Venus at superior
// conjunction, with the signal grazing the Sun. Times are in seconds.
type ShapiroResult struct {
	T1, T2   float64
	Dt       float64
	Flat     float64
	Delay    float64
	Expected float64
	Earth    *Trajectory
	Venus    *Trajectory
}

// Shapiro propagates the two halves of the grazing null geodesic from the
// solar limb: forward to Earth's radius and backward to Venus's. Crossing
// times are read in Schwarzschild time and the round trip is converted to
// Earth's proper time.
func Shapiro(ctx context.Context, reg *Registry, env Env) (*ShapiroResult, error) {
	earth := config.GetPreset("shapiro", "earth")
	venus := config.GetPreset("shapiro", "venus")

	trs, err := Ensemble(ctx, []*config.Config{earth, venus}, reg, env, 2)
	if err != nil {
		return nil, fmt.Errorf("shapiro: %w", err)
	}
	for _, tr := range trs {
		if !tr.Reached {
			return nil, fmt.Errorf("shapiro: photon stopped at lambda=%g before target", tr.Lambda)
		}
	}

	p := earth.Params()
	res := &ShapiroResult{Earth: trs[0], Venus: trs[1]}
	res.T1 = p.StaticTime(trs[0].Crossing[0], trs[0].Crossing[1])
	res.T2 = p.StaticTime(trs[1].Crossing[0], trs[1].Crossing[1])

	re := earth.Run.TargetRadius
	res.Dt = (res.T1 - res.T2) * 2 * math.Sqrt(1-2*p.Mass/re)
	res.Flat = 2 * (config.EarthY + config.VenusY)
	res.Delay = res.Dt - res.Flat
	res.Expected = ExpectedShapiroDelay(p, config.SunRadius, re, venus.Run.TargetRadius)
	return res, nil
}

// ExpectedShapiroDelay is the first-order weak-field delay for the same
// geometry, measured on Earth's clock.
func ExpectedShapiroDelay(p spacetime.Params, r0, re, rv float64) float64 {
	m := p.Mass
	leg := func(r float64) float64 {
		y := math.Sqrt(r*r - r0*r0)
		return y + 2*m*math.Log((r+y)/r0) + m*math.Sqrt((r-r0)/(r+r0))
	}
	dt := (leg(re) + leg(rv)) * 2 * math.Sqrt(1-2*m/re)
	return dt - 2*(math.Sqrt(re*re-r0*r0)+math.Sqrt(rv*rv-r0*r0))
}
