package config

import (
	"math"
	"sort"

	"github.com/san-kum/geodesim/internal/spacetime"
)

// Solar system values in seconds, c = G = 1.
const (
	SunMass   = 4.9e-6
	SunRadius = 2.33
	EarthY    = 498.67
	VenusY    = 370.7
)

var Presets = map[string]map[string]*Config{
	"shapiro": {
		"earth": shapiroPhoton(EarthY, 1),
		"venus": shapiroPhoton(VenusY, -1),
	},
	"radial": {
		"outgoing": RadialPhoton(1, 10, 100),
	},
	"orbit": {
		"circular":      circularOrbit(1, 10),
		"polar":         polarOrbit(1, 10),
		"photon-sphere": photonSphere(1),
	},
	"kerr": {
		"prograde": kerrPrograde(1, 0.5, 10),
	},
	"observer": {
		"hovering": hoveringObserver(1, 20, 1),
		"boosted":  hoveringObserver(1, 20, 2),
	},
}

func base(chart string, mass float64) *Config {
	cfg := DefaultConfig()
	cfg.Chart = chart
	cfg.Mass = mass
	return cfg
}

// shapiroPhoton starts tangent to the solar limb in Eddington-Finkelstein
// coordinates; dir=-1 follows the same null geodesic into the past.
func shapiroPhoton(y, dir float64) *Config {
	p := spacetime.Params{Mass: SunMass}
	u0 := math.Sqrt(SunRadius * SunRadius * SunRadius / (SunRadius - 2*SunMass))

	cfg := base(spacetime.EddingtonName, SunMass)
	cfg.Position = [4]float64{p.AdvancedTime(0, SunRadius), SunRadius, math.Pi / 2, 0}
	cfg.Velocity = [4]float64{dir * u0, 0, 0, dir}
	cfg.Run.TargetRadius = math.Hypot(SunRadius, y)
	cfg.Run.Duration = 0
	return cfg
}

// RadialPhoton is an outgoing radial light ray in Eddington-Finkelstein
// coordinates, stopped at target.
func RadialPhoton(mass, r0, target float64) *Config {
	cfg := base(spacetime.EddingtonName, mass)
	cfg.Position = [4]float64{0, r0, math.Pi / 2, 0}
	cfg.Velocity = [4]float64{2 / (1 - 2*mass/r0), 1, 0, 0}
	cfg.Run.TargetRadius = target
	cfg.Run.Duration = 0
	return cfg
}

func circularOrbit(mass, r float64) *Config {
	cfg := base(spacetime.SchwarzschildName, mass)
	k := math.Sqrt(1 - 3*mass/r)
	cfg.Position = [4]float64{0, r, math.Pi / 2, 0}
	cfg.Velocity = [4]float64{1 / k, 0, 0, math.Sqrt(mass/(r*r*r)) / k}
	cfg.Run.Duration = 400
	return cfg
}

// photonSphere is the unstable circular light ring at r = 3M.
func photonSphere(mass float64) *Config {
	cfg := base(spacetime.SchwarzschildName, mass)
	r := 3 * mass
	cfg.Position = [4]float64{0, r, math.Pi / 2, 0}
	cfg.Velocity = [4]float64{3, 0, 0, math.Sqrt(3) / r}
	cfg.Run.Duration = 20
	return cfg
}

// polarOrbit crosses both poles, exercising the near-pole charts.
func polarOrbit(mass, r float64) *Config {
	cfg := circularOrbit(mass, r)
	cfg.Velocity[2], cfg.Velocity[3] = cfg.Velocity[3], 0
	cfg.Run.RecordEvery = 10
	return cfg
}

func kerrPrograde(mass, spin, r float64) *Config {
	cfg := base(spacetime.KerrName, mass)
	cfg.Spin = spin
	cfg.Position = [4]float64{0, r, math.Pi / 2, 0}
	omega := math.Sqrt(mass) / (math.Pow(r, 1.5) + spin*math.Sqrt(mass))
	cfg.Velocity = [4]float64{1.2, 0, 0, 1.2 * omega}
	cfg.Run.Duration = 200
	return cfg
}

// hoveringObserver carries a static tetrad with a radial thrust of factor
// times the acceleration needed to hover at r.
func hoveringObserver(mass, r, factor float64) *Config {
	cfg := base(spacetime.SchwarzschildName, mass)
	f := 1 - 2*mass/r
	cfg.Body = "entity"
	cfg.Position = [4]float64{0, r, math.Pi / 2, 0}
	cfg.Velocity = [4]float64{1 / math.Sqrt(f), 0, 0, 0}
	cfg.Tetrad = TetradConfig{
		Forward: [4]float64{0, math.Sqrt(f), 0, 0},
		Right:   [4]float64{0, 0, 0, 1 / r},
		Up:      [4]float64{0, 0, -1 / r, 0},
		Force:   [3]float64{factor * mass / (r * r * math.Sqrt(f)), 0, 0},
	}
	cfg.Run.Duration = 50
	return cfg
}

// GetPreset returns a copy so callers may modify it.
func GetPreset(group, name string) *Config {
	if presets, ok := Presets[group]; ok {
		if cfg, ok := presets[name]; ok {
			return cfg.Clone()
		}
	}
	return nil
}

func ListPresets(group string) []string {
	presets, ok := Presets[group]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup resolves "group/name".
func Lookup(id string) *Config {
	for i := 0; i < len(id); i++ {
		if id[i] == '/' {
			return GetPreset(id[:i], id[i+1:])
		}
	}
	return nil
}

// All lists every preset as "group/name", sorted.
func All() []string {
	var ids []string
	for group := range Presets {
		for _, name := range ListPresets(group) {
			ids = append(ids, group+"/"+name)
		}
	}
	sort.Strings(ids)
	return ids
}
