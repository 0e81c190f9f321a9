package automation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/geodesim/internal/config"
	"github.com/san-kum/geodesim/internal/experiment"
	"github.com/san-kum/geodesim/internal/logging"
	"github.com/san-kum/geodesim/internal/storage"
)

// Scenario defines a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset (or the defaults) and overlays any
// config keys given under overrides.
type ScenarioStep struct {
	Preset    string    `yaml:"preset"`
	Overrides yaml.Node `yaml:"overrides"`
	SaveAs    string    `yaml:"save_as"`
}

// StepResult is one executed scenario step. RunID is empty unless the step
// was saved.
type StepResult struct {
	Config     *config.Config
	Trajectory *experiment.Trajectory
	RunID      string
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// Config resolves the step to a validated run configuration.
func (s ScenarioStep) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		cfg = config.Lookup(s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	}
	if !s.Overrides.IsZero() {
		if err := s.Overrides.Decode(cfg); err != nil {
			return nil, fmt.Errorf("overrides: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RunScenario executes all steps in order. Steps with save_as are written
// to store when it is non-nil. Results gathered before a failing step are
// returned with the error.
func RunScenario(ctx context.Context, scenario *Scenario, reg *experiment.Registry, env experiment.Env, store storage.Backend) ([]StepResult, error) {
	logger := env.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		logger.Info("scenario step", "scenario", scenario.Name, "step", i+1, "of", len(scenario.Steps), "preset", step.Preset)

		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		tr, err := experiment.Execute(ctx, cfg, reg, env)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		res := StepResult{Config: cfg, Trajectory: tr}
		if store != nil && step.SaveAs != "" {
			res.RunID, err = store.Save(storage.NewMetadata(step.SaveAs, cfg, tr), storage.NewSamples(tr))
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		results = append(results, res)
	}

	return results, nil
}

// Sweep runs a preset across evenly spaced values of one parameter.
type Sweep struct {
	Preset   string
	Param    string
	Min      float64
	Max      float64
	Points   int
	Parallel int
}

// SweepParams lists the parameters a sweep can vary.
var SweepParams = []string{"r0", "mass", "spin", "target", "duration", "step", "max_err"}

// SweepPoint holds one value of the swept parameter and its run.
type SweepPoint struct {
	Value      float64
	Trajectory *experiment.Trajectory
}

func setParam(cfg *config.Config, name string, v float64) error {
	switch name {
	case "r0":
		cfg.Position[1] = v
	case "mass":
		cfg.Mass = v
	case "spin":
		cfg.Spin = v
	case "target":
		cfg.Run.TargetRadius = v
	case "duration":
		cfg.Run.Duration = v
	case "step":
		cfg.Integrator.DefaultStep = v
	case "max_err":
		cfg.Integrator.MaxErr = v
	default:
		return fmt.Errorf("unknown sweep parameter: %s (available: %v)", name, SweepParams)
	}
	return nil
}

// Values returns the swept parameter values.
func (s *Sweep) Values() []float64 {
	if s.Points == 1 {
		return []float64{s.Min}
	}
	out := make([]float64, s.Points)
	step := (s.Max - s.Min) / float64(s.Points-1)
	for i := range out {
		out[i] = s.Min + float64(i)*step
	}
	return out
}

// Configs builds one validated configuration per swept value.
func (s *Sweep) Configs() ([]*config.Config, error) {
	if s.Points < 1 {
		return nil, fmt.Errorf("sweep needs at least one point")
	}
	base := config.Lookup(s.Preset)
	if base == nil {
		return nil, fmt.Errorf("unknown preset: %s", s.Preset)
	}

	values := s.Values()
	cfgs := make([]*config.Config, len(values))
	for i, v := range values {
		cfg := base.Clone()
		if err := setParam(cfg, s.Param, v); err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("%s=%g: %w", s.Param, v, err)
		}
		cfgs[i] = cfg
	}
	return cfgs, nil
}

// RunSweep executes a parameter sweep
func RunSweep(ctx context.Context, sweep *Sweep, reg *experiment.Registry, env experiment.Env) ([]SweepPoint, error) {
	cfgs, err := sweep.Configs()
	if err != nil {
		return nil, err
	}
	trs, err := experiment.Ensemble(ctx, cfgs, reg, env, sweep.Parallel)
	if err != nil {
		return nil, err
	}

	values := sweep.Values()
	points := make([]SweepPoint, len(trs))
	for i, tr := range trs {
		points[i] = SweepPoint{Value: values[i], Trajectory: tr}
	}
	return points, nil
}

// Best returns the point with the smallest value of the named run metric.
func Best(points []SweepPoint, metric string) (SweepPoint, bool) {
	best := math.Inf(1)
	var out SweepPoint
	found := false
	for _, p := range points {
		v, ok := p.Trajectory.Metrics[metric]
		if !ok || math.IsNaN(v) {
			continue
		}
		if v < best {
			best, out, found = v, p, true
		}
	}
	return out, found
}

// MonteCarlo reruns a preset with the spatial velocity components jittered
// uniformly by up to Perturbation.
type MonteCarlo struct {
	Preset       string
	Perturbation float64
	Trials       int
	Seed         int64
	Parallel     int
}

// Trial is one Monte Carlo sample.
type Trial struct {
	ID         int
	Velocity   [4]float64
	Trajectory *experiment.Trajectory
}

// Configs draws the perturbed configurations. A zero seed uses the clock.
func (m *MonteCarlo) Configs() ([]*config.Config, error) {
	base := config.Lookup(m.Preset)
	if base == nil {
		return nil, fmt.Errorf("unknown preset: %s", m.Preset)
	}
	if m.Trials < 1 {
		return nil, fmt.Errorf("monte carlo needs at least one trial")
	}

	seed := m.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	cfgs := make([]*config.Config, m.Trials)
	for i := range cfgs {
		cfg := base.Clone()
		for j := 1; j < 4; j++ {
			cfg.Velocity[j] += (rng.Float64() - 0.5) * 2 * m.Perturbation
		}
		cfgs[i] = cfg
	}
	return cfgs, nil
}

// RunMonteCarlo executes the trials in parallel.
func RunMonteCarlo(ctx context.Context, m *MonteCarlo, reg *experiment.Registry, env experiment.Env) ([]Trial, error) {
	cfgs, err := m.Configs()
	if err != nil {
		return nil, err
	}
	trs, err := experiment.Ensemble(ctx, cfgs, reg, env, m.Parallel)
	if err != nil {
		return nil, err
	}

	trials := make([]Trial, len(trs))
	for i, tr := range trs {
		trials[i] = Trial{ID: i, Velocity: cfgs[i].Velocity, Trajectory: tr}
	}
	return trials, nil
}

// Tally counts trials by stop outcome.
func Tally(trials []Trial) map[string]int {
	out := make(map[string]int)
	for _, t := range trials {
		out[t.Trajectory.Stop]++
	}
	return out
}
