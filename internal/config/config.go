package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/geodesim/internal/logging"
	"github.com/san-kum/geodesim/internal/spacetime"
)

const (
	DefaultChart         = spacetime.SchwarzschildName
	DefaultIntegrator    = "dopri5"
	DefaultStep          = 0.01
	DefaultMinStep       = 0.0001
	DefaultMaxStep       = 0.1
	DefaultMaxErr        = 1e-12
	DefaultMaxIterations = 1_000_000
	DefaultProgressEvery = 100
	DefaultPoleThreshold = 0.1
	DefaultDataDir       = ".geodesim"
)

type Config struct {
	Chart      string           `yaml:"chart" validate:"required"`
	Mass       float64          `yaml:"mass" validate:"gt=0"`
	Spin       float64          `yaml:"spin"`
	Body       string           `yaml:"body" validate:"oneof=particle entity"`
	Position   [4]float64       `yaml:"position"`
	Velocity   [4]float64       `yaml:"velocity"`
	Tetrad     TetradConfig     `yaml:"tetrad"`
	Integrator IntegratorConfig `yaml:"integrator"`
	Run        RunConfig        `yaml:"run"`
	Storage    StorageConfig    `yaml:"storage"`
	Log        logging.Config   `yaml:"log"`
}

// TetradConfig is read only for entity bodies. The three spatial directions
// are orthonormalized against the velocity before integration.
type TetradConfig struct {
	Forward [4]float64 `yaml:"forward"`
	Right   [4]float64 `yaml:"right"`
	Up      [4]float64 `yaml:"up"`
	Force   [3]float64 `yaml:"force"`
	AngVel  [3]float64 `yaml:"ang_vel"`
}

type IntegratorConfig struct {
	Kind        string  `yaml:"kind" validate:"oneof=dopri5 rk4 euler"`
	DefaultStep float64 `yaml:"default_step" validate:"gt=0"`
	MinStep     float64 `yaml:"min_step" validate:"gt=0"`
	MaxStep     float64 `yaml:"max_step" validate:"gt=0"`
	MaxErr      float64 `yaml:"max_err" validate:"gt=0"`
}

// RunConfig controls the driver. A zero TargetRadius or Duration disables
// that stop condition; at least one of them must be set.
type RunConfig struct {
	TargetRadius  float64 `yaml:"target_radius" validate:"gte=0"`
	Duration      float64 `yaml:"duration" validate:"gte=0"`
	MaxIterations int     `yaml:"max_iterations" validate:"gt=0"`
	ProgressEvery int     `yaml:"progress_every" validate:"gte=0"`
	SwitchPoles   bool    `yaml:"switch_poles"`
	PoleThreshold float64 `yaml:"pole_threshold" validate:"gt=0,lt=0.5"`
	RecordEvery   int     `yaml:"record_every" validate:"gte=0"`
	ValidateState bool    `yaml:"validate_state"`
}

type StorageConfig struct {
	Kind    string `yaml:"kind" env:"GEODESIM_STORE" validate:"oneof=dir sqlite"`
	DataDir string `yaml:"data_dir" env:"GEODESIM_DATA_DIR" validate:"required"`
}

var (
	ErrStepOrder = errors.New("config: require min_step <= default_step <= max_step")
	ErrNoStop    = errors.New("config: run needs target_radius or duration")
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterStructValidation(func(sl validator.StructLevel) {
		ic := sl.Current().Interface().(IntegratorConfig)
		if ic.MinStep > ic.DefaultStep || ic.DefaultStep > ic.MaxStep {
			sl.ReportError(ic.DefaultStep, "DefaultStep", "default_step", "steporder", "")
		}
	}, IntegratorConfig{})
}

func DefaultConfig() *Config {
	return &Config{
		Chart:    DefaultChart,
		Mass:     1,
		Body:     "particle",
		Position: [4]float64{0, 10, 1.5707963267948966, 0},
		Velocity: [4]float64{1, 0, 0, 0},
		Integrator: IntegratorConfig{
			Kind:        DefaultIntegrator,
			DefaultStep: DefaultStep,
			MinStep:     DefaultMinStep,
			MaxStep:     DefaultMaxStep,
			MaxErr:      DefaultMaxErr,
		},
		Run: RunConfig{
			Duration:      100,
			MaxIterations: DefaultMaxIterations,
			ProgressEvery: DefaultProgressEvery,
			SwitchPoles:   true,
			PoleThreshold: DefaultPoleThreshold,
			ValidateState: true,
		},
		Storage: StorageConfig{Kind: "dir", DataDir: DefaultDataDir},
		Log:     logging.DefaultConfig(),
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML on top of DefaultConfig.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overrides storage and log settings from GEODESIM_* variables.
func (c *Config) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				if fe.Tag() == "steporder" {
					return ErrStepOrder
				}
			}
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Run.TargetRadius == 0 && c.Run.Duration == 0 {
		return ErrNoStop
	}
	if err := c.Params().Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) Params() spacetime.Params {
	return spacetime.Params{Mass: c.Mass, AngMomentum: c.Spin}
}

func (c *Config) Clone() *Config {
	out := *c
	return &out
}
