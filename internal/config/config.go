package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/scatsim/internal/potential"
	"github.com/san-kum/scatsim/internal/scatter"
)

const (
	DefaultReducedMass    = 1.0
	DefaultHbar           = 1.0
	DefaultRMin           = 1e-3
	DefaultRMax           = 50.0
	DefaultSteps          = 10000
	DefaultMinJump        = 0.7
	DefaultDelayThreshold = 1.0
)

type Config struct {
	ReducedMass float64           `yaml:"mu_red"`
	Hbar        float64           `yaml:"hbar"`
	Energies    []float64         `yaml:"energies,omitempty"`
	EnergyGrid  *RangeConfig      `yaml:"energy_grid,omitempty"`
	Ells        []int             `yaml:"ells"`
	Thetas      []float64         `yaml:"thetas,omitempty"`
	AngleGrid   *RangeConfig      `yaml:"angle_grid,omitempty"`
	EStar       *float64          `yaml:"E_star,omitempty"`
	Potentials  []PotentialConfig `yaml:"potentials"`
	Integration IntegrationConfig `yaml:"integration"`
	Resonance   ResonanceConfig   `yaml:"resonance"`
	Workers     int               `yaml:"workers,omitempty"`
}

// RangeConfig is an inclusive evenly spaced grid of Count points.
type RangeConfig struct {
	Start float64 `yaml:"start"`
	Stop  float64 `yaml:"stop"`
	Count int     `yaml:"count"`
}

// PotentialConfig is one additive term, e.g. {type: square_well, V0: 5, R: 1.2}.
type PotentialConfig struct {
	Type   string             `yaml:"type"`
	Params map[string]float64 `yaml:",inline"`
}

type IntegrationConfig struct {
	RMin  float64 `yaml:"r_min"`
	RMax  float64 `yaml:"r_max"`
	Steps int     `yaml:"steps"`
}

type ResonanceConfig struct {
	MinJump        float64 `yaml:"min_jump"`
	DelayThreshold float64 `yaml:"delay_threshold"`
	UseDelay       bool    `yaml:"use_delay"`
}

func DefaultConfig() *Config {
	return &Config{
		ReducedMass: DefaultReducedMass,
		Hbar:        DefaultHbar,
		EnergyGrid:  &RangeConfig{Start: 0.1, Stop: 10.0, Count: 200},
		Ells:        []int{0, 1, 2},
		AngleGrid:   &RangeConfig{Start: 0, Stop: math.Pi, Count: 181},
		Integration: IntegrationConfig{
			RMin:  DefaultRMin,
			RMax:  DefaultRMax,
			Steps: DefaultSteps,
		},
		Resonance: ResonanceConfig{
			MinJump:        DefaultMinJump,
			DelayThreshold: DefaultDelayThreshold,
			UseDelay:       true,
		},
	}
}

// Load reads a YAML or JSON config over the defaults. An explicit energy or
// angle list replaces the default grid.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if len(cfg.Energies) > 0 {
		cfg.EnergyGrid = nil
	}
	if len(cfg.Thetas) > 0 {
		cfg.AngleGrid = nil
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

func (r RangeConfig) Values() []float64 {
	if r.Count <= 0 {
		return nil
	}
	if r.Count == 1 {
		return []float64{r.Start}
	}
	out := make([]float64, r.Count)
	step := (r.Stop - r.Start) / float64(r.Count-1)
	for i := range out {
		out[i] = r.Start + float64(i)*step
	}
	out[r.Count-1] = r.Stop
	return out
}

func (c *Config) EnergyValues() []float64 {
	if len(c.Energies) > 0 {
		return c.Energies
	}
	if c.EnergyGrid != nil {
		return c.EnergyGrid.Values()
	}
	return nil
}

func (c *Config) ThetaValues() []float64 {
	if len(c.Thetas) > 0 {
		return c.Thetas
	}
	if c.AngleGrid != nil {
		return c.AngleGrid.Values()
	}
	return nil
}

// ReferenceEnergy is E_star, or the middle grid energy when unset.
func (c *Config) ReferenceEnergy() float64 {
	if c.EStar != nil {
		return *c.EStar
	}
	energies := c.EnergyValues()
	if len(energies) == 0 {
		return 0
	}
	return energies[len(energies)/2]
}

func (c *Config) PotentialSpecs() []potential.Spec {
	specs := make([]potential.Spec, len(c.Potentials))
	for i, p := range c.Potentials {
		specs[i] = potential.Spec{Type: p.Type, Params: p.Params}
	}
	return specs
}

// Engine returns the frozen numeric settings for the phase engine.
func (c *Config) Engine() scatter.Engine {
	e := scatter.NewEngine()
	e.Hbar = c.Hbar
	e.Grid = scatter.Grid{
		RMin:  c.Integration.RMin,
		RMax:  c.Integration.RMax,
		Steps: c.Integration.Steps,
	}
	if c.Workers > 0 {
		e.Workers = c.Workers
	}
	return e
}

// Validate checks the configuration a run needs before any integration starts.
func (c *Config) Validate() error {
	var errs []error
	if !(c.ReducedMass > 0) {
		errs = append(errs, fmt.Errorf("mu_red must be positive, got %g", c.ReducedMass))
	}
	if !(c.Hbar > 0) {
		errs = append(errs, fmt.Errorf("hbar must be positive, got %g", c.Hbar))
	}

	energies := c.EnergyValues()
	if len(energies) == 0 {
		errs = append(errs, errors.New("energy grid is empty"))
	}
	for i := 1; i < len(energies); i++ {
		if !(energies[i] > energies[i-1]) {
			errs = append(errs, fmt.Errorf("energies must be strictly increasing at index %d", i))
			break
		}
	}

	if len(c.Ells) == 0 {
		errs = append(errs, errors.New("ells is empty"))
	}
	for _, l := range c.Ells {
		if l < 0 {
			errs = append(errs, fmt.Errorf("ell must be non-negative, got %d", l))
		}
	}

	for _, th := range c.ThetaValues() {
		if math.IsNaN(th) || th < 0 || th > math.Pi {
			errs = append(errs, fmt.Errorf("theta %g outside [0, pi]", th))
			break
		}
	}

	if c.ReferenceEnergy() <= 0 {
		errs = append(errs, fmt.Errorf("E_star must be positive, got %g", c.ReferenceEnergy()))
	}

	in := c.Integration
	if !(in.RMin > 0) || !(in.RMax > in.RMin) {
		errs = append(errs, fmt.Errorf("integration needs 0 < r_min < r_max, got [%g, %g]", in.RMin, in.RMax))
	}
	if in.Steps <= 0 {
		errs = append(errs, fmt.Errorf("integration steps must be positive, got %d", in.Steps))
	}
	if c.Resonance.MinJump < 0 {
		errs = append(errs, fmt.Errorf("min_jump must be non-negative, got %g", c.Resonance.MinJump))
	}
	for i, p := range c.Potentials {
		if p.Type == "" {
			errs = append(errs, fmt.Errorf("potential %d has no type", i))
		}
	}

	return errors.Join(errs...)
}
