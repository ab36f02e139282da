package config

import (
	"math"
	"sort"
)

func ptr(v float64) *float64 { return &v }

// Presets are complete run configurations keyed by name.
var Presets = map[string]*Config{
	"demo": {
		ReducedMass: 1.0, Hbar: 1.0,
		EnergyGrid: &RangeConfig{Start: 0.1, Stop: 10.0, Count: 200},
		Ells:       []int{0, 1, 2},
		AngleGrid:  &RangeConfig{Start: 0, Stop: math.Pi, Count: 181},
		EStar:      ptr(3.0),
		Potentials: []PotentialConfig{
			{Type: "square_well", Params: map[string]float64{"V0": 5.0, "R": 1.2}},
			{Type: "yukawa", Params: map[string]float64{"g": 2.5, "mu": 1.0}},
		},
		Integration: IntegrationConfig{RMin: DefaultRMin, RMax: DefaultRMax, Steps: DefaultSteps},
		Resonance:   ResonanceConfig{MinJump: DefaultMinJump, DelayThreshold: 0.5, UseDelay: true},
	},
	"free": {
		ReducedMass: 1.0, Hbar: 1.0,
		Energies:    []float64{2.0},
		Ells:        []int{0},
		AngleGrid:   &RangeConfig{Start: 0, Stop: math.Pi, Count: 19},
		Integration: IntegrationConfig{RMin: DefaultRMin, RMax: DefaultRMax, Steps: 1000},
		Resonance:   ResonanceConfig{MinJump: DefaultMinJump, DelayThreshold: DefaultDelayThreshold},
	},
	"square_well": {
		ReducedMass: 1.0, Hbar: 1.0,
		EnergyGrid: &RangeConfig{Start: 0.1, Stop: 10.0, Count: 100},
		Ells:       []int{0, 1, 2, 3},
		AngleGrid:  &RangeConfig{Start: 0, Stop: math.Pi, Count: 91},
		Potentials: []PotentialConfig{
			{Type: "square_well", Params: map[string]float64{"V0": 5.0, "R": 1.2}},
		},
		Integration: IntegrationConfig{RMin: DefaultRMin, RMax: 20.0, Steps: 4000},
		Resonance:   ResonanceConfig{MinJump: DefaultMinJump, DelayThreshold: DefaultDelayThreshold, UseDelay: true},
	},
	"shallow_well": {
		ReducedMass: 1.0, Hbar: 1.0,
		EnergyGrid: &RangeConfig{Start: 0.05, Stop: 2.0, Count: 80},
		Ells:       []int{0, 1},
		AngleGrid:  &RangeConfig{Start: 0, Stop: math.Pi, Count: 91},
		Potentials: []PotentialConfig{
			{Type: "gaussian", Params: map[string]float64{"V0": 1.0, "R": 2.0}},
		},
		Integration: IntegrationConfig{RMin: DefaultRMin, RMax: 20.0, Steps: 4000},
		Resonance:   ResonanceConfig{MinJump: 0.3, DelayThreshold: DefaultDelayThreshold, UseDelay: true},
	},
	"yukawa": {
		ReducedMass: 0.5, Hbar: 1.0,
		EnergyGrid: &RangeConfig{Start: 0.2, Stop: 8.0, Count: 120},
		Ells:       []int{0, 1, 2, 3, 4},
		AngleGrid:  &RangeConfig{Start: 0, Stop: math.Pi, Count: 181},
		Potentials: []PotentialConfig{
			{Type: "yukawa", Params: map[string]float64{"g": 4.0, "mu": 0.7}},
		},
		Integration: IntegrationConfig{RMin: DefaultRMin, RMax: DefaultRMax, Steps: DefaultSteps},
		Resonance:   ResonanceConfig{MinJump: DefaultMinJump, DelayThreshold: DefaultDelayThreshold, UseDelay: true},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone deep-copies c so presets stay untouched by flag overrides.
func (c *Config) Clone() *Config {
	out := *c
	out.Energies = append([]float64(nil), c.Energies...)
	out.Thetas = append([]float64(nil), c.Thetas...)
	out.Ells = append([]int(nil), c.Ells...)
	if c.EnergyGrid != nil {
		g := *c.EnergyGrid
		out.EnergyGrid = &g
	}
	if c.AngleGrid != nil {
		g := *c.AngleGrid
		out.AngleGrid = &g
	}
	if c.EStar != nil {
		out.EStar = ptr(*c.EStar)
	}
	out.Potentials = make([]PotentialConfig, len(c.Potentials))
	for i, p := range c.Potentials {
		params := make(map[string]float64, len(p.Params))
		for k, v := range p.Params {
			params[k] = v
		}
		out.Potentials[i] = PotentialConfig{Type: p.Type, Params: params}
	}
	return &out
}
