// Package experiment runs one scattering analysis from a configuration.
package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/scatsim/internal/config"
	"github.com/san-kum/scatsim/internal/potential"
	"github.com/san-kum/scatsim/internal/scatter"
)

type Result struct {
	Potential    string
	ReducedMass  float64
	Hbar         float64
	Phases       scatter.PhaseMap
	Delays       scatter.DelayMap
	Candidates   map[int][]scatter.Candidate
	EStar        float64
	KStar        float64
	CrossSection []scatter.Sample
	SigmaTotal   float64
}

// CandidateCount sums candidates over every partial wave.
func (r *Result) CandidateCount() int {
	n := 0
	for _, c := range r.Candidates {
		n += len(c)
	}
	return n
}

type Experiment struct {
	cfg      *config.Config
	registry *potential.Registry
	pot      scatter.Potential
	engine   scatter.Engine
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg, registry: potential.NewRegistry()}
}

// WithPotential replaces the configured potentials with p.
func (e *Experiment) WithPotential(p scatter.Potential) *Experiment {
	e.pot = p
	return e
}

func (e *Experiment) Setup() error {
	if err := e.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if e.pot == nil {
		p, err := e.registry.Build(e.cfg.PotentialSpecs())
		if err != nil {
			return err
		}
		e.pot = p
	}
	e.engine = e.cfg.Engine()
	return nil
}

// Run sweeps the phase shifts and derives delays, resonance candidates and the
// cross section at the reference energy.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if e.pot == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	cfg := e.cfg
	phases, err := e.engine.Sweep(ctx, e.pot, cfg.Ells, cfg.ReducedMass, cfg.EnergyValues())
	if err != nil {
		return nil, fmt.Errorf("phase sweep: %w", err)
	}

	delays, err := e.engine.TimeDelays(phases)
	if err != nil {
		return nil, fmt.Errorf("time delay: %w", err)
	}

	candidates := make(map[int][]scatter.Candidate, len(phases))
	for _, ell := range phases.Ells() {
		opts := scatter.ResonanceOptions{
			MinJump:        cfg.Resonance.MinJump,
			DelayThreshold: cfg.Resonance.DelayThreshold,
		}
		if cfg.Resonance.UseDelay {
			opts.Delays = delays[ell]
		}
		c, err := scatter.FindResonances(phases[ell], opts)
		if err != nil {
			return nil, fmt.Errorf("resonances l=%d: %w", ell, err)
		}
		candidates[ell] = c
	}

	eStar := cfg.ReferenceEnergy()
	kStar, err := e.engine.Wavenumber(cfg.ReducedMass, eStar)
	if err != nil {
		return nil, fmt.Errorf("reference energy: %w", err)
	}
	dsdo, err := scatter.DifferentialCrossSection(phases, eStar, kStar, cfg.ThetaValues())
	if err != nil {
		return nil, fmt.Errorf("cross section: %w", err)
	}
	sigma, err := scatter.TotalCrossSection(phases, eStar, kStar)
	if err != nil {
		return nil, fmt.Errorf("cross section: %w", err)
	}

	return &Result{
		Potential:    potential.Describe(e.pot),
		ReducedMass:  cfg.ReducedMass,
		Hbar:         e.engine.Hbar,
		Phases:       phases,
		Delays:       delays,
		Candidates:   candidates,
		EStar:        eStar,
		KStar:        kStar,
		CrossSection: dsdo,
		SigmaTotal:   sigma,
	}, nil
}

// Run is Setup followed by Run for a one-shot analysis.
func Run(ctx context.Context, cfg *config.Config) (*Result, error) {
	e := New(cfg)
	if err := e.Setup(); err != nil {
		return nil, err
	}
	return e.Run(ctx)
}
