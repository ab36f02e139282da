package scatter

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"
)

// EffectivePotential adds the centrifugal barrier l(l+1)hbar^2/(2 mu r^2) to V(r).
func (e Engine) EffectivePotential(v Potential, ell int, mu, r float64) (float64, error) {
	base, err := v.Eval(r)
	if err != nil {
		return 0, err
	}
	if !isFinite(base) {
		return 0, domainErr("effective potential", ErrNonFinite, "V(%g) = %g", r, base)
	}
	l := float64(ell)
	return base + l*(l+1)*e.Hbar*e.Hbar/(2.0*mu*r*r), nil
}

// PhaseShift returns the semiclassical phase shift of partial wave ell at energy E.
//
// The local wavenumber under the effective potential is compared with the free
// wavenumber and the difference is summed over Grid.Steps equal steps starting
// at Grid.RMin. Classically forbidden regions contribute zero momentum. A fixed
// -l*pi/2 correction is applied at the end; the result is a heuristic and does
// not converge to the exact quantum phase as Steps grows.
func (e Engine) PhaseShift(v Potential, ell int, mu, energy float64) (float64, error) {
	if err := e.validate(ell, mu); err != nil {
		return 0, err
	}
	if !isFinite(energy) {
		return 0, domainErr("phase shift", ErrNonFinite, "E = %g", energy)
	}
	return e.phaseShift(v, ell, mu, energy)
}

func (e Engine) phaseShift(v Potential, ell int, mu, energy float64) (float64, error) {
	g := e.Grid
	dr := (g.RMax - g.RMin) / float64(g.Steps)
	k0 := math.Sqrt(2.0*mu*math.Max(energy, 0)) / e.Hbar
	if !isFinite(k0) {
		return 0, domainErr("phase shift", ErrNonFinite, "k0 = %g (mu = %g, E = %g)", k0, mu, energy)
	}

	delta := 0.0
	for i := 0; i < g.Steps; i++ {
		r := g.RMin + float64(i)*dr
		veff, err := e.EffectivePotential(v, ell, mu, r)
		if err != nil {
			return 0, err
		}
		k := math.Sqrt(2.0*mu*math.Max(energy-veff, 0)) / e.Hbar
		delta += (k - k0) * dr
	}
	if !isFinite(delta) {
		return 0, domainErr("phase shift", ErrNonFinite, "delta = %g (l = %d, E = %g)", delta, ell, energy)
	}

	return delta - float64(ell)*math.Pi/2.0, nil
}

func (e Engine) validate(ell int, mu float64) error {
	const op = "phase shift"
	switch {
	case !(e.Hbar > 0) || math.IsInf(e.Hbar, 0):
		return domainErr(op, ErrNonPositiveHbar, "hbar = %g", e.Hbar)
	case !(mu > 0) || math.IsInf(mu, 0):
		return domainErr(op, ErrNonPositiveMass, "mu = %g", mu)
	case !(e.Grid.RMin > 0) || !(e.Grid.RMax > e.Grid.RMin) || math.IsInf(e.Grid.RMax, 0):
		return domainErr(op, ErrBadInterval, "r_min = %g, r_max = %g", e.Grid.RMin, e.Grid.RMax)
	case e.Grid.Steps <= 0:
		return domainErr(op, ErrBadSteps, "steps = %d", e.Grid.Steps)
	case ell < 0:
		return domainErr(op, ErrNegativeEll, "l = %d", ell)
	}
	return nil
}

// Sweep computes PhaseShift for every ell at every grid energy.
//
// Cells run concurrently on at most Workers goroutines. Each cell owns one
// slot of the output, so series come back in grid order. The first failure
// cancels the remaining cells and is returned.
func (e Engine) Sweep(ctx context.Context, v Potential, ells []int, mu float64, energies []float64) (PhaseMap, error) {
	if err := validateEnergyGrid("phase sweep", energies); err != nil {
		return nil, err
	}
	if len(ells) == 0 {
		return nil, domainErr("phase sweep", ErrEmptyGrid, "no angular momenta")
	}
	seen := make(map[int]bool, len(ells))
	for _, ell := range ells {
		if seen[ell] {
			return nil, domainErr("phase sweep", ErrDuplicateEll, "l = %d", ell)
		}
		seen[ell] = true
		if err := e.validate(ell, mu); err != nil {
			return nil, err
		}
	}

	out := make(PhaseMap, len(ells))
	for _, ell := range ells {
		series := make(PhaseSeries, len(energies))
		for i, en := range energies {
			series[i].Energy = en
		}
		out[ell] = series
	}

	workers := e.Workers
	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, ell := range ells {
		series := out[ell]
		for i := range energies {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				d, err := e.phaseShift(v, ell, mu, series[i].Energy)
				if err != nil {
					return err
				}
				series[i].Delta = d
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Wavenumber returns sqrt(2 mu E)/hbar for a positive energy.
func (e Engine) Wavenumber(mu, energy float64) (float64, error) {
	switch {
	case !(e.Hbar > 0):
		return 0, domainErr("wavenumber", ErrNonPositiveHbar, "hbar = %g", e.Hbar)
	case !(mu > 0):
		return 0, domainErr("wavenumber", ErrNonPositiveMass, "mu = %g", mu)
	case !(energy > 0) || math.IsInf(energy, 0):
		return 0, domainErr("wavenumber", ErrNonPositiveWavenumber, "E = %g", energy)
	}
	return math.Sqrt(2.0*mu*energy) / e.Hbar, nil
}

func validateEnergyGrid(op string, energies []float64) error {
	if len(energies) == 0 {
		return domainErr(op, ErrEmptyGrid, "no energies")
	}
	for i, en := range energies {
		if !isFinite(en) {
			return domainErr(op, ErrNonFinite, "E[%d] = %g", i, en)
		}
		if i > 0 && !(en > energies[i-1]) {
			return domainErr(op, ErrGridNotIncreasing, "E[%d] = %g after %g", i, en, energies[i-1])
		}
	}
	return nil
}
