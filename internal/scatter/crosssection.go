package scatter

import (
	"math"
	"math/cmplx"
)

type partialWave struct {
	ell   int
	delta float64
}

// Amplitude returns f(theta) = (1/2ik) sum (2l+1)(e^{2i delta_l} - 1) P_l(cos theta).
//
// Each delta_l is taken from the grid entry nearest to energy; off-grid energies
// are not interpolated.
func Amplitude(m PhaseMap, energy, k, theta float64) (complex128, error) {
	waves, err := wavesAt("amplitude", m, energy, k)
	if err != nil {
		return 0, err
	}
	return amplitude(waves, k, theta)
}

// DifferentialCrossSection returns |f(theta)|^2 for each angle, in input order.
func DifferentialCrossSection(m PhaseMap, energy, k float64, thetas []float64) ([]Sample, error) {
	waves, err := wavesAt("differential cross section", m, energy, k)
	if err != nil {
		return nil, err
	}

	out := make([]Sample, len(thetas))
	for i, th := range thetas {
		f, err := amplitude(waves, k, th)
		if err != nil {
			return nil, err
		}
		re, im := real(f), imag(f)
		out[i] = Sample{Theta: th, Value: re*re + im*im}
	}
	return out, nil
}

// TotalCrossSection returns (4 pi / k^2) sum (2l+1) sin^2 delta_l.
func TotalCrossSection(m PhaseMap, energy, k float64) (float64, error) {
	waves, err := wavesAt("total cross section", m, energy, k)
	if err != nil {
		return 0, err
	}
	sum := 0.0
	for _, w := range waves {
		s := math.Sin(w.delta)
		sum += float64(2*w.ell+1) * s * s
	}
	return 4 * math.Pi / (k * k) * sum, nil
}

func amplitude(waves []partialWave, k, theta float64) (complex128, error) {
	if math.IsNaN(theta) || theta < 0 || theta > math.Pi {
		return 0, domainErr("amplitude", ErrAngleRange, "theta = %g", theta)
	}
	x := math.Cos(theta)

	var sum complex128
	for _, w := range waves {
		p, err := Legendre(w.ell, x)
		if err != nil {
			return 0, err
		}
		coeff := float64(2*w.ell+1) * p
		// e^{2i delta} - 1
		sum += complex(coeff, 0) * (cmplx.Exp(complex(0, 2*w.delta)) - 1)
	}

	// Dividing by 2ik rotates the sum by -90 degrees as well as scaling it.
	return sum / complex(0, 2*k), nil
}

func wavesAt(op string, m PhaseMap, energy, k float64) ([]partialWave, error) {
	if !(k > 0) || math.IsInf(k, 0) {
		return nil, domainErr(op, ErrNonPositiveWavenumber, "k = %g", k)
	}
	if !isFinite(energy) {
		return nil, domainErr(op, ErrNonFinite, "E = %g", energy)
	}

	waves := make([]partialWave, 0, len(m))
	for _, ell := range m.Ells() {
		if ell < 0 {
			return nil, domainErr(op, ErrNegativeEll, "l = %d", ell)
		}
		d, err := nearestPhase(m[ell], energy)
		if err != nil {
			return nil, domainErr(op, ErrEmptySeries, "l = %d", ell)
		}
		waves = append(waves, partialWave{ell: ell, delta: d})
	}
	return waves, nil
}

// nearestPhase picks the entry whose energy is closest to energy; the first
// of equally distant entries wins.
func nearestPhase(series PhaseSeries, energy float64) (float64, error) {
	if len(series) == 0 {
		return 0, ErrEmptySeries
	}
	best := 0
	bestDist := math.Abs(series[0].Energy - energy)
	for i := 1; i < len(series); i++ {
		if d := math.Abs(series[i].Energy - energy); d < bestDist {
			best, bestDist = i, d
		}
	}
	return series[best].Delta, nil
}
