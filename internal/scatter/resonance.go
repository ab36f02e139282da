package scatter

import "math"

// gridTolerance is the relative energy mismatch accepted when pairing a
// delay series with its phase series.
const gridTolerance = 1e-9

type ResonanceOptions struct {
	// MinJump is the smallest |delta[i] - delta[i-1]| that flags index i.
	MinJump float64
	// Delays, when non-nil, adds max(0, tau[i] - DelayThreshold) to each score.
	// It must share the phase series energy grid.
	Delays         DelaySeries
	DelayThreshold float64
}

// DefaultResonanceOptions flags jumps of roughly a pi/2 crossing.
func DefaultResonanceOptions() ResonanceOptions {
	return ResonanceOptions{MinJump: 0.7, DelayThreshold: 1.0}
}

// FindResonances flags every index i >= 1 whose phase jump from i-1 reaches
// MinJump. The score is the jump plus any delay excess; the delay never
// suppresses a flagged jump.
func FindResonances(series PhaseSeries, opts ResonanceOptions) ([]Candidate, error) {
	const op = "find resonances"
	if math.IsNaN(opts.MinJump) || opts.MinJump < 0 {
		return nil, domainErr(op, ErrBadThreshold, "min_jump = %g", opts.MinJump)
	}
	if opts.Delays != nil {
		if math.IsNaN(opts.DelayThreshold) {
			return nil, domainErr(op, ErrBadThreshold, "delay_threshold = NaN")
		}
		if err := checkAligned(series, opts.Delays); err != nil {
			return nil, err
		}
	}

	var flags []Candidate
	for i := 1; i < len(series); i++ {
		jump := math.Abs(series[i].Delta - series[i-1].Delta)
		if jump < opts.MinJump {
			continue
		}
		score := jump
		if opts.Delays != nil {
			score += math.Max(0, opts.Delays[i].Tau-opts.DelayThreshold)
		}
		flags = append(flags, Candidate{Energy: series[i].Energy, Score: score})
	}
	return flags, nil
}

func checkAligned(series PhaseSeries, delays DelaySeries) error {
	const op = "find resonances"
	if len(series) != len(delays) {
		return domainErr(op, ErrGridMismatch, "%d phases, %d delays", len(series), len(delays))
	}
	for i := range series {
		a, b := series[i].Energy, delays[i].Energy
		scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
		if math.Abs(a-b) > gridTolerance*scale {
			return domainErr(op, ErrGridMismatch, "index %d: E = %g vs %g", i, a, b)
		}
	}
	return nil
}

// BreitWignerPhase is the resonant phase atan2(Gamma/2, E0 - E) of an
// isolated level at E0 with width Gamma.
func BreitWignerPhase(energy, e0, gamma float64) float64 {
	return math.Atan2(gamma/2.0, e0-energy)
}
