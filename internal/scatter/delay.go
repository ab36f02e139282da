package scatter

// TimeDelay returns the Wigner time delay tau = 2 hbar d(delta)/dE.
//
// Interior points use a central difference. Endpoints, and every point of a
// series shorter than 3, get tau = 0; one-sided differences are not used.
func (e Engine) TimeDelay(series PhaseSeries) (DelaySeries, error) {
	if !(e.Hbar > 0) {
		return nil, domainErr("time delay", ErrNonPositiveHbar, "hbar = %g", e.Hbar)
	}
	if err := validateSeriesGrid("time delay", series); err != nil {
		return nil, err
	}

	out := make(DelaySeries, len(series))
	for i, p := range series {
		out[i].Energy = p.Energy
	}
	if len(series) < 3 {
		return out, nil
	}

	for i := 1; i < len(series)-1; i++ {
		prev, next := series[i-1], series[i+1]
		slope := (next.Delta - prev.Delta) / (next.Energy - prev.Energy)
		out[i].Tau = 2.0 * e.Hbar * slope
	}
	return out, nil
}

// TimeDelays applies TimeDelay to every partial wave of m.
func (e Engine) TimeDelays(m PhaseMap) (DelayMap, error) {
	out := make(DelayMap, len(m))
	for _, ell := range m.Ells() {
		d, err := e.TimeDelay(m[ell])
		if err != nil {
			return nil, err
		}
		out[ell] = d
	}
	return out, nil
}

func validateSeriesGrid(op string, series PhaseSeries) error {
	for i, p := range series {
		if !isFinite(p.Energy) || !isFinite(p.Delta) {
			return domainErr(op, ErrNonFinite, "entry %d = (%g, %g)", i, p.Energy, p.Delta)
		}
		if i > 0 && !(p.Energy > series[i-1].Energy) {
			return domainErr(op, ErrGridNotIncreasing, "E[%d] = %g after %g", i, p.Energy, series[i-1].Energy)
		}
	}
	return nil
}
