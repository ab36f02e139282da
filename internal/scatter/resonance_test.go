package scatter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindResonancesSingleJump(t *testing.T) {
	series := PhaseSeries{{1, 0.0}, {2, 0.5}, {3, 3.0}}

	opts := DefaultResonanceOptions()
	opts.MinJump = 0.7
	flags, err := FindResonances(series, opts)
	require.NoError(t, err)

	require.Len(t, flags, 1)
	assert.Equal(t, 3.0, flags[0].Energy)
	assert.InDelta(t, 2.5, flags[0].Score, 1e-12)
}

func TestFindResonancesNeverFlagsFirstIndex(t *testing.T) {
	opts := ResonanceOptions{MinJump: 0}

	flags, err := FindResonances(PhaseSeries{{1, 100}}, opts)
	require.NoError(t, err)
	assert.Empty(t, flags)

	flags, err = FindResonances(PhaseSeries{{1, 100}, {2, 100}, {3, 100}}, opts)
	require.NoError(t, err)
	require.Len(t, flags, 2, "a zero threshold flags every index after the first")
	assert.Equal(t, 2.0, flags[0].Energy)
	assert.Equal(t, 3.0, flags[1].Energy)
}

func TestFindResonancesDelayOnlyAdds(t *testing.T) {
	series := PhaseSeries{{1, 0}, {2, 1.0}, {3, 2.0}, {4, 2.1}}
	delays := DelaySeries{{1, 0}, {2, -5.0}, {3, 4.0}, {4, 50.0}}

	flags, err := FindResonances(series, ResonanceOptions{MinJump: 0.7, Delays: delays, DelayThreshold: 1.0})
	require.NoError(t, err)

	require.Len(t, flags, 2, "large delay at E=4 must not create a flag")
	assert.InDelta(t, 1.0, flags[0].Score, 1e-12, "delay below threshold adds nothing")
	assert.InDelta(t, 1.0+3.0, flags[1].Score, 1e-12)

	for _, f := range flags {
		i := int(f.Energy) - 1
		assert.GreaterOrEqual(t, f.Score, math.Abs(series[i].Delta-series[i-1].Delta))
	}
}

func TestFindResonancesGridMismatch(t *testing.T) {
	series := PhaseSeries{{1, 0}, {2, 1}, {3, 2}}

	_, err := FindResonances(series, ResonanceOptions{MinJump: 0.5, Delays: DelaySeries{{1, 0}, {2, 0}}})
	assert.ErrorIs(t, err, ErrGridMismatch)

	_, err = FindResonances(series, ResonanceOptions{MinJump: 0.5, Delays: DelaySeries{{1, 0}, {2.5, 0}, {3, 0}}})
	assert.ErrorIs(t, err, ErrGridMismatch)
	assert.ErrorIs(t, err, ErrDomain)
}

func TestFindResonancesBadThreshold(t *testing.T) {
	_, err := FindResonances(PhaseSeries{{1, 0}}, ResonanceOptions{MinJump: -1})
	assert.ErrorIs(t, err, ErrBadThreshold)

	_, err = FindResonances(PhaseSeries{{1, 0}}, ResonanceOptions{MinJump: math.NaN()})
	assert.ErrorIs(t, err, ErrBadThreshold)
}

func TestFindResonancesBreitWignerLevel(t *testing.T) {
	const e0, gamma = 3.0, 0.02

	series := PhaseSeries{}
	for i := 0; i <= 80; i++ {
		en := 1 + 0.05*float64(i)
		series = append(series, PhasePoint{Energy: en, Delta: BreitWignerPhase(en, e0, gamma)})
	}

	flags, err := FindResonances(series, DefaultResonanceOptions())
	require.NoError(t, err)

	require.Len(t, flags, 2, "a narrow level jumps across two grid steps")
	assert.InDelta(t, 3.0, flags[0].Energy, 1e-9)
	assert.InDelta(t, 3.05, flags[1].Energy, 1e-9)
}

func TestBreitWignerPhase(t *testing.T) {
	assert.InDelta(t, math.Pi/2, BreitWignerPhase(2, 2, 1), 1e-12)
	assert.Less(t, BreitWignerPhase(0, 2, 0.1), 0.1)
	assert.Greater(t, BreitWignerPhase(4, 2, 0.1), math.Pi-0.1)
}
