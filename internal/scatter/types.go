// Package scatter estimates semiclassical scattering observables from a radial
// potential: partial-wave phase shifts, Wigner time delays, resonance
// candidates and differential cross sections.
package scatter

import (
	"math"
	"runtime"
	"sort"
)

// Potential evaluates a radial potential energy at radius r.
// Implementations must be safe for concurrent use; the sweep calls Eval
// from several goroutines at once.
type Potential interface {
	Eval(r float64) (float64, error)
}

// PotentialFunc adapts a plain function that cannot fail.
type PotentialFunc func(r float64) float64

func (f PotentialFunc) Eval(r float64) (float64, error) {
	return f(r), nil
}

type PhasePoint struct {
	Energy float64
	Delta  float64
}

// PhaseSeries holds one partial wave across an energy grid, ordered by energy.
type PhaseSeries []PhasePoint

func (s PhaseSeries) Energies() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Energy
	}
	return out
}

func (s PhaseSeries) Deltas() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Delta
	}
	return out
}

// PhaseMap maps an angular momentum to its phase series.
type PhaseMap map[int]PhaseSeries

// Ells returns the keys in increasing order.
func (m PhaseMap) Ells() []int {
	return sortedKeys(m)
}

type DelayPoint struct {
	Energy float64
	Tau    float64
}

type DelaySeries []DelayPoint

func (s DelaySeries) Taus() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Tau
	}
	return out
}

type DelayMap map[int]DelaySeries

func (m DelayMap) Ells() []int {
	return sortedKeys(m)
}

// Candidate is a grid energy flagged as a possible resonance.
type Candidate struct {
	Energy float64
	Score  float64
}

// Sample is one differential cross-section value at angle Theta.
type Sample struct {
	Theta float64
	Value float64
}

// Grid is the radial integration grid.
type Grid struct {
	RMin  float64
	RMax  float64
	Steps int
}

func DefaultGrid() Grid {
	return Grid{RMin: 1e-3, RMax: 50.0, Steps: 10000}
}

// Engine carries the frozen numeric configuration threaded through every call.
type Engine struct {
	Hbar    float64
	Grid    Grid
	Workers int
}

// NewEngine returns an engine in natural units (hbar = 1) on the default grid.
func NewEngine() Engine {
	return Engine{
		Hbar:    1.0,
		Grid:    DefaultGrid(),
		Workers: runtime.GOMAXPROCS(0),
	}
}

func (e Engine) WithGrid(g Grid) Engine {
	e.Grid = g
	return e
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
