// Package potential provides radial potentials for the phase engine.
package potential

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/san-kum/scatsim/internal/scatter"
)

// Named is a potential that can describe itself and its parameters.
type Named interface {
	scatter.Potential
	Name() string
	GetParams() map[string]float64
}

// Zero is the free-particle potential.
type Zero struct{}

func (Zero) Eval(float64) (float64, error) { return 0, nil }
func (Zero) Name() string                  { return "zero" }
func (Zero) GetParams() map[string]float64 { return map[string]float64{} }

// SquareWell is -V0 inside radius R and zero outside.
type SquareWell struct {
	V0, R float64
}

func NewSquareWell(v0, r float64) *SquareWell {
	return &SquareWell{V0: v0, R: r}
}

func (s *SquareWell) Eval(r float64) (float64, error) {
	if r < s.R {
		return -s.V0, nil
	}
	return 0, nil
}

func (s *SquareWell) Name() string { return "square_well" }

func (s *SquareWell) GetParams() map[string]float64 {
	return map[string]float64{"V0": s.V0, "R": s.R}
}

// yukawaFloor keeps the 1/r factor finite at the origin.
const yukawaFloor = 1e-6

// Yukawa is -g exp(-mu r)/r, where mu is the inverse screening length.
type Yukawa struct {
	G, Mu float64
}

func NewYukawa(g, mu float64) *Yukawa {
	return &Yukawa{G: g, Mu: mu}
}

func (y *Yukawa) Eval(r float64) (float64, error) {
	if r < yukawaFloor {
		r = yukawaFloor
	}
	return -y.G * math.Exp(-y.Mu*r) / r, nil
}

func (y *Yukawa) Name() string { return "yukawa" }

func (y *Yukawa) GetParams() map[string]float64 {
	return map[string]float64{"g": y.G, "mu": y.Mu}
}

// SoftCoulomb is Z/sqrt(r^2 + a^2); positive Z repels.
type SoftCoulomb struct {
	Z, A float64
}

func NewSoftCoulomb(z, a float64) *SoftCoulomb {
	return &SoftCoulomb{Z: z, A: a}
}

func (c *SoftCoulomb) Eval(r float64) (float64, error) {
	return c.Z / math.Sqrt(r*r+c.A*c.A), nil
}

func (c *SoftCoulomb) Name() string { return "soft_coulomb" }

func (c *SoftCoulomb) GetParams() map[string]float64 {
	return map[string]float64{"Z": c.Z, "a": c.A}
}

// Gaussian is -V0 exp(-(r/R)^2).
type Gaussian struct {
	V0, R float64
}

func NewGaussian(v0, r float64) *Gaussian {
	return &Gaussian{V0: v0, R: r}
}

func (g *Gaussian) Eval(r float64) (float64, error) {
	x := r / g.R
	return -g.V0 * math.Exp(-x*x), nil
}

func (g *Gaussian) Name() string { return "gaussian" }

func (g *Gaussian) GetParams() map[string]float64 {
	return map[string]float64{"V0": g.V0, "R": g.R}
}

// Sum adds its terms. An empty Sum is the zero potential.
type Sum []scatter.Potential

func Combine(terms ...scatter.Potential) Sum {
	return Sum(terms)
}

func (s Sum) Eval(r float64) (float64, error) {
	total := 0.0
	for _, term := range s {
		v, err := term.Eval(r)
		if err != nil {
			return 0, err
		}
		total += v
	}
	return total, nil
}

func (s Sum) Name() string {
	if len(s) == 0 {
		return "zero"
	}
	names := make([]string, len(s))
	for i, term := range s {
		names[i] = Describe(term)
	}
	return strings.Join(names, " + ")
}

func (s Sum) GetParams() map[string]float64 {
	return map[string]float64{"terms": float64(len(s))}
}

// Describe renders a potential as name(k=v, ...), params sorted by key.
func Describe(p scatter.Potential) string {
	n, ok := p.(Named)
	if !ok {
		return fmt.Sprintf("%T", p)
	}
	if _, isSum := p.(Sum); isSum {
		return n.Name()
	}
	params := n.GetParams()
	if len(params) == 0 {
		return n.Name()
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%g", k, params[k])
	}
	return fmt.Sprintf("%s(%s)", n.Name(), strings.Join(parts, ", "))
}
