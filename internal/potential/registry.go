package potential

import (
	"fmt"
	"sort"

	"github.com/san-kum/scatsim/internal/scatter"
)

// Spec names a potential type and its parameters.
type Spec struct {
	Type   string
	Params map[string]float64
}

type builder struct {
	params []string
	build  func(p map[string]float64) Named
}

type Registry struct {
	builders map[string]builder
}

func NewRegistry() *Registry {
	r := &Registry{builders: make(map[string]builder)}

	r.builders["zero"] = builder{
		build: func(map[string]float64) Named { return Zero{} },
	}
	r.builders["square_well"] = builder{
		params: []string{"V0", "R"},
		build:  func(p map[string]float64) Named { return NewSquareWell(p["V0"], p["R"]) },
	}
	r.builders["yukawa"] = builder{
		params: []string{"g", "mu"},
		build:  func(p map[string]float64) Named { return NewYukawa(p["g"], p["mu"]) },
	}
	r.builders["soft_coulomb"] = builder{
		params: []string{"Z", "a"},
		build:  func(p map[string]float64) Named { return NewSoftCoulomb(p["Z"], p["a"]) },
	}
	r.builders["gaussian"] = builder{
		params: []string{"V0", "R"},
		build:  func(p map[string]float64) Named { return NewGaussian(p["V0"], p["R"]) },
	}

	return r
}

// Get builds one potential, failing on an unknown type or a missing parameter.
func (r *Registry) Get(spec Spec) (Named, error) {
	b, ok := r.builders[spec.Type]
	if !ok {
		return nil, fmt.Errorf("unknown potential type: %s", spec.Type)
	}
	for _, name := range b.params {
		if _, ok := spec.Params[name]; !ok {
			return nil, fmt.Errorf("potential %s: missing parameter %q", spec.Type, name)
		}
	}
	return b.build(spec.Params), nil
}

// Build sums every spec into one potential. No specs yields the zero potential.
func (r *Registry) Build(specs []Spec) (scatter.Potential, error) {
	if len(specs) == 0 {
		return Zero{}, nil
	}
	terms := make(Sum, 0, len(specs))
	for i, spec := range specs {
		p, err := r.Get(spec)
		if err != nil {
			return nil, fmt.Errorf("potential %d: %w", i, err)
		}
		terms = append(terms, p)
	}
	return terms, nil
}

func (r *Registry) List() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Params returns the parameters a type requires.
func (r *Registry) Params(name string) ([]string, bool) {
	b, ok := r.builders[name]
	if !ok {
		return nil, false
	}
	return append([]string(nil), b.params...), true
}
