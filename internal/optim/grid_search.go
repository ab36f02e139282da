// Package optim scans potential parameters over a grid of values.
package optim

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/san-kum/scatsim/internal/config"
	"github.com/san-kum/scatsim/internal/experiment"
	"github.com/san-kum/scatsim/internal/potential"
)

// Metric reduces a run to the value being maximized.
type Metric func(*experiment.Result) float64

var Metrics = map[string]Metric{
	"sigma_total": func(r *experiment.Result) float64 { return r.SigmaTotal },
	"candidates":  func(r *experiment.Result) float64 { return float64(r.CandidateCount()) },
	"max_score": func(r *experiment.Result) float64 {
		best := 0.0
		for _, cands := range r.Candidates {
			for _, c := range cands {
				best = math.Max(best, c.Score)
			}
		}
		return best
	},
}

func MetricNames() []string {
	names := make([]string, 0, len(Metrics))
	for name := range Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Param addresses one parameter of one potential term, written "term.name"
// on the command line, e.g. "0.V0".
type Param struct {
	Term int
	Name string
}

func (p Param) String() string { return fmt.Sprintf("%d.%s", p.Term, p.Name) }

func ParseParam(s string) (Param, error) {
	term, name, ok := strings.Cut(s, ".")
	if !ok || name == "" {
		return Param{}, fmt.Errorf("param %q: want term.name", s)
	}
	idx, err := strconv.Atoi(term)
	if err != nil || idx < 0 {
		return Param{}, fmt.Errorf("param %q: bad term index", s)
	}
	return Param{Term: idx, Name: name}, nil
}

type Point struct {
	Values map[string]float64
	Metric float64
}

type GridSearch struct {
	params []Param
	ranges [][]float64
}

func NewGridSearch(params []Param, ranges [][]float64) *GridSearch {
	return &GridSearch{params: params, ranges: ranges}
}

// Search runs base once per grid point and returns every point plus the one
// with the largest metric. Ties keep the earliest point.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, metric Metric) (Point, []Point, error) {
	if len(g.params) != len(g.ranges) {
		return Point{}, nil, fmt.Errorf("%d params but %d ranges", len(g.params), len(g.ranges))
	}
	reg := potential.NewRegistry()
	for _, p := range g.params {
		if p.Term >= len(base.Potentials) {
			return Point{}, nil, fmt.Errorf("param %s: config has %d potential terms", p, len(base.Potentials))
		}
		typ := base.Potentials[p.Term].Type
		names, ok := reg.Params(typ)
		if !ok {
			return Point{}, nil, fmt.Errorf("param %s: unknown potential type %q", p, typ)
		}
		if !slices.Contains(names, p.Name) {
			return Point{}, nil, fmt.Errorf("param %s: %s has parameters %v", p, typ, names)
		}
	}

	var points []Point
	err := g.searchRecursive(ctx, 0, make([]float64, len(g.params)), base, metric, &points)
	if err != nil {
		return Point{}, nil, err
	}
	if len(points) == 0 {
		return Point{}, nil, fmt.Errorf("empty search grid")
	}

	best := points[0]
	for _, p := range points[1:] {
		if p.Metric > best.Metric {
			best = p
		}
	}
	return best, points, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current []float64,
	base *config.Config,
	metric Metric,
	points *[]Point,
) error {
	if depth == len(g.params) {
		cfg := base.Clone()
		values := make(map[string]float64, len(g.params))
		for i, p := range g.params {
			cfg.Potentials[p.Term].Params[p.Name] = current[i]
			values[p.String()] = current[i]
		}

		res, err := experiment.Run(ctx, cfg)
		if err != nil {
			return fmt.Errorf("at %v: %w", values, err)
		}
		*points = append(*points, Point{Values: values, Metric: metric(res)})
		return nil
	}

	for _, val := range g.ranges[depth] {
		current[depth] = val
		if err := g.searchRecursive(ctx, depth+1, current, base, metric, points); err != nil {
			return err
		}
	}
	return nil
}
