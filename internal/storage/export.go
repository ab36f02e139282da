package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/san-kum/scatsim/internal/experiment"
	"github.com/san-kum/scatsim/internal/scatter"
)

// Pair is an ordered (x, y) sample, serialized as a two-element array.
type Pair [2]float64

type ExportData struct {
	Potential   string         `json:"potential"`
	ReducedMass float64        `json:"mu_red"`
	Hbar        float64        `json:"hbar"`
	PhaseMap    map[int][]Pair `json:"phase_map"`
	DelayMap    map[int][]Pair `json:"delay_map"`
	Candidates  map[int][]Pair `json:"candidates"`
	CrossSect   []Pair         `json:"dsdo_at_E_star"`
	EStar       float64        `json:"E_star"`
	KStar       float64        `json:"k_star"`
	SigmaTotal  float64        `json:"sigma_total"`
}

func NewExportData(res *experiment.Result) *ExportData {
	data := &ExportData{
		Potential:   res.Potential,
		ReducedMass: res.ReducedMass,
		Hbar:        res.Hbar,
		PhaseMap:    make(map[int][]Pair, len(res.Phases)),
		DelayMap:    make(map[int][]Pair, len(res.Delays)),
		Candidates:  make(map[int][]Pair, len(res.Candidates)),
		CrossSect:   make([]Pair, len(res.CrossSection)),
		EStar:       res.EStar,
		KStar:       res.KStar,
		SigmaTotal:  res.SigmaTotal,
	}

	for ell, series := range res.Phases {
		pairs := make([]Pair, len(series))
		for i, p := range series {
			pairs[i] = Pair{p.Energy, p.Delta}
		}
		data.PhaseMap[ell] = pairs
	}
	for ell, series := range res.Delays {
		pairs := make([]Pair, len(series))
		for i, p := range series {
			pairs[i] = Pair{p.Energy, p.Tau}
		}
		data.DelayMap[ell] = pairs
	}
	for ell, cands := range res.Candidates {
		pairs := make([]Pair, len(cands))
		for i, c := range cands {
			pairs[i] = Pair{c.Energy, c.Score}
		}
		data.Candidates[ell] = pairs
	}
	for i, s := range res.CrossSection {
		data.CrossSect[i] = Pair{s.Theta, s.Value}
	}
	return data
}

// Result rebuilds the typed result from its exported form.
func (d *ExportData) Result() *experiment.Result {
	res := &experiment.Result{
		Potential:    d.Potential,
		ReducedMass:  d.ReducedMass,
		Hbar:         d.Hbar,
		Phases:       make(scatter.PhaseMap, len(d.PhaseMap)),
		Delays:       make(scatter.DelayMap, len(d.DelayMap)),
		Candidates:   make(map[int][]scatter.Candidate, len(d.Candidates)),
		CrossSection: make([]scatter.Sample, len(d.CrossSect)),
		EStar:        d.EStar,
		KStar:        d.KStar,
		SigmaTotal:   d.SigmaTotal,
	}
	for ell, pairs := range d.PhaseMap {
		series := make(scatter.PhaseSeries, len(pairs))
		for i, p := range pairs {
			series[i] = scatter.PhasePoint{Energy: p[0], Delta: p[1]}
		}
		res.Phases[ell] = series
	}
	for ell, pairs := range d.DelayMap {
		series := make(scatter.DelaySeries, len(pairs))
		for i, p := range pairs {
			series[i] = scatter.DelayPoint{Energy: p[0], Tau: p[1]}
		}
		res.Delays[ell] = series
	}
	for ell, pairs := range d.Candidates {
		cands := make([]scatter.Candidate, len(pairs))
		for i, p := range pairs {
			cands[i] = scatter.Candidate{Energy: p[0], Score: p[1]}
		}
		res.Candidates[ell] = cands
	}
	for i, p := range d.CrossSect {
		res.CrossSection[i] = scatter.Sample{Theta: p[0], Value: p[1]}
	}
	return res
}

func WriteJSON(w io.Writer, res *experiment.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewExportData(res))
}

func ExportJSON(path string, res *experiment.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteJSON(file, res); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func ExportJSONStdout(res *experiment.Result) error {
	return WriteJSON(os.Stdout, res)
}

// WritePhaseCSV writes one row per (l, E) with the phase shift and time delay.
func WritePhaseCSV(w io.Writer, res *experiment.Result) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"ell", "energy", "delta", "tau"}); err != nil {
		return err
	}
	for _, ell := range res.Phases.Ells() {
		series := res.Phases[ell]
		delays := res.Delays[ell]
		for i, p := range series {
			tau := "0"
			if i < len(delays) {
				tau = strconv.FormatFloat(delays[i].Tau, 'g', -1, 64)
			}
			row := []string{
				strconv.Itoa(ell),
				strconv.FormatFloat(p.Energy, 'g', -1, 64),
				strconv.FormatFloat(p.Delta, 'g', -1, 64),
				tau,
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCrossSectionCSV writes theta against dsigma/dOmega.
func WriteCrossSectionCSV(w io.Writer, res *experiment.Result) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"theta", "dsdo"}); err != nil {
		return err
	}
	for _, s := range res.CrossSection {
		row := []string{
			strconv.FormatFloat(s.Theta, 'g', -1, 64),
			strconv.FormatFloat(s.Value, 'g', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write cross section: %w", err)
	}
	return nil
}
