package storage

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/san-kum/scatsim/internal/config"
	"github.com/san-kum/scatsim/internal/experiment"
	"github.com/san-kum/scatsim/internal/scatter"
)

func sampleResult() *experiment.Result {
	return &experiment.Result{
		Potential:   "square_well(R=1.2, V0=5)",
		ReducedMass: 1.0,
		Hbar:        1.0,
		Phases: scatter.PhaseMap{
			0: {{Energy: 1, Delta: 0.1}, {Energy: 2, Delta: 0.4}, {Energy: 3, Delta: 1.9}},
			1: {{Energy: 1, Delta: -1.5}, {Energy: 2, Delta: -1.4}, {Energy: 3, Delta: -1.2}},
		},
		Delays: scatter.DelayMap{
			0: {{Energy: 1, Tau: 0}, {Energy: 2, Tau: 1.8}, {Energy: 3, Tau: 0}},
			1: {{Energy: 1, Tau: 0}, {Energy: 2, Tau: 0.3}, {Energy: 3, Tau: 0}},
		},
		Candidates: map[int][]scatter.Candidate{
			0: {{Energy: 3, Score: 2.3}},
			1: nil,
		},
		EStar:        2,
		KStar:        2,
		CrossSection: []scatter.Sample{{Theta: 0, Value: 0.5}, {Theta: 1.5, Value: 0.25}},
		SigmaTotal:   4.2,
	}
}

func sampleConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Energies = []float64{1, 2, 3}
	cfg.EnergyGrid = nil
	return cfg
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	res := sampleResult()
	runID, err := st.Save("test", sampleConfig(), res)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if !strings.HasPrefix(runID, "test_") {
		t.Errorf("expected run id prefixed by label, got %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Label != "test" {
		t.Errorf("expected label 'test', got '%s'", meta.Label)
	}
	if meta.Candidates != 1 {
		t.Errorf("expected 1 candidate, got %d", meta.Candidates)
	}
	if meta.EnergyMin != 1 || meta.EnergyMax != 3 || meta.EnergyCount != 3 {
		t.Errorf("unexpected energy range: %+v", meta)
	}
	if diff := cmp.Diff([]int{0, 1}, meta.Ells); diff != "" {
		t.Errorf("ells mismatch (-want +got):\n%s", diff)
	}

	loaded, err := st.LoadResult(runID)
	if err != nil {
		t.Fatalf("load result failed: %v", err)
	}
	opts := cmp.Options{cmpopts.EquateApprox(0, 1e-12), cmpopts.EquateEmpty()}
	if diff := cmp.Diff(res, loaded, opts); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}

	cfg, err := st.LoadConfig(runID)
	if err != nil {
		t.Fatalf("load config failed: %v", err)
	}
	if diff := cmp.Diff([]float64{1, 2, 3}, cfg.EnergyValues()); diff != "" {
		t.Errorf("config energies mismatch (-want +got):\n%s", diff)
	}

	if _, err := os.Stat(filepath.Join(tmpDir, runID, phasesFile)); err != nil {
		t.Errorf("expected phase csv: %v", err)
	}
}

func TestStoreSaveUniqueIDs(t *testing.T) {
	st := New(t.TempDir())

	a, err := st.Save("run", sampleConfig(), sampleResult())
	if err != nil {
		t.Fatal(err)
	}
	b, err := st.Save("run", sampleConfig(), sampleResult())
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Errorf("expected distinct run ids, both %q", a)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestStoreSaveFailureRemovesRunDir(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	res := sampleResult()
	res.Phases[0][1].Delta = math.NaN() // metadata encodes, results.json does not

	if _, err := st.Save("bad", sampleConfig(), res); err == nil {
		t.Fatal("expected save to fail on a NaN phase")
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected failed run to be removed, found %d entries", len(entries))
	}
}

func TestStoreListEmpty(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "missing"))

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestStoreListSkipsBrokenRuns(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := os.MkdirAll(filepath.Join(tmpDir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Save("ok", sampleConfig(), sampleResult()); err != nil {
		t.Fatal(err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Label != "ok" {
		t.Errorf("expected only the valid run, got %+v", runs)
	}
}

func TestStoreLoadMissing(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nope"); err == nil {
		t.Error("expected error for missing run")
	}
	if _, err := st.LoadResult("nope"); err == nil {
		t.Error("expected error for missing result")
	}
}

func TestWriteJSONNestedPairs(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleResult()); err != nil {
		t.Fatal(err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	for _, key := range []string{"phase_map", "delay_map", "candidates", "dsdo_at_E_star", "E_star"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}

	var phases map[string][][]float64
	if err := json.Unmarshal(raw["phase_map"], &phases); err != nil {
		t.Fatalf("phase_map is not nested pairs: %v", err)
	}
	if diff := cmp.Diff([][]float64{{1, 0.1}, {2, 0.4}, {3, 1.9}}, phases["0"]); diff != "" {
		t.Errorf("phase_map[0] mismatch (-want +got):\n%s", diff)
	}
}

func TestWritePhaseCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePhaseCSV(&buf, sampleResult()); err != nil {
		t.Fatal(err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 7 {
		t.Fatalf("expected header plus 6 rows, got %d", len(records))
	}
	if diff := cmp.Diff([]string{"ell", "energy", "delta", "tau"}, records[0]); diff != "" {
		t.Errorf("header mismatch:\n%s", diff)
	}
	if diff := cmp.Diff([]string{"0", "2", "0.4", "1.8"}, records[2]); diff != "" {
		t.Errorf("row mismatch:\n%s", diff)
	}
}

func TestWriteCrossSectionCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCrossSectionCSV(&buf, sampleResult()); err != nil {
		t.Fatal(err)
	}
	want := "theta,dsdo\n0,0.5\n1.5,0.25\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}
