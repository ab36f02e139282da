// Package storage keeps finished runs on disk, one directory per run.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/scatsim/internal/config"
	"github.com/san-kum/scatsim/internal/experiment"
)

const (
	metadataFile = "metadata.json"
	resultsFile  = "results.json"
	configFile   = "config.yaml"
	phasesFile   = "phases.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Timestamp   time.Time `json:"timestamp"`
	Potential   string    `json:"potential"`
	ReducedMass float64   `json:"mu_red"`
	Ells        []int     `json:"ells"`
	EnergyMin   float64   `json:"energy_min"`
	EnergyMax   float64   `json:"energy_max"`
	EnergyCount int       `json:"energy_count"`
	EStar       float64   `json:"E_star"`
	SigmaTotal  float64   `json:"sigma_total"`
	Candidates  int       `json:"candidates"`
}

// Save writes the metadata, the exported result, the config that produced it
// and a phase CSV under a fresh run directory. A failed save removes the
// directory.
func (s *Store) Save(label string, cfg *config.Config, res *experiment.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d_%s", label, now.Unix(), uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	if err := s.writeRun(runDir, runID, label, now, cfg, res); err != nil {
		_ = os.RemoveAll(runDir)
		return "", fmt.Errorf("save run %s: %w", runID, err)
	}
	return runID, nil
}

func (s *Store) writeRun(runDir, runID, label string, now time.Time, cfg *config.Config, res *experiment.Result) error {
	energies := cfg.EnergyValues()
	meta := RunMetadata{
		ID:          runID,
		Label:       label,
		Timestamp:   now,
		Potential:   res.Potential,
		ReducedMass: res.ReducedMass,
		Ells:        res.Phases.Ells(),
		EnergyCount: len(energies),
		EStar:       res.EStar,
		SigmaTotal:  res.SigmaTotal,
		Candidates:  res.CandidateCount(),
	}
	if len(energies) > 0 {
		meta.EnergyMin = energies[0]
		meta.EnergyMax = energies[len(energies)-1]
	}

	if err := writeJSONFile(filepath.Join(runDir, metadataFile), meta); err != nil {
		return err
	}
	if err := ExportJSON(filepath.Join(runDir, resultsFile), res); err != nil {
		return err
	}
	if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
		return err
	}

	csvFile, err := os.Create(filepath.Join(runDir, phasesFile))
	if err != nil {
		return err
	}
	if err := WritePhaseCSV(csvFile, res); err != nil {
		csvFile.Close()
		return err
	}
	return csvFile.Close()
}

// List returns every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadResult(runID string) (*experiment.Result, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, resultsFile))
	if err != nil {
		return nil, err
	}

	var export ExportData
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("decode %s: %w", resultsFile, err)
	}
	return export.Result(), nil
}

func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.baseDir, runID, configFile))
}

func writeJSONFile(path string, v any) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
