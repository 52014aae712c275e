package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/san-kum/ripplesim/internal/config"
	"github.com/san-kum/ripplesim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	configFile   = "config.yaml"
	framesFile   = "frames.csv"
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
	ID        string             `json:"id"`
	Effect    string             `json:"effect"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Dt        float64            `json:"dt"`
	Frames    int                `json:"frames"`
	Workers   int                `json:"workers"`
	Injected  int                `json:"injected"`
	Rejected  int                `json:"rejected"`
	Final     float64            `json:"final_energy"`
	Metrics   map[string]float64 `json:"metrics"`
}

// FrameRecord is one row of frames.csv.
type FrameRecord struct {
	Frame    int     `csv:"frame"`
	Energy   float64 `csv:"energy"`
	Injected int     `csv:"injected"`
	Rejected int     `csv:"rejected"`
}

func Record(f sim.Frame) FrameRecord {
	return FrameRecord{Frame: f.Index, Energy: f.Energy, Injected: f.Injected, Rejected: f.Rejected}
}

// Save writes a finished run. An empty name picks <effect>_<unix seconds>;
// an existing run directory gets a numeric suffix.
func (s *Store) Save(name string, cfg *config.Config, result *sim.Result) (string, error) {
	now := time.Now()
	if name == "" {
		name = fmt.Sprintf("%s_%d", cfg.Effect, now.Unix())
	}
	runID, runDir, err := s.reserve(name)
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Effect:    cfg.Effect,
		Timestamp: now,
		Seed:      cfg.Seed,
		Dt:        cfg.Dt,
		Frames:    len(result.Frames),
		Workers:   cfg.Workers,
		Injected:  result.Injected,
		Rejected:  result.Rejected,
		Final:     result.Final,
		Metrics:   result.Metrics,
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
		return "", err
	}

	records := make([]FrameRecord, len(result.Frames))
	for i, f := range result.Frames {
		records[i] = Record(f)
	}
	csvFile, err := os.Create(filepath.Join(runDir, framesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := gocsv.MarshalFile(&records, csvFile); err != nil {
		return "", fmt.Errorf("writing frames: %w", err)
	}
	return runID, nil
}

func (s *Store) reserve(name string) (string, string, error) {
	if err := s.Init(); err != nil {
		return "", "", err
	}
	id := name
	for n := 2; ; n++ {
		dir := filepath.Join(s.baseDir, id)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return id, dir, nil
		}
		if !os.IsExist(err) {
			return "", "", err
		}
		id = fmt.Sprintf("%s_%d", name, n)
	}
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// List returns every readable run, oldest first.
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
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadConfig returns the config a run was made with.
func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.baseDir, runID, configFile))
}

func (s *Store) LoadFrames(runID string) ([]FrameRecord, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records := []FrameRecord{}
	if err := gocsv.UnmarshalFile(file, &records); err != nil {
		return nil, fmt.Errorf("run %s frames: %w", runID, err)
	}
	return records, nil
}

// Energies extracts the energy column.
func Energies(records []FrameRecord) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = r.Energy
	}
	return out
}
