package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/geodesim/internal/config"
	"github.com/san-kum/geodesim/internal/experiment"
)

var ErrNotFound = errors.New("storage: run not found")

// Backend persists runs. Store and SQLiteStore implement it.
type Backend interface {
	Init() error
	Save(meta RunMetadata, samples Samples) (string, error)
	List() ([]RunMetadata, error)
	Load(runID string) (*RunMetadata, error)
	LoadStates(runID string) (*Samples, error)
	Close() error
}

type RunMetadata struct {
	ID            string             `json:"id"`
	Preset        string             `json:"preset,omitempty"`
	Chart         string             `json:"chart"`
	Body          string             `json:"body"`
	Mass          float64            `json:"mass"`
	Spin          float64            `json:"spin"`
	Timestamp     time.Time          `json:"timestamp"`
	Integrator    string             `json:"integrator"`
	Steps         int                `json:"steps"`
	Evaluations   int                `json:"evaluations"`
	Lambda        float64            `json:"lambda"`
	Stop          string             `json:"stop"`
	Reached       bool               `json:"reached"`
	Crossing      []float64          `json:"crossing,omitempty"`
	CrossingChart string             `json:"crossing_chart,omitempty"`
	Switches      int                `json:"switches"`
	Metrics       map[string]float64 `json:"metrics"`
}

// Samples is a recorded trajectory: one chart name and flat state per
// affine parameter value.
type Samples struct {
	Lambdas []float64   `json:"lambdas"`
	Charts  []string    `json:"charts"`
	States  [][]float64 `json:"states"`
}

// Radii returns slot 1 of every sample.
func (s *Samples) Radii() []float64 {
	out := make([]float64, len(s.States))
	for i, st := range s.States {
		if len(st) > 1 {
			out[i] = st[1]
		}
	}
	return out
}

func NewMetadata(preset string, cfg *config.Config, tr *experiment.Trajectory) RunMetadata {
	return RunMetadata{
		Preset:        preset,
		Chart:         cfg.Chart,
		Body:          cfg.Body,
		Mass:          cfg.Mass,
		Spin:          cfg.Spin,
		Timestamp:     time.Now(),
		Integrator:    cfg.Integrator.Kind,
		Steps:         tr.Iterations,
		Evaluations:   tr.Evaluations,
		Lambda:        tr.Lambda,
		Stop:          tr.Stop,
		Reached:       tr.Reached,
		Crossing:      tr.Crossing,
		CrossingChart: tr.CrossingChart,
		Switches:      tr.Switches,
		Metrics:       tr.Metrics,
	}
}

func NewSamples(tr *experiment.Trajectory) Samples {
	s := Samples{
		Lambdas: tr.Params,
		Charts:  tr.Charts,
		States:  make([][]float64, len(tr.States)),
	}
	for i, st := range tr.States {
		s.States[i] = st
	}
	return s
}

func newRunID(meta RunMetadata) string {
	slug := meta.Preset
	if slug == "" {
		slug = meta.Chart
	}
	slug = strings.NewReplacer("/", "-", " ", "-").Replace(slug)
	return fmt.Sprintf("%s_%s", slug, uuid.NewString()[:8])
}

// Open returns the backend named by kind ("dir" or "sqlite") under dataDir.
func Open(kind, dataDir string) (Backend, error) {
	switch kind {
	case "", "dir":
		st := New(dataDir)
		return st, st.Init()
	case "sqlite":
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, err
		}
		return OpenSQLite(filepath.Join(dataDir, "runs.db"))
	}
	return nil, fmt.Errorf("unknown store: %s", kind)
}

// Store keeps each run in its own directory as metadata.json and states.csv.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Close() error { return nil }

func (s *Store) Save(meta RunMetadata, samples Samples) (string, error) {
	if meta.ID == "" {
		meta.ID = newRunID(meta)
	}
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "states.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, &samples); err != nil {
		return "", err
	}
	return meta.ID, nil
}

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
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadStates(runID string) (*Samples, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	return ReadCSV(file)
}

// WriteCSV writes one row per sample: lambda, chart, then the flat state.
// Values keep full precision.
func WriteCSV(out io.Writer, samples *Samples) error {
	w := csv.NewWriter(out)

	if len(samples.States) == 0 {
		w.Flush()
		return w.Error()
	}

	header := []string{"lambda", "chart"}
	for i := range samples.States[0] {
		header = append(header, fmt.Sprintf("s%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, st := range samples.States {
		row := []string{strconv.FormatFloat(samples.Lambdas[i], 'g', -1, 64), samples.Charts[i]}
		for _, val := range st {
			row = append(row, strconv.FormatFloat(val, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func ReadCSV(in io.Reader) (*Samples, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	samples := &Samples{Lambdas: []float64{}, Charts: []string{}, States: [][]float64{}}
	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) < 2 {
			continue
		}

		lambda, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}

		state := make([]float64, 0, len(record)-2)
		for j := 2; j < len(record); j++ {
			val, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %w", i, j, err)
			}
			state = append(state, val)
		}

		samples.Lambdas = append(samples.Lambdas, lambda)
		samples.Charts = append(samples.Charts, record[1])
		samples.States = append(samples.States, state)
	}
	return samples, nil
}

type exportData struct {
	Meta    *RunMetadata `json:"meta"`
	Samples *Samples     `json:"samples"`
}

func WriteJSON(out io.Writer, meta *RunMetadata, samples *Samples) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(exportData{Meta: meta, Samples: samples})
}
