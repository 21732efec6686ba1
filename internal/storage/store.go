package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/wobbles/internal/config"
	"github.com/san-kum/wobbles/internal/df"
	"github.com/san-kum/wobbles/internal/export"
)

const (
	metadataFile  = "metadata.json"
	configFile    = "config.yaml"
	profilesFile  = "profiles.csv"
	asymmetryFile = "asymmetry.csv"
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

// ComponentMeta records one mixture component. Non-finite fit values are
// stored as null.
type ComponentMeta struct {
	Normalization float64  `json:"normalization"`
	Weight        float64  `json:"weight"`
	Sigma         float64  `json:"sigma"`
	ZFit          *float64 `json:"z_fit"`
	ScaleHeight   *float64 `json:"scale_height"`
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Timestamp   time.Time          `json:"timestamp"`
	RhoMidplane float64            `json:"rho_midplane"`
	Heights     int                `json:"heights"`
	Velocities  int                `json:"velocities"`
	Components  []ComponentMeta    `json:"components"`
	Finite      bool               `json:"finite"`
	Metrics     map[string]float64 `json:"metrics"`
}

func (s *Store) Save(cfg *config.Config, p df.Profiles, metrics map[string]float64) (string, error) {
	runID := fmt.Sprintf("%s_%d_%s", cfg.Name, time.Now().Unix(), uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Name:        cfg.Name,
		Timestamp:   time.Now(),
		RhoMidplane: cfg.RhoMidplane,
		Heights:     cfg.Grid.NZ,
		Velocities:  cfg.Grid.NV,
		Finite:      allFinite(p.Density, p.MeanV, p.VelocityDispersion, p.A),
		Metrics:     make(map[string]float64, len(metrics)),
	}
	if len(p.Z) > 0 {
		meta.Heights = len(p.Z)
	}
	for i := range p.ZFit {
		cm := ComponentMeta{
			Weight:      p.Weights[i],
			ZFit:        finitePtr(p.ZFit[i]),
			ScaleHeight: finitePtr(p.ScaleHeight[i]),
		}
		if i < len(cfg.Normalizations) {
			cm.Normalization = cfg.Normalizations[i]
		}
		switch {
		case i < len(p.Sigma):
			cm.Sigma = p.Sigma[i]
		case i < len(cfg.Dispersions):
			cm.Sigma = cfg.Dispersions[i]
		}
		meta.Components = append(meta.Components, cm)
	}
	for k, v := range metrics {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			meta.Metrics[k] = v
		}
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
		return "", err
	}

	err := writeColumns(filepath.Join(runDir, profilesFile),
		[]string{"z", "density", "mean_v", "mean_v_relative", "sigma_v"},
		p.Z, p.Density, p.MeanV, p.MeanVRelative, p.VelocityDispersion)
	if err != nil {
		return "", err
	}
	err = writeColumns(filepath.Join(runDir, asymmetryFile),
		[]string{"z_plus", "asymmetry"}, p.ZPlus, p.A)
	if err != nil {
		return "", err
	}

	slog.Debug("run saved", "id", runID, "dir", runDir, "finite", meta.Finite)
	return runID, nil
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

func writeColumns(path string, header []string, cols ...[]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return export.WriteColumns(f, header, cols...)
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
			slog.Debug("skipping run directory", "dir", entry.Name(), "error", err)
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
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

func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.baseDir, runID, configFile))
}

// LoadProfiles reassembles the profiles written by Save.
func (s *Store) LoadProfiles(runID string) (df.Profiles, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return df.Profiles{}, err
	}

	prof, err := readColumns(filepath.Join(s.baseDir, runID, profilesFile), 5)
	if err != nil {
		return df.Profiles{}, err
	}
	asym, err := readColumns(filepath.Join(s.baseDir, runID, asymmetryFile), 2)
	if err != nil {
		return df.Profiles{}, err
	}

	p := df.Profiles{
		Z:                  prof[0],
		Density:            prof[1],
		MeanV:              prof[2],
		MeanVRelative:      prof[3],
		VelocityDispersion: prof[4],
		ZPlus:              asym[0],
		A:                  asym[1],
	}
	for _, c := range meta.Components {
		p.Weights = append(p.Weights, c.Weight)
		p.ZFit = append(p.ZFit, valueOr(c.ZFit, math.NaN()))
		p.ScaleHeight = append(p.ScaleHeight, valueOr(c.ScaleHeight, math.Inf(1)))
		p.Sigma = append(p.Sigma, c.Sigma)
	}
	return p, nil
}

func readColumns(path string, ncols int) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = ncols

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	cols := make([][]float64, ncols)
	if len(records) < 2 {
		return cols, nil
	}
	for j := range cols {
		cols[j] = make([]float64, 0, len(records)-1)
	}
	for i, record := range records[1:] {
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", filepath.Base(path), i+2, err)
			}
			cols[j] = append(cols[j], v)
		}
	}
	return cols, nil
}

func allFinite(series ...[]float64) bool {
	for _, s := range series {
		for _, v := range s {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

func finitePtr(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func valueOr(p *float64, fallback float64) float64 {
	if p == nil {
		return fallback
	}
	return *p
}
