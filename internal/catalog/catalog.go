// Package catalog stores forward-model realizations in SQLite.
//
// Each row holds the parameters that produced one realization together with
// its asymmetry and relative mean vertical velocity profiles, rounded to 5 decimals.
package catalog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const decimals = 5

// Sample is one realization.
type Sample struct {
	ID            string
	Label         string
	Created       time.Time
	Params        map[string]float64
	Asymmetry     []float64
	MeanVRelative []float64
}

type row struct {
	ID        string `db:"id"`
	Label     string `db:"label"`
	Created   int64  `db:"created"`
	Params    string `db:"params_json"`
	Asymmetry string `db:"asymmetry"`
	MeanVRel  string `db:"mean_v_relative"`
}

// Catalog wraps a SQLite connection.
type Catalog struct {
	conn *sqlx.DB
}

// Open opens or creates a catalog at the given path.
func Open(path string) (*Catalog, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	c := &Catalog{conn: conn}
	if err := c.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return c, nil
}

func (c *Catalog) Close() error {
	return c.conn.Close()
}

func (c *Catalog) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS samples (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		label TEXT NOT NULL,
		created INTEGER NOT NULL,
		params_json TEXT NOT NULL,
		asymmetry TEXT NOT NULL,
		mean_v_relative TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_samples_label ON samples(label);
	`
	_, err := c.conn.Exec(schema)
	return err
}

// Insert appends samples in one transaction and returns their IDs.
// Samples without an ID get a fresh UUID.
func (c *Catalog) Insert(samples ...Sample) ([]string, error) {
	if len(samples) == 0 {
		return nil, nil
	}

	tx, err := c.conn.Beginx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT INTO samples
		(id, label, created, params_json, asymmetry, mean_v_relative)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	ids := make([]string, 0, len(samples))
	for _, s := range samples {
		r, err := toRow(s)
		if err != nil {
			return nil, err
		}
		if _, err := stmt.Exec(r.ID, r.Label, r.Created, r.Params, r.Asymmetry, r.MeanVRel); err != nil {
			return nil, err
		}
		ids = append(ids, r.ID)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	slog.Debug("catalog insert", "samples", len(ids))
	return ids, nil
}

// List returns samples in insertion order. An empty label lists all.
func (c *Catalog) List(label string) ([]Sample, error) {
	var rows []row
	var err error
	if label == "" {
		err = c.conn.Select(&rows,
			"SELECT id, label, created, params_json, asymmetry, mean_v_relative FROM samples ORDER BY seq")
	} else {
		err = c.conn.Select(&rows,
			"SELECT id, label, created, params_json, asymmetry, mean_v_relative FROM samples WHERE label = ? ORDER BY seq",
			label)
	}
	if err != nil {
		return nil, err
	}

	samples := make([]Sample, 0, len(rows))
	for _, r := range rows {
		s, err := fromRow(r)
		if err != nil {
			return nil, fmt.Errorf("sample %s: %w", r.ID, err)
		}
		samples = append(samples, s)
	}
	return samples, nil
}

func (c *Catalog) Count(label string) (int, error) {
	var n int
	var err error
	if label == "" {
		err = c.conn.Get(&n, "SELECT COUNT(*) FROM samples")
	} else {
		err = c.conn.Get(&n, "SELECT COUNT(*) FROM samples WHERE label = ?", label)
	}
	return n, err
}

// Labels returns the distinct labels in the catalog, sorted.
func (c *Catalog) Labels() ([]string, error) {
	var labels []string
	err := c.conn.Select(&labels, "SELECT DISTINCT label FROM samples ORDER BY label")
	return labels, err
}

func toRow(s Sample) (row, error) {
	id := s.ID
	if id == "" {
		id = uuid.NewString()
	}
	created := s.Created
	if created.IsZero() {
		created = time.Now()
	}

	params := make(map[string]float64, len(s.Params))
	for k, v := range s.Params {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return row{}, fmt.Errorf("catalog: param %s is not finite", k)
		}
		params[k] = Round(v)
	}
	p, err := json.Marshal(params)
	if err != nil {
		return row{}, err
	}

	return row{
		ID:        id,
		Label:     s.Label,
		Created:   created.UnixNano(),
		Params:    string(p),
		Asymmetry: encodeSeries(s.Asymmetry),
		MeanVRel:  encodeSeries(s.MeanVRelative),
	}, nil
}

func fromRow(r row) (Sample, error) {
	s := Sample{
		ID:      r.ID,
		Label:   r.Label,
		Created: time.Unix(0, r.Created),
	}
	if err := json.Unmarshal([]byte(r.Params), &s.Params); err != nil {
		return Sample{}, err
	}

	var err error
	if s.Asymmetry, err = decodeSeries(r.Asymmetry); err != nil {
		return Sample{}, err
	}
	if s.MeanVRelative, err = decodeSeries(r.MeanVRel); err != nil {
		return Sample{}, err
	}
	return s, nil
}

// Round rounds to the catalog precision. Non-finite values pass through.
func Round(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	scale := math.Pow(10, decimals)
	return math.Round(v*scale) / scale
}

func encodeSeries(xs []float64) string {
	parts := make([]string, len(xs))
	for i, v := range xs {
		parts[i] = strconv.FormatFloat(Round(v), 'f', decimals, 64)
	}
	return strings.Join(parts, " ")
}

func decodeSeries(s string) ([]float64, error) {
	fields := strings.Fields(s)
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
