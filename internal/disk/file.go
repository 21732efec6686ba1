package disk

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/san-kum/wobbles/internal/phasespace"
)

// fieldSet is the on-disk layout. nu is either a number or a 2D array.
type fieldSet struct {
	Z  []float64       `json:"z"`
	V  []float64       `json:"v"`
	Nu json.RawMessage `json:"nu"`
	J  [][]float64     `json:"J"`
}

// File reads a field set from a JSON file.
type File struct {
	Path string
}

func (f File) Fields() (Fields, error) {
	return Load(f.Path)
}

func Load(path string) (Fields, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fields{}, err
	}
	return Decode(data)
}

func Decode(data []byte) (Fields, error) {
	var fs fieldSet
	if err := json.Unmarshal(data, &fs); err != nil {
		return Fields{}, fmt.Errorf("disk: decode field set: %w", err)
	}

	dom := phasespace.Domain{Z: fs.Z, V: fs.V}
	if err := dom.Validate(); err != nil {
		return Fields{}, err
	}

	j, err := phasespace.FromRows(fs.J)
	if err != nil {
		return Fields{}, fmt.Errorf("disk: action field: %w", err)
	}
	if err := dom.Check(j); err != nil {
		return Fields{}, fmt.Errorf("disk: action field: %w", err)
	}

	nu, err := decodeNu(fs.Nu)
	if err != nil {
		return Fields{}, err
	}
	if !nu.BroadcastsTo(j.Rows, j.Cols) {
		return Fields{}, fmt.Errorf("disk: frequency field: %w", &phasespace.ShapeError{
			What: "nu", Rows: nu.Rows, Cols: nu.Cols, WantRows: j.Rows, WantCols: j.Cols,
		})
	}

	return Fields{J: j, Nu: nu, Domain: dom}, nil
}

func decodeNu(raw json.RawMessage) (phasespace.Field, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return phasespace.Field{}, fmt.Errorf("disk: missing nu")
	}
	if raw[0] != '[' {
		var scalar float64
		if err := json.Unmarshal(raw, &scalar); err != nil {
			return phasespace.Field{}, fmt.Errorf("disk: decode nu: %w", err)
		}
		return phasespace.Uniform(1, 1, scalar), nil
	}

	var rows [][]float64
	if err := json.Unmarshal(raw, &rows); err != nil {
		return phasespace.Field{}, fmt.Errorf("disk: decode nu: %w", err)
	}
	return phasespace.FromRows(rows)
}

// Save writes fields in the layout Load reads. A 1x1 nu is written as a
// number.
func Save(path string, f Fields) error {
	fs := fieldSet{Z: f.Domain.Z, V: f.Domain.V, J: f.J.ToRows()}

	var err error
	if f.Nu.Rows == 1 && f.Nu.Cols == 1 {
		fs.Nu, err = json.Marshal(f.Nu.At(0, 0))
	} else {
		fs.Nu, err = json.Marshal(f.Nu.ToRows())
	}
	if err != nil {
		return err
	}

	data, err := json.Marshal(fs)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
