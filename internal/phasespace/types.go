package phasespace

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Minimum samples per axis: Simpson needs three velocities, the
// not-a-knot spline needs four heights.
const (
	MinVelocitySamples = 3
	MinHeightSamples   = 4
)

// Field is a scalar sampled on the (height, velocity) grid.
type Field struct {
	Rows, Cols int
	values     []float64
}

func NewField(rows, cols int) Field {
	return Field{Rows: rows, Cols: cols, values: make([]float64, rows*cols)}
}

// Uniform broadcasts a scalar over a rows x cols grid.
func Uniform(rows, cols int, value float64) Field {
	f := NewField(rows, cols)
	for i := range f.values {
		f.values[i] = value
	}
	return f
}

// FromRows copies a ragged-checked [][]float64 into a Field.
func FromRows(rows [][]float64) (Field, error) {
	if len(rows) == 0 {
		return Field{}, ErrTooFewSamples
	}
	cols := len(rows[0])
	f := NewField(len(rows), cols)
	for i, r := range rows {
		if len(r) != cols {
			return Field{}, &ShapeError{What: fmt.Sprintf("row %d", i), Rows: 1, Cols: len(r), WantRows: 1, WantCols: cols}
		}
		copy(f.values[i*cols:(i+1)*cols], r)
	}
	return f, nil
}

func (f Field) At(i, j int) float64 {
	return f.values[i*f.Cols+j]
}

func (f Field) Set(i, j int, v float64) {
	f.values[i*f.Cols+j] = v
}

// Row returns a view of row i. Callers must not write through it unless
// they own the Field.
func (f Field) Row(i int) []float64 {
	return f.values[i*f.Cols : (i+1)*f.Cols]
}

func (f Field) Clone() Field {
	c := Field{Rows: f.Rows, Cols: f.Cols, values: make([]float64, len(f.values))}
	copy(c.values, f.values)
	return c
}

// BroadcastsTo reports whether f can stand in for a rows x cols field:
// each dimension either matches or is 1.
func (f Field) BroadcastsTo(rows, cols int) bool {
	return (f.Rows == rows || f.Rows == 1) && (f.Cols == cols || f.Cols == 1)
}

// AtBroadcast reads f as if it were stretched along its unit dimensions.
func (f Field) AtBroadcast(i, j int) float64 {
	if f.Rows == 1 {
		i = 0
	}
	if f.Cols == 1 {
		j = 0
	}
	return f.values[i*f.Cols+j]
}

// ToRows copies the field into a fresh [][]float64.
func (f Field) ToRows() [][]float64 {
	out := make([][]float64, f.Rows)
	for i := range out {
		out[i] = make([]float64, f.Cols)
		copy(out[i], f.Row(i))
	}
	return out
}

// Domain holds the coordinates indexing a Field: Z along rows, V along columns.
type Domain struct {
	Z []float64
	V []float64
}

// Validate checks sample counts and strict ordering of both axes.
func (d Domain) Validate() error {
	if len(d.Z) < MinHeightSamples || len(d.V) < MinVelocitySamples {
		return fmt.Errorf("%w: %d heights, %d velocities", ErrTooFewSamples, len(d.Z), len(d.V))
	}
	if !strictlyIncreasing(d.Z) {
		return fmt.Errorf("%w: z", ErrDomainOrder)
	}
	if !strictlyIncreasing(d.V) {
		return fmt.Errorf("%w: v", ErrDomainOrder)
	}
	return nil
}

// Check reports whether f is laid out on this domain.
func (d Domain) Check(f Field) error {
	if f.Rows != len(d.Z) || f.Cols != len(d.V) {
		return &ShapeError{What: "field", Rows: f.Rows, Cols: f.Cols, WantRows: len(d.Z), WantCols: len(d.V)}
	}
	return nil
}

// Midplane is the row treated as z = 0, whether or not it is the
// geometric centre of Z.
func (d Domain) Midplane() int {
	return len(d.Z) / 2
}

func strictlyIncreasing(x []float64) bool {
	for i := 1; i < len(x); i++ {
		if !(x[i] > x[i-1]) {
			return false
		}
	}
	return true
}

// Scales convert internal units to physical ones (kpc, km/s, Msun/pc^3).
type Scales struct {
	Length   float64 `yaml:"length" json:"length"`
	Velocity float64 `yaml:"velocity" json:"velocity"`
	Density  float64 `yaml:"density" json:"density"`
}

func DefaultScales() Scales {
	return Scales{Length: 8.0, Velocity: 220.0, Density: 0.1}
}

func (s Scales) Validate() error {
	for _, v := range []float64{s.Length, s.Velocity, s.Density} {
		if !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %+v", ErrBadScale, s)
		}
	}
	return nil
}

// Grid describes an evenly spaced domain.
type Grid struct {
	ZMin float64 `yaml:"z_min" json:"z_min"`
	ZMax float64 `yaml:"z_max" json:"z_max"`
	NZ   int     `yaml:"nz" json:"nz"`
	VMin float64 `yaml:"v_min" json:"v_min"`
	VMax float64 `yaml:"v_max" json:"v_max"`
	NV   int     `yaml:"nv" json:"nv"`
}

func (g Grid) Domain() Domain {
	d := Domain{
		Z: make([]float64, max(g.NZ, 0)),
		V: make([]float64, max(g.NV, 0)),
	}
	if g.NZ >= 2 {
		floats.Span(d.Z, g.ZMin, g.ZMax)
	}
	if g.NV >= 2 {
		floats.Span(d.V, g.VMin, g.VMax)
	}
	return d
}
