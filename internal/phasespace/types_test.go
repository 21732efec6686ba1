package phasespace

import (
	"errors"
	"math"
	"sync/atomic"
	"testing"
)

func TestField_RowMajor(t *testing.T) {
	f, err := FromRows([][]float64{{1, 2, 3}, {4, 5, 6}})
	if err != nil {
		t.Fatalf("FromRows: %v", err)
	}
	if f.Rows != 2 || f.Cols != 3 {
		t.Fatalf("shape %dx%d, want 2x3", f.Rows, f.Cols)
	}
	if f.At(1, 0) != 4 || f.At(0, 2) != 3 {
		t.Errorf("unexpected layout: %v", f.ToRows())
	}
	row := f.Row(1)
	if len(row) != 3 || row[2] != 6 {
		t.Errorf("Row(1) = %v", row)
	}

	c := f.Clone()
	c.Set(0, 0, 100)
	if f.At(0, 0) != 1 {
		t.Error("Clone shares storage with the original")
	}
}

func TestFromRows_Ragged(t *testing.T) {
	_, err := FromRows([][]float64{{1, 2}, {3}})
	if !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("expected ErrShapeMismatch, got %v", err)
	}
}

func TestUniform(t *testing.T) {
	f := Uniform(3, 4, 2.5)
	for i := 0; i < f.Rows; i++ {
		for j := 0; j < f.Cols; j++ {
			if f.At(i, j) != 2.5 {
				t.Fatalf("At(%d,%d) = %v", i, j, f.At(i, j))
			}
		}
	}
}

func TestField_Broadcast(t *testing.T) {
	tests := []struct {
		name       string
		rows, cols int
		ok         bool
	}{
		{"scalar", 1, 1, true},
		{"per row", 3, 1, true},
		{"per column", 1, 4, true},
		{"full", 3, 4, true},
		{"short rows", 2, 1, false},
		{"wrong cols", 3, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewField(tt.rows, tt.cols)
			if got := f.BroadcastsTo(3, 4); got != tt.ok {
				t.Errorf("BroadcastsTo(3, 4) = %v, want %v", got, tt.ok)
			}
		})
	}

	perRow, err := FromRows([][]float64{{1}, {2}, {3}})
	if err != nil {
		t.Fatal(err)
	}
	if got := perRow.AtBroadcast(2, 3); got != 3 {
		t.Errorf("per row AtBroadcast(2, 3) = %v, want 3", got)
	}
	perCol, err := FromRows([][]float64{{1, 2, 3, 4}})
	if err != nil {
		t.Fatal(err)
	}
	if got := perCol.AtBroadcast(2, 3); got != 4 {
		t.Errorf("per column AtBroadcast(2, 3) = %v, want 4", got)
	}
}

func TestDomain_Check(t *testing.T) {
	dom := Grid{ZMin: -1, ZMax: 1, NZ: 5, VMin: -1, VMax: 1, NV: 7}.Domain()

	if err := dom.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if err := dom.Check(NewField(5, 7)); err != nil {
		t.Errorf("Check on matching field: %v", err)
	}

	err := dom.Check(NewField(7, 5))
	var se *ShapeError
	if !errors.As(err, &se) {
		t.Fatalf("expected *ShapeError, got %v", err)
	}
	if se.WantRows != 5 || se.WantCols != 7 {
		t.Errorf("unexpected shape error: %v", se)
	}
	if !errors.Is(err, ErrShapeMismatch) {
		t.Error("ShapeError should unwrap to ErrShapeMismatch")
	}
}

func TestDomain_Validate(t *testing.T) {
	tests := []struct {
		name string
		dom  Domain
		want error
	}{
		{"few heights", Domain{Z: []float64{0, 1, 2}, V: []float64{0, 1, 2}}, ErrTooFewSamples},
		{"few velocities", Domain{Z: []float64{0, 1, 2, 3}, V: []float64{0, 1}}, ErrTooFewSamples},
		{"unordered z", Domain{Z: []float64{0, 2, 1, 3}, V: []float64{0, 1, 2}}, ErrDomainOrder},
		{"repeated v", Domain{Z: []float64{0, 1, 2, 3}, V: []float64{0, 1, 1}}, ErrDomainOrder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.dom.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDomain_Midplane(t *testing.T) {
	if got := (Domain{Z: make([]float64, 9)}).Midplane(); got != 4 {
		t.Errorf("odd length midplane = %d, want 4", got)
	}
	if got := (Domain{Z: make([]float64, 10)}).Midplane(); got != 5 {
		t.Errorf("even length midplane = %d, want 5", got)
	}
}

func TestGrid_Domain(t *testing.T) {
	dom := Grid{ZMin: -2, ZMax: 2, NZ: 5, VMin: 0, VMax: 1, NV: 3}.Domain()
	wantZ := []float64{-2, -1, 0, 1, 2}
	for i, z := range wantZ {
		if math.Abs(dom.Z[i]-z) > 1e-12 {
			t.Errorf("Z[%d] = %v, want %v", i, dom.Z[i], z)
		}
	}
	if dom.V[1] != 0.5 {
		t.Errorf("V[1] = %v, want 0.5", dom.V[1])
	}
}

func TestScales_Validate(t *testing.T) {
	if err := DefaultScales().Validate(); err != nil {
		t.Errorf("default scales invalid: %v", err)
	}
	bad := []Scales{
		{Length: 0, Velocity: 1, Density: 1},
		{Length: 1, Velocity: -1, Density: 1},
		{Length: 1, Velocity: 1, Density: math.NaN()},
		{Length: 1, Velocity: 1, Density: math.Inf(1)},
	}
	for _, s := range bad {
		if err := s.Validate(); !errors.Is(err, ErrBadScale) {
			t.Errorf("Validate(%+v) = %v, want ErrBadScale", s, err)
		}
	}
}

func TestParallelRows_CoversRange(t *testing.T) {
	for _, n := range []int{0, 1, 7, 64, 1001} {
		seen := make([]int32, n)
		ParallelRows(n, 8, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&seen[i], 1)
			}
		})
		for i, c := range seen {
			if c != 1 {
				t.Fatalf("n=%d: row %d visited %d times", n, i, c)
			}
		}
	}
}
