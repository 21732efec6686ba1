package export

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/wobbles/internal/df"
	"github.com/san-kum/wobbles/internal/viz"
)

func TestSeriesMarshal(t *testing.T) {
	b, err := json.Marshal(Series{1, math.NaN(), 0.5, math.Inf(-1)})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "[1,null,0.5,null]" {
		t.Errorf("got %s", b)
	}

	b, _ = json.Marshal(struct{ S Series }{})
	if string(b) != `{"S":null}` {
		t.Errorf("got %s", b)
	}
}

func TestExportJSON(t *testing.T) {
	p := df.Profiles{
		Z:           []float64{-1, 1},
		Density:     []float64{1, 2},
		A:           []float64{math.NaN()},
		ZPlus:       []float64{0},
		Weights:     []float64{1},
		ZFit:        []float64{0},
		ScaleHeight: []float64{math.Inf(1)},
	}
	data := FromProfiles("thin", "run1", p, map[string]float64{"rms_asymmetry": 0.1, "bad": math.NaN()})

	path := filepath.Join(t.TempDir(), "out.json")
	if err := ExportJSON(path, data); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, raw)
	}
	if decoded["name"] != "thin" || decoded["run_id"] != "run1" {
		t.Errorf("decoded = %v", decoded)
	}
	if sh := decoded["scale_height"].([]any); sh[0] != nil {
		t.Errorf("scale_height = %v", sh)
	}
	if m := decoded["metrics"].(map[string]any); len(m) != 1 {
		t.Errorf("metrics = %v", m)
	}
}

func TestWriteProfilesCSV(t *testing.T) {
	p := df.Profiles{
		Z:                  []float64{0, 1},
		Density:            []float64{1, 0.5},
		MeanV:              []float64{0, 0},
		MeanVRelative:      []float64{0, 0},
		VelocityDispersion: []float64{2, 2},
		ZPlus:              []float64{0},
		A:                  []float64{math.NaN()},
	}

	var buf bytes.Buffer
	if err := WriteProfilesCSV(&buf, p); err != nil {
		t.Fatal(err)
	}
	want := "z,density,mean_v,mean_v_relative,sigma_v\n0,1,0,0,2\n1,0.5,0,0,2\n\nz_plus,asymmetry\n0,NaN\n"
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestProfileToSVG(t *testing.T) {
	x := []float64{0, 1, 2, 3}
	y := []float64{-1, 1, math.NaN(), 2}

	svg := ProfileToSVG(x, y, 200, 100, "#00ffff", "A(z) <run>")
	if !strings.Contains(svg, "<svg") || !strings.Contains(svg, "</svg>") {
		t.Fatal("not an svg document")
	}
	if strings.Count(svg, "M") < 2 {
		t.Errorf("NaN should break the path:\n%s", svg)
	}
	if !strings.Contains(svg, "<line") {
		t.Error("expected zero line for signed data")
	}
	if !strings.Contains(svg, "&lt;run&gt;") {
		t.Error("caption should be escaped")
	}

	if ProfileToSVG([]float64{0}, []float64{1}, 10, 10, "#fff", "") != "" {
		t.Error("single point should give empty output")
	}
}

func TestCanvasToSVG(t *testing.T) {
	c := viz.NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)

	svg := CanvasToSVG(c, 2)
	if strings.Count(svg, "<circle") != 2 {
		t.Errorf("expected 2 dots:\n%s", svg)
	}
	if CanvasToSVG(nil, 1) != "" {
		t.Error("nil canvas should give empty output")
	}
}
