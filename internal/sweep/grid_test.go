package sweep

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/wobbles/internal/config"
	"github.com/san-kum/wobbles/internal/experiment"
)

func base() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Grid.NZ = 31
	cfg.Grid.NV = 41
	return cfg
}

func TestParseAxis(t *testing.T) {
	tests := []struct {
		spec    string
		name    string
		values  []float64
		wantErr bool
	}{
		{"z_shift=0:0.1:3", "z_shift", []float64{0, 0.05, 0.1}, false},
		{"sigma=0.1,0.2", "sigma", []float64{0.1, 0.2}, false},
		{"nu=0.3:1:1", "nu", []float64{0.3}, false},
		{"nu", "", nil, true},
		{"=1,2", "", nil, true},
		{"nu=a,b", "", nil, true},
		{"nu=0:1:0", "", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			name, vals, err := ParseAxis(tt.spec)
			if tt.wantErr {
				if !errors.Is(err, ErrBadAxis) {
					t.Errorf("err = %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if name != tt.name || len(vals) != len(tt.values) {
				t.Fatalf("got %s %v", name, vals)
			}
			for i := range vals {
				if vals[i] != tt.values[i] {
					t.Errorf("values = %v, want %v", vals, tt.values)
				}
			}
		})
	}
}

func TestNewGridSearchErrors(t *testing.T) {
	if _, err := NewGridSearch([]string{"a"}, nil); !errors.Is(err, ErrBadAxis) {
		t.Errorf("err = %v", err)
	}
	if _, err := NewGridSearch([]string{"a"}, [][]float64{{}}); !errors.Is(err, ErrBadAxis) {
		t.Errorf("err = %v", err)
	}
	if _, err := NewGridSearch([]string{"a", "a"}, [][]float64{{1}, {2}}); !errors.Is(err, ErrBadAxis) {
		t.Errorf("err = %v", err)
	}
}

func TestRunOrder(t *testing.T) {
	g, err := NewGridSearch([]string{"z_shift", "sigma"}, [][]float64{{0, 0.05}, {0.1, 0.15, 0.2}})
	if err != nil {
		t.Fatal(err)
	}
	if g.Size() != 6 {
		t.Errorf("size = %d", g.Size())
	}

	var points []Point
	err = g.Run(context.Background(), base(), func(p Point) error {
		points = append(points, p)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 6 {
		t.Fatalf("got %d points", len(points))
	}
	for i, p := range points {
		if p.Index != i || p.Err != nil {
			t.Errorf("point %d: index %d err %v", i, p.Index, p.Err)
		}
	}
	if points[1].Params["sigma"] != 0.15 || points[3].Params["z_shift"] != 0.05 {
		t.Errorf("unexpected order: %v %v", points[1].Params, points[3].Params)
	}
	if points[4].Result.Config.Dispersions[0] != 0.15 {
		t.Errorf("sigma not applied: %v", points[4].Result.Config.Dispersions)
	}
}

func TestRunReportsBadPoints(t *testing.T) {
	g, _ := NewGridSearch([]string{"nu"}, [][]float64{{-1, 0.3}})

	var errs int
	err := g.Run(context.Background(), base(), func(p Point) error {
		if p.Err != nil {
			errs++
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if errs != 1 {
		t.Errorf("expected one failing point, got %d", errs)
	}
}

func TestRunStops(t *testing.T) {
	g, _ := NewGridSearch([]string{"sigma"}, [][]float64{{0.1, 0.15, 0.2}})
	stop := errors.New("stop")

	calls := 0
	err := g.Run(context.Background(), base(), func(p Point) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) || calls != 1 {
		t.Errorf("err = %v calls = %d", err, calls)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = g.Run(ctx, base(), func(Point) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
}

func TestSearch(t *testing.T) {
	g, _ := NewGridSearch([]string{"z_shift"}, [][]float64{{0.1, 0, 0.05}})

	params, val, err := g.Search(context.Background(), base(), "peak_abs_asymmetry")
	if err != nil {
		t.Fatal(err)
	}
	if params["z_shift"] != 0 {
		t.Errorf("best = %v (%v), want z_shift 0", params, val)
	}

	g, _ = NewGridSearch([]string{"bogus"}, [][]float64{{1}})
	if _, _, err := g.Search(context.Background(), base(), "rms_asymmetry"); !errors.Is(err, ErrNoPoint) {
		t.Errorf("err = %v", err)
	}
}

func TestUnknownParamReported(t *testing.T) {
	g, _ := NewGridSearch([]string{"bogus"}, [][]float64{{1}})
	var got error
	_ = g.Run(context.Background(), base(), func(p Point) error {
		got = p.Err
		return nil
	})
	if !errors.Is(got, experiment.ErrUnknownParam) {
		t.Errorf("err = %v", got)
	}
}

func TestRunAppliesAxesInOrder(t *testing.T) {
	tests := []struct {
		names  []string
		ranges [][]float64
		want   float64
	}{
		{[]string{"sigma", "sigma_scale"}, [][]float64{{0.1}, {2}}, 0.2},
		{[]string{"sigma_scale", "sigma"}, [][]float64{{2}, {0.1}}, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.names[0]+"_first", func(t *testing.T) {
			g, err := NewGridSearch(tt.names, tt.ranges)
			if err != nil {
				t.Fatal(err)
			}
			for run := 0; run < 20; run++ {
				err := g.Run(context.Background(), base(), func(p Point) error {
					if p.Err != nil {
						return p.Err
					}
					for _, s := range p.Result.Config.Dispersions {
						if math.Abs(s-tt.want) > 1e-12 {
							t.Fatalf("run %d: dispersion %v, want %v", run, s, tt.want)
						}
					}
					return nil
				})
				if err != nil {
					t.Fatal(err)
				}
			}
		})
	}
}

func TestBest(t *testing.T) {
	point := func(v float64) Point {
		return Point{
			Params: map[string]float64{"z_shift": v},
			Result: &experiment.Result{Metrics: map[string]float64{"rms_asymmetry": v}},
		}
	}

	b := NewBest("rms_asymmetry")
	if _, _, err := b.Result(); !errors.Is(err, ErrNoPoint) {
		t.Errorf("empty: err = %v", err)
	}

	b.Observe(point(0.3))
	b.Observe(point(math.NaN()))
	b.Observe(Point{Err: errors.New("failed")})
	b.Observe(point(0.1))
	b.Observe(point(0.2))

	params, val, err := b.Result()
	if err != nil {
		t.Fatal(err)
	}
	if val != 0.1 || params["z_shift"] != 0.1 {
		t.Errorf("best = %v at %v, want 0.1", val, params)
	}
}
