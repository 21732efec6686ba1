// Package sweep evaluates a configuration over a grid of named parameters.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/san-kum/wobbles/internal/config"
	"github.com/san-kum/wobbles/internal/experiment"
	"github.com/san-kum/wobbles/internal/numeric"
)

var (
	ErrBadAxis = errors.New("sweep: invalid axis")
	ErrNoPoint = errors.New("sweep: no grid point succeeded")
)

// Point is one evaluated grid point. Err is set when the configuration at
// this point could not be built; the sweep carries on.
type Point struct {
	Index  int
	Params map[string]float64
	Result *experiment.Result
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("%w: %d names for %d ranges", ErrBadAxis, len(params), len(ranges))
	}
	seen := make(map[string]bool, len(params))
	for i, name := range params {
		if len(ranges[i]) == 0 {
			return nil, fmt.Errorf("%w: %s has no values", ErrBadAxis, name)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: %s given twice", ErrBadAxis, name)
		}
		seen[name] = true
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// ParseAxis reads "name=lo:hi:n" (n evenly spaced values) or
// "name=a,b,c".
func ParseAxis(spec string) (string, []float64, error) {
	name, vals, ok := strings.Cut(spec, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" || vals == "" {
		return "", nil, fmt.Errorf("%w: %q", ErrBadAxis, spec)
	}

	if parts := strings.Split(vals, ":"); len(parts) == 3 {
		lo, err1 := strconv.ParseFloat(parts[0], 64)
		hi, err2 := strconv.ParseFloat(parts[1], 64)
		n, err3 := strconv.Atoi(parts[2])
		if err := errors.Join(err1, err2, err3); err != nil || n < 1 {
			return "", nil, fmt.Errorf("%w: %q", ErrBadAxis, spec)
		}
		if n == 1 {
			return name, []float64{lo}, nil
		}
		return name, numeric.Linspace(lo, hi, n), nil
	}

	var out []float64
	for _, s := range strings.Split(vals, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %q", ErrBadAxis, spec)
		}
		out = append(out, v)
	}
	return name, out, nil
}

func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Run evaluates every grid point in order, last axis fastest, and hands
// each to fn. It stops early if fn returns an error or ctx is cancelled.
func (g *GridSearch) Run(ctx context.Context, base *config.Config, fn func(Point) error) error {
	idx := 0
	return g.runRecursive(ctx, 0, make(map[string]float64), base, &idx, fn)
}

func (g *GridSearch) runRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	base *config.Config,
	idx *int,
	fn func(Point) error,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		p := Point{Index: *idx, Params: current}
		*idx++
		p.Result, p.Err = g.evaluate(ctx, base, current)
		if errors.Is(p.Err, context.Canceled) || errors.Is(p.Err, context.DeadlineExceeded) {
			return p.Err
		}
		return fn(p)
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.runRecursive(ctx, depth+1, newParams, base, idx, fn); err != nil {
			return err
		}
	}
	return nil
}

// evaluate applies params in axis order. Setters such as sigma and
// sigma_scale do not commute.
func (g *GridSearch) evaluate(ctx context.Context, base *config.Config, params map[string]float64) (*experiment.Result, error) {
	cfg := base.Clone()
	for _, name := range g.paramNames {
		if err := experiment.SetParam(cfg, name, params[name]); err != nil {
			return nil, err
		}
	}
	return experiment.New(cfg).Run(ctx)
}

// Best tracks the point minimizing one metric. Failed points and points
// without a finite value for the metric are ignored.
type Best struct {
	Metric string
	Params map[string]float64
	Value  float64
}

func NewBest(metric string) *Best {
	return &Best{Metric: metric, Value: math.Inf(1)}
}

func (b *Best) Observe(p Point) {
	if p.Err != nil || p.Result == nil {
		return
	}
	val, ok := p.Result.Metrics[b.Metric]
	if !ok || math.IsNaN(val) || math.IsInf(val, 0) {
		return
	}
	if b.Params == nil || val < b.Value {
		b.Value = val
		b.Params = p.Params
	}
}

// Result returns the best point, or ErrNoPoint if none was observed.
func (b *Best) Result() (map[string]float64, float64, error) {
	if b.Params == nil {
		return nil, 0, fmt.Errorf("%w for metric %s", ErrNoPoint, b.Metric)
	}
	return b.Params, b.Value, nil
}

// Search returns the grid point minimizing metric.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, metric string) (map[string]float64, float64, error) {
	best := NewBest(metric)
	err := g.Run(ctx, base, func(p Point) error {
		best.Observe(p)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return best.Result()
}
