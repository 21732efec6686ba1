package viz

import (
	"fmt"
	"math"

	"github.com/guptarohit/asciigraph"
)

// PlotProfile draws y against its sample index, captioned with the x range.
// Infinities are plotted as gaps like NaN.
func PlotProfile(x, y []float64, caption string, height, width int) string {
	data := sanitize(y)
	if len(data) == 0 {
		return caption + ": (no data)\n"
	}
	if allNaN(data) {
		return caption + ": (no finite values)\n"
	}

	if len(x) == len(y) && len(x) > 1 {
		caption = fmt.Sprintf("%s  [%.3g .. %.3g]", caption, x[0], x[len(x)-1])
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

func sanitize(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, v := range xs {
		if math.IsInf(v, 0) {
			v = math.NaN()
		}
		out[i] = v
	}
	return out
}

func allNaN(xs []float64) bool {
	for _, v := range xs {
		if !math.IsNaN(v) {
			return false
		}
	}
	return true
}

func minMax(xs []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range xs {
		if math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo > hi {
		return 0, 0
	}
	return lo, hi
}
