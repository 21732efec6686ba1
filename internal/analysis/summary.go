package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Summary holds scalar diagnostics of an asymmetry profile. Non-finite
// samples are skipped and counted in Dropped.
type Summary struct {
	PeakAbs       float64 `json:"peak_abs"`
	PeakHeight    float64 `json:"peak_height"`
	RMS           float64 `json:"rms"`
	ZeroCrossings int     `json:"zero_crossings"`
	Samples       int     `json:"samples"`
	Dropped       int     `json:"dropped"`
}

func Summarize(z, a []float64) Summary {
	var s Summary
	n := min(len(z), len(a))

	finite := make([]float64, 0, n)
	prev := math.NaN()
	for i := 0; i < n; i++ {
		v := a[i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			s.Dropped++
			continue
		}
		finite = append(finite, v)

		if abs := math.Abs(v); abs > s.PeakAbs {
			s.PeakAbs = abs
			s.PeakHeight = z[i]
		}
		if !math.IsNaN(prev) && prev*v < 0 {
			s.ZeroCrossings++
		}
		if v != 0 {
			prev = v
		}
	}

	s.Samples = len(finite)
	if s.Samples > 0 {
		s.RMS = floats.Norm(finite, 2) / math.Sqrt(float64(s.Samples))
	}
	return s
}

func (s Summary) Finite() bool {
	return s.Dropped == 0
}

// Metrics flattens the summary for run metadata and catalogs.
func (s Summary) Metrics() map[string]float64 {
	return map[string]float64{
		"peak_abs_asymmetry": s.PeakAbs,
		"peak_height":        s.PeakHeight,
		"rms_asymmetry":      s.RMS,
		"zero_crossings":     float64(s.ZeroCrossings),
	}
}
