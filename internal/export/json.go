package export

import (
	"encoding/json"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/san-kum/wobbles/internal/df"
)

// Series marshals non-finite samples as null, which plain encoding/json
// refuses to encode.
type Series []float64

func (s Series) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	buf := make([]byte, 0, 16*len(s)+2)
	buf = append(buf, '[')
	for i, v := range s {
		if i > 0 {
			buf = append(buf, ',')
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			buf = append(buf, "null"...)
			continue
		}
		buf = strconv.AppendFloat(buf, v, 'g', -1, 64)
	}
	return append(buf, ']'), nil
}

type ExportData struct {
	Name               string             `json:"name"`
	RunID              string             `json:"run_id,omitempty"`
	Weights            Series             `json:"weights"`
	ZFit               Series             `json:"z_fit"`
	ScaleHeight        Series             `json:"scale_height"`
	Sigma              Series             `json:"sigma"`
	Z                  Series             `json:"z"`
	Density            Series             `json:"density"`
	MeanV              Series             `json:"mean_v"`
	MeanVRelative      Series             `json:"mean_v_relative"`
	VelocityDispersion Series             `json:"velocity_dispersion"`
	ZPlus              Series             `json:"z_plus"`
	Asymmetry          Series             `json:"asymmetry"`
	Metrics            map[string]float64 `json:"metrics,omitempty"`
}

func FromProfiles(name, runID string, p df.Profiles, metrics map[string]float64) ExportData {
	m := make(map[string]float64, len(metrics))
	for k, v := range metrics {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			m[k] = v
		}
	}
	return ExportData{
		Name:               name,
		RunID:              runID,
		Weights:            p.Weights,
		ZFit:               p.ZFit,
		ScaleHeight:        p.ScaleHeight,
		Sigma:              p.Sigma,
		Z:                  p.Z,
		Density:            p.Density,
		MeanV:              p.MeanV,
		MeanVRelative:      p.MeanVRelative,
		VelocityDispersion: p.VelocityDispersion,
		ZPlus:              p.ZPlus,
		Asymmetry:          p.A,
		Metrics:            m,
	}
}

func WriteJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSON(path string, data ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, data)
}
