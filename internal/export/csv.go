package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/san-kum/wobbles/internal/df"
)

// WriteColumns writes equal-length columns under header. Values use the
// shortest exact representation; non-finite values appear as NaN, +Inf
// or -Inf.
func WriteColumns(w io.Writer, header []string, cols ...[]float64) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}

	n := 0
	if len(cols) > 0 {
		n = len(cols[0])
	}
	row := make([]string, len(cols))
	for i := 0; i < n; i++ {
		for j, c := range cols {
			row[j] = strconv.FormatFloat(c[i], 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteProfilesCSV writes the height profiles and then, after a blank
// line, the asymmetry profile.
func WriteProfilesCSV(w io.Writer, p df.Profiles) error {
	err := WriteColumns(w, []string{"z", "density", "mean_v", "mean_v_relative", "sigma_v"},
		p.Z, p.Density, p.MeanV, p.MeanVRelative, p.VelocityDispersion)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}
	return WriteColumns(w, []string{"z_plus", "asymmetry"}, p.ZPlus, p.A)
}
