package bil

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrNoData is returned by Stats when a band holds no valid values.
var ErrNoData = errors.New("band has no valid values")

// Stats summarises the valid values of one band. Values have SCALE and
// OFFSET applied; NODATA cells are counted separately.
type Stats struct {
	Count  int
	NoData int
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64 // sample standard deviation, 0 for a single value
}

// Stats computes summary statistics for band.
func (r *Raster) Stats(band int) (Stats, error) {
	samples := r.Band(band)

	var st Stats
	values := make([]float64, 0, len(samples))
	for _, s := range samples {
		v, ok := r.value(s)
		if !ok {
			st.NoData++
			continue
		}
		values = append(values, v)
	}

	st.Count = len(values)
	if st.Count == 0 {
		return st, fmt.Errorf("band %d: %w", band, ErrNoData)
	}

	st.Min = floats.Min(values)
	st.Max = floats.Max(values)
	if st.Count == 1 {
		st.Mean = values[0]
		return st, nil
	}
	st.Mean, st.StdDev = stat.MeanStdDev(values, nil)
	return st, nil
}
