package numeric

import (
	"math"
)

// Scaler standardizes columns to zero mean and unit population variance.
// Columns with zero variance are centred only.
type Scaler struct {
	Means  []float64
	Scales []float64
}

// FitScaler learns per-column means and scales from rows
func FitScaler(rows [][]float64) (*Scaler, error) {
	if len(rows) == 0 {
		return nil, ErrEmpty
	}
	p := len(rows[0])
	s := &Scaler{Means: make([]float64, p), Scales: make([]float64, p)}
	n := float64(len(rows))
	for _, r := range rows {
		if len(r) != p {
			return nil, ErrDimension
		}
		for j, v := range r {
			s.Means[j] += v
		}
	}
	for j := range s.Means {
		s.Means[j] /= n
	}
	for _, r := range rows {
		for j, v := range r {
			d := v - s.Means[j]
			s.Scales[j] += d * d
		}
	}
	for j := range s.Scales {
		sd := math.Sqrt(s.Scales[j] / n)
		if sd == 0 {
			sd = 1
		}
		s.Scales[j] = sd
	}
	return s, nil
}

// Transform returns standardized copies of rows
func (s *Scaler) Transform(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, r := range rows {
		out[i] = make([]float64, len(r))
		for j, v := range r {
			out[i][j] = (v - s.Means[j]) / s.Scales[j]
		}
	}
	return out
}

// FitTransform fits a scaler and applies it
func FitTransform(rows [][]float64) ([][]float64, *Scaler, error) {
	s, err := FitScaler(rows)
	if err != nil {
		return nil, nil, err
	}
	return s.Transform(rows), s, nil
}
