package numeric

import (
	"errors"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
)

// ErrEmpty is returned when a computation receives no usable values
var ErrEmpty = errors.New("no non-missing values")

// Summary holds moments and order statistics of a sample
type Summary struct {
	Count    int
	Mean     float64
	Std      float64 // sample standard deviation
	Min      float64
	Q1       float64
	Median   float64
	Q3       float64
	Max      float64
	Skewness float64 // adjusted Fisher-Pearson
	Kurtosis float64 // bias-corrected excess kurtosis
}

// Summarize computes a Summary over the non-NaN values of data
func Summarize(data []float64) (Summary, error) {
	clean := DropNaN(data)
	s := Summary{Count: len(clean)}
	if len(clean) == 0 {
		return s, ErrEmpty
	}

	var err error
	if s.Mean, err = stats.Mean(clean); err != nil {
		return s, err
	}
	if s.Min, err = stats.Min(clean); err != nil {
		return s, err
	}
	if s.Max, err = stats.Max(clean); err != nil {
		return s, err
	}
	if s.Median, err = stats.Median(clean); err != nil {
		return s, err
	}
	s.Std = SampleStd(clean)
	s.Q1 = Quantile(clean, 0.25)
	s.Q3 = Quantile(clean, 0.75)
	s.Skewness = Skewness(clean)
	s.Kurtosis = ExcessKurtosis(clean)
	return s, nil
}

// DropNaN returns the non-NaN values of data
func DropNaN(data []float64) []float64 {
	out := make([]float64, 0, len(data))
	for _, v := range data {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Mean returns the arithmetic mean, NaN for empty input
func Mean(data []float64) float64 {
	m, err := stats.Mean(data)
	if err != nil {
		return math.NaN()
	}
	return m
}

// SampleStd returns the n-1 standard deviation, NaN below two values
func SampleStd(data []float64) float64 {
	if len(data) < 2 {
		return math.NaN()
	}
	sd, err := stats.StandardDeviationSample(data)
	if err != nil {
		return math.NaN()
	}
	return sd
}

// SampleVariance returns the n-1 variance, NaN below two values
func SampleVariance(data []float64) float64 {
	sd := SampleStd(data)
	return sd * sd
}

// Median returns the median, NaN for empty input
func Median(data []float64) float64 {
	m, err := stats.Median(data)
	if err != nil {
		return math.NaN()
	}
	return m
}

// Quantile returns the p-quantile by linear interpolation between order
// statistics (Hyndman-Fan type 7)
func Quantile(data []float64, p float64) float64 {
	if len(data) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	return quantileSorted(sorted, p)
}

func quantileSorted(sorted []float64, p float64) float64 {
	h := float64(len(sorted)-1) * p
	lo := math.Floor(h)
	hi := math.Ceil(h)
	if lo == hi {
		return sorted[int(lo)]
	}
	return sorted[int(lo)] + (h-lo)*(sorted[int(hi)]-sorted[int(lo)])
}

// Quantiles evaluates several quantiles with one sort
func Quantiles(data []float64, ps []float64) []float64 {
	out := make([]float64, len(ps))
	if len(data) == 0 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}
	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	for i, p := range ps {
		out[i] = quantileSorted(sorted, p)
	}
	return out
}

// Skewness computes the adjusted Fisher-Pearson sample skewness
func Skewness(data []float64) float64 {
	n := float64(len(data))
	if n < 3 {
		return math.NaN()
	}
	m := Mean(data)
	var m2, m3 float64
	for _, x := range data {
		d := x - m
		m2 += d * d
		m3 += d * d * d
	}
	m2 /= n
	m3 /= n
	if m2 == 0 {
		return 0
	}
	g1 := m3 / math.Pow(m2, 1.5)
	return g1 * math.Sqrt(n*(n-1)) / (n - 2)
}

// ExcessKurtosis computes the bias-corrected sample excess kurtosis
func ExcessKurtosis(data []float64) float64 {
	n := float64(len(data))
	if n < 4 {
		return math.NaN()
	}
	m := Mean(data)
	var m2, m4 float64
	for _, x := range data {
		d := x - m
		m2 += d * d
		m4 += d * d * d * d
	}
	m2 /= n
	m4 /= n
	if m2 == 0 {
		return 0
	}
	g2 := m4/(m2*m2) - 3
	return ((n+1)*g2 + 6) * (n - 1) / ((n - 2) * (n - 3))
}

// Ranks assigns 1-based ranks, averaging ties
func Ranks(data []float64) []float64 {
	idx := make([]int, len(data))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return data[idx[a]] < data[idx[b]] })

	ranks := make([]float64, len(data))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && data[idx[j+1]] == data[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}
	return ranks
}
