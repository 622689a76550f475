package numeric

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Correlation is a coefficient with its p-value and sample size
type Correlation struct {
	R      float64
	PValue float64
	N      int
}

// Pearson correlates x and y, which must be complete and of equal length
func Pearson(x, y []float64) Correlation {
	n := len(x)
	if n < 3 || len(y) != n {
		return Correlation{R: math.NaN(), PValue: math.NaN(), N: n}
	}
	r := stat.Correlation(x, y, nil)
	return Correlation{R: r, PValue: NewDistributions().CorrelationPValue(r, n-2), N: n}
}

// Spearman correlates the average ranks of x and y
func Spearman(x, y []float64) Correlation {
	return Pearson(Ranks(x), Ranks(y))
}

// PairwiseComplete returns the entries where both x and y are present
func PairwiseComplete(x, y []float64) ([]float64, []float64) {
	var xs, ys []float64
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	return xs, ys
}

// PartialCorrelation is the Pearson correlation of x and y after removing the
// linear effect of z from both; its p-value uses n-3 degrees of freedom.
func PartialCorrelation(x, y, z []float64) Correlation {
	n := len(x)
	if n < 3 {
		return Correlation{R: math.NaN(), PValue: math.NaN(), N: n}
	}
	rx := residualize(x, z)
	ry := residualize(y, z)
	r := stat.Correlation(rx, ry, nil)
	p := math.NaN()
	if n > 3 {
		p = NewDistributions().CorrelationPValue(r, n-3)
	}
	return Correlation{R: r, PValue: p, N: n}
}

func residualize(v, z []float64) []float64 {
	alpha, beta := stat.LinearRegression(z, v, nil, false)
	out := make([]float64, len(v))
	for i := range v {
		out[i] = v[i] - (alpha + beta*z[i])
	}
	return out
}
