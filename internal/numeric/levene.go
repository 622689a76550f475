package numeric

import (
	"math"
)

// LeveneResult is the outcome of a median-centred Levene test
type LeveneResult struct {
	W      float64
	PValue float64
	DF1    int
	DF2    int
}

// Levene tests equality of variances across groups using absolute deviations
// from each group's median (Brown-Forsythe variant).
func Levene(groups [][]float64) (LeveneResult, error) {
	k := len(groups)
	if k < 2 {
		return LeveneResult{}, ErrTooFewGroups
	}

	n := 0
	z := make([][]float64, k)
	zMeans := make([]float64, k)
	for i, g := range groups {
		if len(g) == 0 {
			return LeveneResult{}, ErrEmpty
		}
		med := Median(g)
		z[i] = make([]float64, len(g))
		for j, x := range g {
			z[i][j] = math.Abs(x - med)
		}
		zMeans[i] = Mean(z[i])
		n += len(g)
	}
	if n-k < 1 {
		return LeveneResult{}, ErrTooFewObservations
	}

	var grand float64
	for i := range z {
		for _, v := range z[i] {
			grand += v
		}
	}
	grand /= float64(n)

	var between, within float64
	for i := range z {
		d := zMeans[i] - grand
		between += float64(len(z[i])) * d * d
		for _, v := range z[i] {
			e := v - zMeans[i]
			within += e * e
		}
	}

	res := LeveneResult{DF1: k - 1, DF2: n - k}
	if within == 0 {
		if between == 0 {
			res.W, res.PValue = math.NaN(), math.NaN()
			return res, ErrDegenerate
		}
		res.W, res.PValue = math.Inf(1), 0
		return res, nil
	}
	res.W = float64(n-k) / float64(k-1) * between / within
	res.PValue = NewDistributions().FTestPValue(res.W, float64(res.DF1), float64(res.DF2))
	return res, nil
}
