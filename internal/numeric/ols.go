package numeric

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// LeastSquares is the residual sum of squares and column-space rank of a fit
type LeastSquares struct {
	RSS  float64
	Rank int
}

// FitRSS projects y onto the column space of the design matrix x (rows are
// observations) and reports the residual sum of squares. Rank-deficient
// designs are handled through the singular value decomposition.
func FitRSS(x [][]float64, y []float64) (LeastSquares, error) {
	n := len(y)
	if n == 0 || len(x) != n {
		return LeastSquares{}, ErrDimension
	}
	p := len(x[0])
	if p == 0 {
		var rss float64
		for _, v := range y {
			rss += v * v
		}
		return LeastSquares{RSS: rss}, nil
	}

	data := make([]float64, 0, n*p)
	for _, row := range x {
		if len(row) != p {
			return LeastSquares{}, ErrDimension
		}
		data = append(data, row...)
	}
	design := mat.NewDense(n, p, data)

	var svd mat.SVD
	if ok := svd.Factorize(design, mat.SVDThin); !ok {
		return LeastSquares{}, ErrDegenerate
	}
	values := svd.Values(nil)
	var u mat.Dense
	svd.UTo(&u)

	tol := 0.0
	if len(values) > 0 {
		tol = float64(max(n, p)) * values[0] * 2.220446049250313e-16
	}

	yv := mat.NewVecDense(n, append([]float64(nil), y...))
	var total float64
	for _, v := range y {
		total += v * v
	}

	rank := 0
	var explained float64
	for i, s := range values {
		if s <= tol {
			continue
		}
		rank++
		proj := mat.Dot(u.ColView(i), yv)
		explained += proj * proj
	}

	rss := total - explained
	if rss < 0 {
		rss = 0
	}
	return LeastSquares{RSS: rss, Rank: rank}, nil
}

// NestedF compares a reduced model against a fuller one
func NestedF(reduced, full LeastSquares, residual LeastSquares, n int) (ss float64, df int, f, p float64) {
	ss = reduced.RSS - full.RSS
	if math.Abs(ss) <= 1e-10*math.Max(1, reduced.RSS) {
		ss = 0
	}
	df = full.Rank - reduced.Rank
	dfRes := n - residual.Rank
	if df <= 0 || dfRes <= 0 {
		return ss, df, math.NaN(), math.NaN()
	}
	msRes := residual.RSS / float64(dfRes)
	if msRes == 0 {
		if ss == 0 {
			return ss, df, math.NaN(), math.NaN()
		}
		return ss, df, math.Inf(1), 0
	}
	f = (ss / float64(df)) / msRes
	p = NewDistributions().FTestPValue(f, float64(df), float64(dfRes))
	return ss, df, f, p
}
