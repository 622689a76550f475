package numeric

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// PCAResult holds projected scores and explained variance
type PCAResult struct {
	Scores            [][]float64 // rows x components
	ExplainedVariance []float64   // ratio per kept component
	Cumulative        []float64
}

// PCA projects rows onto their first n principal components. Rows should
// already be scaled if scale invariance is wanted.
func PCA(rows [][]float64, n int) (PCAResult, error) {
	if len(rows) < 2 {
		return PCAResult{}, ErrTooFewObservations
	}
	p := len(rows[0])
	if n < 1 || n > p {
		return PCAResult{}, ErrDimension
	}

	data := make([]float64, 0, len(rows)*p)
	for _, r := range rows {
		data = append(data, r...)
	}
	x := mat.NewDense(len(rows), p, data)

	var pc stat.PC
	if ok := pc.PrincipalComponents(x, nil); !ok {
		return PCAResult{}, ErrDegenerate
	}
	vars := pc.VarsTo(nil)
	var vecs mat.Dense
	pc.VectorsTo(&vecs)

	var total float64
	for _, v := range vars {
		total += v
	}

	// deterministic sign: largest-magnitude loading of each component is positive
	_, cols := vecs.Dims()
	signs := make([]float64, cols)
	for c := 0; c < cols; c++ {
		best, sign := 0.0, 1.0
		for r := 0; r < p; r++ {
			if v := vecs.At(r, c); math.Abs(v) > best {
				best = math.Abs(v)
				sign = math.Copysign(1, v)
			}
		}
		signs[c] = sign
	}

	means := make([]float64, p)
	for _, r := range rows {
		for j, v := range r {
			means[j] += v
		}
	}
	for j := range means {
		means[j] /= float64(len(rows))
	}

	res := PCAResult{
		Scores:            make([][]float64, len(rows)),
		ExplainedVariance: make([]float64, n),
		Cumulative:        make([]float64, n),
	}
	for i, r := range rows {
		res.Scores[i] = make([]float64, n)
		for c := 0; c < n; c++ {
			if c >= cols {
				continue
			}
			var s float64
			for j, v := range r {
				s += (v - means[j]) * vecs.At(j, c)
			}
			res.Scores[i][c] = s * signs[c]
		}
	}
	var cum float64
	for c := 0; c < n; c++ {
		ratio := 0.0
		if total > 0 && c < len(vars) {
			ratio = vars[c] / total
		}
		cum += ratio
		res.ExplainedVariance[c] = ratio
		res.Cumulative[c] = cum
	}
	return res, nil
}
