package numeric

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Distributions provides p-values and critical values from gonum distributions
type Distributions struct{}

// NewDistributions creates a new distributions utility
func NewDistributions() *Distributions {
	return &Distributions{}
}

// TTestPValue computes the two-tailed p-value of a t statistic. Fractional
// degrees of freedom are accepted for Welch tests.
func (d *Distributions) TTestPValue(tStatistic, degreesOfFreedom float64) float64 {
	if degreesOfFreedom <= 0 || math.IsNaN(tStatistic) {
		return math.NaN()
	}
	if math.IsInf(tStatistic, 0) {
		return 0
	}
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: degreesOfFreedom}
	return 2 * tDist.Survival(math.Abs(tStatistic))
}

// CorrelationPValue computes the p-value of a correlation coefficient with df degrees of freedom
func (d *Distributions) CorrelationPValue(r float64, df int) float64 {
	if df < 1 || math.IsNaN(r) {
		return math.NaN()
	}
	if math.Abs(r) >= 1 {
		return 0
	}
	t := r * math.Sqrt(float64(df)/(1-r*r))
	return d.TTestPValue(t, float64(df))
}

// FTestPValue computes the upper-tail p-value of an F statistic
func (d *Distributions) FTestPValue(fStatistic, df1, df2 float64) float64 {
	if df1 <= 0 || df2 <= 0 || math.IsNaN(fStatistic) {
		return math.NaN()
	}
	if math.IsInf(fStatistic, 1) {
		return 0
	}
	fDist := distuv.F{D1: df1, D2: df2}
	return fDist.Survival(fStatistic)
}

// ChiSquarePValue computes the upper-tail p-value of a chi-square statistic
func (d *Distributions) ChiSquarePValue(chiSquare float64, degreesOfFreedom int) float64 {
	if degreesOfFreedom <= 0 {
		return math.NaN()
	}
	chiDist := distuv.ChiSquared{K: float64(degreesOfFreedom)}
	return chiDist.Survival(chiSquare)
}

// TQuantile returns the p-quantile of Student's t
func (d *Distributions) TQuantile(p, degreesOfFreedom float64) float64 {
	return distuv.StudentsT{Mu: 0, Sigma: 1, Nu: degreesOfFreedom}.Quantile(p)
}

// ConfidenceIntervalMean computes a t-based confidence interval for a mean
func (d *Distributions) ConfidenceIntervalMean(sampleMean, sampleStd float64, sampleSize int, confidenceLevel float64) (lower, upper float64) {
	if sampleSize < 2 {
		return sampleMean, sampleMean
	}
	alpha := 1.0 - confidenceLevel
	tCritical := d.TQuantile(1.0-alpha/2.0, float64(sampleSize-1))
	margin := tCritical * sampleStd / math.Sqrt(float64(sampleSize))
	return sampleMean - margin, sampleMean + margin
}

// EffectSizeCohenD computes Cohen's d for two groups using the pooled standard deviation
func (d *Distributions) EffectSizeCohenD(mean1, mean2, std1, std2 float64, n1, n2 int) float64 {
	if n1+n2 <= 2 {
		return math.NaN()
	}
	pooledStd := math.Sqrt(((float64(n1-1) * std1 * std1) + (float64(n2-1) * std2 * std2)) / float64(n1+n2-2))
	if pooledStd == 0 {
		return math.NaN()
	}
	return (mean1 - mean2) / pooledStd
}
