package inference

import (
	"fmt"
	"math"

	"edabench/domain/core"
	"edabench/domain/dataset"
	"edabench/domain/stats"
	"edabench/internal/numeric"

	"go.uber.org/zap"
)

// OneSample tests whether the mean of a numeric column differs from mu0
func (e *Engine) OneSample(column string, mu0 float64) (stats.TTestResult, error) {
	const proc = "one-sample t-test"
	cols, err := e.numericColumns(column)
	if err != nil {
		return stats.TTestResult{}, e.fail(proc, err)
	}
	x := numeric.DropNaN(cols[0].Floats())
	if len(x) < 2 {
		return stats.TTestResult{}, e.fail(proc, core.NewInsufficientDataError(
			fmt.Sprintf("%q has %d non-missing values; at least 2 are required", column, len(x))))
	}

	// A constant column gives t = +-Inf (p = 0) unless its value equals mu0,
	// where t is undefined.
	g := summarize(column, x)
	n := float64(g.N)
	res := stats.TTestResult{
		Kind:      stats.TTestOneSample,
		Groups:    []stats.GroupSummary{g},
		Reference: mu0,
		T:         tRatio(g.Mean-mu0, g.Std/math.Sqrt(n)),
		DF:        n - 1,
		CohenD:    tRatio(g.Mean-mu0, g.Std),
		MeanCI:    e.meanCI(g),
	}
	res.PValue = e.dist.TTestPValue(res.T, res.DF)
	e.finishTTest(&res)
	res.Narrative = fmt.Sprintf("Mean of %s (%.3f) %s from the reference value %s (t = %.3f, df = %.0f, p = %.4f)",
		column, g.Mean, differsPhrase(res.Significance), dataset.FormatFloat(mu0), res.T, res.DF, res.PValue)
	return res, nil
}

// Independent compares a numeric column between the two levels of a grouping
// column. Levene's test decides between the pooled and Welch statistics.
func (e *Engine) Independent(value, groupColumn string) (stats.TTestResult, error) {
	const proc = "independent t-test"
	if err := distinct([]string{value, groupColumn}); err != nil {
		return stats.TTestResult{}, e.fail(proc, err)
	}
	y, err := e.numericColumns(value)
	if err != nil {
		return stats.TTestResult{}, e.fail(proc, err)
	}
	key, err := e.ds.Column(groupColumn)
	if err != nil {
		return stats.TTestResult{}, e.fail(proc, err)
	}

	groups := groupValues(y[0], key)
	switch {
	case len(groups) < 2:
		return stats.TTestResult{}, e.fail(proc, core.NewInsufficientDataError(
			fmt.Sprintf("%q has %d level(s); exactly 2 are required", groupColumn, len(groups))))
	case len(groups) > 2:
		return stats.TTestResult{}, e.fail(proc, core.NewValidationError("group",
			fmt.Sprintf("%q has %d levels; exactly 2 are required (use ANOVA for more)", groupColumn, len(groups))))
	}
	for _, g := range groups {
		if len(g.values) < 2 {
			return stats.TTestResult{}, e.fail(proc, core.NewInsufficientDataError(
				fmt.Sprintf("group %q has fewer than 2 observations", g.name)))
		}
	}

	a, b := summarize(groups[0].name, groups[0].values), summarize(groups[1].name, groups[1].values)
	res := stats.TTestResult{Kind: stats.TTestIndependent, Groups: []stats.GroupSummary{a, b}}

	res.EqualVariance = true
	if lev, err := numeric.Levene(groupSlices(groups)); err != nil {
		res.LeveneP = math.NaN()
		res.Warnings = append(res.Warnings, stats.Warning{
			Code:    stats.WarningLeveneFailed,
			Message: fmt.Sprintf("Levene's test could not run (%v); equal variances assumed", err),
		})
	} else {
		res.LeveneP = lev.PValue
		res.EqualVariance = lev.PValue >= e.alpha
	}

	n1, n2 := float64(a.N), float64(b.N)
	v1, v2 := a.Std*a.Std, b.Std*b.Std
	if res.EqualVariance {
		res.DF = n1 + n2 - 2
		pooled := ((n1-1)*v1 + (n2-1)*v2) / res.DF
		res.T = tRatio(a.Mean-b.Mean, math.Sqrt(pooled*(1/n1+1/n2)))
	} else {
		s1, s2 := v1/n1, v2/n2
		res.DF = (s1 + s2) * (s1 + s2) / (s1*s1/(n1-1) + s2*s2/(n2-1))
		res.T = tRatio(a.Mean-b.Mean, math.Sqrt(s1+s2))
		res.Warnings = append(res.Warnings, stats.Warning{
			Code:    stats.WarningHeterogeneous,
			Message: fmt.Sprintf("variances differ (Levene p = %.4f); Welch's correction applied", res.LeveneP),
		})
	}
	res.PValue = e.dist.TTestPValue(res.T, res.DF)
	res.CohenD = e.dist.EffectSizeCohenD(a.Mean, b.Mean, a.Std, b.Std, a.N, b.N)
	switch {
	case a.Mean > b.Mean:
		res.HigherGroup = a.Name
	case b.Mean > a.Mean:
		res.HigherGroup = b.Name
	}
	e.finishTTest(&res)

	variant := "Student"
	if !res.EqualVariance {
		variant = "Welch"
	}
	res.Narrative = fmt.Sprintf("%s t-test: mean %s %s between %s and %s (t = %.3f, df = %.2f, p = %.4f, d = %.3f)",
		variant, value, differsPhrase(res.Significance), a.Name, b.Name, res.T, res.DF, res.PValue, res.CohenD)
	return res, nil
}

// Paired tests the mean of the row-wise differences a-b
func (e *Engine) Paired(a, b string) (stats.TTestResult, error) {
	const proc = "paired t-test"
	cols, err := e.numericColumns(a, b)
	if err != nil {
		return stats.TTestResult{}, e.fail(proc, err)
	}
	xa, xb := numeric.PairwiseComplete(cols[0].Floats(), cols[1].Floats())
	if len(xa) < 2 {
		return stats.TTestResult{}, e.fail(proc, core.NewInsufficientDataError(
			fmt.Sprintf("%d complete pairs; at least 2 are required", len(xa))))
	}
	for i, x := range [][]float64{xa, xb} {
		if numeric.SampleStd(x) == 0 {
			return stats.TTestResult{}, e.fail(proc, core.NewInsufficientDataError(
				fmt.Sprintf("%q does not vary", []string{a, b}[i])))
		}
	}

	diff := make([]float64, len(xa))
	for i := range diff {
		diff[i] = xa[i] - xb[i]
	}
	d := summarize(a+" - "+b, diff)
	res := stats.TTestResult{
		Kind:   stats.TTestPaired,
		Groups: []stats.GroupSummary{summarize(a, xa), summarize(b, xb), d},
		T:      tRatio(d.Mean, d.Std/math.Sqrt(float64(d.N))),
		DF:     float64(d.N - 1),
		CohenD: tRatio(d.Mean, d.Std),
		MeanCI: e.meanCI(d),
	}
	res.PValue = e.dist.TTestPValue(res.T, res.DF)
	e.finishTTest(&res)
	res.Narrative = fmt.Sprintf("Mean difference %s (%.3f) %s from zero (t = %.3f, df = %.0f, p = %.4f)",
		d.Name, d.Mean, differsPhrase(res.Significance), res.T, res.DF, res.PValue)
	return res, nil
}

func (e *Engine) finishTTest(res *stats.TTestResult) {
	res.Significance = stats.Classify(res.PValue, e.alpha)
	if res.Significance == stats.Undetermined {
		res.Warnings = append(res.Warnings, stats.Warning{
			Code:    stats.WarningUndefinedPValue,
			Message: "the test statistic is undefined for this data",
		})
	}
	e.logger.Info("t-test computed",
		zap.String("kind", string(res.Kind)),
		zap.Float64("t", res.T),
		zap.Float64("p", res.PValue))
}

// meanCI is the t interval of a sample mean at confidence 1 - alpha
func (e *Engine) meanCI(g stats.GroupSummary) *stats.Interval {
	level := 1 - e.alpha
	lo, hi := e.dist.ConfidenceIntervalMean(g.Mean, g.Std, g.N, level)
	return &stats.Interval{Level: level, Lower: lo, Upper: hi}
}

// tRatio divides, mapping a zero denominator to +-Inf or NaN
func tRatio(num, den float64) float64 {
	if den == 0 {
		if num == 0 {
			return math.NaN()
		}
		return math.Copysign(math.Inf(1), num)
	}
	return num / den
}

func summarize(name string, x []float64) stats.GroupSummary {
	return stats.GroupSummary{Name: name, N: len(x), Mean: numeric.Mean(x), Std: numeric.SampleStd(x)}
}

func differsPhrase(s stats.Significance) string {
	switch s {
	case stats.Significant:
		return "differs significantly"
	case stats.NotSignificant:
		return "does not differ significantly"
	default:
		return "cannot be assessed"
	}
}
