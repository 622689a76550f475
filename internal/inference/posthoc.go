package inference

import (
	"fmt"
	"math"

	"edabench/domain/core"
	"edabench/domain/stats"
	"edabench/internal/errors"
	"edabench/internal/numeric"

	"go.uber.org/zap"
)

// PostHoc compares every pair of levels of a significant main factor. It is
// only available after a run produced at least one significant term.
func (a *ANOVA) PostHoc(factor string, method stats.PostHocMethod) (stats.PostHocResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	const proc = "post-hoc"
	e := a.engine

	if a.state != StatePostHocAvailable && a.state != StatePostHocDone {
		return stats.PostHocResult{}, e.fail(proc, errors.InvalidState(
			fmt.Sprintf("post-hoc comparisons need a run with a significant effect (state %s)", a.state)))
	}
	if method != stats.PostHocTukey && method != stats.PostHocGamesHowell {
		return stats.PostHocResult{}, e.fail(proc, core.NewValidationError("method", fmt.Sprintf("unknown method %q", method)))
	}
	if !a.isSignificantMain(factor) {
		return stats.PostHocResult{}, e.fail(proc, core.NewValidationError("factor",
			fmt.Sprintf("%q is not a significant main effect", factor)))
	}

	res := stats.PostHocResult{Factor: factor, Method: method}
	if method != a.result.Recommended {
		msg := fmt.Sprintf("%s chosen but Levene p = %.4f recommends %s", method, a.result.LeveneP, a.result.Recommended)
		if e.strict {
			return stats.PostHocResult{}, e.fail(proc, core.NewValidationError("method", msg))
		}
		res.Warnings = append(res.Warnings, stats.Warning{Code: stats.WarningMethodMismatch, Message: msg})
	}

	groups := a.factorGroups(factor)
	var err error
	if method == stats.PostHocTukey {
		res.Comparisons, err = tukeyHSD(groups, e.alpha)
	} else {
		res.Comparisons, err = gamesHowell(groups, e.alpha)
	}
	if err != nil {
		return stats.PostHocResult{}, e.fail(proc, err)
	}

	if a.posthoc == nil {
		a.posthoc = make(map[string]stats.PostHocResult)
	}
	a.posthoc[factor] = res
	a.state = StatePostHocDone
	e.logger.Info("post-hoc computed",
		zap.String("factor", factor),
		zap.String("method", string(method)),
		zap.Int("pairs", len(res.Comparisons)))
	return res, nil
}

func (a *ANOVA) isSignificantMain(factor string) bool {
	for _, t := range a.result.Terms {
		if !t.Interaction && t.Term == factor && t.Significance == stats.Significant {
			return true
		}
	}
	return false
}

// factorGroups splits the cleaned dependent values by the levels of a factor,
// levels sorted
func (a *ANOVA) factorGroups(factor string) []group {
	labels := a.labels[factor]
	index := make(map[string]int)
	var out []group
	for i, v := range a.y {
		j, ok := index[labels[i]]
		if !ok {
			j = len(out)
			index[labels[i]] = j
			out = append(out, group{name: labels[i]})
		}
		out[j].values = append(out[j].values, v)
	}
	return sortedGroups(out)
}

// tukeyHSD compares all pairs with the studentized range, using the one-way
// mean square error of the factor
func tukeyHSD(groups []group, alpha float64) ([]stats.PairwiseComparison, error) {
	k := len(groups)
	n := 0
	var sse float64
	means := make([]float64, k)
	for i, g := range groups {
		means[i] = numeric.Mean(g.values)
		for _, v := range g.values {
			d := v - means[i]
			sse += d * d
		}
		n += len(g.values)
	}
	df := float64(n - k)
	if df < 1 {
		return nil, core.NewInsufficientDataError("no within-group degrees of freedom")
	}
	mse := sse / df
	qcrit := numeric.StudentizedRangeQuantile(1-alpha, k, df)

	var out []stats.PairwiseComparison
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			ni, nj := float64(len(groups[i].values)), float64(len(groups[j].values))
			diff := means[j] - means[i]
			se := math.Sqrt(mse / 2 * (1/ni + 1/nj))
			p := rangePValue(diff, se, 1, k, df)
			out = append(out, stats.PairwiseComparison{
				GroupA:   groups[i].name,
				GroupB:   groups[j].name,
				MeanDiff: diff,
				SE:       se,
				DF:       df,
				PValue:   p,
				Lower:    diff - qcrit*se,
				Upper:    diff + qcrit*se,
				Reject:   p < alpha,
			})
		}
	}
	return out, nil
}

// gamesHowell compares all pairs with Welch standard errors and degrees of
// freedom, without assuming equal variances
func gamesHowell(groups []group, alpha float64) ([]stats.PairwiseComparison, error) {
	k := len(groups)
	means := make([]float64, k)
	vars := make([]float64, k)
	for i, g := range groups {
		if len(g.values) < 2 {
			return nil, core.NewInsufficientDataError(fmt.Sprintf("group %q has fewer than 2 observations", g.name))
		}
		means[i] = numeric.Mean(g.values)
		vars[i] = numeric.SampleVariance(g.values) / float64(len(g.values))
	}

	var out []stats.PairwiseComparison
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			ni, nj := float64(len(groups[i].values)), float64(len(groups[j].values))
			diff := means[i] - means[j]
			se := math.Sqrt(vars[i] + vars[j])
			df := math.Pow(vars[i]+vars[j], 2) / (vars[i]*vars[i]/(ni-1) + vars[j]*vars[j]/(nj-1))
			p := rangePValue(diff, se, math.Sqrt2, k, df)
			out = append(out, stats.PairwiseComparison{
				GroupA:   groups[i].name,
				GroupB:   groups[j].name,
				MeanDiff: diff,
				SE:       se,
				T:        tRatio(diff, se),
				DF:       df,
				PValue:   p,
				Reject:   p < alpha,
			})
		}
	}
	return out, nil
}

// rangePValue is the studentized range tail probability of |diff|/se*scale
func rangePValue(diff, se, scale float64, k int, df float64) float64 {
	if se == 0 {
		if diff == 0 {
			return math.NaN()
		}
		return 0
	}
	return numeric.StudentizedRangeSF(math.Abs(diff)/se*scale, k, df)
}
