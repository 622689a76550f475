package inference

import (
	"fmt"
	"math"

	"edabench/domain/core"
	"edabench/domain/dataset"
	"edabench/domain/stats"
	"edabench/internal/numeric"
)

// Correlations computes Pearson and Spearman coefficients for every pair of
// the selected numeric columns using pairwise-complete observations.
func (e *Engine) Correlations(columns ...string) (stats.CorrelationMatrix, error) {
	const proc = "correlation"
	if len(columns) < 2 {
		return stats.CorrelationMatrix{}, e.fail(proc, core.NewValidationError("columns", "select at least two numeric columns"))
	}
	cols, err := e.numericColumns(columns...)
	if err != nil {
		return stats.CorrelationMatrix{}, e.fail(proc, err)
	}

	m := stats.CorrelationMatrix{Columns: append([]string(nil), columns...)}
	for i := 0; i < len(cols); i++ {
		for j := i + 1; j < len(cols); j++ {
			x, y := numeric.PairwiseComplete(cols[i].Floats(), cols[j].Floats())
			p := numeric.Pearson(x, y)
			s := numeric.Spearman(x, y)
			m.Pairs = append(m.Pairs, stats.CorrelationPair{
				X:            columns[i],
				Y:            columns[j],
				N:            len(x),
				Pearson:      p.R,
				PearsonP:     p.PValue,
				Spearman:     s.R,
				SpearmanP:    s.PValue,
				Significance: stats.Classify(p.PValue, e.alpha),
			})
		}
	}
	return m, nil
}

// Partial compares the correlation of x and y with their correlation after
// controlling linearly for z. At least three complete rows are required.
func (e *Engine) Partial(x, y, z string) (stats.PartialCorrelationResult, error) {
	const proc = "partial correlation"
	cols, err := e.numericColumns(x, y, z)
	if err != nil {
		return stats.PartialCorrelationResult{}, e.fail(proc, err)
	}
	idx := dataset.CompleteRows(cols...)
	if len(idx) < 3 {
		return stats.PartialCorrelationResult{}, e.fail(proc, core.NewInsufficientDataError(
			fmt.Sprintf("%d complete rows; at least 3 are required", len(idx))))
	}
	xs, ys, zs := cols[0].Take(idx).Floats(), cols[1].Take(idx).Floats(), cols[2].Take(idx).Floats()

	total := numeric.Pearson(xs, ys)
	partial := numeric.PartialCorrelation(xs, ys, zs)
	res := stats.PartialCorrelationResult{
		X:                   x,
		Y:                   y,
		Control:             z,
		N:                   len(idx),
		TotalR:              total.R,
		TotalP:              total.PValue,
		PartialR:            partial.R,
		PartialP:            partial.PValue,
		TotalSignificance:   stats.Classify(total.PValue, e.alpha),
		PartialSignificance: stats.Classify(partial.PValue, e.alpha),
	}
	res.Narrative = partialNarrative(res)
	return res, nil
}

func partialNarrative(r stats.PartialCorrelationResult) string {
	switch {
	case r.TotalSignificance == stats.Significant && r.PartialSignificance != stats.Significant:
		return fmt.Sprintf("The association between %s and %s (r = %.3f) disappears after controlling for %s (partial r = %.3f)",
			r.X, r.Y, r.TotalR, r.Control, r.PartialR)
	case r.TotalSignificance != stats.Significant && r.PartialSignificance == stats.Significant:
		return fmt.Sprintf("Controlling for %s reveals an association between %s and %s (partial r = %.3f)",
			r.Control, r.X, r.Y, r.PartialR)
	case r.PartialSignificance == stats.Significant:
		return fmt.Sprintf("%s and %s remain associated after controlling for %s (r = %.3f, partial r = %.3f)",
			r.X, r.Y, r.Control, r.TotalR, r.PartialR)
	default:
		return fmt.Sprintf("No significant association between %s and %s with or without %s", r.X, r.Y, r.Control)
	}
}

// minGroupedObservations is the smallest group size that gets a coefficient
const minGroupedObservations = 3

// Grouped computes Pearson r for every pair of numeric columns within each
// level of a grouping column. Cells with fewer than three observations are NaN.
func (e *Engine) Grouped(groupColumn string, columns ...string) (stats.GroupedCorrelation, error) {
	const proc = "grouped correlation"
	if len(columns) < 2 {
		return stats.GroupedCorrelation{}, e.fail(proc, core.NewValidationError("columns", "select at least two numeric columns"))
	}
	gc, err := e.ds.Lookup([]string{groupColumn}, dataset.KindCategorical, dataset.KindBoolean)
	if err != nil {
		return stats.GroupedCorrelation{}, e.fail(proc, err)
	}
	cols, err := e.numericColumns(columns...)
	if err != nil {
		return stats.GroupedCorrelation{}, e.fail(proc, err)
	}
	groups := gc[0].Levels()
	if len(groups) == 0 {
		return stats.GroupedCorrelation{}, e.fail(proc, core.NewInsufficientDataError(
			fmt.Sprintf("%q has no non-missing values", groupColumn)))
	}

	rowsByGroup := make([][]int, len(groups))
	gi := indexOf(groups)
	for i := 0; i < gc[0].Len(); i++ {
		if gc[0].IsMissing(i) {
			continue
		}
		g := gi[gc[0].String(i)]
		rowsByGroup[g] = append(rowsByGroup[g], i)
	}

	out := stats.GroupedCorrelation{GroupColumn: groupColumn, Groups: groups}
	for i := 0; i < len(cols); i++ {
		for j := i + 1; j < len(cols); j++ {
			row := stats.GroupedCorrelationRow{X: columns[i], Y: columns[j], R: make([]float64, len(groups))}
			for g, idx := range rowsByGroup {
				x, y := numeric.PairwiseComplete(cols[i].Take(idx).Floats(), cols[j].Take(idx).Floats())
				if len(x) < minGroupedObservations {
					row.R[g] = math.NaN()
					continue
				}
				row.R[g] = numeric.Pearson(x, y).R
			}
			out.Rows = append(out.Rows, row)
		}
	}
	return out, nil
}
