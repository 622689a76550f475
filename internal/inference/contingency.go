package inference

import (
	"fmt"
	"math"
	"sort"

	"edabench/domain/core"
	"edabench/domain/dataset"
	"edabench/domain/stats"

	"go.uber.org/zap"
)

const lowExpectedCount = 5.0

// Contingency cross-tabulates two categorical columns and tests independence
// with a chi-square test. Missing cells form their own category. Yates'
// continuity correction applies when the table has one degree of freedom.
func (e *Engine) Contingency(rowVar, colVar string) (stats.ContingencyResult, error) {
	const proc = "contingency"
	if err := distinct([]string{rowVar, colVar}); err != nil {
		return stats.ContingencyResult{}, e.fail(proc, err)
	}
	cols, err := e.ds.Lookup([]string{rowVar, colVar}, dataset.KindCategorical, dataset.KindBoolean)
	if err != nil {
		return stats.ContingencyResult{}, e.fail(proc, err)
	}

	rowLevels, colLevels := crosstabLevels(cols[0]), crosstabLevels(cols[1])
	if len(rowLevels) < 2 || len(colLevels) < 2 {
		return stats.ContingencyResult{}, e.fail(proc, core.NewComputationError("chi-square",
			fmt.Errorf("table is %dx%d; both variables need at least two categories", len(rowLevels), len(colLevels))))
	}
	ri, ci := indexOf(rowLevels), indexOf(colLevels)

	observed := make([][]int, len(rowLevels))
	for r := range observed {
		observed[r] = make([]int, len(colLevels))
	}
	for i := 0; i < e.ds.RowCount(); i++ {
		observed[ri[crosstabLabel(cols[0], i)]][ci[crosstabLabel(cols[1], i)]]++
	}

	res := stats.ContingencyResult{
		RowVar:    rowVar,
		ColVar:    colVar,
		RowLevels: rowLevels,
		ColLevels: colLevels,
		Observed:  observed,
	}
	if err := e.chiSquare(&res); err != nil {
		return stats.ContingencyResult{}, e.fail(proc, err)
	}
	res.Dominance = rowDominance(res)
	res.Narrative = contingencyNarrative(res, e.alpha)

	e.logger.Info("contingency computed",
		zap.String("row", rowVar), zap.String("col", colVar),
		zap.Float64("chi2", res.ChiSquare), zap.Float64("p", res.PValue))
	return res, nil
}

func (e *Engine) chiSquare(res *stats.ContingencyResult) error {
	R, C := len(res.RowLevels), len(res.ColLevels)
	rowSum := make([]float64, R)
	colSum := make([]float64, C)
	var total float64
	for r, row := range res.Observed {
		for c, o := range row {
			rowSum[r] += float64(o)
			colSum[c] += float64(o)
			total += float64(o)
		}
	}

	res.DF = (R - 1) * (C - 1)
	res.YatesCorrected = res.DF == 1
	res.Expected = make([][]float64, R)
	res.Residuals = make([][]float64, R)
	low := 0
	for r := 0; r < R; r++ {
		res.Expected[r] = make([]float64, C)
		res.Residuals[r] = make([]float64, C)
		for c := 0; c < C; c++ {
			exp := rowSum[r] * colSum[c] / total
			if exp == 0 {
				return core.NewComputationError("chi-square", fmt.Errorf("expected count is zero at (%s, %s)",
					res.RowLevels[r], res.ColLevels[c]))
			}
			if exp < lowExpectedCount {
				low++
			}
			o := float64(res.Observed[r][c])
			diff := math.Abs(o - exp)
			if res.YatesCorrected {
				diff = math.Max(0, diff-0.5)
			}
			res.ChiSquare += diff * diff / exp
			res.Expected[r][c] = exp

			denom := math.Sqrt(exp * (1 - rowSum[r]/total) * (1 - colSum[c]/total))
			if denom > 0 {
				res.Residuals[r][c] = (o - exp) / denom
			} else {
				res.Residuals[r][c] = math.NaN()
			}
		}
	}
	res.PValue = e.dist.ChiSquarePValue(res.ChiSquare, res.DF)
	res.Significance = stats.Classify(res.PValue, e.alpha)
	if low > 0 {
		res.Warnings = append(res.Warnings, stats.Warning{
			Code:    stats.WarningLowExpected,
			Message: fmt.Sprintf("%d of %d cells have an expected count below 5; the chi-square approximation may be unreliable", low, R*C),
		})
	}
	return nil
}

func rowDominance(res stats.ContingencyResult) []stats.RowDominance {
	out := make([]stats.RowDominance, 0, len(res.RowLevels))
	for r, row := range res.Observed {
		total, best := 0, 0
		for c, o := range row {
			total += o
			if o > row[best] {
				best = c
			}
		}
		share := 0.0
		if total > 0 {
			share = 100 * float64(row[best]) / float64(total)
		}
		level := stats.DominanceModerate
		switch {
		case share >= 90:
			level = stats.DominanceConcentrated
		case share < 50:
			level = stats.DominanceBalanced
		}
		out = append(out, stats.RowDominance{
			Row:      res.RowLevels[r],
			TopCol:   res.ColLevels[best],
			MaxShare: share,
			Level:    level,
		})
	}
	return out
}

func contingencyNarrative(res stats.ContingencyResult, alpha float64) string {
	verdict := "no evidence of association"
	if res.Significance == stats.Significant {
		verdict = "a significant association"
	}
	return fmt.Sprintf("%s and %s show %s (chi2 = %.3f, df = %d, p = %.4f, alpha = %.2f)",
		res.RowVar, res.ColVar, verdict, res.ChiSquare, res.DF, res.PValue, alpha)
}

func crosstabLabel(c *dataset.Column, i int) string {
	if c.IsMissing(i) {
		return MissingLabel
	}
	return c.String(i)
}

// crosstabLevels returns the column's levels with the missing category last
func crosstabLevels(c *dataset.Column) []string {
	levels := c.ObservedLevels()
	if c.MissingCount() > 0 {
		levels = append(levels, MissingLabel)
	}
	return levels
}

func indexOf(levels []string) map[string]int {
	m := make(map[string]int, len(levels))
	for i, l := range levels {
		m[l] = i
	}
	return m
}

// Frequency counts the levels of a column, missing included, most frequent first
func (e *Engine) Frequency(column string) (stats.FrequencyTable, error) {
	c, err := e.ds.Column(column)
	if err != nil {
		return stats.FrequencyTable{}, e.fail("frequency", err)
	}
	counts := make(map[string]int)
	for i := 0; i < c.Len(); i++ {
		counts[crosstabLabel(c, i)]++
	}
	rows := frequencyRows(counts, c.Len())
	return stats.FrequencyTable{Column: column, Total: c.Len(), Rows: rows}, nil
}

func frequencyRows(counts map[string]int, total int) []stats.FrequencyRow {
	rows := make([]stats.FrequencyRow, 0, len(counts))
	for level, n := range counts {
		pct := 0.0
		if total > 0 {
			pct = 100 * float64(n) / float64(total)
		}
		rows = append(rows, stats.FrequencyRow{Level: level, Count: n, Percent: pct})
	}
	sort.Slice(rows, func(a, b int) bool {
		if rows[a].Count != rows[b].Count {
			return rows[a].Count > rows[b].Count
		}
		return rows[a].Level < rows[b].Level
	})
	return rows
}
