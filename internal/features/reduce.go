package features

import (
	"fmt"
	"math"
	"strings"

	"edabench/domain/core"
	"edabench/domain/dataset"
	"edabench/internal/numeric"
)

// DefaultPCABase names PCA outputs when no base is given
const DefaultPCABase = "PCA_Comp"

// PCAParams selects numeric columns to reduce
type PCAParams struct {
	Base       string   `json:"base" yaml:"base"`
	Columns    []string `json:"columns" yaml:"columns"`
	Components int      `json:"components" yaml:"components"`
}

// PCA standardizes the selected columns over complete rows and adds the first
// n component scores as {base}_comp{i}. Incomplete rows get missing scores.
func (e *Engine) PCA(p PCAParams) (Result, error) {
	const op = "pca"
	if len(p.Columns) < 2 {
		return Result{}, e.fail(op, core.NewValidationError("columns", "select at least two numeric columns"))
	}
	n := p.Components
	if n == 0 {
		n = 2
	}
	if n < 1 || n > len(p.Columns) {
		return Result{}, e.fail(op, core.NewValidationError("components",
			fmt.Sprintf("must be between 1 and %d", len(p.Columns))))
	}
	base := defaultName(p.Base, DefaultPCABase)
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("%s_comp%d", base, i+1)
	}
	if err := e.requireTargets(names...); err != nil {
		return Result{}, e.fail(op, err)
	}
	cols, err := e.ds.Lookup(p.Columns, dataset.KindNumeric)
	if err != nil {
		return Result{}, e.fail(op, err)
	}

	idx := dataset.CompleteRows(cols...)
	if len(idx) < 2 {
		return Result{}, e.fail(op, core.NewInsufficientDataError("fewer than two complete rows"))
	}
	rows := make([][]float64, len(idx))
	for r, i := range idx {
		rows[r] = make([]float64, len(cols))
		for j, c := range cols {
			rows[r][j] = c.Float(i)
		}
	}
	scaled, _, err := numeric.FitTransform(rows)
	if err != nil {
		return Result{}, e.fail(op, core.NewComputationError("standardize", err))
	}
	pca, err := numeric.PCA(scaled, n)
	if err != nil {
		return Result{}, e.fail(op, core.NewComputationError("pca", err))
	}

	out := make([]*dataset.Column, n)
	for c := range out {
		vals := make([]float64, e.ds.RowCount())
		for i := range vals {
			vals[i] = math.NaN()
		}
		for r, i := range idx {
			vals[i] = pca.Scores[r][c]
		}
		out[c] = dataset.NewNumeric(names[c], vals)
	}

	desc := fmt.Sprintf("PCA on [%s] into %d components (%s)", strings.Join(p.Columns, ", "), n, base)
	res, err := e.commit(op, desc, out...)
	if err != nil {
		return res, err
	}
	res.Explained = pca.ExplainedVariance
	res.Cumulative = pca.Cumulative
	return res, nil
}
