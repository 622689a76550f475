package features

import (
	"fmt"
	"math"
	"strings"

	"edabench/domain/core"
	"edabench/domain/dataset"
)

// CombineMethod is the row-wise aggregation of Combine
type CombineMethod string

const (
	CombineSum  CombineMethod = "sum"
	CombineMean CombineMethod = "mean"
)

// CombineParams selects columns to aggregate row-wise
type CombineParams struct {
	Name    string        `json:"name" yaml:"name"`
	Columns []string      `json:"columns" yaml:"columns"`
	Method  CombineMethod `json:"method" yaml:"method"`
}

// Combine sums or averages numeric columns row-wise. Missing cells are
// skipped; a row with every input missing stays missing.
func (e *Engine) Combine(p CombineParams) (Result, error) {
	const op = "combine"
	if len(p.Columns) == 0 {
		return Result{}, e.fail(op, core.NewValidationError("columns", "select at least one numeric column"))
	}
	if p.Method != CombineSum && p.Method != CombineMean {
		return Result{}, e.fail(op, core.NewValidationError("method", fmt.Sprintf("unknown method %q", p.Method)))
	}
	if err := e.requireTargets(p.Name); err != nil {
		return Result{}, e.fail(op, err)
	}
	cols, err := e.ds.Lookup(p.Columns, dataset.KindNumeric)
	if err != nil {
		return Result{}, e.fail(op, err)
	}

	out := make([]float64, e.ds.RowCount())
	for i := range out {
		sum, n := 0.0, 0
		for _, c := range cols {
			if v := c.Float(i); !math.IsNaN(v) {
				sum += v
				n++
			}
		}
		switch {
		case n == 0:
			out[i] = math.NaN()
		case p.Method == CombineMean:
			out[i] = sum / float64(n)
		default:
			out[i] = sum
		}
	}

	desc := fmt.Sprintf("Combined [%s] by %s into '%s'", strings.Join(p.Columns, ", "), p.Method, p.Name)
	return e.commit(op, desc, dataset.NewNumeric(p.Name, out))
}

// LikertParams selects a scale column to reverse
type LikertParams struct {
	Name   string  `json:"name" yaml:"name"`
	Column string  `json:"column" yaml:"column"`
	Max    float64 `json:"max" yaml:"max"`
}

// InvertLikert reverses a rating scale: new = max + 1 - x
func (e *Engine) InvertLikert(p LikertParams) (Result, error) {
	const op = "likert inversion"
	name := defaultName(p.Name, p.Column+"_inv")
	if p.Max < 1 {
		return Result{}, e.fail(op, core.NewValidationError("max", "scale maximum must be at least 1"))
	}
	if err := e.requireTargets(name); err != nil {
		return Result{}, e.fail(op, err)
	}
	cols, err := e.ds.Lookup([]string{p.Column}, dataset.KindNumeric)
	if err != nil {
		return Result{}, e.fail(op, err)
	}

	src := cols[0]
	out := make([]float64, src.Len())
	for i := range out {
		out[i] = p.Max + 1 - src.Float(i)
	}

	desc := fmt.Sprintf("Inverted Likert scale '%s' (max %s) into '%s'", p.Column, dataset.FormatFloat(p.Max), name)
	return e.commit(op, desc, dataset.NewNumeric(name, out))
}

// InteractionParams selects two numeric columns to multiply
type InteractionParams struct {
	Name    string   `json:"name" yaml:"name"`
	Columns []string `json:"columns" yaml:"columns"`
}

// Interaction multiplies exactly two distinct numeric columns
func (e *Engine) Interaction(p InteractionParams) (Result, error) {
	const op = "interaction"
	if len(p.Columns) != 2 || p.Columns[0] == p.Columns[1] {
		return Result{}, e.fail(op, core.NewValidationError("columns", "select exactly two distinct numeric columns"))
	}
	name := defaultName(p.Name, p.Columns[0]+"_x_"+p.Columns[1])
	if err := e.requireTargets(name); err != nil {
		return Result{}, e.fail(op, err)
	}
	cols, err := e.ds.Lookup(p.Columns, dataset.KindNumeric)
	if err != nil {
		return Result{}, e.fail(op, err)
	}

	out := make([]float64, e.ds.RowCount())
	for i := range out {
		out[i] = cols[0].Float(i) * cols[1].Float(i)
	}

	desc := fmt.Sprintf("Created interaction '%s' = %s * %s", name, p.Columns[0], p.Columns[1])
	return e.commit(op, desc, dataset.NewNumeric(name, out))
}
