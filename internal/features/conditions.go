package features

import (
	"fmt"
	"strings"

	"edabench/domain/core"
	"edabench/domain/dataset"
)

// MaxConditions bounds a multi-condition filter
const MaxConditions = 3

// BinarizeParams describes a 0/1 indicator built from one condition
type BinarizeParams struct {
	Name      string            `json:"name" yaml:"name"`
	Condition dataset.Condition `json:"condition" yaml:"condition"`
}

// Binarize creates a 0/1 column from a single comparison. Missing cells
// satisfy only the != operator.
func (e *Engine) Binarize(p BinarizeParams) (Result, error) {
	const op = "binarize"
	if err := e.requireTargets(p.Name); err != nil {
		return Result{}, e.fail(op, err)
	}
	mask, err := e.mask(p.Condition)
	if err != nil {
		return Result{}, e.fail(op, err)
	}

	out := make([]float64, len(mask))
	for i, ok := range mask {
		if ok {
			out[i] = 1
		}
	}

	desc := fmt.Sprintf("Binarized '%s' into '%s' (1 where %s)", p.Condition.Column, p.Name, p.Condition)
	return e.commit(op, desc, dataset.NewNumeric(p.Name, out))
}

// FilterParams keeps Source values where every condition holds
type FilterParams struct {
	Name       string              `json:"name" yaml:"name"`
	Source     string              `json:"source" yaml:"source"`
	Conditions []dataset.Condition `json:"conditions" yaml:"conditions"`
}

// Filter copies the source column, setting rows where any condition fails to
// missing. A single condition on the source column is the common case.
func (e *Engine) Filter(p FilterParams) (Result, error) {
	const op = "filter"
	if len(p.Conditions) == 0 || len(p.Conditions) > MaxConditions {
		return Result{}, e.fail(op, core.NewValidationError("conditions",
			fmt.Sprintf("between 1 and %d conditions are required", MaxConditions)))
	}
	if err := e.requireTargets(p.Name); err != nil {
		return Result{}, e.fail(op, err)
	}
	src, err := e.ds.Column(p.Source)
	if err != nil {
		return Result{}, e.fail(op, err)
	}

	keep := make([]bool, e.ds.RowCount())
	for i := range keep {
		keep[i] = true
	}
	parts := make([]string, 0, len(p.Conditions))
	for _, c := range p.Conditions {
		m, err := e.mask(c)
		if err != nil {
			return Result{}, e.fail(op, err)
		}
		for i, ok := range m {
			keep[i] = keep[i] && ok
		}
		parts = append(parts, c.String())
	}

	desc := fmt.Sprintf("Filtered '%s' into '%s' where %s", p.Source, p.Name, strings.Join(parts, " AND "))
	return e.commit(op, desc, src.Masked(keep).Renamed(p.Name))
}

func (e *Engine) mask(c dataset.Condition) ([]bool, error) {
	col, err := e.ds.Column(c.Column)
	if err != nil {
		return nil, err
	}
	return col.Mask(c.Op, c.Value)
}
