package features

import (
	"fmt"
	"sort"
	"strings"

	"edabench/domain/core"
	"edabench/domain/dataset"
)

// MaxRelabelLevels bounds how many distinct values Relabel accepts
const MaxRelabelLevels = 10

// DummyParams selects a categorical column to one-hot encode
type DummyParams struct {
	Column    string `json:"column" yaml:"column"`
	Prefix    string `json:"prefix" yaml:"prefix"`
	DropFirst *bool  `json:"drop_first" yaml:"drop_first"`
}

func (p DummyParams) dropFirst() bool {
	return p.DropFirst == nil || *p.DropFirst
}

// Dummies one-hot encodes a categorical column into {prefix}_{level} indicator
// columns, levels in sorted order. The first level is dropped unless
// DropFirst is explicitly false. Missing cells are 0 in every indicator.
func (e *Engine) Dummies(p DummyParams) (Result, error) {
	const op = "dummies"
	cols, err := e.ds.Lookup([]string{p.Column}, dataset.KindCategorical, dataset.KindBoolean)
	if err != nil {
		return Result{}, e.fail(op, err)
	}
	src := cols[0]
	levels := src.Levels()
	if p.dropFirst() && len(levels) > 0 {
		levels = levels[1:]
	}
	if len(levels) == 0 {
		return Result{}, e.fail(op, core.NewInsufficientDataError(
			fmt.Sprintf("%q has too few levels to encode", p.Column)))
	}

	prefix := defaultName(p.Prefix, p.Column)
	names := make([]string, len(levels))
	for j, lv := range levels {
		names[j] = prefix + "_" + lv
	}
	if err := e.requireTargets(names...); err != nil {
		return Result{}, e.fail(op, err)
	}

	out := make([]*dataset.Column, len(levels))
	for j, lv := range levels {
		vals := make([]float64, src.Len())
		for i := range vals {
			if !src.IsMissing(i) && src.String(i) == lv {
				vals[i] = 1
			}
		}
		out[j] = dataset.NewNumeric(names[j], vals)
	}

	desc := fmt.Sprintf("Created %d dummy columns from '%s'", len(out), p.Column)
	return e.commit(op, desc, out...)
}

// RelabelParams maps every observed value of a low-cardinality column to a label
type RelabelParams struct {
	Name           string            `json:"name" yaml:"name"`
	Column         string            `json:"column" yaml:"column"`
	Labels         map[string]string `json:"labels" yaml:"labels"`
	RemoveOriginal bool              `json:"remove_original" yaml:"remove_original"`
}

// Relabel recodes a column with at most MaxRelabelLevels distinct values into
// a categorical column. Every observed value needs a non-empty label.
// Removing the original is recorded as its own log entry.
func (e *Engine) Relabel(p RelabelParams) (Result, error) {
	const op = "relabel"
	name := defaultName(p.Name, p.Column+"_cat")
	if err := e.requireTargets(name); err != nil {
		return Result{}, e.fail(op, err)
	}
	src, err := e.ds.Column(p.Column)
	if err != nil {
		return Result{}, e.fail(op, err)
	}
	observed := src.Levels()
	if len(observed) > MaxRelabelLevels {
		return Result{}, e.fail(op, core.NewValidationError("column",
			fmt.Sprintf("%q has %d distinct values; at most %d can be relabeled", p.Column, len(observed), MaxRelabelLevels)))
	}

	var unlabeled []string
	order := make([]string, 0, len(observed))
	seen := make(map[string]bool)
	for _, v := range observed {
		lbl := strings.TrimSpace(p.Labels[v])
		if lbl == "" {
			unlabeled = append(unlabeled, v)
			continue
		}
		if !seen[lbl] {
			seen[lbl] = true
			order = append(order, lbl)
		}
	}
	if len(unlabeled) > 0 {
		sort.Strings(unlabeled)
		return Result{}, e.fail(op, fmt.Errorf("%w: no label for %s", core.ErrIncompleteLabels, strings.Join(unlabeled, ", ")))
	}

	values := make([]string, src.Len())
	valid := make([]bool, src.Len())
	for i := range values {
		if src.IsMissing(i) {
			continue
		}
		values[i], valid[i] = strings.TrimSpace(p.Labels[src.String(i)]), true
	}

	desc := fmt.Sprintf("Relabeled '%s' into '%s' (%d levels)", p.Column, name, len(order))
	res, err := e.commit(op, desc, dataset.NewCategorical(name, values, valid).WithLevels(order))
	if err != nil || !p.RemoveOriginal {
		return res, err
	}
	removed, err := e.RemoveColumns(p.Column)
	if err != nil {
		return res, err
	}
	res.Removed = removed.Removed
	return res, nil
}
