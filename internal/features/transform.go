package features

import (
	"fmt"
	"math"

	"edabench/domain/core"
	"edabench/domain/dataset"
	"edabench/internal/numeric"
)

// TransformKind names an element-wise numeric transform
type TransformKind string

const (
	TransformLog1p  TransformKind = "log1p"
	TransformSquare TransformKind = "square"
	TransformSqrt   TransformKind = "sqrt"
	TransformZScore TransformKind = "zscore"
)

// TransformParams selects a column and transform
type TransformParams struct {
	Name   string        `json:"name" yaml:"name"`
	Column string        `json:"column" yaml:"column"`
	Kind   TransformKind `json:"kind" yaml:"kind"`
}

// Transform applies log1p, square, sqrt or a z-score. log1p and sqrt reject
// negative inputs; a constant column standardizes to zeros.
func (e *Engine) Transform(p TransformParams) (Result, error) {
	const op = "transform"
	switch p.Kind {
	case TransformLog1p, TransformSquare, TransformSqrt, TransformZScore:
	default:
		return Result{}, e.fail(op, core.NewValidationError("kind", fmt.Sprintf("unknown transform %q", p.Kind)))
	}
	name := defaultName(p.Name, fmt.Sprintf("%s_%s", p.Column, p.Kind))
	if err := e.requireTargets(name); err != nil {
		return Result{}, e.fail(op, err)
	}
	cols, err := e.ds.Lookup([]string{p.Column}, dataset.KindNumeric)
	if err != nil {
		return Result{}, e.fail(op, err)
	}
	src := cols[0]
	if allMissing(src) {
		return Result{}, e.fail(op, core.NewInsufficientDataError(fmt.Sprintf("%q has no values", p.Column)))
	}

	in := src.Floats()
	if p.Kind == TransformLog1p || p.Kind == TransformSqrt {
		for _, v := range in {
			if v < 0 {
				return Result{}, e.fail(op, core.NewDomainError(
					fmt.Sprintf("%s requires non-negative values; %q contains %s", p.Kind, p.Column, dataset.FormatFloat(v))))
			}
		}
	}

	out := make([]float64, len(in))
	switch p.Kind {
	case TransformLog1p:
		for i, v := range in {
			out[i] = math.Log1p(v)
		}
	case TransformSquare:
		for i, v := range in {
			out[i] = v * v
		}
	case TransformSqrt:
		for i, v := range in {
			out[i] = math.Sqrt(v)
		}
	case TransformZScore:
		present := numeric.DropNaN(in)
		mean, sd := numeric.Mean(present), numeric.SampleStd(present)
		for i, v := range in {
			switch {
			case math.IsNaN(v):
				out[i] = math.NaN()
			case sd == 0 || math.IsNaN(sd):
				out[i] = 0
			default:
				out[i] = (v - mean) / sd
			}
		}
	}

	desc := fmt.Sprintf("Applied %s to '%s' into '%s'", p.Kind, p.Column, name)
	return e.commit(op, desc, dataset.NewNumeric(name, out))
}
