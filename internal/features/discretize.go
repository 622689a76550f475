package features

import (
	"fmt"
	"strconv"

	"edabench/domain/core"
	"edabench/domain/dataset"
	"edabench/internal/numeric"
)

const (
	MinBins     = 2
	MaxBins     = 20
	DefaultBins = 5
)

// DiscretizeParams selects a column to cut into quantile bins
type DiscretizeParams struct {
	Name   string `json:"name" yaml:"name"`
	Column string `json:"column" yaml:"column"`
	Bins   int    `json:"bins" yaml:"bins"`
}

// Discretize cuts a numeric column into roughly equal-frequency bins.
// Duplicate edges are merged, so fewer bins than requested may result.
// Missing inputs stay missing.
func (e *Engine) Discretize(p DiscretizeParams) (Result, error) {
	const op = "discretize"
	bins := p.Bins
	if bins == 0 {
		bins = DefaultBins
	}
	if bins < MinBins || bins > MaxBins {
		return Result{}, e.fail(op, core.NewValidationError("bins",
			fmt.Sprintf("must be between %d and %d", MinBins, MaxBins)))
	}
	name := defaultName(p.Name, p.Column+"_binned_qcut")
	if err := e.requireTargets(name); err != nil {
		return Result{}, e.fail(op, err)
	}
	cols, err := e.ds.Lookup([]string{p.Column}, dataset.KindNumeric)
	if err != nil {
		return Result{}, e.fail(op, err)
	}
	src := cols[0]

	edges := quantileEdges(numeric.DropNaN(src.Floats()), bins)
	if len(edges) < 2 {
		return Result{}, e.fail(op, core.NewInsufficientDataError(
			fmt.Sprintf("%q needs at least two distinct values to bin", p.Column)))
	}

	labels := binLabels(edges)
	values := make([]string, src.Len())
	valid := make([]bool, src.Len())
	for i := range values {
		v := src.Float(i)
		if src.IsMissing(i) {
			continue
		}
		b := binOf(edges, v)
		values[i], valid[i] = labels[b], true
	}

	desc := fmt.Sprintf("Discretized '%s' into %d quantile bins as '%s'", p.Column, len(labels), name)
	res, err := e.commit(op, desc, dataset.NewCategorical(name, values, valid).WithLevels(labels))
	if err == nil && len(labels) < bins {
		res.Notes = append(res.Notes, fmt.Sprintf("duplicate edges merged: %d of %d bins kept", len(labels), bins))
	}
	return res, err
}

func quantileEdges(present []float64, bins int) []float64 {
	if len(present) == 0 {
		return nil
	}
	ps := make([]float64, bins+1)
	for i := range ps {
		ps[i] = float64(i) / float64(bins)
	}
	raw := numeric.Quantiles(present, ps)
	edges := []float64{raw[0]}
	for _, q := range raw[1:] {
		if q > edges[len(edges)-1] {
			edges = append(edges, q)
		}
	}
	return edges
}

// binOf returns the bin of v; bins are (lo, hi] except the first, which
// also includes its lower edge.
func binOf(edges []float64, v float64) int {
	for b := 0; b < len(edges)-1; b++ {
		if v <= edges[b+1] {
			return b
		}
	}
	return len(edges) - 2
}

func binLabels(edges []float64) []string {
	labels := make([]string, len(edges)-1)
	for b := range labels {
		open := "("
		if b == 0 {
			open = "["
		}
		labels[b] = fmt.Sprintf("%s%s, %s]", open, formatEdge(edges[b]), formatEdge(edges[b+1]))
	}
	return labels
}

func formatEdge(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
