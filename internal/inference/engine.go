// Package inference runs the statistical procedures of the workbench:
// contingency analysis, correlations, t-tests, ANOVA with gated post-hoc
// comparisons, and descriptive summaries. Procedures read the dataset and
// never mutate it.
package inference

import (
	"fmt"
	"sort"

	"edabench/domain/core"
	"edabench/domain/dataset"
	"edabench/internal/errors"
	"edabench/internal/logging"
	"edabench/internal/numeric"

	"go.uber.org/zap"
)

// DefaultAlpha is the significance level when none is configured
const DefaultAlpha = 0.05

// MissingLabel is the explicit category for missing cells in crosstabs
const MissingLabel = "(missing)"

// Engine runs statistical procedures against one dataset
type Engine struct {
	ds     *dataset.Dataset
	alpha  float64
	strict bool
	logger *zap.Logger
	dist   *numeric.Distributions
	anova  *ANOVA
}

// Option configures an Engine
type Option func(*Engine)

// WithAlpha sets the significance level
func WithAlpha(alpha float64) Option {
	return func(e *Engine) {
		if alpha > 0 && alpha < 1 {
			e.alpha = alpha
		}
	}
}

// WithStrictPostHoc rejects post-hoc methods that contradict the homogeneity check
func WithStrictPostHoc(strict bool) Option {
	return func(e *Engine) { e.strict = strict }
}

// WithLogger attaches a structured logger
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = logging.OrNop(l).Named("inference") }
}

// NewEngine binds the engine to a dataset
func NewEngine(ds *dataset.Dataset, opts ...Option) *Engine {
	e := &Engine{
		ds:     ds,
		alpha:  DefaultAlpha,
		logger: zap.NewNop(),
		dist:   numeric.NewDistributions(),
	}
	for _, o := range opts {
		o(e)
	}
	e.anova = newANOVA(e)
	return e
}

// Alpha returns the configured significance level
func (e *Engine) Alpha() float64 { return e.alpha }

// ANOVA returns the engine's ANOVA state machine
func (e *Engine) ANOVA() *ANOVA { return e.anova }

func (e *Engine) fail(procedure string, err error) error {
	e.logger.Warn("procedure aborted", zap.String("procedure", procedure), zap.Error(err))
	return errors.Wrapf(err, "%s failed", procedure)
}

func (e *Engine) numericColumns(names ...string) ([]*dataset.Column, error) {
	if err := distinct(names); err != nil {
		return nil, err
	}
	return e.ds.Lookup(names, dataset.KindNumeric)
}

func distinct(names []string) error {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if n == "" {
			return core.NewValidationError("column", "a column must be selected")
		}
		if seen[n] {
			return core.NewValidationError("column", fmt.Sprintf("%q selected twice", n))
		}
		seen[n] = true
	}
	return nil
}

// group is the values of one level of a grouping column
type group struct {
	name   string
	values []float64
}

// groupValues splits y by the labels of key, skipping rows where either is
// missing. Groups keep the order of first appearance.
func groupValues(y, key *dataset.Column) []group {
	index := make(map[string]int)
	var out []group
	for i := 0; i < y.Len(); i++ {
		if y.IsMissing(i) || key.IsMissing(i) {
			continue
		}
		k := key.String(i)
		j, ok := index[k]
		if !ok {
			j = len(out)
			index[k] = j
			out = append(out, group{name: k})
		}
		out[j].values = append(out[j].values, y.Float(i))
	}
	return out
}

func sortedGroups(groups []group) []group {
	out := append([]group(nil), groups...)
	sort.SliceStable(out, func(a, b int) bool { return out[a].name < out[b].name })
	return out
}

func groupSlices(groups []group) [][]float64 {
	out := make([][]float64, len(groups))
	for i, g := range groups {
		out[i] = g.values
	}
	return out
}
