// Package features implements the column derivation operators. Every operator
// validates against the current dataset, computes its output off to the side
// and only then commits through the registry, so a failed call never leaves a
// partial column or a log entry behind.
package features

import (
	"strings"

	"edabench/domain/core"
	"edabench/domain/dataset"
	"edabench/domain/oplog"
	"edabench/internal/errors"
	"edabench/internal/logging"

	"go.uber.org/zap"
)

// DefaultPreviewRows is used when no preview size is configured
const DefaultPreviewRows = 5

// Result is the success payload of a derivation
type Result struct {
	Columns    []string   `json:"columns"`
	Preview    [][]string `json:"preview"`
	Explained  []float64  `json:"explained_variance,omitempty"`
	Cumulative []float64  `json:"cumulative_variance,omitempty"`
	Removed    []string   `json:"removed,omitempty"`
	Notes      []string   `json:"notes,omitempty"`
}

// Engine derives new columns on one dataset and records each step
type Engine struct {
	ds          *dataset.Dataset
	log         *oplog.Log
	logger      *zap.Logger
	previewRows int
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger attaches a structured logger
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = logging.OrNop(l).Named("features") }
}

// WithPreviewRows sets how many rows a Result previews
func WithPreviewRows(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.previewRows = n
		}
	}
}

// NewEngine binds the engine to a dataset and its operation log
func NewEngine(ds *dataset.Dataset, log *oplog.Log, opts ...Option) *Engine {
	e := &Engine{ds: ds, log: log, logger: zap.NewNop(), previewRows: DefaultPreviewRows}
	for _, o := range opts {
		o(e)
	}
	return e
}

// requireTargets checks output names before any computation
func (e *Engine) requireTargets(names ...string) error {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			return core.NewValidationError("name", "a name for the new column is required")
		}
		if e.ds.ColumnExists(n) || seen[n] {
			return core.NewCollisionError(n)
		}
		seen[n] = true
	}
	return nil
}

func (e *Engine) commit(operator, description string, cols ...*dataset.Column) (Result, error) {
	if err := e.ds.CreateColumns(cols...); err != nil {
		return Result{}, err
	}
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name()
	}
	e.log.Record(description)
	e.logger.Info("columns created",
		zap.String("operator", operator),
		zap.Strings("columns", names))

	return Result{Columns: names, Preview: e.ds.Preview(names, e.previewRows)}, nil
}

func (e *Engine) fail(operator string, err error) error {
	e.logger.Warn("derivation rejected", zap.String("operator", operator), zap.Error(err))
	return errors.Wrapf(err, "%s failed", operator)
}

func defaultName(name, fallback string) string {
	if strings.TrimSpace(name) == "" {
		return fallback
	}
	return name
}

func allMissing(c *dataset.Column) bool {
	return c.MissingCount() == c.Len()
}

// RemoveColumns drops columns from the dataset and records the step
func (e *Engine) RemoveColumns(names ...string) (Result, error) {
	if len(names) == 0 {
		return Result{}, e.fail("remove", core.NewValidationError("columns", "select at least one column"))
	}
	if err := e.ds.RemoveColumns(names...); err != nil {
		return Result{}, e.fail("remove", err)
	}
	e.log.Record("Removed columns: " + strings.Join(names, ", "))
	e.logger.Info("columns removed", zap.Strings("columns", names))
	return Result{Removed: append([]string(nil), names...)}, nil
}
