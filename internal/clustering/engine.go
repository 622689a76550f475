// Package clustering prepares numeric features, sweeps K-Means inertia for
// the elbow method, fits a chosen k and persists labels back to the dataset.
package clustering

import (
	"fmt"
	"strings"
	"sync"

	"edabench/domain/core"
	"edabench/domain/dataset"
	"edabench/domain/oplog"
	"edabench/internal/config"
	"edabench/internal/errors"
	"edabench/internal/logging"
	"edabench/internal/numeric"

	"go.uber.org/zap"
)

const convergenceTol = 1e-4

// Preparation describes the cleaned feature matrix
type Preparation struct {
	Features []string         `json:"features"`
	Rows     int              `json:"rows"`
	Dropped  int              `json:"dropped"`
	Means    []float64        `json:"means"`
	Scales   []float64        `json:"scales"`
	Digest   core.Fingerprint `json:"fingerprint"`
}

// Assignment is a fitted partition of the prepared rows
type Assignment struct {
	K          int     `json:"k"`
	Labels     []int   `json:"labels"` // aligned with the prepared rows
	Sizes      []int   `json:"sizes"`
	Inertia    float64 `json:"inertia"`
	Silhouette float64 `json:"silhouette"`
	Iterations int     `json:"iterations"`
}

// Engine owns the clustering workflow for one dataset
type Engine struct {
	mu     sync.Mutex
	ds     *dataset.Dataset
	log    *oplog.Log
	cfg    config.ClusteringConfig
	logger *zap.Logger

	prep   *Preparation
	rows   []int       // dataset row of each prepared row
	raw    [][]float64 // unscaled features
	scaled [][]float64
	fit    *Assignment
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger attaches a structured logger
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = logging.OrNop(l).Named("clustering") }
}

// NewEngine binds the engine to a dataset, its log and K-Means settings
func NewEngine(ds *dataset.Dataset, log *oplog.Log, cfg config.ClusteringConfig, opts ...Option) *Engine {
	d := config.Default().Clustering
	if cfg.MaxK < 1 {
		cfg.MaxK = d.MaxK
	}
	if cfg.NInit < 1 {
		cfg.NInit = d.NInit
	}
	if cfg.MaxIter < 1 {
		cfg.MaxIter = d.MaxIter
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Column == "" {
		cfg.Column = d.Column
	}
	if cfg.UnclusteredLabel == "" {
		cfg.UnclusteredLabel = d.UnclusteredLabel
	}
	e := &Engine{ds: ds, log: log, cfg: cfg, logger: zap.NewNop()}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Engine) fail(step string, err error) error {
	e.logger.Warn("clustering step rejected", zap.String("step", step), zap.Error(err))
	return errors.Wrapf(err, "%s failed", step)
}

// Prepare selects numeric features, drops rows with any missing feature and
// standardizes the rest. Any previous fit is discarded.
func (e *Engine) Prepare(features ...string) (Preparation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.prep, e.rows, e.raw, e.scaled, e.fit = nil, nil, nil, nil, nil

	if len(features) == 0 {
		return Preparation{}, e.fail("prepare", core.NewValidationError("features", "select at least one numeric column"))
	}
	seen := make(map[string]bool)
	for _, f := range features {
		if seen[f] {
			return Preparation{}, e.fail("prepare", core.NewValidationError("features", fmt.Sprintf("%q selected twice", f)))
		}
		seen[f] = true
	}
	cols, err := e.ds.Lookup(features, dataset.KindNumeric)
	if err != nil {
		return Preparation{}, e.fail("prepare", err)
	}
	idx := dataset.CompleteRows(cols...)
	if len(idx) == 0 {
		return Preparation{}, e.fail("prepare", core.NewInsufficientDataError("no rows remain after removing missing values"))
	}

	raw := make([][]float64, len(idx))
	for r, i := range idx {
		raw[r] = make([]float64, len(cols))
		for j, c := range cols {
			raw[r][j] = c.Float(i)
		}
	}
	scaled, scaler, err := numeric.FitTransform(raw)
	if err != nil {
		return Preparation{}, e.fail("prepare", core.NewComputationError("standardize", err))
	}
	digest, err := e.ds.Fingerprint(features...)
	if err != nil {
		return Preparation{}, e.fail("prepare", err)
	}

	e.prep = &Preparation{
		Features: append([]string(nil), features...),
		Rows:     len(idx),
		Dropped:  e.ds.RowCount() - len(idx),
		Means:    scaler.Means,
		Scales:   scaler.Scales,
		Digest:   digest,
	}
	e.rows, e.raw, e.scaled = idx, raw, scaled
	e.logger.Info("features prepared",
		zap.Strings("features", features),
		zap.Int("rows", len(idx)),
		zap.Int("dropped", e.prep.Dropped))
	return *e.prep, nil
}

// MaxK is the largest k the sweep and fit accept for the prepared rows
func (e *Engine) MaxK() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.maxK()
}

func (e *Engine) maxK() int {
	if e.prep == nil {
		return 0
	}
	return min(e.cfg.MaxK, e.prep.Rows-1)
}

func (e *Engine) requirePrepared() error {
	if e.prep == nil {
		return errors.InvalidState("features have not been prepared")
	}
	return nil
}

// Assignment returns the current fit, if any
func (e *Engine) Assignment() (Assignment, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.fit == nil {
		return Assignment{}, false
	}
	return *e.fit, true
}

func describeFeatures(features []string) string {
	return "[" + strings.Join(features, ", ") + "]"
}

func errInvalidNoFit() error {
	return errors.InvalidState("no clustering has been fitted")
}
