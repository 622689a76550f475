// Package session owns one analyst's dataset together with its operation log
// and engines, and serializes every call onto a single writer.
package session

import (
	"context"
	"iter"
	"sync"

	"edabench/domain/core"
	"edabench/domain/dataset"
	"edabench/domain/oplog"
	"edabench/domain/stats"
	"edabench/internal/clustering"
	"edabench/internal/config"
	"edabench/internal/features"
	"edabench/internal/inference"
	"edabench/internal/logging"

	"go.uber.org/zap"
)

// Session is the in-memory workbench state for one dataset
type Session struct {
	mu sync.Mutex

	id         core.SessionID
	createdAt  core.Timestamp
	ds         *dataset.Dataset
	log        *oplog.Log
	features   *features.Engine
	inference  *inference.Engine
	clustering *clustering.Engine
	cfg        *config.Config
	logger     *zap.Logger
}

// New opens a session over ds using cfg; a nil cfg means defaults
func New(ds *dataset.Dataset, cfg *config.Config, logger *zap.Logger) *Session {
	if cfg == nil {
		cfg = config.Default()
	}
	id := core.NewSessionID()
	logger = logging.OrNop(logger).With(zap.String("session", id.String()))
	log := oplog.New(oplog.WithCap(cfg.Log.MaxEntries))

	s := &Session{
		id:        id,
		createdAt: core.Now(),
		ds:        ds,
		log:       log,
		cfg:       cfg,
		logger:    logger,
		features: features.NewEngine(ds, log,
			features.WithLogger(logger),
			features.WithPreviewRows(cfg.Analysis.PreviewRows)),
		inference: inference.NewEngine(ds,
			inference.WithAlpha(cfg.Analysis.Alpha),
			inference.WithStrictPostHoc(cfg.ANOVA.StrictPostHoc),
			inference.WithLogger(logger)),
		clustering: clustering.NewEngine(ds, log, cfg.Clustering, clustering.WithLogger(logger)),
	}
	logger.Info("session opened",
		zap.String("dataset", ds.Name()),
		zap.Int("rows", ds.RowCount()),
		zap.Int("columns", len(ds.Names())))
	return s
}

func lock[T any](s *Session, fn func() (T, error)) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

func (s *Session) ID() core.SessionID { return s.id }

// ColumnInfo describes one column of the current dataset
type ColumnInfo struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Missing int    `json:"missing"`
}

// Info is a snapshot of the session's dataset
type Info struct {
	ID        core.SessionID `json:"id"`
	CreatedAt core.Timestamp `json:"created_at"`
	Dataset   string         `json:"dataset"`
	Rows      int            `json:"rows"`
	Columns   []ColumnInfo   `json:"columns"`
	Views     dataset.Views  `json:"views"`
	LogSize   int            `json:"log_size"`
}

// Info returns the current columns, typed views and log size
func (s *Session) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	cols := s.ds.Columns()
	info := Info{
		ID:        s.id,
		CreatedAt: s.createdAt,
		Dataset:   s.ds.Name(),
		Rows:      s.ds.RowCount(),
		Columns:   make([]ColumnInfo, len(cols)),
		Views:     s.ds.TypedViews(),
		LogSize:   s.log.Len(),
	}
	for i, c := range cols {
		info.Columns[i] = ColumnInfo{Name: c.Name(), Kind: c.Kind().String(), Missing: c.MissingCount()}
	}
	return info
}

// ColumnExists reports whether name is a current column
func (s *Session) ColumnExists(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ds.ColumnExists(name)
}

// Preview renders the first n rows of the named columns, or of every column
func (s *Session) Preview(names []string, n int) [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(names) == 0 {
		names = s.ds.Names()
	}
	return s.ds.Preview(names, n)
}

// Read runs fn with the dataset while no operation can mutate it. fn must
// not retain the dataset.
func (s *Session) Read(fn func(*dataset.Dataset) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.ds)
}

// Log returns the retained log entries, oldest first
func (s *Session) Log() []oplog.Entry { return s.log.Entries() }

// ExportLog renders the log most recent first
func (s *Session) ExportLog() string { return s.log.Export() }

// ExportLogHTML renders the log as an HTML document fragment
func (s *Session) ExportLogHTML() []byte { return s.log.ExportHTML() }

// Feature derivation

func (s *Session) Combine(p features.CombineParams) (features.Result, error) {
	return lock(s, func() (features.Result, error) { return s.features.Combine(p) })
}

func (s *Session) Dummies(p features.DummyParams) (features.Result, error) {
	return lock(s, func() (features.Result, error) { return s.features.Dummies(p) })
}

func (s *Session) Binarize(p features.BinarizeParams) (features.Result, error) {
	return lock(s, func() (features.Result, error) { return s.features.Binarize(p) })
}

func (s *Session) Filter(p features.FilterParams) (features.Result, error) {
	return lock(s, func() (features.Result, error) { return s.features.Filter(p) })
}

func (s *Session) Transform(p features.TransformParams) (features.Result, error) {
	return lock(s, func() (features.Result, error) { return s.features.Transform(p) })
}

func (s *Session) InvertLikert(p features.LikertParams) (features.Result, error) {
	return lock(s, func() (features.Result, error) { return s.features.InvertLikert(p) })
}

func (s *Session) Interaction(p features.InteractionParams) (features.Result, error) {
	return lock(s, func() (features.Result, error) { return s.features.Interaction(p) })
}

func (s *Session) Discretize(p features.DiscretizeParams) (features.Result, error) {
	return lock(s, func() (features.Result, error) { return s.features.Discretize(p) })
}

func (s *Session) PCA(p features.PCAParams) (features.Result, error) {
	return lock(s, func() (features.Result, error) { return s.features.PCA(p) })
}

func (s *Session) Relabel(p features.RelabelParams) (features.Result, error) {
	return lock(s, func() (features.Result, error) { return s.features.Relabel(p) })
}

func (s *Session) ExtractTemporal(p features.TemporalParams) (features.Result, error) {
	return lock(s, func() (features.Result, error) { return s.features.ExtractTemporal(p) })
}

func (s *Session) RemoveColumns(names ...string) (features.Result, error) {
	return lock(s, func() (features.Result, error) { return s.features.RemoveColumns(names...) })
}

// Statistical testing

func (s *Session) Contingency(row, col string) (stats.ContingencyResult, error) {
	return lock(s, func() (stats.ContingencyResult, error) { return s.inference.Contingency(row, col) })
}

func (s *Session) Frequency(column string) (stats.FrequencyTable, error) {
	return lock(s, func() (stats.FrequencyTable, error) { return s.inference.Frequency(column) })
}

func (s *Session) Correlations(columns ...string) (stats.CorrelationMatrix, error) {
	return lock(s, func() (stats.CorrelationMatrix, error) { return s.inference.Correlations(columns...) })
}

func (s *Session) Partial(x, y, z string) (stats.PartialCorrelationResult, error) {
	return lock(s, func() (stats.PartialCorrelationResult, error) { return s.inference.Partial(x, y, z) })
}

func (s *Session) Grouped(group string, columns ...string) (stats.GroupedCorrelation, error) {
	return lock(s, func() (stats.GroupedCorrelation, error) { return s.inference.Grouped(group, columns...) })
}

func (s *Session) OneSample(column string, mu0 float64) (stats.TTestResult, error) {
	return lock(s, func() (stats.TTestResult, error) { return s.inference.OneSample(column, mu0) })
}

func (s *Session) Independent(value, group string) (stats.TTestResult, error) {
	return lock(s, func() (stats.TTestResult, error) { return s.inference.Independent(value, group) })
}

func (s *Session) Paired(a, b string) (stats.TTestResult, error) {
	return lock(s, func() (stats.TTestResult, error) { return s.inference.Paired(a, b) })
}

func (s *Session) Describe(columns ...string) (inference.Description, error) {
	return lock(s, func() (inference.Description, error) { return s.inference.Describe(columns...) })
}

// ANOVA exposes the session's ANOVA state machine. Its methods run under the
// session lock through the wrappers below.
func (s *Session) ANOVASelect(dependent string, factors ...string) error {
	_, err := lock(s, func() (struct{}, error) { return struct{}{}, s.inference.ANOVA().Select(dependent, factors...) })
	return err
}

func (s *Session) ANOVARun() (stats.ANOVAResult, error) {
	return lock(s, func() (stats.ANOVAResult, error) { return s.inference.ANOVA().Run() })
}

func (s *Session) ANOVAPostHoc(factor string, method stats.PostHocMethod) (stats.PostHocResult, error) {
	return lock(s, func() (stats.PostHocResult, error) { return s.inference.ANOVA().PostHoc(factor, method) })
}

// ANOVAStatus summarizes the ANOVA lifecycle for callers deciding what to offer next
type ANOVAStatus struct {
	State        inference.State       `json:"state"`
	Dependent    string                `json:"dependent"`
	Factors      []string              `json:"factors"`
	Result       *stats.ANOVAResult    `json:"result,omitempty"`
	Significant  []string              `json:"significant"`
	Interactions []string              `json:"interactions"`
	PostHoc      []stats.PostHocResult `json:"posthoc"`
}

func (s *Session) ANOVAStatus() ANOVAStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.inference.ANOVA()
	st := ANOVAStatus{
		State:        a.State(),
		Significant:  a.Significant(),
		Interactions: a.InteractionTerms(),
		PostHoc:      a.PostHocResults(),
	}
	st.Dependent, st.Factors = a.Selection()
	if r, ok := a.Result(); ok {
		st.Result = &r
	}
	return st
}

// Clustering

func (s *Session) ClusterPrepare(columns ...string) (clustering.Preparation, error) {
	return lock(s, func() (clustering.Preparation, error) { return s.clustering.Prepare(columns...) })
}

// ElbowPoint is one (k, inertia) pair of the sweep
type ElbowPoint struct {
	K       int     `json:"k"`
	Inertia float64 `json:"inertia"`
}

// ClusterSweep runs the elbow sweep and collects its curve
func (s *Session) ClusterSweep(ctx context.Context) ([]ElbowPoint, error) {
	return lock(s, func() ([]ElbowPoint, error) {
		seq, err := s.clustering.SweepInertia(ctx)
		if err != nil {
			return nil, err
		}
		return collect(seq), nil
	})
}

func collect(seq iter.Seq2[int, float64]) []ElbowPoint {
	var out []ElbowPoint
	for k, inertia := range seq {
		out = append(out, ElbowPoint{K: k, Inertia: inertia})
	}
	return out
}

func (s *Session) ClusterFit(ctx context.Context, k int) (clustering.Assignment, error) {
	return lock(s, func() (clustering.Assignment, error) { return s.clustering.Fit(ctx, k) })
}

func (s *Session) ClusterProject() ([]clustering.Point, error) {
	return lock(s, func() ([]clustering.Point, error) { return s.clustering.Project2D() })
}

func (s *Session) ClusterMeans() ([]clustering.ClusterMean, error) {
	return lock(s, func() ([]clustering.ClusterMean, error) { return s.clustering.ClusterMeans() })
}

func (s *Session) ClusterPersist(name string) (clustering.Persisted, error) {
	return lock(s, func() (clustering.Persisted, error) { return s.clustering.Persist(name) })
}
