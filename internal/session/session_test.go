package session

import (
	"context"
	"math"
	"sync"
	"testing"

	"edabench/domain/core"
	"edabench/domain/dataset"
	"edabench/domain/stats"
	"edabench/internal/config"
	"edabench/internal/features"
	"edabench/internal/inference"
	"edabench/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T, cols ...*dataset.Column) *Session {
	t.Helper()
	ds, err := dataset.New("survey", cols...)
	require.NoError(t, err)
	return New(ds, nil, nil)
}

func TestCombineRecordsOneEntry(t *testing.T) {
	s := newSession(t, dataset.NewNumeric("age", []float64{20, 25, math.NaN(), 40}))

	res, err := s.Combine(features.CombineParams{Name: "age_sum", Columns: []string{"age"}, Method: features.CombineSum})
	require.NoError(t, err)
	assert.Equal(t, []string{"age_sum"}, res.Columns)

	info := s.Info()
	assert.Equal(t, 4, info.Rows)
	assert.Equal(t, 1, info.LogSize)
	require.Len(t, info.Columns, 2)
	assert.Equal(t, "age_sum", info.Columns[1].Name)
	assert.Equal(t, 1, info.Columns[1].Missing)
	assert.Contains(t, info.Views.Numeric, "age_sum")

	entries := s.Log()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Description, "age_sum")
	assert.Contains(t, s.ExportLog(), "Combined [age] by sum into 'age_sum'")
}

func TestFailedOperationLeavesSessionUntouched(t *testing.T) {
	s := newSession(t, dataset.NewNumeric("score", []float64{60, 70, 80}))

	_, err := s.Binarize(features.BinarizeParams{
		Name:      "score",
		Condition: dataset.Condition{Column: "score", Op: dataset.OpGe, Value: "70"},
	})
	assert.ErrorIs(t, err, core.ErrNameCollision)
	assert.Equal(t, 0, s.Info().LogSize)
	assert.Equal(t, []string{"score"}, columnNames(s.Info()))
}

func columnNames(info Info) []string {
	out := make([]string, len(info.Columns))
	for i, c := range info.Columns {
		out[i] = c.Name
	}
	return out
}

func TestAnalysesDoNotLog(t *testing.T) {
	s := newSession(t,
		dataset.NewNumeric("x", []float64{10, 12, 11, 13, 12}),
		dataset.NewNumeric("y", []float64{1, 2, 3, 4, 6}),
	)

	res, err := s.OneSample("x", 10)
	require.NoError(t, err)
	assert.InDelta(t, 3.137858, res.T, 1e-5)

	_, err = s.Correlations("x", "y")
	require.NoError(t, err)
	_, err = s.Describe("x")
	require.NoError(t, err)

	assert.Equal(t, 0, s.Info().LogSize)
}

func TestANOVALifecycleThroughSession(t *testing.T) {
	y := []float64{1, 2, 3, 2, 2, 9, 10, 11, 10, 10, 5, 6, 7, 6, 6}
	g := []string{"a", "a", "a", "a", "a", "b", "b", "b", "b", "b", "c", "c", "c", "c", "c"}
	s := newSession(t, dataset.NewNumeric("y", y), dataset.NewCategorical("g", g, nil))

	_, err := s.ANOVAPostHoc("g", stats.PostHocTukey)
	assert.ErrorIs(t, err, core.ErrInvalidState)

	require.NoError(t, s.ANOVASelect("y", "g"))
	res, err := s.ANOVARun()
	require.NoError(t, err)
	assert.Equal(t, stats.PostHocTukey, res.Recommended)

	status := s.ANOVAStatus()
	assert.Equal(t, inference.StatePostHocAvailable, status.State)
	assert.Equal(t, []string{"g"}, status.Significant)
	require.NotNil(t, status.Result)

	ph, err := s.ANOVAPostHoc("g", stats.PostHocTukey)
	require.NoError(t, err)
	assert.Len(t, ph.Comparisons, 3)
	assert.Equal(t, inference.StatePostHocDone, s.ANOVAStatus().State)
}

func TestClusteringThroughSession(t *testing.T) {
	ds, err := testkit.Blobs(testkit.BlobConfig{
		Centers:    [][]float64{{0, 0}, {10, 10}, {0, 10}},
		PerCluster: 10,
		Spread:     0.5,
		Seed:       7,
	})
	require.NoError(t, err)
	cfg := config.Default()
	cfg.Clustering.MaxK = 5
	s := New(ds, cfg, nil)

	prep, err := s.ClusterPrepare("f1", "f2")
	require.NoError(t, err)
	assert.Equal(t, 30, prep.Rows)

	curve, err := s.ClusterSweep(context.Background())
	require.NoError(t, err)
	require.Len(t, curve, 5)
	for i := 1; i < len(curve); i++ {
		assert.LessOrEqual(t, curve[i].Inertia, curve[i-1].Inertia)
	}

	fit, err := s.ClusterFit(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 3, fit.K)

	persisted, err := s.ClusterPersist("")
	require.NoError(t, err)
	assert.Equal(t, cfg.Clustering.Column, persisted.Column)
	assert.True(t, s.ColumnExists(cfg.Clustering.Column))
	assert.Equal(t, 1, s.Info().LogSize)
}

func TestConcurrentDerivationsSerialize(t *testing.T) {
	s := newSession(t, dataset.NewNumeric("v", []float64{1, 4, 9, 16}))

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Transform(features.TransformParams{
				Name:   "v_sqrt_" + string(rune('a'+i)),
				Column: "v",
				Kind:   features.TransformSqrt,
			})
		}()
	}
	wg.Wait()

	assert.Len(t, s.Info().Columns, 9)
	assert.Equal(t, 8, s.Info().LogSize)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(config.Default(), nil)
	ds, err := dataset.New("a", dataset.NewNumeric("x", []float64{1, 2}))
	require.NoError(t, err)

	s := r.Open(ds)
	got, err := r.Get(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Len(t, r.List(), 1)

	require.NoError(t, r.Close(s.ID()))
	_, err = r.Get(s.ID())
	assert.True(t, core.IsNotFoundError(err))
	assert.True(t, core.IsNotFoundError(r.Close(s.ID())))
}
