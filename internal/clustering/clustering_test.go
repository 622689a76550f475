package clustering

import (
	"context"
	"math"
	"testing"

	"edabench/domain/core"
	"edabench/domain/dataset"
	"edabench/domain/oplog"
	"edabench/internal/config"
	"edabench/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.ClusteringConfig {
	cfg := config.Default().Clustering
	cfg.MaxK = 6
	cfg.NInit = 3
	return cfg
}

func blobs(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := testkit.Blobs(testkit.BlobConfig{
		Centers:    [][]float64{{0, 0}, {8, 8}, {0, 8}},
		PerCluster: 10,
		Spread:     0.5,
		Seed:       7,
	})
	require.NoError(t, err)
	return ds
}

func TestSweepInertiaIsNonIncreasing(t *testing.T) {
	e := NewEngine(blobs(t), oplog.New(), testConfig())
	_, err := e.Prepare("f1", "f2")
	require.NoError(t, err)

	seq, err := e.SweepInertia(context.Background())
	require.NoError(t, err)

	var ks []int
	prev := math.Inf(1)
	for k, inertia := range seq {
		ks = append(ks, k)
		assert.LessOrEqual(t, inertia, prev, "inertia increased at k=%d", k)
		prev = inertia
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, ks)
}

func TestSweepRequiresTwoRows(t *testing.T) {
	ds, err := dataset.New("one", dataset.NewNumeric("x", []float64{1, math.NaN()}))
	require.NoError(t, err)
	e := NewEngine(ds, oplog.New(), testConfig())

	_, err = e.SweepInertia(context.Background())
	assert.ErrorIs(t, err, core.ErrInvalidState)

	_, err = e.Prepare("x")
	require.NoError(t, err)
	_, err = e.SweepInertia(context.Background())
	assert.ErrorIs(t, err, core.ErrInsufficientData)
}

func TestSweepHonoursCancellation(t *testing.T) {
	e := NewEngine(blobs(t), oplog.New(), testConfig())
	_, err := e.Prepare("f1", "f2")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.SweepInertia(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFitRecoversBlobs(t *testing.T) {
	e := NewEngine(blobs(t), oplog.New(), testConfig())
	_, err := e.Prepare("f1", "f2")
	require.NoError(t, err)

	a, err := e.Fit(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 10, 10}, a.Sizes)
	assert.Greater(t, a.Silhouette, 0.7)

	for _, k := range []int{1, 7} {
		_, err = e.Fit(context.Background(), k)
		assert.True(t, core.IsValidationError(err), "k=%d", k)
	}

	means, err := e.ClusterMeans()
	require.NoError(t, err)
	require.Len(t, means, 3)
	for _, m := range means {
		assert.Equal(t, 10, m.Size)
		assert.True(t, nearAny(m.Means, [][]float64{{0, 0}, {8, 8}, {0, 8}}), "mean %v", m.Means)
	}

	pts, err := e.Project2D()
	require.NoError(t, err)
	assert.Len(t, pts, 30)
	assert.GreaterOrEqual(t, pts[0].Cluster, 0)
}

func TestPersistLabels(t *testing.T) {
	ds, err := dataset.New("d",
		dataset.NewNumeric("x", []float64{0, 0.1, math.NaN(), 5, 5.1, 0.2}),
		dataset.NewNumeric("y", []float64{0, 0.2, 1, 5, 5.2, 0.1}),
	)
	require.NoError(t, err)
	log := oplog.New()
	e := NewEngine(ds, log, testConfig())

	_, err = e.Persist("")
	assert.ErrorIs(t, err, core.ErrInvalidState)

	prep, err := e.Prepare("x", "y")
	require.NoError(t, err)
	assert.Equal(t, 1, prep.Dropped)
	_, err = e.Fit(context.Background(), 2)
	require.NoError(t, err)

	res, err := e.Persist("")
	require.NoError(t, err)
	assert.Equal(t, "Cluster_KMeans", res.Column)
	assert.Equal(t, 1, res.Counts["Not_Clustered"])
	assert.Equal(t, 1, log.Len())

	col, err := ds.Column("Cluster_KMeans")
	require.NoError(t, err)
	assert.Equal(t, "Not_Clustered", col.String(2))
	assert.Equal(t, col.String(0), col.String(1))
	assert.NotEqual(t, col.String(0), col.String(3))

	_, err = e.Persist("Cluster_KMeans")
	assert.ErrorIs(t, err, core.ErrNameCollision)
	assert.Equal(t, 1, log.Len())
}

func TestPersistDetectsStaleFeatures(t *testing.T) {
	ds, err := dataset.New("d",
		dataset.NewNumeric("x", []float64{0, 1, 10, 11}),
		dataset.NewNumeric("y", []float64{0, 1, 10, 11}),
	)
	require.NoError(t, err)
	e := NewEngine(ds, oplog.New(), testConfig())
	_, err = e.Prepare("x", "y")
	require.NoError(t, err)
	_, err = e.Fit(context.Background(), 2)
	require.NoError(t, err)

	require.NoError(t, ds.RemoveColumns("y"))
	require.NoError(t, ds.CreateColumn(dataset.NewNumeric("y", []float64{5, 5, 5, 5})))

	_, err = e.Persist("labels")
	assert.ErrorIs(t, err, core.ErrStale)
	assert.False(t, ds.ColumnExists("labels"))
}

func TestPrepareResetsFit(t *testing.T) {
	e := NewEngine(blobs(t), oplog.New(), testConfig())
	_, err := e.Prepare("f1", "f2")
	require.NoError(t, err)
	_, err = e.Fit(context.Background(), 2)
	require.NoError(t, err)

	_, err = e.Prepare("f1")
	require.NoError(t, err)
	_, ok := e.Assignment()
	assert.False(t, ok)

	_, err = e.Project2D()
	assert.True(t, core.IsValidationError(err))

	_, err = e.Prepare("true_cluster")
	assert.ErrorIs(t, err, core.ErrWrongKind)
}

func nearAny(v []float64, centers [][]float64) bool {
	for _, c := range centers {
		if math.Hypot(v[0]-c[0], v[1]-c[1]) < 1 {
			return true
		}
	}
	return false
}
