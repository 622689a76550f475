package numeric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	s, err := Summarize([]float64{10, 12, 11, 13, 12, math.NaN()})
	require.NoError(t, err)
	assert.Equal(t, 5, s.Count)
	assert.InDelta(t, 11.6, s.Mean, 1e-12)
	assert.InDelta(t, 1.140175425, s.Std, 1e-8)
	assert.Equal(t, 10.0, s.Min)
	assert.Equal(t, 13.0, s.Max)
	assert.Equal(t, 12.0, s.Median)
	assert.Equal(t, 11.0, s.Q1)
	assert.Equal(t, 12.0, s.Q3)

	_, err = Summarize([]float64{math.NaN()})
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestQuantileType7(t *testing.T) {
	data := []float64{1, 2, 3, 4}
	assert.InDelta(t, 1.75, Quantile(data, 0.25), 1e-12)
	assert.InDelta(t, 2.5, Quantile(data, 0.5), 1e-12)
	assert.Equal(t, []float64{1, 4}, Quantiles(data, []float64{0, 1}))
}

func TestSkewKurtosis(t *testing.T) {
	data := []float64{1, 2, 3, 4, 10}
	// pandas: Series([1,2,3,4,10]).skew() / .kurt()
	assert.InDelta(t, 1.697056, Skewness(data), 1e-5)
	assert.InDelta(t, 3.152, ExcessKurtosis(data), 1e-5)
	assert.Equal(t, 0.0, Skewness([]float64{2, 2, 2}))
}

func TestRanksAverageTies(t *testing.T) {
	assert.Equal(t, []float64{1, 2.5, 2.5, 4}, Ranks([]float64{1, 5, 5, 9}))
}

func TestLevene(t *testing.T) {
	// scipy.stats.levene(a, b, center='median')
	a := []float64{8.88, 9.12, 9.04, 8.98, 9.00, 9.08, 9.01, 8.85, 9.06, 8.99}
	b := []float64{8.88, 8.95, 9.29, 9.44, 9.15, 9.58, 8.36, 9.18, 8.67, 9.05}
	c := []float64{8.95, 9.12, 8.95, 8.85, 9.03, 8.84, 9.07, 8.98, 8.86, 8.98}
	res, err := Levene([][]float64{a, b, c})
	require.NoError(t, err)
	assert.InDelta(t, 7.584952, res.W, 1e-5)
	assert.InDelta(t, 0.002431, res.PValue, 1e-5)
	assert.Equal(t, 2, res.DF1)
	assert.Equal(t, 27, res.DF2)

	_, err = Levene([][]float64{a})
	assert.ErrorIs(t, err, ErrTooFewGroups)
}

func TestStudentizedRange(t *testing.T) {
	// critical value of the studentized range for k=3, df=10
	assert.InDelta(t, 0.950052, StudentizedRangeCDF(3.877676, 3, 10), 1e-5)
	assert.InDelta(t, 3.877676, StudentizedRangeQuantile(0.95, 3, 10), 1e-2)
	assert.InDelta(t, 0.505440, StudentizedRangeSF(2, 4, 20), 1e-5)
	assert.True(t, math.IsNaN(StudentizedRangeCDF(1, 3, 1)))
	assert.Equal(t, 0.0, StudentizedRangeCDF(0, 3, 10))
}

func TestFitRSSAndNestedF(t *testing.T) {
	y := []float64{1, 2, 3, 4, 5, 7}
	intercept := [][]float64{{1}, {1}, {1}, {1}, {1}, {1}}
	line := [][]float64{{1, 0}, {1, 1}, {1, 2}, {1, 3}, {1, 4}, {1, 5}}

	reduced, err := FitRSS(intercept, y)
	require.NoError(t, err)
	full, err := FitRSS(line, y)
	require.NoError(t, err)
	assert.Equal(t, 1, reduced.Rank)
	assert.Equal(t, 2, full.Rank)
	// total SS about the mean
	assert.InDelta(t, 23.333333, reduced.RSS, 1e-6)
	assert.True(t, full.RSS < reduced.RSS)

	ss, df, f, p := NestedF(reduced, full, full, len(y))
	assert.InDelta(t, reduced.RSS-full.RSS, ss, 1e-9)
	assert.Equal(t, 1, df)
	assert.True(t, f > 0)
	assert.True(t, p < 0.01)
}

func TestFitRSSRankDeficient(t *testing.T) {
	// second column duplicates the first
	x := [][]float64{{1, 1}, {1, 1}, {1, 1}}
	res, err := FitRSS(x, []float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Rank)
	assert.InDelta(t, 2.0, res.RSS, 1e-9)
}

func TestCorrelations(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{2, 4, 6, 8, 11}
	p := Pearson(x, y)
	assert.InDelta(t, 0.995893, p.R, 1e-5)
	assert.True(t, p.PValue < 0.001)

	s := Spearman(x, y)
	assert.InDelta(t, 1.0, s.R, 1e-12)

	short := Pearson([]float64{1, 2}, []float64{1, 2})
	assert.True(t, math.IsNaN(short.R))

	xs, ys := PairwiseComplete([]float64{1, math.NaN(), 3}, []float64{1, 2, math.NaN()})
	assert.Equal(t, []float64{1}, xs)
	assert.Equal(t, []float64{1}, ys)
}

func TestPartialCorrelationRemovesConfounder(t *testing.T) {
	z := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	x := []float64{1.1, 2.0, 3.2, 3.9, 5.1, 6.0, 6.8, 8.1}
	y := []float64{2.0, 4.1, 5.9, 8.2, 9.9, 12.1, 14.0, 15.8}
	total := Pearson(x, y)
	partial := PartialCorrelation(x, y, z)
	assert.True(t, total.R > 0.99)
	assert.True(t, math.Abs(partial.R) < total.R)
	assert.Equal(t, 8, partial.N)
}

func TestScaler(t *testing.T) {
	rows := [][]float64{{1, 5}, {3, 5}}
	scaled, s, err := FitTransform(rows)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 5}, s.Means)
	assert.Equal(t, []float64{1, 1}, s.Scales, "zero variance column keeps unit scale")
	assert.Equal(t, [][]float64{{-1, 0}, {1, 0}}, scaled)
}

func TestPCA(t *testing.T) {
	rows := [][]float64{{1, 2}, {2, 4.1}, {3, 5.9}, {4, 8.2}, {5, 9.8}}
	scaled, _, err := FitTransform(rows)
	require.NoError(t, err)

	res, err := PCA(scaled, 2)
	require.NoError(t, err)
	require.Len(t, res.Scores, 5)
	assert.True(t, res.ExplainedVariance[0] > 0.99)
	assert.InDelta(t, 1.0, res.Cumulative[1], 1e-9)

	_, err = PCA(scaled, 3)
	assert.ErrorIs(t, err, ErrDimension)
}

func blobs() [][]float64 {
	return [][]float64{
		{0, 0}, {0.1, 0.2}, {0.2, 0.1}, {-0.1, 0.0},
		{5, 5}, {5.1, 5.2}, {4.9, 5.1}, {5.2, 4.8},
		{10, 0}, {10.1, 0.2}, {9.9, -0.1}, {10.2, 0.1},
	}
}

func TestKMeansSeparatesBlobs(t *testing.T) {
	rows := blobs()
	res, err := KMeans(rows, KMeansOptions{K: 3, NInit: 5, MaxIter: 100, Seed: 42})
	require.NoError(t, err)
	assert.Equal(t, res.Labels[0], res.Labels[3])
	assert.Equal(t, res.Labels[4], res.Labels[7])
	assert.NotEqual(t, res.Labels[0], res.Labels[4])
	assert.NotEqual(t, res.Labels[4], res.Labels[8])
	assert.True(t, res.Inertia < 1)

	sil := Silhouette(rows, res.Labels, 3)
	assert.True(t, sil > 0.9)

	again, err := KMeans(rows, KMeansOptions{K: 3, NInit: 5, MaxIter: 100, Seed: 42})
	require.NoError(t, err)
	assert.Equal(t, res.Labels, again.Labels, "fixed seed must be deterministic")
}

func TestWarmStartNeverIncreasesInertia(t *testing.T) {
	rows := blobs()
	prev, err := KMeans(rows, KMeansOptions{K: 1, NInit: 1, Seed: 1})
	require.NoError(t, err)
	for k := 2; k <= 6; k++ {
		next := WarmStart(rows, prev, 100, 1e-4)
		assert.LessOrEqual(t, next.Inertia, prev.Inertia+1e-9, "k=%d", k)
		assert.Len(t, next.Centroids, k)
		prev = next
	}
}

func TestKMeansErrors(t *testing.T) {
	_, err := KMeans([][]float64{{1}}, KMeansOptions{K: 2})
	assert.ErrorIs(t, err, ErrTooFewObservations)
	assert.True(t, math.IsNaN(Silhouette([][]float64{{1}, {2}}, []int{0, 0}, 1)))
}
