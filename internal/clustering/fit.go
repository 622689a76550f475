package clustering

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"edabench/domain/core"
	"edabench/domain/dataset"
	"edabench/internal/numeric"

	"go.uber.org/zap"
)

// Fit partitions the prepared rows into k clusters. k must lie between 2 and MaxK.
func (e *Engine) Fit(ctx context.Context, k int) (Assignment, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requirePrepared(); err != nil {
		return Assignment{}, e.fail("fit", err)
	}
	if maxK := e.maxK(); k < 2 || k > maxK {
		return Assignment{}, e.fail("fit", core.NewValidationError("k",
			fmt.Sprintf("must be between 2 and %d for %d prepared rows", max(maxK, 2), e.prep.Rows)))
	}
	if err := ctx.Err(); err != nil {
		return Assignment{}, e.fail("fit", err)
	}

	res, err := numeric.KMeans(e.scaled, e.kmeansOptions(k))
	if err != nil {
		return Assignment{}, e.fail("fit", core.NewComputationError("k-means", err))
	}
	sizes := make([]int, k)
	for _, l := range res.Labels {
		sizes[l]++
	}
	a := &Assignment{
		K:          k,
		Labels:     res.Labels,
		Sizes:      sizes,
		Inertia:    res.Inertia,
		Silhouette: numeric.Silhouette(e.scaled, res.Labels, k),
		Iterations: res.Iter,
	}
	e.fit = a
	e.logger.Info("k-means fitted",
		zap.Int("k", k),
		zap.Float64("inertia", a.Inertia),
		zap.Float64("silhouette", a.Silhouette))
	return *a, nil
}

// Point is one prepared row projected onto the first two principal components
type Point struct {
	Row     int     `json:"row"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Cluster int     `json:"cluster"` // -1 before a fit
}

// Project2D projects the standardized features onto two principal components
func (e *Engine) Project2D() ([]Point, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requirePrepared(); err != nil {
		return nil, e.fail("projection", err)
	}
	if len(e.prep.Features) < 2 {
		return nil, e.fail("projection", core.NewValidationError("features", "a 2-D projection needs at least two features"))
	}
	pca, err := numeric.PCA(e.scaled, 2)
	if err != nil {
		return nil, e.fail("projection", core.NewComputationError("pca", err))
	}
	pts := make([]Point, len(e.rows))
	for i, row := range e.rows {
		pts[i] = Point{Row: row, X: pca.Scores[i][0], Y: pca.Scores[i][1], Cluster: -1}
		if e.fit != nil {
			pts[i].Cluster = e.fit.Labels[i]
		}
	}
	return pts, nil
}

// ClusterMean is the centroid of one cluster in original units
type ClusterMean struct {
	Cluster int       `json:"cluster"`
	Size    int       `json:"size"`
	Means   []float64 `json:"means"` // aligned with the prepared features
}

// ClusterMeans averages the unscaled features of each cluster
func (e *Engine) ClusterMeans() ([]ClusterMean, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.fit == nil {
		return nil, e.fail("cluster means", errInvalidNoFit())
	}
	p := len(e.prep.Features)
	out := make([]ClusterMean, e.fit.K)
	for c := range out {
		out[c] = ClusterMean{Cluster: c, Means: make([]float64, p)}
	}
	for i, l := range e.fit.Labels {
		out[l].Size++
		for j, v := range e.raw[i] {
			out[l].Means[j] += v
		}
	}
	for c := range out {
		for j := range out[c].Means {
			if out[c].Size == 0 {
				out[c].Means[j] = math.NaN()
				continue
			}
			out[c].Means[j] /= float64(out[c].Size)
		}
	}
	return out, nil
}

// Persisted reports the column written by Persist
type Persisted struct {
	Column string         `json:"column"`
	Counts map[string]int `json:"counts"`
}

// Persist writes the current labels to a new categorical column aligned to
// every dataset row; rows dropped during preparation get the unclustered
// label. It fails if the name is taken or if the features changed after
// preparation.
func (e *Engine) Persist(name string) (Persisted, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.fit == nil {
		return Persisted{}, e.fail("persist", errInvalidNoFit())
	}
	if name == "" {
		name = e.cfg.Column
	}
	if e.ds.ColumnExists(name) {
		return Persisted{}, e.fail("persist", core.NewCollisionError(name))
	}
	digest, err := e.ds.Fingerprint(e.prep.Features...)
	if err != nil {
		return Persisted{}, e.fail("persist", err)
	}
	if digest != e.prep.Digest {
		return Persisted{}, e.fail("persist", fmt.Errorf("%w: features %s were modified after preparation",
			core.ErrStale, describeFeatures(e.prep.Features)))
	}

	values := make([]string, e.ds.RowCount())
	for i := range values {
		values[i] = e.cfg.UnclusteredLabel
	}
	for r, row := range e.rows {
		values[row] = strconv.Itoa(e.fit.Labels[r])
	}
	levels := make([]string, 0, e.fit.K+1)
	for c := 0; c < e.fit.K; c++ {
		levels = append(levels, strconv.Itoa(c))
	}
	if e.prep.Dropped > 0 {
		levels = append(levels, e.cfg.UnclusteredLabel)
	}
	counts := make(map[string]int, len(levels))
	for _, v := range values {
		counts[v]++
	}

	col := dataset.NewCategorical(name, values, nil).WithLevels(levels)
	if err := e.ds.CreateColumn(col); err != nil {
		return Persisted{}, e.fail("persist", err)
	}
	e.log.Record(fmt.Sprintf("Persisted K-Means labels (k=%d) on %s into '%s'",
		e.fit.K, describeFeatures(e.prep.Features), name))
	e.logger.Info("cluster labels persisted", zap.String("column", name), zap.Int("k", e.fit.K))
	return Persisted{Column: name, Counts: counts}, nil
}
