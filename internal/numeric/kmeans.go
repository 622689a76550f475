package numeric

import (
	"math"
	"math/rand"
)

// KMeansOptions controls a K-Means fit
type KMeansOptions struct {
	K       int
	NInit   int
	MaxIter int
	Seed    int64
	Tol     float64
}

// KMeansResult is a fitted partition
type KMeansResult struct {
	Labels    []int
	Centroids [][]float64
	Inertia   float64
	Iter      int
}

// KMeans runs NInit k-means++ initialisations followed by Lloyd iterations and
// keeps the lowest-inertia solution. Results are deterministic for a seed.
func KMeans(rows [][]float64, opts KMeansOptions) (KMeansResult, error) {
	if opts.K < 1 {
		return KMeansResult{}, ErrDimension
	}
	if len(rows) < opts.K {
		return KMeansResult{}, ErrTooFewObservations
	}
	if opts.NInit < 1 {
		opts.NInit = 1
	}
	if opts.MaxIter < 1 {
		opts.MaxIter = 300
	}
	if opts.Tol == 0 {
		opts.Tol = 1e-4
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	var best KMeansResult
	best.Inertia = math.Inf(1)
	for run := 0; run < opts.NInit; run++ {
		init := seedPlusPlus(rows, opts.K, rng)
		res := Lloyd(rows, init, opts.MaxIter, opts.Tol)
		if res.Inertia < best.Inertia {
			best = res
		}
	}
	return best, nil
}

// WarmStart extends a k-1 solution by one centroid placed on the point
// farthest from its current centroid, then refines with Lloyd iterations.
// The result's inertia never exceeds prev.Inertia.
func WarmStart(rows [][]float64, prev KMeansResult, maxIter int, tol float64) KMeansResult {
	far, farDist := 0, -1.0
	for i, r := range rows {
		if d := sqDist(r, prev.Centroids[prev.Labels[i]]); d > farDist {
			far, farDist = i, d
		}
	}
	init := make([][]float64, 0, len(prev.Centroids)+1)
	for _, c := range prev.Centroids {
		init = append(init, append([]float64(nil), c...))
	}
	init = append(init, append([]float64(nil), rows[far]...))
	return Lloyd(rows, init, maxIter, tol)
}

func seedPlusPlus(rows [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, append([]float64(nil), rows[rng.Intn(len(rows))]...))

	dist := make([]float64, len(rows))
	for i, r := range rows {
		dist[i] = sqDist(r, centroids[0])
	}
	for len(centroids) < k {
		var total float64
		for _, d := range dist {
			total += d
		}
		next := 0
		if total == 0 {
			next = rng.Intn(len(rows))
		} else {
			target := rng.Float64() * total
			for i, d := range dist {
				target -= d
				if target <= 0 {
					next = i
					break
				}
				next = i
			}
		}
		c := append([]float64(nil), rows[next]...)
		centroids = append(centroids, c)
		for i, r := range rows {
			if d := sqDist(r, c); d < dist[i] {
				dist[i] = d
			}
		}
	}
	return centroids
}

// Lloyd refines centroids until assignments settle or movement drops below tol
func Lloyd(rows [][]float64, centroids [][]float64, maxIter int, tol float64) KMeansResult {
	k := len(centroids)
	p := len(rows[0])
	labels := make([]int, len(rows))
	iter := 0

	for iter = 1; iter <= maxIter; iter++ {
		assign(rows, centroids, labels)

		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, p)
		}
		for i, r := range rows {
			counts[labels[i]]++
			for j, v := range r {
				sums[labels[i]][j] += v
			}
		}

		for c := 0; c < k; c++ {
			if counts[c] > 0 {
				continue
			}
			// empty cluster: take the point worst served by its centroid
			far, farDist := -1, -1.0
			for i, r := range rows {
				if counts[labels[i]] < 2 {
					continue
				}
				if d := sqDist(r, centroids[labels[i]]); d > farDist {
					far, farDist = i, d
				}
			}
			if far < 0 {
				continue
			}
			old := labels[far]
			counts[old]--
			for j, v := range rows[far] {
				sums[old][j] -= v
			}
			labels[far] = c
			counts[c] = 1
			copy(sums[c], rows[far])
		}

		shift := 0.0
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				continue
			}
			for j := range sums[c] {
				v := sums[c][j] / float64(counts[c])
				d := v - centroids[c][j]
				shift += d * d
				centroids[c][j] = v
			}
		}
		if shift <= tol*tol {
			break
		}
	}
	if iter > maxIter {
		iter = maxIter
	}

	assign(rows, centroids, labels)
	return KMeansResult{
		Labels:    labels,
		Centroids: centroids,
		Inertia:   Inertia(rows, centroids, labels),
		Iter:      iter,
	}
}

func assign(rows, centroids [][]float64, labels []int) {
	for i, r := range rows {
		best, bestDist := 0, math.Inf(1)
		for c, ctr := range centroids {
			if d := sqDist(r, ctr); d < bestDist {
				best, bestDist = c, d
			}
		}
		labels[i] = best
	}
}

// Inertia is the sum of squared distances from each row to its centroid
func Inertia(rows, centroids [][]float64, labels []int) float64 {
	var s float64
	for i, r := range rows {
		s += sqDist(r, centroids[labels[i]])
	}
	return s
}

// Silhouette is the mean silhouette coefficient; clusters of size one score 0
func Silhouette(rows [][]float64, labels []int, k int) float64 {
	n := len(rows)
	if k < 2 || n < 2 {
		return math.NaN()
	}
	sizes := make([]int, k)
	for _, l := range labels {
		sizes[l]++
	}
	used := 0
	for _, s := range sizes {
		if s > 0 {
			used++
		}
	}
	if used < 2 || used >= n {
		return math.NaN()
	}

	var total float64
	sums := make([]float64, k)
	for i := range rows {
		for c := range sums {
			sums[c] = 0
		}
		for j := range rows {
			if i != j {
				sums[labels[j]] += math.Sqrt(sqDist(rows[i], rows[j]))
			}
		}
		own := labels[i]
		if sizes[own] <= 1 {
			continue
		}
		a := sums[own] / float64(sizes[own]-1)
		b := math.Inf(1)
		for c := 0; c < k; c++ {
			if c == own || sizes[c] == 0 {
				continue
			}
			if m := sums[c] / float64(sizes[c]); m < b {
				b = m
			}
		}
		if den := math.Max(a, b); den > 0 {
			total += (b - a) / den
		}
	}
	return total / float64(n)
}

func sqDist(a, b []float64) float64 {
	var s float64
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}
