package clustering

import (
	"context"
	"fmt"
	"iter"

	"edabench/domain/core"
	"edabench/internal/numeric"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// SweepInertia fits k = 1..MaxK and returns the inertia curve for the elbow
// method. Independent fits run concurrently on a bounded pool; a sequential
// pass then warm-starts every k from the k-1 solution so the curve never
// increases.
func (e *Engine) SweepInertia(ctx context.Context) (iter.Seq2[int, float64], error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requirePrepared(); err != nil {
		return nil, e.fail("sweep", err)
	}
	maxK := e.maxK()
	if maxK < 1 {
		return nil, e.fail("sweep", core.NewInsufficientDataError(
			fmt.Sprintf("%d prepared row(s); at least 2 are required", e.prep.Rows)))
	}

	fresh, err := e.freshFits(ctx, maxK)
	if err != nil {
		return nil, e.fail("sweep", err)
	}

	inertia := make([]float64, maxK+1)
	best := fresh[1]
	inertia[1] = best.Inertia
	for k := 2; k <= maxK; k++ {
		if err := ctx.Err(); err != nil {
			return nil, e.fail("sweep", err)
		}
		cand := fresh[k]
		if warm := numeric.WarmStart(e.scaled, best, e.cfg.MaxIter, convergenceTol); warm.Inertia < cand.Inertia {
			cand = warm
		}
		best = cand
		inertia[k] = min(cand.Inertia, inertia[k-1])
	}

	e.logger.Info("inertia sweep finished", zap.Int("max_k", maxK))
	return func(yield func(int, float64) bool) {
		for k := 1; k <= maxK; k++ {
			if !yield(k, inertia[k]) {
				return
			}
		}
	}, nil
}

func (e *Engine) freshFits(ctx context.Context, maxK int) ([]numeric.KMeansResult, error) {
	fits := make([]numeric.KMeansResult, maxK+1)
	sem := semaphore.NewWeighted(int64(e.cfg.Workers))
	g, gctx := errgroup.WithContext(ctx)
	for k := 1; k <= maxK; k++ {
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := numeric.KMeans(e.scaled, e.kmeansOptions(k))
			if err != nil {
				return core.NewComputationError(fmt.Sprintf("k-means k=%d", k), err)
			}
			fits[k] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return fits, nil
}

func (e *Engine) kmeansOptions(k int) numeric.KMeansOptions {
	return numeric.KMeansOptions{
		K:       k,
		NInit:   e.cfg.NInit,
		MaxIter: e.cfg.MaxIter,
		Seed:    e.cfg.Seed,
		Tol:     convergenceTol,
	}
}
