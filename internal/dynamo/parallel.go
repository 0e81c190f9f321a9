package dynamo

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Job propagates one independent worldline.
type Job func(ctx context.Context, idx int) (*Result, error)

type Ensemble struct {
	numRuns int
	limit   int
}

// NewEnsemble runs numRuns jobs with at most limit in flight. A limit of 0
// uses GOMAXPROCS.
func NewEnsemble(numRuns, limit int) *Ensemble {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	return &Ensemble{numRuns: numRuns, limit: limit}
}

func (e *Ensemble) Run(ctx context.Context, job Job) ([]*Result, error) {
	results := make([]*Result, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.limit)
	for i := 0; i < e.numRuns; i++ {
		idx := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return ErrContextCanceled
			}
			res, err := job(ctx, idx)
			if err != nil {
				return err
			}
			results[idx] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
