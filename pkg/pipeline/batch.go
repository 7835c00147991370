package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// DefaultBatchLimit bounds concurrent jobs when Batch is given no limit.
const DefaultBatchLimit = 8

// Batch lays out every job concurrently, at most limit at a time, and
// returns results in job order. Jobs that list formats are also rendered.
// The first failing job cancels the rest.
func Batch(ctx context.Context, r *Runner, jobs []Options, limit int) ([]*Result, error) {
	if limit <= 0 {
		limit = DefaultBatchLimit
	}

	results := make([]*Result, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := runJob(ctx, r, job)
			if err != nil {
				return fmt.Errorf("job %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func runJob(ctx context.Context, r *Runner, job Options) (*Result, error) {
	if len(job.Formats) > 0 {
		return r.Execute(ctx, job)
	}
	doc, hit, err := r.LayoutWithCacheInfo(ctx, job)
	if err != nil {
		return nil, err
	}
	return &Result{
		Document:     doc,
		DocumentHash: documentHash(doc),
		Stats:        Stats{Count: doc.Count, Mode: doc.Mode},
		CacheInfo:    CacheInfo{LayoutHit: hit},
	}, nil
}
