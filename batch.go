package oneinf

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// A Group is one independent set of observations, e.g. one respondent.
type Group struct {
	ID  string
	Obs Observations
}

// GroupResult is the fit of one Group. Err is set when that group's
// optimizer did not converge; Result then holds the last point.
type GroupResult struct {
	ID     string
	Result *FitResult
	Err    error
}

// FitGroups fits every group independently with at most workers fits in
// flight (GOMAXPROCS if workers < 1). Results are in input order.
//
// Non-convergence is recorded per group. Any other error cancels the
// remaining fits and is returned.
func FitGroups(ctx context.Context, groups []Group, opts FitOptions, workers int) ([]GroupResult, error) {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]GroupResult, len(groups))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, grp := range groups {
		g.Go(func() error {
			res, err := Fit(ctx, grp.Obs, opts)
			results[i] = GroupResult{ID: grp.ID, Result: res, Err: err}
			if err != nil && !errors.Is(err, ErrNotConverged) {
				return fmt.Errorf("group %s: %w", grp.ID, err)
			}
			if err != nil {
				logger.Warn("group did not converge", "group", grp.ID, "err", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
