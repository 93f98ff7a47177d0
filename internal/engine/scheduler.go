package engine

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Scheduler runs independent tasks on a bounded pool of goroutines.
type Scheduler struct {
	concurrency int
}

func NewScheduler(concurrency int) (*Scheduler, error) {
	if concurrency <= 0 {
		return nil, fmt.Errorf("concurrency must be >= 1, got %d", concurrency)
	}
	return &Scheduler{concurrency: concurrency}, nil
}

// Each calls task for every i in [0, n) with at most s.concurrency calls in
// flight, and returns once all started calls have returned (join barrier).
//
// Semantics:
//   - The first task error cancels the context handed to the remaining tasks
//     and no new task is started; that error is returned.
//   - On cancellation of ctx, scheduling stops promptly and ctx.Err() is
//     returned.
//   - Tasks must only share read-only state or synchronize themselves.
func (s *Scheduler) Each(ctx context.Context, n int, task func(ctx context.Context, i int) error) error {
	if ctx == nil {
		return errors.New("context is nil")
	}
	if s == nil {
		return errors.New("scheduler is nil")
	}
	if task == nil {
		return errors.New("task is nil")
	}

	g, runCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i := range n {
		if runCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := runCtx.Err(); err != nil {
				return err
			}
			return task(runCtx, i)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
