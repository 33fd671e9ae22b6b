// Package parallel runs independent propagation jobs concurrently.
//
// The engine itself is single-threaded: a cp.Store and everything built on
// it belong to one goroutine. Parallelism therefore happens one level up,
// with one store per job and a bounded number of jobs in flight.
package parallel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// WorkerPool runs tasks on at most maxWorkers goroutines. The first task to
// return an error cancels the context handed to the others.
type WorkerPool struct {
	maxWorkers int
	group      *errgroup.Group
	ctx        context.Context
}

// NewWorkerPool creates a pool bound to ctx. If maxWorkers is 0 or
// negative, it defaults to the number of CPU cores.
func NewWorkerPool(ctx context.Context, maxWorkers int) *WorkerPool {
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)
	return &WorkerPool{maxWorkers: maxWorkers, group: g, ctx: gctx}
}

// Workers returns the concurrency limit.
func (wp *WorkerPool) Workers() int { return wp.maxWorkers }

// Submit starts task, blocking while maxWorkers tasks are running. Once the
// pool's context is done no task is started and its error is returned.
func (wp *WorkerPool) Submit(task func(ctx context.Context) error) error {
	if err := wp.ctx.Err(); err != nil {
		return err
	}
	wp.group.Go(func() error { return task(wp.ctx) })
	return nil
}

// Wait blocks until every submitted task has returned and reports the
// first error.
func (wp *WorkerPool) Wait() error {
	return wp.group.Wait()
}
