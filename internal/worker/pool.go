// Package worker provides the data-parallel fan-out used by the
// inclusion and typing stages.
package worker

import (
	"context"
	"runtime"
	"sync"
)

// ProgressFunc is called after each job completes.
type ProgressFunc func(completed, total, failed int)

// Config configures the worker pool.
type Config struct {
	Workers    int
	OnProgress ProgressFunc
}

// Pool fans index-addressed jobs out over a fixed set of workers. Each
// job owns its slot of whatever result vector the caller maintains, so
// no locking is needed on the result side.
type Pool struct {
	workers    int
	onProgress ProgressFunc
}

// New creates a worker pool. A non-positive worker count defaults to
// the platform parallelism.
func New(cfg Config) *Pool {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{
		workers:    workers,
		onProgress: cfg.OnProgress,
	}
}

// RunIndexed runs fn for every index in [0, n). It blocks until all
// jobs have finished and returns the per-index errors (nil entries for
// successful jobs). A cancelled context stops feeding new jobs; jobs
// already started run to completion.
func (p *Pool) RunIndexed(ctx context.Context, n int, fn func(i int) error) []error {
	if n == 0 {
		return nil
	}

	jobCh := make(chan int, p.workers)
	errs := make([]error, n)

	var (
		completed int
		failed    int
		mu        sync.Mutex
	)

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobCh {
				err := fn(i)
				errs[i] = err

				mu.Lock()
				completed++
				if err != nil {
					failed++
				}
				c, f := completed, failed
				mu.Unlock()

				if p.onProgress != nil {
					p.onProgress(c, n, f)
				}
			}
		}()
	}

feed:
	for i := 0; i < n; i++ {
		select {
		case jobCh <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobCh)

	wg.Wait()
	return errs
}
