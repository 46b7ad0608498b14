// Package pool provides a small fan-out helper for embarrassingly
// parallel batch work.
package pool

import (
	"context"
	"runtime"
	"sync"
)

// Map runs fn over inputs with a fixed number of worker goroutines and
// collects results into a pre-sized, index-addressed slice, so output
// order matches input order regardless of completion order. Workers
// share nothing but the read-only inputs; each writes only its own
// output slot. The first error cancels outstanding work and fails the
// whole batch. workers <= 0 means one worker per available core.
func Map[I, O any](ctx context.Context, workers int, inputs []I, fn func(ctx context.Context, idx int, in I) (O, error)) ([]O, error) {
	if len(inputs) == 0 {
		return []O{}, nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(inputs) {
		workers = len(inputs)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]O, len(inputs))
	jobs := make(chan int)

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				out, err := fn(ctx, idx, inputs[idx])
				if err != nil {
					once.Do(func() {
						firstErr = err
						cancel()
					})
					return
				}
				results[idx] = out
			}
		}()
	}

feed:
	for idx := range inputs {
		select {
		case jobs <- idx:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
