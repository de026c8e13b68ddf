package utils

import (
	"context"
	"fmt"
	"sync"
)

// RunPool runs fn over every item with at most concurrency goroutines in
// flight. Each worker drains a shared queue until it is empty, so completion
// order is unspecified. A single item's error or panic never aborts the
// others; the returned slice holds one entry per item, nil on success.
//
// Cancelling ctx stops workers from pulling new items; items never started
// are reported with the context's error.
func RunPool[T any](ctx context.Context, items []T, concurrency int, fn func(ctx context.Context, item T) error) []error {
	errs := make([]error, len(items))
	if len(items) == 0 {
		return errs
	}

	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > len(items) {
		concurrency = len(items)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				errs[i] = runOne(ctx, items[i], fn)
			}
		}()
	}

	for i := range items {
		if ctx.Err() != nil {
			errs[i] = ctx.Err()
			continue
		}
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return errs
}

func runOne[T any](ctx context.Context, item T, fn func(ctx context.Context, item T) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx, item)
}
