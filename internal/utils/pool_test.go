package utils

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunPoolBoundedConcurrency(t *testing.T) {
	items := make([]int, 20)
	for i := range items {
		items[i] = i
	}

	var inFlight, maxInFlight, processed int64
	errs := RunPool(context.Background(), items, 3, func(ctx context.Context, item int) error {
		current := atomic.AddInt64(&inFlight, 1)
		for {
			max := atomic.LoadInt64(&maxInFlight)
			if current <= max || atomic.CompareAndSwapInt64(&maxInFlight, max, current) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt64(&inFlight, -1)
		atomic.AddInt64(&processed, 1)

		if item == 7 {
			return fmt.Errorf("item 7 exploded")
		}
		return nil
	})

	assert.LessOrEqual(t, atomic.LoadInt64(&maxInFlight), int64(3))
	assert.EqualValues(t, 20, atomic.LoadInt64(&processed), "every item runs even when one fails")

	require.Len(t, errs, 20)
	for i, err := range errs {
		if i == 7 {
			assert.Error(t, err)
		} else {
			assert.NoError(t, err)
		}
	}
}

func TestRunPoolRecoversPanics(t *testing.T) {
	items := []string{"ok", "boom", "ok"}

	errs := RunPool(context.Background(), items, 2, func(ctx context.Context, item string) error {
		if item == "boom" {
			panic("unexpected state")
		}
		return nil
	})

	require.Len(t, errs, 3)
	assert.NoError(t, errs[0])
	require.Error(t, errs[1])
	assert.Contains(t, errs[1].Error(), "panic")
	assert.NoError(t, errs[2])
}

func TestRunPoolEmptyInput(t *testing.T) {
	errs := RunPool(context.Background(), nil, 3, func(ctx context.Context, item int) error {
		t.Fatal("must not be called")
		return nil
	})
	assert.Empty(t, errs)
}

func TestRunPoolConcurrencyAboveItemCount(t *testing.T) {
	errs := RunPool(context.Background(), []int{1, 2}, 10, func(ctx context.Context, item int) error {
		return nil
	})
	require.Len(t, errs, 2)
	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
}

func TestRunPoolCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var started int64
	errs := RunPool(ctx, []int{1, 2, 3, 4}, 2, func(ctx context.Context, item int) error {
		atomic.AddInt64(&started, 1)
		return nil
	})

	require.Len(t, errs, 4)
	for _, err := range errs {
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.EqualValues(t, 0, atomic.LoadInt64(&started))
}
