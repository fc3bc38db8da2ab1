package store

import (
	"context"
	"time"
)

// saveWithDeadline runs save and waits at most timeout for it. If the timer
// fires first the caller gets ErrSaveTimeout right away, the context passed
// to save is cancelled, and whatever save returns later is dropped.
func saveWithDeadline[T any](ctx context.Context, timeout time.Duration, save func(ctx context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		value T
		err   error
	}
	// Buffered so that a save finishing after the deadline never blocks.
	done := make(chan outcome, 1)
	go func() {
		value, err := save(ctx)
		done <- outcome{value: value, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case result := <-done:
		return result.value, result.err
	case <-timer.C:
		var zero T
		return zero, ErrSaveTimeout
	}
}
