package bridge

import (
	"context"
	"runtime"

	"golang.org/x/time/rate"
)

// Feed sends items through tx in order, waiting on lim before each send
// when lim is not nil, and closes tx when it returns.
//
// Feed stops early and returns the error if a send fails or ctx is done.
func Feed[T any](ctx context.Context, tx *Sender[T], items []T, lim *rate.Limiter) error {
	defer tx.Close()
	for _, v := range items {
		if lim != nil {
			if err := lim.Wait(ctx); err != nil {
				return err
			}
		}
		if err := tx.Send(ctx, v); err != nil {
			return err
		}
	}
	return nil
}

// OnThread runs fn on a new goroutine that is locked to its own OS thread
// for its whole lifetime, so that fn may block on OS primitives without
// affecting any other goroutine's thread. The returned channel receives
// fn's error and is then closed.
func OnThread(fn func() error) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		done <- fn()
	}()
	return done
}
