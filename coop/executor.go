// Package coop runs many lightweight tasks on a small, fixed number of
// executor slots.
//
// A task only makes progress while it holds a slot. Tasks are expected to
// give their slot back regularly by calling Task.Yield inside long loops,
// and to wrap anything that may block in Task.Suspend, so that a single
// expensive task never starves its siblings. Slots are handed out in FIFO
// order, so a yielding task is queued behind every task that was already
// waiting.
//
// Tasks are spawned into a JoinSet, which reports their outcomes in the
// order they complete. A task's error or panic is captured in its Outcome
// and never affects the other tasks in the set. Cancelling a set is
// cooperative: running tasks observe it the next time they yield or
// suspend.
package coop

import (
	"fmt"
	"log/slog"

	"golang.org/x/sync/semaphore"
)

// An Executor owns the slots that tasks run on. The zero value is not
// usable; create executors with NewExecutor.
type Executor struct {
	slots  *semaphore.Weighted
	n      int
	logger *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithSlots sets the number of tasks that may run at the same time. The
// default is 1, a single logical executor. WithSlots panics if n < 1.
func WithSlots(n int) Option {
	if n < 1 {
		panic(fmt.Sprintf("coop: invalid number of slots: %v", n))
	}
	return func(e *Executor) {
		e.n = n
	}
}

// WithLogger sets the logger for task lifecycle records. The default is
// slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExecutor returns an executor configured by opts.
func NewExecutor(opts ...Option) *Executor {
	e := &Executor{n: 1, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	e.slots = semaphore.NewWeighted(int64(e.n))
	return e
}

// Slots returns the number of slots of e.
func (e *Executor) Slots() int {
	return e.n
}
