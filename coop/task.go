package coop

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/exascience/batchpar/internal"
)

// ErrCancelled is returned by Task.Yield and Task.Suspend once the task's
// set has been cancelled. Task functions should return it unchanged.
var ErrCancelled = errors.New("coop: task cancelled")

// State is the lifecycle state of a task.
type State int32

const (
	// Pending tasks wait for their first slot.
	Pending State = iota
	// Running tasks hold a slot.
	Running
	// Suspended tasks gave up their slot, either to yield or to block.
	Suspended
	// Completed tasks returned, with or without an error.
	Completed
	// Cancelled tasks stopped because their set was cancelled.
	Cancelled
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Suspended:
		return "suspended"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// A PanicError is the error recorded for a task that panicked.
type PanicError struct {
	Value any
	Trace string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("coop: task panicked: %v", e.Trace)
}

// Unwrap returns the panic value if it is an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// A Task is the handle of one unit of cooperative work. Yield and Suspend
// may only be called from the task's own function.
type Task struct {
	id     int
	ctx    context.Context
	exec   *Executor
	state  atomic.Int32
	yields atomic.Int64
	held   bool
}

// ID returns the spawn index of t within its set.
func (t *Task) ID() int { return t.id }

// Context returns the context of t's set. It is done once the set is
// cancelled.
func (t *Task) Context() context.Context { return t.ctx }

// State returns the current state of t.
func (t *Task) State() State { return State(t.state.Load()) }

// Yields returns how many times t has yielded so far.
func (t *Task) Yields() int64 { return t.yields.Load() }

func (t *Task) setState(s State) { t.state.Store(int32(s)) }

func (t *Task) acquire() error {
	if err := t.exec.slots.Acquire(t.ctx, 1); err != nil {
		return ErrCancelled
	}
	t.held = true
	t.setState(Running)
	return nil
}

func (t *Task) release() {
	if t.held {
		t.held = false
		t.exec.slots.Release(1)
	}
}

// Yield gives t's slot to the longest-waiting task and waits for a slot to
// become available again. It returns ErrCancelled if the set has been
// cancelled, in which case the task function should return promptly.
func (t *Task) Yield() error {
	t.yields.Add(1)
	if t.ctx.Err() != nil {
		return ErrCancelled
	}
	t.setState(Suspended)
	t.release()
	return t.acquire()
}

// Suspend releases t's slot while fn runs, so that fn may block without
// holding up other tasks, and reacquires a slot afterwards. fn receives
// the set's context. Suspend returns fn's error. If the set was cancelled
// before t got its slot back, the returned error also matches
// ErrCancelled.
func (t *Task) Suspend(fn func(ctx context.Context) error) error {
	if t.ctx.Err() != nil {
		return ErrCancelled
	}
	t.setState(Suspended)
	t.release()
	err := fn(t.ctx)
	if aerr := t.acquire(); aerr != nil {
		if err == nil {
			return aerr
		}
		return errors.Join(err, aerr)
	}
	return err
}

// run executes fn on a slot and reports how it ended.
func run[T any](t *Task, fn func(*Task) (T, error)) (o Outcome[T]) {
	o.Task = t.id
	defer func() {
		if p := recover(); p != nil {
			o.Err = &PanicError{Value: p, Trace: fmt.Sprint(internal.WrapPanic(p))}
		}
		t.release()
		o.State = Completed
		if errors.Is(o.Err, ErrCancelled) {
			o.State = Cancelled
		}
		t.setState(o.State)
	}()
	if o.Err = t.acquire(); o.Err != nil {
		return
	}
	o.Value, o.Err = fn(t)
	return
}
