package coop

import (
	"context"
	"sync/atomic"

	"github.com/exascience/batchpar/bridge"
)

// An Outcome reports how one task ended.
type Outcome[T any] struct {
	Task  int
	Value T
	Err   error
	State State
}

// A JoinSet owns a group of tasks running on one executor and collects
// their outcomes in completion order.
type JoinSet[T any] struct {
	ctx     context.Context
	cancel  context.CancelFunc
	exec    *Executor
	tx      *bridge.Sender[Outcome[T]]
	rx      *bridge.Receiver[Outcome[T]]
	spawned atomic.Int64
	pending atomic.Int64
}

// NewJoinSet returns an empty set whose tasks run on exec. The set is
// cancelled when ctx is done or when Cancel is called.
func NewJoinSet[T any](ctx context.Context, exec *Executor) *JoinSet[T] {
	ctx, cancel := context.WithCancel(ctx)
	tx, rx := bridge.New[Outcome[T]](0)
	return &JoinSet[T]{ctx: ctx, cancel: cancel, exec: exec, tx: tx, rx: rx}
}

// Spawn starts a task that runs fn once it holds a slot. The task's value
// and error end up in its Outcome. A panic in fn is recorded as a
// *PanicError.
func (js *JoinSet[T]) Spawn(fn func(*Task) (T, error)) *Task {
	t := &Task{id: int(js.spawned.Add(1) - 1), ctx: js.ctx, exec: js.exec}
	js.pending.Add(1)
	go func() {
		// the outcome stream is unbounded
		_ = js.tx.TrySend(run(t, fn))
	}()
	return t
}

// SpawnAll spawns one task per item and returns the task handles in item
// order.
func SpawnAll[T any](js *JoinSet[T], items []int, fn func(t *Task, item int) (T, error)) []*Task {
	tasks := make([]*Task, len(items))
	for i, item := range items {
		tasks[i] = js.Spawn(func(t *Task) (T, error) {
			return fn(t, item)
		})
	}
	return tasks
}

// JoinNext waits for the next task to finish and returns its outcome. It
// returns false if no task is left to join or if ctx is done first.
//
// JoinNext blocks. A task that joins another set must call it through
// Suspend.
func (js *JoinSet[T]) JoinNext(ctx context.Context) (Outcome[T], bool) {
	if js.pending.Load() == 0 {
		return Outcome[T]{}, false
	}
	o, ok, err := js.rx.Recv(ctx)
	if err != nil || !ok {
		return Outcome[T]{}, false
	}
	js.pending.Add(-1)
	return o, true
}

// JoinAll joins every outstanding task and returns the outcomes in
// completion order. If ctx is done first, the outcomes joined so far are
// returned.
func (js *JoinSet[T]) JoinAll(ctx context.Context) []Outcome[T] {
	outcomes := make([]Outcome[T], 0, js.pending.Load())
	failed, cancelled := 0, 0
	for {
		o, ok := js.JoinNext(ctx)
		if !ok {
			break
		}
		switch {
		case o.State == Cancelled:
			cancelled++
		case o.Err != nil:
			failed++
		}
		outcomes = append(outcomes, o)
	}
	js.exec.logger.Debug("tasks joined",
		"joined", len(outcomes),
		"failed", failed,
		"cancelled", cancelled,
		"pending", js.pending.Load(),
		"slots", js.exec.Slots(),
	)
	return outcomes
}

// Cancel asks every task in the set to stop. Running tasks observe the
// request at their next Yield or Suspend; tasks still waiting for their
// first slot never run.
func (js *JoinSet[T]) Cancel() {
	js.cancel()
}

// Close releases the context of the set. Tasks that have not finished
// are cancelled as by Cancel. Callers should defer Close once the set is
// created.
func (js *JoinSet[T]) Close() {
	js.cancel()
}

// Len returns the number of tasks spawned but not yet joined.
func (js *JoinSet[T]) Len() int {
	return int(js.pending.Load())
}
