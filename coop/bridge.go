package coop

import (
	"context"
	"errors"

	"github.com/exascience/batchpar/bridge"
)

// Recv receives the next message from rx on behalf of t. If no message is
// buffered, t suspends until one arrives or the stream ends, so that the
// executor slot stays available to other tasks.
func Recv[V any](t *Task, rx *bridge.Receiver[V]) (v V, ok bool, err error) {
	if v, ok = rx.TryRecv(); ok {
		return v, true, nil
	}
	err = t.Suspend(func(ctx context.Context) (err error) {
		v, ok, err = rx.Recv(ctx)
		return
	})
	return
}

// Send sends v through tx on behalf of t. If a bounded stream is full, t
// suspends until there is room again.
func Send[V any](t *Task, tx *bridge.Sender[V], v V) error {
	err := tx.TrySend(v)
	if !errors.Is(err, bridge.ErrWouldBlock) {
		return err
	}
	return t.Suspend(func(ctx context.Context) error {
		return tx.Send(ctx, v)
	})
}
