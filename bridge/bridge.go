// Package bridge provides typed streams that carry messages from producers
// to a single consumer, regardless of which scheduling domain either side
// runs in.
//
// A stream is created with New and has two ends. Senders may be cloned to
// allow several producers; the stream closes once every Sender handle has
// been closed. The Receiver observes the close as an end-of-stream value
// (ok == false) only after every message sent before the close has been
// delivered. Messages from one Sender arrive in the order they were sent.
//
// Streams created with capacity 0 are unbounded: sending never blocks, and
// the buffer grows as needed. Streams with a positive capacity apply
// backpressure: Send blocks while the buffer is full.
//
// Receiving never busy-polls. An empty stream blocks the receiver until a
// message arrives, the stream closes, or the context is done.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
)

var (
	// ErrClosed is returned when sending through a Sender handle that has
	// been closed.
	ErrClosed = errors.New("bridge: send on closed stream")

	// ErrWouldBlock is returned by TrySend when a bounded stream is full.
	ErrWouldBlock = errors.New("bridge: stream buffer is full")
)

// queue is the buffer shared by both ends of a stream.
type queue[T any] interface {
	send(ctx context.Context, v T) error
	trySend(v T) bool
	recv(ctx context.Context) (v T, ok bool, err error)
	tryRecv() (v T, ok bool)
	close()
	len() int
	cap() int
}

type shared[T any] struct {
	q       queue[T]
	senders atomic.Int64
}

// New creates a stream and returns its two ends. A capacity of 0 creates
// an unbounded stream. New panics if capacity is negative.
func New[T any](capacity int) (*Sender[T], *Receiver[T]) {
	var q queue[T]
	switch {
	case capacity == 0:
		q = newUnbounded[T]()
	case capacity > 0:
		q = newBounded[T](capacity)
	default:
		panic(fmt.Sprintf("bridge: invalid capacity %d", capacity))
	}
	s := &shared[T]{q: q}
	s.senders.Store(1)
	return &Sender[T]{s: s}, &Receiver[T]{s: s}
}

// A Sender is the producing end of a stream. A single Sender handle must
// not be closed while one of its own sends is in progress; use Clone to
// give each producer its own handle.
type Sender[T any] struct {
	s      *shared[T]
	closed atomic.Bool
}

// Send delivers v to the stream. On a bounded stream, Send blocks while
// the buffer is full. It returns ErrClosed if this handle has been closed,
// or the context error if ctx is done first.
func (tx *Sender[T]) Send(ctx context.Context, v T) error {
	if tx.closed.Load() {
		return ErrClosed
	}
	return tx.s.q.send(ctx, v)
}

// BlockingSend is Send without a way to give up early. It is meant for
// producers outside of any context-aware code, such as a dedicated
// OS thread.
func (tx *Sender[T]) BlockingSend(v T) error {
	return tx.Send(context.Background(), v)
}

// TrySend delivers v only if that is possible without blocking. It returns
// ErrWouldBlock if a bounded stream is full.
func (tx *Sender[T]) TrySend(v T) error {
	if tx.closed.Load() {
		return ErrClosed
	}
	if !tx.s.q.trySend(v) {
		return ErrWouldBlock
	}
	return nil
}

// Clone returns a new Sender handle for the same stream. The stream stays
// open until every handle has been closed. Clone panics if tx has already
// been closed.
func (tx *Sender[T]) Clone() *Sender[T] {
	if tx.closed.Load() {
		panic("bridge: Clone of closed Sender")
	}
	tx.s.senders.Add(1)
	return &Sender[T]{s: tx.s}
}

// Close releases this handle. Closing the last open handle closes the
// stream. Close is idempotent.
func (tx *Sender[T]) Close() {
	if tx.closed.CompareAndSwap(false, true) && tx.s.senders.Add(-1) == 0 {
		tx.s.q.close()
	}
}

// A Receiver is the consuming end of a stream. A stream has exactly one
// Receiver, and its methods must not be called concurrently.
type Receiver[T any] struct {
	s *shared[T]
}

// Recv returns the next message. It blocks while the stream is empty and
// open. Once the stream is closed and drained, Recv returns ok == false
// and a nil error. If ctx is done first, Recv returns the context error.
func (rx *Receiver[T]) Recv(ctx context.Context) (v T, ok bool, err error) {
	return rx.s.q.recv(ctx)
}

// BlockingRecv is Recv without a way to give up early.
func (rx *Receiver[T]) BlockingRecv() (T, bool) {
	v, ok, _ := rx.s.q.recv(context.Background())
	return v, ok
}

// TryRecv returns the next message if one is buffered.
func (rx *Receiver[T]) TryRecv() (T, bool) {
	return rx.s.q.tryRecv()
}

// Collect receives until the end of the stream and returns every message
// in arrival order. On context cancellation it returns the messages
// received so far together with the context error.
func (rx *Receiver[T]) Collect(ctx context.Context) ([]T, error) {
	var out []T
	for {
		v, ok, err := rx.Recv(ctx)
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, v)
	}
}

// Len returns the number of buffered messages.
func (rx *Receiver[T]) Len() int { return rx.s.q.len() }

// Cap returns the capacity of the stream, or 0 if it is unbounded.
func (rx *Receiver[T]) Cap() int { return rx.s.q.cap() }
