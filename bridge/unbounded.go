package bridge

import (
	"context"
	"sync"
)

// unbounded is a growable FIFO guarded by a mutex. The receiver waits on
// ready, which holds at most one pending wake-up.
type unbounded[T any] struct {
	mu     sync.Mutex
	buf    []T
	head   int
	closed bool
	ready  chan struct{}
}

func newUnbounded[T any]() *unbounded[T] {
	return &unbounded[T]{ready: make(chan struct{}, 1)}
}

func (u *unbounded[T]) wake() {
	select {
	case u.ready <- struct{}{}:
	default:
	}
}

func (u *unbounded[T]) send(_ context.Context, v T) error {
	u.trySend(v)
	return nil
}

func (u *unbounded[T]) trySend(v T) bool {
	u.mu.Lock()
	u.buf = append(u.buf, v)
	u.mu.Unlock()
	u.wake()
	return true
}

func (u *unbounded[T]) pop() (v T, ok, closed bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.head < len(u.buf) {
		v = u.buf[u.head]
		var zero T
		u.buf[u.head] = zero
		u.head++
		switch {
		case u.head == len(u.buf):
			u.buf, u.head = u.buf[:0], 0
		case u.head > len(u.buf)/2:
			n := copy(u.buf, u.buf[u.head:])
			clear(u.buf[n:])
			u.buf, u.head = u.buf[:n], 0
		}
		return v, true, u.closed
	}
	return v, false, u.closed
}

func (u *unbounded[T]) recv(ctx context.Context) (v T, ok bool, err error) {
	for {
		v, ok, closed := u.pop()
		if ok {
			return v, true, nil
		}
		if closed {
			return v, false, nil
		}
		select {
		case <-u.ready:
		case <-ctx.Done():
			return v, false, ctx.Err()
		}
	}
}

func (u *unbounded[T]) tryRecv() (v T, ok bool) {
	v, ok, _ = u.pop()
	return
}

func (u *unbounded[T]) close() {
	u.mu.Lock()
	u.closed = true
	u.mu.Unlock()
	u.wake()
}

func (u *unbounded[T]) len() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.buf) - u.head
}

func (u *unbounded[T]) cap() int { return 0 }
