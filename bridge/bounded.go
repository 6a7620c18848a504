package bridge

import "context"

// bounded is a buffered Go channel. The channel is only closed once every
// Sender handle is closed, so no send can race with the close.
type bounded[T any] struct {
	ch chan T
}

func newBounded[T any](capacity int) *bounded[T] {
	return &bounded[T]{ch: make(chan T, capacity)}
}

func (b *bounded[T]) send(ctx context.Context, v T) error {
	select {
	case b.ch <- v:
		return nil
	default:
	}
	select {
	case b.ch <- v:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *bounded[T]) trySend(v T) bool {
	select {
	case b.ch <- v:
		return true
	default:
		return false
	}
}

func (b *bounded[T]) recv(ctx context.Context) (v T, ok bool, err error) {
	select {
	case v, ok = <-b.ch:
		return v, ok, nil
	default:
	}
	select {
	case v, ok = <-b.ch:
		return v, ok, nil
	case <-ctx.Done():
		return v, false, ctx.Err()
	}
}

func (b *bounded[T]) tryRecv() (v T, ok bool) {
	select {
	case v, ok = <-b.ch:
		return v, ok
	default:
		return v, false
	}
}

func (b *bounded[T]) close()   { close(b.ch) }
func (b *bounded[T]) len() int { return len(b.ch) }
func (b *bounded[T]) cap() int { return cap(b.ch) }
