/*
Package speculative provides range predicates that are evaluated in
parallel, like the functions in package parallel, except that they
return as soon as the final result is known.

RangeAnd returns false as soon as any batch returns false, and RangeOr
returns true as soon as any batch returns true. Neither stops batches
that are still running when they return. Callers that want those
batches to stop need their own signal, such as an atomic flag that the
batches poll.

Panics are handled as in package parallel, except that a panic in a
batch may be lost if the result is already known without that batch.
*/
package speculative

import (
	"fmt"
	"sync"

	"github.com/exascience/batchpar/internal"
)

// rangeUntil evaluates f over the batches of [low, high) and returns
// decisive as soon as one batch returns it, or !decisive if none does.
func rangeUntil(low, high, n int, f func(low, high int) bool, decisive bool) bool {
	var recur func(int, int, int) bool
	recur = func(low, high, n int) bool {
		switch {
		case n == 1:
			return f(low, high)
		case n > 1:
			batchSize := ((high - low - 1) / n) + 1
			half := n / 2
			mid := low + batchSize*half
			if mid >= high {
				return f(low, high)
			}
			var right bool
			var p any
			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer func() {
					p = internal.WrapPanic(recover())
					wg.Done()
				}()
				right = recur(mid, high, n-half)
			}()
			if recur(low, mid, half) == decisive {
				return decisive
			}
			wg.Wait()
			if p != nil {
				panic(p)
			}
			return right
		default:
			panic(fmt.Sprintf("invalid number of batches: %v", n))
		}
	}
	return recur(low, high, internal.ComputeNofBatches(low, high, n))
}

/*
RangeAnd receives a range, a batch count, and a range predicate f,
divides the range into batches, and invokes f for each of these
batches in parallel, covering the half-open interval from low to high.

RangeAnd returns true if all invocations of f return true. It returns
false as soon as the left-most batches known so far include one that
returned false, without waiting for the others to terminate.

If n is 0, a reasonable default is used that takes
runtime.GOMAXPROCS(0) into account. RangeAnd panics if high < low, or
if n < 0.
*/
func RangeAnd(low, high, n int, f func(low, high int) bool) bool {
	return rangeUntil(low, high, n, f, false)
}

/*
RangeOr is like RangeAnd, but returns false if all invocations of f
return false, and true as soon as one of them is known to return true.
*/
func RangeOr(low, high, n int, f func(low, high int) bool) bool {
	return rangeUntil(low, high, n, f, true)
}
