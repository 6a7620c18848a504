// Package parallel provides fork-join functions for expressing parallel
// algorithms over ranges of indices.
//
// The functions in this package recursively halve their input and run one
// half in a new goroutine, so idle goroutines pick up the remaining halves
// as soon as they finish their own. The exact shape of the resulting
// batches is an implementation detail; only the combined result is part of
// the contract.
package parallel

import (
	"fmt"
	"sync"

	"github.com/exascience/batchpar/internal"
)

// Do receives zero or more thunks and executes them in parallel.
//
// Each thunk is invoked in its own goroutine, and Do returns only
// when all thunks have terminated.
//
// If one or more thunks panic, the corresponding goroutines recover
// the panics, and Do eventually panics with the left-most
// recovered panic value.
func Do(thunks ...func()) {
	switch len(thunks) {
	case 0:
		return
	case 1:
		thunks[0]()
		return
	}
	var p any
	var wg sync.WaitGroup
	wg.Add(1)
	switch len(thunks) {
	case 2:
		go func() {
			defer func() {
				p = internal.WrapPanic(recover())
				wg.Done()
			}()
			thunks[1]()
		}()
		thunks[0]()
	default:
		half := len(thunks) / 2
		go func() {
			defer func() {
				p = internal.WrapPanic(recover())
				wg.Done()
			}()
			Do(thunks[half:]...)
		}()
		Do(thunks[:half]...)
	}
	wg.Wait()
	if p != nil {
		panic(p)
	}
}

// Range receives a range, a batch count n, and a range function f,
// divides the range into batches, and invokes the range function for
// each of these batches in parallel, covering the half-open interval
// from low to high, including low but excluding high.
//
// The range is specified by a low and high integer, with low <=
// high. The batches are determined by dividing up the size of the
// range (high - low) by n. If n is 0, a reasonable default is used
// that takes runtime.GOMAXPROCS(0) into account.
//
// Range panics if high < low, or if n < 0.
//
// If one or more range function invocations panic, the corresponding
// goroutines recover the panics, and Range eventually panics with
// the left-most recovered panic value.
func Range(low, high, n int, f func(low, high int)) {
	RangeReduce(low, high, n,
		func(low, high int) struct{} {
			f(low, high)
			return struct{}{}
		},
		func(struct{}, struct{}) struct{} { return struct{}{} },
	)
}

// RangeReduce receives a range, a batch count, a range reducer reduce,
// and a pair reducer pair, divides the range into batches, and
// invokes the range reducer for each of these batches in parallel,
// covering the half-open interval from low to high, including low but
// excluding high. The results of the range reducer invocations are
// then combined by repeated invocations of the pair reducer.
//
// The pair reducer always receives the result of the lower subrange as
// its first argument.
//
// RangeReduce panics if high < low, or if n < 0.
//
// If one or more reducer invocations panic, the corresponding
// goroutines recover the panics, and RangeReduce eventually panics
// with the left-most recovered panic value.
func RangeReduce[T any](
	low, high, n int,
	reduce func(low, high int) T,
	pair func(x, y T) T,
) T {
	var recur func(int, int, int) T
	recur = func(low, high, n int) T {
		switch {
		case n == 1:
			return reduce(low, high)
		case n > 1:
			batchSize := ((high - low - 1) / n) + 1
			half := n / 2
			mid := low + batchSize*half
			if mid >= high {
				return reduce(low, high)
			}
			var left, right T
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
			left = recur(low, mid, half)
			wg.Wait()
			if p != nil {
				panic(p)
			}
			return pair(left, right)
		default:
			panic(fmt.Sprintf("invalid number of batches: %v", n))
		}
	}
	return recur(low, high, internal.ComputeNofBatches(low, high, n))
}

// Filter returns the items for which keep holds, evaluating keep in
// parallel over n batches of items. If n is 0, a reasonable default is
// used that takes runtime.GOMAXPROCS(0) into account.
//
// The returned set equals that of a sequential filter over items. Callers
// must not depend on the order of the result.
func Filter[T any](items []T, n int, keep func(T) bool) []T {
	return RangeReduce(0, len(items), n,
		func(low, high int) (kept []T) {
			for _, item := range items[low:high] {
				if keep(item) {
					kept = append(kept, item)
				}
			}
			return
		},
		func(x, y []T) []T {
			return append(x, y...)
		},
	)
}

// Count returns the number of items for which keep holds, evaluating keep
// in parallel over n batches of items.
func Count[T any](items []T, n int, keep func(T) bool) int {
	return RangeReduce(0, len(items), n,
		func(low, high int) (count int) {
			for _, item := range items[low:high] {
				if keep(item) {
					count++
				}
			}
			return
		},
		func(x, y int) int { return x + y },
	)
}
