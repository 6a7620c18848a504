// Package sequential provides sequential implementations of the
// functions provided by the parallel package. This is useful for testing
// and debugging, and it defines the baseline that every parallel strategy
// in this module is checked against.
//
// It is not recommended to use the implementations of this package
// for any other purpose, because they are almost certainly too
// inefficient for regular sequential programs.
package sequential

import (
	"fmt"

	"github.com/exascience/batchpar/internal"
)

// RangeReduce receives a range, a batch count, a range reducer reduce,
// and a pair reducer pair, divides the range into batches, and
// invokes the range reducer for each of these batches sequentially,
// covering the half-open interval from low to high, including low but
// excluding high. The results of the range reducer invocations are
// then combined by repeated invocations of the pair reducer.
//
// RangeReduce panics if high < low, or if n < 0.
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
			left := recur(low, mid, half)
			right := recur(mid, high, n-half)
			return pair(left, right)
		default:
			panic(fmt.Sprintf("invalid number of batches: %v", n))
		}
	}
	return recur(low, high, internal.ComputeNofBatches(low, high, n))
}

// Filter returns, in increasing order, the integers in the half-open
// interval from low to high for which keep holds. The result is never nil.
func Filter(low, high int, keep func(int) bool) []int {
	return RangeReduce(low, high, 1,
		func(low, high int) []int {
			kept := []int{}
			for i := low; i < high; i++ {
				if keep(i) {
					kept = append(kept, i)
				}
			}
			return kept
		},
		func(x, y []int) []int { return append(x, y...) },
	)
}
