/*
Package sort provides parallel sorting for slices.

The matching items of a batch run arrive in an order that depends on the
strategy and on scheduling. The functions in this package put them back
into a canonical order without giving up the parallelism of the run.
*/
package sort

import (
	"cmp"
	"sync/atomic"

	"golang.org/x/exp/slices"

	"github.com/exascience/batchpar/speculative"
)

const serialCutoff = 10

// Sort sorts s in increasing order. It is a parallel merge sort and
// therefore needs a temporary copy of s for large inputs.
func Sort[E cmp.Ordered](s []E) {
	SortFunc(s, cmp.Compare[E])
}

// IsSorted determines in parallel whether s is sorted in increasing
// order.
func IsSorted[E cmp.Ordered](s []E) bool {
	return IsSortedFunc(s, cmp.Compare[E])
}

/*
IsSortedFunc determines in parallel whether s is sorted according to
compare. It attempts to terminate early when the return value is false.
*/
func IsSortedFunc[E any](s []E, compare func(a, b E) int) bool {
	if len(s) < msortGrainSize {
		return slices.IsSortedFunc(s, compare)
	}
	for i := 1; i < serialCutoff; i++ {
		if compare(s[i], s[i-1]) < 0 {
			return false
		}
	}
	var done atomic.Bool
	defer done.Store(true)
	return speculative.RangeAnd(serialCutoff, len(s), 0, func(low, high int) bool {
		for i := low; i < high; i++ {
			if i%1024 == 0 && done.Load() {
				return false
			}
			if compare(s[i], s[i-1]) < 0 {
				return false
			}
		}
		return true
	})
}
