package sort

import (
	"golang.org/x/exp/slices"

	"github.com/exascience/batchpar/parallel"
)

const msortGrainSize = 0x3000

// lowerBound returns the index of the first element of s that does not
// sort before x.
func lowerBound[E any](s []E, x E, compare func(a, b E) int) int {
	i, _ := slices.BinarySearchFunc(s, x, compare)
	return i
}

// upperBound returns the index of the first element of s that sorts after
// x.
func upperBound[E any](s []E, x E, compare func(a, b E) int) int {
	i, _ := slices.BinarySearchFunc(s, x, func(e, x E) int {
		if compare(e, x) <= 0 {
			return -1
		}
		return 1
	})
	return i
}

func sMerge[E any](a, b, dst []E, compare func(a, b E) int) {
	i, j, k := 0, 0, 0
	for i < len(a) && j < len(b) {
		if compare(b[j], a[i]) < 0 {
			dst[k] = b[j]
			j++
		} else {
			dst[k] = a[i]
			i++
		}
		k++
	}
	k += copy(dst[k:], a[i:])
	copy(dst[k:], b[j:])
}

// pMerge merges the sorted slices a and b into dst, which must have room
// for both. Equal elements of a are placed before those of b.
func pMerge[E any](a, b, dst []E, compare func(a, b E) int) {
	if len(a)+len(b) < msortGrainSize {
		sMerge(a, b, dst, compare)
		return
	}
	if len(a) > len(b) {
		q1 := len(a) / 2
		q2 := lowerBound(b, a[q1], compare)
		q3 := q1 + q2
		dst[q3] = a[q1]
		parallel.Do(
			func() { pMerge(a[:q1], b[:q2], dst[:q3], compare) },
			func() { pMerge(a[q1+1:], b[q2:], dst[q3+1:], compare) },
		)
	} else {
		q2 := len(b) / 2
		q1 := upperBound(a, b[q2], compare)
		q3 := q1 + q2
		dst[q3] = b[q2]
		parallel.Do(
			func() { pMerge(a[:q1], b[:q2], dst[:q3], compare) },
			func() { pMerge(a[q1:], b[q2+1:], dst[q3+1:], compare) },
		)
	}
}

// SortFunc sorts s according to compare using a parallel implementation
// of merge sort, also known as cilksort. The sort is stable.
//
// SortFunc is good for large core counts and large slices, but needs a
// temporary slice as large as s.
func SortFunc[E any](s []E, compare func(a, b E) int) {
	// See https://en.wikipedia.org/wiki/Introduction_to_Algorithms and
	// https://www.clear.rice.edu/comp422/lecture-notes/ for details on the algorithm.
	if len(s) < msortGrainSize {
		slices.SortStableFunc(s, compare)
		return
	}
	temp := make([]E, len(s))
	var pSort func(s, temp []E)
	pSort = func(s, temp []E) {
		size := len(s)
		if size < msortGrainSize {
			slices.SortStableFunc(s, compare)
			return
		}
		q1 := size / 4
		q2 := q1 + q1
		q3 := q2 + q1
		parallel.Do(
			func() { pSort(s[:q1], temp[:q1]) },
			func() { pSort(s[q1:q2], temp[q1:q2]) },
			func() { pSort(s[q2:q3], temp[q2:q3]) },
			func() { pSort(s[q3:], temp[q3:]) },
		)
		parallel.Do(
			func() { pMerge(s[:q1], s[q1:q2], temp[:q2], compare) },
			func() { pMerge(s[q2:q3], s[q3:], temp[q2:], compare) },
		)
		pMerge(temp[:q2], temp[q2:], s, compare)
	}
	pSort(s, temp)
}
