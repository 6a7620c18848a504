package parallel_test

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slices"

	"github.com/exascience/batchpar/parallel"
	"github.com/exascience/batchpar/predicate"
	"github.com/exascience/batchpar/sequential"
)

func ExampleDo() {
	var fib func(int) int

	fib = func(n int) int {
		if n < 2 {
			return n
		}
		return fib(n-1) + fib(n-2)
	}

	var parallelFib func(int) int

	parallelFib = func(n int) int {
		if n < 20 {
			return fib(n)
		}
		var n1, n2 int
		parallel.Do(
			func() { n1 = parallelFib(n - 1) },
			func() { n2 = parallelFib(n - 2) },
		)
		return n1 + n2
	}

	fmt.Println(parallelFib(25))

	// Output:
	// 75025
}

func ExampleRangeReduce() {
	numDivisors := func(n int) int {
		return parallel.RangeReduce(
			1, n+1, runtime.GOMAXPROCS(0),
			func(low, high int) int {
				var sum int
				for i := low; i < high; i++ {
					if (n % i) == 0 {
						sum++
					}
				}
				return sum
			},
			func(x, y int) int { return x + y },
		)
	}

	fmt.Println(numDivisors(12))

	// Output:
	// 6
}

func ExampleFilter() {
	candidates := make([]int, 20)
	for i := range candidates {
		candidates[i] = i
	}
	primes := parallel.Filter(candidates, 4*runtime.GOMAXPROCS(0), predicate.IsPrime)
	slices.Sort(primes)
	fmt.Println(primes)

	// Output:
	// [2 3 5 7 11 13 17 19]
}

func TestRangeCoversEveryIndexOnce(t *testing.T) {
	for _, n := range []int{0, 1, 3, 7, 64} {
		hits := make([]int32, 1000)
		parallel.Range(0, len(hits), n, func(low, high int) {
			for i := low; i < high; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
		})
		for i, h := range hits {
			require.EqualValues(t, 1, h, "n=%d index=%d", n, i)
		}
	}
}

func TestRangeReducePairsLowerFirst(t *testing.T) {
	got := parallel.RangeReduce(0, 100, 8,
		func(low, high int) []int {
			out := make([]int, 0, high-low)
			for i := low; i < high; i++ {
				out = append(out, i)
			}
			return out
		},
		func(x, y []int) []int { return append(x, y...) },
	)
	assert.True(t, slices.IsSorted(got))
	assert.Len(t, got, 100)
}

func TestFilterMatchesSequential(t *testing.T) {
	items := make([]int, 5000)
	for i := range items {
		items[i] = i
	}
	want := sequential.Filter(0, len(items), predicate.IsPrime)
	for _, n := range []int{0, 1, 2, 13} {
		got := parallel.Filter(items, n, predicate.IsPrime)
		slices.Sort(got)
		assert.Equal(t, want, got, "n=%d", n)
		assert.Equal(t, len(want), parallel.Count(items, n, predicate.IsPrime))
	}
}

func TestFilterEmpty(t *testing.T) {
	assert.Empty(t, parallel.Filter([]int{}, 0, predicate.IsPrime))
}

func TestPanicPropagates(t *testing.T) {
	assert.Panics(t, func() {
		parallel.Range(0, 100, 4, func(low, high int) {
			if low > 0 {
				panic("late batch")
			}
		})
	})
	assert.Panics(t, func() {
		parallel.Do(func() {}, func() {}, func() { panic("third") })
	})
	assert.Panics(t, func() { parallel.Range(0, 10, -1, func(int, int) {}) })
}
