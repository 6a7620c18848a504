package counter_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exascience/batchpar/counter"
)

func ExampleCount() {
	fmt.Println(counter.Count(counter.Atomic, counter.Threads, counter.Loops))
	fmt.Println(counter.Count(counter.Locked, counter.Threads, counter.Loops))

	// Output:
	// 1000000
	// 1000000
}

func TestCountExact(t *testing.T) {
	for _, k := range []counter.Kind{counter.Atomic, counter.Locked} {
		for _, threads := range []int{0, 1, 3, 16} {
			assert.EqualValues(t, threads*500, counter.Count(k, threads, 500), "%v threads=%d", k, threads)
		}
	}
}

func TestCountRacyNeverOvercounts(t *testing.T) {
	if raceEnabled {
		t.Skip("intentional data race")
	}
	got := counter.Count(counter.Racy, counter.Threads, counter.Loops)
	require.LessOrEqual(t, got, int64(counter.Threads*counter.Loops))
	if got < counter.Threads*counter.Loops {
		t.Logf("lost %d of %d increments", counter.Threads*counter.Loops-got, counter.Threads*counter.Loops)
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range []counter.Kind{counter.Atomic, counter.Locked, counter.Racy} {
		got, err := counter.ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := counter.ParseKind("spinlock")
	assert.Error(t, err)
	assert.Equal(t, "Kind(9)", counter.Kind(9).String())
}

func TestCountPanics(t *testing.T) {
	assert.Panics(t, func() { counter.Count(counter.Atomic, -1, 1) })
	assert.Panics(t, func() { counter.Count(counter.Kind(9), 1, 1) })
}
