package internal

import (
	"errors"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeNofBatches(t *testing.T) {
	assert.Equal(t, 1, ComputeNofBatches(5, 5, 0))
	assert.Equal(t, 3, ComputeNofBatches(0, 3, 8))
	assert.Equal(t, 4, ComputeNofBatches(0, 100, 4))
	assert.Equal(t, min(2*runtime.GOMAXPROCS(0), 1000), ComputeNofBatches(0, 1000, 0))
	assert.Panics(t, func() { ComputeNofBatches(0, 10, -1) })
	assert.Panics(t, func() { ComputeNofBatches(10, 0, 1) })
}

func TestBatchBounds(t *testing.T) {
	for size := 0; size < 40; size++ {
		for n := 1; n < 10; n++ {
			next, smallest, largest := 0, size, 0
			for i := 0; i < n; i++ {
				low, high := BatchBounds(size, n, i)
				require.Equal(t, next, low, "size=%d n=%d i=%d", size, n, i)
				next = high
				smallest = min(smallest, high-low)
				largest = max(largest, high-low)
			}
			assert.Equal(t, size, next)
			assert.LessOrEqual(t, largest-smallest, 1)
		}
	}
}

func TestWrapPanic(t *testing.T) {
	assert.Nil(t, WrapPanic(nil))

	s, ok := WrapPanic("boom").(string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(s, "boom\n"))

	err, ok := WrapPanic(errors.New("bad")).(error)
	require.True(t, ok)
	assert.Contains(t, err.Error(), "rethrown at")

	var rerr runtime.Error
	func() {
		defer func() {
			rerr, _ = WrapPanic(recover()).(runtime.Error)
		}()
		var m map[string]int
		m["x"] = 1
	}()
	assert.NotNil(t, rerr)
}
