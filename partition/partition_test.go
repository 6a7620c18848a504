package partition_test

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slices"

	"github.com/exascience/batchpar/partition"
)

func ExamplePartition() {
	d, _ := partition.NewDomain(10)
	chunks, _ := partition.Partition(d, 4, false, nil)
	for _, c := range chunks {
		fmt.Println(c.Index, c.Items)
	}

	// Output:
	// 0 [0 1 2]
	// 1 [3 4 5]
	// 2 [6 7]
	// 3 [8 9]
}

func TestPartitionSizes(t *testing.T) {
	for n := 0; n <= 50; n++ {
		d, err := partition.NewDomain(n)
		require.NoError(t, err)
		for _, workers := range []int{1, 2, 3, 4, 7, 8, 64} {
			for _, shuffle := range []bool{false, true} {
				chunks, err := partition.Partition(d, workers, shuffle, rand.New(rand.NewPCG(1, 2)))
				require.NoError(t, err)
				require.Len(t, chunks, workers)

				total, smallest, largest := 0, n, 0
				for i, c := range chunks {
					assert.Equal(t, i, c.Index)
					total += c.Len()
					smallest = min(smallest, c.Len())
					largest = max(largest, c.Len())
					if workers <= n {
						assert.NotZero(t, c.Len(), "n=%d workers=%d chunk=%d", n, workers, i)
					}
				}
				assert.Equal(t, n, total, "n=%d workers=%d", n, workers)
				assert.LessOrEqual(t, largest-smallest, 1, "n=%d workers=%d", n, workers)

				all := partition.Flatten(chunks)
				slices.Sort(all)
				assert.Equal(t, d.Items(), all)
			}
		}
	}
}

func TestPartitionContiguousWithoutShuffle(t *testing.T) {
	d, _ := partition.NewDomain(100)
	chunks, err := partition.Partition(d, 8, false, nil)
	require.NoError(t, err)
	assert.Equal(t, d.Items(), partition.Flatten(chunks))
}

func TestPartitionShuffleIsSeeded(t *testing.T) {
	d, _ := partition.NewDomain(1000)
	a, err := partition.Partition(d, 4, true, rand.New(rand.NewPCG(7, 7)))
	require.NoError(t, err)
	b, err := partition.Partition(d, 4, true, rand.New(rand.NewPCG(7, 7)))
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.NotEqual(t, d.Items(), partition.Flatten(a))
}

func TestPartitionChunksDoNotAlias(t *testing.T) {
	d, _ := partition.NewDomain(10)
	chunks, err := partition.Partition(d, 2, false, nil)
	require.NoError(t, err)
	_ = append(chunks[0].Items, -1)
	assert.Equal(t, 5, chunks[1].Items[0])
}

func TestPartitionRejectsBadInput(t *testing.T) {
	d, _ := partition.NewDomain(10)
	_, err := partition.Partition(d, 0, false, nil)
	assert.ErrorIs(t, err, partition.ErrInvalidWorkers)

	_, err = partition.NewDomain(-1)
	assert.Error(t, err)
}
