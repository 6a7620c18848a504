// Package partition splits a domain of integer items into one chunk per
// worker.
//
// Trial division gets more expensive as items grow, so contiguous chunks
// leave the last worker with the most work. Shuffling the domain before
// slicing decorrelates a chunk's cost from its position.
package partition

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"

	"github.com/exascience/batchpar/internal"
)

// ErrInvalidWorkers is returned by Partition when fewer than one worker is
// requested.
var ErrInvalidWorkers = errors.New("partition: worker count must be at least 1")

// A Domain is the half-open range of items [0, N). The zero Domain is
// valid and empty.
type Domain struct {
	n int
}

// NewDomain returns the domain [0, n). It returns an error if n is
// negative.
func NewDomain(n int) (Domain, error) {
	if n < 0 {
		return Domain{}, fmt.Errorf("partition: invalid domain size %d", n)
	}
	return Domain{n: n}, nil
}

// Len returns the number of items in the domain.
func (d Domain) Len() int { return d.n }

// Items returns a fresh slice holding the items of the domain in
// increasing order.
func (d Domain) Items() []int {
	items := make([]int, d.n)
	for i := range items {
		items[i] = i
	}
	return items
}

// A Chunk is the part of a domain assigned to exactly one worker. Index is
// the position of the chunk in the sequence returned by Partition.
//
// A worker owns its chunk once it has been handed off and must not modify
// Items.
type Chunk struct {
	Index int
	Items []int
}

// Len returns the number of items in the chunk.
func (c Chunk) Len() int { return len(c.Items) }

// DefaultWorkers returns the number of workers that matches the available
// parallelism, runtime.GOMAXPROCS(0).
func DefaultWorkers() int {
	return runtime.GOMAXPROCS(0)
}

// Partition splits d into exactly workers chunks.
//
// Chunk lengths add up to d.Len() and differ by at most one: the
// d.Len() % workers leftover items go one each to the leading chunks.
// Chunks are only empty when workers exceeds d.Len().
//
// If shuffle is true, the items are permuted with rng before slicing. A nil
// rng uses a randomly seeded source.
//
// All chunks share one backing array, but their ranges never overlap.
func Partition(d Domain, workers int, shuffle bool, rng *rand.Rand) ([]Chunk, error) {
	if workers < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWorkers, workers)
	}
	items := d.Items()
	if shuffle {
		if rng == nil {
			rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		}
		rng.Shuffle(len(items), func(i, j int) {
			items[i], items[j] = items[j], items[i]
		})
	}
	chunks := make([]Chunk, workers)
	for i := range chunks {
		low, high := internal.BatchBounds(len(items), workers, i)
		chunks[i] = Chunk{Index: i, Items: items[low:high:high]}
	}
	return chunks, nil
}

// Flatten concatenates the items of chunks in chunk order.
func Flatten(chunks []Chunk) []int {
	var n int
	for _, c := range chunks {
		n += c.Len()
	}
	items := make([]int, 0, n)
	for _, c := range chunks {
		items = append(items, c.Items...)
	}
	return items
}
