package strategy

import (
	"github.com/sourcegraph/conc"

	"github.com/exascience/batchpar/partition"
	"github.com/exascience/batchpar/predicate"
)

// Unsynchronized lets every worker bump one shared counter and write into
// the slot it names, with no synchronization at all.
//
// This is a data race. Concurrent read-modify-write cycles lose updates,
// so the result may hold fewer items than there are matches, and some
// matches may be overwritten by others. The count can never exceed the
// true number of matches, which keeps every slot index in bounds.
//
// Unsynchronized exists to demonstrate that failure mode. Never use it for
// results that matter, and expect the race detector to report it.
func Unsynchronized(chunks []partition.Chunk, f predicate.Func, opts ...Option) Outcome {
	cfg := newConfig(opts)
	slots := make([]int, totalLen(chunks))
	count := 0
	stats := make([]ChunkStat, len(chunks))

	var wg conc.WaitGroup
	for i, c := range chunks {
		wg.Go(func() {
			stats[i] = timed(c, func() int {
				return scan(c, f, func(item int) {
					n := count
					slots[n] = item
					count = n + 1
				})
			})
		})
	}
	wg.Wait()

	return cfg.finish("unsynchronized", Outcome{Items: slots[:count:count], Chunks: stats})
}
