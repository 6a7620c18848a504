package strategy

import (
	"sync/atomic"

	"github.com/sourcegraph/conc"

	"github.com/exascience/batchpar/partition"
	"github.com/exascience/batchpar/predicate"
)

// Atomic reserves one slot of a shared result array per match with a
// single atomic fetch-and-add. No other shared state is derived from the
// counter during the run, so the increment only has to be atomic; the
// result is read after all workers have been joined.
func Atomic(chunks []partition.Chunk, f predicate.Func, opts ...Option) Outcome {
	cfg := newConfig(opts)
	slots := make([]int, totalLen(chunks))
	var next atomic.Int64
	stats := make([]ChunkStat, len(chunks))

	var wg conc.WaitGroup
	for i, c := range chunks {
		wg.Go(func() {
			stats[i] = timed(c, func() int {
				return scan(c, f, func(item int) {
					slots[next.Add(1)-1] = item
				})
			})
		})
	}
	wg.Wait()

	n := next.Load()
	return cfg.finish("atomic", Outcome{Items: slots[:n:n], Chunks: stats})
}
