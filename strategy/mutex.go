package strategy

import (
	"sync"

	"github.com/sourcegraph/conc"

	"github.com/exascience/batchpar/partition"
	"github.com/exascience/batchpar/predicate"
)

// Mutex appends matches to one shared slice guarded by a sync.Mutex.
//
// By default every match takes the lock, which makes this the slowest
// strategy under contention. WithLockBatch amortizes a lock acquisition
// over several buffered matches.
func Mutex(chunks []partition.Chunk, f predicate.Func, opts ...Option) Outcome {
	cfg := newConfig(opts)
	var (
		mu    sync.Mutex
		items = []int{}
	)
	stats := make([]ChunkStat, len(chunks))

	var wg conc.WaitGroup
	for i, c := range chunks {
		wg.Go(func() {
			stats[i] = timed(c, func() int {
				if cfg.lockBatch <= 1 {
					return scan(c, f, func(item int) {
						mu.Lock()
						items = append(items, item)
						mu.Unlock()
					})
				}
				buf := make([]int, 0, cfg.lockBatch)
				flush := func() {
					mu.Lock()
					items = append(items, buf...)
					mu.Unlock()
					buf = buf[:0]
				}
				matches := scan(c, f, func(item int) {
					if buf = append(buf, item); len(buf) == cfg.lockBatch {
						flush()
					}
				})
				if len(buf) > 0 {
					flush()
				}
				return matches
			})
		})
	}
	wg.Wait()

	return cfg.finish("mutex", Outcome{Items: items, Chunks: stats})
}
