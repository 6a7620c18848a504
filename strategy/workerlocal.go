package strategy

import (
	"github.com/sourcegraph/conc/pool"

	"github.com/exascience/batchpar/partition"
	"github.com/exascience/batchpar/predicate"
)

type local struct {
	pos   int
	items []int
	stat  ChunkStat
}

// WorkerLocal lets every worker collect its matches into a private slice
// without any synchronization, and hands the slice back when the worker
// terminates. The slices are concatenated in chunk order once every
// worker is done.
func WorkerLocal(chunks []partition.Chunk, f predicate.Func, opts ...Option) Outcome {
	cfg := newConfig(opts)
	p := pool.NewWithResults[local]().WithMaxGoroutines(max(1, len(chunks)))
	for i, c := range chunks {
		p.Go(func() local {
			var items []int
			stat := timed(c, func() int {
				return scan(c, f, func(item int) {
					items = append(items, item)
				})
			})
			return local{pos: i, items: items, stat: stat}
		})
	}
	results := p.Wait()

	ordered := make([]local, len(chunks))
	total := 0
	for _, r := range results {
		ordered[r.pos] = r
		total += len(r.items)
	}
	o := Outcome{
		Items:  make([]int, 0, total),
		Chunks: make([]ChunkStat, len(chunks)),
	}
	for i, r := range ordered {
		o.Items = append(o.Items, r.items...)
		o.Chunks[i] = r.stat
	}
	return cfg.finish("worker-local", o)
}
