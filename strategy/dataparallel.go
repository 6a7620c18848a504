package strategy

import (
	"github.com/exascience/batchpar/parallel"
	"github.com/exascience/batchpar/partition"
	"github.com/exascience/batchpar/predicate"
)

// DataParallel ignores the chunk boundaries and lets parallel.Filter split
// the items into its own, finer-grained batches. The returned Outcome has
// no per-chunk statistics because the batches are not visible to callers.
func DataParallel(chunks []partition.Chunk, f predicate.Func, opts ...Option) Outcome {
	cfg := newConfig(opts)
	items := parallel.Filter(partition.Flatten(chunks), 0, f)
	return cfg.finish("data-parallel", Outcome{Items: items})
}
