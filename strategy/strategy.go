// Package strategy implements interchangeable ways to aggregate the items
// of a partitioned domain that satisfy a predicate.
//
// Every strategy evaluates each chunk in its own goroutine and returns the
// matching items together with per-chunk timings. They differ only in how
// the goroutines publish their matches:
//
//   - Unsynchronized writes to shared state without any synchronization.
//     It is unsound and exists to demonstrate lost updates.
//   - Atomic reserves a result slot per match with an atomic increment.
//   - Mutex appends to a shared slice under a lock.
//   - WorkerLocal collects into private slices merged after all workers
//     have terminated.
//   - DataParallel hands the whole domain to the parallel package, which
//     picks its own partitioning.
//
// Except for Unsynchronized, all strategies return the same set of items
// as a sequential filter. None of them guarantees an order; only
// WorkerLocal keeps each chunk's matches in chunk order.
package strategy

import (
	"log/slog"
	"time"

	"github.com/exascience/batchpar/partition"
	"github.com/exascience/batchpar/predicate"
)

// A ChunkStat records how one worker fared on its chunk.
type ChunkStat struct {
	Index   int
	Size    int
	Matches int
	Elapsed time.Duration
}

// An Outcome is the frozen aggregate of one strategy run.
type Outcome struct {
	Items  []int
	Chunks []ChunkStat
}

// An Aggregator evaluates f over chunks with one worker per chunk and
// returns the matching items. Unsynchronized, Atomic, Mutex, WorkerLocal,
// and DataParallel are Aggregators.
type Aggregator func(chunks []partition.Chunk, f predicate.Func, opts ...Option) Outcome

type config struct {
	logger    *slog.Logger
	lockBatch int
}

// Option configures a strategy run.
type Option func(*config)

// WithLogger sets the logger that receives per-chunk debug records. The
// default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLockBatch makes Mutex buffer up to n matches per worker before
// taking the lock. Values of 1 or less lock once per match.
func WithLockBatch(n int) Option {
	return func(c *config) {
		c.lockBatch = n
	}
}

func newConfig(opts []Option) config {
	cfg := config{logger: slog.Default(), lockBatch: 1}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func (c config) finish(name string, o Outcome) Outcome {
	if o.Items == nil {
		o.Items = []int{}
	}
	for _, s := range o.Chunks {
		c.logger.Debug("chunk evaluated",
			"strategy", name,
			"chunk", s.Index,
			"size", s.Size,
			"matches", s.Matches,
			"elapsed", s.Elapsed,
		)
	}
	return o
}

// scan applies f to every item of c, calling emit for each match, and
// returns the number of matches.
func scan(c partition.Chunk, f predicate.Func, emit func(item int)) (matches int) {
	for _, item := range c.Items {
		if f(item) {
			emit(item)
			matches++
		}
	}
	return
}

func timed(c partition.Chunk, body func() int) ChunkStat {
	start := time.Now()
	matches := body()
	return ChunkStat{
		Index:   c.Index,
		Size:    c.Len(),
		Matches: matches,
		Elapsed: time.Since(start),
	}
}

func totalLen(chunks []partition.Chunk) (n int) {
	for _, c := range chunks {
		n += c.Len()
	}
	return
}
