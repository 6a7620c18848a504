package batchpar

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/exascience/batchpar/coop"
	"github.com/exascience/batchpar/partition"
	"github.com/exascience/batchpar/predicate"
	"github.com/exascience/batchpar/sort"
	"github.com/exascience/batchpar/stats"
	"github.com/exascience/batchpar/strategy"
)

// A Result is the frozen outcome of a batch run.
type Result struct {
	// RunID identifies the run in log records.
	RunID    uuid.UUID
	Strategy Strategy
	// Items are the matching items. Their order is unspecified unless
	// the run was configured with Sorted.
	Items   []int
	Elapsed time.Duration
	// Chunks holds per-worker statistics. It is empty for strategies
	// that do not evaluate whole chunks per worker.
	Chunks []strategy.ChunkStat
}

// Summary summarizes the per-chunk timings of r.
func (r Result) Summary() stats.Summary {
	ds := make([]time.Duration, len(r.Chunks))
	for i, c := range r.Chunks {
		ds[i] = c.Elapsed
	}
	return stats.Summarize(ds)
}

var aggregators = map[Strategy]strategy.Aggregator{
	Atomic:         strategy.Atomic,
	Mutex:          strategy.Mutex,
	WorkerLocal:    strategy.WorkerLocal,
	DataParallel:   strategy.DataParallel,
	Unsynchronized: strategy.Unsynchronized,
}

func partitionFor(cfg *Config) ([]partition.Chunk, error) {
	d, err := partition.NewDomain(cfg.DomainSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	chunks, err := partition.Partition(d, cfg.Workers, cfg.Shuffle, cfg.rng())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return chunks, nil
}

// EvaluateBatch evaluates the primality predicate over [0, cfg.DomainSize)
// with cfg.Workers workers and the strategy cfg.Strategy, and returns the
// items that are prime.
//
// Invalid configurations are reported as errors wrapping ErrConfiguration
// before any worker starts. Apart from Unsynchronized, every strategy
// returns the same set of items as a sequential filter, regardless of the
// number of workers and of shuffling.
//
// Only the Cooperative strategy observes ctx while running; the others
// check it once before they start.
func EvaluateBatch(ctx context.Context, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	chunks, err := partitionFor(&cfg)
	if err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	res := Result{RunID: uuid.New(), Strategy: cfg.Strategy}
	logger := cfg.logger().With("run", res.RunID)
	logger.Debug("batch started",
		"strategy", cfg.Strategy,
		"domain", cfg.DomainSize,
		"workers", cfg.Workers,
		"shuffle", cfg.Shuffle,
	)

	start := time.Now()
	if cfg.Strategy == Cooperative {
		res.Items, err = evaluateCooperative(ctx, chunks, &cfg, logger)
		if err != nil {
			return Result{}, err
		}
	} else {
		opts := []strategy.Option{strategy.WithLogger(logger)}
		if cfg.LockBatch > 1 {
			opts = append(opts, strategy.WithLockBatch(cfg.LockBatch))
		}
		out := aggregators[cfg.Strategy](chunks, predicate.IsPrime, opts...)
		res.Items, res.Chunks = out.Items, out.Chunks
	}
	res.Elapsed = time.Since(start)

	if cfg.Sorted {
		sort.Sort(res.Items)
	}
	logger.Debug("batch finished",
		"strategy", cfg.Strategy,
		"matches", len(res.Items),
		"elapsed", res.Elapsed,
	)
	return res, nil
}

// evaluateCooperative spawns one cooperative task per item on an executor
// with cfg.Workers slots and collects the verdicts in completion order.
func evaluateCooperative(ctx context.Context, chunks []partition.Chunk, cfg *Config, logger *slog.Logger) ([]int, error) {
	exec := coop.NewExecutor(coop.WithSlots(cfg.Workers), coop.WithLogger(logger))
	js := coop.NewJoinSet[predicate.Verdict](ctx, exec)
	defer js.Close()
	coop.SpawnAll(js, partition.Flatten(chunks), func(t *coop.Task, item int) (predicate.Verdict, error) {
		prime, err := predicate.IsPrimeYield(item, cfg.YieldEvery, t.Yield)
		return predicate.Verdict{Item: item, Prime: prime}, err
	})

	items := []int{}
	for {
		o, ok := js.JoinNext(ctx)
		if !ok {
			break
		}
		if o.Err != nil {
			js.Cancel()
			js.JoinAll(context.Background())
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("batchpar: task %d: %w", o.Task, o.Err)
		}
		if o.Value.Prime {
			items = append(items, o.Value.Item)
		}
	}
	if js.Len() > 0 {
		js.Cancel()
		js.JoinAll(context.Background())
		return nil, ctx.Err()
	}
	return items, nil
}
