package batchpar

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/exascience/batchpar/bridge"
	"github.com/exascience/batchpar/coop"
	"github.com/exascience/batchpar/predicate"
	"github.com/exascience/batchpar/sort"
	"github.com/exascience/batchpar/strategy"
)

// BridgeStream creates a stream from producers in either scheduling
// domain to one consumer. A capacity of 0 creates an unbounded stream; a
// positive capacity bounds the buffer and makes senders wait while it is
// full. A negative capacity is reported as an error wrapping
// ErrConfiguration.
//
// The stream ends once every Sender handle has been closed with
// Sender.Close. The Receiver sees every message sent before that.
func BridgeStream[T any](capacity int) (*bridge.Sender[T], *bridge.Receiver[T], error) {
	if capacity < 0 {
		return nil, nil, fmt.Errorf("%w: negative stream capacity %d", ErrConfiguration, capacity)
	}
	tx, rx := bridge.New[T](capacity)
	return tx, rx, nil
}

// StreamBatch evaluates the primality predicate like EvaluateBatch, but
// publishes matches through a bridge stream of the given capacity. Every
// chunk is evaluated by its own goroutine, which sends its matches as it
// finds them. A single cooperative task receives them on the other side.
//
// The Strategy, LockBatch and YieldEvery fields of cfg are not used; the
// Result reports cfg.Strategy unchanged. Each chunk's matches arrive in
// chunk order, but chunks interleave arbitrarily unless cfg.Sorted is
// set.
func StreamBatch(ctx context.Context, cfg Config, capacity int) (Result, error) {
	reported := cfg.Strategy
	cfg.Strategy, cfg.AllowUnsynchronized = Atomic, false
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	tx, rx, err := BridgeStream[int](capacity)
	if err != nil {
		return Result{}, err
	}
	chunks, err := partitionFor(&cfg)
	if err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	res := Result{RunID: uuid.New(), Strategy: reported, Chunks: make([]strategy.ChunkStat, len(chunks))}
	logger := cfg.logger().With("run", res.RunID)
	logger.Debug("stream started",
		"domain", cfg.DomainSize,
		"workers", cfg.Workers,
		"capacity", capacity,
	)

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range chunks {
		h := tx.Clone()
		g.Go(func() error {
			defer h.Close()
			begin := time.Now()
			matches := 0
			for _, item := range c.Items {
				v := predicate.Evaluate(predicate.IsPrime, item)
				if !v.Prime {
					continue
				}
				if err := h.Send(gctx, v.Item); err != nil {
					return err
				}
				matches++
			}
			res.Chunks[i] = strategy.ChunkStat{
				Index:   c.Index,
				Size:    c.Len(),
				Matches: matches,
				Elapsed: time.Since(begin),
			}
			return nil
		})
	}
	tx.Close()

	g.Go(func() error {
		js := coop.NewJoinSet[[]int](gctx, coop.NewExecutor(coop.WithLogger(logger)))
		defer js.Close()
		js.Spawn(func(t *coop.Task) ([]int, error) {
			items := []int{}
			for {
				v, ok, err := coop.Recv(t, rx)
				if err != nil || !ok {
					return items, err
				}
				items = append(items, v)
			}
		})
		o, ok := js.JoinNext(gctx)
		if !ok {
			return gctx.Err()
		}
		res.Items = o.Value
		return o.Err
	})
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, err
	}
	res.Elapsed = time.Since(start)

	if cfg.Sorted {
		sort.Sort(res.Items)
	}
	logger.Debug("stream finished",
		"matches", len(res.Items),
		"elapsed", res.Elapsed,
	)
	return res, nil
}
