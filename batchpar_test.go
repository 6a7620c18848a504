package batchpar_test

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exascience/batchpar"
	"github.com/exascience/batchpar/predicate"
	"github.com/exascience/batchpar/sequential"
)

var primesBelow30 = []int{2, 3, 5, 7, 11, 13, 17, 19, 23, 29}

func ExampleEvaluateBatch() {
	res, err := batchpar.EvaluateBatch(context.Background(), batchpar.Config{
		DomainSize: 30,
		Workers:    4,
		Strategy:   batchpar.Atomic,
		Sorted:     true,
	})
	if err != nil {
		panic(err)
	}
	fmt.Println(res.Strategy, res.Items)

	// Output:
	// atomic [2 3 5 7 11 13 17 19 23 29]
}

func ExampleBridgeStream() {
	tx, rx, err := batchpar.BridgeStream[string](1)
	if err != nil {
		panic(err)
	}
	go func() {
		defer tx.Close()
		for _, s := range []string{"one", "two", "three"} {
			tx.BlockingSend(s)
		}
	}()
	msgs, _ := rx.Collect(context.Background())
	fmt.Println(msgs)

	// Output:
	// [one two three]
}

func TestPrimesBelow30(t *testing.T) {
	for _, s := range []batchpar.Strategy{
		batchpar.Atomic, batchpar.Mutex, batchpar.WorkerLocal,
		batchpar.DataParallel, batchpar.Cooperative,
	} {
		for _, workers := range []int{1, 2, 4, 7, 64} {
			for _, shuffle := range []bool{false, true} {
				res, err := batchpar.EvaluateBatch(context.Background(), batchpar.Config{
					DomainSize: 30,
					Workers:    workers,
					Strategy:   s,
					Shuffle:    shuffle,
				})
				require.NoError(t, err)
				assert.ElementsMatch(t, primesBelow30, res.Items, "%v workers=%d shuffle=%v", s, workers, shuffle)
			}
		}
	}
}

func TestMatchesSequentialBaseline(t *testing.T) {
	const n = 3000
	want := sequential.Filter(0, n, predicate.IsPrime)
	for _, s := range []batchpar.Strategy{
		batchpar.Atomic, batchpar.Mutex, batchpar.WorkerLocal,
		batchpar.DataParallel, batchpar.Cooperative,
	} {
		t.Run(s.String(), func(t *testing.T) {
			res, err := batchpar.EvaluateBatch(context.Background(), batchpar.Config{
				DomainSize: n,
				Workers:    4,
				Strategy:   s,
				Shuffle:    true,
				Seed:       42,
				Sorted:     true,
				LockBatch:  8,
				YieldEvery: 100,
			})
			require.NoError(t, err)
			assert.Equal(t, want, res.Items)
			assert.Equal(t, s, res.Strategy)
			assert.Positive(t, res.Elapsed)
		})
	}
}

func TestChunkStatistics(t *testing.T) {
	res, err := batchpar.EvaluateBatch(context.Background(), batchpar.Config{
		DomainSize: 1000,
		Workers:    4,
		Strategy:   batchpar.WorkerLocal,
	})
	require.NoError(t, err)
	require.Len(t, res.Chunks, 4)
	total := 0
	for i, c := range res.Chunks {
		assert.Equal(t, i, c.Index)
		assert.Equal(t, 250, c.Size)
		total += c.Matches
	}
	assert.Equal(t, len(res.Items), total)
	sum := res.Summary()
	assert.Equal(t, 4, sum.N)
	assert.GreaterOrEqual(t, sum.Max, sum.Min)
}

func TestEmptyDomain(t *testing.T) {
	res, err := batchpar.EvaluateBatch(context.Background(), batchpar.Config{Workers: 3})
	require.NoError(t, err)
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
}

func TestConfigurationErrors(t *testing.T) {
	for name, cfg := range map[string]batchpar.Config{
		"no workers":       {DomainSize: 10},
		"negative domain":  {DomainSize: -1, Workers: 1},
		"negative batch":   {DomainSize: 10, Workers: 1, LockBatch: -1},
		"negative yield":   {DomainSize: 10, Workers: 1, YieldEvery: -1},
		"unknown strategy": {DomainSize: 10, Workers: 1, Strategy: 42},
		"unsynchronized":   {DomainSize: 10, Workers: 1, Strategy: batchpar.Unsynchronized},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := batchpar.EvaluateBatch(context.Background(), cfg)
			assert.ErrorIs(t, err, batchpar.ErrConfiguration)
		})
	}

	_, _, err := batchpar.BridgeStream[int](-1)
	assert.ErrorIs(t, err, batchpar.ErrConfiguration)
	_, err = batchpar.StreamBatch(context.Background(), batchpar.Config{DomainSize: 10}, 1)
	assert.ErrorIs(t, err, batchpar.ErrConfiguration)
	_, err = batchpar.StreamBatch(context.Background(), batchpar.Config{DomainSize: 10, Workers: 1}, -1)
	assert.ErrorIs(t, err, batchpar.ErrConfiguration)
}

func TestUnsynchronizedNeverOvercounts(t *testing.T) {
	if raceEnabled {
		t.Skip("intentional data race")
	}
	res, err := batchpar.EvaluateBatch(context.Background(), batchpar.Config{
		DomainSize:          2000,
		Workers:             8,
		Strategy:            batchpar.Unsynchronized,
		AllowUnsynchronized: true,
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(res.Items), len(sequential.Filter(0, 2000, predicate.IsPrime)))
}

func TestParseStrategy(t *testing.T) {
	for _, s := range []batchpar.Strategy{
		batchpar.Atomic, batchpar.Mutex, batchpar.WorkerLocal,
		batchpar.DataParallel, batchpar.Cooperative, batchpar.Unsynchronized,
	} {
		got, err := batchpar.ParseStrategy(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := batchpar.ParseStrategy("optimistic")
	assert.ErrorIs(t, err, batchpar.ErrConfiguration)
	assert.Equal(t, "Strategy(9)", batchpar.Strategy(9).String())
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, s := range []batchpar.Strategy{batchpar.Atomic, batchpar.Cooperative} {
		_, err := batchpar.EvaluateBatch(ctx, batchpar.Config{DomainSize: 100, Workers: 2, Strategy: s})
		assert.ErrorIs(t, err, context.Canceled)
	}
	_, err := batchpar.StreamBatch(ctx, batchpar.Config{DomainSize: 100, Workers: 2}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCooperativeCancelledWhileRunning(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := batchpar.EvaluateBatch(ctx, batchpar.Config{
		DomainSize: 20_000,
		Workers:    1,
		Strategy:   batchpar.Cooperative,
		YieldEvery: 10,
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStreamBatch(t *testing.T) {
	const n = 2000
	want := sequential.Filter(0, n, predicate.IsPrime)
	for _, capacity := range []int{0, 1, 16} {
		t.Run(fmt.Sprintf("capacity=%d", capacity), func(t *testing.T) {
			res, err := batchpar.StreamBatch(context.Background(), batchpar.Config{
				DomainSize: n,
				Workers:    4,
				Shuffle:    true,
			}, capacity)
			require.NoError(t, err)
			assert.ElementsMatch(t, want, res.Items)
			require.Len(t, res.Chunks, 4)
			total := 0
			for _, c := range res.Chunks {
				total += c.Matches
			}
			assert.Equal(t, len(want), total)
		})
	}

	res, err := batchpar.StreamBatch(context.Background(), batchpar.Config{
		DomainSize: 30,
		Workers:    3,
		Sorted:     true,
	}, 2)
	require.NoError(t, err)
	assert.Equal(t, primesBelow30, res.Items)
}

func TestDebugLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	res, err := batchpar.EvaluateBatch(context.Background(), batchpar.Config{
		DomainSize: 100,
		Workers:    2,
		Strategy:   batchpar.Mutex,
		Logger:     logger,
	})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "batch started")
	assert.Contains(t, out, "batch finished")
	assert.Contains(t, out, "chunk evaluated")
	assert.Contains(t, out, res.RunID.String())
	assert.Equal(t, batchpar.Mutex, res.Strategy)
}
