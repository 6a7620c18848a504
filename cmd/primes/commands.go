package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"

	"github.com/exascience/batchpar"
	"github.com/exascience/batchpar/bridge"
	"github.com/exascience/batchpar/coop"
	"github.com/exascience/batchpar/counter"
	"github.com/exascience/batchpar/parallel"
	"github.com/exascience/batchpar/partition"
	"github.com/exascience/batchpar/predicate"
)

func addBatchFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Int("size", 100_000, "domain size N, evaluates the items [0, N)")
	f.Int("workers", partition.DefaultWorkers(), "number of chunks and workers")
	f.Bool("shuffle", false, "shuffle the domain before partitioning")
	f.Uint64("seed", 0, "shuffle seed, 0 for a random seed")
	f.Bool("sorted", false, "sort the matching items")
	f.Bool("print", false, "print the matching items")
}

func batchConfig(v *viper.Viper) batchpar.Config {
	return batchpar.Config{
		DomainSize:          v.GetInt("size"),
		Workers:             v.GetInt("workers"),
		Shuffle:             v.GetBool("shuffle"),
		Seed:                v.GetUint64("seed"),
		Sorted:              v.GetBool("sorted"),
		AllowUnsynchronized: v.GetBool("allow-unsynchronized"),
		LockBatch:           v.GetInt("lock-batch"),
		YieldEvery:          v.GetInt("yield-every"),
	}
}

func report(cmd *cobra.Command, v *viper.Viper, res batchpar.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run %v: strategy=%v matches=%d elapsed=%v\n",
		res.RunID, res.Strategy, len(res.Items), res.Elapsed)
	if len(res.Chunks) > 0 {
		fmt.Fprintf(out, "chunks: %v\n", res.Summary())
	}
	if v.GetBool("print") {
		fmt.Fprintln(out, res.Items)
	}
}

func newEvalCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate the domain with one aggregation strategy",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := batchConfig(v)
			s, err := batchpar.ParseStrategy(v.GetString("strategy"))
			if err != nil {
				return err
			}
			cfg.Strategy = s
			res, err := batchpar.EvaluateBatch(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			report(cmd, v, res)
			if v.GetBool("verify") {
				verify(cmd, cfg, res)
			}
			return nil
		},
	}
	addBatchFlags(cmd)
	f := cmd.Flags()
	f.String("strategy", batchpar.Atomic.String(),
		"atomic, mutex, worker-local, data-parallel, cooperative, or unsynchronized")
	f.Bool("allow-unsynchronized", false, "allow the unsynchronized strategy, which loses matches")
	f.Int("lock-batch", 0, "matches buffered per lock acquisition by the mutex strategy")
	f.Int("yield-every", 0, "predicate iterations between yields of cooperative tasks")
	f.Bool("verify", false, "count the matches again and report how many the strategy lost")
	return cmd
}

// verify recounts the matches of the whole domain with a data-parallel
// count that does not share any state between workers.
func verify(cmd *cobra.Command, cfg batchpar.Config, res batchpar.Result) {
	items := make([]int, cfg.DomainSize)
	for i := range items {
		items[i] = i
	}
	want := parallel.Count(items, cfg.Workers, predicate.IsPrime)
	fmt.Fprintf(cmd.OutOrStdout(), "verified: %d expected, %d lost\n", want, want-len(res.Items))
}

func newStreamCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Stream matches from parallel workers to a cooperative consumer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := batchpar.StreamBatch(cmd.Context(), batchConfig(v), v.GetInt("capacity"))
			if err != nil {
				return err
			}
			report(cmd, v, res)
			return nil
		},
	}
	addBatchFlags(cmd)
	cmd.Flags().Int("capacity", 0, "stream capacity, 0 for unbounded")
	return cmd
}

// newBridgeCmd sends a sequence from a producer on its own OS thread to a
// cooperative task, which prints every message it receives.
func newBridgeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bridge",
		Short: "Send messages from an OS thread to a cooperative task",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if v.GetInt("count") < 0 {
				return fmt.Errorf("%w: negative message count", batchpar.ErrConfiguration)
			}
			tx, rx, err := batchpar.BridgeStream[int](v.GetInt("capacity"))
			if err != nil {
				return err
			}
			items := make([]int, v.GetInt("count"))
			for i := range items {
				items[i] = i
			}
			lim := rate.NewLimiter(rate.Every(v.GetDuration("interval")), 1)
			produced := bridge.OnThread(func() error {
				return bridge.Feed(ctx, tx, items, lim)
			})

			out := cmd.OutOrStdout()
			js := coop.NewJoinSet[int](ctx, coop.NewExecutor())
			defer js.Close()
			js.Spawn(func(t *coop.Task) (int, error) {
				n := 0
				for {
					msg, ok, err := coop.Recv(t, rx)
					if err != nil || !ok {
						return n, err
					}
					fmt.Fprintln(out, msg, "from the other side")
					n++
				}
			})
			o, _ := js.JoinNext(ctx)
			if err := <-produced; err != nil {
				return err
			}
			if o.Err != nil {
				return o.Err
			}
			fmt.Fprintf(out, "received %d messages\n", o.Value)
			return nil
		},
	}
	f := cmd.Flags()
	f.Int("count", 10, "number of messages to send")
	f.Int("capacity", 0, "stream capacity, 0 for unbounded")
	f.Duration("interval", time.Millisecond, "minimum time between two sends")
	return cmd
}

func newCounterCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "counter",
		Short: "Increment a shared counter from many goroutines",
		RunE: func(cmd *cobra.Command, _ []string) error {
			k, err := counter.ParseKind(v.GetString("kind"))
			if err != nil {
				return err
			}
			threads, loops := v.GetInt("threads"), v.GetInt("loops")
			if threads < 0 || loops < 0 {
				return fmt.Errorf("%w: threads and loops must not be negative", batchpar.ErrConfiguration)
			}
			start := time.Now()
			got := counter.Count(k, threads, loops)
			fmt.Fprintf(cmd.OutOrStdout(), "%v: %d of %d in %v\n",
				k, got, int64(threads)*int64(loops), time.Since(start))
			return nil
		},
	}
	f := cmd.Flags()
	f.String("kind", counter.Atomic.String(), "atomic, locked, or racy")
	f.Int("threads", counter.Threads, "number of goroutines")
	f.Int("loops", counter.Loops, "increments per goroutine")
	return cmd
}
