// Package counter measures the three basic ways of letting many
// goroutines increment one shared integer: without synchronization, with
// an atomic add, and under a mutex.
//
// Each run uses its own counter, owned by the call and released when it
// returns.
package counter

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/exascience/batchpar/parallel"
)

// Kind selects how the shared counter is incremented.
type Kind int

const (
	// Atomic increments with atomic.Int64.Add.
	Atomic Kind = iota
	// Locked increments under a sync.Mutex.
	Locked
	// Racy increments without synchronization and loses updates.
	Racy
)

// Defaults used by the command line tool.
const (
	Loops   = 10000
	Threads = 100
)

func (k Kind) String() string {
	switch k {
	case Atomic:
		return "atomic"
	case Locked:
		return "locked"
	case Racy:
		return "racy"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind returns the Kind named by s.
func ParseKind(s string) (Kind, error) {
	for _, k := range []Kind{Atomic, Locked, Racy} {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("counter: unknown kind %q", s)
}

// Count runs threads goroutines that each increment a fresh counter loops
// times, and returns the final value. For Atomic and Locked the result is
// always threads*loops; for Racy it is at most that.
//
// Count panics if threads or loops is negative, or if k is unknown.
func Count(k Kind, threads, loops int) int64 {
	if threads < 0 || loops < 0 {
		panic(fmt.Sprintf("invalid counter run: %v threads, %v loops", threads, loops))
	}
	if threads == 0 {
		return 0
	}
	var run func()
	var load func() int64
	switch k {
	case Atomic:
		var c atomic.Int64
		run = func() {
			for range loops {
				c.Add(1)
			}
		}
		load = c.Load
	case Locked:
		var (
			mu sync.Mutex
			c  int64
		)
		run = func() {
			for range loops {
				mu.Lock()
				c++
				mu.Unlock()
			}
		}
		load = func() int64 { return c }
	case Racy:
		c := new(int64)
		run = func() {
			for range loops {
				*c++
			}
		}
		load = func() int64 { return *c }
	default:
		panic(fmt.Sprintf("invalid counter kind: %v", k))
	}
	parallel.Range(0, threads, threads, func(low, high int) {
		for ; low < high; low++ {
			run()
		}
	})
	return load()
}
