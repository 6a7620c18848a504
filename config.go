package batchpar

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/go-playground/validator/v10"
)

// validate is the package-level validator instance used for Config.
var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrConfiguration is wrapped by every error that reports an invalid
// Config or stream capacity. Such errors are returned before any work
// starts.
var ErrConfiguration = errors.New("batchpar: invalid configuration")

// Strategy selects how the workers of a batch run publish their matches.
type Strategy int

const (
	// Atomic reserves a result slot per match with an atomic increment.
	Atomic Strategy = iota
	// Mutex appends matches to a shared slice under a lock.
	Mutex
	// WorkerLocal collects matches privately and merges them at the end.
	WorkerLocal
	// DataParallel hands the domain to a fork-join filter.
	DataParallel
	// Cooperative evaluates every item in its own cooperative task.
	Cooperative
	// Unsynchronized shares state without synchronization and loses
	// matches. It must be enabled with Config.AllowUnsynchronized.
	Unsynchronized
)

var strategyNames = [...]string{
	Atomic:         "atomic",
	Mutex:          "mutex",
	WorkerLocal:    "worker-local",
	DataParallel:   "data-parallel",
	Cooperative:    "cooperative",
	Unsynchronized: "unsynchronized",
}

func (s Strategy) String() string {
	if s >= 0 && int(s) < len(strategyNames) {
		return strategyNames[s]
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy returns the Strategy named by name.
func ParseStrategy(name string) (Strategy, error) {
	for s, n := range strategyNames {
		if n == name {
			return Strategy(s), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown strategy %q", ErrConfiguration, name)
}

// Config describes one batch run.
type Config struct {
	// DomainSize is N, the run covers the items [0, N).
	DomainSize int `validate:"min=0"`
	// Workers is the number of chunks and of workers evaluating them. For
	// the Cooperative strategy it is the number of executor slots.
	Workers int `validate:"min=1"`
	// Strategy selects the aggregation strategy.
	Strategy Strategy
	// Shuffle permutes the domain before it is split into chunks.
	Shuffle bool
	// Seed seeds the shuffle. A zero Seed shuffles randomly.
	Seed uint64
	// Sorted sorts the matching items of the Result.
	Sorted bool
	// AllowUnsynchronized must be set to run the Unsynchronized strategy.
	AllowUnsynchronized bool
	// LockBatch is the number of matches the Mutex strategy buffers per
	// lock acquisition. Values of 0 and 1 lock once per match.
	LockBatch int `validate:"min=0"`
	// YieldEvery is the number of predicate iterations between two yields
	// of a cooperative task. Zero selects predicate.DefaultYieldEvery.
	YieldEvery int `validate:"min=0"`
	// Logger receives debug records about the run. Nil means
	// slog.Default().
	Logger *slog.Logger `validate:"-"`
}

// Validate reports whether c describes a run that can be started. The
// returned error wraps ErrConfiguration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	if c.Strategy < 0 || int(c.Strategy) >= len(strategyNames) {
		return fmt.Errorf("%w: unknown strategy %v", ErrConfiguration, c.Strategy)
	}
	if c.Strategy == Unsynchronized && !c.AllowUnsynchronized {
		return fmt.Errorf("%w: the unsynchronized strategy loses matches and must be allowed explicitly", ErrConfiguration)
	}
	return nil
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (c *Config) rng() *rand.Rand {
	if c.Seed == 0 {
		return nil
	}
	return rand.New(rand.NewPCG(c.Seed, c.Seed))
}
